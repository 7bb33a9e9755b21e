package sampling

import (
	"math/rand/v2"
)

// splitmix64 increment, used to decorrelate sub-stream seeds
const streamSalt = 0x9E3779B97F4A7C15

// NewStream derives a deterministic PCG sub-stream for one iteration batch.
// The stream depends only on (seed, batch), never on worker identity, so
// simulation output is bit-identical for any degree of parallelism.
func NewStream(seed int64, batch int) *rand.Rand {
	hi := uint64(seed)
	lo := (uint64(batch) + 1) * streamSalt
	// One splitmix-style round keeps adjacent batch seeds from sharing
	// low-bit structure.
	lo ^= lo >> 30
	lo *= 0xBF58476D1CE4E5B9
	lo ^= lo >> 27
	return rand.New(rand.NewPCG(hi, lo))
}
