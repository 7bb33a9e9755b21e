package correlation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"risksim/domain/core"
	"risksim/domain/risk"
)

// Analyzer turns independent standard-normal draws into correlated draws
// honoring a validated CorrelationMatrix (Gaussian copula: Cholesky on
// normal scores, then inverse-transform per marginal).
type Analyzer struct{}

// NewAnalyzer creates a correlation analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Factor is the precomputed correlation structure for one simulation run.
// It is read-only after construction and safe for concurrent use.
type Factor struct {
	order    []core.RiskID
	index    map[core.RiskID]int
	chol     [][]float64 // lower-triangular Cholesky factor, row-major
	Warnings []string
}

// Validate checks coefficient ranges and id coverage against the risk set
func (a *Analyzer) Validate(matrix *risk.CorrelationMatrix, risks []risk.Risk) error {
	if matrix == nil {
		return nil
	}
	return matrix.Validate(risks)
}

// Factorize validates the matrix, assembles the dense correlation matrix over
// the simulated risk order, repairs it to the nearest PSD matrix if required
// (recording a warning), and returns its Cholesky factor.
func (a *Analyzer) Factorize(matrix *risk.CorrelationMatrix, risks []risk.Risk) (*Factor, error) {
	if err := a.Validate(matrix, risks); err != nil {
		return nil, err
	}

	n := len(risks)
	f := &Factor{
		order: make([]core.RiskID, n),
		index: make(map[core.RiskID]int, n),
	}
	for i, r := range risks {
		f.order[i] = r.ID
		f.index[r.ID] = i
	}

	dense := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		dense.SetSym(i, i, 1)
	}
	if matrix != nil {
		for _, p := range matrix.Pairs {
			i, j := f.index[p.RiskA], f.index[p.RiskB]
			dense.SetSym(i, j, p.Coefficient)
		}
	}

	var ch mat.Cholesky
	if !ch.Factorize(dense) {
		repaired, err := NearestPSD(dense)
		if err != nil {
			return nil, fmt.Errorf("%w: PSD projection failed: %v", core.ErrInvalidCorrelation, err)
		}
		f.Warnings = append(f.Warnings,
			"correlation matrix is not positive semi-definite; projected to nearest PSD matrix")
		if !ch.Factorize(repaired) {
			// Last-ditch diagonal jitter for matrices sitting on the PSD boundary
			for i := 0; i < n; i++ {
				repaired.SetSym(i, i, repaired.At(i, i)+1e-8)
			}
			if !ch.Factorize(repaired) {
				return nil, fmt.Errorf("%w: matrix not factorizable after PSD projection", core.ErrInvalidCorrelation)
			}
		}
	}

	lower := mat.NewTriDense(n, mat.Lower, nil)
	ch.LTo(lower)
	f.chol = make([][]float64, n)
	for i := 0; i < n; i++ {
		f.chol[i] = make([]float64, i+1)
		for j := 0; j <= i; j++ {
			f.chol[i][j] = lower.At(i, j)
		}
	}
	return f, nil
}

// Size returns the number of risks the factor covers
func (f *Factor) Size() int {
	return len(f.order)
}

// Correlate maps independent standard-normal scores z into correlated scores,
// writing into dst. len(z) and len(dst) must equal Size().
func (f *Factor) Correlate(z, dst []float64) {
	for i := range f.chol {
		var sum float64
		row := f.chol[i]
		for j := range row {
			sum += row[j] * z[j]
		}
		dst[i] = sum
	}
}

// Uniforms maps correlated normal scores into correlated uniforms via the
// standard normal CDF, in place.
func Uniforms(scores []float64) {
	for i, z := range scores {
		scores[i] = distuv.UnitNormal.CDF(z)
	}
}

// NearestPSD projects a symmetric matrix to the nearest positive
// semi-definite correlation matrix: eigenvalues are clipped at a small
// positive floor, the matrix is rebuilt, and the diagonal rescaled to 1.
func NearestPSD(sym *mat.SymDense) (*mat.SymDense, error) {
	n := sym.SymmetricDim()

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, fmt.Errorf("eigendecomposition failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	const floor = 1e-10
	for i, v := range values {
		if v < floor {
			values[i] = floor
		}
	}

	// Rebuild A = V * diag(clipped) * V^T
	var scaled, rebuilt mat.Dense
	scaled.Mul(&vectors, mat.NewDiagDense(n, values))
	rebuilt.Mul(&scaled, vectors.T())

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			// Rescale so the result keeps a unit diagonal
			norm := rebuilt.At(i, j) / (sqrtAt(&rebuilt, i) * sqrtAt(&rebuilt, j))
			out.SetSym(i, j, norm)
		}
	}
	return out, nil
}

func sqrtAt(m *mat.Dense, i int) float64 {
	v := m.At(i, i)
	if v <= 0 {
		return 1
	}
	return math.Sqrt(v)
}
