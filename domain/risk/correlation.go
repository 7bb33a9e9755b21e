package risk

import (
	"fmt"
	"math"

	"risksim/domain/core"
)

// CorrelationPair holds a coefficient for an unordered pair of risks
type CorrelationPair struct {
	RiskA       core.RiskID `json:"risk_a"`
	RiskB       core.RiskID `json:"risk_b"`
	Coefficient float64     `json:"coefficient"`
}

// CorrelationMatrix is a sparse, symmetric mapping of risk pairs to
// correlation coefficients in [-1, 1]. Missing pairs are independent (0).
type CorrelationMatrix struct {
	RiskIDs []core.RiskID     `json:"risk_ids"`
	Pairs   []CorrelationPair `json:"pairs"`
}

// NewCorrelationMatrix creates an empty matrix covering the given risk ids
func NewCorrelationMatrix(riskIDs []core.RiskID) *CorrelationMatrix {
	ids := make([]core.RiskID, len(riskIDs))
	copy(ids, riskIDs)
	return &CorrelationMatrix{RiskIDs: ids}
}

// Set records a coefficient for the unordered pair (a, b), replacing any
// previous entry for the same pair
func (m *CorrelationMatrix) Set(a, b core.RiskID, coefficient float64) {
	for i, p := range m.Pairs {
		if samePair(p, a, b) {
			m.Pairs[i].Coefficient = coefficient
			return
		}
	}
	m.Pairs = append(m.Pairs, CorrelationPair{RiskA: a, RiskB: b, Coefficient: coefficient})
}

// Coefficient returns the coefficient for the unordered pair (a, b)
func (m *CorrelationMatrix) Coefficient(a, b core.RiskID) (float64, bool) {
	for _, p := range m.Pairs {
		if samePair(p, a, b) {
			return p.Coefficient, true
		}
	}
	return 0, false
}

// Covers reports whether the matrix lists the given risk id
func (m *CorrelationMatrix) Covers(id core.RiskID) bool {
	for _, known := range m.RiskIDs {
		if known == id {
			return true
		}
	}
	return false
}

// Validate checks coefficient ranges and that every referenced id exists
// among the simulated risks. Errors name the offending pair.
func (m *CorrelationMatrix) Validate(risks []Risk) error {
	known := make(map[core.RiskID]bool, len(risks))
	for _, r := range risks {
		known[r.ID] = true
	}
	for _, id := range m.RiskIDs {
		if !known[id] {
			return fmt.Errorf("%w: matrix references unknown risk %s", core.ErrInvalidCorrelation, id)
		}
	}
	for _, p := range m.Pairs {
		if p.RiskA == p.RiskB {
			return core.NewCorrelationPairError(p.RiskA.String(), p.RiskB.String(), "pair references the same risk")
		}
		if !known[p.RiskA] || !m.Covers(p.RiskA) {
			return core.NewCorrelationPairError(p.RiskA.String(), p.RiskB.String(), fmt.Sprintf("unknown risk %s", p.RiskA))
		}
		if !known[p.RiskB] || !m.Covers(p.RiskB) {
			return core.NewCorrelationPairError(p.RiskA.String(), p.RiskB.String(), fmt.Sprintf("unknown risk %s", p.RiskB))
		}
		if math.IsNaN(p.Coefficient) || p.Coefficient < -1 || p.Coefficient > 1 {
			return core.NewCorrelationPairError(p.RiskA.String(), p.RiskB.String(), fmt.Sprintf("coefficient %v outside [-1, 1]", p.Coefficient))
		}
	}
	return nil
}

func samePair(p CorrelationPair, a, b core.RiskID) bool {
	return (p.RiskA == a && p.RiskB == b) || (p.RiskA == b && p.RiskB == a)
}
