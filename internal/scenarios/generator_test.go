package scenarios

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risksim/domain/core"
	"risksim/domain/risk"
	"risksim/domain/scenario"
)

func baseRisks() []risk.Risk {
	return []risk.Risk{
		{
			ID:         "supplier",
			Name:       "supplier failure",
			Category:   risk.CategoryExternal,
			ImpactType: risk.ImpactCost,
			Distribution: risk.ProbabilityDistribution{Type: risk.DistNormal, Params: map[string]float64{
				risk.ParamMean: 100000, risk.ParamStdDev: 20000,
			}},
			BaselineImpact: 100000,
			Mitigations: []risk.MitigationStrategy{
				{ID: "dual-source", Name: "dual sourcing", Cost: 5000, Effectiveness: 0.3, ImplementationTimeDays: 60},
				{ID: "buffer-stock", Name: "buffer stock", Cost: 20000, Effectiveness: 0.5, ImplementationTimeDays: 14},
			},
		},
		{
			ID:         "permits",
			Name:       "permit delay",
			Category:   risk.CategoryRegulatory,
			ImpactType: risk.ImpactSchedule,
			Distribution: risk.ProbabilityDistribution{Type: risk.DistTriangular, Params: map[string]float64{
				risk.ParamMin: 10, risk.ParamMode: 30, risk.ParamMax: 90,
			}},
			BaselineImpact: 30,
		},
	}
}

func TestCreateBaselineScenario_IsDeepCopy(t *testing.T) {
	g := NewGenerator()
	base := baseRisks()

	s, err := g.CreateBaselineScenario(base, "baseline")
	require.NoError(t, err)
	require.Len(t, s.Risks, 2)
	assert.Empty(t, s.Modifications)

	// Mutating the scenario's copy never touches the base register
	r, _ := s.Risk("supplier")
	r.Distribution.Params[risk.ParamMean] = 0
	r.Mitigations[0].Cost = 999999

	assert.Equal(t, 100000.0, base[0].Distribution.Params[risk.ParamMean])
	assert.Equal(t, 5000.0, base[0].Mitigations[0].Cost)
}

func TestCreateScenario_AppliesModifications(t *testing.T) {
	g := NewGenerator()
	base := baseRisks()

	applied := core.StrategyID("dual-source")
	mods := map[core.RiskID]scenario.RiskModification{
		"supplier": {
			ParameterOverrides: map[string]float64{risk.ParamStdDev: 25000},
			MitigationApplied:  &applied,
		},
	}
	s, err := g.CreateScenario(base, mods, "mitigated", "dual sourcing applied")
	require.NoError(t, err)

	r, ok := s.Risk("supplier")
	require.True(t, ok)
	assert.Equal(t, 25000.0, r.Distribution.Params[risk.ParamStdDev])
	// Effectiveness folded into baseline impact: 100000 * (1 - 0.3)
	assert.InDelta(t, 70000, r.BaselineImpact, 1e-9)
	require.NotNil(t, r.AppliedMitigation)
	assert.Equal(t, applied, *r.AppliedMitigation)

	// Base register untouched
	assert.Equal(t, 100000.0, base[0].BaselineImpact)
	assert.Equal(t, 20000.0, base[0].Distribution.Params[risk.ParamStdDev])

	// Modifications kept for provenance, but never aliased to caller's map
	mods["supplier"].ParameterOverrides[risk.ParamStdDev] = 1
	assert.Equal(t, 25000.0, s.Modifications["supplier"].ParameterOverrides[risk.ParamStdDev])
}

func TestCreateScenario_UnknownTargets(t *testing.T) {
	g := NewGenerator()

	_, err := g.CreateScenario(baseRisks(), map[core.RiskID]scenario.RiskModification{
		"ghost": {},
	}, "bad", "")
	assert.ErrorIs(t, err, core.ErrRiskNotFound)

	missing := core.StrategyID("nope")
	_, err = g.CreateScenario(baseRisks(), map[core.RiskID]scenario.RiskModification{
		"supplier": {MitigationApplied: &missing},
	}, "bad", "")
	assert.ErrorIs(t, err, core.ErrStrategyNotFound)
}

func TestCreateScenario_InvalidOverrideRejected(t *testing.T) {
	g := NewGenerator()
	_, err := g.CreateScenario(baseRisks(), map[core.RiskID]scenario.RiskModification{
		"supplier": {ParameterOverrides: map[string]float64{risk.ParamStdDev: -5}},
	}, "bad", "")
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
}

func TestValidateScenarioIsolation(t *testing.T) {
	g := NewGenerator()
	base := baseRisks()

	a, err := g.CreateBaselineScenario(base, "a")
	require.NoError(t, err)
	b, err := g.CreateScenario(base, map[core.RiskID]scenario.RiskModification{
		"permits": {ParameterOverrides: map[string]float64{risk.ParamMax: 120}},
	}, "b", "")
	require.NoError(t, err)

	t.Run("independent scenarios pass", func(t *testing.T) {
		report := g.ValidateScenarioIsolation(a, b)
		assert.True(t, report.IsValid, "errors: %v", report.Errors)
	})

	t.Run("mutating one never changes the other", func(t *testing.T) {
		ra, _ := a.Risk("permits")
		ra.Distribution.Params[risk.ParamMax] = 9999
		rb, _ := b.Risk("permits")
		assert.Equal(t, 120.0, rb.Distribution.Params[risk.ParamMax])
	})

	t.Run("shared parameter map is detected", func(t *testing.T) {
		aliased := &scenario.Scenario{
			ID:    core.NewScenarioID(),
			Name:  "aliased",
			Risks: make([]risk.Risk, len(a.Risks)),
		}
		copy(aliased.Risks, a.Risks) // shallow: shares params maps and mitigation lists

		report := g.ValidateScenarioIsolation(a, aliased)
		assert.False(t, report.IsValid)
		require.NotEmpty(t, report.Errors)
		assert.Contains(t, report.Errors[0], "share")
	})

	t.Run("same instance twice fails", func(t *testing.T) {
		report := g.ValidateScenarioIsolation(a, a)
		assert.False(t, report.IsValid)
	})
}
