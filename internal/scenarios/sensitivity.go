package scenarios

import (
	"fmt"
	"math"
	"sort"

	"risksim/domain/core"
	"risksim/domain/risk"
	"risksim/domain/scenario"
	"risksim/domain/simulation"
)

// PerformSensitivityAnalysis varies each target risk's baseline impact by
// the fractional variation range in both directions and builds an isolated
// low/high scenario pair per variable:
// low = baseline*(1-range), high = baseline*(1+range), exactly.
func (g *Generator) PerformSensitivityAnalysis(s *scenario.Scenario, targetIDs []core.RiskID, variationRange float64) ([]simulation.SensitivityResult, error) {
	if variationRange <= 0 || variationRange >= 1 {
		return nil, core.NewValidationError("variation_range", "must be in (0, 1)")
	}
	if len(targetIDs) == 0 {
		return nil, core.NewValidationError("target_variable_ids", "must name at least one risk")
	}

	results := make([]simulation.SensitivityResult, 0, len(targetIDs))
	for _, id := range targetIDs {
		r, ok := s.Risk(id)
		if !ok {
			return nil, fmt.Errorf("%s: %w", id, core.ErrRiskNotFound)
		}

		baseline := r.BaselineImpact
		low := baseline * (1 - variationRange)
		high := baseline * (1 + variationRange)

		lowScenario, err := g.scaledScenario(s, id, 1-variationRange, fmt.Sprintf("%s (low %s)", s.Name, id))
		if err != nil {
			return nil, err
		}
		highScenario, err := g.scaledScenario(s, id, 1+variationRange, fmt.Sprintf("%s (high %s)", s.Name, id))
		if err != nil {
			return nil, err
		}

		results = append(results, simulation.SensitivityResult{
			RiskID:           id,
			RiskName:         r.Name,
			BaselineValue:    baseline,
			LowValue:         low,
			HighValue:        high,
			AbsoluteChange:   high - low,
			SensitivityRatio: (high - low) / baseline,
			LowScenario:      lowScenario,
			HighScenario:     highScenario,
		})
	}
	return results, nil
}

// scaledScenario deep-copies the scenario's risks and scales one risk's
// baseline impact and distribution location by the given factor
func (g *Generator) scaledScenario(s *scenario.Scenario, target core.RiskID, factor float64, name string) (*scenario.Scenario, error) {
	copies, err := scenario.CloneRisks(s.Risks)
	if err != nil {
		return nil, err
	}
	out := &scenario.Scenario{
		ID:          core.NewScenarioID(),
		Name:        name,
		Description: fmt.Sprintf("sensitivity variant of %q scaling %s by %.4f", s.Name, target, factor),
		Risks:       copies,
	}
	r, ok := out.Risk(target)
	if !ok {
		return nil, fmt.Errorf("%s: %w", target, core.ErrRiskNotFound)
	}
	r.BaselineImpact *= factor
	scaleDistribution(&r.Distribution, factor)
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("sensitivity scaling of %s produced an invalid risk: %w", target, err)
	}

	out.Modifications = map[core.RiskID]scenario.RiskModification{
		target: {ParameterOverrides: copyParams(r.Distribution.Params)},
	}
	return out, nil
}

// scaleDistribution shifts a distribution's location by a positive factor.
// Spread parameters (std_dev, beta shape) are left untouched.
func scaleDistribution(d *risk.ProbabilityDistribution, factor float64) {
	switch d.Type {
	case risk.DistNormal:
		d.Params[risk.ParamMean] *= factor
	case risk.DistTriangular:
		d.Params[risk.ParamMin] *= factor
		d.Params[risk.ParamMode] *= factor
		d.Params[risk.ParamMax] *= factor
	case risk.DistUniform:
		d.Params[risk.ParamMin] *= factor
		d.Params[risk.ParamMax] *= factor
	case risk.DistBeta:
		if _, ok := d.Params[risk.ParamMin]; ok {
			d.Params[risk.ParamMin] *= factor
			d.Params[risk.ParamMax] *= factor
		}
	case risk.DistLognormal:
		// Multiplying a lognormal variable by a factor shifts mu by ln(factor)
		d.Params[risk.ParamMean] += math.Log(factor)
	}
}

func copyParams(params map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// IdentifyHighImpactParameters filters sensitivity results to those with
// |sensitivity_ratio| >= threshold, sorted descending by magnitude, tagging
// each with an impact level (high for |ratio| >= 0.5, medium otherwise)
func (g *Generator) IdentifyHighImpactParameters(results []simulation.SensitivityResult, threshold float64) []simulation.SensitivityResult {
	filtered := make([]simulation.SensitivityResult, 0, len(results))
	for _, res := range results {
		if math.Abs(res.SensitivityRatio) >= threshold {
			if math.Abs(res.SensitivityRatio) >= 0.5 {
				res.ImpactLevel = simulation.ImpactLevelHigh
			} else {
				res.ImpactLevel = simulation.ImpactLevelMedium
			}
			filtered = append(filtered, res)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return math.Abs(filtered[i].SensitivityRatio) > math.Abs(filtered[j].SensitivityRatio)
	})
	return filtered
}

// GenerateTornadoDiagramData flattens sensitivity results into the ranked
// bar-chart structure, sorted by outcome range descending. This is the only
// interface handed to the visualization layer.
func (g *Generator) GenerateTornadoDiagramData(results []simulation.SensitivityResult) *simulation.TornadoData {
	sorted := make([]simulation.SensitivityResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return (sorted[i].HighValue - sorted[i].LowValue) > (sorted[j].HighValue - sorted[j].LowValue)
	})

	data := &simulation.TornadoData{
		Variables:      make([]string, len(sorted)),
		LowImpacts:     make([]float64, len(sorted)),
		HighImpacts:    make([]float64, len(sorted)),
		Ranges:         make([]float64, len(sorted)),
		BaselineValues: make([]float64, len(sorted)),
	}
	for i, res := range sorted {
		data.Variables[i] = res.RiskName
		data.LowImpacts[i] = res.LowValue
		data.HighImpacts[i] = res.HighValue
		data.Ranges[i] = res.HighValue - res.LowValue
		data.BaselineValues[i] = res.BaselineValue
	}
	return data
}
