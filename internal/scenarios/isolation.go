package scenarios

import (
	"fmt"
	"reflect"

	"risksim/domain/risk"
	"risksim/domain/scenario"
	"risksim/domain/simulation"
)

// ValidateScenarioIsolation fails if any nested mutable object (risk slice
// backing arrays, distribution parameter maps, mitigation lists, clamp-bound
// pointers, modification maps) is identity-shared between the two scenarios.
// Equal values are fine; shared references are not.
func (g *Generator) ValidateScenarioIsolation(a, b *scenario.Scenario) simulation.ValidationReport {
	report := simulation.NewValidationReport()
	if a == nil || b == nil {
		report.AddError("scenario isolation requires two non-nil scenarios")
		return report
	}
	if a == b {
		report.AddError("both arguments are the same scenario instance")
		return report
	}

	owned := make(map[uintptr]string)
	collectScenarioRefs(a, owned)

	other := make(map[uintptr]string)
	collectScenarioRefs(b, other)

	for ptr, loc := range other {
		if prior, shared := owned[ptr]; shared {
			report.AddError(fmt.Sprintf("scenarios %s and %s share %s (also reachable as %s)", a.ID, b.ID, loc, prior))
		}
	}
	return report
}

func collectScenarioRefs(s *scenario.Scenario, into map[uintptr]string) {
	if len(s.Risks) > 0 {
		into[reflect.ValueOf(s.Risks).Pointer()] = fmt.Sprintf("risk slice of scenario %q", s.Name)
	}
	for i := range s.Risks {
		collectRiskRefs(&s.Risks[i], into)
	}
	if s.Modifications != nil {
		into[reflect.ValueOf(s.Modifications).Pointer()] = fmt.Sprintf("modification map of scenario %q", s.Name)
		for id, mod := range s.Modifications {
			if mod.ParameterOverrides != nil {
				into[reflect.ValueOf(mod.ParameterOverrides).Pointer()] = fmt.Sprintf("parameter overrides for %s", id)
			}
			if mod.DistributionType != nil {
				into[uintptr(reflect.ValueOf(mod.DistributionType).Pointer())] = fmt.Sprintf("distribution type override for %s", id)
			}
			if mod.MitigationApplied != nil {
				into[uintptr(reflect.ValueOf(mod.MitigationApplied).Pointer())] = fmt.Sprintf("mitigation reference for %s", id)
			}
		}
	}
}

func collectRiskRefs(r *risk.Risk, into map[uintptr]string) {
	if r.Distribution.Params != nil {
		into[reflect.ValueOf(r.Distribution.Params).Pointer()] = fmt.Sprintf("distribution parameters of risk %s", r.ID)
	}
	if r.Distribution.LowerBound != nil {
		into[uintptr(reflect.ValueOf(r.Distribution.LowerBound).Pointer())] = fmt.Sprintf("lower bound of risk %s", r.ID)
	}
	if r.Distribution.UpperBound != nil {
		into[uintptr(reflect.ValueOf(r.Distribution.UpperBound).Pointer())] = fmt.Sprintf("upper bound of risk %s", r.ID)
	}
	if len(r.Mitigations) > 0 {
		into[reflect.ValueOf(r.Mitigations).Pointer()] = fmt.Sprintf("mitigation list of risk %s", r.ID)
	}
	if len(r.CorrelationDependencies) > 0 {
		into[reflect.ValueOf(r.CorrelationDependencies).Pointer()] = fmt.Sprintf("correlation dependencies of risk %s", r.ID)
	}
	if r.AppliedMitigation != nil {
		into[uintptr(reflect.ValueOf(r.AppliedMitigation).Pointer())] = fmt.Sprintf("applied mitigation of risk %s", r.ID)
	}
}
