package risk

import (
	"fmt"

	"risksim/domain/core"
)

// DistributionType identifies the probability distribution family
type DistributionType string

const (
	DistNormal     DistributionType = "normal"
	DistTriangular DistributionType = "triangular"
	DistUniform    DistributionType = "uniform"
	DistBeta       DistributionType = "beta"
	DistLognormal  DistributionType = "lognormal"
)

// Distribution parameter names
const (
	ParamMean   = "mean"
	ParamStdDev = "std_dev"
	ParamMin    = "min"
	ParamMode   = "mode"
	ParamMax    = "max"
	ParamAlpha  = "alpha"
	ParamBeta   = "beta"
)

// ProbabilityDistribution describes the marginal distribution of a risk's impact.
// Parameters are keyed by name; the required keys depend on Type.
type ProbabilityDistribution struct {
	Type       DistributionType   `json:"distribution_type"`
	Params     map[string]float64 `json:"parameters"`
	LowerBound *float64           `json:"lower_bound,omitempty"`
	UpperBound *float64           `json:"upper_bound,omitempty"`
}

// Param returns a named parameter and whether it is present
func (d ProbabilityDistribution) Param(name string) (float64, bool) {
	v, ok := d.Params[name]
	return v, ok
}

// Validate checks the parameter set for the distribution family.
// The switch is exhaustive over DistributionType so new families are
// compile-visible additions.
func (d ProbabilityDistribution) Validate() error {
	if d.Params == nil {
		return fmt.Errorf("%w: %s has no parameters", core.ErrInvalidDistribution, d.Type)
	}

	switch d.Type {
	case DistNormal:
		if err := d.requireParams(ParamMean, ParamStdDev); err != nil {
			return err
		}
		if d.Params[ParamStdDev] <= 0 {
			return fmt.Errorf("%w: normal std_dev must be > 0, got %v", core.ErrInvalidDistribution, d.Params[ParamStdDev])
		}
	case DistTriangular:
		if err := d.requireParams(ParamMin, ParamMode, ParamMax); err != nil {
			return err
		}
		min, mode, max := d.Params[ParamMin], d.Params[ParamMode], d.Params[ParamMax]
		if !(min <= mode && mode <= max) {
			return fmt.Errorf("%w: triangular requires min <= mode <= max, got min=%v mode=%v max=%v", core.ErrInvalidDistribution, min, mode, max)
		}
		if min >= max {
			return fmt.Errorf("%w: triangular requires min < max, got min=%v max=%v", core.ErrInvalidDistribution, min, max)
		}
	case DistUniform:
		if err := d.requireParams(ParamMin, ParamMax); err != nil {
			return err
		}
		if d.Params[ParamMin] >= d.Params[ParamMax] {
			return fmt.Errorf("%w: uniform requires min < max, got min=%v max=%v", core.ErrInvalidDistribution, d.Params[ParamMin], d.Params[ParamMax])
		}
	case DistBeta:
		if err := d.requireParams(ParamAlpha, ParamBeta); err != nil {
			return err
		}
		if d.Params[ParamAlpha] <= 0 || d.Params[ParamBeta] <= 0 {
			return fmt.Errorf("%w: beta requires alpha > 0 and beta > 0, got alpha=%v beta=%v", core.ErrInvalidDistribution, d.Params[ParamAlpha], d.Params[ParamBeta])
		}
		// Optional scaling range for the [0,1] support
		min, hasMin := d.Params[ParamMin]
		max, hasMax := d.Params[ParamMax]
		if hasMin != hasMax {
			return fmt.Errorf("%w: beta scaling requires both min and max", core.ErrInvalidDistribution)
		}
		if hasMin && min >= max {
			return fmt.Errorf("%w: beta scaling requires min < max, got min=%v max=%v", core.ErrInvalidDistribution, min, max)
		}
	case DistLognormal:
		if err := d.requireParams(ParamMean, ParamStdDev); err != nil {
			return err
		}
		if d.Params[ParamStdDev] <= 0 {
			return fmt.Errorf("%w: lognormal std_dev must be > 0, got %v", core.ErrInvalidDistribution, d.Params[ParamStdDev])
		}
	default:
		return fmt.Errorf("%w: unknown distribution type %q", core.ErrInvalidDistribution, d.Type)
	}

	if d.LowerBound != nil && d.UpperBound != nil && *d.LowerBound > *d.UpperBound {
		return fmt.Errorf("%w: lower bound %v exceeds upper bound %v", core.ErrInvalidDistribution, *d.LowerBound, *d.UpperBound)
	}
	return nil
}

// Clamp applies the optional bounds to a sampled value
func (d ProbabilityDistribution) Clamp(x float64) float64 {
	if d.LowerBound != nil && x < *d.LowerBound {
		x = *d.LowerBound
	}
	if d.UpperBound != nil && x > *d.UpperBound {
		x = *d.UpperBound
	}
	return x
}

func (d ProbabilityDistribution) requireParams(names ...string) error {
	for _, name := range names {
		if _, ok := d.Params[name]; !ok {
			return fmt.Errorf("%w: %s requires parameter %q", core.ErrInvalidDistribution, d.Type, name)
		}
	}
	return nil
}
