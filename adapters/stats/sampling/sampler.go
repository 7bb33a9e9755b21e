package sampling

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"risksim/domain/risk"
)

// uniforms are clamped away from {0, 1} so quantile functions with
// unbounded support never return infinities
const uniformEps = 1e-12

// Quantile inverse-transforms a uniform draw u into the marginal
// distribution d, then applies the optional clamp bounds. The switch is
// exhaustive over the distribution families; d must already be validated.
func Quantile(d risk.ProbabilityDistribution, u float64) float64 {
	if u < uniformEps {
		u = uniformEps
	} else if u > 1-uniformEps {
		u = 1 - uniformEps
	}

	var x float64
	switch d.Type {
	case risk.DistNormal:
		x = distuv.Normal{Mu: d.Params[risk.ParamMean], Sigma: d.Params[risk.ParamStdDev]}.Quantile(u)
	case risk.DistTriangular:
		x = distuv.NewTriangle(d.Params[risk.ParamMin], d.Params[risk.ParamMax], d.Params[risk.ParamMode], nil).Quantile(u)
	case risk.DistUniform:
		x = distuv.Uniform{Min: d.Params[risk.ParamMin], Max: d.Params[risk.ParamMax]}.Quantile(u)
	case risk.DistBeta:
		x = distuv.Beta{Alpha: d.Params[risk.ParamAlpha], Beta: d.Params[risk.ParamBeta]}.Quantile(u)
		// Optional rescale of the [0,1] support
		if min, ok := d.Params[risk.ParamMin]; ok {
			max := d.Params[risk.ParamMax]
			x = min + x*(max-min)
		}
	case risk.DistLognormal:
		x = distuv.LogNormal{Mu: d.Params[risk.ParamMean], Sigma: d.Params[risk.ParamStdDev]}.Quantile(u)
	default:
		x = math.NaN()
	}
	return d.Clamp(x)
}

// NormalCDF maps a (possibly correlated) normal score back into a uniform
func NormalCDF(z float64) float64 {
	return distuv.UnitNormal.CDF(z)
}

// NormalScore converts a uniform draw into a standard normal score
func NormalScore(u float64) float64 {
	if u < uniformEps {
		u = uniformEps
	} else if u > 1-uniformEps {
		u = 1 - uniformEps
	}
	return distuv.UnitNormal.Quantile(u)
}
