package objective

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/voxelplan-labs/voxelplan/internal/plan"
)

// GradientCheck compares the analytic gradient against a central
// finite-difference estimate of the objective and returns the worst relative
// error across components. It is a diagnostic: it re-evaluates the objective
// 2*numBeamlets times and is never called on the production path.
func GradientCheck(weights []float64, model *plan.DoseInfluence, set plan.StructureSet, step float64) (float64, error) {
	_, g, err := Evaluate(weights, model, set, true)
	if err != nil {
		return 0, err
	}

	perturbed := make([]float64, len(weights))
	copy(perturbed, weights)

	var worst float64
	for i := range weights {
		perturbed[i] = weights[i] + step
		fPlus, _, err := Evaluate(perturbed, model, set, false)
		if err != nil {
			return 0, err
		}
		perturbed[i] = weights[i] - step
		fMinus, _, err := Evaluate(perturbed, model, set, false)
		if err != nil {
			return 0, err
		}
		perturbed[i] = weights[i]

		numeric := (fPlus - fMinus) / (2 * step)
		scale := math.Max(math.Abs(g[i]), math.Abs(numeric))
		if scale == 0 {
			continue
		}
		relErr := math.Abs(g[i]-numeric) / scale
		if relErr > worst {
			worst = relErr
		}
		log.Debug().Int("beamlet", i).Float64("analytic", g[i]).Float64("numeric", numeric).Float64("rel_err", relErr).Msg("gradient check")
	}
	return worst, nil
}

// TraceFirstBeamletGradient recomputes the partial gradient of the first
// beamlet from its influence columns alone and logs it. Opt-in verification
// hook; it never touches the returned (f, g) of an evaluation.
func TraceFirstBeamletGradient(weights []float64, model *plan.DoseInfluence, set plan.StructureSet) error {
	terms := ComputeEffect(model, weights)
	acc := newAccumulators(model.Voxels())
	if _, err := aggregate(model, terms.Effect, set, acc); err != nil {
		return err
	}

	delta := acc.combined()
	var bias, quadPath float64
	for v := range delta {
		bias += model.AlphaDose.At(v, 0) * delta[v]
		quadPath += model.PhysicalDose.At(v, 0) * delta[v] * terms.Quadratic[v]
	}
	log.Debug().Float64("partial", 2*(bias+quadPath)).Msg("first-beamlet partial gradient")
	return nil
}
