package objective

import (
	"github.com/voxelplan-labs/voxelplan/internal/plan"
)

// Evaluate computes the objective value for one weight vector and, when
// requested, its analytic gradient. The gradient slice is nil when
// wantGradient is false; skipping it avoids the transposed dense products
// entirely.
//
// The caller guarantees len(weights) == model.Beamlets() and that the
// structure set was validated against the model at load time. All
// intermediates are per-call locals, so concurrent evaluations against the
// same model and structure set are safe.
func Evaluate(weights []float64, model *plan.DoseInfluence, set plan.StructureSet, wantGradient bool) (float64, []float64, error) {
	terms := ComputeEffect(model, weights)
	acc := newAccumulators(model.Voxels())

	f, err := aggregate(model, terms.Effect, set, acc)
	if err != nil {
		return 0, nil, err
	}

	if !wantGradient {
		return f, nil, nil
	}
	return f, assembleGradient(model, terms, acc), nil
}
