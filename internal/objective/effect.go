// Package objective evaluates the radiobiological treatment-quality objective
// and its analytic gradient for a beamlet-weight vector, given a precomputed
// dose-influence model and a structure set. Every evaluation is a pure
// function of its inputs and safe to run concurrently against a shared
// read-only model.
package objective

import (
	"gonum.org/v1/gonum/mat"

	"github.com/voxelplan-labs/voxelplan/internal/plan"
)

// EffectTerms holds the per-voxel intermediates of the linear-quadratic
// effect model for one weight vector. Linear and Quadratic are retained
// because the gradient chain rule reuses them.
type EffectTerms struct {
	Linear    []float64
	Quadratic []float64
	Effect    []float64
}

// ComputeEffect applies the linear-quadratic model:
//
//	effect = alphaDose*w + (sqrtBetaDose*w)^2
//
// with the square taken elementwise. This dense product dominates the cost of
// an evaluation.
func ComputeEffect(model *plan.DoseInfluence, weights []float64) EffectTerms {
	voxels := model.Voxels()
	w := mat.NewVecDense(len(weights), weights)

	linear := mat.NewVecDense(voxels, nil)
	linear.MulVec(model.AlphaDose, w)

	quadratic := mat.NewVecDense(voxels, nil)
	quadratic.MulVec(model.SqrtBetaDose, w)

	effect := make([]float64, voxels)
	for v := range effect {
		q := quadratic.AtVec(v)
		effect[v] = linear.AtVec(v) + q*q
	}

	return EffectTerms{
		Linear:    linear.RawVector().Data,
		Quadratic: quadratic.RawVector().Data,
		Effect:    effect,
	}
}
