package objective

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/voxelplan-labs/voxelplan/internal/plan"
)

// assembleGradient chain-rules the combined effect-space delta back into
// weight space:
//
//	g = 2 * (alphaDose' * delta + physicalDose' * (delta .* quadraticTerm))
//
// which is the exact derivative of the objective given that effect depends on
// weights through linearTerm + quadraticTerm^2: d(quadraticTerm^2)/dweights
// is 2*quadraticTerm*sqrtBetaDose, and the dose-influence builder guarantees
// physicalDose = 2*sqrtBetaDose, so the physicalDose path carries the factor.
func assembleGradient(model *plan.DoseInfluence, terms EffectTerms, acc *accumulators) []float64 {
	voxels := model.Voxels()
	beamlets := model.Beamlets()

	delta := acc.combined()

	bias := mat.NewVecDense(beamlets, nil)
	bias.MulVec(model.AlphaDose.T(), mat.NewVecDense(voxels, delta))

	weighted := make([]float64, voxels)
	floats.MulTo(weighted, delta, terms.Quadratic)
	quadPath := mat.NewVecDense(beamlets, nil)
	quadPath.MulVec(model.PhysicalDose.T(), mat.NewVecDense(voxels, weighted))

	g := make([]float64, beamlets)
	for i := range g {
		g[i] = 2 * (bias.AtVec(i) + quadPath.AtVec(i))
	}
	return g
}
