package objective

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/voxelplan-labs/voxelplan/internal/plan"
)

func TestComputeEffectZeroWeights(t *testing.T) {
	model := &plan.DoseInfluence{
		AlphaDose:    mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6}),
		SqrtBetaDose: mat.NewDense(3, 2, []float64{1, 1, 1, 1, 1, 1}),
		PhysicalDose: mat.NewDense(3, 2, []float64{1, 1, 1, 1, 1, 1}),
		Ax:           []float64{1, 1, 1},
		Bx:           []float64{0, 0, 0},
	}

	terms := ComputeEffect(model, []float64{0, 0})
	for v, e := range terms.Effect {
		if e != 0 {
			t.Fatalf("effect[%d] = %f, want 0 for zero weights", v, e)
		}
	}
}

func TestComputeEffectLinearQuadraticSplit(t *testing.T) {
	// One beamlet, unit weight: effect = alpha + sqrtBeta^2 per voxel.
	model := &plan.DoseInfluence{
		AlphaDose:    mat.NewDense(2, 1, []float64{1, 2}),
		SqrtBetaDose: mat.NewDense(2, 1, []float64{3, 0.5}),
		PhysicalDose: mat.NewDense(2, 1, []float64{1, 1}),
		Ax:           []float64{1, 1},
		Bx:           []float64{0, 0},
	}

	terms := ComputeEffect(model, []float64{1})
	want := []float64{1 + 9, 2 + 0.25}
	for v := range want {
		if math.Abs(terms.Effect[v]-want[v]) > 1e-12 {
			t.Fatalf("effect[%d] = %f, want %f", v, terms.Effect[v], want[v])
		}
	}
}
