package objective

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/voxelplan-labs/voxelplan/internal/plan"
)

// twoVoxelModel yields effect = [2, 3] for unit weight on one beamlet, with
// refEffect = [1, 1] at dose level 1. PhysicalDose keeps the model invariant
// physicalDose = 2*sqrtBetaDose that gradient assembly relies on.
func twoVoxelModel() *plan.DoseInfluence {
	return &plan.DoseInfluence{
		AlphaDose:    mat.NewDense(2, 1, []float64{1, 2}),
		SqrtBetaDose: mat.NewDense(2, 1, []float64{1, 1}),
		PhysicalDose: mat.NewDense(2, 1, []float64{2, 2}),
		Ax:           []float64{1, 1},
		Bx:           []float64{0, 0},
	}
}

func TestOverdoseHandComputed(t *testing.T) {
	model := twoVoxelModel()
	set := plan.StructureSet{{
		Name:           "oar",
		Classification: plan.OAR,
		Voxels:         []int{0, 1},
		Constraints:    []plan.ConstraintSpec{{Kind: plan.Overdose, Weight: 1, DoseLevel: 1}},
	}}

	f, _, err := Evaluate([]float64{1}, model, set, false)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	// diff = [1, 2], f = (1/2)*(1 + 4)
	if math.Abs(f-2.5) > 1e-12 {
		t.Fatalf("f = %f, want 2.5", f)
	}
}

func TestUnderdoseZeroWhenEffectAboveReference(t *testing.T) {
	model := twoVoxelModel()
	set := plan.StructureSet{{
		Name:           "target",
		Classification: plan.Target,
		Voxels:         []int{0, 1},
		Constraints:    []plan.ConstraintSpec{{Kind: plan.Underdose, Weight: 1, DoseLevel: 1}},
	}}

	f, g, err := Evaluate([]float64{1}, model, set, true)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if f != 0 {
		t.Fatalf("underdose f = %f, want 0 when effect is above reference everywhere", f)
	}
	for i, gi := range g {
		if gi != 0 {
			t.Fatalf("g[%d] = %f, want 0", i, gi)
		}
	}
}

func TestOverdoseZeroWhenEffectBelowReference(t *testing.T) {
	model := twoVoxelModel()
	set := plan.StructureSet{{
		Name:           "oar",
		Classification: plan.OAR,
		Voxels:         []int{0, 1},
		Constraints:    []plan.ConstraintSpec{{Kind: plan.Overdose, Weight: 1, DoseLevel: 10}},
	}}

	// refEffect = [10, 10] well above effect = [2, 3].
	f, _, err := Evaluate([]float64{1}, model, set, false)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if f != 0 {
		t.Fatalf("overdose f = %f, want 0 when effect is below reference everywhere", f)
	}
}

func TestDeviationPenalizesBothDirections(t *testing.T) {
	model := twoVoxelModel()
	// refEffect = [2.5, 2.5]: voxel 0 is under, voxel 1 is over.
	set := plan.StructureSet{{
		Name:           "target",
		Classification: plan.Target,
		Voxels:         []int{0, 1},
		Constraints:    []plan.ConstraintSpec{{Kind: plan.Deviation, Weight: 1, DoseLevel: 2.5}},
	}}

	f, _, err := Evaluate([]float64{1}, model, set, false)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	want := 0.5 * (0.25 + 0.25)
	if math.Abs(f-want) > 1e-12 {
		t.Fatalf("deviation f = %f, want %f", f, want)
	}
}

func TestEUDExponentOneMatchesMean(t *testing.T) {
	model := twoVoxelModel()
	base := plan.Structure{
		Name:           "oar",
		Classification: plan.OAR,
		Voxels:         []int{0, 1},
	}

	meanSet := plan.StructureSet{base}
	meanSet[0].Constraints = []plan.ConstraintSpec{{Kind: plan.Mean, Weight: 0.7}}
	eudSet := plan.StructureSet{base}
	eudSet[0].Constraints = []plan.ConstraintSpec{{Kind: plan.EUD, Weight: 0.7, Exponent: 1}}

	fMean, _, err := Evaluate([]float64{1}, model, meanSet, false)
	if err != nil {
		t.Fatalf("evaluate mean: %v", err)
	}
	fEUD, _, err := Evaluate([]float64{1}, model, eudSet, false)
	if err != nil {
		t.Fatalf("evaluate eud: %v", err)
	}
	if math.Abs(fMean-fEUD) > 1e-12 {
		t.Fatalf("EUD(exponent=1) f = %f, mean f = %f; want equal", fEUD, fMean)
	}
}

func TestEUDNonPositivePowerSumContributesNothing(t *testing.T) {
	model := twoVoxelModel()
	set := plan.StructureSet{{
		Name:           "oar",
		Classification: plan.OAR,
		Voxels:         []int{0, 1},
		Constraints:    []plan.ConstraintSpec{{Kind: plan.EUD, Weight: 1, Exponent: 0.5}},
	}}

	// Zero weights give zero effect, so the power sum is zero.
	f, g, err := Evaluate([]float64{0}, model, set, true)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if f != 0 {
		t.Fatalf("EUD f = %f, want 0 for non-positive power sum", f)
	}
	for i, gi := range g {
		if gi != 0 {
			t.Fatalf("g[%d] = %f, want 0", i, gi)
		}
	}
}

func TestEUDNegativeEffectFractionalExponentContributesNothing(t *testing.T) {
	// A negative alpha column drives voxel 0's effect negative, so the
	// fractional power of that voxel is NaN before summation. The guard must
	// still zero the term instead of letting NaN through.
	model := &plan.DoseInfluence{
		AlphaDose:    mat.NewDense(2, 1, []float64{-1, 0.5}),
		SqrtBetaDose: mat.NewDense(2, 1, []float64{0, 0}),
		PhysicalDose: mat.NewDense(2, 1, []float64{0, 0}),
		Ax:           []float64{1, 1},
		Bx:           []float64{0, 0},
	}
	set := plan.StructureSet{{
		Name:           "oar",
		Classification: plan.OAR,
		Voxels:         []int{0, 1},
		Constraints:    []plan.ConstraintSpec{{Kind: plan.EUD, Weight: 1, Exponent: 0.5}},
	}}

	f, g, err := Evaluate([]float64{1}, model, set, true)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if f != 0 || math.IsNaN(f) {
		t.Fatalf("EUD f = %f, want 0 for a NaN power sum", f)
	}
	for i, gi := range g {
		if gi != 0 {
			t.Fatalf("g[%d] = %f, want 0", i, gi)
		}
	}
}

func TestUnknownKindAbortsEvaluation(t *testing.T) {
	model := twoVoxelModel()
	set := plan.StructureSet{{
		Name:           "oar",
		Classification: plan.OAR,
		Voxels:         []int{0, 1},
		Constraints: []plan.ConstraintSpec{
			{Kind: plan.Mean, Weight: 1},
			{Kind: plan.ConstraintKind("MAXIMUM"), Weight: 1, DoseLevel: 1},
		},
	}}

	_, _, err := Evaluate([]float64{1}, model, set, true)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
}
