// Package plan defines the treatment-plan data model shared by the objective
// evaluator: the precomputed dose-influence operators and the structure set
// with its per-structure constraint specifications.
package plan

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DoseInfluence holds the precomputed dose-influence operators mapping beamlet
// weights to per-voxel dose and biological-effect quantities. All matrices
// share the same voxel row indexing and beamlet column indexing. The model is
// read-only for the lifetime of an optimization run.
type DoseInfluence struct {
	// AlphaDose and SqrtBetaDose are the linear and square-root-quadratic
	// components of the linear-quadratic effect operator.
	AlphaDose    *mat.Dense
	SqrtBetaDose *mat.Dense
	PhysicalDose *mat.Dense

	// Ax and Bx are per-voxel radiosensitivity coefficients used to convert a
	// prescribed physical dose level into effect units.
	Ax []float64
	Bx []float64
}

// Voxels returns the number of voxel rows in the model.
func (d *DoseInfluence) Voxels() int {
	r, _ := d.AlphaDose.Dims()
	return r
}

// Beamlets returns the number of beamlet columns in the model.
func (d *DoseInfluence) Beamlets() int {
	_, c := d.AlphaDose.Dims()
	return c
}

// Validate checks that every operator and coefficient vector agrees on the
// voxel and beamlet dimensions. It is run once at load time; the evaluator
// itself assumes a validated model.
func (d *DoseInfluence) Validate() error {
	if d.AlphaDose == nil || d.SqrtBetaDose == nil || d.PhysicalDose == nil {
		return fmt.Errorf("dose influence: missing operator matrix")
	}
	voxels, beamlets := d.AlphaDose.Dims()
	for name, m := range map[string]*mat.Dense{
		"sqrt_beta_dose": d.SqrtBetaDose,
		"physical_dose":  d.PhysicalDose,
	} {
		r, c := m.Dims()
		if r != voxels || c != beamlets {
			return fmt.Errorf("dose influence: %s is %dx%d, want %dx%d", name, r, c, voxels, beamlets)
		}
	}
	if len(d.Ax) != voxels {
		return fmt.Errorf("dose influence: ax has %d entries, want %d", len(d.Ax), voxels)
	}
	if len(d.Bx) != voxels {
		return fmt.Errorf("dose influence: bx has %d entries, want %d", len(d.Bx), voxels)
	}
	return nil
}

// ReferenceEffect converts a prescribed physical dose level into effect units
// for the given voxel subset, using the per-voxel radiosensitivity
// coefficients: ax*d + bx*d^2.
func (d *DoseInfluence) ReferenceEffect(voxels []int, doseLevel float64) []float64 {
	ref := make([]float64, len(voxels))
	for i, v := range voxels {
		ref[i] = d.Ax[v]*doseLevel + d.Bx[v]*doseLevel*doseLevel
	}
	return ref
}
