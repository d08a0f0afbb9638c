package plan

import "fmt"

// Classification says how a structure participates in the objective. Only
// targets and organs-at-risk contribute; ignored structures are skipped
// entirely.
type Classification string

const (
	Target  Classification = "TARGET"
	OAR     Classification = "OAR"
	Ignored Classification = "IGNORED"
)

// Known reports whether the classification is one of the closed set.
func (c Classification) Known() bool {
	switch c {
	case Target, OAR, Ignored:
		return true
	}
	return false
}

// ConstraintKind selects the penalty-shape formula applied to a structure's
// effect distribution.
type ConstraintKind string

const (
	Underdose ConstraintKind = "UNDERDOSE"
	Overdose  ConstraintKind = "OVERDOSE"
	Deviation ConstraintKind = "DEVIATION"
	Mean      ConstraintKind = "MEAN"
	EUD       ConstraintKind = "EUD"
)

// Known reports whether the kind is one of the closed set. An unknown kind in
// external data is a fatal configuration error, never silently skipped.
func (k ConstraintKind) Known() bool {
	switch k {
	case Underdose, Overdose, Deviation, Mean, EUD:
		return true
	}
	return false
}

// ConstraintSpec is one penalty term attached to a structure.
type ConstraintSpec struct {
	Kind ConstraintKind `json:"kind"`
	// Weight is the penalty weight rho, non-negative.
	Weight float64 `json:"weight"`
	// DoseLevel is the prescribed physical dose level, interpreted per kind.
	// Unused for MEAN.
	DoseLevel float64 `json:"dose_level,omitempty"`
	// Exponent is the generalized power-mean exponent, required and non-zero
	// for EUD only.
	Exponent float64 `json:"exponent,omitempty"`
}

// Structure is a named anatomical region with its voxel subset and the
// constraints evaluated over it. Voxel subsets may overlap across structures.
type Structure struct {
	Name           string           `json:"name"`
	Classification Classification   `json:"classification"`
	Voxels         []int            `json:"voxels"`
	Constraints    []ConstraintSpec `json:"constraints"`
}

// StructureSet is the ordered collection of structures in a plan.
type StructureSet []Structure

// Validate checks the structure set against a model's voxel count. It is the
// loader's responsibility; evaluation assumes a validated set.
func (s StructureSet) Validate(numVoxels int) error {
	for _, st := range s {
		if !st.Classification.Known() {
			return fmt.Errorf("structure %q: unknown classification %q", st.Name, st.Classification)
		}
		for _, v := range st.Voxels {
			if v < 0 || v >= numVoxels {
				return fmt.Errorf("structure %q: voxel index %d out of range [0,%d)", st.Name, v, numVoxels)
			}
		}
		for i, c := range st.Constraints {
			if !c.Kind.Known() {
				return fmt.Errorf("structure %q constraint %d: unknown kind %q", st.Name, i, c.Kind)
			}
			if c.Weight < 0 {
				return fmt.Errorf("structure %q constraint %d: negative weight %f", st.Name, i, c.Weight)
			}
			if c.Kind == EUD && c.Exponent == 0 {
				return fmt.Errorf("structure %q constraint %d: EUD exponent must be non-zero", st.Name, i)
			}
		}
	}
	return nil
}
