package objective

import (
	"errors"
	"fmt"
	"math"

	"github.com/voxelplan-labs/voxelplan/internal/plan"
)

// ErrUnknownKind signals a malformed constraint specification from an
// upstream collaborator. The evaluation aborts rather than silently dropping
// the term, which would corrupt the objective/gradient contract invisibly.
var ErrUnknownKind = errors.New("unknown constraint kind")

// accumulators collects per-voxel effect-space sensitivities, one buffer per
// penalty family. Buffers are full model length and updated additively, so a
// voxel touched by several constraints accumulates every contribution.
type accumulators struct {
	underdose []float64
	overdose  []float64
	deviation []float64
	mean      []float64
	eud       []float64
}

func newAccumulators(voxels int) *accumulators {
	return &accumulators{
		underdose: make([]float64, voxels),
		overdose:  make([]float64, voxels),
		deviation: make([]float64, voxels),
		mean:      make([]float64, voxels),
		eud:       make([]float64, voxels),
	}
}

// combined merges the five family buffers into one effect-space delta vector.
// The quadratic families accumulate half the effect-space derivative (the
// uniform factor 2 in gradient assembly restores it), while the mean and EUD
// deltas are the full derivative, so those two are halved here to share the
// same factor.
func (a *accumulators) combined() []float64 {
	delta := make([]float64, len(a.underdose))
	for v := range delta {
		delta[v] = a.underdose[v] + a.overdose[v] + a.deviation[v] + 0.5*(a.mean[v]+a.eud[v])
	}
	return delta
}

// evalConstraint computes one constraint's scalar contribution to the
// objective and adds its sensitivity delta into the matching family buffer.
func evalConstraint(model *plan.DoseInfluence, effect []float64, voxels []int, c plan.ConstraintSpec, acc *accumulators) (float64, error) {
	n := float64(len(voxels))
	if n == 0 {
		return 0, nil
	}
	rho := c.Weight / n

	switch c.Kind {
	case plan.Underdose:
		ref := model.ReferenceEffect(voxels, c.DoseLevel)
		var f float64
		for i, v := range voxels {
			diff := effect[v] - ref[i]
			if diff > 0 {
				continue
			}
			f += rho * diff * diff
			acc.underdose[v] += rho * diff
		}
		return f, nil

	case plan.Overdose:
		ref := model.ReferenceEffect(voxels, c.DoseLevel)
		var f float64
		for i, v := range voxels {
			diff := effect[v] - ref[i]
			if diff < 0 {
				continue
			}
			f += rho * diff * diff
			acc.overdose[v] += rho * diff
		}
		return f, nil

	case plan.Deviation:
		ref := model.ReferenceEffect(voxels, c.DoseLevel)
		var f float64
		for i, v := range voxels {
			diff := effect[v] - ref[i]
			f += rho * diff * diff
			acc.deviation[v] += rho * diff
		}
		return f, nil

	case plan.Mean:
		var f float64
		for _, v := range voxels {
			f += rho * effect[v]
			acc.mean[v] += rho
		}
		return f, nil

	case plan.EUD:
		a := c.Exponent
		var s float64
		for _, v := range voxels {
			s += math.Pow(effect[v], a)
		}
		// A non-positive power sum has no real-valued generalized mean for a
		// fractional or negative exponent; the term contributes nothing. The
		// negated comparison also catches the NaN a negative effect value
		// produces under a fractional exponent.
		if !(s > 0) {
			return 0, nil
		}
		f := c.Weight * math.Pow(s/n, 1/a)
		coef := c.Weight * math.Pow(1/n, 1/a) * math.Pow(s, (1-a)/a)
		for _, v := range voxels {
			acc.eud[v] += coef * math.Pow(effect[v], a-1)
		}
		return f, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
}
