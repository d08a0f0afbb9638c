package objective

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/voxelplan-labs/voxelplan/internal/plan"
)

// aggregate drives the penalty evaluation across every (structure, constraint)
// pair, summing scalar contributions into the objective and sensitivities into
// the family accumulators. Structures classified IGNORED contribute nothing.
// Accumulation is additive, so ordering only affects float rounding.
func aggregate(model *plan.DoseInfluence, effect []float64, set plan.StructureSet, acc *accumulators) (float64, error) {
	var f float64
	for _, st := range set {
		if st.Classification != plan.Target && st.Classification != plan.OAR {
			continue
		}
		for i, c := range st.Constraints {
			contrib, err := evalConstraint(model, effect, st.Voxels, c, acc)
			if err != nil {
				return 0, fmt.Errorf("structure %q constraint %d: %w", st.Name, i, err)
			}
			log.Trace().Str("structure", st.Name).Str("kind", string(c.Kind)).Float64("contribution", contrib).Msg("constraint evaluated")
			f += contrib
		}
	}
	return f, nil
}
