// gradcheck verifies the analytic gradient of a loaded plan bundle against a
// central finite-difference estimate, for a handful of random weight vectors.
// Diagnostic tooling; never part of the evaluation path.
package main

import (
	"flag"
	"math/rand/v2"

	"github.com/rs/zerolog/log"

	"github.com/voxelplan-labs/voxelplan/internal/bundle"
	"github.com/voxelplan-labs/voxelplan/internal/objective"
	"github.com/voxelplan-labs/voxelplan/internal/utils/logger"
)

func main() {
	bundlePath := flag.String("bundle", "plan.json.zst", "path to the plan bundle")
	trials := flag.Int("trials", 5, "number of random weight vectors to check")
	step := flag.Float64("step", 1e-5, "finite-difference step size")
	tolerance := flag.Float64("tolerance", 1e-4, "worst acceptable relative error")
	traceFirst := flag.Bool("trace-first", false, "also log the first-beamlet partial gradient")
	logger.Init()

	model, set, err := bundle.Load(*bundlePath)
	if err != nil {
		log.Fatal().Err(err).Str("bundle", *bundlePath).Msg("failed to load plan bundle")
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	failed := false
	for trial := 0; trial < *trials; trial++ {
		weights := make([]float64, model.Beamlets())
		for i := range weights {
			weights[i] = 0.5 + rng.Float64()
		}

		worst, err := objective.GradientCheck(weights, model, set, *step)
		if err != nil {
			log.Fatal().Err(err).Msg("gradient check failed to evaluate")
		}
		if worst > *tolerance {
			failed = true
			log.Error().Int("trial", trial).Float64("worst_rel_err", worst).Msg("gradient check FAILED")
		} else {
			log.Info().Int("trial", trial).Float64("worst_rel_err", worst).Msg("gradient check passed")
		}

		if *traceFirst {
			if err := objective.TraceFirstBeamletGradient(weights, model, set); err != nil {
				log.Error().Err(err).Msg("first-beamlet trace failed")
			}
		}
	}

	if failed {
		log.Fatal().Msg("analytic gradient disagrees with finite differences")
	}
}
