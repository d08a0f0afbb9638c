package main

import (
	"flag"
	"os"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"

	"github.com/voxelplan-labs/voxelplan/internal/bundle"
	"github.com/voxelplan-labs/voxelplan/internal/objective"
	"github.com/voxelplan-labs/voxelplan/internal/utils/logger"
)

func main() {
	bundlePath := flag.String("bundle", "plan.json.zst", "path to the plan bundle")
	weightsPath := flag.String("weights", "", "path to a JSON array of beamlet weights; uniform weights when empty")
	wantGradient := flag.Bool("gradient", true, "compute the gradient alongside the objective")
	logger.Init()

	model, set, err := bundle.Load(*bundlePath)
	if err != nil {
		log.Fatal().Err(err).Str("bundle", *bundlePath).Msg("failed to load plan bundle")
	}

	weights := make([]float64, model.Beamlets())
	if *weightsPath == "" {
		for i := range weights {
			weights[i] = 1
		}
	} else {
		data, err := os.ReadFile(*weightsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read weights file")
		}
		if err := sonic.Unmarshal(data, &weights); err != nil {
			log.Fatal().Err(err).Msg("failed to parse weights file")
		}
		if len(weights) != model.Beamlets() {
			log.Fatal().Int("weights", len(weights)).Int("beamlets", model.Beamlets()).Msg("weight vector length mismatch")
		}
	}

	f, g, err := objective.Evaluate(weights, model, set, *wantGradient)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	ev := log.Info().Float64("objective", f)
	if *wantGradient {
		ev = ev.Float64("gradient_norm", floats.Norm(g, 2))
	}
	ev.Msg("evaluation complete")
}
