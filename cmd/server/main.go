package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/voxelplan-labs/voxelplan/internal/bundle"
	"github.com/voxelplan-labs/voxelplan/internal/config"
	"github.com/voxelplan-labs/voxelplan/internal/evalapi"
	"github.com/voxelplan-labs/voxelplan/internal/plan"
	"github.com/voxelplan-labs/voxelplan/internal/utils/logger"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting evaluation server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	var model *plan.DoseInfluence
	var set plan.StructureSet
	if cfg.BundleURL != "" {
		model, set, err = bundle.Fetch(cfg.BundleURL)
	} else {
		model, set, err = bundle.Load(cfg.BundlePath)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load plan bundle")
	}
	log.Info().Int("voxels", model.Voxels()).Int("beamlets", model.Beamlets()).Int("structures", len(set)).Msg("plan bundle loaded")

	s := evalapi.NewServer(&cfg.ServerEnvConfig, model, set)

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		cancel()
	}()

	if err := s.Start(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
