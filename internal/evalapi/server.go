package evalapi

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/voxelplan-labs/voxelplan/internal/config"
	"github.com/voxelplan-labs/voxelplan/internal/objective"
	"github.com/voxelplan-labs/voxelplan/internal/plan"
)

// Server serves objective evaluations for one loaded plan bundle.
type Server struct {
	App   *fiber.App
	cfg   *config.ServerEnvConfig
	model *plan.DoseInfluence
	set   plan.StructureSet
}

func NewServer(cfg *config.ServerEnvConfig, model *plan.DoseInfluence, set plan.StructureSet) *Server {
	app := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
		BodyLimit:   cfg.BodySizeLimit,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	s := &Server{App: app, cfg: cfg, model: model, set: set}
	app.Get("/health", s.handleHealth)
	app.Post("/evaluate", s.handleEvaluate)
	return s
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(HealthResponse{
		Status:     "ok",
		Voxels:     s.model.Voxels(),
		Beamlets:   s.model.Beamlets(),
		Structures: len(s.set),
	})
}

func (s *Server) handleEvaluate(c *fiber.Ctx) error {
	var req EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Error().Err(err).Msg("failed to parse evaluate request")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid payload"})
	}
	if len(req.Weights) != s.model.Beamlets() {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: fmt.Sprintf("weight vector has %d entries, model has %d beamlets", len(req.Weights), s.model.Beamlets()),
		})
	}

	start := time.Now()
	f, g, err := objective.Evaluate(req.Weights, s.model, s.set, req.WantGradient)
	if err != nil {
		// The bundle is validated at load, so this signals a corrupted plan.
		log.Error().Err(err).Msg("evaluation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	elapsed := time.Since(start)
	log.Debug().Float64("objective", f).Bool("gradient", req.WantGradient).Dur("elapsed", elapsed).Msg("evaluation served")
	return c.Status(fiber.StatusOK).JSON(EvaluateResponse{
		Objective:     f,
		Gradient:      g,
		ElapsedMicros: elapsed.Microseconds(),
	})
}

// Start runs the server until the context is cancelled, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.ServerHost, s.cfg.ServerPort)
	go func() {
		if err := s.App.Listen(addr); err != nil {
			log.Error().Err(err).Msg("server listen failed")
		}
	}()
	<-ctx.Done()
	return s.App.ShutdownWithTimeout(5 * time.Second)
}
