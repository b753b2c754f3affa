package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"careerintel/pkg/aggregate"
	"careerintel/pkg/cache"
	"careerintel/pkg/cvanalyzer"
	"careerintel/pkg/match"
	"careerintel/pkg/sources"
)

// Server is the HTTP surface over the aggregation and scoring pipeline.
type Server struct {
	app        *fiber.App
	aggregator *aggregate.Aggregator
	scorer     *match.Scorer
	analyzer   *cvanalyzer.Analyzer
	registry   *sources.Registry
	redis      *cache.Redis
	logger     *logrus.Logger
}

func New(agg *aggregate.Aggregator, scorer *match.Scorer, analyzer *cvanalyzer.Analyzer, reg *sources.Registry, redis *cache.Redis, logger *logrus.Logger) *Server {
	s := &Server{
		app:        fiber.New(fiber.Config{AppName: "careerintel"}),
		aggregator: agg,
		scorer:     scorer,
		analyzer:   analyzer,
		registry:   reg,
		redis:      redis,
		logger:     logger,
	}

	s.app.Use(s.accessLog())

	v1 := s.app.Group("/api/v1")
	v1.Post("/jobs/search", s.searchJobs)
	v1.Post("/cv/analyze", s.analyzeCV)
	v1.Get("/health", s.health)

	return s
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(port int) error {
	return s.app.Listen(fmt.Sprintf(":%d", port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// accessLog tags every request with an id and logs method, path, status
// and duration on completion.
func (s *Server) accessLog() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)

		err := c.Next()

		s.logger.WithFields(logrus.Fields{
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.OriginalURL(),
			"status":     c.Response().StatusCode(),
			"duration":   time.Since(start).String(),
		}).Info("Request handled")

		return err
	}
}
