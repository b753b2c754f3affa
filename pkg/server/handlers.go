package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"careerintel/pkg/aggregate"
	"careerintel/pkg/match"
	"careerintel/pkg/models"
)

type searchRequest struct {
	Query    string              `json:"query"`
	Location string              `json:"location"`
	Remote   bool                `json:"remote"`
	Sources  []string            `json:"sources"`
	Profile  *profileRequest     `json:"profile"`
	Weights  *match.WeightConfig `json:"weights"`
}

type profileRequest struct {
	Skills             []string `json:"skills"`
	TargetTitle        string   `json:"target_title"`
	ExperienceYears    float64  `json:"experience_years"`
	PreferredLocations []string `json:"preferred_locations"`
	AcceptsRemote      bool     `json:"accepts_remote"`
	ExpectedSalary     int      `json:"expected_salary"`
}

type analyzeRequest struct {
	CVText string `json:"cv_text"`
}

func fail(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": message})
}

// searchJobs runs one aggregation cycle and, when a candidate profile is
// supplied, returns ranked matches instead of raw postings. Partial source
// failures and empty result sets are still success responses.
func (s *Server) searchJobs(c fiber.Ctx) error {
	var req searchRequest
	if err := c.Bind().Body(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	postings, err := s.aggregator.Aggregate(c.Context(), aggregate.Request{
		Query:      req.Query,
		Location:   req.Location,
		RemoteOnly: req.Remote,
		Sources:    req.Sources,
	})
	if err != nil {
		if errors.Is(err, aggregate.ErrInvalidRequest) || errors.Is(err, aggregate.ErrUnknownSource) {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		s.logger.Errorf("Aggregation failed: %v", err)
		return fail(c, fiber.StatusInternalServerError, "aggregation failed")
	}

	response := fiber.Map{
		"success":   true,
		"query":     req.Query,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if req.Profile != nil {
		results, err := s.scorer.Score(models.CandidateProfile{
			Skills:             req.Profile.Skills,
			TargetTitle:        req.Profile.TargetTitle,
			ExperienceYears:    req.Profile.ExperienceYears,
			PreferredLocations: req.Profile.PreferredLocations,
			AcceptsRemote:      req.Profile.AcceptsRemote,
			ExpectedSalary:     req.Profile.ExpectedSalary,
		}, postings, req.Weights)
		if err != nil {
			if errors.Is(err, match.ErrInvalidWeights) {
				return fail(c, fiber.StatusBadRequest, err.Error())
			}
			s.logger.Errorf("Scoring failed: %v", err)
			return fail(c, fiber.StatusInternalServerError, "scoring failed")
		}
		response["count"] = len(results)
		response["jobs"] = results
		return c.JSON(response)
	}

	response["count"] = len(postings)
	response["jobs"] = postings
	return c.JSON(response)
}

func (s *Server) analyzeCV(c fiber.Ctx) error {
	var req analyzeRequest
	if err := c.Bind().Body(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.CVText) == "" {
		return fail(c, fiber.StatusBadRequest, "No CV text provided")
	}

	analysis := s.analyzer.Analyze(req.CVText)
	return c.JSON(fiber.Map{
		"success":         true,
		"analysis":        analysis,
		"recommendations": analysis.Recommendations,
	})
}

func (s *Server) health(c fiber.Ctx) error {
	cacheStatus := "ok"
	if err := s.redis.Ping(c.Context()); err != nil {
		cacheStatus = "unavailable"
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"sources":   s.registry.Names(),
		"cache":     cacheStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
