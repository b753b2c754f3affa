package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"careerintel/pkg/aggregate"
	"careerintel/pkg/cache"
	"careerintel/pkg/config"
	"careerintel/pkg/cvanalyzer"
	"careerintel/pkg/match"
	"careerintel/pkg/models"
	"careerintel/pkg/sources"
)

type stubAdapter struct {
	name string
	jobs []models.RawJob
	err  error
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Search(ctx context.Context, query, location string, limit int) ([]models.RawJob, error) {
	return s.jobs, s.err
}

func testServer(t *testing.T, adapters ...sources.Adapter) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	reg := sources.NewRegistry()
	for _, a := range adapters {
		if err := reg.Register(a); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	var redis *cache.Redis // nil client: cache bypassed
	agg := aggregate.New(reg, redis, logger, config.GlobalSettings{
		TimeoutMs:         500,
		ResultCap:         50,
		CacheTTLSeconds:   60,
		RequestsPerSecond: 100,
	})

	return New(agg, match.NewScorer(), cvanalyzer.New(), reg, redis, logger)
}

func postJSON(t *testing.T, srv *Server, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestSearchEndpoint(t *testing.T) {
	srv := testServer(t, &stubAdapter{name: "alpha", jobs: []models.RawJob{
		{Title: "Go Developer", Company: "Acme", Location: "Berlin"},
	}})

	resp := postJSON(t, srv, "/api/v1/jobs/search", map[string]any{"query": "go"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}
	if body["query"] != "go" {
		t.Errorf("query echoed as %v", body["query"])
	}
	if _, ok := body["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestSearchWithProfileReturnsRankedMatches(t *testing.T) {
	srv := testServer(t, &stubAdapter{name: "alpha", jobs: []models.RawJob{
		{Title: "Receptionist", Company: "Globex", Location: "Oslo"},
		{Title: "Senior Go Engineer", Company: "Acme", Location: "Berlin", Description: "Golang and Docker"},
	}})

	resp := postJSON(t, srv, "/api/v1/jobs/search", map[string]any{
		"query": "go",
		"profile": map[string]any{
			"skills":           []string{"golang", "docker"},
			"target_title":     "Go Engineer",
			"experience_years": 6,
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	jobs, ok := body["jobs"].([]any)
	if !ok || len(jobs) != 2 {
		t.Fatalf("jobs = %v, want 2 entries", body["jobs"])
	}

	first := jobs[0].(map[string]any)
	if first["title"] != "Senior Go Engineer" {
		t.Errorf("best match first: got %v", first["title"])
	}
	if _, ok := first["match_score"]; !ok {
		t.Error("match_score missing from ranked result")
	}
}

func TestSearchDegradedSourceStillSucceeds(t *testing.T) {
	srv := testServer(t,
		&stubAdapter{name: "alpha", jobs: []models.RawJob{{Title: "Go Developer", Company: "Acme"}}},
		&stubAdapter{name: "beta", err: context.DeadlineExceeded},
	)

	resp := postJSON(t, srv, "/api/v1/jobs/search", map[string]any{"query": "go"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite degraded source", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["success"] != true || body["count"] != float64(1) {
		t.Errorf("body = %v", body)
	}
}

func TestSearchValidationErrors(t *testing.T) {
	srv := testServer(t, &stubAdapter{name: "alpha"})

	resp := postJSON(t, srv, "/api/v1/jobs/search", map[string]any{"query": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query: status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}

	resp = postJSON(t, srv, "/api/v1/jobs/search", map[string]any{"query": "go", "sources": []string{"nope"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown source: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSearchRejectsBadWeights(t *testing.T) {
	srv := testServer(t, &stubAdapter{name: "alpha"})

	resp := postJSON(t, srv, "/api/v1/jobs/search", map[string]any{
		"query":   "go",
		"profile": map[string]any{"skills": []string{"golang"}},
		"weights": map[string]any{"skills": 0.9, "title": 0.9},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for invalid weights", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := testServer(t, &stubAdapter{name: "alpha"})

	resp := postJSON(t, srv, "/api/v1/cv/analyze", map[string]any{
		"cv_text": "Experience: developed services in Golang, Docker and Kubernetes. Education. Skills.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	analysis, ok := body["analysis"].(map[string]any)
	if !ok {
		t.Fatalf("analysis missing: %v", body)
	}
	if _, ok := analysis["overall_score"]; !ok {
		t.Error("overall_score missing")
	}
}

func TestAnalyzeRequiresText(t *testing.T) {
	srv := testServer(t, &stubAdapter{name: "alpha"})

	resp := postJSON(t, srv, "/api/v1/cv/analyze", map[string]any{"cv_text": "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, &stubAdapter{name: "alpha"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["status"] != "healthy" {
		t.Errorf("status = %v", body["status"])
	}
	if body["cache"] != "unavailable" {
		t.Errorf("cache = %v, want unavailable with no redis", body["cache"])
	}
}
