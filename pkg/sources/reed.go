package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"careerintel/pkg/config"
	"careerintel/pkg/models"
)

const reedDefaultBaseURL = "https://www.reed.co.uk/api/1.0/search"

// ReedAdapter fetches listings from the Reed Jobs API. Reed authenticates
// with an API key sent as the basic-auth username; the key comes from the
// REED_API_KEY environment variable. Without a key the source reports
// itself unavailable and degrades like any other failing board.
type ReedAdapter struct {
	name      string
	baseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
	logger    *logrus.Logger
}

func NewReedAdapter(cfg config.SourceConfig, settings config.GlobalSettings, logger *logrus.Logger) *ReedAdapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = reedDefaultBaseURL
	}
	return &ReedAdapter{
		name:      cfg.Name,
		baseURL:   baseURL,
		apiKey:    strings.TrimSpace(os.Getenv("REED_API_KEY")),
		userAgent: settings.UserAgent,
		client:    &http.Client{},
		logger:    logger,
	}
}

func (a *ReedAdapter) Name() string {
	return a.name
}

type reedResponse struct {
	Results []reedJob `json:"results"`
}

type reedJob struct {
	JobTitle       string  `json:"jobTitle"`
	EmployerName   string  `json:"employerName"`
	LocationName   string  `json:"locationName"`
	MinimumSalary  float64 `json:"minimumSalary"`
	MaximumSalary  float64 `json:"maximumSalary"`
	Date           string  `json:"date"`
	JobDescription string  `json:"jobDescription"`
	JobURL         string  `json:"jobUrl"`
}

func (a *ReedAdapter) Search(ctx context.Context, query, location string, limit int) ([]models.RawJob, error) {
	if limit <= 0 {
		return []models.RawJob{}, nil
	}
	if a.apiKey == "" {
		return nil, unavailable(a.name, 0, fmt.Errorf("REED_API_KEY not set"))
	}

	searchURL, err := a.buildSearchURL(query, location, limit)
	if err != nil {
		return nil, unavailable(a.name, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, unavailable(a.name, 0, err)
	}
	req.SetBasicAuth(a.apiKey, "")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, unavailable(a.name, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(a.name, resp.StatusCode, fmt.Errorf("unexpected status"))
	}

	var apiResp reedResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, unavailable(a.name, 0, fmt.Errorf("failed to decode response: %w", err))
	}

	jobs := make([]models.RawJob, 0, limit)
	for _, entry := range apiResp.Results {
		if len(jobs) >= limit {
			break
		}

		raw := models.RawJob{
			Title:       strings.TrimSpace(entry.JobTitle),
			Company:     strings.TrimSpace(entry.EmployerName),
			Location:    strings.TrimSpace(entry.LocationName),
			Description: strings.TrimSpace(entry.JobDescription),
			ApplyURL:    strings.TrimSpace(entry.JobURL),
			Salary:      reedSalary(entry.MinimumSalary, entry.MaximumSalary),
		}
		if !raw.Valid() {
			continue
		}
		raw.WorkMode = models.DetectWorkMode(raw.Location)
		// Reed dates are day-first.
		if parsed, err := time.Parse("02/01/2006", entry.Date); err == nil {
			raw.PostedDate = parsed
		}

		jobs = append(jobs, raw)
	}
	return jobs, nil
}

func (a *ReedAdapter) buildSearchURL(query, location string, limit int) (string, error) {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	if query != "" {
		params.Set("keywords", query)
	}
	if location != "" {
		params.Set("locationName", location)
	}
	params.Set("resultsToTake", strconv.Itoa(limit))

	u.RawQuery = params.Encode()
	return u.String(), nil
}

func reedSalary(min, max float64) string {
	switch {
	case min > 0 && max > 0:
		return fmt.Sprintf("£%.0f - £%.0f per year", min, max)
	case min > 0:
		return fmt.Sprintf("£%.0f+ per year", min)
	default:
		return ""
	}
}
