package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"careerintel/pkg/config"
	"careerintel/pkg/models"
)

// RemoteOKAdapter fetches listings from the Remote OK public JSON API.
// The board is remote-only, so entries without a location default to
// "Remote" rather than "Not specified".
type RemoteOKAdapter struct {
	name      string
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *logrus.Logger
}

func NewRemoteOKAdapter(cfg config.SourceConfig, settings config.GlobalSettings, logger *logrus.Logger) *RemoteOKAdapter {
	return &RemoteOKAdapter{
		name:      cfg.Name,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: settings.UserAgent,
		client:    &http.Client{},
		logger:    logger,
	}
}

func (a *RemoteOKAdapter) Name() string {
	return a.name
}

// remoteOKJob is the wire shape of one API entry. The feed's first element
// is a legal notice with no position; it fails the required-field check and
// drops out naturally.
type remoteOKJob struct {
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Date        string   `json:"date"`
	SalaryMin   int      `json:"salary_min"`
	SalaryMax   int      `json:"salary_max"`
	Tags        []string `json:"tags"`
}

func (a *RemoteOKAdapter) Search(ctx context.Context, query, location string, limit int) ([]models.RawJob, error) {
	if limit <= 0 {
		return []models.RawJob{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api", nil)
	if err != nil {
		return nil, unavailable(a.name, 0, err)
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, unavailable(a.name, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(a.name, resp.StatusCode, fmt.Errorf("unexpected status"))
	}

	var entries []remoteOKJob
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, unavailable(a.name, 0, fmt.Errorf("failed to decode response: %w", err))
	}

	needle := strings.ToLower(query)
	jobs := make([]models.RawJob, 0, limit)
	for _, entry := range entries {
		if len(jobs) >= limit {
			break
		}
		if !a.matchesQuery(entry, needle) {
			continue
		}

		raw := models.RawJob{
			Title:       strings.TrimSpace(entry.Position),
			Company:     strings.TrimSpace(entry.Company),
			Location:    strings.TrimSpace(entry.Location),
			Description: strings.TrimSpace(entry.Description),
			ApplyURL:    strings.TrimSpace(entry.URL),
			Salary:      formatSalary(entry.SalaryMin, entry.SalaryMax),
		}
		if !raw.Valid() {
			continue
		}
		if raw.Location == "" {
			raw.Location = "Remote"
		}
		raw.WorkMode = models.DetectWorkMode(raw.Location)
		if raw.WorkMode == models.WorkModeOnSite {
			// Everything on this board is remote even when the location
			// names a region ("Europe", "Americas").
			raw.WorkMode = models.WorkModeRemote
		}
		if parsed, err := time.Parse(time.RFC3339, entry.Date); err == nil {
			raw.PostedDate = parsed
		}

		jobs = append(jobs, raw)
	}
	return jobs, nil
}

func (a *RemoteOKAdapter) matchesQuery(entry remoteOKJob, needle string) bool {
	if needle == "" {
		return true
	}
	haystack := strings.ToLower(entry.Position + " " + entry.Description + " " + strings.Join(entry.Tags, " "))
	for _, word := range strings.Fields(needle) {
		if !strings.Contains(haystack, word) {
			return false
		}
	}
	return true
}

func formatSalary(min, max int) string {
	switch {
	case min > 0 && max > 0:
		return fmt.Sprintf("$%d - $%d", min, max)
	case min > 0:
		return fmt.Sprintf("$%d+", min)
	default:
		return ""
	}
}
