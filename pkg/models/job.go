package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Work mode classification of a posting, derived from its location text.
const (
	WorkModeRemote      = "Remote"
	WorkModeHybrid      = "Hybrid"
	WorkModeOnSite      = "On-site"
	WorkModeUnspecified = "Not specified"
)

// Seniority level of a posting, derived from its title.
const (
	SeniorityEntry      = "Entry Level"
	SeniorityMid        = "Mid Level"
	SenioritySenior     = "Senior"
	SeniorityManagement = "Management"
)

// RawJob is a partially-normalized listing as parsed by a source adapter.
// Title and Company are the only required fields; everything else is
// best-effort and filled with defaults by the normalizer.
type RawJob struct {
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	WorkMode    string    `json:"work_mode"`
	Salary      string    `json:"salary"`
	ApplyURL    string    `json:"apply_url"`
	Description string    `json:"description"`
	PostedDate  time.Time `json:"posted_date"`
}

// Valid reports whether the entry carries the required fields. Entries
// failing this check are dropped by the adapter, never surfaced.
func (r RawJob) Valid() bool {
	return strings.TrimSpace(r.Title) != "" && strings.TrimSpace(r.Company) != ""
}

// DetectWorkMode classifies a location string. The rule is fixed across
// adapters: "remote" wins over "hybrid", anything else is on-site.
func DetectWorkMode(location string) string {
	loc := strings.ToLower(location)
	switch {
	case strings.Contains(loc, "remote"):
		return WorkModeRemote
	case strings.Contains(loc, "hybrid"):
		return WorkModeHybrid
	default:
		return WorkModeOnSite
	}
}

// JobPosting is the canonical, source-agnostic representation of a listing.
// Postings are immutable after normalization; they are only scored and ranked.
type JobPosting struct {
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	WorkMode    string    `json:"work_mode"`
	Salary      string    `json:"salary,omitempty"`
	ApplyURL    string    `json:"apply_url"`
	Source      string    `json:"source"`
	PostedDate  time.Time `json:"posted_date"`
	Description string    `json:"description,omitempty"`
	Skills      []string  `json:"skills"`
	Seniority   string    `json:"seniority"`
}

// Key returns the identity key used for deduplication within one
// aggregation call: the (title, company, location) tuple, case-folded.
func (p JobPosting) Key() string {
	return strings.ToLower(p.Title) + "|" + strings.ToLower(p.Company) + "|" + strings.ToLower(p.Location)
}

var salaryNumberRe = regexp.MustCompile(`(\d[\d,.]*)\s*([kK])?`)

// SalaryBounds parses the free-text salary field into an annual min/max.
// Returns (0, 0) when no figures can be extracted.
func (p JobPosting) SalaryBounds() (min, max int) {
	if p.Salary == "" {
		return 0, 0
	}

	matches := salaryNumberRe.FindAllStringSubmatch(p.Salary, -1)
	var figures []int
	for _, m := range matches {
		raw := strings.ReplaceAll(m[1], ",", "")
		raw = strings.TrimSuffix(raw, ".")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if m[2] != "" {
			v *= 1000
		}
		n := int(v)
		// Ignore stray small numbers ("5 days", "40 hours") that are not salaries.
		if n < 1000 {
			continue
		}
		figures = append(figures, n)
	}

	if len(figures) == 0 {
		return 0, 0
	}
	min, max = figures[0], figures[0]
	for _, f := range figures[1:] {
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	return min, max
}

// IsRemote reports whether the posting is classified as remote work.
func (p JobPosting) IsRemote() bool {
	return p.WorkMode == WorkModeRemote
}

// CandidateProfile is the scoring input describing the candidate.
type CandidateProfile struct {
	Skills             []string `json:"skills"`
	TargetTitle        string   `json:"target_title"`
	ExperienceYears    float64  `json:"experience_years"`
	PreferredLocations []string `json:"preferred_locations"`
	AcceptsRemote      bool     `json:"accepts_remote"`
	ExpectedSalary     int      `json:"expected_salary,omitempty"`
}

// ScoreBreakdown holds the per-factor sub-scores, each in [0,1], that
// produced a match score.
type ScoreBreakdown struct {
	Skills     float64 `json:"skills"`
	Title      float64 `json:"title"`
	Experience float64 `json:"experience"`
	Location   float64 `json:"location"`
	Salary     float64 `json:"salary"`
	Company    float64 `json:"company"`
}

// MatchResult pairs a posting with its composite match score in [0,100].
type MatchResult struct {
	JobPosting
	MatchScore float64        `json:"match_score"`
	Breakdown  ScoreBreakdown `json:"score_breakdown"`
}
