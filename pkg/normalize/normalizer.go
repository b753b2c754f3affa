package normalize

import (
	"strings"
	"time"

	"careerintel/pkg/keywords"
	"careerintel/pkg/models"
)

// Normalizer converts an adapter's raw record into the canonical posting
// shape. Normalize is total: any raw record that reached it (i.e. passed
// the adapter's required-field check) produces a complete JobPosting.
type Normalizer struct {
	now func() time.Time
}

func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize fills every canonical field, substituting defaults for whatever
// the source did not provide.
func (n *Normalizer) Normalize(raw models.RawJob, source string) models.JobPosting {
	posting := models.JobPosting{
		Title:       strings.TrimSpace(raw.Title),
		Company:     strings.TrimSpace(raw.Company),
		Location:    strings.TrimSpace(raw.Location),
		WorkMode:    raw.WorkMode,
		Salary:      strings.TrimSpace(raw.Salary),
		ApplyURL:    strings.TrimSpace(raw.ApplyURL),
		Source:      source,
		PostedDate:  raw.PostedDate,
		Description: strings.TrimSpace(raw.Description),
	}

	if posting.Location == "" {
		posting.Location = "Not specified"
	}
	if posting.WorkMode == "" {
		posting.WorkMode = models.WorkModeUnspecified
	}
	if posting.PostedDate.IsZero() {
		posting.PostedDate = n.now()
	}

	posting.Skills = keywords.ExtractSkills(posting.Description)
	posting.Seniority = DetectSeniority(posting.Title)

	return posting
}

// seniority word sets, checked in priority order. A title containing both
// "senior" and "manager" resolves to Senior because the Senior set is
// checked first.
var (
	entryWords      = []string{"junior", "entry", "graduate", "trainee"}
	seniorWords     = []string{"senior", "lead", "principal", "architect"}
	managementWords = []string{"manager", "director", "head", "vp"}
)

// DetectSeniority infers the seniority band from a job title.
func DetectSeniority(title string) string {
	lower := strings.ToLower(title)
	switch {
	case containsAny(lower, entryWords):
		return models.SeniorityEntry
	case containsAny(lower, seniorWords):
		return models.SenioritySenior
	case containsAny(lower, managementWords):
		return models.SeniorityManagement
	default:
		return models.SeniorityMid
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
