package match

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"careerintel/pkg/models"
)

// ErrInvalidWeights marks a weight configuration whose components do not
// sum to 1.0. It is a configuration error: the call fails, weights are
// never silently renormalized.
var ErrInvalidWeights = errors.New("invalid weight configuration")

const weightTolerance = 1e-6

// WeightConfig assigns the relative importance of each scoring factor.
// Components must sum to 1.0 within tolerance.
type WeightConfig struct {
	Skills     float64 `json:"skills"`
	Title      float64 `json:"title"`
	Experience float64 `json:"experience"`
	Location   float64 `json:"location"`
	Salary     float64 `json:"salary"`
	Company    float64 `json:"company"`
}

// DefaultWeights returns the stock weighting.
func DefaultWeights() WeightConfig {
	return WeightConfig{
		Skills:     0.35,
		Title:      0.20,
		Experience: 0.15,
		Location:   0.10,
		Salary:     0.10,
		Company:    0.10,
	}
}

func (w WeightConfig) sum() float64 {
	return w.Skills + w.Title + w.Experience + w.Location + w.Salary + w.Company
}

// Validate rejects configurations whose weights do not sum to 1.0 ± 1e-6.
func (w WeightConfig) Validate() error {
	if diff := math.Abs(w.sum() - 1.0); diff > weightTolerance {
		return fmt.Errorf("%w: weights sum to %.6f, want 1.0", ErrInvalidWeights, w.sum())
	}
	return nil
}

// Scorer computes weighted multi-factor match scores between a candidate
// profile and normalized postings.
type Scorer struct {
	reputation map[string]float64
}

func NewScorer() *Scorer {
	return &Scorer{reputation: defaultReputation()}
}

// Score ranks postings against the profile. Results are sorted strictly
// descending by match score; exact ties keep their input order. A nil
// weights argument selects the defaults.
func (s *Scorer) Score(profile models.CandidateProfile, postings []models.JobPosting, weights *WeightConfig) ([]models.MatchResult, error) {
	w := DefaultWeights()
	if weights != nil {
		if err := weights.Validate(); err != nil {
			return nil, err
		}
		w = *weights
	}

	results := make([]models.MatchResult, 0, len(postings))
	for _, posting := range postings {
		breakdown := models.ScoreBreakdown{
			Skills:     s.skillScore(profile, posting),
			Title:      s.titleScore(profile.TargetTitle, posting.Title),
			Experience: s.experienceScore(profile.ExperienceYears, posting.Seniority),
			Location:   s.locationScore(profile, posting),
			Salary:     s.salaryScore(profile.ExpectedSalary, posting),
			Company:    s.companyScore(posting.Company),
		}

		weighted := breakdown.Skills*w.Skills +
			breakdown.Title*w.Title +
			breakdown.Experience*w.Experience +
			breakdown.Location*w.Location +
			breakdown.Salary*w.Salary +
			breakdown.Company*w.Company

		results = append(results, models.MatchResult{
			JobPosting: posting,
			MatchScore: math.Round(weighted*100*100) / 100,
			Breakdown:  breakdown,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	return results, nil
}

// skillScore is intersection count over candidate skill count, capped at
// 1.0. The simpler of the two overlap variants; documented in DESIGN.md.
func (s *Scorer) skillScore(profile models.CandidateProfile, posting models.JobPosting) float64 {
	if len(profile.Skills) == 0 {
		return 0
	}

	have := make(map[string]bool, len(posting.Skills))
	for _, skill := range posting.Skills {
		have[strings.ToLower(skill)] = true
	}

	matched := 0
	for _, skill := range profile.Skills {
		if have[strings.ToLower(skill)] {
			matched++
		}
	}

	score := float64(matched) / float64(len(profile.Skills))
	if score > 1 {
		score = 1
	}
	return score
}

// titleScore is word-set overlap between the candidate's target title and
// the posting title. No target title stated scores neutral.
func (s *Scorer) titleScore(target, title string) float64 {
	targetWords := titleWords(target)
	titleSet := make(map[string]bool)
	for _, w := range titleWords(title) {
		titleSet[w] = true
	}

	if len(targetWords) == 0 || len(titleSet) == 0 {
		return 0.5
	}

	matched := 0
	for _, w := range targetWords {
		if titleSet[w] {
			matched++
		}
	}
	return float64(matched) / float64(len(targetWords))
}

func titleWords(s string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,()/-")
		if len(w) > 1 {
			words = append(words, w)
		}
	}
	return words
}

// seniority bands in years of experience.
var seniorityBands = map[string][2]float64{
	models.SeniorityEntry:      {0, 2},
	models.SeniorityMid:        {2, 5},
	models.SenioritySenior:     {5, 12},
	models.SeniorityManagement: {8, 30},
}

// experienceScore is 1.0 when the candidate's years fall inside the
// posting's seniority band, degrading linearly with distance from the
// nearest band edge (zero at five years off).
func (s *Scorer) experienceScore(years float64, seniority string) float64 {
	band, ok := seniorityBands[seniority]
	if !ok {
		return 0.5
	}

	var distance float64
	switch {
	case years < band[0]:
		distance = band[0] - years
	case years > band[1]:
		distance = years - band[1]
	default:
		return 1.0
	}

	score := 1.0 - distance/5.0
	if score < 0 {
		score = 0
	}
	return score
}

func (s *Scorer) locationScore(profile models.CandidateProfile, posting models.JobPosting) float64 {
	if posting.IsRemote() && profile.AcceptsRemote {
		return 1.0
	}
	if len(profile.PreferredLocations) == 0 || posting.Location == "Not specified" {
		return 0.5
	}

	jobLoc := strings.ToLower(posting.Location)
	for _, pref := range profile.PreferredLocations {
		p := strings.ToLower(strings.TrimSpace(pref))
		if p == "" {
			continue
		}
		if strings.Contains(jobLoc, p) || strings.Contains(p, jobLoc) {
			return 1.0
		}
		// Shared token (same city or state) earns partial credit.
		for _, part := range strings.FieldsFunc(jobLoc, locationSep) {
			for _, prefPart := range strings.FieldsFunc(p, locationSep) {
				if len(part) > 2 && part == prefPart {
					return 0.6
				}
			}
		}
	}
	return 0.3
}

func locationSep(r rune) bool {
	return r == ' ' || r == ','
}

// salaryScore awards full credit when the expected salary falls inside the
// posting's stated range and partial credit for near misses. When either
// side states no figure the factor scores zero; see DESIGN.md for why this
// policy is kept rather than fixed.
func (s *Scorer) salaryScore(expected int, posting models.JobPosting) float64 {
	min, max := posting.SalaryBounds()
	if expected <= 0 || (min == 0 && max == 0) {
		return 0
	}

	switch {
	case expected >= min && expected <= max:
		return 1.0
	case expected < min:
		return clamp01(float64(expected) / float64(min))
	default:
		return clamp01(float64(max) / float64(expected))
	}
}

// companyScore looks the employer up in the reputation table; unknown
// companies score neutral, never undefined.
func (s *Scorer) companyScore(company string) float64 {
	if score, ok := s.reputation[normalizeCompany(company)]; ok {
		return score
	}
	return 0.5
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
