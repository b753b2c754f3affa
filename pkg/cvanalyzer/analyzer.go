package cvanalyzer

import (
	"strings"

	"careerintel/pkg/keywords"
)

// Analysis is the result of one CV quality pass. Scores are additive
// heuristics on a 0-100 scale.
type Analysis struct {
	OverallScore    int            `json:"overall_score"`
	SkillsFound     []string       `json:"skills_found"`
	WordCount       int            `json:"word_count"`
	SectionScores   map[string]int `json:"section_scores"`
	Recommendations []string       `json:"recommendations"`
}

// Analyzer scores résumé text against the shared skill vocabulary and a
// set of structural heuristics.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

// Analyze scores the text on four dimensions: skill coverage (max 30 at 3
// points per vocabulary hit), section completeness (max 30 at 6 points per
// standard section), length (20/15/5 above 300/150 words), and action verb
// usage (max 20 at 2 points per distinct verb).
func (a *Analyzer) Analyze(cvText string) Analysis {
	analysis := Analysis{
		SkillsFound:     keywords.ExtractSkills(cvText),
		WordCount:       len(strings.Fields(cvText)),
		Recommendations: []string{},
	}

	skillsScore := capScore(len(analysis.SkillsFound)*3, 30)

	sectionCount := keywords.CountSections(cvText)
	sectionsScore := capScore(sectionCount*6, 30)

	var lengthScore int
	switch {
	case analysis.WordCount > 300:
		lengthScore = 20
	case analysis.WordCount > 150:
		lengthScore = 15
	default:
		lengthScore = 5
	}

	verbCount := keywords.CountActionVerbs(cvText)
	verbsScore := capScore(verbCount*2, 20)

	analysis.SectionScores = map[string]int{
		"skills":       skillsScore,
		"sections":     sectionsScore,
		"length":       lengthScore,
		"action_verbs": verbsScore,
	}
	analysis.OverallScore = skillsScore + sectionsScore + lengthScore + verbsScore

	if len(analysis.SkillsFound) < 5 {
		analysis.Recommendations = append(analysis.Recommendations,
			"Add more technical skills to your CV")
	}
	if sectionCount < 3 {
		analysis.Recommendations = append(analysis.Recommendations,
			"Ensure you have Experience, Education, and Skills sections")
	}
	if analysis.WordCount < 200 {
		analysis.Recommendations = append(analysis.Recommendations,
			"Expand your CV with more detailed descriptions")
	}
	if verbCount < 3 {
		analysis.Recommendations = append(analysis.Recommendations,
			"Use more action verbs like 'achieved', 'managed', 'developed'")
	}

	return analysis
}

func capScore(v, max int) int {
	if v > max {
		return max
	}
	return v
}
