package keywords

import "strings"

// skillVocabulary is the fixed technology/skill term list shared by the
// normalizer and the CV analyzer. Matching is substring containment, not
// tokenized: "java" also matches inside "javascript". That imprecision is
// kept on purpose so both sides of the pipeline agree on what counts as a
// skill mention.
var skillVocabulary = []string{
	"python", "javascript", "typescript", "java", "golang", "go", "rust",
	"c++", "c#", ".net", "php", "ruby", "rails", "swift", "kotlin", "scala",
	"react", "angular", "vue", "node.js", "express", "django", "flask",
	"spring", "laravel",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "ansible",
	"mysql", "postgresql", "mongodb", "redis", "elasticsearch", "sql", "nosql",
	"kafka", "rabbitmq", "grpc", "graphql", "rest api", "microservices",
	"machine learning", "data science", "big data", "hadoop", "spark",
	"git", "jenkins", "ci/cd", "agile", "scrum", "devops", "jira",
	"html", "css", "sass", "react native", "flutter",
}

// sectionNames are the résumé sections checked for completeness.
var sectionNames = []string{"experience", "education", "skills", "projects", "summary"}

// actionVerbs are the verbs rewarded by the CV quality heuristic.
var actionVerbs = []string{
	"achieved", "managed", "led", "developed", "created",
	"implemented", "improved", "increased", "reduced", "optimized",
}

// Vocabulary returns a copy of the skill term list.
func Vocabulary() []string {
	return append([]string(nil), skillVocabulary...)
}

// ExtractSkills scans text case-insensitively against the vocabulary and
// returns every term found, in vocabulary order. Empty input yields an
// empty (non-nil) slice so callers can treat the result as a set.
func ExtractSkills(text string) []string {
	found := []string{}
	if text == "" {
		return found
	}
	lower := strings.ToLower(text)
	for _, term := range skillVocabulary {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	return found
}

// CountSections returns how many of the standard résumé sections appear in
// the text.
func CountSections(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, s := range sectionNames {
		if strings.Contains(lower, s) {
			n++
		}
	}
	return n
}

// CountActionVerbs returns how many distinct action verbs appear in the text.
func CountActionVerbs(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, v := range actionVerbs {
		if strings.Contains(lower, v) {
			n++
		}
	}
	return n
}
