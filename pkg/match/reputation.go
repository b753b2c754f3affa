package match

import "strings"

// defaultReputation is a small curated table of well-known employers.
// Scores are on [0,1]; companies absent from the table score 0.5.
func defaultReputation() map[string]float64 {
	return map[string]float64{
		"google":     0.95,
		"microsoft":  0.92,
		"apple":      0.92,
		"amazon":     0.85,
		"meta":       0.88,
		"netflix":    0.88,
		"stripe":     0.87,
		"shopify":    0.82,
		"gitlab":     0.82,
		"cloudflare": 0.84,
		"datadog":    0.83,
		"hashicorp":  0.82,
		"salesforce": 0.80,
		"atlassian":  0.81,
		"spotify":    0.83,
		"airbnb":     0.84,
		"uber":       0.78,
		"oracle":     0.72,
		"ibm":        0.70,
		"accenture":  0.62,
		"infosys":    0.58,
		"wipro":      0.55,
	}
}

// SetReputation overrides or adds a single company entry. Intended for
// configuration loading, not concurrent use.
func (s *Scorer) SetReputation(company string, score float64) {
	s.reputation[normalizeCompany(company)] = clamp01(score)
}

func normalizeCompany(company string) string {
	return strings.ToLower(strings.TrimSpace(company))
}
