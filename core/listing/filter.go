package listing

import "strings"

// exclusionTokens reject candidates that are not consumer credit
// cards. Checked across url, name, and description.
var exclusionTokens = []string{
	"business", "corporate", "commercial", "sme",
	"debit", "prepaid", "forex",
	"loan", "insurance", "mutual-fund", "mutual fund",
	"fixed-deposit", "fixed deposit", "savings",
}

// inclusionTokens must match at least once; the filter is default-deny
// like the link classifier.
var inclusionTokens = []string{
	"credit-card", "credit card", "creditcard",
	"rewards", "cashback", "cash back", "points", "miles",
	"platinum", "gold", "titanium", "premium", "signature", "infinite",
	"millennia", "regalia", "privilege",
}

// CandidateCard is one model-proposed card from a listing page.
type CandidateCard struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// KeepCandidate is the pure content filter: reject on any exclusion
// token, then require at least one inclusion token.
func KeepCandidate(c CandidateCard) bool {
	combined := strings.ToLower(c.URL + " " + c.Name + " " + c.Description)

	for _, tok := range exclusionTokens {
		if strings.Contains(combined, tok) {
			return false
		}
	}
	for _, tok := range inclusionTokens {
		if strings.Contains(combined, tok) {
			return true
		}
	}
	return false
}

// FilterCandidates applies KeepCandidate and dedupes by (url, name).
func FilterCandidates(cands []CandidateCard) []CandidateCard {
	seen := make(map[string]bool)
	var out []CandidateCard
	for _, c := range cands {
		if !KeepCandidate(c) {
			continue
		}
		key := strings.ToLower(c.URL) + "|" + strings.ToLower(c.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
