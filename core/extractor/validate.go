package extractor

import (
	"regexp"
	"strings"

	"github.com/cardpipe/cardpipe/core"
)

// placeholderRe matches values models emit when they found nothing.
var placeholderRe = regexp.MustCompile(`(?i)^(unknown|not\s*found|n/?a|error.*)$`)

func isPlaceholder(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || placeholderRe.MatchString(s)
}

// IsDataComplete is the web completeness policy: the card must be
// identified (name and bank, neither a placeholder) and at least one
// substantive section must be non-empty.
func IsDataComplete(r *core.ExtractionRecord) bool {
	if isPlaceholder(r.Card.Name) || isPlaceholder(r.Card.Bank) {
		return false
	}
	return len(r.Benefits) > 0 ||
		len(r.CurrentOffers) > 0 ||
		len(r.Perks) > 0 ||
		len(r.Rewards.Earning.Categories) > 0
}

// confidenceSignal pairs a presence check with its weight. Weights sum
// to 1.0 so the score needs no further normalization.
type confidenceSignal struct {
	name    string
	weight  float64
	present func(*core.ExtractionRecord) bool
}

var confidenceSignals = []confidenceSignal{
	{"card.name", 0.15, func(r *core.ExtractionRecord) bool { return !isPlaceholder(r.Card.Name) }},
	{"card.bank", 0.15, func(r *core.ExtractionRecord) bool { return !isPlaceholder(r.Card.Bank) }},
	{"rewards.program", 0.08, func(r *core.ExtractionRecord) bool { return !isPlaceholder(r.Rewards.Program) }},
	{"rewards.type", 0.07, func(r *core.ExtractionRecord) bool { return !isPlaceholder(r.Rewards.Type) }},
	{"rewards.earning.categories", 0.15, func(r *core.ExtractionRecord) bool { return len(r.Rewards.Earning.Categories) > 0 }},
	{"rewards.redemption", 0.10, func(r *core.ExtractionRecord) bool { return len(r.Rewards.Redemption) > 0 }},
	{"benefits", 0.10, func(r *core.ExtractionRecord) bool { return len(r.Benefits) > 0 }},
	{"current_offers", 0.08, func(r *core.ExtractionRecord) bool { return len(r.CurrentOffers) > 0 }},
	{"perks", 0.06, func(r *core.ExtractionRecord) bool { return len(r.Perks) > 0 }},
	{"partnerships", 0.06, func(r *core.ExtractionRecord) bool { return len(r.Partnerships) > 0 }},
}

// ConfidenceScore is the weighted presence sum over the record's
// signals, in [0,1]. It measures completeness, not correctness.
func ConfidenceScore(r *core.ExtractionRecord) float64 {
	score := 0.0
	for _, s := range confidenceSignals {
		if s.present(r) {
			score += s.weight
		}
	}
	if score > 1 {
		score = 1
	}
	return score
}

// MissingFields lists absent top-level sections, for diagnostics only.
func MissingFields(r *core.ExtractionRecord) []string {
	var missing []string
	add := func(name string, empty bool) {
		if empty {
			missing = append(missing, name)
		}
	}
	add("benefits", len(r.Benefits) == 0)
	add("current_offers", len(r.CurrentOffers) == 0)
	add("perks", len(r.Perks) == 0)
	add("partnerships", len(r.Partnerships) == 0)
	add("fees_and_charges", len(r.FeesAndCharges) == 0)
	add("rewards.earning.categories", len(r.Rewards.Earning.Categories) == 0)
	add("rewards.redemption", len(r.Rewards.Redemption) == 0)
	return missing
}
