package extractor

import (
	"strings"
	"time"

	"github.com/cardpipe/cardpipe/core"
)

// modelOutput is the dual-shape response the model is asked to emit:
// a flexible standard shape it may extend, and the fixed structured
// shape it must reproduce exactly. Both halves come from one call.
type modelOutput struct {
	Standard   standardPayload        `json:"standard"`
	Structured *core.StructuredRecord `json:"structured"`
}

// standardPayload mirrors ExtractionRecord's model-supplied portion.
// Extras catches the free-form fields the prompt invites.
type standardPayload struct {
	Card           core.CardIdentity `json:"card"`
	Rewards        core.Rewards      `json:"rewards"`
	Benefits       []string          `json:"benefits"`
	CurrentOffers  []string          `json:"current_offers"`
	Perks          []string          `json:"perks"`
	Partnerships   []string          `json:"partnerships"`
	FeesAndCharges []string          `json:"fees_and_charges"`
	Extras         map[string]string `json:"extras"`
}

func (p standardPayload) toRecord(targetURL string) *core.ExtractionRecord {
	return &core.ExtractionRecord{
		ID:             newRecordID(),
		URL:            targetURL,
		ScrapedAt:      time.Now().UTC().Format(time.RFC3339),
		Card:           p.Card,
		Rewards:        p.Rewards,
		Benefits:       p.Benefits,
		CurrentOffers:  p.CurrentOffers,
		Perks:          p.Perks,
		Partnerships:   p.Partnerships,
		FeesAndCharges: p.FeesAndCharges,
		Extras:         p.Extras,
	}
}

// Slug lowercases and collapses a string into a filename- and
// key-safe token.
func Slug(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, ch := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			b.WriteRune(ch)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
