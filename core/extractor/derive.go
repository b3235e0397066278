package extractor

import (
	"strings"

	"github.com/cardpipe/cardpipe/core"
)

// DeriveStructured rebuilds the fixed structured shape from the
// standard record when the model omitted its half of the response.
// The mapping is keyword-driven and best-effort: it preserves the
// required keys but cannot recover distinctions the standard shape
// never made. Records built this way carry StructuredDerived=true.
func DeriveStructured(r *core.ExtractionRecord) *core.StructuredRecord {
	s := &core.StructuredRecord{
		Metadata: map[string]string{
			"bank":       r.Card.Bank,
			"card_name":  r.Card.Name,
			"source_url": r.URL,
			"scraped_at": r.ScrapedAt,
		},
		Rewards: map[string]string{},
		Fees:    map[string]string{},
	}
	if r.Card.Variant != "" {
		s.Metadata["variant"] = r.Card.Variant
	}
	if r.Card.Network != "" {
		s.Metadata["network"] = r.Card.Network
	}

	s.Features = append(s.Features, r.Benefits...)
	s.Features = append(s.Features, r.Perks...)

	if r.Rewards.Program != "" {
		s.Rewards["program"] = r.Rewards.Program
	}
	if r.Rewards.Type != "" {
		s.Rewards["type"] = r.Rewards.Type
	}
	if r.Rewards.Earning.BaseRate != "" {
		s.Rewards["base_rate"] = r.Rewards.Earning.BaseRate
	}
	for _, c := range r.Rewards.Earning.Categories {
		if c.Category != "" {
			s.Rewards[Slug(c.Category)] = c.Rate
		}
	}

	for _, fee := range r.FeesAndCharges {
		name, value := splitFeeEntry(fee)
		s.Fees[name] = value
	}

	// Eligibility rarely has a dedicated section in the standard
	// shape; recover it from extras by keyword.
	for k, v := range r.Extras {
		if strings.Contains(strings.ToLower(k), "eligib") {
			s.Eligibility = append(s.Eligibility, v)
		}
	}

	return s
}

// splitFeeEntry splits "Annual fee: Rs. 500" style entries into a key
// and value; entries without a separator keep the whole text as value.
func splitFeeEntry(entry string) (string, string) {
	for _, sep := range []string{":", " - ", "–"} {
		if i := strings.Index(entry, sep); i > 0 {
			name := Slug(entry[:i])
			value := strings.TrimSpace(entry[i+len(sep):])
			if name != "" && value != "" {
				return name, value
			}
		}
	}
	return Slug(entry), entry
}
