package cmd

import "strings"

// Mode selects how a URL is processed.
type Mode int

const (
	ModeSingle Mode = iota
	ModeListing
)

// ModePolicy decides whether a URL is a listing page or a single card
// page when neither flag forces the choice.
type ModePolicy interface {
	Detect(url string) Mode
}

// SubstringPolicy is the default detection: URL substring allow-lists.
// A card marker wins over a listing marker because product pages often
// live under a /credit-cards/ prefix.
type SubstringPolicy struct {
	CardMarkers    []string
	ListingMarkers []string
}

// DefaultModePolicy matches the URL layouts of the major Indian bank
// sites this tool is pointed at. Swap in another ModePolicy for other
// conventions.
func DefaultModePolicy() *SubstringPolicy {
	return &SubstringPolicy{
		CardMarkers: []string{
			"regalia", "millennia", "infinia", "pixel", "moneyback",
			"freedom", "diners", "swiggy", "tata-neu", "marriott",
			"/card-details", "/credit-card/",
		},
		ListingMarkers: []string{
			"/credit-cards", "/cards/credit", "all-cards", "compare-cards",
			"card-listing", "explore-cards",
		},
	}
}

func (p *SubstringPolicy) Detect(url string) Mode {
	lower := strings.ToLower(url)
	for _, m := range p.CardMarkers {
		if strings.Contains(lower, m) {
			return ModeSingle
		}
	}
	for _, m := range p.ListingMarkers {
		if strings.Contains(lower, m) {
			return ModeListing
		}
	}
	return ModeSingle
}
