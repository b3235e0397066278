package cmd

import "testing"

func TestDefaultModePolicy(t *testing.T) {
	p := DefaultModePolicy()
	cases := []struct {
		url  string
		want Mode
	}{
		// A card marker wins even under a listing-style prefix.
		{"https://bank.com/credit-cards/regalia-gold", ModeSingle},
		{"https://bank.com/pay/cards/credit-cards", ModeListing},
		{"https://bank.com/compare-cards", ModeListing},
		{"https://bank.com/credit-card/millennia", ModeSingle},
		// Unknown shapes default to single.
		{"https://bank.com/some/offer/page", ModeSingle},
	}
	for _, c := range cases {
		if got := p.Detect(c.url); got != c.want {
			t.Errorf("Detect(%s) = %v, want %v", c.url, got, c.want)
		}
	}
}
