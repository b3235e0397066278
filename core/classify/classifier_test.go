package classify

import (
	"net/url"
	"testing"

	"github.com/cardpipe/cardpipe/core"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return u
}

func TestLooksLikePDF(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://bank.com/docs/mitc.pdf", true},
		{"https://bank.com/docs/MITC.PDF", true},
		{"https://bank.com/content/dam/bank/cards/terms", true},
		{"https://bank.com/getdocument?id=42", true},
		{"https://bank.com/download?path=%2Fdocs%2Ftnc.pdf", true},
		{"https://bank.com/cards/platinum", false},
		{"https://bank.com/pdf-reader-app", false},
	}
	for _, c := range cases {
		if got := LooksLikePDF(c.url); got != c.want {
			t.Errorf("LooksLikePDF(%q) = %v, want %v", c.url, got, c.want)
		}
	}
}

func TestIsRelevant_PDFOverridesGenericText(t *testing.T) {
	base := mustParse(t, "https://bank.com/cards/platinum")
	// Generic anchor text, but the href is a PDF: must be relevant.
	if !IsRelevant("click here", "https://cdn.other.com/docs/fees.pdf", base) {
		t.Error("PDF href must short-circuit to relevant")
	}
	if Classify("https://cdn.other.com/docs/fees.pdf", "click here") != core.CategoryPDF {
		t.Error("PDF href must classify as pdf")
	}
}

func TestIsRelevant_IrrelevantPatternsReject(t *testing.T) {
	base := mustParse(t, "https://bank.com/cards/platinum")
	cases := []struct{ text, href string }{
		{"Login to NetBanking", "https://bank.com/netbanking"},
		{"Follow us", "https://facebook.com/bank"},
		{"Careers", "https://bank.com/careers"},
		{"Home Loan offers", "https://bank.com/home-loan"},
	}
	for _, c := range cases {
		if IsRelevant(c.text, c.href, base) {
			t.Errorf("expected irrelevant: %q %q", c.text, c.href)
		}
	}
}

func TestIsRelevant_DefaultDeny(t *testing.T) {
	base := mustParse(t, "https://bank.com/cards/platinum")
	// Same domain, passes the irrelevant filter, but matches no strict
	// relevant pattern: dropped.
	if IsRelevant("Quarterly results", "https://bank.com/media/results", base) {
		t.Error("link without a strict relevant match must be dropped")
	}
}

func TestIsRelevant_DomainPolicy(t *testing.T) {
	base := mustParse(t, "https://www.bank.com/cards/platinum")
	if !IsRelevant("Reward points", "https://bank.com/rewards", base) {
		t.Error("same registrable domain must be allowed")
	}
	if IsRelevant("Reward points", "https://unrelated.com/rewards", base) {
		t.Error("foreign non-PDF domain must be rejected")
	}
	if !IsRelevant("Current offers", "https://offers.smartbuy.hdfcbank.com/cards", base) {
		t.Error("pinned affiliated host must be allowed")
	}
	// A lookalike prefix on an unrelated domain does not get through.
	if IsRelevant("Current offers", "https://offers.totally-unrelated.com/cards", base) {
		t.Error("unpinned host with an affiliated-style prefix must be rejected")
	}
}

func TestClassify_Ordering(t *testing.T) {
	cases := []struct {
		href, text string
		want       core.Category
	}{
		{"https://b.com/tnc.pdf", "offers inside", core.CategoryPDF},
		{"https://b.com/x", "Terms and Conditions", core.CategoryTerms},
		{"https://b.com/x", "Latest Offers", core.CategoryOffers},
		{"https://b.com/x", "Reward Points", core.CategoryRewards},
		{"https://b.com/x", "Partner merchants", core.CategoryPartnerships},
		{"https://b.com/x", "Lounge access eligibility", core.CategoryCardFeatures},
		{"https://b.com/x", "Something else", core.CategoryGeneral},
	}
	for _, c := range cases {
		if got := Classify(c.href, c.text); got != c.want {
			t.Errorf("Classify(%q, %q) = %s, want %s", c.href, c.text, got, c.want)
		}
	}
}

func TestPrioritize_StableAndRanked(t *testing.T) {
	links := []core.LinkCandidate{
		{URL: "a", Category: core.CategoryGeneral},
		{URL: "b", Category: core.CategoryOffers},
		{URL: "c", Category: core.CategoryPDF},
		{URL: "d", Category: core.CategoryOffers},
	}
	out := Prioritize(links)
	wantOrder := []string{"c", "b", "d", "a"}
	for i, w := range wantOrder {
		if out[i].URL != w {
			t.Fatalf("position %d: got %s, want %s", i, out[i].URL, w)
		}
	}
	for i, l := range out {
		if l.PriorityRank != i+1 {
			t.Errorf("rank %d: got %d", i+1, l.PriorityRank)
		}
	}
}

func TestBuildCandidates_PDFRanksFirst(t *testing.T) {
	page := &core.PageContent{
		URL: "https://bank.com/cards/platinum",
		Links: []core.Anchor{
			{URL: "/cards/platinum/know-more", Text: "Know More about rewards"},
			{URL: "/content/dam/bank/terms.pdf", Text: "Terms"},
		},
	}
	out := BuildCandidates(page)
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(out))
	}
	if out[0].Category != core.CategoryPDF {
		t.Errorf("first candidate should be pdf, got %s", out[0].Category)
	}
}

func TestBuildCandidates_DedupesByResolvedURL(t *testing.T) {
	page := &core.PageContent{
		URL: "https://bank.com/cards",
		Links: []core.Anchor{
			{URL: "/cards/rewards", Text: "Rewards"},
			{URL: "https://bank.com/cards/rewards/", Text: "Rewards again"},
			{URL: "https://bank.com/cards/rewards#top", Text: "Rewards anchor"},
		},
	}
	out := BuildCandidates(page)
	if len(out) != 1 {
		t.Fatalf("expected 1 candidate after dedup, got %d", len(out))
	}
	if out[0].AnchorText != "Rewards" {
		t.Errorf("first occurrence should win, got %q", out[0].AnchorText)
	}
}

func TestBuildCandidates_TruncatesAnchorText(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'r'
	}
	page := &core.PageContent{
		URL: "https://bank.com/cards",
		Links: []core.Anchor{
			{URL: "/cards/rewards", Text: "reward " + string(long)},
		},
	}
	out := BuildCandidates(page)
	if len(out) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(out))
	}
	if len(out[0].AnchorText) > maxAnchorTextLen {
		t.Errorf("anchor text not truncated: %d chars", len(out[0].AnchorText))
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://b.com/cards/", "https://b.com/cards"},
		{"https://b.com/cards#features", "https://b.com/cards"},
		{"https://b.com/", "https://b.com/"},
	}
	for _, c := range cases {
		if got := NormalizeURL(c.in); got != c.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
