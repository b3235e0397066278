// Package classify decides which links on a card page are worth
// following, tags each with a category, and orders them for fetching.
// The filter is default-deny: a link must match a strict relevant
// pattern and the domain policy to survive.
package classify

import (
	"net/url"
	"sort"
	"strings"

	"github.com/cardpipe/cardpipe/core"
)

// maxAnchorTextLen bounds stored anchor text; malformed pages sometimes
// wrap entire sections in one <a>.
const maxAnchorTextLen = 200

// irrelevantPatterns reject navigation and generic banking chrome
// before any relevance matching happens.
var irrelevantPatterns = []string{
	"login", "log in", "sign in", "signin", "register", "logout",
	"netbanking", "internet banking", "mobile banking", "open account",
	"savings account", "current account", "fixed deposit", "recurring deposit",
	"home loan", "personal loan", "car loan", "loan against",
	"insurance", "mutual fund", "demat", "forex",
	"about us", "contact us", "careers", "investor relations",
	"privacy", "disclaimer", "sitemap", "grievance", "feedback",
	"facebook", "twitter", "instagram", "linkedin", "youtube", "whatsapp",
	"branch locator", "atm locator", "ifsc", "calculator",
	"faq", "help centre", "customer care", "search",
	"app store", "play store", "download app",
}

// relevantPatterns is the strict vocabulary a candidate must match.
var relevantPatterns = []string{
	"credit card", "card", "reward", "cashback", "cash back",
	"offer", "benefit", "perk", "privilege", "feature",
	"partner", "merchant", "tie-up", "alliance",
	"lounge", "milestone", "voucher", "discount",
	"points", "miles", "fee", "charges", "know more", "terms",
}

// categoryWeights is the fixed priority table. Higher fetches first.
var categoryWeights = map[core.Category]int{
	core.CategoryPDF:          100,
	core.CategoryTerms:        90,
	core.CategoryOffers:       80,
	core.CategoryRewards:      70,
	core.CategoryPartnerships: 60,
	core.CategoryCardFeatures: 50,
	core.CategoryGeneral:      10,
}

// IsRelevant decides whether a link is worth following. The PDF check
// runs first and short-circuits to true; the irrelevant filter rejects
// next; remaining candidates need a strict relevant match plus the
// domain policy.
func IsRelevant(anchorText, href string, base *url.URL) bool {
	if hasPDFSignal(anchorText, href) {
		return true
	}

	combined := strings.ToLower(anchorText + " " + href)
	for _, p := range irrelevantPatterns {
		if strings.Contains(combined, p) {
			return false
		}
	}

	matched := false
	for _, p := range relevantPatterns {
		if strings.Contains(combined, p) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	return domainAllowed(href, base)
}

// Classify tags a link with its category. Checks are ordered: PDF
// signals win over everything, then terms, offers, rewards,
// partnerships, and card features; anything else is general.
func Classify(href, text string) core.Category {
	combined := strings.ToLower(text + " " + href)

	if LooksLikePDF(href) {
		return core.CategoryPDF
	}
	switch {
	case containsAny(combined, "terms", "condition", "t&c", "tnc", "mitc"):
		return core.CategoryTerms
	case containsAny(combined, "offer", "deal", "discount", "voucher", "cashback", "cash back"):
		return core.CategoryOffers
	case containsAny(combined, "reward", "benefit", "points", "miles", "milestone"):
		return core.CategoryRewards
	case containsAny(combined, "partner", "merchant", "tie-up", "alliance", "brand"):
		return core.CategoryPartnerships
	case containsAny(combined, "feature", "lounge", "privilege", "fee", "charges", "eligibility"):
		return core.CategoryCardFeatures
	default:
		return core.CategoryGeneral
	}
}

// Prioritize stable-sorts candidates by descending category weight and
// assigns priority ranks.
func Prioritize(links []core.LinkCandidate) []core.LinkCandidate {
	out := make([]core.LinkCandidate, len(links))
	copy(out, links)
	sort.SliceStable(out, func(i, j int) bool {
		return categoryWeights[out[i].Category] > categoryWeights[out[j].Category]
	})
	for i := range out {
		out[i].PriorityRank = i + 1
	}
	return out
}

// BuildCandidates runs the full pass over a page's anchors: resolve,
// filter, classify, dedupe by resolved URL (first occurrence wins),
// and prioritize.
func BuildCandidates(page *core.PageContent) []core.LinkCandidate {
	base, err := url.Parse(page.URL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var candidates []core.LinkCandidate

	for _, a := range page.Links {
		resolved := ResolveURL(a.URL, base)
		if resolved == "" {
			continue
		}
		resolved = NormalizeURL(resolved)
		if seen[resolved] || resolved == NormalizeURL(page.URL) {
			continue
		}
		if !IsRelevant(a.Text, resolved, base) {
			continue
		}
		seen[resolved] = true

		text := strings.TrimSpace(a.Text)
		if len(text) > maxAnchorTextLen {
			text = text[:maxAnchorTextLen]
		}

		candidates = append(candidates, core.LinkCandidate{
			URL:          resolved,
			AnchorText:   text,
			Title:        a.Title,
			OriginalHref: a.URL,
			Category:     Classify(resolved, text),
		})
	}

	return Prioritize(candidates)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
