// URL rules: normalization, PDF-kind detection, and the domain policy
// used by the relevance filter.
package classify

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// pdfExtensions are suffixes treated as direct PDF documents.
var pdfExtensions = []string{".pdf"}

// pdfPathMarkers are repository/asset-path conventions banks use to
// serve documents through a CMS rather than a direct file URL.
var pdfPathMarkers = []string{
	"/content/dam/",
	"/-/media/",
	"/documents/",
	"/getdocument",
	"/wps/wcm/connect",
}

// pdfQueryMarkers flag query parameters that carry a document path or
// a content-type hint.
var pdfQueryMarkers = []string{"path=", "format=pdf", "type=pdf"}

// pdfTextMarkers are anchor wordings that point at terms documents,
// which in practice are nearly always PDFs.
var pdfTextMarkers = []string{"terms", "condition", "t&c", "tnc", "mitc"}

// LooksLikePDF reports whether a URL should take the PDF fetch path.
// Detection runs before any network activity.
func LooksLikePDF(rawURL string) bool {
	lower := strings.ToLower(rawURL)

	u, err := url.Parse(lower)
	if err == nil {
		ext := path.Ext(u.Path)
		for _, e := range pdfExtensions {
			if ext == e {
				return true
			}
		}
	} else if strings.HasSuffix(lower, ".pdf") {
		return true
	}

	for _, m := range pdfPathMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	for _, m := range pdfQueryMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// hasPDFSignal is the short-circuit check run first by the relevance
// filter: either the href looks like a PDF or the anchor text uses
// terms/conditions wording.
func hasPDFSignal(text, href string) bool {
	if LooksLikePDF(href) {
		return true
	}
	lower := strings.ToLower(text)
	for _, m := range pdfTextMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// NormalizeURL strips fragments and trailing slashes for deduplication.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String()
}

// ResolveURL resolves a possibly relative href against a base URL.
// Non-navigable schemes (mailto, javascript, tel, fragments) yield "".
func ResolveURL(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

// affiliatedHosts pins the campaign hosts banks run off their main
// registrable domain. Exact hostname match keeps the policy
// default-deny: a lookalike prefix on an unrelated domain stays out.
var affiliatedHosts = map[string]bool{
	"offers.smartbuy.hdfcbank.com": true,
	"www.sbicard.com":              true,
	"offers.sbicard.com":           true,
	"cardoffers.icicibank.com":     true,
	"grabdeals.axisbank.co.in":     true,
}

// registrableDomain returns the eTLD+1 for a host, falling back to the
// host itself when the public suffix list cannot decide.
func registrableDomain(host string) string {
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

// domainAllowed implements the policy: same registrable domain as the
// base, a PDF-like URL, or an affiliated subdomain.
func domainAllowed(rawURL string, base *url.URL) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if registrableDomain(u.Hostname()) == registrableDomain(base.Hostname()) {
		return true
	}
	if LooksLikePDF(rawURL) {
		return true
	}
	return affiliatedHosts[u.Hostname()]
}
