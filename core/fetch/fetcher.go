// Package fetch resolves a URL into normalized content: either
// rendered webpage text with links, or decoded PDF text. Failures are
// returned as failure-shaped PageContent values, never as errors, so
// callers always receive a value for a single URL.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cardpipe/cardpipe/core"
	"github.com/cardpipe/cardpipe/core/classify"
	"github.com/cardpipe/cardpipe/core/normalize"
	"github.com/cardpipe/cardpipe/core/retry"
)

const (
	downloadTimeout = 60 * time.Second
	maxRedirects    = 5
	maxPDFBytes     = 20 * 1024 * 1024
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Floors for deciding a rendered page is non-trivial.
	minTextLen  = 200
	minLinkCnt  = 3
	maxTitleLen = 80
)

// waitStrategies is the navigation ladder, strictest first.
var waitStrategies = []string{"networkidle", "load", "domcontentloaded"}

// Fetcher turns URLs into PageContent.
type Fetcher struct {
	renderer core.Renderer
	decoder  core.PDFDecoder
	client   *http.Client
	Policy   retry.Policy
	robots   *robotsGate

	// NavTimeout is the per-navigation timeout in seconds.
	NavTimeout int
}

// New creates a Fetcher over the given render and decode capabilities.
func New(renderer core.Renderer, decoder core.PDFDecoder) *Fetcher {
	return &Fetcher{
		renderer: renderer,
		decoder:  decoder,
		client: &http.Client{
			Timeout: downloadTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		Policy: retry.Default,
	}
}

// EnableRobots makes the fetcher consult robots.txt before fetching.
// A disallowed path fails without retrying.
func (f *Fetcher) EnableRobots(agent string) {
	f.robots = newRobotsGate(agent)
}

// Fetch resolves one URL. PDF-kind detection precedes any fetching.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *core.PageContent {
	if f.robots != nil && !f.robots.Allowed(rawURL) {
		return failed(rawURL, core.ContentWeb, "blocked by robots.txt")
	}
	if classify.LooksLikePDF(rawURL) {
		return f.fetchPDF(ctx, rawURL)
	}
	return f.fetchWeb(ctx, rawURL)
}

// fetchPDF downloads and decodes a PDF. Repository-style URLs carrying
// a path= query parameter are also tried as a direct download URL;
// first success wins.
func (f *Fetcher) fetchPDF(ctx context.Context, rawURL string) *core.PageContent {
	candidates := []string{rawURL}
	if direct := decodedPathURL(rawURL); direct != "" {
		candidates = append(candidates, direct)
	}

	var text string
	var info core.PDFInfo
	err := f.Policy.Do(ctx, "pdf "+rawURL, func(ctx context.Context) error {
		var lastErr error
		for _, u := range candidates {
			data, dlErr := f.download(ctx, u)
			if dlErr != nil {
				lastErr = dlErr
				continue
			}
			t, i, decErr := f.decoder.Decode(data)
			if decErr != nil {
				lastErr = decErr
				continue
			}
			text, info = t, i
			return nil
		}
		return lastErr
	})
	if err != nil {
		return failed(rawURL, core.ContentPDF, err.Error())
	}

	text = normalize.Normalize(text)

	return &core.PageContent{
		URL:         rawURL,
		Title:       pdfTitle(info, text, rawURL),
		Text:        text,
		ContentType: core.ContentPDF,
		Success:     true,
	}
}

// download fetches raw bytes, verifying the content type when present.
func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/pdf,*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		lower := strings.ToLower(ct)
		if strings.Contains(lower, "text/html") {
			return nil, fmt.Errorf("expected PDF, got %s", ct)
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return data, nil
}

// fetchWeb renders the page, trying each wait strategy until one loads
// without an HTTP error and yields a non-trivial result.
func (f *Fetcher) fetchWeb(ctx context.Context, rawURL string) *core.PageContent {
	var result *core.RenderResult
	err := f.Policy.Do(ctx, "render "+rawURL, func(ctx context.Context) error {
		var lastErr error
		for _, strategy := range waitStrategies {
			res, rdErr := f.renderer.Render(ctx, rawURL, core.RenderOptions{
				WaitStrategy:    strategy,
				Timeout:         f.NavTimeout,
				RemoveSelectors: nil, // renderer default
			})
			if rdErr != nil {
				lastErr = rdErr
				slog.Debug("render strategy failed", "url", rawURL, "strategy", strategy, "err", rdErr)
				continue
			}
			if len(res.Text) < minTextLen && len(res.Links) < minLinkCnt {
				lastErr = fmt.Errorf("trivial result with strategy %s (%d chars, %d links)",
					strategy, len(res.Text), len(res.Links))
				continue
			}
			result = res
			return nil
		}
		return fmt.Errorf("all navigation strategies exhausted: %w", lastErr)
	})
	if err != nil {
		return failed(rawURL, core.ContentWeb, err.Error())
	}

	return &core.PageContent{
		URL:         rawURL,
		Title:       result.Title,
		Text:        normalize.Normalize(result.Text),
		HTML:        result.HTML,
		Links:       result.Links,
		ContentType: core.ContentWeb,
		Success:     true,
	}
}

// decodedPathURL extracts a decoded path= query parameter as an
// alternate direct-download URL, or "" when absent.
func decodedPathURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := u.Query().Get("path")
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	alt := *u
	alt.RawQuery = ""
	alt.Path = p
	return alt.String()
}

// pdfTitle derives a document title: embedded metadata, then the first
// short line of text, then a host-based fallback.
func pdfTitle(info core.PDFInfo, text, rawURL string) string {
	if info.Title != "" {
		return info.Title
	}
	// Decoded PDF text is whitespace-collapsed upstream; take the
	// opening words as the title when they are short enough.
	if fields := strings.Fields(text); len(fields) > 0 {
		n := len(fields)
		if n > 8 {
			n = 8
		}
		candidate := strings.Join(fields[:n], " ")
		if len(candidate) <= maxTitleLen {
			return candidate
		}
	}
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	}
	return "PDF Document from " + host
}

func failed(rawURL string, kind core.ContentType, msg string) *core.PageContent {
	return &core.PageContent{
		URL:         rawURL,
		ContentType: kind,
		Success:     false,
		Error:       msg,
	}
}
