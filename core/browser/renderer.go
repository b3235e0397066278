// Package browser implements the render capability on headless Chrome
// via chromedp. It navigates with a configurable load-completion
// strategy, strips boilerplate elements, and hands back title, text,
// and resolved links.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/cardpipe/cardpipe/core"
	"github.com/cardpipe/cardpipe/core/classify"
)

const defaultNavTimeout = 45 * time.Second

// DefaultRemoveSelectors strip page chrome that contributes nothing to
// card content. Callers can override via RenderOptions.
var DefaultRemoveSelectors = []string{
	"script", "style", "noscript", "iframe",
	"nav", "header", "footer", "aside",
	"form", "button", "input", "select",
	".sidebar", ".menu", ".navigation", ".breadcrumb",
	".ads", ".advertisement", ".banner", ".popup", ".modal",
	".cookie", ".cookie-consent", ".newsletter",
}

// ChromeRenderer renders pages in a shared headless browser process.
type ChromeRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// New launches the headless browser allocator. Close must be called
// when done.
func New() *ChromeRenderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromeRenderer{allocCtx: allocCtx, allocCancel: cancel}
}

// Close shuts down the browser allocator.
func (r *ChromeRenderer) Close() {
	r.allocCancel()
}

// Render navigates to a URL with the requested wait strategy and
// returns the cleaned page. An HTTP error status on the document
// response is returned as an error so the caller can try the next
// strategy.
func (r *ChromeRenderer) Render(ctx context.Context, pageURL string, opts core.RenderOptions) (*core.RenderResult, error) {
	timeout := defaultNavTimeout
	if opts.Timeout > 0 {
		timeout = time.Duration(opts.Timeout) * time.Second
	}

	tabCtx, cancelTab := chromedp.NewContext(r.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	if deadline, ok := ctx.Deadline(); ok {
		var c context.CancelFunc
		tabCtx, c = context.WithDeadline(tabCtx, deadline)
		defer c()
	}

	// The listener fires on chromedp's event-dispatch goroutine, so
	// the capture is mutex-guarded.
	var status statusCapture
	chromedp.ListenTarget(tabCtx, status.observe)

	tasks := chromedp.Tasks{
		network.Enable(),
		chromedp.Navigate(pageURL),
	}
	tasks = append(tasks, waitTasks(opts.WaitStrategy)...)

	var rawHTML, title string
	tasks = append(tasks,
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &rawHTML),
	)

	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return nil, fmt.Errorf("navigating %s: %w", pageURL, err)
	}
	statusCode := status.get()
	if statusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d for %s", statusCode, pageURL)
	}

	selectors := opts.RemoveSelectors
	if len(selectors) == 0 {
		selectors = DefaultRemoveSelectors
	}

	result, err := extractPage(rawHTML, pageURL, selectors)
	if err != nil {
		return nil, err
	}
	if result.Title == "" {
		result.Title = strings.TrimSpace(title)
	}
	result.StatusCode = statusCode
	return result, nil
}

// statusCapture records the first document response status seen on the
// CDP event stream. observe runs on the event-dispatch goroutine while
// get runs on the caller's, hence the lock.
type statusCapture struct {
	mu   sync.Mutex
	code int
}

func (c *statusCapture) observe(ev any) {
	res, ok := ev.(*network.EventResponseReceived)
	if !ok || res.Type != network.ResourceTypeDocument {
		return
	}
	c.mu.Lock()
	if c.code == 0 {
		c.code = int(res.Response.Status)
	}
	c.mu.Unlock()
}

func (c *statusCapture) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

// waitTasks maps a strategy name to chromedp actions, strictest first.
// networkidle allows late XHR content to settle; domcontentloaded is
// the bare minimum.
func waitTasks(strategy string) []chromedp.Action {
	switch strategy {
	case "networkidle":
		return []chromedp.Action{
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(2 * time.Second),
		}
	case "load":
		return []chromedp.Action{
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(500 * time.Millisecond),
		}
	default: // domcontentloaded
		return []chromedp.Action{
			chromedp.WaitReady("body", chromedp.ByQuery),
		}
	}
}

// extractPage strips boilerplate, derives the title, converts the main
// content to Markdown-flavoured text, and enumerates anchors with
// absolute URLs, deduplicated by resolved URL.
func extractPage(rawHTML, pageURL string, removeSelectors []string) (*core.RenderResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing rendered HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	for _, sel := range removeSelectors {
		doc.Find(sel).Remove()
	}

	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		if u, err := url.Parse(pageURL); err == nil {
			title = "Webpage from " + u.Hostname()
		}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL: %w", err)
	}

	seen := make(map[string]bool)
	var links []core.Anchor
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := classify.ResolveURL(href, base)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, core.Anchor{
			URL:   resolved,
			Text:  strings.TrimSpace(s.Text()),
			Title: strings.TrimSpace(s.AttrOr("title", "")),
		})
	})

	body := doc.Find("body")
	text := ""
	if body.Length() > 0 {
		if frag, err := goquery.OuterHtml(body); err == nil {
			// Markdown keeps headings and lists legible for the model.
			if md, err := htmltomarkdown.ConvertString(frag); err == nil {
				text = collapseBlankLines(md)
			}
		}
		if text == "" {
			text = strings.Join(strings.Fields(body.Text()), " ")
		}
	}
	text = strings.TrimSpace(text)

	return &core.RenderResult{
		Title: title,
		HTML:  rawHTML,
		Text:  text,
		Links: links,
	}, nil
}

var blankLineRe = regexp.MustCompile(`\n{3,}`)

func collapseBlankLines(s string) string {
	return blankLineRe.ReplaceAllString(s, "\n\n")
}
