package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cardpipe/cardpipe/core"
	"github.com/cardpipe/cardpipe/core/retry"
)

// fakeDecoder returns canned text for any bytes.
type fakeDecoder struct {
	text string
	info core.PDFInfo
	err  error
}

func (d *fakeDecoder) Decode([]byte) (string, core.PDFInfo, error) {
	return d.text, d.info, d.err
}

// fakeRenderer replays scripted results per wait strategy.
type fakeRenderer struct {
	results map[string]*core.RenderResult
	errs    map[string]error
	calls   []string
}

func (r *fakeRenderer) Render(_ context.Context, _ string, opts core.RenderOptions) (*core.RenderResult, error) {
	r.calls = append(r.calls, opts.WaitStrategy)
	if err, ok := r.errs[opts.WaitStrategy]; ok {
		return nil, err
	}
	if res, ok := r.results[opts.WaitStrategy]; ok {
		return res, nil
	}
	return nil, errors.New("no scripted result")
}

func fastPolicy() retry.Policy { return retry.Policy{MaxAttempts: 2, Backoff: 0} }

func TestFetch_PDFPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	f := New(nil, &fakeDecoder{
		text: "Platinum\x00 Card   Most Important Terms",
		info: core.PDFInfo{Title: "MITC", PageCount: 3},
	})
	f.Policy = fastPolicy()

	page := f.Fetch(context.Background(), srv.URL+"/docs/mitc.pdf")
	if !page.Success {
		t.Fatalf("unexpected failure: %s", page.Error)
	}
	if page.ContentType != core.ContentPDF {
		t.Errorf("content type: got %s", page.ContentType)
	}
	if page.Title != "MITC" {
		t.Errorf("title: got %q", page.Title)
	}
	if strings.Contains(page.Text, "\x00") {
		t.Error("null bytes not stripped")
	}
}

func TestFetch_PDFTitleFallsBackToHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	f := New(nil, &fakeDecoder{text: ""})
	f.Policy = fastPolicy()

	page := f.Fetch(context.Background(), srv.URL+"/a.pdf")
	if !page.Success {
		t.Fatalf("unexpected failure: %s", page.Error)
	}
	if !strings.HasPrefix(page.Title, "PDF Document from ") {
		t.Errorf("title fallback: got %q", page.Title)
	}
}

func TestFetch_PDFRejectsHTMLContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not a pdf</html>"))
	}))
	defer srv.Close()

	f := New(nil, &fakeDecoder{text: "should not be reached"})
	f.Policy = fastPolicy()

	page := f.Fetch(context.Background(), srv.URL+"/a.pdf")
	if page.Success {
		t.Fatal("expected failure for HTML content type")
	}
	if page.Error == "" {
		t.Error("error must be populated on failure")
	}
}

func TestFetch_PDFFailureShapedAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(nil, &fakeDecoder{})
	f.Policy = fastPolicy()

	page := f.Fetch(context.Background(), srv.URL+"/gone.pdf")
	if page.Success {
		t.Fatal("expected failure")
	}
	if page.ContentType != core.ContentPDF {
		t.Errorf("content type: got %s", page.ContentType)
	}
}

func TestFetch_WebStrategyLadder(t *testing.T) {
	big := strings.Repeat("reward points on every spend ", 20)
	r := &fakeRenderer{
		errs: map[string]error{"networkidle": errors.New("timeout")},
		results: map[string]*core.RenderResult{
			"load": {Title: "Platinum Card", Text: big, Links: []core.Anchor{{URL: "https://b.com/x"}}},
		},
	}
	f := New(r, nil)
	f.Policy = retry.Policy{MaxAttempts: 1, Backoff: 0}

	page := f.Fetch(context.Background(), "https://bank.com/cards/platinum")
	if !page.Success {
		t.Fatalf("unexpected failure: %s", page.Error)
	}
	if page.Title != "Platinum Card" {
		t.Errorf("title: got %q", page.Title)
	}
	if len(r.calls) != 2 || r.calls[0] != "networkidle" || r.calls[1] != "load" {
		t.Errorf("strategy order wrong: %v", r.calls)
	}
}

func TestFetch_WebTrivialResultTriesNextStrategy(t *testing.T) {
	big := strings.Repeat("cashback on fuel and groceries ", 20)
	r := &fakeRenderer{
		results: map[string]*core.RenderResult{
			"networkidle":      {Text: "tiny"},
			"load":             {Text: "also tiny"},
			"domcontentloaded": {Title: "Gold Card", Text: big},
		},
	}
	f := New(r, nil)
	f.Policy = retry.Policy{MaxAttempts: 1, Backoff: 0}

	page := f.Fetch(context.Background(), "https://bank.com/cards/gold")
	if !page.Success {
		t.Fatalf("unexpected failure: %s", page.Error)
	}
	if len(r.calls) != 3 {
		t.Errorf("expected 3 strategy attempts, got %d", len(r.calls))
	}
}

func TestFetch_WebExhaustionIsFailureShaped(t *testing.T) {
	r := &fakeRenderer{errs: map[string]error{
		"networkidle":      errors.New("nav error"),
		"load":             errors.New("nav error"),
		"domcontentloaded": errors.New("nav error"),
	}}
	f := New(r, nil)
	f.Policy = retry.Policy{MaxAttempts: 2, Backoff: 0}

	page := f.Fetch(context.Background(), "https://bank.com/cards/gone")
	if page.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(page.Error, "exhausted") {
		t.Errorf("error should mention strategy exhaustion: %q", page.Error)
	}
}

func TestDecodedPathURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://b.com/download?path=%2Fdocs%2Ftnc.pdf", "https://b.com/docs/tnc.pdf"},
		{"https://b.com/download?path=https%3A%2F%2Fcdn.b.com%2Ftnc.pdf", "https://cdn.b.com/tnc.pdf"},
		{"https://b.com/download", ""},
	}
	for _, c := range cases {
		if got := decodedPathURL(c.in); got != c.want {
			t.Errorf("decodedPathURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFetch_WebPreservesLineStructure(t *testing.T) {
	// The section shaper splits on line boundaries downstream, so the
	// renderer's markdown must come through with its newlines intact.
	md := "## Fees\nAnnual  fee Rs. 2500\n- Waived on 3L spend\n" +
		strings.Repeat("detail line\n", 50)
	r := &fakeRenderer{results: map[string]*core.RenderResult{
		"networkidle": {Title: "Fees", Text: md, Links: make([]core.Anchor, 5)},
	}}

	f := New(r, nil)
	f.Policy = fastPolicy()

	page := f.Fetch(context.Background(), "https://bank.com/cards/fees")
	if !page.Success {
		t.Fatalf("unexpected failure: %s", page.Error)
	}
	if !strings.Contains(page.Text, "## Fees\nAnnual fee Rs. 2500\n- Waived on 3L spend") {
		t.Errorf("line structure lost: %q", page.Text[:80])
	}
}
