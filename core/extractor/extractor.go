// Package extractor drives the end-to-end flow for one card URL:
// fetch the main page, classify and fetch linked pages, prompt the
// structuring model for both output shapes, parse and validate, and
// assemble the final records.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardpipe/cardpipe/core"
	"github.com/cardpipe/cardpipe/core/classify"
	"github.com/cardpipe/cardpipe/core/llm"
	"github.com/cardpipe/cardpipe/core/pace"
)

// ReasonIncomplete marks a result that parsed but failed the
// completeness policy. It is a typed outcome, not an error.
const ReasonIncomplete = "incomplete_data"

// ContentFetcher is the narrow fetch capability the orchestrator needs.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) *core.PageContent
}

// Result is the terminal state for one URL.
type Result struct {
	Valid      bool
	Reason     string
	Record     *core.ExtractionRecord
	Structured *core.StructuredRecord
	Failed     []core.FailedLink
	Usage      core.TokenUsage
}

// Orchestrator runs the per-URL extraction state machine.
type Orchestrator struct {
	fetcher   ContentFetcher
	completer core.Completer
	pacer     *pace.Pacer

	// MaxLinks bounds linked-page fetches; 0 means unbounded.
	MaxLinks int
	// MaxContentLength truncates linked-page text before prompt
	// building; 0 means no limit. Main page text is never truncated.
	MaxContentLength int
	// MinPDFTextLen is the completeness floor for PDF sources.
	MinPDFTextLen int
}

// New creates an Orchestrator. linkDelay spaces out linked-page
// fetches against the origin server.
func New(fetcher ContentFetcher, completer core.Completer, linkDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		fetcher:       fetcher,
		completer:     completer,
		pacer:         pace.New(linkDelay),
		MinPDFTextLen: 200,
	}
}

// Extract processes one target URL to a terminal state. An error
// return means the ERROR state: the caller persists an error record.
// An incomplete extraction is a valid=false Result, not an error.
func (o *Orchestrator) Extract(ctx context.Context, targetURL string) (*Result, error) {
	main := o.fetcher.Fetch(ctx, targetURL)
	if !main.Success {
		return nil, fmt.Errorf("fetching %s: %s", targetURL, main.Error)
	}

	var processed []core.ProcessedLink
	var failed []core.FailedLink
	if main.ContentType == core.ContentWeb {
		processed, failed = o.processLinks(ctx, main)
	}

	slog.Info("content gathered", "url", targetURL,
		"kind", main.ContentType, "links_processed", len(processed), "links_failed", len(failed))

	system, user := buildExtractionPrompt(main, processed)
	completion, err := o.completer.Complete(ctx, system, user, core.CompletionOptions{
		Temperature: 0.1,
		MaxTokens:   4096,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("model call for %s: %w", targetURL, err)
	}

	var out modelOutput
	if err := llm.ParseLenient(completion.Text, &out); err != nil {
		// Parse failure after repair is terminal for this URL; the
		// model call is not retried here.
		return nil, fmt.Errorf("model response for %s: %w", targetURL, err)
	}

	record := out.Standard.toRecord(targetURL)
	record.Metadata.ProcessedLinkCount = len(processed)
	record.Metadata.TokenUsage = completion.Usage
	record.Metadata.ConfidenceScore = ConfidenceScore(record)
	record.Metadata.MissingFields = MissingFields(record)

	structured := out.Structured
	if structured == nil || len(structured.Metadata) == 0 {
		structured = DeriveStructured(record)
		record.Metadata.StructuredDerived = true
	}
	structured.PartitionKey = PartitionKey(record.Card.Bank, record.Card.Name)

	result := &Result{
		Record:     record,
		Structured: structured,
		Failed:     failed,
		Usage:      completion.Usage,
	}

	if !o.isComplete(main, record) {
		result.Valid = false
		result.Reason = ReasonIncomplete
		return result, nil
	}
	result.Valid = true
	return result, nil
}

// processLinks classifies the main page's anchors and fetches each
// candidate in priority order, paced between requests.
func (o *Orchestrator) processLinks(ctx context.Context, main *core.PageContent) ([]core.ProcessedLink, []core.FailedLink) {
	candidates := classify.BuildCandidates(main)
	if o.MaxLinks > 0 && len(candidates) > o.MaxLinks {
		candidates = candidates[:o.MaxLinks]
	}

	var processed []core.ProcessedLink
	var failed []core.FailedLink
	for _, cand := range candidates {
		if err := o.pacer.Wait(ctx); err != nil {
			break
		}
		page := o.fetcher.Fetch(ctx, cand.URL)
		if !page.Success {
			failed = append(failed, core.FailedLink{
				URL:        cand.URL,
				Category:   cand.Category,
				Error:      page.Error,
				AnchorText: cand.AnchorText,
			})
			continue
		}
		if o.MaxContentLength > 0 && len(page.Text) > o.MaxContentLength {
			truncated := *page
			truncated.Text = page.Text[:o.MaxContentLength]
			page = &truncated
		}
		processed = append(processed, core.ProcessedLink{
			LinkCandidate: cand,
			Content:       page,
			Summary:       summarize(page.Text, summaryWords),
		})
	}
	return processed, failed
}

// summaryWords bounds the per-link digest used in logs and reports.
const summaryWords = 40

// summarize returns the first n words of text.
func summarize(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// isComplete applies the per-kind completeness policy. PDFs are often
// supplementary legal documents, so they get the looser bar.
func (o *Orchestrator) isComplete(main *core.PageContent, record *core.ExtractionRecord) bool {
	if main.ContentType == core.ContentPDF {
		return len(main.Text) >= o.MinPDFTextLen && main.Title != ""
	}
	return IsDataComplete(record)
}

// PartitionKey builds the synthetic storage key from bank and card name.
func PartitionKey(bank, name string) string {
	return Slug(bank) + "#" + Slug(name)
}

func newRecordID() string {
	return uuid.New().String()
}
