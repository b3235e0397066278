// Package listing resolves a page enumerating multiple cards into
// per-card extraction results: model-assisted candidate discovery,
// content filtering, liveness validation, and orchestrator fan-out.
package listing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cardpipe/cardpipe/core"
	"github.com/cardpipe/cardpipe/core/chunk"
	"github.com/cardpipe/cardpipe/core/classify"
	"github.com/cardpipe/cardpipe/core/extractor"
	"github.com/cardpipe/cardpipe/core/llm"
	"github.com/cardpipe/cardpipe/core/pace"
)

const (
	// promptTokenBudget triggers the chunked fallback when the single
	// enumeration prompt would exceed it.
	promptTokenBudget = 12000
	chunkWords        = 2000
	maxChunks         = 5
)

const enumerationSystemPrompt = `You are given the text of a bank webpage that lists multiple credit
cards, plus a pre-filtered set of links found on that page. Models are
unreliable at spotting "Know More" style buttons from text alone, so
trust the link list for URLs. Return JSON:
{"cards": [{"name": "", "url": "", "description": ""}]}
Only include consumer credit card products with a usable absolute URL.`

// Resolver fans a listing page out across its cards.
type Resolver struct {
	fetcher   extractor.ContentFetcher
	completer core.Completer
	orch      *extractor.Orchestrator
	validator *URLValidator

	cardPacer       *pace.Pacer
	validationPacer *pace.Pacer
}

// New creates a Resolver. cardDelay spaces out consecutive card
// extractions; validationDelay spaces out HEAD checks.
func New(fetcher extractor.ContentFetcher, completer core.Completer, orch *extractor.Orchestrator,
	cardDelay, validationDelay time.Duration) *Resolver {
	return &Resolver{
		fetcher:         fetcher,
		completer:       completer,
		orch:            orch,
		validator:       NewURLValidator(),
		cardPacer:       pace.New(cardDelay),
		validationPacer: pace.New(validationDelay),
	}
}

// Resolve processes one listing URL end to end. Per-card failures are
// recorded, never escalated; partial success is the normal terminal
// state.
func (r *Resolver) Resolve(ctx context.Context, listingURL string) (*core.ListingReport, error) {
	page := r.fetcher.Fetch(ctx, listingURL)
	if !page.Success {
		return nil, fmt.Errorf("fetching listing %s: %s", listingURL, page.Error)
	}

	candidates, usage, err := r.enumerate(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("enumerating cards on %s: %w", listingURL, err)
	}
	candidates = FilterCandidates(candidates)
	slog.Info("listing candidates", "url", listingURL, "count", len(candidates))

	report := &core.ListingReport{
		ListingURL:  listingURL,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		TokenUsage:  usage,
		Structured:  make(map[string]*core.StructuredRecord),
	}

	valid := r.validateCandidates(ctx, candidates, report)

	totalConfidence := 0.0
	for _, cand := range valid {
		if err := r.cardPacer.Wait(ctx); err != nil {
			break
		}

		res, err := r.orch.Extract(ctx, cand.URL)
		if err != nil {
			report.FailedCards = append(report.FailedCards, core.FailedCard{
				Name: cand.Name, URL: cand.URL, Reason: err.Error(),
			})
			continue
		}
		report.TokenUsage = report.TokenUsage.Add(res.Usage)
		if !res.Valid {
			report.FailedCards = append(report.FailedCards, core.FailedCard{
				Name: cand.Name, URL: cand.URL, Reason: res.Reason,
			})
			continue
		}
		report.Cards = append(report.Cards, *res.Record)
		report.Structured[res.Record.ID] = res.Structured
		totalConfidence += res.Record.Metadata.ConfidenceScore
	}

	report.CardsProcessed = len(report.Cards)
	report.CardsFailed = len(report.FailedCards)
	if total := report.CardsProcessed + report.CardsFailed; total > 0 {
		report.SuccessRate = float64(report.CardsProcessed) / float64(total)
	}
	if checked := len(valid) + len(report.InvalidURLs); checked > 0 {
		report.URLValidationRate = float64(len(valid)) / float64(checked)
	}
	if report.CardsProcessed > 0 {
		report.AvgConfidence = totalConfidence / float64(report.CardsProcessed)
	}

	return report, nil
}

// validateCandidates runs paced HEAD checks, recording failures in the
// report and returning the survivors.
func (r *Resolver) validateCandidates(ctx context.Context, cands []CandidateCard, report *core.ListingReport) []CandidateCard {
	var valid []CandidateCard
	for _, cand := range cands {
		if err := r.validationPacer.Wait(ctx); err != nil {
			break
		}
		errType, err := r.validator.Check(ctx, cand.URL)
		if err != nil {
			report.InvalidURLs = append(report.InvalidURLs, core.InvalidURL{
				Name: cand.Name, URL: cand.URL, ErrorType: errType, Error: err.Error(),
			})
			continue
		}
		valid = append(valid, cand)
	}
	return valid
}

// enumerate asks the model for candidate cards, falling back to
// chunked prompts when the page is too large for one call.
func (r *Resolver) enumerate(ctx context.Context, page *core.PageContent) ([]CandidateCard, core.TokenUsage, error) {
	links := classify.BuildCandidates(page)
	user := buildEnumerationPrompt(page.Text, links)

	if llm.EstimateTokens(user) > promptTokenBudget {
		return r.enumerateChunked(ctx, page, links)
	}

	completion, err := r.completer.Complete(ctx, enumerationSystemPrompt, user, core.CompletionOptions{
		Temperature: 0.1, MaxTokens: 2048, JSONMode: true,
	})
	if err != nil {
		return nil, core.TokenUsage{}, err
	}

	cards, err := parseCandidates(completion.Text)
	if err != nil || completion.Truncated {
		// Malformed or truncated single-shot response: chunked retry.
		chunkCards, chunkUsage, chunkErr := r.enumerateChunked(ctx, page, links)
		chunkUsage = chunkUsage.Add(completion.Usage)
		return chunkCards, chunkUsage, chunkErr
	}
	return cards, completion.Usage, nil
}

// enumerateChunked runs heuristic link extraction first, then the
// model over bounded fixed-size windows, merging and deduplicating.
func (r *Resolver) enumerateChunked(ctx context.Context, page *core.PageContent, links []core.LinkCandidate) ([]CandidateCard, core.TokenUsage, error) {
	// Heuristic pass needs no model call.
	cards := candidatesFromLinks(links)

	chunks := chunk.New(chunkWords).Chunk(page.Text)
	if len(chunks) > maxChunks {
		chunks = chunks[:maxChunks]
	}

	var usage core.TokenUsage
	for i, c := range chunks {
		user := buildEnumerationPrompt(c, links)
		completion, err := r.completer.Complete(ctx, enumerationSystemPrompt, user, core.CompletionOptions{
			Temperature: 0.1, MaxTokens: 2048, JSONMode: true,
		})
		if err != nil {
			slog.Warn("chunk enumeration failed", "chunk", i+1, "err", err)
			continue
		}
		usage = usage.Add(completion.Usage)
		chunkCards, err := parseCandidates(completion.Text)
		if err != nil {
			slog.Warn("chunk response unparseable", "chunk", i+1, "err", err)
			continue
		}
		cards = append(cards, chunkCards...)
	}

	if len(cards) == 0 {
		return nil, usage, fmt.Errorf("no candidates from %d chunks", len(chunks))
	}
	// FilterCandidates dedupes by (url, name) downstream, but merge
	// duplicates here too so the report counts are honest.
	return dedupeCandidates(cards), usage, nil
}

// candidatesFromLinks promotes card-looking link candidates directly,
// no model involved.
func candidatesFromLinks(links []core.LinkCandidate) []CandidateCard {
	var cards []CandidateCard
	for _, l := range links {
		if l.Category != core.CategoryCardFeatures && l.Category != core.CategoryGeneral &&
			l.Category != core.CategoryRewards {
			continue
		}
		c := CandidateCard{Name: l.AnchorText, URL: l.URL}
		if KeepCandidate(c) {
			cards = append(cards, c)
		}
	}
	return cards
}

func dedupeCandidates(cards []CandidateCard) []CandidateCard {
	seen := make(map[string]bool)
	var out []CandidateCard
	for _, c := range cards {
		key := strings.ToLower(c.URL) + "|" + strings.ToLower(c.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func buildEnumerationPrompt(text string, links []core.LinkCandidate) string {
	var b strings.Builder
	b.WriteString("PAGE TEXT:\n")
	b.WriteString(text)
	b.WriteString("\n\nLINKS FOUND ON PAGE:\n")
	for _, l := range links {
		fmt.Fprintf(&b, "- [%s] %s -> %s\n", l.Category, l.AnchorText, l.URL)
	}
	return b.String()
}

func parseCandidates(raw string) ([]CandidateCard, error) {
	var payload struct {
		Cards []CandidateCard `json:"cards"`
	}
	if err := llm.ParseLenient(raw, &payload); err != nil {
		return nil, err
	}
	return payload.Cards, nil
}
