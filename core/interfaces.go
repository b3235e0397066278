// Package core defines the data model and stage interfaces for cardpipe.
// Each stage of the extraction pipeline is a clean, testable interface.
package core

import "context"

// ContentType distinguishes rendered webpages from decoded PDF documents.
type ContentType string

const (
	ContentWeb ContentType = "web"
	ContentPDF ContentType = "pdf"
)

// PageContent is the normalized result of resolving one URL.
// It is immutable once created; a failed fetch still produces a value
// with Success=false and Error set, never an error for a single URL.
type PageContent struct {
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Text        string      `json:"text"`
	HTML        string      `json:"html,omitempty"`
	Links       []Anchor    `json:"links,omitempty"`
	ContentType ContentType `json:"content_type"`
	Success     bool        `json:"success"`
	Error       string      `json:"error,omitempty"`
}

// Anchor is a raw hyperlink found on a rendered page, with its href
// already resolved to an absolute URL.
type Anchor struct {
	URL   string `json:"url"`
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

// Category tags a link candidate with the kind of card content it points at.
type Category string

const (
	CategoryPDF          Category = "pdf"
	CategoryTerms        Category = "terms"
	CategoryOffers       Category = "offers"
	CategoryRewards      Category = "rewards"
	CategoryPartnerships Category = "partnerships"
	CategoryCardFeatures Category = "card_features"
	CategoryGeneral      Category = "general"
)

// LinkCandidate is an anchor that survived relevance filtering,
// tagged and ranked for fetching. It lives only within one crawl pass.
type LinkCandidate struct {
	URL          string   `json:"url"`
	AnchorText   string   `json:"anchor_text"`
	Title        string   `json:"title,omitempty"`
	OriginalHref string   `json:"original_href"`
	Category     Category `json:"category"`
	PriorityRank int      `json:"priority_rank"`
}

// ProcessedLink is a candidate plus its fetched content.
type ProcessedLink struct {
	LinkCandidate
	Content *PageContent `json:"content"`
	Summary string       `json:"summary,omitempty"`
}

// FailedLink records a candidate that could not be fetched.
type FailedLink struct {
	URL        string   `json:"url"`
	Category   Category `json:"category"`
	Error      string   `json:"error"`
	AnchorText string   `json:"anchor_text"`
}

// CardIdentity names the product being extracted.
type CardIdentity struct {
	Name    string `json:"name"`
	Bank    string `json:"bank"`
	Variant string `json:"variant,omitempty"`
	Network string `json:"network,omitempty"`
}

// Rewards describes how the card earns and redeems.
type Rewards struct {
	Program    string       `json:"program,omitempty"`
	Type       string       `json:"type,omitempty"`
	Earning    EarningRules `json:"earning"`
	Redemption []string     `json:"redemption,omitempty"`
}

// EarningRules lists the category multipliers a card advertises.
type EarningRules struct {
	Categories []EarningCategory `json:"categories,omitempty"`
	BaseRate   string            `json:"base_rate,omitempty"`
}

// EarningCategory is one spend category and its earn rate.
type EarningCategory struct {
	Category string `json:"category"`
	Rate     string `json:"rate"`
	Cap      string `json:"cap,omitempty"`
}

// RecordMetadata carries the diagnostic signals attached to every record.
type RecordMetadata struct {
	ConfidenceScore    float64    `json:"confidence_score"`
	MissingFields      []string   `json:"missing_fields,omitempty"`
	ProcessedLinkCount int        `json:"processed_link_count"`
	TokenUsage         TokenUsage `json:"token_usage"`
	StructuredDerived  bool       `json:"structured_derived,omitempty"`
}

// TokenUsage is the explicit accumulator for model-call token counts.
// Returned alongside each completion and summed by callers; there is no
// hidden cross-call state.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Add returns the element-wise sum of two usages.
func (u TokenUsage) Add(v TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:     u.PromptTokens + v.PromptTokens,
		CompletionTokens: u.CompletionTokens + v.CompletionTokens,
	}
}

// ExtractionRecord is the flexible "standard" shape for one card.
// Extras holds model-added fields outside the required contract.
type ExtractionRecord struct {
	ID             string            `json:"id"`
	URL            string            `json:"url"`
	ScrapedAt      string            `json:"scraped_at"`
	Card           CardIdentity      `json:"card"`
	Rewards        Rewards           `json:"rewards"`
	Benefits       []string          `json:"benefits,omitempty"`
	CurrentOffers  []string          `json:"current_offers,omitempty"`
	Perks          []string          `json:"perks,omitempty"`
	Partnerships   []string          `json:"partnerships,omitempty"`
	FeesAndCharges []string          `json:"fees_and_charges,omitempty"`
	Extras         map[string]string `json:"extras,omitempty"`
	Metadata       RecordMetadata    `json:"metadata"`
}

// StructuredRecord is the fixed, key-indexed shape of the same facts,
// keyed by a synthetic partition key derived from bank and card name.
// Both records for a card come from the same prompt/response pair.
type StructuredRecord struct {
	PartitionKey string            `json:"partition_key"`
	Metadata     map[string]string `json:"metadata"`
	Features     []string          `json:"features,omitempty"`
	Rewards      map[string]string `json:"rewards,omitempty"`
	Fees         map[string]string `json:"fees,omitempty"`
	Eligibility  []string          `json:"eligibility,omitempty"`
	RelatedDocs  []string          `json:"related_docs,omitempty"`
}

// FailedCard records a listing candidate whose extraction did not complete.
type FailedCard struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// InvalidURL records a listing candidate that failed the liveness check.
type InvalidURL struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	ErrorType string `json:"error_type"`
	Error     string `json:"error,omitempty"`
}

// ListingReport aggregates one listing run. Card order reflects
// processing order, not relevance.
type ListingReport struct {
	ListingURL        string             `json:"listing_url"`
	GeneratedAt       string             `json:"generated_at"`
	Cards             []ExtractionRecord `json:"cards"`
	FailedCards       []FailedCard       `json:"failed_cards,omitempty"`
	InvalidURLs       []InvalidURL       `json:"invalid_urls,omitempty"`
	CardsProcessed    int                `json:"cards_processed"`
	CardsFailed       int                `json:"cards_failed"`
	SuccessRate       float64            `json:"processing_success_rate"`
	URLValidationRate float64            `json:"url_validation_success_rate"`
	AvgConfidence     float64            `json:"average_confidence"`
	TokenUsage        TokenUsage         `json:"token_usage"`

	// Structured holds each card's fixed-shape record keyed by record
	// ID. Persisted as separate files, never inside the report JSON.
	Structured map[string]*StructuredRecord `json:"-"`
}

// RenderOptions configures one browser navigation.
type RenderOptions struct {
	// WaitStrategy is one of "networkidle", "load", "domcontentloaded",
	// from strictest to most lenient.
	WaitStrategy string
	Timeout      int // seconds
	// RemoveSelectors are boilerplate elements stripped before extraction.
	RemoveSelectors []string
}

// RenderResult is what the browser capability hands back for one page.
type RenderResult struct {
	Title      string
	HTML       string
	Text       string
	Links      []Anchor
	StatusCode int
}

// Renderer is the headless-browser capability: render a page, return
// its text and links. Implementations live in core/browser.
type Renderer interface {
	Render(ctx context.Context, url string, opts RenderOptions) (*RenderResult, error)
}

// CompletionOptions configures one structuring-model call.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// Completion is the raw model response plus its token accounting.
type Completion struct {
	Text      string
	Usage     TokenUsage
	Truncated bool
}

// Completer is the structuring-model capability. The response text may be
// malformed JSON requiring repair, or truncated (Truncated=true) requiring
// a chunked retry at the call site.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts CompletionOptions) (*Completion, error)
}

// PDFInfo is document metadata surfaced by the decode capability.
type PDFInfo struct {
	Title     string
	PageCount int
}

// PDFDecoder converts raw PDF bytes into text.
type PDFDecoder interface {
	Decode(data []byte) (text string, info PDFInfo, err error)
}
