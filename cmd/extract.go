// Package cmd — extract command.
// Wires the pipeline together: browser renderer + PDF decoder behind
// the fetcher, the structuring-model client, the orchestrator, and for
// listing pages the resolver fan-out.
package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardpipe/cardpipe/core/browser"
	"github.com/cardpipe/cardpipe/core/config"
	"github.com/cardpipe/cardpipe/core/extractor"
	"github.com/cardpipe/cardpipe/core/fetch"
	"github.com/cardpipe/cardpipe/core/listing"
	"github.com/cardpipe/cardpipe/core/llm"
	"github.com/cardpipe/cardpipe/core/output"
	"github.com/cardpipe/cardpipe/core/pdftext"
)

var (
	flagListing   bool
	flagSingle    bool
	flagAPIKey    string
	flagOutputDir string
	flagMaxLinks  int
	flagReportPDF bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract structured card data from a bank page",
	Long: `Extract renders the page, classifies and follows relevant links, and
produces one standard JSON and one structured JSON per card.

Without --listing or --single the mode is detected from the URL.

Examples:
  cardpipe extract https://bank.com/credit-card/regalia --api-key sk-...
  cardpipe extract https://bank.com/credit-cards --listing --report-pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&flagListing, "listing", false, "Treat the URL as a listing page")
	extractCmd.Flags().BoolVar(&flagSingle, "single", false, "Treat the URL as a single card page")
	extractCmd.Flags().StringVar(&flagAPIKey, "api-key", "", "Structuring model API key (overrides CARDPIPE_API_KEY)")
	extractCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Output directory (default from config)")
	extractCmd.Flags().IntVar(&flagMaxLinks, "max-links", -1, "Max linked pages to fetch per card, 0 = unbounded")
	extractCmd.Flags().BoolVar(&flagReportPDF, "report-pdf", false, "Also write a PDF summary report (listing mode)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	rawURL := args[0]

	if flagListing && flagSingle {
		return fmt.Errorf("--listing and --single are mutually exclusive")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://bank.com/cards)", rawURL)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("an API key is required: pass --api-key or set CARDPIPE_API_KEY")
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if flagMaxLinks >= 0 {
		cfg.MaxLinks = flagMaxLinks
	}

	mode := ModeSingle
	switch {
	case flagListing:
		mode = ModeListing
	case flagSingle:
		mode = ModeSingle
	case cfg.ForceListing:
		mode = ModeListing
	case cfg.ForceSingle:
		mode = ModeSingle
	default:
		mode = DefaultModePolicy().Detect(rawURL)
	}

	renderer := browser.New()
	defer renderer.Close()

	fetcher := fetch.New(renderer, pdftext.New())
	fetcher.NavTimeout = int(cfg.NavTimeout.Seconds())
	if cfg.RespectRobots {
		fetcher.EnableRobots("cardpipe")
	}

	completer := llm.New(cfg.Endpoint, cfg.APIKey, cfg.Model)
	orch := extractor.New(fetcher, completer, cfg.LinkDelay)
	orch.MaxLinks = cfg.MaxLinks
	orch.MaxContentLength = cfg.MaxContentLength

	writer, err := output.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	ctx := context.Background()

	if mode == ModeListing {
		resolver := listing.New(fetcher, completer, orch, cfg.CardDelay, cfg.ValidationDelay)
		return runListing(ctx, rawURL, resolver, writer)
	}
	return runSingle(ctx, rawURL, orch, writer)
}

// runSingle processes one card page. Any failure here is a top-level
// failure and exits non-zero.
func runSingle(ctx context.Context, rawURL string, orch *extractor.Orchestrator, writer *output.Writer) error {
	res, err := orch.Extract(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", rawURL, err)
	}
	if !res.Valid {
		return fmt.Errorf("extraction from %s did not meet the completeness policy: %s", rawURL, res.Reason)
	}

	stdPath, structPath, err := writer.WriteCard(res.Record, res.Structured)
	if err != nil {
		return err
	}

	printCardLine(res.Record.Card.Bank, res.Record.Card.Name, res.Record.Metadata.ConfidenceScore)
	fmt.Fprintf(os.Stdout, "  ✓ Written: %s\n", stdPath)
	fmt.Fprintf(os.Stdout, "  ✓ Written: %s\n", structPath)
	fmt.Fprintf(os.Stdout, "Tokens: %d prompt, %d completion\n",
		res.Usage.PromptTokens, res.Usage.CompletionTokens)
	return nil
}

// runListing processes a listing page. Partial success is the normal
// terminal state: per-card failures are reported, never escalated.
func runListing(ctx context.Context, rawURL string, resolver *listing.Resolver, writer *output.Writer) error {
	fmt.Fprintf(os.Stdout, "Resolving cards from %s...\n", rawURL)

	report, err := resolver.Resolve(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("resolving listing %s: %w", rawURL, err)
	}

	for i := range report.Cards {
		rec := &report.Cards[i]
		printCardLine(rec.Card.Bank, rec.Card.Name, rec.Metadata.ConfidenceScore)

		structured := report.Structured[rec.ID]
		if _, _, err := writer.WriteCard(rec, structured); err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ Write error: %v\n", err)
		}
	}

	reportPath, err := writer.WriteReport(report)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Report: %s\n", reportPath)

	if flagReportPDF {
		pdfPath, err := writer.WritePDFReport(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ PDF report error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stdout, "✓ Report: %s\n", pdfPath)
		}
	}

	fmt.Fprintf(os.Stdout, "\nProcessed %d cards, %d failed, %d invalid URLs (avg confidence %.2f)\n",
		report.CardsProcessed, report.CardsFailed, len(report.InvalidURLs), report.AvgConfidence)
	for _, f := range report.FailedCards {
		fmt.Fprintf(os.Stderr, "  ✗ %s: %s\n", f.URL, f.Reason)
	}
	for _, u := range report.InvalidURLs {
		fmt.Fprintf(os.Stderr, "  ✗ %s: %s\n", u.URL, u.ErrorType)
	}
	return nil
}

func printCardLine(bank, name string, confidence float64) {
	fmt.Fprintf(os.Stdout, "✓ %s — %s (confidence %.2f)\n", bank, name, confidence)
}
