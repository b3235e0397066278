// Package output handles file naming and writing for extraction
// results: one standard JSON and one structured JSON per card, plus an
// aggregate report per listing run. Filenames are deterministic slugs
// of bank + card name + timestamp.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cardpipe/cardpipe/core"
	"github.com/cardpipe/cardpipe/core/extractor"
)

const timestampLayout = "20060102_150405"

// Writer writes extraction output to disk.
type Writer struct {
	OutputDir string

	// now is swappable for deterministic filenames in tests.
	now func() time.Time
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir, now: time.Now}, nil
}

// WriteCard persists both shapes of one extraction. File content is
// exactly the in-memory record, pretty-printed. Returns the two paths.
func (w *Writer) WriteCard(record *core.ExtractionRecord, structured *core.StructuredRecord) (standardPath, structuredPath string, err error) {
	base := cardSlug(record.Card.Bank, record.Card.Name, w.now())

	standardPath, err = w.writeJSON(base+".json", record)
	if err != nil {
		return "", "", err
	}
	structuredPath, err = w.writeJSON(base+"_structured.json", structured)
	if err != nil {
		return "", "", err
	}
	return standardPath, structuredPath, nil
}

// WriteReport persists the aggregate report for a listing run.
func (w *Writer) WriteReport(report *core.ListingReport) (string, error) {
	name := fmt.Sprintf("listing_report_%s.json", w.now().UTC().Format(timestampLayout))
	return w.writeJSON(name, report)
}

func (w *Writer) writeJSON(name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", name, err)
	}
	path := filepath.Join(w.OutputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// cardSlug builds `<bank>_<card>_<timestamp>`. Unknown identity parts
// fall back to placeholders so a degraded record still gets a stable
// name.
func cardSlug(bank, card string, ts time.Time) string {
	b := extractor.Slug(bank)
	if b == "" {
		b = "unknown_bank"
	}
	c := extractor.Slug(card)
	if c == "" {
		c = "unknown_card"
	}
	return fmt.Sprintf("%s_%s_%s", b, c, ts.UTC().Format(timestampLayout))
}
