package extractor

import (
	"fmt"
	"strings"

	"github.com/cardpipe/cardpipe/core"
	"github.com/cardpipe/cardpipe/core/format"
)

const extractionSystemPrompt = `You are a precise data extraction assistant for credit card product pages.
You are given the text of a card's main page and the text of linked pages
(terms PDFs, offer pages, partner pages). Extract facts only from the
provided text; never invent values. Respond with a single JSON object:

{
  "standard": {
    "card": {"name": "", "bank": "", "variant": "", "network": ""},
    "rewards": {
      "program": "", "type": "",
      "earning": {"categories": [{"category": "", "rate": "", "cap": ""}], "base_rate": ""},
      "redemption": []
    },
    "benefits": [], "current_offers": [], "perks": [],
    "partnerships": [], "fees_and_charges": [],
    "extras": {}
  },
  "structured": {
    "metadata": {"bank": "", "card_name": ""},
    "features": [], "rewards": {}, "fees": {},
    "eligibility": [], "related_docs": []
  }
}

In "standard" you may add extra string fields under "extras" for facts
that fit nowhere else. "structured" must keep exactly the keys shown.
Use empty strings or empty arrays for unknown values, never placeholders
like "unknown" or "not found".`

// buildExtractionPrompt combines the main page text (untruncated) with
// each linked page's content into one user prompt.
func buildExtractionPrompt(main *core.PageContent, links []core.ProcessedLink) (system, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "MAIN PAGE (%s)\nTitle: %s\n\n%s\n", main.URL, main.Title, main.Text)

	for _, l := range links {
		fmt.Fprintf(&b, "\n--- LINKED PAGE [%s] (%s)\nAnchor: %s\nTitle: %s\n\n",
			l.Category, l.URL, l.AnchorText, l.Content.Title)
		writeBlocks(&b, linkedBlocks(l))
	}

	return extractionSystemPrompt, b.String()
}

// linkedBlocks reshapes a linked page's text by source kind: PDF
// paragraphs get sentence-split when overlong, webpage lines keep
// their heading/list/paragraph typing.
func linkedBlocks(l core.ProcessedLink) []format.Block {
	if l.Content.ContentType == core.ContentPDF {
		return format.PDFBlocks(l.Content.Text)
	}
	return format.WebBlocks(l.Content.Text)
}

func writeBlocks(b *strings.Builder, blocks []format.Block) {
	for _, blk := range blocks {
		switch blk.Type {
		case format.BlockHeading:
			fmt.Fprintf(b, "## %s\n", blk.Text)
		case format.BlockListItem:
			fmt.Fprintf(b, "- %s\n", blk.Text)
		default:
			fmt.Fprintf(b, "%s\n", blk.Text)
		}
	}
}
