// Package format post-processes raw extraction sections into
// display-ready shapes: step sequences, reward tiers with sub-bullets,
// and flat deduplicated lists. It also carries typed passthrough
// blocks for linked-page content so downstream renderers keep the
// distinction between headings, paragraphs, and list items.
package format

import (
	"regexp"
	"strings"
)

// BlockType tags one unit of linked-page content.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockListItem  BlockType = "list_item"
)

// Block is a typed unit of linked content. Webpage blocks pass through
// unchanged; PDF paragraphs get sentence-split when overlong.
type Block struct {
	Type BlockType `json:"type"`
	Text string    `json:"text"`
}

// Group is a titled cluster of related items inside a shaped section.
type Group struct {
	Title string   `json:"title"`
	Items []string `json:"items,omitempty"`
}

// Section is a shaped section ready for display or report rendering.
// Exactly one of Groups and Items is populated depending on which
// shaper matched.
type Section struct {
	Title  string   `json:"title"`
	Groups []Group  `json:"groups,omitempty"`
	Items  []string `json:"items,omitempty"`
}

// maxPDFParagraph bounds a single PDF paragraph before sentence
// splitting kicks in.
const maxPDFParagraph = 400

var stepRe = regexp.MustCompile(`(?i)^step\s*(\d+)\s*[:.]\s*(.*)$`)

// boilerplatePhrases are navigation chrome that survives extraction but
// carries no product information. A line equal to (or dominated by)
// one of these is dropped by the standard shaper.
var boilerplatePhrases = []string{
	"click here",
	"know more",
	"learn more",
	"apply now",
	"view details",
	"read more",
	"terms and conditions apply",
	"t&c apply",
}

var bulletPrefixes = []string{"- ", "* ", "• ", "· "}

// Shape routes a raw section through the matching shaper: steps when
// any line carries a "Step N:" prefix, rewards when the title says so
// and the lines show bullet structure, standard otherwise.
func Shape(title string, lines []string) Section {
	switch {
	case hasSteps(lines):
		return shapeSteps(title, lines)
	case looksLikeRewards(title, lines):
		return shapeRewards(title, lines)
	default:
		return Section{Title: title, Items: shapeStandard(lines)}
	}
}

func hasSteps(lines []string) bool {
	for _, l := range lines {
		if stepRe.MatchString(strings.TrimSpace(stripBullet(l))) {
			return true
		}
	}
	return false
}

func looksLikeRewards(title string, lines []string) bool {
	if !strings.Contains(strings.ToLower(title), "reward") {
		return false
	}
	for _, l := range lines {
		if isBullet(l) {
			return true
		}
	}
	return false
}

// shapeSteps groups each "Step N:" line with the sub-items that follow
// it. Lines before the first step stay as loose items.
func shapeSteps(title string, lines []string) Section {
	sec := Section{Title: title}
	var current *Group

	for _, raw := range lines {
		line := strings.TrimSpace(stripBullet(raw))
		if line == "" {
			continue
		}
		if m := stepRe.FindStringSubmatch(line); m != nil {
			heading := "Step " + m[1]
			if rest := strings.TrimSpace(m[2]); rest != "" {
				heading += ": " + rest
			}
			sec.Groups = append(sec.Groups, Group{Title: heading})
			current = &sec.Groups[len(sec.Groups)-1]
			continue
		}
		if current != nil {
			current.Items = append(current.Items, line)
		} else {
			sec.Items = append(sec.Items, line)
		}
	}
	return sec
}

// shapeRewards treats unbulleted lines as tier titles and bulleted
// lines as sub-bullets of the most recent tier.
func shapeRewards(title string, lines []string) Section {
	sec := Section{Title: title}
	var current *Group

	for _, raw := range lines {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if isBullet(raw) {
			item := strings.TrimSpace(stripBullet(raw))
			if current == nil {
				sec.Groups = append(sec.Groups, Group{})
				current = &sec.Groups[len(sec.Groups)-1]
			}
			current.Items = append(current.Items, item)
			continue
		}
		sec.Groups = append(sec.Groups, Group{Title: strings.TrimSpace(raw)})
		current = &sec.Groups[len(sec.Groups)-1]
	}
	return sec
}

// shapeStandard flattens lines into a clean list: bullets stripped,
// boilerplate dropped, exact duplicates removed in order.
func shapeStandard(lines []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, raw := range lines {
		line := strings.TrimSpace(stripBullet(raw))
		if line == "" || isBoilerplate(line) {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}

// CleanList is shapeStandard exposed for callers holding a plain list
// rather than a full section.
func CleanList(items []string) []string {
	return shapeStandard(items)
}

func isBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range boilerplatePhrases {
		if lower == p {
			return true
		}
		// Short lines that are mostly the phrase are chrome too.
		if strings.Contains(lower, p) && len(lower) < len(p)+15 {
			return true
		}
	}
	return false
}

func isBullet(s string) bool {
	t := strings.TrimSpace(s)
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

func stripBullet(s string) string {
	t := strings.TrimSpace(s)
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(t, p) {
			return strings.TrimSpace(t[len(p):])
		}
	}
	return t
}

// PDFBlocks converts decoded PDF text into paragraph blocks, splitting
// any paragraph over maxPDFParagraph at sentence boundaries so no
// single block overwhelms a report page.
func PDFBlocks(text string) []Block {
	var blocks []Block
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for _, piece := range SplitSentences(para, maxPDFParagraph) {
			blocks = append(blocks, Block{Type: BlockParagraph, Text: piece})
		}
	}
	return blocks
}

// WebBlocks keeps webpage content typed: markdown headings become
// heading blocks, bullets become list items, everything else is a
// paragraph.
func WebBlocks(text string) []Block {
	var blocks []Block
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "#"):
			blocks = append(blocks, Block{Type: BlockHeading, Text: strings.TrimSpace(strings.TrimLeft(line, "# "))})
		case isBullet(line):
			blocks = append(blocks, Block{Type: BlockListItem, Text: stripBullet(line)})
		default:
			blocks = append(blocks, Block{Type: BlockParagraph, Text: line})
		}
	}
	return blocks
}

// SplitSentences chops s into pieces of at most maxLen, breaking at
// sentence ends where possible and hard-splitting only when a single
// sentence exceeds the limit.
func SplitSentences(s string, maxLen int) []string {
	if len(s) <= maxLen {
		return []string{s}
	}

	var pieces []string
	remaining := s
	for len(remaining) > maxLen {
		cut := strings.LastIndex(remaining[:maxLen], ". ")
		if cut <= 0 {
			cut = maxLen
		} else {
			cut++ // keep the period
		}
		pieces = append(pieces, strings.TrimSpace(remaining[:cut]))
		remaining = strings.TrimSpace(remaining[cut:])
	}
	if remaining != "" {
		pieces = append(pieces, remaining)
	}
	return pieces
}
