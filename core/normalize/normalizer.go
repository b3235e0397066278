// Package normalize implements the text normalizer used by every
// downstream formatter. It decodes a fixed table of HTML entities,
// strips tags, and collapses Unicode punctuation and whitespace into
// plain ASCII text.
package normalize

import (
	"regexp"
	"strings"
)

// entities is the fixed decode table.
var entities = map[string]string{
	"&amp;":    "&",
	"&lt;":     "<",
	"&gt;":     ">",
	"&quot;":   `"`,
	"&#39;":    "'",
	"&apos;":   "'",
	"&nbsp;":   " ",
	"&ndash;":  "-",
	"&mdash;":  "-",
	"&lsquo;":  "'",
	"&rsquo;":  "'",
	"&ldquo;":  `"`,
	"&rdquo;":  `"`,
	"&hellip;": "...",
	"&trade;":  "(TM)",
	"&reg;":    "(R)",
	"&copy;":   "(C)",
	"&bull;":   "*",
	"&middot;": "*",
}

// unicodeReplacements collapses typographic characters to ASCII.
// Zero-width characters, the BOM, and soft hyphens are dropped
// outright; all written as escapes since most are invisible.
var unicodeReplacements = []struct{ from, to string }{
	{"–", "-"}, {"—", "-"}, {"―", "-"},
	{"‘", "'"}, {"’", "'"},
	{"“", `"`}, {"”", `"`},
	{"…", "..."},
	{"\u00A0", " "},
	{"•", "*"}, {"·", "*"},
	{"\u200B", ""}, {"\u200C", ""}, {"\u200D", ""}, {"\uFEFF", ""},
	{"\u00AD", ""},
}

var (
	tagRe = regexp.MustCompile(`<[^>]*>`)
	// Horizontal whitespace only: newlines carry the heading/list
	// structure the section shaper splits on.
	horizWSRe  = regexp.MustCompile(`[\t\f\r ]+`)
	lineEdgeRe = regexp.MustCompile(`(?m)^ +| +$`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// Normalize cleans raw text pulled from HTML or PDF sources. Line
// breaks are preserved (runs of blank lines collapse to one blank
// line); whitespace is collapsed only within a line.
// It is pure, never fails, and idempotent:
// Normalize(Normalize(s)) == Normalize(s). Empty input yields "".
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := tagRe.ReplaceAllString(raw, " ")

	for ent, repl := range entities {
		s = strings.ReplaceAll(s, ent, repl)
	}

	for _, r := range unicodeReplacements {
		s = strings.ReplaceAll(s, r.from, r.to)
	}

	// Null bytes show up in badly decoded PDF text.
	s = strings.ReplaceAll(s, "\x00", "")

	s = horizWSRe.ReplaceAllString(s, " ")
	s = lineEdgeRe.ReplaceAllString(s, "")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
