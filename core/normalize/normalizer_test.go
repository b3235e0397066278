package normalize

import (
	"strings"
	"testing"
)

func TestNormalize_DecodesEntities(t *testing.T) {
	got := Normalize("Cashback &amp; Rewards &ndash; 5% on dining")
	want := "Cashback & Rewards - 5% on dining"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize_StripsTags(t *testing.T) {
	got := Normalize("<p>Annual fee <b>waived</b> first year</p>")
	if strings.Contains(got, "<") || strings.Contains(got, ">") {
		t.Errorf("tags not stripped: %q", got)
	}
	if !strings.Contains(got, "Annual fee waived first year") {
		t.Errorf("content lost: %q", got)
	}
}

func TestNormalize_CollapsesUnicodePunctuation(t *testing.T) {
	got := Normalize("“Premium” card — it’s 2X points…")
	want := `"Premium" card - it's 2X points...`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize_RemovesZeroWidthAndNulls(t *testing.T) {
	got := Normalize("Pla​tinum\x00 Card")
	if got != "Platinum Card" {
		t.Errorf("got %q", got)
	}
	got = Normalize("\uFEFFAnnual\u00AD fee")
	if got != "Annual fee" {
		t.Errorf("BOM/soft hyphen not dropped: %q", got)
	}
}

func TestNormalize_CollapsesWhitespaceWithinLines(t *testing.T) {
	got := Normalize("  lounge\t\taccess \n\n\n\n 4  visits  ")
	if got != "lounge access\n\n4 visits" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_PreservesMarkdownStructure(t *testing.T) {
	// Headings and bullets survive so the section shaper can still
	// split on line boundaries downstream.
	in := "## Fees\nAnnual  fee Rs. 2500\n- Waived on 3L spend"
	want := "## Fees\nAnnual fee Rs. 2500\n- Waived on 3L spend"
	if got := Normalize(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize_Total(t *testing.T) {
	cases := []string{"", " ", "\x00", "&amp;", "<>", strings.Repeat("a", 100000)}
	for _, c := range cases {
		// Must not panic, and empty-ish input must come out empty.
		_ = Normalize(c)
	}
	if Normalize("") != "" {
		t.Error("empty input must yield empty output")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	cases := []string{
		"",
		"plain text",
		"&amp;&lt;&gt;&nbsp;",
		"<div>“quoted” — dashed</div>",
		"  spaced ​ out  ",
		"&ldquo;Rewards&rdquo; &bull; 10X &hellip;",
		"## Heading\n\n\n- item one \n- item two",
	}
	for _, c := range cases {
		once := Normalize(c)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", c, once, twice)
		}
	}
}
