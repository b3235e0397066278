package format

import (
	"reflect"
	"strings"
	"testing"
)

func TestShape_Steps(t *testing.T) {
	lines := []string{
		"How to redeem points",
		"Step 1: Log in to netbanking",
		"- Open the rewards tab",
		"Step 2: Choose a catalogue item",
		"Confirm with OTP",
	}
	sec := Shape("Redemption", lines)

	if len(sec.Items) != 1 || sec.Items[0] != "How to redeem points" {
		t.Errorf("loose items: %v", sec.Items)
	}
	if len(sec.Groups) != 2 {
		t.Fatalf("groups: got %d, want 2", len(sec.Groups))
	}
	if sec.Groups[0].Title != "Step 1: Log in to netbanking" {
		t.Errorf("group 0 title: %q", sec.Groups[0].Title)
	}
	if !reflect.DeepEqual(sec.Groups[0].Items, []string{"Open the rewards tab"}) {
		t.Errorf("group 0 items: %v", sec.Groups[0].Items)
	}
	if !reflect.DeepEqual(sec.Groups[1].Items, []string{"Confirm with OTP"}) {
		t.Errorf("group 1 items: %v", sec.Groups[1].Items)
	}
}

func TestShape_Rewards(t *testing.T) {
	lines := []string{
		"Dining",
		"- 4 points per Rs. 150",
		"- Weekend bonus 2x",
		"Travel",
		"- 2 points per Rs. 150",
	}
	sec := Shape("Reward Points", lines)

	if len(sec.Groups) != 2 {
		t.Fatalf("groups: got %d, want 2", len(sec.Groups))
	}
	if sec.Groups[0].Title != "Dining" || len(sec.Groups[0].Items) != 2 {
		t.Errorf("dining group: %+v", sec.Groups[0])
	}
	if sec.Groups[1].Title != "Travel" || len(sec.Groups[1].Items) != 1 {
		t.Errorf("travel group: %+v", sec.Groups[1])
	}
}

func TestShape_Standard(t *testing.T) {
	lines := []string{
		"- Complimentary lounge access",
		"Click here",
		"- Complimentary lounge access",
		"* Fuel surcharge waiver",
		"",
		"Know more >",
	}
	sec := Shape("Benefits", lines)

	want := []string{"Complimentary lounge access", "Fuel surcharge waiver"}
	if !reflect.DeepEqual(sec.Items, want) {
		t.Errorf("got %v, want %v", sec.Items, want)
	}
	if len(sec.Groups) != 0 {
		t.Errorf("standard shape should not group: %v", sec.Groups)
	}
}

func TestCleanList_KeepsSubstantiveLinesWithPhrase(t *testing.T) {
	// A long line that happens to contain a boilerplate phrase still
	// carries information and must survive.
	in := []string{"Click here benefits include 5% cashback on groceries and utility bills every month"}
	out := CleanList(in)
	if len(out) != 1 {
		t.Errorf("substantive line dropped: %v", out)
	}
}

func TestWebBlocks_Typed(t *testing.T) {
	text := "## Fees\nAnnual fee Rs. 2500\n- Waived on 3L spend"
	blocks := WebBlocks(text)
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	if blocks[0].Type != BlockHeading || blocks[0].Text != "Fees" {
		t.Errorf("block 0: %+v", blocks[0])
	}
	if blocks[1].Type != BlockParagraph {
		t.Errorf("block 1: %+v", blocks[1])
	}
	if blocks[2].Type != BlockListItem || blocks[2].Text != "Waived on 3L spend" {
		t.Errorf("block 2: %+v", blocks[2])
	}
}

func TestPDFBlocks_SplitsOverlongParagraphs(t *testing.T) {
	sentence := "This clause describes the applicable finance charges in detail. "
	long := strings.Repeat(sentence, 20) // ~1280 chars
	blocks := PDFBlocks(long)

	if len(blocks) < 2 {
		t.Fatalf("expected split, got %d block(s)", len(blocks))
	}
	for i, b := range blocks {
		if b.Type != BlockParagraph {
			t.Errorf("block %d type: %s", i, b.Type)
		}
		if len(b.Text) > maxPDFParagraph {
			t.Errorf("block %d still overlong: %d chars", i, len(b.Text))
		}
	}
}

func TestSplitSentences_HardSplit(t *testing.T) {
	// No sentence boundary at all: must still terminate and bound size.
	s := strings.Repeat("x", 1000)
	pieces := SplitSentences(s, 400)
	if len(pieces) != 3 {
		t.Errorf("got %d pieces", len(pieces))
	}
	total := 0
	for _, p := range pieces {
		total += len(p)
	}
	if total != 1000 {
		t.Errorf("lost characters: %d", total)
	}
}
