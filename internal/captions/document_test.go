package captions_test

import (
	"strings"
	"testing"

	"lyrico/internal/captions"
)

func TestGenerateDocumentStructure(t *testing.T) {
	segments := []captions.Segment{{Line: "hello world"}, {Line: "goodbye"}}
	doc := captions.Generate(segments, 3.0)

	for _, section := range []string{"[Script Info]", "[V4+ Styles]", "[Events]"} {
		if got := strings.Count(doc, section); got != 1 {
			t.Fatalf("expected exactly one %s section, got %d", section, got)
		}
	}
	if got := strings.Count(doc, "Style: "); got != 1 {
		t.Fatalf("expected exactly one Style line, got %d", got)
	}
	if got := strings.Count(doc, "Dialogue: "); got != len(segments) {
		t.Fatalf("expected %d Dialogue lines, got %d", len(segments), got)
	}
}

func TestGenerateEndToEndExample(t *testing.T) {
	// Three words over three seconds: each word holds 100 centiseconds,
	// segment one spans [0, 2), segment two spans [2, 3).
	doc := captions.Generate([]captions.Segment{{Line: "hello world"}, {Line: "goodbye"}}, 3.0)

	want := []string{
		`Dialogue: 0,0:00:00.00,0:00:02.00,Karaoke,,0,0,0,,{\k100}hello {\k100}world`,
		`Dialogue: 0,0:00:02.00,0:00:03.00,Karaoke,,0,0,0,,{\k100}goodbye`,
	}
	for _, line := range want {
		if !strings.Contains(doc, line+"\n") {
			t.Fatalf("document missing expected line %q\n%s", line, doc)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	segments := []captions.Segment{
		{Line: "never gonna give you up"},
		{Line: "never gonna let you down"},
	}
	first := captions.Generate(segments, 4.4)
	second := captions.Generate(segments, 4.4)
	if first != second {
		t.Fatal("identical inputs must yield byte-identical documents")
	}
}

func TestGenerateEmptyTranscript(t *testing.T) {
	doc := captions.Generate(nil, 10.0)
	if strings.Contains(doc, "Dialogue:") {
		t.Fatalf("empty transcript should produce no Dialogue lines:\n%s", doc)
	}
	if !strings.HasPrefix(doc, "[Script Info]") {
		t.Fatal("document must begin with the Script Info section")
	}
}

func TestGenerateZeroWordEventsSitAtZero(t *testing.T) {
	doc := captions.Generate([]captions.Segment{{Line: " "}, {Line: ""}}, 6.0)
	if got := strings.Count(doc, "Dialogue: 0,0:00:00.00,0:00:00.00,Karaoke,,0,0,0,,"); got != 2 {
		t.Fatalf("expected 2 zero-duration Dialogue lines, got %d\n%s", got, doc)
	}
}
