package media

import (
	"strings"
	"testing"
)

func TestBuildFilterGraph(t *testing.T) {
	filter := buildFilterGraph(1080, 1920, "/tmp/captions.ass", StyleOverride{FontSize: 96, Alignment: 2, VerticalMargin: 320})

	want := "scale=1080:1920:force_original_aspect_ratio=decrease," +
		"pad=1080:1920:(ow-iw)/2:(oh-ih)/2:color=black," +
		`subtitles='/tmp/captions.ass':force_style='FontSize=96,Alignment=2,MarginV=320'`
	if filter != want {
		t.Fatalf("filter = %q, want %q", filter, want)
	}
}

func TestBuildFilterGraphWithoutStyle(t *testing.T) {
	filter := buildFilterGraph(1080, 1920, "/tmp/captions.ass", StyleOverride{})
	if strings.Contains(filter, "force_style") {
		t.Fatalf("expected no force_style for zero override, got %q", filter)
	}
}

func TestEscapeFilterPath(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"/tmp/captions.ass", "/tmp/captions.ass"},
		{`C:\media\captions.ass`, `C\:\\media\\captions.ass`},
		{"/tmp/it's.ass", `/tmp/it\'s.ass`},
	}
	for _, tc := range cases {
		if got := escapeFilterPath(tc.input); got != tc.want {
			t.Errorf("escapeFilterPath(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
