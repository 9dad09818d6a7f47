package prompt

import (
	"strings"
	"testing"

	"github.com/mwhitlock/tracetrim/internal/report"
)

func TestBuild(t *testing.T) {
	d := Digest{
		TracePath: "/logs/run_filtered.trace",
		Preset:    "minimal",
		Summary: report.Summary{
			Subject: "entries",
			Total:   100, Kept: 40, Removed: 60,
			SizeBefore: 2048, SizeAfter: 512,
		},
		Excerpts: []string{
			`{"type":"console","messageType":"error","text":"Uncaught TypeError"}`,
			`{"type":"action","apiName":"page.click"}`,
		},
	}

	got := Build(d)

	for _, want := range []string{
		"Filtered trace: /logs/run_filtered.trace (preset: minimal)",
		"Records: 100 total, 40 kept, 60 removed",
		"Size: 2.0 KB -> 512.0 B",
		"Uncaught TypeError",
		"page.click",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestBuildTruncatesLongExcerpts(t *testing.T) {
	long := strings.Repeat("x", 2*maxExcerptLen)
	got := Build(Digest{Excerpts: []string{long}})

	if strings.Contains(got, long) {
		t.Fatalf("oversized excerpt not truncated")
	}
	if !strings.Contains(got, strings.Repeat("x", maxExcerptLen-3)+"...") {
		t.Errorf("truncation marker missing")
	}
}

func TestSystemPromptShape(t *testing.T) {
	sys := System()
	for _, want := range []string{"browser-automation", "Failure Point", "Never invent"} {
		if !strings.Contains(sys, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}
