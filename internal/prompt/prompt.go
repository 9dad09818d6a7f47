// Package prompt builds the LLM messages used by trace analysis.
//
// The prompts assume the trace has already been filtered: DOM snapshots,
// screencast frames, and static-asset noise are gone, so what remains is a
// compact record of test steps, console output, and network exchanges.
package prompt

import (
	"fmt"
	"strings"

	"github.com/mwhitlock/tracetrim/internal/report"
)

// System returns the system-role message for trace analysis.
func System() string {
	return systemPrompt
}

const systemPrompt = `You are an expert at debugging browser-automation test runs. You are given a filtered execution trace: test step boundaries, console output, errors, and network exchanges, with bulk data already removed.

Guidelines:
1. Only reference events present in the provided trace excerpt
2. Distinguish observations ("the trace shows...") from inferences ("this suggests...")
3. Never invent trace records, URLs, or error messages
4. Pay special attention to the last successful step before a failure
5. Correlate console errors with the network exchanges that preceded them
6. Flag timeouts and 4xx/5xx responses explicitly

Your analysis should include:
- Summary: what the test run did and where it went wrong
- Failure Point: the step or event where the run first deviated
- Evidence: the specific console/network records supporting your diagnosis
- Likely Cause: the most plausible explanation, grounded in the evidence
- Next Steps: what to inspect or change to confirm and fix it`

// Digest is the material an analysis prompt is built from: the run statistics
// and a bounded sample of the records that survived filtering.
type Digest struct {
	TracePath string
	Preset    string
	Summary   report.Summary

	// Excerpts are serialized surviving records, most relevant first.
	// The builder truncates them to fit a local model's context.
	Excerpts []string
}

// maxExcerptLen bounds a single serialized record inside the prompt.
const maxExcerptLen = 600

// Build renders the user-role message for a digest.
func Build(d Digest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Filtered trace: %s (preset: %s)\n", d.TracePath, d.Preset)
	fmt.Fprintf(&sb, "Records: %d total, %d kept, %d removed\n",
		d.Summary.Total, d.Summary.Kept, d.Summary.Removed)
	fmt.Fprintf(&sb, "Size: %s -> %s\n\n",
		report.FormatBytes(d.Summary.SizeBefore), report.FormatBytes(d.Summary.SizeAfter))

	sb.WriteString("Surviving records of interest, in input order:\n\n")
	for _, excerpt := range d.Excerpts {
		if len(excerpt) > maxExcerptLen {
			excerpt = excerpt[:maxExcerptLen-3] + "..."
		}
		sb.WriteString(excerpt)
		sb.WriteString("\n")
	}

	sb.WriteString("\nAnalyze this test run and explain what failed and why.")
	return sb.String()
}
