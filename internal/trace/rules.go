package trace

import (
	"strings"

	"github.com/mwhitlock/tracetrim/internal/record"
)

// Removal categories attributed in Stats.RemovedByType.
const (
	CategoryFrameSnapshot   = "frame-snapshot"
	CategoryScreencastFrame = "screencast-frame"
	CategoryConsoleVerbose  = "console-verbose"
	CategoryUIElements      = "ui-elements"
)

// removalRule pairs a removal predicate with the category attributed to
// records it matches.
type removalRule struct {
	category string
	matches  func(record.Record) bool
}

// buildRules assembles the removal chain for the enabled toggles. Order is
// fixed: the first matching rule wins and owns the removal category, so rules
// must never be reordered.
func buildRules(opts Options) []removalRule {
	var rules []removalRule

	if opts.RemoveFrameSnapshots {
		rules = append(rules, removalRule{CategoryFrameSnapshot, func(r record.Record) bool {
			return r.Type() == "frame-snapshot"
		}})
	}
	if opts.RemoveScreencastFrames {
		rules = append(rules, removalRule{CategoryScreencastFrame, func(r record.Record) bool {
			return r.Type() == "screencast-frame"
		}})
	}
	if opts.FilterConsoleLogs {
		rules = append(rules, removalRule{CategoryConsoleVerbose, isVerboseConsole})
	}
	if opts.RemoveUIElements {
		rules = append(rules, removalRule{CategoryUIElements, func(r record.Record) bool {
			switch r.Type() {
			case "button", "checkbox", "input", "text":
				return true
			}
			return false
		}})
	}

	return rules
}

// importantKeywords marks console text worth keeping even at the info/log
// level. Matching is case-insensitive substring containment.
var importantKeywords = []string{
	"error",
	"warning",
	"failed",
	"exception",
	"uncaught",
	"test",
	"assertion",
	"timeout",
	"network",
	"xhr",
	"fetch",
}

// isVerboseConsole reports whether a console record is low-value chatter:
// an info or log message whose text matches none of the importance keywords.
func isVerboseConsole(r record.Record) bool {
	if r.Type() != "console" {
		return false
	}
	switch r.Str("messageType") {
	case "log", "info":
	default:
		return false
	}
	return !isImportantConsoleText(r.Str("text"))
}

func isImportantConsoleText(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range importantKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Stack truncation bounds. Texts shorter than stackTextThreshold or with at
// most stackLineThreshold lines are left alone.
const (
	stackTextThreshold = 5000
	stackLineThreshold = 20
	stackHeadLines     = 10
	stackTailLines     = 5
	stackFramePattern  = "\n    at "
	stackMarker        = "    ... [truncated stack trace] ..."
)

// truncateStackTrace shortens the text of a console record carrying a very
// long stack trace, keeping the first and last frames. All other fields of
// the record are left untouched.
func truncateStackTrace(r record.Record) {
	if r.Type() != "console" {
		return
	}
	text := r.Str("text")
	if len(text) <= stackTextThreshold || !strings.Contains(text, stackFramePattern) {
		return
	}

	lines := strings.Split(text, "\n")
	if len(lines) <= stackLineThreshold {
		return
	}

	kept := make([]string, 0, stackHeadLines+stackTailLines+1)
	kept = append(kept, lines[:stackHeadLines]...)
	kept = append(kept, stackMarker)
	kept = append(kept, lines[len(lines)-stackTailLines:]...)
	r["text"] = strings.Join(kept, "\n")
}
