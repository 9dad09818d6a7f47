// Package preset defines the named filter option bundles callers select
// instead of hand-assembling toggles.
//
// The trace and network registries are independent tables that happen to
// share the same three names. In both, minimal enables every reduction,
// conservative enables only the least destructive ones, and moderate is an
// intermediate point. Presets are pure data; adding one is a registry edit.
package preset

import (
	"errors"
	"fmt"

	"github.com/mwhitlock/tracetrim/internal/network"
	"github.com/mwhitlock/tracetrim/internal/trace"
)

// ErrUnknownPreset is returned when a preset name does not resolve. It is
// surfaced before any file I/O begins.
var ErrUnknownPreset = errors.New("unknown filter preset")

const (
	Conservative = "conservative"
	Moderate     = "moderate"
	Minimal      = "minimal"
)

// Default is the preset used when the caller does not pick one.
const Default = Minimal

// tracePresets maps preset names to trace filter option bundles.
var tracePresets = map[string]trace.Options{
	Minimal: {
		RemoveFrameSnapshots:   true,
		RemoveScreencastFrames: true,
		FilterConsoleLogs:      true,
		RemoveUIElements:       true,
		TruncateStackTraces:    true,
	},
	Moderate: {
		RemoveFrameSnapshots:   true,
		RemoveScreencastFrames: true,
		RemoveUIElements:       true,
		TruncateStackTraces:    true,
	},
	Conservative: {
		RemoveFrameSnapshots: true,
		TruncateStackTraces:  true,
	},
}

// networkPresets maps preset names to network filter option bundles.
// Moderate removes everything minimal does except large uploads, and keeps
// response bodies and cookies intact.
var networkPresets = map[string]network.Options{
	Minimal: {
		RemoveAnalytics:         true,
		RemoveCloudAnalytics:    true,
		RemoveMapsAPI:           true,
		RemoveBlobURLs:          true,
		RemoveLargeUploads:      true,
		RemoveStaticAssets:      true,
		RemoveThirdPartyWidgets: true,
		FilterHeaders:           true,
		StripTimings:            true,
		TruncateResponseBodies:  true,
		SimplifyVerboseFields:   true,
		RemoveHTTPMetadata:      true,
		SimplifyCookies:         true,
		RemoveContentHashes:     true,
		ReducePrecision:         true,
	},
	Moderate: {
		RemoveAnalytics:         true,
		RemoveCloudAnalytics:    true,
		RemoveMapsAPI:           true,
		RemoveBlobURLs:          true,
		RemoveStaticAssets:      true,
		RemoveThirdPartyWidgets: true,
		FilterHeaders:           true,
		StripTimings:            true,
		SimplifyVerboseFields:   true,
		RemoveHTTPMetadata:      true,
		RemoveContentHashes:     true,
		ReducePrecision:         true,
	},
	Conservative: {
		RemoveAnalytics: true,
		FilterHeaders:   true,
	},
}

// Trace resolves a trace filter preset by name.
func Trace(name string) (trace.Options, error) {
	opts, ok := tracePresets[name]
	if !ok {
		return trace.Options{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return opts, nil
}

// Network resolves a network filter preset by name.
func Network(name string) (network.Options, error) {
	opts, ok := networkPresets[name]
	if !ok {
		return network.Options{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return opts, nil
}

// Names lists the registered preset names from most to least conservative.
func Names() []string {
	return []string{Conservative, Moderate, Minimal}
}
