package trace

// Options selects which reduction rules the trace filter applies. Each toggle
// controls exactly one removal or transformation rule; toggles are independent
// of each other.
type Options struct {
	// RemoveFrameSnapshots drops full-page DOM snapshot records.
	RemoveFrameSnapshots bool `mapstructure:"remove_frame_snapshots"`

	// RemoveScreencastFrames drops video frame reference records.
	RemoveScreencastFrames bool `mapstructure:"remove_screencast_frames"`

	// FilterConsoleLogs drops info/log console records that carry nothing a
	// debugging session would miss. Errors and warnings are always kept.
	FilterConsoleLogs bool `mapstructure:"filter_console_logs"`

	// RemoveUIElements drops repetitive UI element snapshot records.
	RemoveUIElements bool `mapstructure:"remove_ui_elements"`

	// TruncateStackTraces shortens console records carrying very long stack
	// traces, keeping the head and tail of the trace.
	TruncateStackTraces bool `mapstructure:"truncate_stack_traces"`
}

// Stats reports the outcome of a single filtering run.
//
// Invariants: TotalEntries == KeptEntries + RemovedEntries, and the values of
// RemovedByType sum to RemovedEntries. Sizes are the byte lengths of the
// serialized input and output files.
type Stats struct {
	TotalEntries   int            `json:"totalEntries"`
	KeptEntries    int            `json:"keptEntries"`
	RemovedEntries int            `json:"removedEntries"`
	RemovedByType  map[string]int `json:"removedByType"`
	SizeBefore     int64          `json:"sizeBefore"`
	SizeAfter      int64          `json:"sizeAfter"`
}
