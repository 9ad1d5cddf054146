package watcher

import "go.uber.org/zap"

// TrackerBuilderOption is a functional option for configuring a Tracker.
type TrackerBuilderOption func(t *tracker)

// WithStatFunc replaces the metadata query used by Watch and Poll.
//
// Parameters:
//   - stat: the query function, ignored when nil
//
// Returns:
//   - TrackerBuilderOption: option function to apply
func WithStatFunc(stat StatFunc) TrackerBuilderOption {
	return func(t *tracker) {
		if stat != nil {
			t.stat = stat
		}
	}
}

// WithLogger sets the logger that reports unreadable paths and detected changes.
//
// Parameters:
//   - log: the logger, ignored when nil
//
// Returns:
//   - TrackerBuilderOption: option function to apply
func WithLogger(log *zap.Logger) TrackerBuilderOption {
	return func(t *tracker) {
		if log != nil {
			t.log = log
		}
	}
}
