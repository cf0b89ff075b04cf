package pipeline

import (
	"fmt"

	"video-embed-pipeline/internal/domain"
)

// PhaseState tracks which pipeline phases have executed. Transitions are
// monotonic; there is no way back.
type PhaseState int

const (
	// NotStarted means neither phase has run.
	NotStarted PhaseState = iota
	// ResolutionDone means the resolution phase ran and the table may hold
	// fresh records.
	ResolutionDone
	// Both means the aggregation phase ran after resolution and per-document
	// metadata is available.
	Both
)

func (s PhaseState) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case ResolutionDone:
		return "resolution-done"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("PhaseState(%d)", int(s))
	}
}

// markResolved records that the resolution phase ran. It runs exactly once
// per session.
func (s *PhaseState) markResolved() error {
	if *s != NotStarted {
		return fmt.Errorf("%w: resolution phase already ran (state %s)", domain.ErrPhaseOrder, *s)
	}
	*s = ResolutionDone

	return nil
}

// markAggregated records that the aggregation phase ran. It requires the
// resolution phase first: aggregating over an unpopulated table is
// meaningless.
func (s *PhaseState) markAggregated() error {
	switch *s {
	case ResolutionDone:
		*s = Both
		return nil
	case NotStarted:
		return fmt.Errorf("%w: aggregation phase requires the resolution phase to run first", domain.ErrPhaseOrder)
	default:
		return fmt.Errorf("%w: aggregation phase already ran", domain.ErrPhaseOrder)
	}
}
