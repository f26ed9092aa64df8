package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	// DefaultActor identifies runs that were not triggered by a person.
	DefaultActor = "system-automation"

	// Disclaimer accompanies every published analysis.
	Disclaimer = "Probabilities are derived from historical catalog frequencies under a homogeneous Poisson assumption. They are statistical summaries, not earthquake predictions."
)

// RunStatus is the outcome recorded in the run history.
type RunStatus string

const (
	RunSuccess RunStatus = "SUCCESS"
	RunFailed  RunStatus = "FAILED"
)

// RunContext carries the identity, clock and disclaimer for one pipeline run.
type RunContext struct {
	Actor      string
	Disclaimer string
	Clock      clockwork.Clock
}

// NewRunContext returns a run context with defaults applied to empty fields.
func NewRunContext(actor string, clock clockwork.Clock) RunContext {
	if actor == "" {
		actor = DefaultActor
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return RunContext{Actor: actor, Disclaimer: Disclaimer, Clock: clock}
}

// Now reads the run clock, falling back to wall time when none is set.
func (rc RunContext) Now() time.Time {
	if rc.Clock == nil {
		return time.Now()
	}
	return rc.Clock.Now()
}

// Report is the "latest" analysis document.
type Report struct {
	UpdatedAt     time.Time      `json:"updated_at"`
	TriggeredBy   string         `json:"triggered_by"`
	Disclaimer    string         `json:"disclaimer"`
	TotalEvents   int            `json:"total_events"`
	WindowYears   float64        `json:"window_years"`
	Probabilities AnalysisResult `json:"probabilities"`
}

// RunRecord is one append-only run-history entry. EventCount is set on
// success and Error on failure.
type RunRecord struct {
	ID          string    `json:"id"`
	Status      RunStatus `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	TriggeredBy string    `json:"triggered_by"`
	EventCount  *int      `json:"event_count,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Assemble wraps an analysis result with run metadata.
func Assemble(result AnalysisResult, totalEvents int, windowYears float64, rc RunContext, at time.Time) Report {
	return Report{
		UpdatedAt:     at,
		TriggeredBy:   rc.Actor,
		Disclaimer:    rc.Disclaimer,
		TotalEvents:   totalEvents,
		WindowYears:   windowYears,
		Probabilities: result,
	}
}

// NewSuccessRecord builds the history entry for a completed run.
func NewSuccessRecord(rc RunContext, eventCount int) RunRecord {
	return RunRecord{
		ID:          uuid.NewString(),
		Status:      RunSuccess,
		Timestamp:   rc.Now(),
		TriggeredBy: rc.Actor,
		EventCount:  &eventCount,
	}
}

// NewFailureRecord builds the history entry for a failed run.
func NewFailureRecord(rc RunContext, err error) RunRecord {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return RunRecord{
		ID:          uuid.NewString(),
		Status:      RunFailed,
		Timestamp:   rc.Now(),
		TriggeredBy: rc.Actor,
		Error:       msg,
	}
}
