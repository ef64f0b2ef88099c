// README: Itinerary domain model (segments, results, generator events).
package itinerary

import "fmt"

// Segment is one of the three daily time-of-day portions.
type Segment int

const (
	SegmentMorning Segment = iota
	SegmentAfternoon
	SegmentEvening
)

// segmentOrder is the fixed presentation order within a day.
var segmentOrder = []Segment{SegmentMorning, SegmentAfternoon, SegmentEvening}

func (s Segment) String() string {
	switch s {
	case SegmentMorning:
		return "morning"
	case SegmentAfternoon:
		return "afternoon"
	case SegmentEvening:
		return "evening"
	}
	return "unknown"
}

// Label is the user-facing zh-TW name.
func (s Segment) Label() string {
	switch s {
	case SegmentMorning:
		return "上午"
	case SegmentAfternoon:
		return "下午"
	case SegmentEvening:
		return "晚上"
	}
	return "?"
}

// SegmentResult is one generated time-slot of one day. Immutable once
// produced; results are emitted in (day, segment) order even though
// the underlying calls race.
type SegmentResult struct {
	Day     int
	Segment Segment
	// Date is the calendar date for the day when the start date was
	// parseable, otherwise the literal date text the user provided.
	Date string
	Text string
}

// Render formats the result as a user-facing chunk.
func (r SegmentResult) Render() string {
	return fmt.Sprintf("【第 %d 天 %s・%s】\n%s\n\n", r.Day, r.Date, r.Segment.Label(), r.Text)
}

// EventKind discriminates generator output events.
type EventKind int

const (
	// EventProgress is a heartbeat emitted while model calls are in
	// flight so a streaming caller is never left silent.
	EventProgress EventKind = iota
	// EventSegment carries one completed SegmentResult.
	EventSegment
	// EventSummary is the final closing confirmation.
	EventSummary
)

type Event struct {
	Kind   EventKind
	Result *SegmentResult
	Text   string
}

// Request carries the filled trip slots into a generation run.
type Request struct {
	Destination  string
	StartDate    string
	DurationDays int
	Style        string
}
