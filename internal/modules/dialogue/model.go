// README: Dialogue domain model (states, trip slots, sessions).
package dialogue

import (
	"errors"
	"time"
)

// State is the current position of a conversation's trip dialogue.
// Exactly one is current per conversation; idle is both the initial
// and the only resting state.
type State string

const (
	StateIdle                  State = "idle"
	StateCollectingDestination State = "collecting_destination"
	StateCollectingDate        State = "collecting_date"
	StateCollectingDuration    State = "collecting_duration"
	StateCollectingStyle       State = "collecting_style"
	StateGenerating            State = "generating"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrUnknownState = errors.New("unknown dialogue state")
)

// ParseState validates a persisted state name. A name that no longer
// matches a known state is treated as corruption of that single
// session, never as a process-level failure.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateIdle, StateCollectingDestination, StateCollectingDate,
		StateCollectingDuration, StateCollectingStyle, StateGenerating:
		return State(s), nil
	}
	return "", ErrUnknownState
}

// MaxDurationDays bounds accepted trip lengths; anything above is
// rejected at merge time and the duration question re-asked.
const MaxDurationDays = 30

// ValidDuration reports whether n is an acceptable trip length.
func ValidDuration(n int) bool {
	return n >= 1 && n <= MaxDurationDays
}

// TripSlots is the mutable slot record a trip dialogue fills in.
// A slot is filled once non-nil.
type TripSlots struct {
	Destination   *string `json:"destination,omitempty"`
	DepartureDate *string `json:"departure_date,omitempty"`
	DurationDays  *int    `json:"duration_days,omitempty"`
	Style         *string `json:"style,omitempty"`
}

// Merge applies non-nil values from p, last write wins. A nil value in
// p never clears an already-filled slot, and an out-of-range duration
// is dropped here rather than accepted.
func (s *TripSlots) Merge(p TripSlots) {
	if p.Destination != nil && *p.Destination != "" {
		s.Destination = p.Destination
	}
	if p.DepartureDate != nil && *p.DepartureDate != "" {
		s.DepartureDate = p.DepartureDate
	}
	if p.DurationDays != nil && ValidDuration(*p.DurationDays) {
		s.DurationDays = p.DurationDays
	}
	if p.Style != nil && *p.Style != "" {
		s.Style = p.Style
	}
}

// FirstMissing returns the collecting state for the first unfilled
// slot in the fixed priority order destination, date, duration, style.
// ok is false when every slot is filled.
func (s TripSlots) FirstMissing() (state State, ok bool) {
	switch {
	case s.Destination == nil:
		return StateCollectingDestination, true
	case s.DepartureDate == nil:
		return StateCollectingDate, true
	case s.DurationDays == nil:
		return StateCollectingDuration, true
	case s.Style == nil:
		return StateCollectingStyle, true
	}
	return "", false
}

// Complete reports whether all required slots are filled. The machine
// may not enter the generating state otherwise.
func (s TripSlots) Complete() bool {
	_, missing := s.FirstMissing()
	return !missing
}

// Session is the persisted FSM state for one conversation.
// Invariant: at most one session per conversation id.
type Session struct {
	ConversationID string    `json:"conversation_id"`
	State          State     `json:"state"`
	Slots          TripSlots `json:"slots"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ptr[T any](v T) *T { return &v }
