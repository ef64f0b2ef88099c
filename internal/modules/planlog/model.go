// README: Plan archive records (one row per generated itinerary).
package planlog

import "time"

// Record is one archived itinerary. Itinerary holds the full rendered
// text exactly as it was streamed to the user.
type Record struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Destination    string    `json:"destination"`
	DepartureDate  string    `json:"departure_date"`
	DurationDays   int       `json:"duration_days"`
	Style          string    `json:"style"`
	Itinerary      string    `json:"itinerary"`
	CreatedAt      time.Time `json:"created_at"`
}
