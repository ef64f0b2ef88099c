// README: Plan archive service (maps finished itineraries onto Records).
package planlog

import (
	"context"

	"voyago/internal/modules/itinerary"
)

// recordStore is the slice of Store the service needs; tests swap in a
// fake.
type recordStore interface {
	Create(ctx context.Context, r *Record) error
	ListByConversation(ctx context.Context, conversationID string, limit int) ([]Record, error)
}

type Service struct {
	store recordStore
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func newServiceWith(store recordStore) *Service {
	return &Service{store: store}
}

// Record archives one generated itinerary under its conversation.
func (s *Service) Record(ctx context.Context, conversationID string, req itinerary.Request, text string) error {
	return s.store.Create(ctx, &Record{
		ConversationID: conversationID,
		Destination:    req.Destination,
		DepartureDate:  req.StartDate,
		DurationDays:   req.DurationDays,
		Style:          req.Style,
		Itinerary:      text,
	})
}

// History returns the archived plans for one conversation, newest
// first.
func (s *Service) History(ctx context.Context, conversationID string, limit int) ([]Record, error) {
	return s.store.ListByConversation(ctx, conversationID, limit)
}
