// README: Plan archive store backed by PostgreSQL (minimal methods for MVP).
package planlog

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts one archived plan. CreatedAt is set here so callers
// never have to.
func (s *Store) Create(ctx context.Context, r *Record) error {
	r.CreatedAt = time.Now().UTC()
	_, err := s.db.Exec(ctx, `
		INSERT INTO plan_log (
			conversation_id, destination, departure_date,
			duration_days, style, itinerary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ConversationID,
		r.Destination,
		r.DepartureDate,
		r.DurationDays,
		r.Style,
		r.Itinerary,
		r.CreatedAt,
	)
	return err
}

// ListByConversation returns the archived plans for one conversation,
// newest first.
func (s *Store) ListByConversation(ctx context.Context, conversationID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, conversation_id, destination, departure_date,
		       duration_days, style, itinerary, created_at
		FROM plan_log
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, conversationID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID, &r.ConversationID, &r.Destination, &r.DepartureDate,
			&r.DurationDays, &r.Style, &r.Itinerary, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
