package planlog

import (
	"context"
	"errors"
	"testing"

	"voyago/internal/modules/itinerary"
)

type fakeStore struct {
	created []Record
	err     error
}

func (f *fakeStore) Create(_ context.Context, r *Record) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *r)
	return nil
}

func (f *fakeStore) ListByConversation(_ context.Context, conversationID string, _ int) ([]Record, error) {
	var out []Record
	for i := len(f.created) - 1; i >= 0; i-- {
		if f.created[i].ConversationID == conversationID {
			out = append(out, f.created[i])
		}
	}
	return out, f.err
}

func TestRecordMapsRequestFields(t *testing.T) {
	fs := &fakeStore{}
	svc := newServiceWith(fs)

	req := itinerary.Request{
		Destination:  "台南",
		StartDate:    "2026-03-02",
		DurationDays: 2,
		Style:        "美食",
	}
	if err := svc.Record(context.Background(), "conv-1", req, "【第 1 天 上午・03/02】\n..."); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(fs.created) != 1 {
		t.Fatalf("created %d records, want 1", len(fs.created))
	}
	got := fs.created[0]
	if got.ConversationID != "conv-1" || got.Destination != "台南" ||
		got.DepartureDate != "2026-03-02" || got.DurationDays != 2 || got.Style != "美食" {
		t.Fatalf("record fields: %+v", got)
	}
	if got.Itinerary == "" {
		t.Fatal("itinerary text not stored")
	}
}

func TestRecordPropagatesStoreError(t *testing.T) {
	fs := &fakeStore{err: errors.New("db down")}
	svc := newServiceWith(fs)

	err := svc.Record(context.Background(), "conv-1", itinerary.Request{Destination: "台南"}, "x")
	if err == nil {
		t.Fatal("expected store error to surface")
	}
}

func TestHistoryFiltersByConversation(t *testing.T) {
	fs := &fakeStore{}
	svc := newServiceWith(fs)

	for _, id := range []string{"a", "b", "a"} {
		if err := svc.Record(context.Background(), id, itinerary.Request{Destination: "台南"}, "x"); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := svc.History(context.Background(), "a", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("history length = %d, want 2", len(got))
	}
}
