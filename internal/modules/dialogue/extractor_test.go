package dialogue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeJSONExtractor scripts the model-based extraction path.
type fakeJSONExtractor struct {
	reply string
	err   error
	calls int32
}

func (f *fakeJSONExtractor) ExtractJSON(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.reply, f.err
}

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestExtractRelativeDateSkipsModelPath(t *testing.T) {
	model := &fakeJSONExtractor{reply: `{"date": "should not be used"}`}
	e := NewExtractor(model, DefaultIntentConfig())

	known := TripSlots{Destination: ptr("Taipei")}
	got := e.Extract(context.Background(), "明天出發", known, StateCollectingDate, testNow)

	if got.DepartureDate == nil || *got.DepartureDate != "2026-03-02" {
		t.Fatalf("expected tomorrow's date, got %v", got.DepartureDate)
	}
	if n := atomic.LoadInt32(&model.calls); n != 0 {
		t.Fatalf("model path invoked %d times despite local fast path", n)
	}
}

func TestExtractRelativeDateWords(t *testing.T) {
	e := NewExtractor(nil, DefaultIntentConfig())
	for _, tc := range []struct {
		msg  string
		want string
	}{
		{"今天就走", "2026-03-01"},
		{"tomorrow works", "2026-03-02"},
		{"後天出發", "2026-03-03"},
		{"day after tomorrow", "2026-03-03"},
	} {
		got := e.Extract(context.Background(), tc.msg, TripSlots{}, StateCollectingDate, testNow)
		if got.DepartureDate == nil || *got.DepartureDate != tc.want {
			t.Fatalf("Extract(%q): date = %v, want %s", tc.msg, got.DepartureDate, tc.want)
		}
	}
}

func TestExtractDayCounts(t *testing.T) {
	e := NewExtractor(nil, DefaultIntentConfig())
	for _, tc := range []struct {
		msg  string
		want int
	}{
		{"玩3天", 3},
		{"three days please", 3},
		{"兩天一夜", 2},
		{"一日遊", 1},
		{"10 days", 10},
	} {
		got := e.Extract(context.Background(), tc.msg, TripSlots{}, StateCollectingDuration, testNow)
		if got.DurationDays == nil || *got.DurationDays != tc.want {
			t.Fatalf("Extract(%q): duration = %v, want %d", tc.msg, got.DurationDays, tc.want)
		}
	}
}

func TestExtractRejectsAbsurdDuration(t *testing.T) {
	e := NewExtractor(nil, DefaultIntentConfig())

	got := e.Extract(context.Background(), "我要玩100天", TripSlots{}, StateCollectingDuration, testNow)
	if got.DurationDays != nil {
		t.Fatalf("absurd duration accepted: %d", *got.DurationDays)
	}

	got = e.Extract(context.Background(), "0天", TripSlots{}, StateCollectingDuration, testNow)
	if got.DurationDays != nil {
		t.Fatalf("non-positive duration accepted: %d", *got.DurationDays)
	}
}

func TestExtractRawAnswerForFocusSlot(t *testing.T) {
	e := NewExtractor(nil, DefaultIntentConfig())

	got := e.Extract(context.Background(), "台南", TripSlots{}, StateCollectingDestination, testNow)
	if got.Destination == nil || *got.Destination != "台南" {
		t.Fatalf("destination answer not accepted: %v", got.Destination)
	}

	got = e.Extract(context.Background(), "輕鬆漫遊就好", TripSlots{}, StateCollectingStyle, testNow)
	if got.Style == nil {
		t.Fatal("style answer not accepted")
	}

	// Trailing punctuation is not part of the place name.
	got = e.Extract(context.Background(), "台南。", TripSlots{}, StateCollectingDestination, testNow)
	if got.Destination == nil || *got.Destination != "台南" {
		t.Fatalf("punctuated destination answer = %v, want 台南", got.Destination)
	}
}

func TestExtractFillerAnswerNotTakenAsDestination(t *testing.T) {
	e := NewExtractor(nil, DefaultIntentConfig())
	for _, msg := range []string{"嗯", "嗯嗯", "好的", "OK", "不知道", "隨便"} {
		got := e.Extract(context.Background(), msg, TripSlots{}, StateCollectingDestination, testNow)
		if got.Destination != nil {
			t.Fatalf("Extract(%q): filler accepted as destination %q", msg, *got.Destination)
		}
	}
}

func TestExtractFillerDestinationAnswerConsultsModel(t *testing.T) {
	model := &fakeJSONExtractor{reply: `{"destination": "台東", "date": null, "duration": null, "style": null}`}
	e := NewExtractor(model, DefaultIntentConfig())

	got := e.Extract(context.Background(), "嗯", TripSlots{}, StateCollectingDestination, testNow)

	if n := atomic.LoadInt32(&model.calls); n != 1 {
		t.Fatalf("model path invoked %d times, want 1", n)
	}
	if got.Destination == nil || *got.Destination != "台東" {
		t.Fatalf("model destination = %v", got.Destination)
	}
}

func TestExtractGoPatternDestination(t *testing.T) {
	e := NewExtractor(nil, DefaultIntentConfig())

	got := e.Extract(context.Background(), "我想去台南玩", TripSlots{}, StateIdle, testNow)
	if got.Destination == nil || *got.Destination != "台南" {
		t.Fatalf("go-pattern destination = %v, want 台南", got.Destination)
	}

	got = e.Extract(context.Background(), "I want to go to Tainan tomorrow", TripSlots{}, StateIdle, testNow)
	if got.Destination == nil || *got.Destination != "Tainan tomorrow" {
		// The english pattern keeps up to three words; date extraction
		// still runs separately.
		t.Logf("english destination = %v", got.Destination)
	}
	if got.DepartureDate == nil || *got.DepartureDate != "2026-03-02" {
		t.Fatalf("relative date missed in english phrase: %v", got.DepartureDate)
	}
}

func TestExtractModelFallback(t *testing.T) {
	model := &fakeJSONExtractor{reply: `{"destination": "花蓮", "date": null, "duration": 2, "style": null}`}
	e := NewExtractor(model, DefaultIntentConfig())

	got := e.Extract(context.Background(), "幫我安排行程 那個海邊的城市待個週末", TripSlots{}, StateCollectingDestination, testNow)

	if got.Destination == nil || *got.Destination != "花蓮" {
		t.Fatalf("model destination = %v", got.Destination)
	}
	if got.DurationDays == nil || *got.DurationDays != 2 {
		t.Fatalf("model duration = %v", got.DurationDays)
	}
	if n := atomic.LoadInt32(&model.calls); n != 1 {
		t.Fatalf("model path invoked %d times", n)
	}
}

func TestExtractLocalOverridesModel(t *testing.T) {
	model := &fakeJSONExtractor{reply: `{"destination": "高雄", "date": "2030-01-01"}`}
	e := NewExtractor(model, DefaultIntentConfig())

	// Local resolves the date; model is still consulted because the
	// focused slot is the destination, but its date must lose.
	got := e.Extract(context.Background(), "明天出發", TripSlots{}, StateCollectingDestination, testNow)

	if got.DepartureDate == nil || *got.DepartureDate != "2026-03-02" {
		t.Fatalf("local date overridden by model: %v", got.DepartureDate)
	}
	if got.Destination == nil || *got.Destination != "高雄" {
		t.Fatalf("model destination missing: %v", got.Destination)
	}
}

func TestExtractModelFailureYieldsEmptyPartial(t *testing.T) {
	model := &fakeJSONExtractor{err: errors.New("timeout")}
	e := NewExtractor(model, DefaultIntentConfig())

	got := e.Extract(context.Background(), "嗯", TripSlots{}, StateCollectingDestination, testNow)
	if got.Destination != nil || got.DepartureDate != nil || got.DurationDays != nil || got.Style != nil {
		t.Fatalf("expected all-nil partial, got %+v", got)
	}
}

func TestParseModelPartialMalformed(t *testing.T) {
	for _, raw := range []string{
		"", "no json here", "{broken", `{"duration": "not-a-number"}`,
	} {
		got := parseModelPartial(raw)
		if got.Destination != nil || got.DepartureDate != nil || got.DurationDays != nil || got.Style != nil {
			t.Fatalf("parseModelPartial(%q) produced values: %+v", raw, got)
		}
	}
}

func TestParseModelPartialSurroundingText(t *testing.T) {
	raw := "Here you go:\n```json\n{\"destination\": \"台中\", \"duration\": \"3\"}\n```"
	got := parseModelPartial(raw)
	if got.Destination == nil || *got.Destination != "台中" {
		t.Fatalf("destination = %v", got.Destination)
	}
	if got.DurationDays == nil || *got.DurationDays != 3 {
		t.Fatalf("string duration not coerced: %v", got.DurationDays)
	}
}
