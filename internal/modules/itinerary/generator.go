// README: Parallel per-day itinerary generation with ordered output and heartbeats.
package itinerary

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"voyago/internal/ai"
	"voyago/internal/maps"
)

const (
	// placeholderText replaces a segment whose model call failed;
	// the remaining segments still complete.
	placeholderText = "（此時段規劃失敗，請稍後再試）"

	defaultHeartbeat   = 800 * time.Millisecond
	defaultTemperature = 0.7
	attractionLimit    = 3
)

// WeatherLookup supplies a one-line weather hint for a place and date.
// Failures degrade the prompt, never the flow.
type WeatherLookup interface {
	Lookup(ctx context.Context, place, date string) (string, error)
}

// AttractionLookup supplies well-known sights near the destination.
type AttractionLookup interface {
	TopAttractions(ctx context.Context, destination string, limit int) ([]maps.Attraction, error)
}

// Generator fans out one model call per day per time segment. Days are
// processed one at a time; the three segments of a day run in
// parallel and are buffered until the whole day completes, so output
// order is (day ascending, morning→afternoon→evening) regardless of
// which call finishes first.
type Generator struct {
	llm         ai.Completer
	weather     WeatherLookup
	attractions AttractionLookup

	heartbeat   time.Duration
	temperature float32
}

// NewGenerator creates a Generator. weather and attractions may be nil;
// the corresponding hints are then omitted.
func NewGenerator(llm ai.Completer, weather WeatherLookup, attractions AttractionLookup) *Generator {
	return &Generator{
		llm:         llm,
		weather:     weather,
		attractions: attractions,
		heartbeat:   defaultHeartbeat,
		temperature: defaultTemperature,
	}
}

// Generate produces the ordered event stream for one trip. The channel
// is closed after the summary event, or early if ctx is cancelled.
func (g *Generator) Generate(ctx context.Context, req Request) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		g.run(ctx, req, out)
	}()
	return out
}

func (g *Generator) run(ctx context.Context, req Request, out chan<- Event) {
	attractionHint := g.attractionHint(ctx, req.Destination)
	start, hasStart := parseStartDate(req.StartDate)

	for day := 1; day <= req.DurationDays; day++ {
		dateText := req.StartDate
		isoDate := ""
		if hasStart {
			d := start.AddDate(0, 0, day-1)
			dateText = d.Format("01/02")
			isoDate = d.Format("2006-01-02")
		}

		weatherHint := g.weatherHint(ctx, req.Destination, isoDate)

		results := make([]string, len(segmentOrder))
		var wg sync.WaitGroup
		for i, seg := range segmentOrder {
			wg.Add(1)
			go func(i int, seg Segment) {
				defer wg.Done()
				prompt := buildSegmentPrompt(req, day, dateText, seg, weatherHint, attractionHint)
				text, err := ai.CompleteWithFallback(ctx, g.llm, prompt, g.temperature)
				if err != nil || strings.TrimSpace(text) == "" {
					if err != nil {
						log.Printf("itinerary: day %d %s generation failed: %v", day, seg, err)
					}
					text = placeholderText
				}
				results[i] = text
			}(i, seg)
		}

		if !g.waitWithHeartbeat(ctx, &wg, out) {
			return
		}

		for i, seg := range segmentOrder {
			ev := Event{Kind: EventSegment, Result: &SegmentResult{
				Day:     day,
				Segment: seg,
				Date:    dateText,
				Text:    results[i],
			}}
			if !emit(ctx, out, ev) {
				return
			}
		}
	}

	emit(ctx, out, Event{Kind: EventSummary, Text: "✅ 行程規劃完成！祝您旅途愉快 🧳"})
}

// waitWithHeartbeat blocks until the day's calls finish, emitting a
// progress event on every tick. Returns false when ctx ended first.
func (g *Generator) waitWithHeartbeat(ctx context.Context, wg *sync.WaitGroup, out chan<- Event) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	ticker := time.NewTicker(g.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return true
		case <-ticker.C:
			if !emit(ctx, out, Event{Kind: EventProgress, Text: "⏳ 規劃中...\n"}) {
				return false
			}
		case <-ctx.Done():
			return false
		}
	}
}

func emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (g *Generator) weatherHint(ctx context.Context, destination, isoDate string) string {
	if g.weather == nil {
		return ""
	}
	date := isoDate
	if date == "" {
		date = "today"
	}
	hint, err := g.weather.Lookup(ctx, destination, date)
	if err != nil {
		log.Printf("itinerary: weather hint unavailable: %v", err)
		return ""
	}
	return hint
}

func (g *Generator) attractionHint(ctx context.Context, destination string) string {
	if g.attractions == nil {
		return ""
	}
	sights, err := g.attractions.TopAttractions(ctx, destination, attractionLimit)
	if err != nil {
		log.Printf("itinerary: attraction hint unavailable: %v", err)
		return ""
	}
	return maps.HintLine(sights)
}

func buildSegmentPrompt(req Request, day int, dateText string, seg Segment, weatherHint, attractionHint string) string {
	var focus string
	switch seg {
	case SegmentMorning:
		focus = "上午行程（景點與活動安排）"
	case SegmentAfternoon:
		focus = "下午行程，並包含午餐的餐廳建議"
	case SegmentEvening:
		focus = "晚上行程，並包含晚餐或夜生活的建議"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "請扮演專業導遊，為去 %s 旅遊的第 %d 天（%s）規劃%s。\n", req.Destination, day, dateText, focus)
	b.WriteString("【旅遊參數】\n")
	if req.Style != "" {
		fmt.Fprintf(&b, "- 風格：%s\n", req.Style)
	}
	if weatherHint != "" {
		fmt.Fprintf(&b, "- 當地天氣參考：%s\n", weatherHint)
	}
	if attractionHint != "" {
		fmt.Fprintf(&b, "- %s\n", attractionHint)
	}
	b.WriteString("【回答要求】\n")
	b.WriteString("1. 請用繁體中文回答，控制在 150 字以內。\n")
	b.WriteString("2. 需包含時間節點、地點名稱、推薦活動。\n")
	b.WriteString("3. 如果天氣不佳，請優先安排室內備案。")
	return b.String()
}

// parseStartDate accepts the common date forms the extractor lets
// through; anything else keeps the literal text per day.
func parseStartDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006/01/02", "2006/1/2", "2006年01月02日", "2006年1月2日"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
