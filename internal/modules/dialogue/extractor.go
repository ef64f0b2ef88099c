// README: Two-tier slot extraction: deterministic local rules, then a model JSON call.
package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"voyago/internal/ai"
)

// DefaultStyleKeywords recognize an explicit style mention in any turn.
var DefaultStyleKeywords = []string{
	"美食", "古蹟", "文化", "自然", "戶外", "購物", "放鬆", "漫遊", "親子", "冒險",
	"foodie", "culture", "nature", "outdoor", "shopping", "relax",
}

// relativeDates maps relative-date words to day offsets from the
// caller's current date. Longer phrases first so "day after tomorrow"
// is not swallowed by "tomorrow".
var relativeDates = []struct {
	word   string
	offset int
}{
	{"day after tomorrow", 2},
	{"後天", 2},
	{"tomorrow", 1},
	{"明天", 1},
	{"today", 0},
	{"今天", 0},
}

var durationPattern = regexp.MustCompile(
	`(?i)([0-9]+|[一兩二三四五六七八九十]|one|two|three|four|five|six|seven|eight|nine|ten)\s*(天|日遊|days?)`)

var wordNumbers = map[string]int{
	"一": 1, "兩": 2, "二": 2, "三": 3, "四": 4, "五": 5,
	"六": 6, "七": 7, "八": 8, "九": 9, "十": 10,
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// Extractor fills trip slots from free text. The local fast path is
// authoritative when it produces a value; the model fallback only
// contributes fields the local path left empty. Extraction never
// fails: a dead model path just yields fewer slots and the dialogue
// re-asks its current question.
type Extractor struct {
	llm     ai.Extractor
	styles  []string
	intents IntentConfig
}

// NewExtractor creates an Extractor. llm may be nil, which disables
// the model fallback (local rules only).
func NewExtractor(llm ai.Extractor, intents IntentConfig) *Extractor {
	return &Extractor{llm: llm, styles: DefaultStyleKeywords, intents: intents}
}

// Extract returns a partial slot update from message. focus is the
// slot currently being collected (StateIdle when none); when the local
// path fully resolves it the model call is skipped entirely.
func (e *Extractor) Extract(ctx context.Context, message string, known TripSlots, focus State, now time.Time) TripSlots {
	message = strings.TrimSpace(message)
	local := e.extractLocal(message, focus, now)

	if e.llm == nil || focusResolved(focus, local) {
		return local
	}

	modeled := e.extractModel(ctx, message, known)
	// Local results override the model path per field.
	modeled.Merge(local)
	return modeled
}

func focusResolved(focus State, p TripSlots) bool {
	switch focus {
	case StateCollectingDestination:
		return p.Destination != nil
	case StateCollectingDate:
		return p.DepartureDate != nil
	case StateCollectingDuration:
		return p.DurationDays != nil
	case StateCollectingStyle:
		return p.Style != nil
	}
	return false
}

// extractLocal applies the deterministic pattern rules.
func (e *Extractor) extractLocal(message string, focus State, now time.Time) TripSlots {
	var p TripSlots

	if offset, ok := relativeDate(message); ok {
		p.DepartureDate = ptr(now.AddDate(0, 0, offset).Format("2006-01-02"))
	}
	if n, ok := dayCount(message); ok && ValidDuration(n) {
		p.DurationDays = ptr(n)
	}
	for _, kw := range e.styles {
		if strings.Contains(strings.ToLower(message), strings.ToLower(kw)) {
			p.Style = ptr(kw)
			break
		}
	}
	if dest := goDestination(message, e.intents.GoExclusions); dest != "" {
		p.Destination = ptr(dest)
	} else if dest := englishGoDestination(message); dest != "" {
		p.Destination = ptr(dest)
	}

	// When a specific slot is being collected, the raw answer is
	// accepted for the free-text slots, mirroring how a human reads
	// the reply to a direct question.
	switch focus {
	case StateCollectingDestination:
		// A short direct answer is taken as the place name; fillers,
		// longer or keyword-laden messages go to the model path
		// instead.
		if p.Destination == nil && p.DepartureDate == nil && p.DurationDays == nil &&
			!e.intents.IsTravelIntent(message) {
			if dest, ok := plausibleDestination(message); ok {
				p.Destination = ptr(dest)
			}
		}
	case StateCollectingDate:
		if p.DepartureDate == nil && p.DurationDays == nil && message != "" && strings.ContainsAny(message, "0123456789") {
			p.DepartureDate = ptr(message)
		}
	case StateCollectingStyle:
		if p.Style == nil && message != "" && utf8.RuneCountInString(message) <= 30 {
			p.Style = ptr(message)
		}
	}

	return p
}

// fillerReplies are acknowledgements and stalls that can never be a
// place name.
var fillerReplies = []string{
	"嗯", "嗯嗯", "呃", "喔", "哦", "好", "好的", "不知道", "還沒想好", "隨便", "都可以",
	"ok", "okay", "hmm", "um", "uh",
}

// plausibleDestination accepts a short direct answer as a place name:
// trailing punctuation dropped, 2 to 10 runes, not a filler word.
func plausibleDestination(message string) (string, bool) {
	trimmed := strings.TrimRight(message, "。．.…!！?？~ ")
	n := utf8.RuneCountInString(trimmed)
	if n < 2 || n > 10 {
		return "", false
	}
	lower := strings.ToLower(trimmed)
	for _, f := range fillerReplies {
		if lower == f {
			return "", false
		}
	}
	return trimmed, true
}

func relativeDate(message string) (offset int, ok bool) {
	lower := strings.ToLower(message)
	for _, rd := range relativeDates {
		if strings.Contains(lower, rd.word) {
			return rd.offset, true
		}
	}
	return 0, false
}

func dayCount(message string) (int, bool) {
	m := durationPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	token := strings.ToLower(m[1])
	if n, err := strconv.Atoi(token); err == nil {
		return n, true
	}
	if n, ok := wordNumbers[token]; ok {
		return n, true
	}
	return 0, false
}

func englishGoDestination(message string) string {
	lower := strings.ToLower(message)
	idx := strings.Index(lower, "go to ")
	if idx < 0 || strings.Contains(lower, "go back") {
		return ""
	}
	rest := strings.TrimSpace(message[idx+len("go to "):])
	if rest == "" {
		return ""
	}
	// First clause only.
	for i, r := range rest {
		if strings.ContainsRune(",.!?，。！？", r) {
			rest = rest[:i]
			break
		}
	}
	words := strings.Fields(rest)
	if len(words) == 0 {
		return ""
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

// modelPartial matches the JSON schema the extraction prompt demands.
// duration is loosely typed because models emit numbers and strings
// interchangeably.
type modelPartial struct {
	Destination *string `json:"destination"`
	Date        *string `json:"date"`
	Duration    any     `json:"duration"`
	Style       *string `json:"style"`
}

func (e *Extractor) extractModel(ctx context.Context, message string, known TripSlots) TripSlots {
	knownJSON, _ := json.Marshal(known)
	prompt := fmt.Sprintf(
		"You are a travel assistant. Extract information from the user input.\n"+
			"Current known info: %s\n"+
			"User input: '%s'\n\n"+
			"Task: extract \"destination\", \"date\", \"duration\" (trip length in days, integer) and \"style\".\n"+
			"Rules:\n"+
			"1. Only fill a field the user actually mentions; otherwise use null.\n"+
			"2. Never invent values and never copy from the known info.\n"+
			"3. Output strict JSON: {\"destination\": ..., \"date\": ..., \"duration\": ..., \"style\": ...}\n"+
			"JSON:",
		knownJSON, message)

	raw, err := e.llm.ExtractJSON(ctx, prompt)
	if err != nil {
		log.Printf("dialogue: model extraction failed: %v", err)
		return TripSlots{}
	}
	return parseModelPartial(raw)
}

// parseModelPartial parses the first balanced {...} substring as JSON.
// Malformed output yields an all-nil partial, never an error.
func parseModelPartial(raw string) TripSlots {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return TripSlots{}
	}

	var mp modelPartial
	if err := json.Unmarshal([]byte(raw[start:end+1]), &mp); err != nil {
		return TripSlots{}
	}

	var p TripSlots
	if mp.Destination != nil && strings.TrimSpace(*mp.Destination) != "" {
		p.Destination = ptr(strings.TrimSpace(*mp.Destination))
	}
	if mp.Date != nil && strings.TrimSpace(*mp.Date) != "" {
		p.DepartureDate = ptr(strings.TrimSpace(*mp.Date))
	}
	if mp.Style != nil && strings.TrimSpace(*mp.Style) != "" {
		p.Style = ptr(strings.TrimSpace(*mp.Style))
	}
	if n, ok := coerceInt(mp.Duration); ok && ValidDuration(n) {
		p.DurationDays = ptr(n)
	}
	return p
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}
