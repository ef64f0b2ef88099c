// README: Travel-intent and cancellation keyword tables (replaceable configuration).
package dialogue

import (
	"strings"
	"unicode/utf8"
)

// The keyword tables are deliberately configuration, not load-bearing
// logic: callers may swap them for another locale or dataset.
var (
	DefaultTravelKeywords = []string{
		"旅遊", "旅行", "行程", "一日遊", "二日遊", "日遊", "好玩", "規劃行程",
		"travel", "trip", "itinerary", "day-trip",
	}

	// Common "去" false positives: these contain 去 without meaning
	// "go to <place>".
	DefaultGoExclusions = []string{
		"去年", "過去", "失去", "去除", "回去", "下去", "上去", "進去", "出去",
	}

	DefaultCancelWords = []string{
		"cancel", "quit", "reset", "exit", "never mind",
		"取消", "退出", "結束", "中止",
	}
)

// IntentConfig classifies messages outside the model path.
type IntentConfig struct {
	TravelKeywords []string
	GoExclusions   []string
	CancelWords    []string
}

func DefaultIntentConfig() IntentConfig {
	return IntentConfig{
		TravelKeywords: DefaultTravelKeywords,
		GoExclusions:   DefaultGoExclusions,
		CancelWords:    DefaultCancelWords,
	}
}

// IsCancel reports whether msg is a cancellation command. Matching is
// on the whole trimmed message, case-insensitive.
func (c IntentConfig) IsCancel(msg string) bool {
	msg = strings.ToLower(strings.TrimSpace(msg))
	for _, w := range c.CancelWords {
		if msg == strings.ToLower(w) {
			return true
		}
	}
	return false
}

// IsTravelIntent runs on every message independent of dialogue state:
// either a travel keyword or a guarded "go to <place>" pattern
// classifies the message as trip intent.
func (c IntentConfig) IsTravelIntent(msg string) bool {
	msg = strings.TrimSpace(msg)
	lower := strings.ToLower(msg)

	for _, k := range c.TravelKeywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}

	if dest := goDestination(msg, c.GoExclusions); dest != "" {
		return true
	}
	if strings.Contains(lower, "go to ") && !strings.Contains(lower, "go back") {
		return true
	}
	return false
}

// goDestination extracts the place following 去, guarding against the
// exclusion list and trailing punctuation. Empty when the pattern does
// not apply.
func goDestination(msg string, exclusions []string) string {
	for _, bad := range exclusions {
		if strings.Contains(msg, bad) {
			return ""
		}
	}
	idx := strings.Index(msg, "去")
	if idx < 0 {
		return ""
	}
	suffix := strings.TrimSpace(msg[idx+len("去"):])
	if suffix == "" {
		return ""
	}
	runes := []rune(suffix)
	if len(runes) < 2 {
		return ""
	}
	if strings.ContainsRune("，。！？,.!?", runes[0]) {
		return ""
	}
	// Cut at the first punctuation, whitespace or digit ("去台南玩3天").
	end := len(runes)
	for i, r := range runes {
		if strings.ContainsRune("，。！？、,.!? \t\n", r) || (r >= '0' && r <= '9') {
			end = i
			break
		}
	}
	if end > 10 {
		end = 10
	}
	dest := string(runes[:end])
	// Trailing verbs are part of the pattern, not the place name.
	for _, tail := range []string{"玩玩", "走走", "遊玩", "玩", "旅遊", "旅行"} {
		dest = strings.TrimSuffix(dest, tail)
	}
	if utf8.RuneCountInString(dest) < 2 {
		return ""
	}
	return dest
}
