// README: Dialogue service: slot-filling FSM, turn handling, generation hand-off.
package dialogue

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"voyago/internal/ai"
	"voyago/internal/modules/itinerary"
)

// PlanRecorder archives a finished itinerary. Failures are logged and
// swallowed; recording is never allowed to break a conversation.
type PlanRecorder interface {
	Record(ctx context.Context, conversationID string, req itinerary.Request, text string) error
}

// Deps wires the service's collaborators. Recorder may be nil.
type Deps struct {
	Store     SessionStore
	Extractor *Extractor
	Generator *itinerary.Generator
	LLM       ai.Completer
	Recorder  PlanRecorder
	Intents   IntentConfig
}

// Service owns the trip dialogue state machine. All turns for one
// conversation are serialized through a per-conversation lock; the
// stores themselves do not guarantee that.
type Service struct {
	store     SessionStore
	extractor *Extractor
	generator *itinerary.Generator
	llm       ai.Completer
	recorder  PlanRecorder
	intents   IntentConfig

	locks convLocks
}

func NewService(deps Deps) *Service {
	intents := deps.Intents
	if intents.CancelWords == nil {
		intents = DefaultIntentConfig()
	}
	return &Service{
		store:     deps.Store,
		extractor: deps.Extractor,
		generator: deps.Generator,
		llm:       deps.LLM,
		recorder:  deps.Recorder,
		intents:   intents,
	}
}

// HandleTurn is the single entry point: one inbound user message in,
// a finite stream of output chunks out (a preamble, zero or more
// intermediate chunks, and a final chunk). The channel is always
// closed and every turn yields at least one chunk.
func (s *Service) HandleTurn(ctx context.Context, conversationID, message string, now time.Time) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		unlock := s.locks.lock(conversationID)
		defer unlock()

		message = strings.TrimSpace(message)
		if !s.turn(ctx, conversationID, message, now, out) {
			// The turn produced no real answer (context ended, or the
			// upstream failed in both modes): still answer.
			send(ctx, out, "抱歉，系統暫時無法回應，請稍後再試。")
		}
	}()
	return out
}

// turn runs one dialogue step. Returns false when no substantive
// answer was emitted.
func (s *Service) turn(ctx context.Context, conversationID, message string, now time.Time, out chan<- string) bool {
	sess, err := s.store.Load(ctx, conversationID)
	if err != nil && err != ErrNotFound {
		log.Printf("dialogue: load session %s: %v", conversationID, err)
		sess = nil
	}
	active := sess != nil && sess.State != StateIdle

	// Cancellation is checked at the top of every turn. It is not
	// checked while a generation call is in flight.
	if s.intents.IsCancel(message) {
		if err := s.store.Delete(ctx, conversationID); err != nil {
			log.Printf("dialogue: delete session %s: %v", conversationID, err)
		}
		return send(ctx, out, "🛑 已重置，期待下次為您規劃行程。")
	}

	if !active && !s.intents.IsTravelIntent(message) {
		return s.chat(ctx, message, out)
	}

	if sess == nil || sess.State == StateIdle {
		sess = &Session{ConversationID: conversationID, State: StateIdle}
		if !send(ctx, out, "✈️ 旅遊模式啟動！\n") {
			return true
		}
	}

	focus := sess.State
	extracted := s.extractor.Extract(ctx, message, sess.Slots, focus, now)
	sess.Slots.Merge(extracted)

	missing, incomplete := sess.Slots.FirstMissing()
	if incomplete {
		sess.State = missing
		if err := s.store.Save(ctx, sess); err != nil {
			log.Printf("dialogue: save session %s: %v", conversationID, err)
		}
		return send(ctx, out, s.question(missing, focus, message, sess.Slots))
	}

	sess.State = StateGenerating
	if err := s.store.Save(ctx, sess); err != nil {
		log.Printf("dialogue: save session %s: %v", conversationID, err)
	}

	s.generate(ctx, sess, out)

	// Generating always returns to idle with cleared slots.
	if err := s.store.Delete(ctx, conversationID); err != nil {
		log.Printf("dialogue: delete session %s: %v", conversationID, err)
	}
	return true
}

// question returns the clarifying prompt for the state being entered.
// Re-entry of the state that was just asked gets the repeat variant,
// which covers both extraction ambiguity and rejected values.
func (s *Service) question(next, previous State, message string, slots TripSlots) string {
	repeat := next == previous
	switch next {
	case StateCollectingDestination:
		if repeat {
			return "抱歉，我沒聽清楚。請問想去 **哪裡** 玩？"
		}
		return "請問這趟旅程想去 **哪裡** 玩？"
	case StateCollectingDate:
		if repeat {
			return "抱歉，我沒聽清楚日期。請問 **什麼時候** 出發？（例如：明天、2026-03-02）"
		}
		return fmt.Sprintf("✅ 目的地：**%s**。\n請問 **什麼時候** 出發？", deref(slots.Destination))
	case StateCollectingDuration:
		if repeat {
			if _, found := dayCount(message); found {
				return fmt.Sprintf("天數需介於 1 到 %d 天之間，請重新告訴我要玩幾天。", MaxDurationDays)
			}
			return "抱歉，我沒聽清楚。請問要玩 **幾天** 呢？（例如：3 天）"
		}
		return "收到。請問要玩 **幾天** 呢？"
	case StateCollectingStyle:
		if repeat {
			return "抱歉，我沒聽清楚。請問偏好的 **旅遊風格** 是？"
		}
		return "最後確認一下，您偏好的 **旅遊風格** 是？\n（例如：古蹟巡禮、瘋狂吃美食、戶外大自然、輕鬆漫遊）"
	}
	return "請再告訴我一次您的需求。"
}

func (s *Service) generate(ctx context.Context, sess *Session, out chan<- string) {
	req := itinerary.Request{
		Destination:  deref(sess.Slots.Destination),
		StartDate:    deref(sess.Slots.DepartureDate),
		DurationDays: derefInt(sess.Slots.DurationDays),
		Style:        deref(sess.Slots.Style),
	}

	if !send(ctx, out, fmt.Sprintf("🚀 正在為您規劃 %s %d 天的行程（%s 出發）...\n\n", req.Destination, req.DurationDays, req.StartDate)) {
		return
	}

	var full strings.Builder
	for ev := range s.generator.Generate(ctx, req) {
		var chunk string
		switch ev.Kind {
		case itinerary.EventProgress:
			chunk = ev.Text
		case itinerary.EventSegment:
			chunk = ev.Result.Render()
			full.WriteString(chunk)
		case itinerary.EventSummary:
			chunk = ev.Text
		}
		if !send(ctx, out, chunk) {
			return
		}
	}

	if s.recorder != nil && full.Len() > 0 {
		if err := s.recorder.Record(ctx, sess.ConversationID, req, full.String()); err != nil {
			log.Printf("dialogue: record plan for %s: %v", sess.ConversationID, err)
		}
	}
}

// chat answers a non-travel message with a plain model reply,
// streaming when the upstream allows it. The degraded-mode notice does
// not count as an answer: when both modes fail the caller still owes
// the user an apology.
func (s *Service) chat(ctx context.Context, message string, out chan<- string) bool {
	prompt := fmt.Sprintf("User says: %s\nReply politely in Traditional Chinese:", message)
	answered := false
	for chunk := range ai.SmartComplete(ctx, s.llm, prompt, 0.7) {
		if !send(ctx, out, chunk) {
			return true
		}
		if chunk != ai.FallbackNotice {
			answered = true
		}
	}
	return answered
}

func send(ctx context.Context, out chan<- string, chunk string) bool {
	if chunk == "" {
		return true
	}
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
