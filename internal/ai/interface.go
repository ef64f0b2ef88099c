// README: LLM provider contract consumed by the dialogue and itinerary modules.
package ai

import "context"

// Completer is the contract for text generation. Implementations must
// bound every call with a timeout; a slow upstream returns an error or
// an exhausted stream, never an indefinite block.
type Completer interface {
	// Complete sends a prompt and blocks until the full reply is
	// available.
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)

	// StreamComplete sends a prompt and returns a channel of text
	// chunks. The channel is always closed; it may legitimately close
	// without yielding a single chunk (upstream refusal, timeout, or
	// malformed stream). Callers that need some answer must fall back
	// to Complete; see SmartComplete.
	StreamComplete(ctx context.Context, prompt string, temperature float32) <-chan string
}

// Extractor is the contract for structured (JSON) extraction calls.
type Extractor interface {
	// ExtractJSON sends a prompt to a JSON-mode model and returns the
	// raw response text, which callers parse themselves.
	ExtractJSON(ctx context.Context, prompt string) (string, error)
}
