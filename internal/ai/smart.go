// README: Stream-first completion with automatic blocking fallback.
package ai

import (
	"context"
	"log"
)

// FallbackNotice is emitted when the stream produced nothing and the
// call degrades to blocking mode.
const FallbackNotice = "（串流連線不穩，轉為穩定模式讀取...）\n\n"

// SmartComplete tries the streaming mode first and relays its chunks.
// A stream may legitimately yield zero chunks; in that case the
// blocking mode is invoked once and its reply emitted after a visible
// degraded-mode notice. The returned channel is always closed and
// never surfaces an error: a total upstream failure yields the notice
// followed by an empty reply, which callers render as an apology.
func SmartComplete(ctx context.Context, c Completer, prompt string, temperature float32) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		got := false
		for chunk := range c.StreamComplete(ctx, prompt, temperature) {
			got = true
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if got {
			return
		}

		select {
		case out <- FallbackNotice:
		case <-ctx.Done():
			return
		}
		text, err := c.Complete(ctx, prompt, temperature)
		if err != nil {
			log.Printf("smart complete fallback failed: %v", err)
			return
		}
		select {
		case out <- text:
		case <-ctx.Done():
		}
	}()
	return out
}

// CompleteWithFallback drains the stream into a single string, falling
// back to one blocking call when the stream yields nothing. Used where
// a caller needs a whole reply rather than a chunk stream and no
// user-visible degraded-mode notice.
func CompleteWithFallback(ctx context.Context, c Completer, prompt string, temperature float32) (string, error) {
	var buf []byte
	for chunk := range c.StreamComplete(ctx, prompt, temperature) {
		buf = append(buf, chunk...)
	}
	if len(buf) > 0 {
		return string(buf), nil
	}
	return c.Complete(ctx, prompt, temperature)
}
