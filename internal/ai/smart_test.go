package ai

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeCompleter scripts the stream and blocking behaviours.
type fakeCompleter struct {
	streamChunks []string
	blockReply   string
	blockErr     error
	blockCalls   int32
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	atomic.AddInt32(&f.blockCalls, 1)
	return f.blockReply, f.blockErr
}

func (f *fakeCompleter) StreamComplete(ctx context.Context, prompt string, temperature float32) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for _, c := range f.streamChunks {
			out <- c
		}
	}()
	return out
}

func collect(ch <-chan string) string {
	var b strings.Builder
	for c := range ch {
		b.WriteString(c)
	}
	return b.String()
}

func TestSmartCompleteStreamsWithoutFallback(t *testing.T) {
	f := &fakeCompleter{streamChunks: []string{"台南", "一日遊"}, blockReply: "unused"}

	got := collect(SmartComplete(context.Background(), f, "p", 0.7))

	if got != "台南一日遊" {
		t.Fatalf("unexpected reply: %q", got)
	}
	if n := atomic.LoadInt32(&f.blockCalls); n != 0 {
		t.Fatalf("blocking mode called %d times for a healthy stream", n)
	}
}

func TestSmartCompleteFallsBackOnEmptyStream(t *testing.T) {
	f := &fakeCompleter{blockReply: "穩定模式回覆"}

	got := collect(SmartComplete(context.Background(), f, "p", 0.7))

	if !strings.HasPrefix(got, FallbackNotice) {
		t.Fatalf("missing degraded-mode notice in %q", got)
	}
	if !strings.HasSuffix(got, "穩定模式回覆") {
		t.Fatalf("missing blocking reply in %q", got)
	}
	if n := atomic.LoadInt32(&f.blockCalls); n != 1 {
		t.Fatalf("expected exactly 1 blocking call, got %d", n)
	}
}

func TestSmartCompleteTotalFailureYieldsNoticeOnly(t *testing.T) {
	f := &fakeCompleter{blockErr: errors.New("upstream down")}

	got := collect(SmartComplete(context.Background(), f, "p", 0.7))

	if got != FallbackNotice {
		t.Fatalf("expected notice only, got %q", got)
	}
}

func TestCompleteWithFallbackPrefersStream(t *testing.T) {
	f := &fakeCompleter{streamChunks: []string{"ok"}, blockReply: "unused"}

	got, err := CompleteWithFallback(context.Background(), f, "p", 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("unexpected reply: %q", got)
	}
	if n := atomic.LoadInt32(&f.blockCalls); n != 0 {
		t.Fatalf("blocking mode called %d times", n)
	}
}

func TestCompleteWithFallbackUsesBlockingOnEmptyStream(t *testing.T) {
	f := &fakeCompleter{blockReply: "blocked"}

	got, err := CompleteWithFallback(context.Background(), f, "p", 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "blocked" {
		t.Fatalf("unexpected reply: %q", got)
	}
	if n := atomic.LoadInt32(&f.blockCalls); n != 1 {
		t.Fatalf("expected exactly 1 blocking call, got %d", n)
	}
}
