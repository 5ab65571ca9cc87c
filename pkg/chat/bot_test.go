package chat_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/goliatone/go-formflow/pkg/chat"
	"github.com/goliatone/go-formflow/pkg/submission"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func texts(messages []chat.Message) []string {
	out := make([]string, 0, len(messages))
	for _, msg := range messages {
		out = append(out, msg.Text)
	}
	return out
}

func TestBotGreetsAndReplies(t *testing.T) {
	var mu sync.Mutex
	var heard []chat.Role
	bot := chat.NewBot(
		chat.WithDelay(submission.FixedDelay(5*time.Millisecond)),
		chat.WithPicker(func(int) int { return 2 }),
		chat.WithListener(func(msg chat.Message) {
			mu.Lock()
			heard = append(heard, msg.Role)
			mu.Unlock()
		}),
	)

	if _, err := bot.Send(context.Background(), "  Where is <b>room 4</b>?  "); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !bot.Pending() {
		t.Fatalf("expected a pending reply")
	}
	if err := bot.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}

	want := []string{chat.Greeting, "Where is room 4?", chat.Responses[2]}
	if diff := cmp.Diff(want, texts(bot.Messages())); diff != "" {
		t.Fatalf("conversation mismatch (-want +got):\n%s", diff)
	}
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]chat.Role{chat.RoleUser, chat.RoleAssistant}, heard); diff != "" {
		t.Fatalf("listener mismatch (-want +got):\n%s", diff)
	}
}

func TestBotIgnoresBlankAndBusyInput(t *testing.T) {
	bot := chat.NewBot(chat.WithDelay(submission.FixedDelay(time.Hour)))
	defer func() {
		bot.Close()
		_ = bot.Wait(context.Background())
	}()

	if _, err := bot.Send(context.Background(), "   "); !errors.Is(err, chat.ErrBlank) {
		t.Fatalf("expected ErrBlank, got %v", err)
	}
	if _, err := bot.Send(context.Background(), "<script></script>"); !errors.Is(err, chat.ErrBlank) {
		t.Fatalf("markup-only input should be blank, got %v", err)
	}
	if _, err := bot.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := bot.Send(context.Background(), "again"); !errors.Is(err, chat.ErrPending) {
		t.Fatalf("expected ErrPending, got %v", err)
	}
	if got := len(bot.Messages()); got != 2 {
		t.Fatalf("expected greeting and one user message, got %d", got)
	}
}

func TestBotCloseDropsReply(t *testing.T) {
	bot := chat.NewBot(chat.WithDelay(submission.FixedDelay(time.Hour)))
	if _, err := bot.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	bot.Close()
	if err := bot.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if bot.Pending() {
		t.Fatalf("close should clear the pending reply")
	}
	if got := len(bot.Messages()); got != 2 {
		t.Fatalf("no reply expected after close, got %d messages", got)
	}
}

func TestBotListenersHearConversationOrder(t *testing.T) {
	var (
		mu      sync.Mutex
		heard   []string
		replied bool
	)
	replying := make(chan struct{})
	release := make(chan struct{})
	bot := chat.NewBot(
		chat.WithDelay(submission.FixedDelay(0)),
		chat.WithPicker(func(int) int { return 0 }),
		chat.WithListener(func(msg chat.Message) {
			mu.Lock()
			first := msg.Role == chat.RoleAssistant && !replied
			if first {
				replied = true
			}
			mu.Unlock()
			if first {
				close(replying)
				<-release
			}
			mu.Lock()
			heard = append(heard, msg.Text)
			mu.Unlock()
		}),
	)

	if _, err := bot.Send(context.Background(), "first"); err != nil {
		t.Fatalf("send: %v", err)
	}
	<-replying

	sent := make(chan error, 1)
	go func() {
		_, err := bot.Send(context.Background(), "second")
		sent <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	if err := <-sent; err != nil {
		t.Fatalf("second send: %v", err)
	}
	if err := bot.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"first", chat.Responses[0], "second", chat.Responses[0]}
	if diff := cmp.Diff(want, heard); diff != "" {
		t.Fatalf("listener order mismatch (-want +got):\n%s", diff)
	}
}
