package chat

import (
	"context"
	"errors"
	"html"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/submission"
)

// Greeting is the first message of every conversation.
const Greeting = "Hello! I'm your AI assistant. How can I help you today?"

// Responses are the canned replies the assistant picks from.
var Responses = []string{
	"That's an interesting question! Let me think about that for you.",
	"I understand what you're asking. Here's my perspective on that topic.",
	"Great point! I'd be happy to help you with that.",
	"Thanks for sharing that with me. Here's what I think about it.",
	"I see what you mean. Let me provide you with some insights.",
	"That's a thoughtful question. I'll do my best to give you a helpful response.",
	"I appreciate you asking that. Here's how I would approach this topic.",
}

var (
	// ErrBlank is returned for input that is empty after trimming.
	ErrBlank = errors.New("chat: message is blank")
	// ErrPending is returned while the assistant is still replying.
	ErrPending = errors.New("chat: waiting for a reply")
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat bubble.
type Message struct {
	ID   string    `json:"id"`
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Bot is a mock assistant holding one conversation.
type Bot struct {
	mu        sync.Mutex
	delay     submission.Delay
	pick      func(n int) int
	now       func() time.Time
	policy    *bluemonday.Policy
	logger    *zap.Logger
	listeners []func(Message)

	messages []Message
	task     *submission.Task[string]
	settled  chan struct{}
	queued   uint64

	// listeners see messages in conversation order: each appended message
	// takes a ticket under mu and is emitted once every earlier ticket has.
	emitMu  sync.Mutex
	emitted uint64
	turn    *sync.Cond
}

// Option customises a Bot.
type Option func(*Bot)

// WithDelay sets the reply delay.
func WithDelay(delay submission.Delay) Option {
	return func(b *Bot) {
		if delay != nil {
			b.delay = delay
		}
	}
}

// WithPicker overrides how a canned response is chosen.
func WithPicker(pick func(n int) int) Option {
	return func(b *Bot) {
		if pick != nil {
			b.pick = pick
		}
	}
}

// WithListener is called for every appended message, outside the bot lock.
func WithListener(fn func(Message)) Option {
	return func(b *Bot) {
		if fn != nil {
			b.listeners = append(b.listeners, fn)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBot starts a conversation with the greeting.
func NewBot(opts ...Option) *Bot {
	b := &Bot{
		delay:  submission.RandomDelay(1500*time.Millisecond, 2500*time.Millisecond),
		pick:   rand.IntN,
		now:    time.Now,
		policy: bluemonday.StrictPolicy(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.turn = sync.NewCond(&b.emitMu)
	b.messages = []Message{b.message(RoleAssistant, Greeting)}
	return b
}

// Messages returns the conversation so far.
func (b *Bot) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Message(nil), b.messages...)
}

// Pending reports whether a reply is on its way.
func (b *Bot) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.task != nil
}

// Send appends the user's message and schedules a canned reply. Markup in text
// is stripped and the remaining text stored unescaped.
func (b *Bot) Send(ctx context.Context, text string) (Message, error) {
	clean := strings.TrimSpace(html.UnescapeString(b.policy.Sanitize(text)))
	if clean == "" {
		return Message{}, ErrBlank
	}

	b.mu.Lock()
	if b.task != nil {
		b.mu.Unlock()
		return Message{}, ErrPending
	}
	msg := b.message(RoleUser, clean)
	b.messages = append(b.messages, msg)
	ticket := b.ticketLocked()

	reply := Responses[b.pick(len(Responses))]
	wait := b.delay()
	task := submission.Start(context.WithoutCancel(ctx), func(taskCtx context.Context) (string, error) {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-taskCtx.Done():
			return "", taskCtx.Err()
		case <-timer.C:
			return reply, nil
		}
	})
	settled := make(chan struct{})
	b.task = task
	b.settled = settled
	b.mu.Unlock()

	b.emit(ticket, msg)
	go b.await(task, settled)
	return msg, nil
}

func (b *Bot) await(task *submission.Task[string], settled chan struct{}) {
	defer close(settled)
	text, err := task.Result()

	b.mu.Lock()
	if b.task != task {
		b.mu.Unlock()
		return
	}
	b.task = nil
	if err != nil {
		b.mu.Unlock()
		b.logger.Debug("chat reply abandoned", zap.Error(err))
		return
	}
	msg := b.message(RoleAssistant, text)
	b.messages = append(b.messages, msg)
	ticket := b.ticketLocked()
	b.mu.Unlock()

	b.emit(ticket, msg)
}

// Wait blocks until the pending reply, if any, has arrived or ctx ends.
func (b *Bot) Wait(ctx context.Context) error {
	b.mu.Lock()
	settled := b.settled
	b.mu.Unlock()
	if settled == nil {
		return nil
	}
	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drops any pending reply.
func (b *Bot) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.task != nil {
		b.task.Cancel()
		b.task = nil
	}
}

func (b *Bot) message(role Role, text string) Message {
	return Message{ID: uuid.NewString(), Role: role, Text: text, At: b.now()}
}

func (b *Bot) ticketLocked() uint64 {
	ticket := b.queued
	b.queued++
	return ticket
}

func (b *Bot) emit(ticket uint64, msg Message) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()
	for b.emitted != ticket {
		b.turn.Wait()
	}
	for _, fn := range b.listeners {
		fn(msg)
	}
	b.emitted++
	b.turn.Broadcast()
}
