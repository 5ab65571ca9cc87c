package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/attachments"
	"github.com/goliatone/go-formflow/pkg/chat"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/portal"
)

// CookieName carries the visitor id.
const CookieName = "ff_session"

// visitor is one browser: its form sessions, its chat and its CSRF token.
type visitor struct {
	id   string
	csrf string

	mu       sync.Mutex
	forms    map[string]*portal.Session
	bot      *chat.Bot
	subs     map[uint64]chan chat.Message
	nextSub  uint64
	lastSeen time.Time
}

// scope is the toast scope of one form of this visitor.
func (v *visitor) scope(form string) string {
	return v.id + ":" + form
}

// ownsScope reports whether scope belongs to one of this visitor's forms.
func (v *visitor) ownsScope(scope string) bool {
	return strings.HasPrefix(scope, v.id+":")
}

// broadcast fans a chat message out to every open socket without blocking.
func (v *visitor) broadcast(msg chat.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, ch := range v.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (v *visitor) subscribe() (<-chan chat.Message, func()) {
	ch := make(chan chat.Message, 16)
	v.mu.Lock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = ch
	v.mu.Unlock()
	return ch, func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Sessions maps visitors to their live form sessions and expires idle ones.
type Sessions struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	catalog  *portal.Catalog
	notifier *notify.Dispatcher
	previews *attachments.Previews
	chatOpts []chat.Option
	ttl      time.Duration
	now      func() time.Time
	secure   bool
	logger   *zap.Logger
}

func newSessions(catalog *portal.Catalog, notifier *notify.Dispatcher, previews *attachments.Previews, cfg *config) *Sessions {
	return &Sessions{
		visitors: make(map[string]*visitor),
		catalog:  catalog,
		notifier: notifier,
		previews: previews,
		chatOpts: cfg.chatOpts,
		ttl:      cfg.sessionTTL,
		now:      cfg.now,
		secure:   cfg.secureCookies,
		logger:   cfg.logger,
	}
}

// visitor returns the caller's visitor, starting a new one and setting the
// cookie when the request carries none or an expired id.
func (s *Sessions) visitor(w http.ResponseWriter, r *http.Request) *visitor {
	if v, ok := s.lookup(r); ok {
		return v
	}
	v := &visitor{
		id:       uuid.NewString(),
		csrf:     uuid.NewString(),
		forms:    make(map[string]*portal.Session),
		subs:     make(map[uint64]chan chat.Message),
		lastSeen: s.now(),
	}
	s.mu.Lock()
	s.visitors[v.id] = v
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    v.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Debug("visitor started", zap.String("visitor", v.id))
	return v
}

// lookup finds the caller's visitor without creating one.
func (s *Sessions) lookup(r *http.Request) (*visitor, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[cookie.Value]
	if !ok {
		return nil, false
	}
	v.mu.Lock()
	v.lastSeen = s.now()
	v.mu.Unlock()
	return v, true
}

// form returns the visitor's live session for a catalog form, opening it on
// first use.
func (s *Sessions) form(v *visitor, key string) (*portal.Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if session, ok := v.forms[key]; ok {
		return session, nil
	}
	session, err := s.catalog.Open(key, portal.SessionOptions{
		Notifier: s.notifier,
		Scope:    v.scope(key),
		Previews: s.previews,
	})
	if err != nil {
		return nil, err
	}
	v.forms[key] = session
	return session, nil
}

// bot returns the visitor's conversation, starting it on first use.
func (s *Sessions) bot(v *visitor) *chat.Bot {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.bot == nil {
		opts := append([]chat.Option{
			chat.WithLogger(s.logger.With(zap.String("visitor", v.id))),
			chat.WithListener(v.broadcast),
		}, s.chatOpts...)
		v.bot = chat.NewBot(opts...)
	}
	return v.bot
}

// Len reports how many visitors are live.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

// Sweep discards visitors idle for longer than the TTL and returns how many
// were dropped.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	var expired []*visitor
	s.mu.Lock()
	for id, v := range s.visitors {
		v.mu.Lock()
		idle := v.lastSeen.Before(cutoff)
		v.mu.Unlock()
		if idle {
			expired = append(expired, v)
			delete(s.visitors, id)
		}
	}
	s.mu.Unlock()

	for _, v := range expired {
		s.discard(v)
	}
	if len(expired) > 0 {
		s.logger.Debug("visitors expired", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps periodically until ctx ends, then discards every visitor.
func (s *Sessions) Run(ctx context.Context) error {
	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close discards every visitor.
func (s *Sessions) Close() {
	s.mu.Lock()
	visitors := s.visitors
	s.visitors = make(map[string]*visitor)
	s.mu.Unlock()
	for _, v := range visitors {
		s.discard(v)
	}
}

func (s *Sessions) discard(v *visitor) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for key, session := range v.forms {
		session.Close()
		s.notifier.DropScope(v.scope(key))
	}
	v.forms = map[string]*portal.Session{}
	if v.bot != nil {
		v.bot.Close()
		v.bot = nil
	}
}
