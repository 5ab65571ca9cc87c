package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formflow/components/fieldoptions"
	"github.com/goliatone/go-formflow/pkg/attachments"
	"github.com/goliatone/go-formflow/pkg/chat"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/portal"
	"github.com/goliatone/go-formflow/pkg/render"
)

// Option customises a Server.
type Option func(*config)

type config struct {
	logger        *zap.Logger
	now           func() time.Time
	sessionTTL    time.Duration
	notifier      *notify.Dispatcher
	chatOpts      []chat.Option
	uploadLimit   int64
	secureCookies bool
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithClock overrides the time source used for sessions and date pickers.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithSessionTTL sets how long an idle visitor is kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(cfg *config) {
		if ttl > 0 {
			cfg.sessionTTL = ttl
		}
	}
}

// WithNotifier shares a toast dispatcher.
func WithNotifier(notifier *notify.Dispatcher) Option {
	return func(cfg *config) {
		if notifier != nil {
			cfg.notifier = notifier
		}
	}
}

// WithChatOptions customises every visitor's chat bot.
func WithChatOptions(opts ...chat.Option) Option {
	return func(cfg *config) {
		cfg.chatOpts = append(cfg.chatOpts, opts...)
	}
}

// WithUploadLimit caps the size of one form post.
func WithUploadLimit(n int64) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.uploadLimit = n
		}
	}
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(cfg *config) {
		cfg.secureCookies = secure
	}
}

// Server is the portal's HTTP front end.
type Server struct {
	catalog  *portal.Catalog
	renderer *render.Renderer
	notifier *notify.Dispatcher
	previews *attachments.Previews
	sessions *Sessions
	upgrader websocket.Upgrader

	now         func() time.Time
	uploadLimit int64
	logger      *zap.Logger

	closing   chan struct{}
	closeOnce sync.Once
}

// New wires a server over a compiled catalog and a renderer.
func New(catalog *portal.Catalog, renderer *render.Renderer, opts ...Option) (*Server, error) {
	if catalog == nil {
		return nil, errors.New("server: catalog is required")
	}
	if renderer == nil {
		return nil, errors.New("server: renderer is required")
	}
	cfg := &config{
		logger:      zap.NewNop(),
		now:         time.Now,
		sessionTTL:  30 * time.Minute,
		uploadLimit: 32 << 20,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.notifier == nil {
		cfg.notifier = notify.NewDispatcher(notify.WithClock(cfg.now), notify.WithLogger(cfg.logger))
	}

	previews := attachments.NewPreviews()
	return &Server{
		catalog:  catalog,
		renderer: renderer,
		notifier: cfg.notifier,
		previews: previews,
		sessions: newSessions(catalog, cfg.notifier, previews, cfg),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		now:         cfg.now,
		uploadLimit: cfg.uploadLimit,
		logger:      cfg.logger,
		closing:     make(chan struct{}),
	}, nil
}

// Sessions exposes the visitor registry.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// Handler returns the full route table. Everything except the chat socket is
// gzip-compressed; every request is logged.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	for _, route := range portal.Routes() {
		switch route.Kind {
		case portal.PageHome:
			mux.HandleFunc("GET /{$}", s.handleHome(route))
		case portal.PageForm:
			s.registerForm(mux, route)
		case portal.PageChat:
			mux.HandleFunc("GET "+route.Path, s.handleChatPage(route))
			mux.HandleFunc("POST "+route.Path, s.handleChatPost(route))
		case portal.PageRewards:
			mux.HandleFunc("GET "+route.Path, s.handlePage(route, render.PageRewards, func() any {
				return render.NewRewardsView(portal.RewardsData(nil))
			}))
		case portal.PageDashboard:
			mux.HandleFunc("GET "+route.Path, s.handlePage(route, render.PageDashboard, func() any {
				return render.NewDashboardView(portal.DashboardData())
			}))
		case portal.PageImpact:
			mux.HandleFunc("GET "+route.Path, s.handlePage(route, render.PageImpact, func() any {
				return render.NewImpactView(portal.ImpactData())
			}))
		}
	}

	mux.HandleFunc("POST /api/{form}", s.handleAPISubmit)
	mux.HandleFunc("GET /api/session/{form}", s.handleAPISession)
	mux.HandleFunc("PATCH /api/session/{form}", s.handleAPIPatch)
	mux.HandleFunc("GET /api/routes", s.handleAPIRoutes)
	mux.HandleFunc("DELETE /api/toasts/{id}", s.handleAPIDismiss)
	if _, err := fieldoptions.RegisterRoutes(mux, "/", fieldoptions.WithSource(s.fieldChoices)); err != nil {
		panic(err)
	}
	mux.HandleFunc("GET /openapi.yaml", s.handleOpenAPI)
	mux.HandleFunc("GET /previews/{handle}", s.handlePreview)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(render.AssetsFS())))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", s.handleNotFound)

	root := http.NewServeMux()
	root.HandleFunc("GET /ws/chat", s.handleChatSocket)
	root.Handle("/", gzhttp.GzipHandler(mux))
	return s.logRequests(root)
}

// Serve accepts connections on ln until ctx ends, then drains in-flight
// requests for at most grace.
func (s *Server) Serve(ctx context.Context, ln net.Listener, grace time.Duration) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.shutdownSockets)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.sessions.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string, grace time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, grace)
}

func (s *Server) shutdownSockets() {
	s.closeOnce.Do(func() { close(s.closing) })
}

func (s *Server) fieldChoices(r *http.Request) ([]fieldoptions.Choice, error) {
	entry, err := s.catalog.Entry(r.PathValue("form"))
	if err != nil {
		return nil, fieldoptions.StatusError{Code: http.StatusNotFound, Err: err}
	}
	field, ok := entry.Form.Field(r.PathValue("field"))
	if !ok || len(field.Options) == 0 {
		return nil, fieldoptions.StatusError{Code: http.StatusNotFound}
	}
	return choicesOf(field), nil
}

func choicesOf(field model.Field) []fieldoptions.Choice {
	out := make([]fieldoptions.Choice, 0, len(field.Options))
	for _, option := range field.Options {
		value := fmt.Sprint(option.Value)
		label := option.Label
		if label == "" {
			label = value
		}
		out = append(out, fieldoptions.Choice{Value: value, Label: label})
	}
	return out
}
