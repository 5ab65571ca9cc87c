package portal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	internalLoader "github.com/goliatone/go-formflow/internal/openapi/loader"
	"github.com/goliatone/go-formflow/pkg/attachments"
	"github.com/goliatone/go-formflow/pkg/formstate"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	pkgopenapi "github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Catalog keys for the portal's forms.
const (
	FormReport   = "report"
	FormRequest  = "request"
	FormFeedback = "feedback"
)

// ErrUnknownForm is returned for keys the catalog does not hold.
var ErrUnknownForm = errors.New("portal: unknown form")

// Timing holds the simulated remote delays.
type Timing struct {
	Fixed     time.Duration
	RandomMin time.Duration
	RandomMax time.Duration
}

// DefaultTiming matches the portal's observed delays.
func DefaultTiming() Timing {
	return Timing{
		Fixed:     1500 * time.Millisecond,
		RandomMin: 1500 * time.Millisecond,
		RandomMax: 2500 * time.Millisecond,
	}
}

// Limits configures attachment intake on forms that accept files.
type Limits struct {
	MaxFiles int
	MaxBytes int64
}

// Entry is one compiled form with its runtime wiring.
type Entry struct {
	Key         string
	OperationID string
	Form        model.FormModel
	Attachments bool

	validator *validation.Validator
	remote    submission.Remote
}

type entrySpec struct {
	key         string
	operationID string
	attachments bool
	delay       func(Timing) submission.Delay
}

var entrySpecs = []entrySpec{
	{key: FormReport, operationID: "createReport", attachments: true, delay: func(t Timing) submission.Delay {
		return submission.FixedDelay(t.Fixed)
	}},
	{key: FormRequest, operationID: "createServiceRequest", delay: func(t Timing) submission.Delay {
		return submission.FixedDelay(t.Fixed)
	}},
	{key: FormFeedback, operationID: "createFeedback", delay: func(t Timing) submission.Delay {
		return submission.RandomDelay(t.RandomMin, t.RandomMax)
	}},
}

// Catalog holds the compiled portal forms.
type Catalog struct {
	entries map[string]*Entry
	timing  Timing
	limits  Limits
	logger  *zap.Logger
}

// Option customises catalog loading.
type Option func(*catalogConfig)

type catalogConfig struct {
	timing Timing
	limits Limits
	now    func() time.Time
	logger *zap.Logger
	remote submission.Remote
}

// WithTiming overrides the simulated delays.
func WithTiming(timing Timing) Option {
	return func(cfg *catalogConfig) {
		cfg.timing = timing
	}
}

// WithLimits overrides attachment limits.
func WithLimits(limits Limits) Option {
	return func(cfg *catalogConfig) {
		cfg.limits = limits
	}
}

// WithClock sets the clock used by date rules.
func WithClock(now func() time.Time) Option {
	return func(cfg *catalogConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithRemote replaces the simulated backend for every form.
func WithRemote(remote submission.Remote) Option {
	return func(cfg *catalogConfig) {
		cfg.remote = remote
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *catalogConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// LoadCatalog compiles the embedded definitions into ready-to-use forms.
func LoadCatalog(ctx context.Context, opts ...Option) (*Catalog, error) {
	cfg := catalogConfig{
		timing: DefaultTiming(),
		limits: Limits{MaxFiles: attachments.DefaultMaxFiles, MaxBytes: attachments.DefaultMaxBytes},
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	orch := orchestrator.New(
		orchestrator.WithLoader(internalLoader.New(pkgopenapi.NewLoaderOptions(
			pkgopenapi.WithFileSystem(DefinitionsFS()),
		))),
		orchestrator.WithUISchemaFS(UISchemaFS()),
		orchestrator.WithLogger(cfg.logger),
	)
	forms, err := orch.Compile(ctx, orchestrator.Request{Source: pkgopenapi.SourceFromFS(DocumentName)})
	if err != nil {
		return nil, fmt.Errorf("portal: compile forms: %w", err)
	}

	catalog := &Catalog{
		entries: make(map[string]*Entry, len(entrySpecs)),
		timing:  cfg.timing,
		limits:  cfg.limits,
		logger:  cfg.logger,
	}
	for _, spec := range entrySpecs {
		form, ok := forms[spec.operationID]
		if !ok {
			return nil, fmt.Errorf("portal: definitions lack operation %q", spec.operationID)
		}
		validator, err := validation.New(form, validation.WithNow(cfg.now))
		if err != nil {
			return nil, fmt.Errorf("portal: form %q: %w", spec.key, err)
		}
		remote := cfg.remote
		if remote == nil {
			remote, err = submission.NewSimulated(spec.delay(cfg.timing), cfg.logger)
			if err != nil {
				return nil, fmt.Errorf("portal: form %q: %w", spec.key, err)
			}
		}
		catalog.entries[spec.key] = &Entry{
			Key:         spec.key,
			OperationID: spec.operationID,
			Form:        form,
			Attachments: spec.attachments,
			validator:   validator,
			remote:      remote,
		}
	}
	return catalog, nil
}

// Keys lists the catalog keys in sorted order.
func (c *Catalog) Keys() []string {
	out := make([]string, 0, len(c.entries))
	for key := range c.entries {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Entry looks up a compiled form.
func (c *Catalog) Entry(key string) (*Entry, error) {
	entry, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownForm, key)
	}
	return entry, nil
}

// EntryByOperation looks up a compiled form by operation id.
func (c *Catalog) EntryByOperation(operationID string) (*Entry, error) {
	for _, entry := range c.entries {
		if entry.OperationID == operationID {
			return entry, nil
		}
	}
	return nil, fmt.Errorf("%w: operation %q", ErrUnknownForm, operationID)
}

// Validator returns the entry's validator.
func (e *Entry) Validator() *validation.Validator {
	return e.validator
}

// SessionOptions carries the per-instance collaborators of a form session.
type SessionOptions struct {
	Notifier  notify.Notifier
	Scope     string
	Previews  *attachments.Previews
	Observers []submission.Observer
}

// Session is one live instance of a form: its field store, controller and
// attachment list. Nothing is shared between sessions.
type Session struct {
	Entry      *Entry
	Controller *submission.Controller
}

// Open starts a fresh session for key.
func (c *Catalog) Open(key string, opts SessionOptions) (*Session, error) {
	entry, err := c.Entry(key)
	if err != nil {
		return nil, err
	}
	controllerOpts := []submission.Option{
		submission.WithLogger(c.logger.With(zap.String("form", key))),
	}
	if opts.Notifier != nil {
		controllerOpts = append(controllerOpts, submission.WithNotifier(opts.Notifier, opts.Scope))
	}
	for _, observer := range opts.Observers {
		controllerOpts = append(controllerOpts, submission.WithObserver(observer))
	}
	if entry.Attachments {
		intakeOpts := []attachments.Option{
			attachments.WithMaxFiles(c.limits.MaxFiles),
			attachments.WithMaxBytes(c.limits.MaxBytes),
		}
		if opts.Previews != nil {
			intakeOpts = append(intakeOpts, attachments.WithPreviews(opts.Previews))
		}
		controllerOpts = append(controllerOpts, submission.WithAttachments(attachments.NewIntake(intakeOpts...)))
	}

	store := formstate.New(entry.Form)
	return &Session{
		Entry:      entry,
		Controller: submission.NewController(store, entry.validator, entry.remote, controllerOpts...),
	}, nil
}

// Store is a shorthand for the session's field store.
func (s *Session) Store() *formstate.Store {
	return s.Controller.Store()
}

// Close cancels any pending submission and releases attachments.
func (s *Session) Close() {
	s.Controller.Close()
}

// Timing reports the configured simulated delays.
func (c *Catalog) Timing() Timing {
	return c.timing
}
