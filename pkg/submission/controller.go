package submission

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/attachments"
	"github.com/goliatone/go-formflow/pkg/formstate"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// State is a submission lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// DefaultFailureMessage is the toast shown when validation fails.
const DefaultFailureMessage = "Please fix the errors in the form"

var (
	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("submission: a submission is already in progress")
	// ErrAlreadySubmitted is returned until the form is reset.
	ErrAlreadySubmitted = errors.New("submission: form already submitted, reset first")
)

// Transition describes one state change.
type Transition struct {
	OperationID string    `json:"operationId"`
	From        State     `json:"from"`
	To          State     `json:"to"`
	At          time.Time `json:"at"`
}

// Observer is notified of every transition, in order, while the controller
// lock is held. Observers must not call back into the controller.
type Observer func(Transition)

// Controller drives one form instance through validation and submission.
type Controller struct {
	mu        sync.Mutex
	store     *formstate.Store
	validator *validation.Validator
	remote    Remote

	intake    *attachments.Intake
	notifier  notify.Notifier
	scope     string
	success   string
	failure   string
	logger    *zap.Logger
	observers []Observer
	now       func() time.Time

	state    State
	task     *Task[Receipt]
	settled  chan struct{}
	snapshot model.Values
	receipt  *Receipt
}

// Option customises a Controller.
type Option func(*Controller)

// WithNotifier routes toasts to notifier under scope.
func WithNotifier(notifier notify.Notifier, scope string) Option {
	return func(c *Controller) {
		c.notifier = notifier
		c.scope = scope
	}
}

// WithMessages overrides the success and failure toast texts. Empty values
// keep the current text.
func WithMessages(success, failure string) Option {
	return func(c *Controller) {
		if success != "" {
			c.success = success
		}
		if failure != "" {
			c.failure = failure
		}
	}
}

// WithAttachments includes the intake's files in submissions and resets it
// together with the form.
func WithAttachments(intake *attachments.Intake) Option {
	return func(c *Controller) {
		c.intake = intake
	}
}

// WithObserver registers a transition observer.
func WithObserver(observer Observer) Option {
	return func(c *Controller) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController wires a controller around a store, its validator and the
// remote that accepts valid submissions.
func NewController(store *formstate.Store, validator *validation.Validator, remote Remote, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		validator: validator,
		remote:    remote,
		success:   store.Form().Metadata["success"],
		failure:   DefaultFailureMessage,
		logger:    zap.NewNop(),
		now:       time.Now,
		state:     StateIdle,
	}
	if c.success == "" {
		c.success = "Submitted successfully!"
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Store exposes the controller's field store.
func (c *Controller) Store() *formstate.Store {
	return c.store
}

// Attachments exposes the attachment intake, nil when the form takes none.
func (c *Controller) Attachments() *attachments.Intake {
	return c.intake
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the values captured at submission time, nil before a
// submission or after a reset.
func (c *Controller) Snapshot() model.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Clone()
}

// Receipt returns the remote's receipt once the submission has succeeded.
func (c *Controller) Receipt() (Receipt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.receipt == nil {
		return Receipt{}, false
	}
	return *c.receipt, true
}

// Submit validates the current values. Invalid values are stored as field
// errors and returned; the controller goes back to idle without calling the
// remote. Valid values start the remote call in the background and Submit
// returns immediately with an empty error map. The remote call is detached
// from ctx cancellation; use Cancel to abort it.
func (c *Controller) Submit(ctx context.Context) (model.FieldErrors, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateSubmitting:
		return nil, ErrBusy
	case StateSucceeded:
		return nil, ErrAlreadySubmitted
	}

	c.transitionLocked(StateValidating)
	values := c.store.Snapshot()
	errs := c.validator.Validate(values)
	if len(errs) > 0 {
		c.store.SetErrors(errs)
		c.transitionLocked(StateFailed)
		c.transitionLocked(StateIdle)
		c.notifyLocked(notify.KindError, c.failure)
		return errs, nil
	}

	c.store.SetErrors(nil)
	c.snapshot = values
	req := Request{OperationID: c.store.Form().OperationID, Values: values.Clone()}
	if c.intake != nil {
		for _, file := range c.intake.Files() {
			req.Attachments = append(req.Attachments, file.Name)
		}
	}
	c.transitionLocked(StateSubmitting)

	task := Start(context.WithoutCancel(ctx), func(taskCtx context.Context) (Receipt, error) {
		return c.remote.Submit(taskCtx, req)
	})
	settled := make(chan struct{})
	c.task = task
	c.settled = settled
	go c.await(task, settled)
	return model.FieldErrors{}, nil
}

func (c *Controller) await(task *Task[Receipt], settled chan struct{}) {
	defer close(settled)
	receipt, err := task.Result()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.task != task {
		return
	}
	c.task = nil
	if err != nil {
		c.logger.Warn("submission failed",
			zap.String("operation", c.store.Form().OperationID),
			zap.Error(err),
		)
		c.snapshot = nil
		c.transitionLocked(StateFailed)
		c.transitionLocked(StateIdle)
		c.notifyLocked(notify.KindError, "Submission failed, please try again")
		return
	}
	c.receipt = &receipt
	c.transitionLocked(StateSucceeded)
	c.notifyLocked(notify.KindSuccess, c.success)
}

// Wait blocks until the pending submission, if any, has settled or ctx ends.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	settled := c.settled
	c.mu.Unlock()
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

// Cancel aborts a pending submission and returns the controller to idle. The
// values stay as they were so the user can submit again. It is a no-op in any
// other state.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateSubmitting || c.task == nil {
		return
	}
	c.task.Cancel()
	c.task = nil
	c.snapshot = nil
	c.transitionLocked(StateIdle)
}

// Reset restores the form to its defaults, clears errors, discards the
// submitted snapshot and empties attachments. It fails with ErrBusy while a
// submission is in flight.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrBusy
	}
	c.store.Reset()
	if c.intake != nil {
		c.intake.Reset()
	}
	c.snapshot = nil
	c.receipt = nil
	if c.state != StateIdle {
		c.transitionLocked(StateIdle)
	}
	return nil
}

// Close cancels any pending submission and releases attachments. The
// controller must not be used afterwards.
func (c *Controller) Close() {
	c.Cancel()
	if c.intake != nil {
		c.intake.Release()
	}
}

func (c *Controller) transitionLocked(to State) {
	t := Transition{
		OperationID: c.store.Form().OperationID,
		From:        c.state,
		To:          to,
		At:          c.now(),
	}
	c.state = to
	c.logger.Debug("submission transition",
		zap.String("operation", t.OperationID),
		zap.String("from", string(t.From)),
		zap.String("to", string(t.To)),
	)
	for _, observer := range c.observers {
		observer(t)
	}
}

func (c *Controller) notifyLocked(kind notify.Kind, message string) {
	if c.notifier == nil || message == "" {
		return
	}
	c.notifier.Push(c.scope, kind, message)
}
