package submission

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/sqids/sqids-go"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/model"
)

const referenceAlphabet = "K7QZ3WXN9V2TRMHJ8BC5PYDG4F6L"

// Receipt is what a successful remote call hands back.
type Receipt struct {
	Reference   string       `json:"reference"`
	OperationID string       `json:"operationId"`
	SubmittedAt time.Time    `json:"submittedAt"`
	Values      model.Values `json:"values"`
	Attachments []string     `json:"attachments,omitempty"`
}

// Request is the payload passed to a Remote.
type Request struct {
	OperationID string
	Values      model.Values
	Attachments []string
}

// Remote performs the submission call.
type Remote interface {
	Submit(ctx context.Context, req Request) (Receipt, error)
}

// Delay yields how long one simulated call takes.
type Delay func() time.Duration

// FixedDelay always waits d.
func FixedDelay(d time.Duration) Delay {
	return func() time.Duration { return d }
}

// RandomDelay waits a uniformly random duration in [lo, hi).
func RandomDelay(lo, hi time.Duration) Delay {
	if hi <= lo {
		return FixedDelay(lo)
	}
	return func() time.Duration {
		return lo + rand.N(hi-lo)
	}
}

// Simulated is a stand-in backend that waits for its delay and always
// succeeds unless the context is cancelled first.
type Simulated struct {
	delay  Delay
	now    func() time.Time
	codes  *sqids.Sqids
	seq    atomic.Uint64
	logger *zap.Logger
}

// NewSimulated returns a simulated remote. A nil delay means no wait.
func NewSimulated(delay Delay, logger *zap.Logger) (*Simulated, error) {
	if delay == nil {
		delay = FixedDelay(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	codes, err := sqids.New(sqids.Options{
		Alphabet:  referenceAlphabet,
		MinLength: 8,
	})
	if err != nil {
		return nil, fmt.Errorf("submission: reference encoder: %w", err)
	}
	return &Simulated{delay: delay, now: time.Now, codes: codes, logger: logger}, nil
}

// Submit waits for the configured delay and returns a receipt.
func (s *Simulated) Submit(ctx context.Context, req Request) (Receipt, error) {
	wait := s.delay()
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	case <-timer.C:
	}

	now := s.now()
	ref, err := s.codes.Encode([]uint64{s.seq.Add(1), uint64(now.Unix())})
	if err != nil {
		return Receipt{}, fmt.Errorf("submission: encode reference: %w", err)
	}
	s.logger.Debug("simulated submission accepted",
		zap.String("operation", req.OperationID),
		zap.String("reference", ref),
		zap.Duration("delay", wait),
	)
	return Receipt{
		Reference:   ref,
		OperationID: req.OperationID,
		SubmittedAt: now,
		Values:      req.Values.Clone(),
		Attachments: append([]string(nil), req.Attachments...),
	}, nil
}
