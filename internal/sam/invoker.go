package sam

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/alex-li-fetchai/evitsam-agent/internal/segment"
)

// DefaultTimeout bounds one inference call. The hosted backend runs on GPU
// and typically answers in a few seconds; anything past this is treated as a
// hung call.
const DefaultTimeout = 2 * time.Minute

// Invoker mediates access to a Segmenter. It enforces the single shared
// resource contract: at most `concurrency` inference calls in flight, one
// call per request, a hard deadline per call, and the admission slot is
// released when the call settles no matter how it settled.
type Invoker struct {
	backend     Segmenter
	gate        *semaphore.Weighted
	timeout     time.Duration
	concurrency int64
}

// NewInvoker wraps a backend. Concurrency below one is treated as one, which
// fully serializes calls for a non-reentrant backend. A non-positive timeout
// selects DefaultTimeout.
func NewInvoker(backend Segmenter, concurrency int64, timeout time.Duration) *Invoker {
	if concurrency < 1 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{
		backend:     backend,
		gate:        semaphore.NewWeighted(concurrency),
		timeout:     timeout,
		concurrency: concurrency,
	}
}

// Invoke runs one inference call under the admission gate and timeout.
//
// Cancellation while queued aborts without touching the backend. Once the
// call is dispatched, hitting the per-request deadline yields
// inference_timeout and the underlying call is abandoned via its context;
// best-effort only, but the gate is always released once Segment returns.
// Backend failures pass through with their classification; anything the
// backend reports unclassified becomes inference_error.
func (inv *Invoker) Invoke(ctx context.Context, req *segment.Request, p segment.Params) (*segment.Result, error) {
	if err := inv.gate.Acquire(ctx, 1); err != nil {
		// Caller gave up before a slot opened.
		return nil, err
	}
	defer inv.gate.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	res, err := inv.backend.Segment(callCtx, req, p)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, segment.Errorf(segment.KindInferenceTimeout, "inference exceeded %s", inv.timeout)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if segment.KindOf(err) != "" {
			return nil, err
		}
		return nil, segment.WrapError(segment.KindInferenceError, err, "backend failure")
	}
	return res, nil
}

// Concurrency returns the gate size, for logging at startup.
func (inv *Invoker) Concurrency() int64 {
	return inv.concurrency
}
