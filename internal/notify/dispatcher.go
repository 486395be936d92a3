package notify

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

// Delivery outcomes reported to the recorder.
const (
	OutcomeSent    = "sent"
	OutcomeTimeout = "timeout"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Recorder observes notification outcomes. *metrics.ServiceMetrics implements it.
type Recorder interface {
	ObserveNotification(kind, outcome string)
}

// Dispatcher sends notifications in the background with a bounded timeout.
// Failures are logged and dropped; the caller never waits on delivery.
type Dispatcher struct {
	sender   Sender
	timeout  time.Duration
	logger   *logging.Logger
	recorder Recorder
	wg       sync.WaitGroup
}

func NewDispatcher(sender Sender, timeout time.Duration, recorder Recorder, logger *logging.Logger) *Dispatcher {
	if sender == nil {
		panic("notify: sender required")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{sender: sender, timeout: timeout, logger: logger, recorder: recorder}
}

// Dispatch starts delivery and returns immediately. The request context's
// values are kept but its cancellation is not, so the send outlives the
// request that triggered it.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) {
	if n.Phone == "" {
		d.logger.Warn("notification skipped: patient has no phone", "kind", n.Kind)
		d.observe(n.Kind, OutcomeSkipped)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		err := d.sender.Send(sendCtx, n.Phone, n.Message)
		switch {
		case err == nil:
			d.logger.Info("notification handed to relay", "kind", n.Kind)
			d.observe(n.Kind, OutcomeSent)
		case isTimeout(err):
			// The relay may still be delivering.
			d.logger.Info("notification relay timed out, treating as delivered", "kind", n.Kind)
			d.observe(n.Kind, OutcomeTimeout)
		default:
			d.logger.Error("notification failed", "kind", n.Kind, "error", err)
			d.observe(n.Kind, OutcomeFailed)
		}
	}()
}

// Wait blocks until in-flight sends finish or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) observe(kind Kind, outcome string) {
	if d.recorder != nil {
		d.recorder.ObserveNotification(string(kind), outcome)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
