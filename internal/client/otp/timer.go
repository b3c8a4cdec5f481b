// Package otp tracks the countdown for an outstanding one-time password.
// The count is only a projection of the server's expiry; the server still
// decides whether a code is valid.
package otp

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type Action int

const (
	// ActionSubmit: a code may still be entered.
	ActionSubmit Action = iota
	// ActionResend: the countdown is over, a new code must be requested.
	ActionResend
)

func (a Action) String() string {
	if a == ActionSubmit {
		return "submit"
	}
	return "resend"
}

// Gateway requests a fresh code and reports its expiry.
type Gateway interface {
	ForgotPassword(ctx context.Context, email string) (string, error)
	GetOtpExpiry(ctx context.Context, email string) (time.Time, error)
}

// Ticker is the subset of *time.Ticker the timer uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ *time.Ticker }

func (t realTicker) C() <-chan time.Time { return t.Ticker.C }

type Timer struct {
	gw        Gateway
	now       func() time.Time
	newTicker func(time.Duration) Ticker
	onTick    func(remaining int)

	mu        sync.Mutex
	expiry    time.Time
	remaining int
	running   bool
	cancel    context.CancelFunc
}

type Option func(*Timer)

func WithClock(now func() time.Time) Option {
	return func(t *Timer) { t.now = now }
}

func WithTicker(fn func(time.Duration) Ticker) Option {
	return func(t *Timer) { t.newTicker = fn }
}

// OnTick registers fn to be called after every decrement.
func OnTick(fn func(remaining int)) Option {
	return func(t *Timer) { t.onTick = fn }
}

func New(gw Gateway, opts ...Option) *Timer {
	t := &Timer{
		gw:  gw,
		now: time.Now,
		newTicker: func(d time.Duration) Ticker {
			return realTicker{time.NewTicker(d)}
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start sets the countdown from expiry. A zero or past expiry leaves nothing
// to count down.
func (t *Timer) Start(expiry time.Time) {
	remaining := 0
	if !expiry.IsZero() {
		if d := expiry.Sub(t.now()); d > 0 {
			remaining = int(d / time.Second)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.expiry = expiry
	t.remaining = remaining
}

// Run decrements the countdown once per second until it reaches zero, ctx
// is cancelled or Stop is called. It returns at once when the countdown is
// already zero or another Run is active.
func (t *Timer) Run(ctx context.Context) {
	t.mu.Lock()
	if t.running || t.remaining == 0 {
		t.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.running = true
	t.cancel = cancel
	t.mu.Unlock()

	tk := t.newTicker(time.Second)
	defer func() {
		tk.Stop()
		cancel()
		t.mu.Lock()
		t.running = false
		t.cancel = nil
		t.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C():
			t.mu.Lock()
			if ctx.Err() != nil {
				t.mu.Unlock()
				return
			}
			if t.remaining > 0 {
				t.remaining--
			}
			left := t.remaining
			t.mu.Unlock()

			if t.onTick != nil {
				t.onTick(left)
			}
			if left == 0 {
				return
			}
		}
	}
}

// Stop ends a running countdown. The remaining count stays where it was.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
}

func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) Expiry() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expiry
}

func (t *Timer) Expired() bool {
	return t.Remaining() == 0
}

func (t *Timer) Action() Action {
	if t.Expired() {
		return ActionResend
	}
	return ActionSubmit
}

// Format renders the remaining time as m:ss.
func (t *Timer) Format() string {
	r := t.Remaining()
	return fmt.Sprintf("%d:%02d", r/60, r%60)
}

// RequestNewExpiry asks the server for a new code for email and restarts the
// countdown from its expiry. On failure the timer is left as it was.
func (t *Timer) RequestNewExpiry(ctx context.Context, email string) (string, error) {
	msg, err := t.gw.ForgotPassword(ctx, email)
	if err != nil {
		return "", err
	}
	expiry, err := t.gw.GetOtpExpiry(ctx, email)
	if err != nil {
		return "", err
	}
	t.Start(expiry)
	return msg, nil
}
