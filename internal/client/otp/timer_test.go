package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/gatewaytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()              { close(f.stopped) }

type fakeGateway struct {
	forgotErr error
	expiry    time.Time
	expiryErr error
	forgot    []string
}

func (f *fakeGateway) ForgotPassword(_ context.Context, email string) (string, error) {
	f.forgot = append(f.forgot, email)
	if f.forgotErr != nil {
		return "", f.forgotErr
	}
	return "OTP sent to your email", nil
}

func (f *fakeGateway) GetOtpExpiry(context.Context, string) (time.Time, error) {
	return f.expiry, f.expiryErr
}

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	timer  *Timer
	ticker *fakeTicker
	ticks  chan int
}

func newHarness(gw Gateway) *harness {
	h := &harness{ticker: newFakeTicker(), ticks: make(chan int, 1)}
	h.timer = New(gw,
		WithClock(func() time.Time { return epoch }),
		WithTicker(func(time.Duration) Ticker { return h.ticker }),
		OnTick(func(r int) { h.ticks <- r }),
	)
	return h
}

// tick delivers one tick and waits until the timer has applied it.
func (h *harness) tick(t *testing.T) int {
	t.Helper()
	h.ticker.ch <- epoch
	select {
	case r := <-h.ticks:
		return r
	case <-time.After(time.Second):
		t.Fatal("tick not applied")
		return -1
	}
}

func runAsync(ctx context.Context, tm *Timer) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		tm.Run(ctx)
	}()
	return done
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestStart_ComputesRemaining(t *testing.T) {
	h := newHarness(nil)

	h.timer.Start(epoch.Add(30 * time.Second))
	assert.Equal(t, 30, h.timer.Remaining())
	assert.Equal(t, ActionSubmit, h.timer.Action())

	h.timer.Start(epoch.Add(2500 * time.Millisecond))
	assert.Equal(t, 2, h.timer.Remaining(), "fractions round down")
}

func TestStart_ZeroOrPastExpiry(t *testing.T) {
	for _, expiry := range []time.Time{{}, epoch.Add(-time.Minute), epoch} {
		h := newHarness(nil)
		h.timer.Start(expiry)

		assert.Equal(t, 0, h.timer.Remaining())
		assert.True(t, h.timer.Expired())
		assert.Equal(t, ActionResend, h.timer.Action())

		// Nothing to count: Run returns without creating a ticker.
		done := runAsync(context.Background(), h.timer)
		waitClosed(t, done)
	}
}

func TestRun_CountsDownToZeroAndStopsTicker(t *testing.T) {
	h := newHarness(nil)
	h.timer.Start(epoch.Add(30 * time.Second))
	done := runAsync(context.Background(), h.timer)

	for want := 29; want >= 0; want-- {
		assert.Equal(t, want, h.tick(t))
	}

	waitClosed(t, done)
	waitClosed(t, h.ticker.stopped)
	assert.Equal(t, 0, h.timer.Remaining())
	assert.Equal(t, ActionResend, h.timer.Action())
}

func TestStop_NoFurtherChanges(t *testing.T) {
	h := newHarness(nil)
	h.timer.Start(epoch.Add(30 * time.Second))
	done := runAsync(context.Background(), h.timer)

	assert.Equal(t, 29, h.tick(t))
	h.timer.Stop()
	waitClosed(t, done)
	waitClosed(t, h.ticker.stopped)

	select {
	case h.ticker.ch <- epoch:
		t.Fatal("tick consumed after Stop")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, 29, h.timer.Remaining())
}

func TestRun_ContextCancelStops(t *testing.T) {
	h := newHarness(nil)
	h.timer.Start(epoch.Add(10 * time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, h.timer)

	h.tick(t)
	cancel()
	waitClosed(t, done)
	waitClosed(t, h.ticker.stopped)
	assert.Equal(t, 9, h.timer.Remaining())
}

func TestRequestNewExpiry_RestartsCountdown(t *testing.T) {
	gw := &fakeGateway{expiry: epoch.Add(5 * time.Minute)}
	h := newHarness(gw)
	h.timer.Start(epoch.Add(-time.Second))

	msg, err := h.timer.RequestNewExpiry(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "OTP sent to your email", msg)
	assert.Equal(t, []string{"user@example.com"}, gw.forgot)
	assert.Equal(t, 300, h.timer.Remaining())
	assert.Equal(t, "5:00", h.timer.Format())
	assert.Equal(t, ActionSubmit, h.timer.Action())
}

func TestRequestNewExpiry_FailureLeavesState(t *testing.T) {
	boom := errors.New("down")
	for _, gw := range []*fakeGateway{{forgotErr: boom}, {expiryErr: boom}} {
		h := newHarness(gw)
		h.timer.Start(epoch.Add(-time.Second))

		_, err := h.timer.RequestNewExpiry(context.Background(), "user@example.com")
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 0, h.timer.Remaining())
		assert.Equal(t, ActionResend, h.timer.Action())
	}
}

func TestFormat(t *testing.T) {
	h := newHarness(nil)
	for secs, want := range map[int]string{0: "0:00", 9: "0:09", 61: "1:01", 300: "5:00"} {
		h.timer.Start(epoch.Add(time.Duration(secs) * time.Second))
		assert.Equal(t, want, h.timer.Format())
	}
}

// A reset requested against the fake API counts down from five minutes.
func TestRequestNewExpiry_AgainstAPI(t *testing.T) {
	srv := gatewaytest.New()
	t.Cleanup(srv.Close)
	srv.AddUser("user", "user@example.com", "secret1", "")
	srv.SetNow(func() time.Time { return epoch })

	c, err := client.NewHTTPClient(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	h := newHarness(c)
	_, err = h.timer.RequestNewExpiry(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, 300, h.timer.Remaining())

	done := runAsync(context.Background(), h.timer)
	assert.Equal(t, 299, h.tick(t))
	assert.Equal(t, 298, h.tick(t))
	h.timer.Stop()
	waitClosed(t, done)
}
