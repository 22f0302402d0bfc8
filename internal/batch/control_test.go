package batch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignalDefaults(t *testing.T) {
	sig := newSignal()
	assert.False(t, sig.Paused())
	assert.False(t, sig.Cancelled())

	// AwaitResume returns immediately when not paused.
	done := make(chan struct{})
	go func() {
		sig.AwaitResume()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AwaitResume blocked on an unpaused signal")
	}
}

func TestSignalPauseResume(t *testing.T) {
	sig := newSignal()
	sig.SetPaused(true)
	assert.True(t, sig.Paused())

	resumed := make(chan struct{})
	go func() {
		sig.AwaitResume()
		close(resumed)
	}()

	select {
	case <-resumed:
		t.Fatal("AwaitResume returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	sig.SetPaused(false)
	select {
	case <-resumed:
	case <-time.After(time.Second):
		t.Fatal("AwaitResume did not observe the resume")
	}
}

func TestSignalCancelReleasesPause(t *testing.T) {
	sig := newSignal()
	sig.SetPaused(true)

	released := make(chan struct{})
	go func() {
		sig.AwaitResume()
		close(released)
	}()

	sig.Cancel()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Cancel must release a paused waiter")
	}
	assert.True(t, sig.Cancelled())
}

func TestSignalPauseAfterCancelIsNoop(t *testing.T) {
	sig := newSignal()
	sig.Cancel()
	sig.SetPaused(true)
	assert.False(t, sig.Paused(), "pausing a cancelled batch must be a no-op")
}

func TestSignalCancelIsIdempotent(t *testing.T) {
	sig := newSignal()
	sig.Cancel()
	sig.Cancel() // must not panic on double close

	select {
	case <-sig.CancelChan():
	default:
		t.Fatal("CancelChan should be closed after Cancel")
	}
}
