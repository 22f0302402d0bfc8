package batch

import "sync"

// Signal is the batch-scoped pause/cancel state: written by the caller's
// thread (GUI or CLI), read by the batch worker. The two facets are
// independent — cancel always wins over pause so a paused batch can still
// be cancelled.
type Signal struct {
	mu        sync.Mutex
	paused    bool
	cancelled bool
	resumeCh  chan struct{} // closed on resume; replaced on each pause
	cancelCh  chan struct{} // closed exactly once on cancel
}

func newSignal() *Signal {
	resumed := make(chan struct{})
	close(resumed)
	return &Signal{
		resumeCh: resumed,
		cancelCh: make(chan struct{}),
	}
}

// SetPaused toggles the paused facet. Pausing after cancellation has no
// effect.
func (s *Signal) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || s.paused == paused {
		return
	}
	s.paused = paused
	if paused {
		s.resumeCh = make(chan struct{})
	} else {
		close(s.resumeCh)
	}
}

// Cancel sets the cancelled facet and releases any pause waiters.
func (s *Signal) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	s.cancelled = true
	close(s.cancelCh)
	if s.paused {
		s.paused = false
		close(s.resumeCh)
	}
}

// Paused reports the paused facet.
func (s *Signal) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Cancelled reports the cancelled facet.
func (s *Signal) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// CancelChan returns a channel closed when the batch is cancelled.
func (s *Signal) CancelChan() <-chan struct{} {
	return s.cancelCh
}

// AwaitResume blocks without consuming CPU until the signal is unpaused or
// cancelled. Returns immediately when not paused.
func (s *Signal) AwaitResume() {
	for {
		s.mu.Lock()
		if !s.paused || s.cancelled {
			s.mu.Unlock()
			return
		}
		resume := s.resumeCh
		s.mu.Unlock()

		select {
		case <-resume:
		case <-s.cancelCh:
		}
	}
}
