// Package wiggle runs the periodic alternation between the two views of a
// stereo pair.
package wiggle

import (
	"context"
	"sync"
	"time"
)

// Wiggler flips a turn flag once per interval and reports every flip. At
// most one alternation runs at a time.
type Wiggler struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start stops any running alternation and starts a new one with turn reset
// to false. redraw is called from the alternation goroutine with the new
// turn after each interval. The alternation ends when ctx is done or Stop
// is called. A delay below a millisecond is raised to one.
func (w *Wiggler) Start(ctx context.Context, delay time.Duration, redraw func(turn bool)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stop()

	delay = max(delay, time.Millisecond)
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.cancel, w.done = cancel, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(delay)
		defer ticker.Stop()

		turn := false
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			// a stop racing with the tick wins
			if ctx.Err() != nil {
				return
			}
			turn = !turn
			redraw(turn)
		}
	}()
}

// Stop ends the running alternation, if any, and waits for it: no redraw
// happens once Stop returns. Stop must not be called from redraw.
func (w *Wiggler) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stop()
}

// Running reports whether an alternation is active.
func (w *Wiggler) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done == nil {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

func (w *Wiggler) stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.cancel, w.done = nil, nil
}
