package session

import (
	"sync"
	"time"
)

// Ticker is a handle to a recurring callback.
type Ticker interface {
	// Stop cancels future callbacks. It does not wait for a callback that
	// is already running, so a callback may stop its own ticker.
	Stop()
}

// Scheduler runs fn every d until the returned Ticker is stopped.
type Scheduler interface {
	Every(d time.Duration, fn func()) Ticker
}

// NewScheduler returns a Scheduler backed by time.Ticker.
func NewScheduler() Scheduler {
	return clockScheduler{}
}

type clockScheduler struct{}

func (clockScheduler) Every(d time.Duration, fn func()) Ticker {
	t := &clockTicker{t: time.NewTicker(d), done: make(chan struct{})}
	go t.run(fn)
	return t
}

type clockTicker struct {
	t    *time.Ticker
	done chan struct{}
	once sync.Once
}

func (t *clockTicker) run(fn func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.t.C:
			select {
			case <-t.done:
				return
			default:
			}
			fn()
		}
	}
}

func (t *clockTicker) Stop() {
	t.once.Do(func() {
		t.t.Stop()
		close(t.done)
	})
}

// ManualScheduler fires callbacks only when Advance is called. Callbacks run
// synchronously on the caller's goroutine.
type ManualScheduler struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

type manualTicker struct {
	s       *ManualScheduler
	fn      func()
	every   time.Duration
	acc     time.Duration
	stopped bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) Every(d time.Duration, fn func()) Ticker {
	if d <= 0 {
		d = time.Second
	}
	t := &manualTicker{s: m, fn: fn, every: d}
	m.mu.Lock()
	m.tickers = append(m.tickers, t)
	m.mu.Unlock()
	return t
}

func (t *manualTicker) Stop() {
	t.s.mu.Lock()
	t.stopped = true
	t.s.mu.Unlock()
}

// Advance moves the clock forward in one-second steps, firing every ticker
// whose interval has elapsed. Tickers created during a step start counting
// from the next step.
func (m *ManualScheduler) Advance(d time.Duration) {
	for ; d > 0; d -= time.Second {
		step := min(d, time.Second)
		m.mu.Lock()
		live := m.tickers[:0]
		for _, t := range m.tickers {
			if !t.stopped {
				live = append(live, t)
			}
		}
		m.tickers = live
		due := append([]*manualTicker(nil), live...)
		m.mu.Unlock()

		for _, t := range due {
			t.acc += step
			for t.acc >= t.every {
				t.acc -= t.every
				m.mu.Lock()
				stopped := t.stopped
				m.mu.Unlock()
				if stopped {
					break
				}
				t.fn()
			}
		}
	}
}

// Active reports how many tickers have not been stopped.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tickers {
		if !t.stopped {
			n++
		}
	}
	return n
}
