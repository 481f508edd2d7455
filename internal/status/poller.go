package status

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muurk/homedash/internal/backend"
	"github.com/muurk/homedash/internal/logging"
)

const (
	// DefaultInterval is the regular polling period
	DefaultInterval = 1000 * time.Millisecond

	// DefaultRequestTimeout bounds one fetch, and so the longest run of
	// skipped ticks a hung backend can cause
	DefaultRequestTimeout = 3 * time.Second
)

var (
	// ErrPollerRunning is returned by Start on a running poller
	ErrPollerRunning = errors.New("poller already running")

	// ErrPollerStopped is returned by Start after Stop
	ErrPollerStopped = errors.New("poller stopped")
)

// Fetcher returns the raw /status body. *backend.Client implements it.
type Fetcher interface {
	FetchStatus(ctx context.Context) ([]byte, error)
}

// Stats counts what the poller did since Start.
type Stats struct {
	Fetches   int64 // fetches started
	Failures  int64 // fetches that ended in a recorded error
	Skipped   int64 // ticks dropped because a fetch was in flight
	Triggered int64 // out-of-band fetch requests
}

type pollerState int

const (
	stateIdle pollerState = iota
	stateRunning
	stateStopped
)

// Poller fetches backend status on a fixed period and publishes it to a
// Store.
//
// At most one fetch is in flight at any time. A tick that fires while a
// fetch is pending is dropped. An out-of-band Trigger that arrives while a
// fetch is pending is remembered and run once the pending fetch finishes,
// because that fetch may have started before the command took effect.
type Poller struct {
	fetcher  Fetcher
	store    *Store
	interval time.Duration
	timeout  time.Duration

	now       func() time.Time
	newTicker func(time.Duration) (<-chan time.Time, func())

	inFlight       atomic.Bool
	pendingTrigger atomic.Bool

	fetches   atomic.Int64
	failures  atomic.Int64
	skipped   atomic.Int64
	triggered atomic.Int64

	mu     sync.Mutex
	state  pollerState
	ctx    context.Context
	cancel context.CancelFunc
	loop   sync.WaitGroup
}

// NewPoller creates a poller. Zero interval or timeout select the defaults.
func NewPoller(fetcher Fetcher, store *Store, interval, timeout time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Poller{
		fetcher:  fetcher,
		store:    store,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Interval returns the regular polling period.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start fetches once immediately and then on every tick until ctx is done
// or Stop is called. A poller runs at most once.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateRunning:
		return ErrPollerRunning
	case stateStopped:
		return ErrPollerStopped
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.state = stateRunning

	ticks, stopTicker := p.newTicker(p.interval)

	p.loop.Add(1)
	go func() {
		defer p.loop.Done()
		defer stopTicker()
		p.run(p.ctx, ticks)
	}()

	return nil
}

func (p *Poller) run(ctx context.Context, ticks <-chan time.Time) {
	p.tryFetch(ctx, "start")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			p.tryFetch(ctx, "tick")
		}
	}
}

// Trigger requests an immediate out-of-band fetch. It does not move the
// regular schedule. Trigger on a poller that is not running is a no-op.
func (p *Poller) Trigger() {
	p.mu.Lock()
	ctx, running := p.ctx, p.state == stateRunning
	p.mu.Unlock()
	if !running {
		return
	}

	p.triggered.Add(1)
	p.runTrigger(ctx)
}

// runTrigger starts a triggered fetch now, or parks it until the fetch in
// flight completes. Parked triggers coalesce into one fetch.
func (p *Poller) runTrigger(ctx context.Context) {
	if p.tryFetch(ctx, "trigger") {
		return
	}
	p.pendingTrigger.Store(true)
	// The in-flight fetch may have finished between the failed attempt and
	// the flag being set; pick the trigger up here if so.
	if !p.inFlight.Load() && p.pendingTrigger.CompareAndSwap(true, false) {
		p.runTrigger(ctx)
	}
}

// tryFetch starts a fetch unless one is already in flight.
func (p *Poller) tryFetch(ctx context.Context, reason string) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		if reason == "tick" {
			p.skipped.Add(1)
			logging.LogPollSkipped(reason)
		}
		return false
	}

	p.fetches.Add(1)
	go func() {
		p.fetchOnce(ctx, reason)
		p.inFlight.Store(false)

		if p.pendingTrigger.CompareAndSwap(true, false) {
			p.runTrigger(ctx)
		}
	}()
	return true
}

func (p *Poller) fetchOnce(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := p.now()
	body, err := p.fetcher.FetchStatus(reqCtx)

	var snap *Snapshot
	if err == nil {
		snap, err = DecodeSnapshot(body, p.now())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Results that resolve after Stop, or after the parent context ended,
	// are dropped.
	if p.state != stateRunning || ctx.Err() != nil {
		return
	}

	logging.LogPoll(reason, p.now().Sub(start), err)

	if err != nil {
		if backend.IsCanceled(err) {
			return
		}
		p.failures.Add(1)
		p.store.Fail(err)
		return
	}

	p.store.Replace(snap)
}

// Stop cancels the schedule and any in-flight fetch. Results arriving after
// Stop returns are discarded. Stop is idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.state != stateRunning {
		p.state = stateStopped
		p.mu.Unlock()
		return
	}
	p.state = stateStopped
	p.cancel()
	p.mu.Unlock()

	p.loop.Wait()
}

// Running reports whether the poller is between Start and Stop.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateRunning
}

// Stats returns a copy of the poller counters.
func (p *Poller) Stats() Stats {
	return Stats{
		Fetches:   p.fetches.Load(),
		Failures:  p.failures.Load(),
		Skipped:   p.skipped.Load(),
		Triggered: p.triggered.Load(),
	}
}
