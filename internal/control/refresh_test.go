package control

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/homedash/internal/backend"
	"github.com/muurk/homedash/internal/status"
)

// timedFetcher records when each status fetch started
type timedFetcher struct {
	mu    sync.Mutex
	times []time.Time
}

func (f *timedFetcher) FetchStatus(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	f.times = append(f.times, time.Now())
	f.mu.Unlock()
	return []byte(`{"alarm_on": true}`), nil
}

func (f *timedFetcher) Times() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.times...)
}

type okSender struct{}

func (okSender) Send(ctx context.Context, cmd backend.Command) error { return nil }

// A successful command fetches once out of band and leaves the regular
// schedule alone. Runs without logging.Initialize, with poll and command
// logging on separate goroutines.
func TestDispatcherRefreshesRealPoller(t *testing.T) {
	const interval = 400 * time.Millisecond

	fetcher := &timedFetcher{}
	store := status.NewStore()
	poller := status.NewPoller(fetcher, store, interval, time.Second)
	d := NewDispatcher(okSender{}, poller, 0)

	start := time.Now()
	require.NoError(t, poller.Start(context.Background()))
	t.Cleanup(poller.Stop)

	require.Eventually(t, func() bool { return len(fetcher.Times()) == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(interval / 2)
	require.NoError(t, d.AlarmOn(context.Background()))

	require.Eventually(t, func() bool { return len(fetcher.Times()) == 2 }, interval/4, 5*time.Millisecond,
		"command should fetch before the next tick")

	require.Eventually(t, func() bool { return len(fetcher.Times()) == 3 }, interval, 5*time.Millisecond)
	times := fetcher.Times()

	// The tick after the command still fires on the original schedule
	assert.Less(t, times[2].Sub(start), interval+interval/3)

	stats := poller.Stats()
	assert.Equal(t, int64(1), stats.Triggered)
	assert.Equal(t, int64(0), stats.Failures)
	assert.True(t, store.Current().AlarmOn)
}
