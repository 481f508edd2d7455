package control

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/muurk/homedash/internal/backend"
)

// recordingSender records every command and fails the ones whose position
// is listed in failAt.
type recordingSender struct {
	mu     sync.Mutex
	cmds   []backend.Command
	failAt map[int]error
}

func (s *recordingSender) Send(ctx context.Context, cmd backend.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.cmds)
	s.cmds = append(s.cmds, cmd)
	return s.failAt[i]
}

func (s *recordingSender) Commands() []backend.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backend.Command(nil), s.cmds...)
}

type countingRefresher struct {
	n atomic.Int32
}

func (r *countingRefresher) Trigger() {
	r.n.Add(1)
}

func (r *countingRefresher) Count() int {
	return int(r.n.Load())
}

func bodyJSON(cmd backend.Command) string {
	b, err := json.Marshal(cmd.Body)
	if err != nil {
		return "marshal error: " + err.Error()
	}
	return string(b)
}

func newTestDispatcher(failAt map[int]error) (*Dispatcher, *recordingSender, *countingRefresher) {
	sender := &recordingSender{failAt: failAt}
	refresher := &countingRefresher{}
	return NewDispatcher(sender, refresher, 0), sender, refresher
}
