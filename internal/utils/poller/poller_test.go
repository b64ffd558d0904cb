package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNudgeTriggersImmediatePoll(t *testing.T) {
	polled := make(chan struct{}, 1)
	p := NewPoller(time.Hour, func(ctx context.Context) error {
		select {
		case polled <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Start(ctx)

	p.Nudge()

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("nudge did not trigger a poll before the ticker interval")
	}
}

// Nudges arrive from the stats watcher goroutine while the ticker drives its
// own polls; both must funnel into the single poller goroutine so the poll
// method never runs concurrently with itself.
func TestScheduledAndNudgedPollsNeverOverlap(t *testing.T) {
	var (
		inFlight   atomic.Int32
		overlapped atomic.Bool
		polls      atomic.Int32
	)
	p := NewPoller(5*time.Millisecond, func(ctx context.Context) error {
		if inFlight.Add(1) > 1 {
			overlapped.Store(true)
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		polls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				p.Nudge()
				time.Sleep(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return polls.Load() > 0 }, time.Second, time.Millisecond)
	assert.False(t, overlapped.Load(), "poll method ran concurrently with itself")
}

func TestNudgePendingIsCoalesced(t *testing.T) {
	// No Start loop draining the channel: every nudge past the first must
	// return immediately instead of blocking the watcher goroutine.
	p := NewPoller(time.Hour, func(ctx context.Context) error { return nil })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			p.Nudge()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nudge blocked with no poller draining it")
	}
}
