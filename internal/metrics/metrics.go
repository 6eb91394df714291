package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Checkout counts checkout outcomes. The zero value is ready to use.
type Checkout struct {
	Attempts  Counter
	Succeeded Counter
	Rejected  Counter
	Failed    Counter

	commits     Counter
	commitNanos Counter
}

// ObserveCommit records one store commit, successful or not. Checkouts that
// never reach the store are not averaged in.
func (c *Checkout) ObserveCommit(d time.Duration) {
	c.commits.Inc()
	c.commitNanos.Add(uint64(d.Nanoseconds()))
}

type CheckoutSnapshot struct {
	Attempts      uint64  `json:"attempts"`
	Succeeded     uint64  `json:"succeeded"`
	Rejected      uint64  `json:"rejected"`
	Failed        uint64  `json:"failed"`
	AvgCommitMsec float64 `json:"avg_commit_ms"`
}

func (c *Checkout) Snapshot() CheckoutSnapshot {
	s := CheckoutSnapshot{
		Attempts:  c.Attempts.Load(),
		Succeeded: c.Succeeded.Load(),
		Rejected:  c.Rejected.Load(),
		Failed:    c.Failed.Load(),
	}
	if commits := c.commits.Load(); commits > 0 {
		s.AvgCommitMsec = float64(c.commitNanos.Load()) / float64(commits) / float64(time.Millisecond)
	}
	return s
}
