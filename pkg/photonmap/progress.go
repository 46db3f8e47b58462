package photonmap

import (
	"sync"
	"time"

	"github.com/df07/go-photonmap/pkg/core"
)

// DefaultReportInterval is the minimum time between two progress reports of one phase
const DefaultReportInterval = time.Second

// Reporter receives photon count progress. Reports are advisory and may
// be dropped.
type Reporter interface {
	ReportPhotonCount(surface, media int)
}

// ReporterFunc adapts a function to the Reporter interface
type ReporterFunc func(surface, media int)

// ReportPhotonCount calls f
func (f ReporterFunc) ReportPhotonCount(surface, media int) {
	f(surface, media)
}

// NewLogReporter returns a Reporter that writes counts to logger
func NewLogReporter(logger core.Logger) Reporter {
	return ReporterFunc(func(surface, media int) {
		logger.Printf("Photons: %d surface, %d media\n", surface, media)
	})
}

// ThrottledReporter forwards at most one report per interval. Reports
// arriving while another is being forwarded are dropped rather than waited on.
type ThrottledReporter struct {
	next     Reporter
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
	sent int
}

// NewThrottledReporter wraps next; a non-positive interval means DefaultReportInterval
func NewThrottledReporter(next Reporter, interval time.Duration) *ThrottledReporter {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	return &ThrottledReporter{next: next, interval: interval, now: time.Now}
}

// ReportPhotonCount forwards the counts when the interval has elapsed
func (r *ThrottledReporter) ReportPhotonCount(surface, media int) {
	if !r.mu.TryLock() {
		return
	}
	defer r.mu.Unlock()

	now := r.now()
	if !r.last.IsZero() && now.Sub(r.last) < r.interval {
		return
	}
	r.last = now
	r.sent++
	r.next.ReportPhotonCount(surface, media)
}

// Sent returns the number of reports forwarded so far
func (r *ThrottledReporter) Sent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}
