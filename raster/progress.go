package raster

import "sync"

// Progress receives the completion fraction of a long-running pass.
// A nil Progress ignores every report.
type Progress func(fraction float64)

// Window returns a Progress that maps [0,1] linearly onto [lo,hi] before
// forwarding to p, so several passes can share a single progress range.
func (p Progress) Window(lo, hi float64) Progress {
	if p == nil {
		return nil
	}
	return func(v float64) {
		p(Remap(v, 0, 1, lo, hi))
	}
}

// Remap maps value from the range [a,b] onto [c,d].
func Remap(value, a, b, c, d float64) float64 {
	return c + (value-a)*(d-c)/(b-a)
}

func (p Progress) report(done, total int) {
	if p == nil || total <= 0 {
		return
	}
	p(float64(done) / float64(total))
}

// rowCounter serialises progress reports coming from concurrent row workers.
type rowCounter struct {
	mu       sync.Mutex
	done     int
	total    int
	progress Progress
}

func (rc *rowCounter) rowDone() {
	if rc.progress == nil {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.done++
	rc.progress.report(rc.done, rc.total)
}
