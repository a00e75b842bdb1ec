package helpers

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// GoroutineSnapshot captures the state of goroutines at a point in time
type GoroutineSnapshot struct {
	Count     int
	Timestamp time.Time
}

// TakeGoroutineSnapshot captures current goroutine count
func TakeGoroutineSnapshot() *GoroutineSnapshot {
	return &GoroutineSnapshot{
		Count:     runtime.NumGoroutine(),
		Timestamp: time.Now(),
	}
}

// WaitForGoroutineCleanup waits for goroutines to clean up, retrying with GC
func WaitForGoroutineCleanup(maxWait time.Duration, targetCount int, tolerance int) (int, error) {
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		current := runtime.NumGoroutine()
		if current-targetCount <= tolerance {
			return current, nil
		}
		runtime.GC()
		time.Sleep(50 * time.Millisecond)
	}

	final := runtime.NumGoroutine()
	return final, fmt.Errorf("goroutines did not clean up within %v: expected %d±%d, got %d",
		maxWait, targetCount, tolerance, final)
}

// startGate releases every waiting goroutine once the last one arrives
type startGate struct {
	start   chan struct{}
	waiting atomic.Int32
	target  int32
	once    sync.Once
}

func (g *startGate) wait() {
	if g.waiting.Add(1) >= g.target {
		g.once.Do(func() { close(g.start) })
	}
	<-g.start
}

// CoordinatedStart runs numOps operations that all begin at the same moment
// and returns the errors they reported.
func CoordinatedStart(numOps int, opFunc func(id int) error) []error {
	gate := &startGate{start: make(chan struct{}), target: int32(numOps)}
	errs := make(chan error, numOps)
	var wg sync.WaitGroup

	wg.Add(numOps)
	for i := range numOps {
		go func(id int) {
			defer wg.Done()
			gate.wait()
			if err := opFunc(id); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	var errList []error
	for err := range errs {
		errList = append(errList, err)
	}
	return errList
}

// PeakTracker records the highest number of simultaneous holders
type PeakTracker struct {
	current atomic.Int32
	peak    atomic.Int32
}

// Enter marks one more holder and returns a func that releases it
func (p *PeakTracker) Enter() func() {
	n := p.current.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	return func() { p.current.Add(-1) }
}

// Peak returns the highest count seen
func (p *PeakTracker) Peak() int {
	return int(p.peak.Load())
}
