package shared

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Pacer inserts a pause between consecutive requests to different sources
type Pacer interface {
	Pause(ctx context.Context)
}

// RandomizedPacer sleeps for a uniformly random duration in [minimumDelay, maximumDelay]
type RandomizedPacer struct {
	minimumDelay time.Duration
	maximumDelay time.Duration
	rng          *rand.Rand
	sleep        func(ctx context.Context, d time.Duration)
	mutex        sync.Mutex // guards rng and pauseCount
	pauseCount   int64
}

// NewRandomizedPacer creates a pacer with the given delay bounds
func NewRandomizedPacer(minimumDelay, maximumDelay time.Duration) *RandomizedPacer {
	if maximumDelay < minimumDelay {
		maximumDelay = minimumDelay
	}
	return &RandomizedPacer{
		minimumDelay: minimumDelay,
		maximumDelay: maximumDelay,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:        sleepContext,
	}
}

// WithSleeper replaces the sleep function, mostly for tests
func (p *RandomizedPacer) WithSleeper(sleep func(ctx context.Context, d time.Duration)) *RandomizedPacer {
	p.sleep = sleep
	return p
}

// NextDelay draws the next pause duration
func (p *RandomizedPacer) NextDelay() time.Duration {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	spread := p.maximumDelay - p.minimumDelay
	if spread <= 0 {
		return p.minimumDelay
	}
	return p.minimumDelay + time.Duration(p.rng.Int63n(int64(spread)+1))
}

// Pause blocks for a randomized delay or until ctx is done
func (p *RandomizedPacer) Pause(ctx context.Context) {
	delay := p.NextDelay()

	p.mutex.Lock()
	p.pauseCount++
	count := p.pauseCount
	p.mutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"component":   "RandomizedPacer",
		"delay":       delay,
		"pause_count": count,
	}).Debug("Pausing between sources")

	p.sleep(ctx, delay)
}

// GetPauseCount returns the number of pauses taken so far
func (p *RandomizedPacer) GetPauseCount() int64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.pauseCount
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
