package order

import (
	"time"

	"swap-resolver-go/infrastructure/logger"
	"swap-resolver-go/metrics"
)

// Sweeper runs the expiry sweep on a fixed interval. It is the only
// component that transitions orders due to the passage of time alone,
// and it never blocks on price sources.
type Sweeper struct {
	mgr      *Manager
	interval time.Duration
	clock    Clock
	log      *logger.Logger

	stopChan chan struct{}
	doneChan chan struct{}
}

// NewSweeper creates a sweeper over mgr. Interval defaults to 5s.
func NewSweeper(mgr *Manager, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Sweeper{
		mgr:      mgr,
		interval: interval,
		clock:    NowUTC,
		log:      log,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	go s.run()
}

// Stop terminates the loop and waits for it to finish.
func (s *Sweeper) Stop() {
	close(s.stopChan)
	<-s.doneChan
}

func (s *Sweeper) run() {
	defer close(s.doneChan)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			started := time.Now()
			expired := s.mgr.SweepExpired(s.clock.Now())
			metrics.SweepDuration.Observe(time.Since(started).Seconds())
			if expired > 0 {
				s.log.LogOrder("sweep_completed", "", map[string]interface{}{"expired": expired})
			}
		}
	}
}
