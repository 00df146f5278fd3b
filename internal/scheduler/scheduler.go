package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/home-dashboard-aggregation/internal/store"
)

// probeTimeout bounds a single probe run.
const probeTimeout = 30 * time.Second

// Prober is an upstream that can be checked for reachability.
type Prober interface {
	Name() string
	Probe(ctx context.Context) error
}

// Scheduler periodically probes the configured upstreams and records the results.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     *store.MemoryStore
	probers   []Prober
	interval  time.Duration
	now       func() time.Time
}

// New creates a new Scheduler.
func New(probers []Prober, interval time.Duration, st *store.MemoryStore) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		store:     st,
		probers:   probers,
		interval:  interval,
		now:       time.Now,
	}
}

// Start schedules the periodic probe job and starts the underlying scheduler.
// A non-positive interval disables probing.
func (s *Scheduler) Start() error {
	if len(s.probers) == 0 || s.interval <= 0 {
		slog.Info("scheduler: upstream probing disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce probes every upstream concurrently and stores one result each.
func (s *Scheduler) RunOnce(ctx context.Context) {
	var wg sync.WaitGroup
	for _, p := range s.probers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			start := s.now()
			err := p.Probe(ctx)
			result := store.ProbeResult{
				Upstream:  p.Name(),
				OK:        err == nil,
				LatencyMs: s.now().Sub(start).Milliseconds(),
				CheckedAt: start.UTC(),
			}
			if err != nil {
				result.Error = err.Error()
				slog.Warn("scheduler: upstream probe failed", "upstream", p.Name(), "error", err)
			}
			s.store.Save(result)
		}()
	}
	wg.Wait()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
