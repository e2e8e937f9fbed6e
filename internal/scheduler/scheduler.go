package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// RefitFunc reloads the dataset source if needed and re-runs the model fits.
type RefitFunc func(ctx context.Context) error

// Scheduler periodically re-fits the per-city forecasting models so a
// republished dataset is picked up without restarting the service.
type Scheduler struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	refit     RefitFunc
}

// New creates a new Scheduler. An interval of zero disables periodic refits.
func New(interval time.Duration, refit RefitFunc) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		interval:  interval,
		refit:     refit,
	}
}

// Start schedules the periodic refit job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: periodic refit disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running refit job")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := s.refit(ctx); err != nil {
			log.Printf("scheduler: refit failed: %v", err)
			return
		}
		log.Println("scheduler: completed refit job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
