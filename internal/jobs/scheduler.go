package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"guitarworks/api/internal/events"
)

// Scheduler enqueues periodic maintenance onto the auth event stream; the
// worker does the actual work.
type Scheduler struct {
	cron      *cron.Cron
	publisher events.Publisher
	schedule  string
	log       zerolog.Logger
}

func NewScheduler(publisher events.Publisher, schedule string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:      c,
		publisher: publisher,
		schedule:  schedule,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.publisher == nil || s.schedule == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.enqueueSweep); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits up to timeout for a running enqueue.
func (s *Scheduler) Stop(timeout time.Duration) {
	select {
	case <-s.cron.Stop().Done():
	case <-time.After(timeout):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := events.New(events.SessionSweep, 0, "")
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Error().Err(err).Msg("enqueue session sweep failed")
		return
	}
	s.log.Debug().Str("event_id", event.ID).Msg("session sweep enqueued")
}
