// Package trigger fires scheduled jobs such as the council session scrape.
package trigger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bakkerme/feedboard/internal/core"
)

// Event is one schedule tick for a job.
type Event struct {
	JobID     string
	Timestamp time.Time
}

// Cron emits an Event per schedule match. Ticks are dropped while the
// previous one is still unconsumed.
type Cron struct {
	schedule string
	timezone string

	cron   *cron.Cron
	events chan Event
	once   sync.Once
}

func NewCron(schedule, timezone string) *Cron {
	return &Cron{schedule: schedule, timezone: timezone}
}

func (c *Cron) Schedule() string { return c.schedule }

func (c *Cron) Validate() error {
	if c.schedule == "" {
		return fmt.Errorf("cron schedule is required")
	}
	if _, err := cron.ParseStandard(c.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", c.schedule, err)
	}
	if c.timezone != "" {
		if _, err := time.LoadLocation(c.timezone); err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
	}
	return nil
}

// Start begins ticking until ctx is done or Stop is called. The returned
// channel is closed on stop.
func (c *Cron) Start(ctx context.Context, jobID string) (<-chan Event, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	location := time.UTC
	if c.timezone != "" {
		tz, err := time.LoadLocation(c.timezone)
		if err != nil {
			return nil, err
		}
		location = tz
	}

	c.events = make(chan Event, 1)
	c.cron = cron.New(cron.WithLocation(location))
	_, err := c.cron.AddFunc(c.schedule, func() {
		select {
		case c.events <- Event{JobID: jobID, Timestamp: time.Now().UTC()}:
		default:
			core.LoggerFromContext(ctx).Warn("schedule tick dropped, previous run still busy", "job", jobID)
		}
	})
	if err != nil {
		return nil, err
	}

	c.cron.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	return c.events, nil
}

// Stop waits for a running tick to finish. It is safe to call more than once.
func (c *Cron) Stop() {
	c.once.Do(func() {
		if c.cron != nil {
			<-c.cron.Stop().Done()
		}
		if c.events != nil {
			close(c.events)
		}
	})
}

// Run calls job once per tick until ctx is done. Job errors are logged and
// do not stop the schedule.
func Run(ctx context.Context, c *Cron, jobID string, job func(context.Context) error) error {
	events, err := c.Start(ctx, jobID)
	if err != nil {
		return err
	}
	logger := core.LoggerFromContext(ctx)
	logger.Info("schedule started", "job", jobID, "schedule", c.schedule)
	for ev := range events {
		if err := job(ctx); err != nil {
			logger.Error("scheduled job failed", "job", ev.JobID, "error", err)
			continue
		}
		logger.Info("scheduled job finished", "job", ev.JobID, "tick", ev.Timestamp)
	}
	return ctx.Err()
}
