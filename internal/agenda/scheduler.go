package agenda

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// SessionCleaner removes expired sign-in tokens.
type SessionCleaner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Scheduler runs the periodic jobs: the minute tick that refreshes the
// status line and fires reminders, and the hourly token cleanup.
type Scheduler struct {
	cron     *cron.Cron
	registry *Registry
	cleaner  SessionCleaner

	tickID cron.EntryID
}

// NewScheduler creates a scheduler for the sessions of registry. cleaner may
// be nil.
func NewScheduler(registry *Registry, cleaner SessionCleaner) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		registry: registry,
		cleaner:  cleaner,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	log.Println("Starting calendar scheduler...")

	id, err := s.cron.AddFunc("0 * * * * *", func() {
		s.registry.Tick(time.Now())
	})
	if err != nil {
		return err
	}
	s.tickID = id

	if s.cleaner != nil {
		if _, err := s.cron.AddFunc("@every 1h", s.cleanupSessions); err != nil {
			return err
		}
	}

	s.cron.Start()
	log.Printf("Calendar scheduler started (%d live sessions)", s.registry.Len())
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	log.Println("Stopping calendar scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Calendar scheduler stopped")
}

// NextTick returns the next scheduled minute tick, if the scheduler runs.
func (s *Scheduler) NextTick() *time.Time {
	entry := s.cron.Entry(s.tickID)
	if entry.Next.IsZero() {
		return nil
	}
	return &entry.Next
}

func (s *Scheduler) cleanupSessions() {
	n, err := s.cleaner.DeleteExpired(context.Background())
	if err != nil {
		log.Printf("Failed to delete expired sessions: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Deleted %d expired sessions", n)
	}
}
