// Package scheduler runs enabled backup schedules inside the server
// process using cron expressions, so monthly schedules fire on the
// configured calendar day rather than a fixed interval.
package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jmartens/shopvault/internal/core/repository"
	"github.com/jmartens/shopvault/internal/core/service"
)

type Scheduler struct {
	scheduleRepo repository.ScheduleRepository
	scheduleServ *service.ScheduleService
	log          *logrus.Entry

	mu   sync.Mutex
	cron *cron.Cron
}

func New(scheduleRepo repository.ScheduleRepository, scheduleServ *service.ScheduleService) *Scheduler {
	return &Scheduler{
		scheduleRepo: scheduleRepo,
		scheduleServ: scheduleServ,
		log:          logrus.WithField("component", "scheduler"),
	}
}

// Start loads enabled schedules and begins firing them. Call Rebuild after
// any schedule mutation to pick up changes.
func (s *Scheduler) Start(ctx context.Context) error {
	return s.Rebuild(ctx)
}

// Rebuild replaces the running cron entries with the current enabled
// schedules.
func (s *Scheduler) Rebuild(ctx context.Context) error {
	schedules, err := s.scheduleRepo.FindAllEnabled(ctx)
	if err != nil {
		return err
	}

	c := cron.New()
	for _, schedule := range schedules {
		sched := schedule
		_, err := c.AddFunc(sched.CronExpression(), func() {
			if _, err := s.scheduleServ.TriggerSchedule(context.Background(), sched); err != nil {
				s.log.WithError(err).WithField("schedule_id", sched.ID).
					Error("scheduled backup failed")
			}
		})
		if err != nil {
			s.log.WithError(err).WithField("schedule_id", sched.ID).
				Error("failed to register schedule")
		}
	}

	s.mu.Lock()
	old := s.cron
	s.cron = c
	s.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	c.Start()

	s.log.WithField("schedules", len(schedules)).Info("scheduler rebuilt")
	return nil
}

// Stop halts the cron loop. Running jobs are not interrupted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
	}
}
