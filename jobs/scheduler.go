package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a unit of scheduled work
type Job interface {
	Run()
}

const (
	CacheCleanupSchedule      = "@every 30m"
	AnalysisRetentionSchedule = "0 3 * * *"
)

// Scheduler runs background jobs on cron schedules
type Scheduler struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		entries: make(map[string]cron.EntryID),
	}
}

// Add schedules job under name using a standard five-field expression or an @descriptor
func (s *Scheduler) Add(name, schedule string, job Job) error {
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %q already scheduled", name)
	}

	entryID, err := s.cron.AddJob(schedule, job)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", schedule, name, err)
	}
	s.entries[name] = entryID

	logrus.WithFields(logrus.Fields{
		"component": "Scheduler",
		"job":       name,
		"schedule":  schedule,
	}).Info("Scheduled job")
	return nil
}

// Names returns the scheduled job names
func (s *Scheduler) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logrus.WithFields(logrus.Fields{
		"component": "Scheduler",
		"jobs":      len(s.entries),
	}).Info("Scheduler started")
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.WithField("component", "Scheduler").Info("Scheduler stopped")
}
