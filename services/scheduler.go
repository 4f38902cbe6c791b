package services

import (
	"attendtrack_go/config"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler owns the background cron jobs: daily class generation for
// current semesters, hourly log flush and a daily log archival. Jobs are
// wrapped with SkipIfStillRunning so a slow run never stacks.
type Scheduler struct {
	cron       *cron.Cron
	generation *ClassGenerationService
	logs       *LogMaintenanceService
}

// NewScheduler creates a new scheduler instance
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		generation: NewClassGenerationService(),
		logs:       NewLogMaintenanceService(),
	}
}

// Start registers the jobs and starts the cron loop. Generation only runs
// when AUTO_GENERATE_DAILY is enabled; log jobs always run.
func (s *Scheduler) Start() error {
	if config.AppConfig.AutoGenerateDaily {
		spec := config.AppConfig.DailyGenerateCron
		if _, err := s.cron.AddFunc(spec, s.generation.GenerateDailyForCurrentSemesters); err != nil {
			return err
		}
		logrus.WithField("schedule", spec).Info("Daily class generation scheduled")
	}

	if _, err := s.cron.AddFunc("@hourly", func() {
		if err := s.logs.FlushCachedLogs(); err != nil {
			logrus.WithError(err).Warn("Activity log flush failed")
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("30 3 * * *", func() {
		if err := s.logs.ArchiveOldLogs(30); err != nil {
			logrus.WithError(err).Warn("Activity log archival failed")
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop, waiting for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
