package scheduler

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"casaora/server/internal/analytics"
	"casaora/server/internal/database"
	"casaora/server/internal/models"
	"casaora/server/internal/telegram"
)

// Scheduler recomputes the portfolio snapshot on a fixed interval,
// persists the result and raises alerts for properties entering the
// critical health state.
type Scheduler struct {
	db           *database.Database
	alerts       *telegram.Service
	logger       *logrus.Logger
	interval     time.Duration
	stopChan     chan struct{}
	wg           sync.WaitGroup
	jobMutex     sync.Mutex // Ensures sequential snapshot runs
	lastCritical map[string]bool
}

// NewScheduler creates a new snapshot scheduler
func NewScheduler(db *database.Database, alerts *telegram.Service, logger *logrus.Logger, interval time.Duration) *Scheduler {
	return &Scheduler{
		db:           db,
		alerts:       alerts,
		logger:       logger,
		interval:     interval,
		stopChan:     make(chan struct{}),
		lastCritical: make(map[string]bool),
	}
}

// Start begins the scheduled snapshot runs
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	// Take a snapshot at startup so the dashboard has data immediately
	s.RunOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce computes, persists and evaluates one portfolio snapshot.
func (s *Scheduler) RunOnce() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	now := time.Now().UTC()

	data, err := s.db.LoadSnapshot()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load snapshot records")
		return
	}

	rows := analytics.BuildPortfolioRows(analytics.SnapshotInput{
		Properties:  data.Properties,
		Units:       data.Units,
		Leases:      data.Leases,
		Tasks:       data.Tasks,
		Collections: data.Collections,
		Index:       analytics.BuildRelationIndex(data.Units, data.Leases),
		Now:         now,
	})
	summary := analytics.BuildPortfolioSummary(rows)

	snapshot := &models.PortfolioSnapshot{
		TakenAt:       now,
		PropertyCount: len(rows),
		Summary:       summary,
	}
	for _, row := range rows {
		switch row.Health {
		case models.HealthCritical:
			snapshot.CriticalCount++
		case models.HealthWatch:
			snapshot.WatchCount++
		}
	}

	if err := s.db.InsertPortfolioSnapshot(snapshot); err != nil {
		s.logger.WithError(err).Error("Failed to persist portfolio snapshot")
	}

	s.notifyNewCriticals(rows)

	s.logger.WithFields(logrus.Fields{
		"properties": snapshot.PropertyCount,
		"critical":   snapshot.CriticalCount,
		"watch":      snapshot.WatchCount,
	}).Info("Portfolio snapshot completed")
}

// notifyNewCriticals alerts only on transitions into critical, so a
// property that stays critical does not alert on every run.
func (s *Scheduler) notifyNewCriticals(rows []models.PortfolioRow) {
	current := make(map[string]bool, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.Health != models.HealthCritical {
			continue
		}
		current[row.ID] = true
		if s.lastCritical[row.ID] {
			continue
		}
		if err := s.alerts.NotifyCriticalProperty(row); err != nil {
			s.logger.WithError(err).WithField("property_id", row.ID).Error("Failed to send critical property alert")
		}
	}
	s.lastCritical = current
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
