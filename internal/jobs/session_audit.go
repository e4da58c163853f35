package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"zia/internal/metrics"
	"zia/internal/session"
	"zia/internal/utils"
)

// SessionAuditJob reports how many interview sessions are open and how old
// the oldest one is. Sessions are never expired here.
type SessionAuditJob struct {
	store    *session.Store
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

// AuditReport is one snapshot of the session store
type AuditReport struct {
	Active       int           `json:"active"`
	OldestUserID string        `json:"oldest_user_id,omitempty"`
	OldestAge    time.Duration `json:"oldest_age"`
}

func NewSessionAuditJob(store *session.Store, schedule string, logger *zap.Logger) *SessionAuditJob {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &SessionAuditJob{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

func (j *SessionAuditJob) Start() error {
	if j.schedule == "" {
		j.logger.Info("session audit disabled")
		return nil
	}
	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunAudit() }); err != nil {
		return fmt.Errorf("failed to schedule session audit: %w", err)
	}
	j.cron.Start()
	j.logger.Info("session audit started", zap.String("schedule", j.schedule))
	return nil
}

func (j *SessionAuditJob) Stop() {
	<-j.cron.Stop().Done()
}

func (j *SessionAuditJob) RunAudit() AuditReport {
	report := AuditReport{Active: j.store.Count()}
	if oldest, ok := j.store.Oldest(); ok {
		report.OldestUserID = oldest.UserID
		report.OldestAge = j.store.Now().Sub(oldest.StartTime)
	}

	metrics.SetActiveSessions(report.Active)
	j.logger.Info("interview session audit",
		zap.Int("active", report.Active),
		zap.String("oldest_user_id", report.OldestUserID),
		zap.Duration("oldest_age", report.OldestAge))

	return report
}
