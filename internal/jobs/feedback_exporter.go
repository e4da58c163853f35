package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"zia/internal/feedback"
	"zia/internal/utils"
)

// FeedbackExporterJob periodically writes positively rated answers to JSONL files
type FeedbackExporterJob struct {
	feedbackManager *feedback.FeedbackManager
	config          *ExporterConfig
	cron            *cron.Cron
	logger          *zap.Logger
	now             func() time.Time
}

type ExporterConfig struct {
	Schedule      string // cron schedule, e.g. "0 2 * * *" for 2 AM daily
	ExportDir     string
	ExportEnabled bool
}

// ExportResult describes one export run
type ExportResult struct {
	Records  int    `json:"records"`
	Positive int    `json:"positive"`
	File     string `json:"file,omitempty"`
}

func NewFeedbackExporterJob(feedbackManager *feedback.FeedbackManager, config *ExporterConfig, logger *zap.Logger) *FeedbackExporterJob {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &FeedbackExporterJob{
		feedbackManager: feedbackManager,
		config:          config,
		cron:            cron.New(),
		logger:          logger,
		now:             time.Now,
	}
}

func (fej *FeedbackExporterJob) Start() error {
	if !fej.config.ExportEnabled {
		fej.logger.Info("feedback export is disabled, skipping scheduler")
		return nil
	}

	_, err := fej.cron.AddFunc(fej.config.Schedule, func() {
		if _, err := fej.RunExport(); err != nil {
			fej.logger.Error("export job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	fej.cron.Start()
	fej.logger.Info("feedback exporter started", zap.String("schedule", fej.config.Schedule))

	return nil
}

func (fej *FeedbackExporterJob) Stop() {
	if fej.cron != nil {
		<-fej.cron.Stop().Done()
		fej.logger.Info("feedback exporter stopped")
	}
}

// RunExport performs a single export run. Negative ratings are marked exported
// without being written so they are not revisited.
func (fej *FeedbackExporterJob) RunExport() (*ExportResult, error) {
	records, err := fej.feedbackManager.GetUnexportedFeedback(0)
	if err != nil {
		return nil, fmt.Errorf("failed to get unexported feedback: %w", err)
	}

	result := &ExportResult{Records: len(records)}
	if len(records) == 0 {
		fej.logger.Info("no unexported feedback found")
		return result, nil
	}

	ids := make([]uint, len(records))
	for i, fb := range records {
		ids[i] = fb.ID
		if fb.IsPositive {
			result.Positive++
		}
	}

	if result.Positive > 0 {
		data, err := fej.feedbackManager.ExportToJSONL(records)
		if err != nil {
			return nil, fmt.Errorf("failed to export to JSONL: %w", err)
		}

		if err := os.MkdirAll(fej.config.ExportDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create export directory: %w", err)
		}

		name := fmt.Sprintf("feedback_export_%s.jsonl", fej.now().Format("20060102_150405"))
		result.File = filepath.Join(fej.config.ExportDir, name)

		if err := os.WriteFile(result.File, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write export file: %w", err)
		}
	}

	if err := fej.feedbackManager.MarkAsExported(ids); err != nil {
		return nil, fmt.Errorf("failed to mark as exported: %w", err)
	}

	fej.logger.Info("feedback export finished",
		zap.Int("records", result.Records),
		zap.Int("positive", result.Positive),
		zap.String("file", result.File))

	return result, nil
}
