package feedback

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"zia/internal/models"
)

var (
	// ErrContextNotFound means the answer was never generated here or its rating window passed
	ErrContextNotFound = errors.New("request context not found or expired")
	ErrAlreadyRated    = errors.New("answer already rated")
)

// FeedbackManager stores ratings of generated answers and exports the good ones
type FeedbackManager struct {
	db           *gorm.DB
	contextCache *ContextCache
	logger       *zap.Logger
	now          func() time.Time
}

// Stats summarises the ratings store
type Stats struct {
	TotalCount      int64            `json:"total_count"`
	PositiveCount   int64            `json:"positive_count"`
	UnexportedCount int64            `json:"unexported_count"`
	CachedContexts  int              `json:"cached_contexts"`
	ByRequestType   map[string]int64 `json:"by_request_type"`
}

func NewFeedbackManager(db *gorm.DB, cacheTTL time.Duration, logger *zap.Logger) *FeedbackManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackManager{
		db:           db,
		contextCache: NewContextCache(cacheTTL),
		logger:       logger,
		now:          time.Now,
	}
}

// Migrate creates or updates the feedback table
func (fm *FeedbackManager) Migrate() error {
	if err := fm.db.AutoMigrate(&models.AIFeedback{}); err != nil {
		return fmt.Errorf("failed to migrate feedback table: %w", err)
	}
	return nil
}

// StoreRequestContext caches a generated answer so it can be rated later
func (fm *FeedbackManager) StoreRequestContext(ctx *models.RequestContext) {
	if ctx.Timestamp.IsZero() {
		ctx.Timestamp = fm.now()
	}
	fm.contextCache.Set(ctx.RequestID, ctx)
	fm.logger.Debug("stored request context",
		zap.String("request_id", ctx.RequestID),
		zap.String("request_type", ctx.RequestType))
}

// SubmitFeedback persists a rating for a cached answer
func (fm *FeedbackManager) SubmitFeedback(requestID string, isPositive bool) error {
	ctx, exists := fm.contextCache.Get(requestID)
	if !exists {
		var count int64
		if err := fm.db.Model(&models.AIFeedback{}).Where("request_id = ?", requestID).Count(&count).Error; err == nil && count > 0 {
			return ErrAlreadyRated
		}
		return fmt.Errorf("%w: %s", ErrContextNotFound, requestID)
	}

	feedback := &models.AIFeedback{
		RequestID:   requestID,
		RequestType: ctx.RequestType,
		Prompt:      ctx.Prompt,
		Response:    ctx.Response,
		IsPositive:  isPositive,
		ModelName:   ctx.Model,
		FeedbackAt:  fm.now(),
		Exported:    false,
	}

	if err := fm.db.Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	fm.contextCache.Delete(requestID)

	fm.logger.Info("stored feedback",
		zap.String("request_id", requestID),
		zap.Bool("positive", isPositive),
		zap.String("request_type", ctx.RequestType))

	return nil
}

// GetUnexportedFeedback returns ratings not yet exported, oldest first
func (fm *FeedbackManager) GetUnexportedFeedback(limit int) ([]models.AIFeedback, error) {
	var feedback []models.AIFeedback

	query := fm.db.Where("exported = ?", false).Order("feedback_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to get unexported feedback: %w", err)
	}

	return feedback, nil
}

func (fm *FeedbackManager) GetFeedbackSince(since time.Time, limit int) ([]models.AIFeedback, error) {
	var feedback []models.AIFeedback

	query := fm.db.Where("feedback_at >= ?", since).Order("feedback_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to get feedback since %v: %w", since, err)
	}

	return feedback, nil
}

func (fm *FeedbackManager) MarkAsExported(feedbackIDs []uint) error {
	if len(feedbackIDs) == 0 {
		return nil
	}

	result := fm.db.Model(&models.AIFeedback{}).
		Where("id IN ?", feedbackIDs).
		Updates(map[string]any{
			"exported":    true,
			"exported_at": fm.now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark feedback as exported: %w", result.Error)
	}

	fm.logger.Info("marked feedback as exported", zap.Int64("rows", result.RowsAffected))
	return nil
}

// ExportToJSONL renders positively rated answers as one training example per line
func (fm *FeedbackManager) ExportToJSONL(feedback []models.AIFeedback) ([]byte, error) {
	var buf bytes.Buffer
	exported := 0

	for _, fb := range feedback {
		if !fb.IsPositive {
			continue
		}

		line, err := json.Marshal(models.TrainingDataPoint{
			Contents: []models.TrainingContent{
				{Role: "user", Parts: []models.TrainingPart{{Text: fb.Prompt}}},
				{Role: "model", Parts: []models.TrainingPart{{Text: fb.Response}}},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal training data: %w", err)
		}

		if exported > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(line)
		exported++
	}

	fm.logger.Info("exported feedback to JSONL",
		zap.Int("positive", exported),
		zap.Int("total", len(feedback)))

	return buf.Bytes(), nil
}

func (fm *FeedbackManager) GetFeedbackStats() (*Stats, error) {
	stats := &Stats{ByRequestType: make(map[string]int64)}

	if err := fm.db.Model(&models.AIFeedback{}).Count(&stats.TotalCount).Error; err != nil {
		return nil, err
	}
	if err := fm.db.Model(&models.AIFeedback{}).Where("is_positive = ?", true).Count(&stats.PositiveCount).Error; err != nil {
		return nil, err
	}
	if err := fm.db.Model(&models.AIFeedback{}).Where("exported = ?", false).Count(&stats.UnexportedCount).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		RequestType string
		Count       int64
	}
	if err := fm.db.Model(&models.AIFeedback{}).
		Select("request_type, count(*) as count").
		Group("request_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByRequestType[row.RequestType] = row.Count
	}

	stats.CachedContexts = fm.contextCache.Size()

	return stats, nil
}

// Ping checks the database connection
func (fm *FeedbackManager) Ping() error {
	sqlDB, err := fm.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (fm *FeedbackManager) Close() {
	fm.contextCache.Close()
}
