package models

import (
	"time"

	"gorm.io/gorm"
)

// AIFeedback stores user ratings of generated answers
// Note: User IDs are intentionally excluded for privacy
type AIFeedback struct {
	gorm.Model
	RequestID   string     `gorm:"uniqueIndex;not null" json:"request_id"`
	RequestType string     `gorm:"not null" json:"request_type"` // "ask", "problem", "hint", "evaluate", "insight"
	Prompt      string     `gorm:"type:text;not null" json:"prompt"`
	Response    string     `gorm:"type:text;not null" json:"response"`
	IsPositive  bool       `gorm:"not null" json:"is_positive"`
	ModelName   string     `gorm:"not null" json:"model"`
	FeedbackAt  time.Time  `gorm:"not null" json:"feedback_at"`
	Exported    bool       `gorm:"not null;default:false;index" json:"exported"`
	ExportedAt  *time.Time `json:"exported_at"`
}

// TrainingDataPoint represents a single example in JSONL export format
type TrainingDataPoint struct {
	Contents []TrainingContent `json:"contents"`
}

type TrainingContent struct {
	Role  string         `json:"role"` // "user" or "model"
	Parts []TrainingPart `json:"parts"`
}

type TrainingPart struct {
	Text string `json:"text"`
}

// RequestContext keeps a prompt/response pair in memory until it is rated or expires
type RequestContext struct {
	RequestID   string
	RequestType string
	Prompt      string
	Response    string
	Model       string
	Timestamp   time.Time
}
