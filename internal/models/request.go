package models

import (
	"strings"
)

// MessageRequest is a chat message forwarded by the platform gateway.
type MessageRequest struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}

// implements the Validator interface
func (r *MessageRequest) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	if r.UserID == "" {
		return &ErrorResponse{
			Code:    "missing_user_id",
			Message: "user_id field is required",
		}
	}
	if strings.TrimSpace(r.Content) == "" {
		return &ErrorResponse{
			Code:    "missing_content",
			Message: "content field is required",
		}
	}
	if r.Username == "" {
		r.Username = r.UserID
	}
	return nil
}

type DetectRequest struct {
	Code string `json:"code"`
}

func (r *DetectRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return &ErrorResponse{Code: "missing_code", Message: "code is required"}
	}
	return nil
}
