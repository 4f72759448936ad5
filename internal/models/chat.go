package models

import (
	"time"

	"gorm.io/datatypes"
)

// ChatSession persists a conversation between a seller and the
// copilot. History holds the serialized message transcript.
type ChatSession struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	SessionID string         `gorm:"uniqueIndex;not null" json:"session_id"`
	Seller    string         `json:"seller"`
	History   datatypes.JSON `json:"history"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (ChatSession) TableName() string { return "chat_sessions" }
