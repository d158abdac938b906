package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	SenderAssistant = "assistant"
	SenderSystem    = "system"
)

const (
	MessageTypeText      = "text"
	MessageTypeAssistant = "assistant"
	MessageTypeSystem    = "system"
	MessageTypeError     = "error"
)

// ChatMessage rows are append-only; creation order is the only sequencing
// guarantee.
type ChatMessage struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Sender      string
	MessageType string
	Message     string
	FileURLs    json.RawMessage
	Metadata    json.RawMessage
	CreatedAt   time.Time
}

// MessageMetadata is the optional metadata bag attached to a chat message.
// HistoryID links an assistant message that produced code to the history
// snapshot enabling revert.
type MessageMetadata struct {
	CodeGenerated   bool   `json:"code_generated,omitempty"`
	IsModification  bool   `json:"is_modification,omitempty"`
	IsVisualEdit    bool   `json:"is_visual_edit,omitempty"`
	UsedDeepThink   bool   `json:"used_deep_thinking,omitempty"`
	UsedWebResearch bool   `json:"used_web_research,omitempty"`
	FeaturesAdded   int    `json:"features_added,omitempty"`
	HistoryID       string `json:"history_id,omitempty"`
}

func (m *ChatMessage) ParseMetadata() MessageMetadata {
	var meta MessageMetadata
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &meta)
	}
	return meta
}
