package models

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RelayErrorResponse mirrors the relay contract: the raw model text is
// surfaced for diagnostics when extraction fails.
type RelayErrorResponse struct {
	Error       string `json:"error"`
	Details     string `json:"details,omitempty"`
	RawResponse string `json:"raw_response,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ProjectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Code        string    `json:"code,omitempty"`
	Features    []string  `json:"features,omitempty"`
	Framework   string    `json:"framework"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProjectListResponse struct {
	Projects []ProjectSummary `json:"projects"`
}

type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageResponse struct {
	ID          string          `json:"id"`
	Sender      string          `json:"sender"`
	MessageType string          `json:"message_type"`
	Message     string          `json:"message"`
	FileURLs    []string        `json:"file_urls,omitempty"`
	Metadata    MessageMetadata `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

type FileResponse struct {
	ID        string    `json:"id"`
	FilePath  string    `json:"file_path"`
	FileType  string    `json:"file_type"`
	Content   string    `json:"content"`
	IsMain    bool      `json:"is_main"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FilesResponse struct {
	Files []FileResponse `json:"files"`
}

type HistoryEntryResponse struct {
	ID                string    `json:"id"`
	FilePath          string    `json:"file_path"`
	ChangeDescription string    `json:"change_description"`
	CreatedBy         string    `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
}

type HistoryListResponse struct {
	History []HistoryEntryResponse `json:"history"`
}

type GenerateResponse struct {
	Project    ProjectResponse `json:"project"`
	Assistant  MessageResponse `json:"assistant_message"`
	PreviewURL string          `json:"preview_url,omitempty"`
}

type PreviewResponse struct {
	PreviewURL string `json:"preview_url"`
}

type UploadResponse struct {
	FileURL string `json:"file_url"`
}

type ProfileResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	TokenBalance     int    `json:"token_balance"`
	SubscriptionPlan string `json:"subscription_plan"`
}

type UserListResponse struct {
	Users []ProfileResponse `json:"users"`
}
