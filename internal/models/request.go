package models

type CreateProjectRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

type GenerateRequest struct {
	// Message is the user's free-text request for this turn.
	Message string `json:"message" binding:"required"`
	// FileURLs are previously uploaded attachment URLs (images for visual
	// edit or reference).
	FileURLs []string `json:"file_urls,omitempty"`
	// DeepThinking and WebResearch are plan-gated generation flags.
	DeepThinking bool `json:"deep_thinking,omitempty"`
	WebResearch  bool `json:"web_research,omitempty"`
	VisualEdit   bool `json:"visual_edit,omitempty"`
}

type RevertRequest struct {
	HistoryID string `json:"history_id" binding:"required"`
}

// RelayRequest is the body of the unauthenticated LLM relay endpoint.
// The schema field is accepted for compatibility but the extractor enforces
// only the minimal contract (a usable files array).
type RelayRequest struct {
	Prompt             string                 `json:"prompt" binding:"required"`
	ResponseJSONSchema map[string]interface{} `json:"response_json_schema,omitempty"`
}

type PurchasePlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

type UpdateUserRequest struct {
	TokenBalance *int    `json:"token_balance,omitempty"`
	Role         *string `json:"role,omitempty"`
}
