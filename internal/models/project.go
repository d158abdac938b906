package models

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Project statuses. "building" is only valid while a generation call is
// outstanding and must resolve to "ready" or "error".
const (
	ProjectStatusDraft    = "draft"
	ProjectStatusBuilding = "building"
	ProjectStatusReady    = "ready"
	ProjectStatusError    = "error"
)

// MainFileName is the canonical entry file of a generated Expo app.
const MainFileName = "App.js"

type Project struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description sql.NullString
	Status      string
	Code        sql.NullString
	Features    json.RawMessage
	Framework   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FeatureList decodes the denormalized feature tags, tolerating null.
func (p *Project) FeatureList() []string {
	if len(p.Features) == 0 {
		return nil
	}
	var features []string
	if err := json.Unmarshal(p.Features, &features); err != nil {
		return nil
	}
	return features
}

type AppFile struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	FilePath  string
	FileType  string
	Content   string
	IsMain    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProjectHistory struct {
	ID                uuid.UUID
	ProjectID         uuid.UUID
	FilePath          string
	Content           string
	ChangeDescription string
	CreatedBy         string
	CreatedAt         time.Time
}

// FileTypeFromPath classifies a generated file by extension.
func FileTypeFromPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "js", "jsx", "ts", "tsx":
		return "javascript"
	case "json":
		return "json"
	case "md":
		return "markdown"
	case "css":
		return "css"
	default:
		return "config"
	}
}
