package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"vibe-coding-backend/internal/models"
)

func TestFileTypeFromPath(t *testing.T) {
	cases := map[string]string{
		"App.js":                "javascript",
		"components/Header.tsx": "javascript",
		"package.json":          "json",
		"README.md":             "markdown",
		"styles/main.css":       "css",
		".env":                  "config",
		"app.config":            "config",
	}
	for path, want := range cases {
		assert.Equal(t, want, models.FileTypeFromPath(path), path)
	}
}

func TestProject_FeatureList(t *testing.T) {
	p := &models.Project{Features: json.RawMessage(`["tasks","reminders"]`)}
	assert.Equal(t, []string{"tasks", "reminders"}, p.FeatureList())

	empty := &models.Project{}
	assert.Nil(t, empty.FeatureList())

	corrupt := &models.Project{Features: json.RawMessage(`not json`)}
	assert.Nil(t, corrupt.FeatureList())
}

func TestChatMessage_ParseMetadata(t *testing.T) {
	m := &models.ChatMessage{
		Metadata: json.RawMessage(`{"code_generated":true,"is_modification":true,"history_id":"abc"}`),
	}
	meta := m.ParseMetadata()
	assert.True(t, meta.CodeGenerated)
	assert.True(t, meta.IsModification)
	assert.Equal(t, "abc", meta.HistoryID)

	bare := &models.ChatMessage{}
	assert.Zero(t, bare.ParseMetadata())
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&models.User{Role: models.RoleAdmin}).IsAdmin())
	assert.False(t, (&models.User{Role: models.RoleUser}).IsAdmin())
}

func TestPlans(t *testing.T) {
	assert.Equal(t, 100, models.Plans["starter"].Credits)
	assert.Equal(t, 250, models.Plans["builder"].Credits)
	assert.Equal(t, 500, models.Plans["pro"].Credits)
}
