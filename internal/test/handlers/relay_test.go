package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibe-coding-backend/internal/claude"
	"vibe-coding-backend/internal/handlers"
)

func stubModelServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-3-5-sonnet-20240620",
			"content":     []map[string]string{{"type": "text", "text": text}},
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 10, "output_tokens": 20},
		})
	}))
}

func relayRouter(baseURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	client := claude.NewClient(
		"test-key", "claude-3-5-sonnet-20240620", 1024, 0.7,
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)
	router := gin.New()
	router.POST("/api/claude", handlers.NewRelayHandler(client).Relay)
	return router
}

func TestRelay_ReturnsExtractedObject(t *testing.T) {
	server := stubModelServer(t, `Here you go: {"answer": "yes", "count": 2}`)
	defer server.Close()

	router := relayRouter(server.URL)
	body := `{"prompt": "is it working?"}`
	req, _ := http.NewRequest("POST", "/api/claude", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "yes", out["answer"])
	assert.Equal(t, float64(2), out["count"])
}

func TestRelay_MissingPrompt(t *testing.T) {
	server := stubModelServer(t, "unused")
	defer server.Close()

	router := relayRouter(server.URL)
	req, _ := http.NewRequest("POST", "/api/claude", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRelay_UnparseableModelOutput(t *testing.T) {
	server := stubModelServer(t, "I refuse to answer in JSON.")
	defer server.Close()

	router := relayRouter(server.URL)
	req, _ := http.NewRequest("POST", "/api/claude", strings.NewReader(`{"prompt": "hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "failed to parse model response", out["error"])
	assert.Equal(t, "I refuse to answer in JSON.", out["raw_response"])
}
