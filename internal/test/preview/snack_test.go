package preview_test

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibe-coding-backend/internal/preview"
)

func TestSnackURL(t *testing.T) {
	link := preview.SnackURL("My Todo App", map[string]string{
		"App.js":       "export default function App() {}",
		"package.json": `{"name":"my-todo-app"}`,
	})

	require.True(t, strings.HasPrefix(link, "https://snack.expo.dev/-/?"))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	q := parsed.Query()

	assert.Equal(t, "My Todo App", q.Get("name"))
	assert.Equal(t, "ios", q.Get("platform"))
	assert.Equal(t, "true", q.Get("preview"))
	assert.Equal(t, "dark", q.Get("theme"))

	var files map[string]struct {
		Type     string `json:"type"`
		Contents string `json:"contents"`
	}
	require.NoError(t, json.Unmarshal([]byte(q.Get("files")), &files))
	require.Len(t, files, 2)
	assert.Equal(t, "CODE", files["App.js"].Type)
	assert.Equal(t, "export default function App() {}", files["App.js"].Contents)
}

func TestSnackURL_DefaultName(t *testing.T) {
	link := preview.SnackURL("", map[string]string{"App.js": "x"})

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Generated App", parsed.Query().Get("name"))
}
