package supabase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibe-coding-backend/internal/supabase"
)

func TestStorageClient_GetPublicURL(t *testing.T) {
	client, err := supabase.NewStorageClient("https://example.supabase.co", "test-key", "attachments")
	require.NoError(t, err)

	url := client.GetPublicURL("attachments/user-1/123-shot.png")
	assert.Equal(t, "https://example.supabase.co/storage/v1/object/public/attachments/attachments/user-1/123-shot.png", url)
}

func TestStorageClient_TrailingSlashNormalized(t *testing.T) {
	client, err := supabase.NewStorageClient("https://example.supabase.co/", "test-key", "attachments")
	require.NoError(t, err)

	url := client.GetPublicURL("attachments/u/f.png")
	assert.NotContains(t, url, ".co//storage")
}
