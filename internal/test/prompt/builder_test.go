package prompt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibe-coding-backend/internal/prompt"
)

func TestBuild_CreateMode(t *testing.T) {
	out := prompt.Build(prompt.Request{
		Mode:        prompt.ModeCreate,
		UserRequest: "build me a todo app",
	})

	assert.Contains(t, out, "senior React Native engineer")
	assert.Contains(t, out, "USER REQUEST: build me a todo app")
	assert.Contains(t, out, "CRITICAL OUTPUT REQUIREMENTS")
	assert.NotContains(t, out, "Current Application Code")
}

func TestBuild_ModifyMode(t *testing.T) {
	out := prompt.Build(prompt.Request{
		Mode:        prompt.ModeModify,
		UserRequest: "make the header blue",
		ExistingFiles: []prompt.File{
			{Path: "App.js", Content: "export default function App() {}"},
			{Path: "components/Header.js", Content: "export function Header() {}"},
		},
	})

	assert.Contains(t, out, "// File: App.js")
	assert.Contains(t, out, "// File: components/Header.js")
	assert.Contains(t, out, "\n\n---\n\n")
	assert.Contains(t, out, `"make the header blue"`)
	assert.Contains(t, out, "ONLY the files that have changed")
	assert.Contains(t, out, "CRITICAL OUTPUT REQUIREMENTS")
}

func TestBuild_AttachmentsPrefix(t *testing.T) {
	out := prompt.Build(prompt.Request{
		Mode:           prompt.ModeCreate,
		UserRequest:    "match this design",
		HasAttachments: true,
	})

	assert.Contains(t, out, "Analyze the attached image(s) and then fulfill this request: match this design")
}

func TestBuild_SameContractInBothModes(t *testing.T) {
	create := prompt.Build(prompt.Request{Mode: prompt.ModeCreate, UserRequest: "x"})
	modify := prompt.Build(prompt.Request{Mode: prompt.ModeModify, UserRequest: "x"})

	const marker = "CRITICAL OUTPUT REQUIREMENTS"
	assert.Contains(t, create, marker)
	assert.Contains(t, modify, marker)
}

func TestSchema_OnlyFilesRequired(t *testing.T) {
	schema := prompt.Schema()

	required, ok := schema["required"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"files"}, required)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "create", prompt.ModeCreate.String())
	assert.Equal(t, "modify", prompt.ModeModify.String())
}
