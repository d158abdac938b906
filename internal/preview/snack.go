// Package preview packages generated files into an Expo Snack link for the
// hosted sandbox previewer.
package preview

import (
	"encoding/json"
	"net/url"
)

const snackBaseURL = "https://snack.expo.dev/-/"

type snackFile struct {
	Type     string `json:"type"`
	Contents string `json:"contents"`
}

// SnackURL serializes the file set and project name into a self-contained
// preview URL. The /-/ path forces preview-only mode in the sandbox.
func SnackURL(appName string, files map[string]string) string {
	if appName == "" {
		appName = "Generated App"
	}

	payload := make(map[string]snackFile, len(files))
	for path, contents := range files {
		payload[path] = snackFile{Type: "CODE", Contents: contents}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		// Marshaling string maps cannot realistically fail; fall back to a
		// bare sandbox link.
		return "https://snack.expo.dev?platform=ios&name=" + url.QueryEscape(appName)
	}

	q := url.Values{}
	q.Set("files", string(encoded))
	q.Set("name", appName)
	q.Set("platform", "ios")
	q.Set("preview", "true")
	q.Set("theme", "dark")

	return snackBaseURL + "?" + q.Encode()
}
