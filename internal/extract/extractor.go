// Package extract turns raw model output into a structured app response.
// Model output is unreliable text: it may wrap the JSON object in prose, or
// mistakenly emit the whole structured answer inside the first file's content
// instead of at the top level. Extraction handles both.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

type GeneratedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// AppResponse is the structured shape the prompt contract asks the model
// for. Only Files is mandatory; everything else is best-effort.
type AppResponse struct {
	AppName     string          `json:"app_name,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
	Files       []GeneratedFile `json:"files"`
	Features    []string        `json:"features,omitempty"`
}

// MainFile returns the file with the given path, or nil.
func (r *AppResponse) File(path string) *GeneratedFile {
	for i := range r.Files {
		if r.Files[i].Path == path {
			return &r.Files[i]
		}
	}
	return nil
}

type FailureKind int

const (
	// FailureNoJSON: the text contains no brace-delimited span at all.
	FailureNoJSON FailureKind = iota
	// FailureInvalidJSON: a candidate span exists but does not parse.
	FailureInvalidJSON
	// FailureNoFiles: parsed fine, but no usable files array survived.
	FailureNoFiles
)

func (k FailureKind) String() string {
	switch k {
	case FailureNoJSON:
		return "no JSON object found"
	case FailureInvalidJSON:
		return "invalid JSON"
	case FailureNoFiles:
		return "response has no files"
	default:
		return "extraction failed"
	}
}

// ExtractionError is the typed failure returned by Extract. Raw carries the
// full model text for diagnostics.
type ExtractionError struct {
	Kind FailureKind
	Raw  string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// jsonSpan returns the greedy outermost-brace candidate: the substring from
// the first '{' through the last '}'.
func jsonSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// Extract parses raw model text into an AppResponse.
//
// The repair step targets one observed failure mode: the model answering
// "emit code where one field holds a JSON object" instead of "emit a JSON
// object where one field holds code". If files[0].content itself contains a
// parseable JSON object, that inner object replaces the outer one. Repair is
// applied once, never recursively.
func Extract(raw string) (*AppResponse, error) {
	candidate, ok := jsonSpan(raw)
	if !ok {
		return nil, &ExtractionError{Kind: FailureNoJSON, Raw: raw}
	}

	var resp AppResponse
	if err := json.Unmarshal([]byte(candidate), &resp); err != nil {
		return nil, &ExtractionError{Kind: FailureInvalidJSON, Raw: raw, Err: err}
	}

	if len(resp.Files) > 0 {
		if inner, ok := jsonSpan(resp.Files[0].Content); ok {
			var innerResp AppResponse
			if err := json.Unmarshal([]byte(inner), &innerResp); err == nil {
				// Unwrapped successfully; the inner object is the real answer.
				resp = innerResp
			}
			// Inner parse failure: keep the outer object and treat the
			// literal content as the file body.
		}
	}

	if len(resp.Files) == 0 {
		return nil, &ExtractionError{Kind: FailureNoFiles, Raw: raw}
	}

	return &resp, nil
}

// ExtractObject parses raw model text into an arbitrary JSON object. The
// relay endpoint uses this: callers supply their own schema, so no shape
// beyond "is a JSON object" is enforced.
func ExtractObject(raw string) (map[string]interface{}, error) {
	candidate, ok := jsonSpan(raw)
	if !ok {
		return nil, &ExtractionError{Kind: FailureNoJSON, Raw: raw}
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, &ExtractionError{Kind: FailureInvalidJSON, Raw: raw, Err: err}
	}
	return obj, nil
}
