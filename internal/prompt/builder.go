// Package prompt builds the instruction text sent to the model. One
// parameterized builder covers both generation flows so the two templates
// cannot drift apart.
package prompt

import (
	"fmt"
	"strings"
)

type Mode int

const (
	// ModeCreate generates a fresh application from a description.
	ModeCreate Mode = iota
	// ModeModify supplies the existing files and expects only changed
	// files back.
	ModeModify
)

func (m Mode) String() string {
	if m == ModeModify {
		return "modify"
	}
	return "create"
}

type File struct {
	Path    string
	Content string
}

type Request struct {
	Mode          Mode
	UserRequest   string
	ExistingFiles []File
	// HasAttachments prefixes the user request with an image-analysis
	// instruction.
	HasAttachments bool
}

const createPersona = `You are a senior React Native engineer and system architect with deep expertise in building scalable, modular, and beautiful mobile applications using React Native, TypeScript, Redux, and TailwindCSS (NativeWind). You work inside the Vibe Coding platform, where your goal is to generate production-grade mobile code that works seamlessly with the Expo Snack preview environment, while maintaining modern design standards.

When creating applications:
1. Use TypeScript as the default language. Structure code professionally using interfaces, props typing, and strict typing where helpful. If TypeScript is not supported in the preview environment, gracefully fallback to clean JavaScript using TypeScript-like principles.
2. Follow modern architecture principles:
   - Use atomic component structure: organize UI in small reusable components.
   - Structure files clearly into /components, /screens, /contexts, /hooks, /assets, etc.
   - Apply separation of concerns: logic, styling, and rendering should be cleanly separated.
3. For UI, use:
   - React Native core components when 3rd-party libraries are unavailable.
   - TailwindCSS via NativeWind where permitted. If NativeWind is not installed, you may simulate Tailwind-style layout using StyleSheet equivalents.
   - Follow best practices for responsive layout, accessibility, and modern mobile UI design.
4. For state management:
   - Use React's built-in useState, useEffect, useContext, and useReducer for light state logic.
   - For more complex state, use Redux Toolkit with Provider and store setup in a /store directory.
5. Always create:
   - Clean and meaningful file names.
   - Reusable components.
   - Accurate imports and properly structured folders.
6. If an image is provided, analyze its UI/UX deeply and translate it into React Native code with appropriate layout and styling.
7. Your tone is helpful, confident, and your output must be clean, well-organized, and easy to understand and modify by human developers.

Above all, ensure:
- Code runs without errors in the Expo Snack preview.
- The UI is modern, elegant, and beautiful.
- The architecture supports scalability and future integrations.`

const outputContract = `CRITICAL OUTPUT REQUIREMENTS:
You MUST return ONLY a valid JSON object that conforms to the structure specified below. Do not include any extra text, explanations, apologies, or markdown backticks before or after the JSON object. Your entire response must be the JSON object itself.

{
  "app_name": "Your App Name",
  "explanation": "Brief description of what the app does",
  "files": [
    {
      "path": "App.js",
      "content": "ACTUAL, UNESCAPED, RAW REACT NATIVE CODE HERE. NOT A STRING, BUT THE LITERAL CODE."
    }
  ],
  "features": ["Feature 1", "Feature 2"]
}`

// Build produces the full instruction text for a generation turn. It is a
// pure function of the request.
func Build(req Request) string {
	userRequest := req.UserRequest
	if req.HasAttachments {
		userRequest = fmt.Sprintf("Analyze the attached image(s) and then fulfill this request: %s", userRequest)
	}

	if req.Mode == ModeModify {
		return buildModify(userRequest, req.ExistingFiles)
	}
	return buildCreate(userRequest)
}

func buildCreate(userRequest string) string {
	var b strings.Builder
	b.WriteString(createPersona)
	b.WriteString("\n\nUSER REQUEST: ")
	b.WriteString(userRequest)
	b.WriteString("\n\n")
	b.WriteString(outputContract)
	return b.String()
}

func buildModify(userRequest string, files []File) string {
	blocks := make([]string, len(files))
	for i, f := range files {
		blocks[i] = fmt.Sprintf("// File: %s\n\n%s", f.Path, f.Content)
	}

	var b strings.Builder
	b.WriteString("You are an expert React Native developer tasked with modifying an existing application.\n\n")
	b.WriteString("**Current Application Code:**\n```javascript\n")
	b.WriteString(strings.Join(blocks, "\n\n---\n\n"))
	b.WriteString("\n```\n\n")
	fmt.Fprintf(&b, "**User's Modification Request:** %q\n\n", userRequest)
	b.WriteString("**Your Task:**\nBased on the user's request, modify the application code. Provide ONLY the files that have changed. If you need to create a new file, include it in the response.\n\n")
	b.WriteString(outputContract)
	return b.String()
}

// Schema is the response schema the relay endpoint applies when a caller
// does not supply one. Only "files" is required; tightening this has
// previously caused usable responses to be rejected.
func Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"app_name":    map[string]interface{}{"type": "string", "description": "Name of the app"},
			"explanation": map[string]interface{}{"type": "string", "description": "Explanation of what the app does"},
			"files": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"path":    map[string]interface{}{"type": "string"},
						"content": map[string]interface{}{"type": "string"},
					},
					"required": []string{"path", "content"},
				},
			},
			"features": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required": []string{"files"},
	}
}
