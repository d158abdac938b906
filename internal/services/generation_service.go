// Package services holds the generation orchestrator: one user turn from
// quota check through model invocation, extraction, persistence, and
// preview.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vibe-coding-backend/internal/claude"
	"vibe-coding-backend/internal/extract"
	"vibe-coding-backend/internal/models"
	"vibe-coding-backend/internal/preview"
	"vibe-coding-backend/internal/prompt"
)

// ErrNoTokens is the quota gate: returned before any model call when a
// non-admin user's balance is exhausted. The UI renders it as a paywall,
// not as a chat error.
var ErrNoTokens = errors.New("token balance exhausted")

type Stage string

const (
	StageInvoke  Stage = "invoke"
	StageExtract Stage = "extract"
	StagePersist Stage = "persist"
)

// GenerationError reports where in the pipeline a turn failed. All stages
// get the same user-visible treatment (error chat message, project status
// "error", no token charge); the stage is for logging and status codes.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed during %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Store is the persistence surface the orchestrator needs. Every
// user-scoped read is pre-filtered by owner identity by the implementation.
type Store interface {
	GetOrCreateUser(userID uuid.UUID, email string) (*models.User, error)
	UpdateUserTokenBalance(userID uuid.UUID, balance int) error

	GetProject(projectID, userID uuid.UUID) (*models.Project, error)
	UpdateProjectStatus(projectID uuid.UUID, status string) error
	UpdateProjectResult(projectID uuid.UUID, name, description, code string, features []string) error

	ListAppFiles(projectID uuid.UUID) ([]models.AppFile, error)
	DeleteAppFiles(projectID uuid.UUID) error
	CreateAppFile(projectID uuid.UUID, filePath, fileType, content string, isMain bool) error
	UpsertAppFile(projectID uuid.UUID, filePath, fileType, content string, isMain bool) error

	CreateChatMessage(projectID uuid.UUID, sender, messageType, message string, fileURLs []string, metadata *models.MessageMetadata) (*models.ChatMessage, error)
	CreateProjectHistory(projectID uuid.UUID, filePath, content, changeDescription, createdBy string) (*models.ProjectHistory, error)
}

// Invoker sends a built prompt to the model backend.
type Invoker interface {
	Invoke(ctx context.Context, req claude.InvokeRequest) (string, error)
}

// Notifier publishes project lifecycle events.
type Notifier interface {
	PublishProjectEvent(projectID uuid.UUID, event string, payload map[string]interface{}) error
}

type GenerationService struct {
	store    Store
	invoker  Invoker
	notifier Notifier
}

func NewGenerationService(store Store, invoker Invoker, notifier Notifier) *GenerationService {
	return &GenerationService{
		store:    store,
		invoker:  invoker,
		notifier: notifier,
	}
}

type GenerateInput struct {
	UserID    uuid.UUID
	UserEmail string
	ProjectID uuid.UUID

	Message      string
	FileURLs     []string
	DeepThinking bool
	WebResearch  bool
	VisualEdit   bool
}

type GenerateResult struct {
	Project    *models.Project
	Assistant  *models.ChatMessage
	PreviewURL string
	Mode       prompt.Mode
}

// Generate runs one user turn. At most one outstanding generation per
// project is assumed; there is no locking, so overlapping turns from two
// sessions can race on app_files writes.
func (s *GenerationService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	user, err := s.store.GetOrCreateUser(in.UserID, in.UserEmail)
	if err != nil {
		return nil, &GenerationError{Stage: StagePersist, Err: err}
	}

	project, err := s.store.GetProject(in.ProjectID, in.UserID)
	if err != nil {
		return nil, &GenerationError{Stage: StagePersist, Err: err}
	}

	// Hard quota gate: checked before any external call.
	if !user.IsAdmin() && user.TokenBalance <= 0 {
		return nil, ErrNoTokens
	}

	userMessage := in.Message
	if in.VisualEdit && len(in.FileURLs) > 0 {
		userMessage = fmt.Sprintf("This is a VISUAL EDIT request. Analyze the attached image to identify the component the user is referencing. Then, apply the following change: %q", in.Message)
	}

	if _, err := s.store.CreateChatMessage(in.ProjectID, in.UserID.String(), models.MessageTypeText, in.Message, in.FileURLs, &models.MessageMetadata{
		IsVisualEdit: in.VisualEdit,
	}); err != nil {
		return nil, &GenerationError{Stage: StagePersist, Err: err}
	}

	existingFiles, err := s.store.ListAppFiles(in.ProjectID)
	if err != nil {
		return nil, &GenerationError{Stage: StagePersist, Err: err}
	}

	mode := prompt.ModeCreate
	if len(existingFiles) > 0 && project.Code.Valid && project.Code.String != "" {
		mode = prompt.ModeModify
	}

	if err := s.store.UpdateProjectStatus(in.ProjectID, models.ProjectStatusBuilding); err != nil {
		return nil, &GenerationError{Stage: StagePersist, Err: err}
	}
	s.publish(in.ProjectID, "generation_started", map[string]interface{}{
		"project_id": in.ProjectID.String(),
		"status":     models.ProjectStatusBuilding,
		"mode":       mode.String(),
	})

	promptFiles := make([]prompt.File, len(existingFiles))
	for i, f := range existingFiles {
		promptFiles[i] = prompt.File{Path: f.FilePath, Content: f.Content}
	}

	promptText := prompt.Build(prompt.Request{
		Mode:           mode,
		UserRequest:    userMessage,
		ExistingFiles:  promptFiles,
		HasAttachments: len(in.FileURLs) > 0,
	})

	raw, err := s.invoker.Invoke(ctx, claude.InvokeRequest{
		UserID:        in.UserID,
		Prompt:        promptText,
		FileURLs:      in.FileURLs,
		UseWebContext: in.WebResearch,
	})
	if err != nil {
		s.failTurn(in.ProjectID, "The AI service could not be reached. Please try again.")
		return nil, &GenerationError{Stage: StageInvoke, Err: err}
	}

	resp, err := extract.Extract(raw)
	if err != nil {
		var extractErr *extract.ExtractionError
		if errors.As(err, &extractErr) {
			logrus.WithFields(logrus.Fields{
				"project_id": in.ProjectID,
				"kind":       extractErr.Kind.String(),
			}).WithField("raw_response", extractErr.Raw).Debug("extraction failed")
		}
		s.failTurn(in.ProjectID, "The AI returned a response that could not be understood. Please try again.")
		return nil, &GenerationError{Stage: StageExtract, Err: err}
	}

	result, err := s.persistTurn(in, user, project, mode, resp)
	if err != nil {
		// Known gap: a persistence failure after a valid extraction is
		// best-effort only; no compensation or retry.
		s.failTurn(in.ProjectID, "Your app was generated but could not be saved. Please try again.")
		return nil, &GenerationError{Stage: StagePersist, Err: err}
	}

	// Deduct only after everything succeeded: a failed generation never
	// costs a token.
	if !user.IsAdmin() {
		newBalance := user.TokenBalance - 1
		if newBalance < 0 {
			newBalance = 0
		}
		if err := s.store.UpdateUserTokenBalance(user.ID, newBalance); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Error("failed to deduct token")
		}
	}

	s.publish(in.ProjectID, "generation_completed", map[string]interface{}{
		"project_id":  in.ProjectID.String(),
		"status":      models.ProjectStatusReady,
		"preview_url": result.PreviewURL,
	})

	return result, nil
}

func (s *GenerationService) persistTurn(in GenerateInput, user *models.User, project *models.Project, mode prompt.Mode, resp *extract.AppResponse) (*GenerateResult, error) {
	if mode == prompt.ModeCreate {
		if err := s.store.DeleteAppFiles(in.ProjectID); err != nil {
			return nil, err
		}
		for _, f := range resp.Files {
			if err := s.store.CreateAppFile(in.ProjectID, f.Path, models.FileTypeFromPath(f.Path), f.Content, f.Path == models.MainFileName); err != nil {
				return nil, err
			}
		}
		if err := s.ensureScaffolding(in.ProjectID, project, resp); err != nil {
			return nil, err
		}
	} else {
		for _, f := range resp.Files {
			if err := s.store.UpsertAppFile(in.ProjectID, f.Path, models.FileTypeFromPath(f.Path), f.Content, f.Path == models.MainFileName); err != nil {
				return nil, err
			}
		}
	}

	mainContent := s.resolveMainContent(project, resp)

	action := "generation"
	if mode == prompt.ModeModify {
		action = "modification"
	}
	history, err := s.store.CreateProjectHistory(
		in.ProjectID,
		models.MainFileName,
		mainContent,
		fmt.Sprintf("AI %s from prompt: %q", action, truncate(in.Message, 50)),
		user.Email,
	)
	if err != nil {
		return nil, err
	}

	// The history id is attached in the same write that creates the
	// assistant message, so a revert can never observe a message without
	// its snapshot.
	assistant, err := s.store.CreateChatMessage(in.ProjectID, models.SenderAssistant, models.MessageTypeAssistant, assistantSummary(mode, resp), nil, &models.MessageMetadata{
		CodeGenerated:   true,
		IsModification:  mode == prompt.ModeModify,
		UsedDeepThink:   in.DeepThinking,
		UsedWebResearch: in.WebResearch,
		FeaturesAdded:   len(resp.Features),
		HistoryID:       history.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	name := project.Name
	if mode == prompt.ModeCreate && resp.AppName != "" {
		name = resp.AppName
	}
	description := resp.Explanation
	if description == "" && project.Description.Valid {
		description = project.Description.String
	}
	features := resp.Features
	if len(features) == 0 {
		features = project.FeatureList()
	}

	if err := s.store.UpdateProjectResult(in.ProjectID, name, description, mainContent, features); err != nil {
		return nil, err
	}

	currentFiles, err := s.store.ListAppFiles(in.ProjectID)
	if err != nil {
		return nil, err
	}
	fileSet := make(map[string]string, len(currentFiles))
	for _, f := range currentFiles {
		fileSet[f.FilePath] = f.Content
	}

	project.Name = name
	project.Status = models.ProjectStatusReady
	project.Code.String = mainContent
	project.Code.Valid = true

	return &GenerateResult{
		Project:    project,
		Assistant:  assistant,
		PreviewURL: preview.SnackURL(name, fileSet),
		Mode:       mode,
	}, nil
}

// ensureScaffolding guarantees every fresh project ships with package.json
// and README.md even when the model omits them.
func (s *GenerationService) ensureScaffolding(projectID uuid.UUID, project *models.Project, resp *extract.AppResponse) error {
	if resp.File("package.json") == nil {
		name := resp.AppName
		if name == "" {
			name = project.Name
		}
		if err := s.store.CreateAppFile(projectID, "package.json", "json", defaultPackageJSON(name), false); err != nil {
			return err
		}
	}
	if resp.File("README.md") == nil {
		if err := s.store.CreateAppFile(projectID, "README.md", "markdown", defaultReadme(resp), false); err != nil {
			return err
		}
	}
	return nil
}

func (s *GenerationService) resolveMainContent(project *models.Project, resp *extract.AppResponse) string {
	if mf := resp.File(models.MainFileName); mf != nil {
		return mf.Content
	}
	// Modify responses that leave the entry file untouched keep the
	// current denormalized copy.
	if project.Code.Valid && project.Code.String != "" {
		return project.Code.String
	}
	if len(resp.Files) > 0 {
		return resp.Files[0].Content
	}
	return ""
}

// failTurn applies the shared failure treatment: status "error", a
// user-safe error chat message, and a realtime event. Persistence problems
// here are logged and swallowed; the original error is already on its way
// to the caller.
func (s *GenerationService) failTurn(projectID uuid.UUID, userMessage string) {
	if err := s.store.UpdateProjectStatus(projectID, models.ProjectStatusError); err != nil {
		logrus.WithError(err).WithField("project_id", projectID).Error("failed to set project error status")
	}
	if _, err := s.store.CreateChatMessage(projectID, models.SenderAssistant, models.MessageTypeError, userMessage, nil, nil); err != nil {
		logrus.WithError(err).WithField("project_id", projectID).Error("failed to persist error message")
	}
	s.publish(projectID, "generation_failed", map[string]interface{}{
		"project_id": projectID.String(),
		"status":     models.ProjectStatusError,
		"error":      userMessage,
	})
}

func (s *GenerationService) publish(projectID uuid.UUID, event string, payload map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishProjectEvent(projectID, event, payload); err != nil {
		logrus.WithError(err).WithField("project_id", projectID).Warn("failed to publish realtime event")
	}
}

func assistantSummary(mode prompt.Mode, resp *extract.AppResponse) string {
	if mode == prompt.ModeModify {
		msg := "I applied the changes you requested."
		if resp.Explanation != "" {
			msg += "\n\nWhat changed:\n" + resp.Explanation
		}
		return msg
	}

	name := resp.AppName
	if name == "" {
		name = "your new app"
	}
	msg := fmt.Sprintf("I built %s for you!", name)
	if resp.Explanation != "" {
		msg += "\n\nWhat I built:\n" + resp.Explanation
	}
	if len(resp.Features) > 0 {
		msg += fmt.Sprintf("\n\nFeatures (%d):", len(resp.Features))
		for _, f := range resp.Features {
			msg += "\n- " + f
		}
	}
	return msg
}

func defaultPackageJSON(appName string) string {
	slug := slugify(appName)
	pkg := map[string]interface{}{
		"name":    slug,
		"version": "1.0.0",
		"main":    models.MainFileName,
		"scripts": map[string]string{"start": "expo start"},
		"dependencies": map[string]string{
			"expo":         "~49.0.0",
			"react":        "18.2.0",
			"react-native": "0.72.6",
		},
	}
	out, _ := json.MarshalIndent(pkg, "", "  ")
	return string(out)
}

func defaultReadme(resp *extract.AppResponse) string {
	name := resp.AppName
	if name == "" {
		name = "Generated App"
	}
	readme := "# " + name + "\n\n" + resp.Explanation + "\n\n## Features\n"
	for _, f := range resp.Features {
		readme += "\n- " + f
	}
	readme += "\n\n## How to run\n\n1. Install Expo Go on your phone\n2. Open this project in Expo Snack\n3. Scan the QR code with Expo Go\n"
	return readme
}

func slugify(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ', r == '_', r == '-':
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return "generated-app"
	}
	return string(out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
