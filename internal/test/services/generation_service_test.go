package services_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibe-coding-backend/internal/claude"
	"vibe-coding-backend/internal/models"
	"vibe-coding-backend/internal/prompt"
	"vibe-coding-backend/internal/services"
)

type capturedMessage struct {
	Sender      string
	MessageType string
	Message     string
	Metadata    *models.MessageMetadata
}

type fakeStore struct {
	user    *models.User
	project *models.Project

	files          map[string]models.AppFile
	messages       []capturedMessage
	history        []models.ProjectHistory
	statusUpdates  []string
	balanceUpdates []int
	resultName     string
	resultCode     string
	deletedFiles   bool
}

func newFakeStore(user *models.User, project *models.Project) *fakeStore {
	return &fakeStore{
		user:    user,
		project: project,
		files:   make(map[string]models.AppFile),
	}
}

func (s *fakeStore) GetOrCreateUser(userID uuid.UUID, email string) (*models.User, error) {
	return s.user, nil
}

func (s *fakeStore) UpdateUserTokenBalance(userID uuid.UUID, balance int) error {
	s.balanceUpdates = append(s.balanceUpdates, balance)
	return nil
}

func (s *fakeStore) GetProject(projectID, userID uuid.UUID) (*models.Project, error) {
	if s.project == nil {
		return nil, sql.ErrNoRows
	}
	return s.project, nil
}

func (s *fakeStore) UpdateProjectStatus(projectID uuid.UUID, status string) error {
	s.statusUpdates = append(s.statusUpdates, status)
	return nil
}

func (s *fakeStore) UpdateProjectResult(projectID uuid.UUID, name, description, code string, features []string) error {
	s.resultName = name
	s.resultCode = code
	return nil
}

func (s *fakeStore) ListAppFiles(projectID uuid.UUID) ([]models.AppFile, error) {
	out := make([]models.AppFile, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f)
	}
	return out, nil
}

func (s *fakeStore) DeleteAppFiles(projectID uuid.UUID) error {
	s.deletedFiles = true
	s.files = make(map[string]models.AppFile)
	return nil
}

func (s *fakeStore) CreateAppFile(projectID uuid.UUID, filePath, fileType, content string, isMain bool) error {
	s.files[filePath] = models.AppFile{
		ID:        uuid.New(),
		ProjectID: projectID,
		FilePath:  filePath,
		FileType:  fileType,
		Content:   content,
		IsMain:    isMain,
	}
	return nil
}

func (s *fakeStore) UpsertAppFile(projectID uuid.UUID, filePath, fileType, content string, isMain bool) error {
	return s.CreateAppFile(projectID, filePath, fileType, content, isMain)
}

func (s *fakeStore) CreateChatMessage(projectID uuid.UUID, sender, messageType, message string, fileURLs []string, metadata *models.MessageMetadata) (*models.ChatMessage, error) {
	s.messages = append(s.messages, capturedMessage{
		Sender:      sender,
		MessageType: messageType,
		Message:     message,
		Metadata:    metadata,
	})

	var metaJSON json.RawMessage
	if metadata != nil {
		metaJSON, _ = json.Marshal(metadata)
	}
	return &models.ChatMessage{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Sender:      sender,
		MessageType: messageType,
		Message:     message,
		Metadata:    metaJSON,
	}, nil
}

func (s *fakeStore) CreateProjectHistory(projectID uuid.UUID, filePath, content, changeDescription, createdBy string) (*models.ProjectHistory, error) {
	entry := models.ProjectHistory{
		ID:                uuid.New(),
		ProjectID:         projectID,
		FilePath:          filePath,
		Content:           content,
		ChangeDescription: changeDescription,
		CreatedBy:         createdBy,
	}
	s.history = append(s.history, entry)
	return &entry, nil
}

type fakeInvoker struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeInvoker) Invoke(ctx context.Context, req claude.InvokeRequest) (string, error) {
	f.calls++
	f.lastPrompt = req.Prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testUser(balance int, role string) *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        "dev@example.com",
		Role:         role,
		TokenBalance: balance,
	}
}

func draftProject(userID uuid.UUID) *models.Project {
	return &models.Project{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "Untitled Project",
		Status: models.ProjectStatusDraft,
	}
}

func generateInput(user *models.User, project *models.Project, message string) services.GenerateInput {
	return services.GenerateInput{
		UserID:    user.ID,
		UserEmail: user.Email,
		ProjectID: project.ID,
		Message:   message,
	}
}

const createResponse = `{"app_name":"Todo Master","explanation":"a todo app","files":[{"path":"App.js","content":"export default function App() {}"}],"features":["add tasks"]}`

func TestGenerate_QuotaGateBlocksBeforeInvocation(t *testing.T) {
	user := testUser(0, models.RoleUser)
	project := draftProject(user.ID)
	store := newFakeStore(user, project)
	invoker := &fakeInvoker{response: createResponse}
	svc := services.NewGenerationService(store, invoker, nil)

	_, err := svc.Generate(context.Background(), generateInput(user, project, "build a todo app"))

	require.ErrorIs(t, err, services.ErrNoTokens)
	assert.Zero(t, invoker.calls)
	assert.Empty(t, store.messages)
	assert.Empty(t, store.balanceUpdates)
}

func TestGenerate_AdminBypassesQuotaAndIsNotCharged(t *testing.T) {
	user := testUser(0, models.RoleAdmin)
	project := draftProject(user.ID)
	store := newFakeStore(user, project)
	invoker := &fakeInvoker{response: createResponse}
	svc := services.NewGenerationService(store, invoker, nil)

	result, err := svc.Generate(context.Background(), generateInput(user, project, "build a todo app"))

	require.NoError(t, err)
	assert.Equal(t, 1, invoker.calls)
	assert.Empty(t, store.balanceUpdates)
	assert.NotEmpty(t, result.PreviewURL)
}

func TestGenerate_CreateMode(t *testing.T) {
	user := testUser(5, models.RoleUser)
	project := draftProject(user.ID)
	store := newFakeStore(user, project)
	invoker := &fakeInvoker{response: createResponse}
	svc := services.NewGenerationService(store, invoker, nil)

	result, err := svc.Generate(context.Background(), generateInput(user, project, "build a todo app"))
	require.NoError(t, err)

	assert.Equal(t, prompt.ModeCreate, result.Mode)
	assert.Contains(t, invoker.lastPrompt, "USER REQUEST: build a todo app")

	// Generated file plus synthesized scaffolding.
	require.Contains(t, store.files, "App.js")
	require.Contains(t, store.files, "package.json")
	require.Contains(t, store.files, "README.md")
	assert.True(t, store.files["App.js"].IsMain)
	assert.False(t, store.files["package.json"].IsMain)
	assert.Contains(t, store.files["package.json"].Content, "todo-master")

	require.Len(t, store.history, 1)
	assert.Equal(t, models.MainFileName, store.history[0].FilePath)
	assert.Equal(t, user.Email, store.history[0].CreatedBy)

	// user message, then assistant message carrying the history link
	require.Len(t, store.messages, 2)
	assistant := store.messages[1]
	assert.Equal(t, models.SenderAssistant, assistant.Sender)
	require.NotNil(t, assistant.Metadata)
	assert.True(t, assistant.Metadata.CodeGenerated)
	assert.False(t, assistant.Metadata.IsModification)
	assert.Equal(t, store.history[0].ID.String(), assistant.Metadata.HistoryID)

	assert.Equal(t, "Todo Master", store.resultName)
	assert.Equal(t, []string{models.ProjectStatusBuilding}, store.statusUpdates)
	assert.Equal(t, []int{4}, store.balanceUpdates)
	assert.NotEmpty(t, result.PreviewURL)
}

func TestGenerate_ModifyModeTouchesOnlyReturnedFiles(t *testing.T) {
	user := testUser(5, models.RoleUser)
	project := draftProject(user.ID)
	project.Status = models.ProjectStatusReady
	project.Code = sql.NullString{String: "export default function App() {}", Valid: true}

	store := newFakeStore(user, project)
	store.files["App.js"] = models.AppFile{FilePath: "App.js", Content: "export default function App() {}", IsMain: true}
	store.files["components/Header.js"] = models.AppFile{FilePath: "components/Header.js", Content: "old header"}

	invoker := &fakeInvoker{
		response: `{"explanation":"made the header blue","files":[{"path":"components/Header.js","content":"blue header"}]}`,
	}
	svc := services.NewGenerationService(store, invoker, nil)

	result, err := svc.Generate(context.Background(), generateInput(user, project, "make the header blue"))
	require.NoError(t, err)

	assert.Equal(t, prompt.ModeModify, result.Mode)
	assert.Contains(t, invoker.lastPrompt, "// File: components/Header.js")
	assert.False(t, store.deletedFiles)

	assert.Equal(t, "blue header", store.files["components/Header.js"].Content)
	assert.Equal(t, "export default function App() {}", store.files["App.js"].Content)

	// App.js was untouched, so the denormalized copy carries over.
	assert.Equal(t, "export default function App() {}", store.resultCode)

	require.Len(t, store.messages, 2)
	assert.True(t, store.messages[1].Metadata.IsModification)
	assert.Equal(t, []int{4}, store.balanceUpdates)
}

func TestGenerate_ExtractionFailureCostsNothing(t *testing.T) {
	user := testUser(5, models.RoleUser)
	project := draftProject(user.ID)
	store := newFakeStore(user, project)
	invoker := &fakeInvoker{response: "I am sorry, I cannot do that."}
	svc := services.NewGenerationService(store, invoker, nil)

	_, err := svc.Generate(context.Background(), generateInput(user, project, "build a todo app"))

	var genErr *services.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, services.StageExtract, genErr.Stage)

	assert.Equal(t, []string{models.ProjectStatusBuilding, models.ProjectStatusError}, store.statusUpdates)
	assert.Empty(t, store.balanceUpdates)
	assert.Empty(t, store.history)

	// user message plus the user-facing error message
	require.Len(t, store.messages, 2)
	assert.Equal(t, models.MessageTypeError, store.messages[1].MessageType)
}

func TestGenerate_InvokeFailure(t *testing.T) {
	user := testUser(5, models.RoleUser)
	project := draftProject(user.ID)
	store := newFakeStore(user, project)
	invoker := &fakeInvoker{err: errors.New("connection refused")}
	svc := services.NewGenerationService(store, invoker, nil)

	_, err := svc.Generate(context.Background(), generateInput(user, project, "build a todo app"))

	var genErr *services.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, services.StageInvoke, genErr.Stage)
	assert.Empty(t, store.balanceUpdates)
}

func TestGenerate_BalanceNeverGoesNegative(t *testing.T) {
	user := testUser(1, models.RoleUser)
	project := draftProject(user.ID)
	store := newFakeStore(user, project)
	invoker := &fakeInvoker{response: createResponse}
	svc := services.NewGenerationService(store, invoker, nil)

	_, err := svc.Generate(context.Background(), generateInput(user, project, "build a todo app"))
	require.NoError(t, err)
	assert.Equal(t, []int{0}, store.balanceUpdates)
}
