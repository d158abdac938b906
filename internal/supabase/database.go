package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"vibe-coding-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

// --- Users ---

// GetOrCreateUser loads the profile row for an authenticated user, creating
// it with the signup defaults on first contact.
func (d *DatabaseClient) GetOrCreateUser(userID uuid.UUID, email string) (*models.User, error) {
	var user models.User
	err := d.db.QueryRow(`
		INSERT INTO users (id, email, role, token_balance, subscription_plan, status)
		VALUES ($1, $2, 'user', 10, 'free', 'active')
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, role, token_balance, subscription_plan, status, created_at, updated_at
	`, userID, email).Scan(
		&user.ID, &user.Email, &user.Role, &user.TokenBalance,
		&user.SubscriptionPlan, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	return &user, nil
}

func (d *DatabaseClient) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := d.db.QueryRow(`
		SELECT id, email, role, token_balance, subscription_plan, status, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID).Scan(
		&user.ID, &user.Email, &user.Role, &user.TokenBalance,
		&user.SubscriptionPlan, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (d *DatabaseClient) ListUsers() ([]models.User, error) {
	rows, err := d.db.Query(`
		SELECT id, email, role, token_balance, subscription_plan, status, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Email, &user.Role, &user.TokenBalance,
			&user.SubscriptionPlan, &user.Status, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, nil
}

func (d *DatabaseClient) UpdateUserTokenBalance(userID uuid.UUID, balance int) error {
	_, err := d.db.Exec(`
		UPDATE users
		SET token_balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, userID)
	return err
}

func (d *DatabaseClient) UpdateUserRole(userID uuid.UUID, role string) error {
	_, err := d.db.Exec(`
		UPDATE users
		SET role = $1, updated_at = NOW()
		WHERE id = $2
	`, role, userID)
	return err
}

func (d *DatabaseClient) UpdateUserPlan(userID uuid.UUID, balance int, plan string) error {
	_, err := d.db.Exec(`
		UPDATE users
		SET token_balance = $1, subscription_plan = $2, updated_at = NOW()
		WHERE id = $3
	`, balance, plan, userID)
	return err
}

func (d *DatabaseClient) DeleteUser(userID uuid.UUID) error {
	_, err := d.db.Exec(`
		DELETE FROM users
		WHERE id = $1
	`, userID)
	return err
}

// --- Projects ---

func (d *DatabaseClient) CreateProject(userID uuid.UUID, name, description string) (*models.Project, error) {
	var project models.Project
	err := d.db.QueryRow(`
		INSERT INTO projects (id, user_id, name, description, status, framework)
		VALUES ($1, $2, $3, $4, $5, 'expo')
		RETURNING id, user_id, name, description, status, code, features, framework, created_at, updated_at
	`, uuid.New(), userID, name, description, models.ProjectStatusDraft).Scan(
		&project.ID, &project.UserID, &project.Name, &project.Description, &project.Status,
		&project.Code, &project.Features, &project.Framework, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return &project, nil
}

func (d *DatabaseClient) GetProject(projectID, userID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := d.db.QueryRow(`
		SELECT id, user_id, name, description, status, code, features, framework, created_at, updated_at
		FROM projects
		WHERE id = $1 AND user_id = $2
	`, projectID, userID).Scan(
		&project.ID, &project.UserID, &project.Name, &project.Description, &project.Status,
		&project.Code, &project.Features, &project.Framework, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

func (d *DatabaseClient) ListProjects(userID uuid.UUID) ([]models.Project, error) {
	rows, err := d.db.Query(`
		SELECT id, user_id, name, description, status, code, features, framework, created_at, updated_at
		FROM projects
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ID, &project.UserID, &project.Name, &project.Description, &project.Status,
			&project.Code, &project.Features, &project.Framework, &project.CreatedAt, &project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, nil
}

func (d *DatabaseClient) UpdateProjectStatus(projectID uuid.UUID, status string) error {
	_, err := d.db.Exec(`
		UPDATE projects
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, projectID)
	return err
}

// UpdateProjectResult records the outcome of a successful generation turn:
// the denormalized main-file code, the resolved name/description/features,
// and the terminal "ready" status.
func (d *DatabaseClient) UpdateProjectResult(projectID uuid.UUID, name, description, code string, features []string) error {
	featuresJSON, _ := json.Marshal(features)
	_, err := d.db.Exec(`
		UPDATE projects
		SET name = $1, description = $2, code = $3, features = $4, status = $5, updated_at = NOW()
		WHERE id = $6
	`, name, description, code, featuresJSON, models.ProjectStatusReady, projectID)
	return err
}

func (d *DatabaseClient) UpdateProjectCode(projectID uuid.UUID, code string) error {
	_, err := d.db.Exec(`
		UPDATE projects
		SET code = $1, updated_at = NOW()
		WHERE id = $2
	`, code, projectID)
	return err
}

func (d *DatabaseClient) DeleteProject(projectID, userID uuid.UUID) error {
	_, err := d.db.Exec(`
		DELETE FROM projects
		WHERE id = $1 AND user_id = $2
	`, projectID, userID)
	return err
}

// --- App files ---

func (d *DatabaseClient) ListAppFiles(projectID uuid.UUID) ([]models.AppFile, error) {
	rows, err := d.db.Query(`
		SELECT id, project_id, file_path, file_type, content, is_main, created_at, updated_at
		FROM app_files
		WHERE project_id = $1
		ORDER BY file_path ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list app files: %w", err)
	}
	defer rows.Close()

	var files []models.AppFile
	for rows.Next() {
		var file models.AppFile
		err := rows.Scan(
			&file.ID, &file.ProjectID, &file.FilePath, &file.FileType,
			&file.Content, &file.IsMain, &file.CreatedAt, &file.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan app file: %w", err)
		}
		files = append(files, file)
	}

	return files, nil
}

func (d *DatabaseClient) CreateAppFile(projectID uuid.UUID, filePath, fileType, content string, isMain bool) error {
	_, err := d.db.Exec(`
		INSERT INTO app_files (id, project_id, file_path, file_type, content, is_main)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), projectID, filePath, fileType, content, isMain)
	return err
}

// UpsertAppFile updates the row for a path in place, or inserts it when the
// path is new. This is the modify-mode partial-update primitive: files not
// mentioned in a response are never touched.
func (d *DatabaseClient) UpsertAppFile(projectID uuid.UUID, filePath, fileType, content string, isMain bool) error {
	_, err := d.db.Exec(`
		INSERT INTO app_files (id, project_id, file_path, file_type, content, is_main)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (project_id, file_path)
		DO UPDATE SET content = EXCLUDED.content, updated_at = NOW()
	`, uuid.New(), projectID, filePath, fileType, content, isMain)
	return err
}

func (d *DatabaseClient) DeleteAppFiles(projectID uuid.UUID) error {
	_, err := d.db.Exec(`
		DELETE FROM app_files
		WHERE project_id = $1
	`, projectID)
	return err
}

// --- Chat messages ---

func (d *DatabaseClient) CreateChatMessage(projectID uuid.UUID, sender, messageType, message string, fileURLs []string, metadata *models.MessageMetadata) (*models.ChatMessage, error) {
	fileURLsJSON, _ := json.Marshal(fileURLs)
	var metadataJSON []byte
	if metadata != nil {
		metadataJSON, _ = json.Marshal(metadata)
	}

	var msg models.ChatMessage
	err := d.db.QueryRow(`
		INSERT INTO chat_messages (id, project_id, sender, message_type, message, file_urls, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, project_id, sender, message_type, message, file_urls, metadata, created_at
	`, uuid.New(), projectID, sender, messageType, message, fileURLsJSON, metadataJSON).Scan(
		&msg.ID, &msg.ProjectID, &msg.Sender, &msg.MessageType,
		&msg.Message, &msg.FileURLs, &msg.Metadata, &msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat message: %w", err)
	}

	return &msg, nil
}

func (d *DatabaseClient) ListChatMessages(projectID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	rows, err := d.db.Query(`
		SELECT id, project_id, sender, message_type, message, file_urls, metadata, created_at
		FROM chat_messages
		WHERE project_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		err := rows.Scan(
			&msg.ID, &msg.ProjectID, &msg.Sender, &msg.MessageType,
			&msg.Message, &msg.FileURLs, &msg.Metadata, &msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// --- Project history ---

func (d *DatabaseClient) CreateProjectHistory(projectID uuid.UUID, filePath, content, changeDescription, createdBy string) (*models.ProjectHistory, error) {
	var entry models.ProjectHistory
	err := d.db.QueryRow(`
		INSERT INTO project_history (id, project_id, file_path, content, change_description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, project_id, file_path, content, change_description, created_by, created_at
	`, uuid.New(), projectID, filePath, content, changeDescription, createdBy).Scan(
		&entry.ID, &entry.ProjectID, &entry.FilePath, &entry.Content,
		&entry.ChangeDescription, &entry.CreatedBy, &entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create history entry: %w", err)
	}

	return &entry, nil
}

func (d *DatabaseClient) GetProjectHistory(historyID, projectID uuid.UUID) (*models.ProjectHistory, error) {
	var entry models.ProjectHistory
	err := d.db.QueryRow(`
		SELECT id, project_id, file_path, content, change_description, created_by, created_at
		FROM project_history
		WHERE id = $1 AND project_id = $2
	`, historyID, projectID).Scan(
		&entry.ID, &entry.ProjectID, &entry.FilePath, &entry.Content,
		&entry.ChangeDescription, &entry.CreatedBy, &entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}

	return &entry, nil
}

func (d *DatabaseClient) ListProjectHistory(projectID uuid.UUID) ([]models.ProjectHistory, error) {
	rows, err := d.db.Query(`
		SELECT id, project_id, file_path, content, change_description, created_by, created_at
		FROM project_history
		WHERE project_id = $1
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []models.ProjectHistory
	for rows.Next() {
		var entry models.ProjectHistory
		err := rows.Scan(
			&entry.ID, &entry.ProjectID, &entry.FilePath, &entry.Content,
			&entry.ChangeDescription, &entry.CreatedBy, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// --- LLM request telemetry (claude.RequestLogger) ---

func (d *DatabaseClient) LogRequestPending(ctx context.Context, userID uuid.UUID, promptChars int, useWebContext bool) (uuid.UUID, error) {
	id := uuid.New()
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO llm_requests (id, user_id, prompt_chars, use_web_context, status)
		VALUES ($1, $2, $3, $4, 'pending')
	`, id, userID, promptChars, useWebContext)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to log pending request: %w", err)
	}
	return id, nil
}

func (d *DatabaseClient) LogRequestCompleted(ctx context.Context, requestID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE llm_requests
		SET status = 'completed', updated_at = NOW()
		WHERE id = $1
	`, requestID)
	return err
}

func (d *DatabaseClient) LogRequestFailed(ctx context.Context, requestID uuid.UUID, errMsg string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE llm_requests
		SET status = 'failed', error = $1, updated_at = NOW()
		WHERE id = $2
	`, errMsg, requestID)
	return err
}
