package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// Client is a Go SDK for the deepthink-engine API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new deepthink-engine client
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// apiError mirrors the server's error envelope
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Login authenticates and stores the returned bearer token on the client
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := c.do(ctx, "POST", "/api/v1/auth/login", models.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// ListScenarios retrieves the built-in catalog, optionally filtered by job type
func (c *Client) ListScenarios(ctx context.Context, jobType string) ([]*models.ScenarioTemplate, error) {
	path := "/api/v1/scenarios"
	if jobType != "" {
		path += "?job_type=" + url.QueryEscape(jobType)
	}

	var out struct {
		Scenarios []*models.ScenarioTemplate `json:"scenarios"`
		Total     int                        `json:"total"`
	}
	if err := c.do(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Scenarios, nil
}

// GetScenario retrieves one scenario by ID
func (c *Client) GetScenario(ctx context.Context, id string) (*models.ScenarioTemplate, error) {
	var out models.ScenarioTemplate
	if err := c.do(ctx, "GET", "/api/v1/scenarios/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartSession opens a live training session
func (c *Client) StartSession(ctx context.Context, req models.StartSessionRequest) (*models.SessionSnapshot, error) {
	var out models.SessionSnapshot
	if err := c.do(ctx, "POST", "/api/v1/sessions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession retrieves the live view of a session
func (c *Client) GetSession(ctx context.Context, id string) (*models.SessionSnapshot, error) {
	var out models.SessionSnapshot
	if err := c.do(ctx, "GET", "/api/v1/sessions/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChooseLanguage selects the session locale and starts question generation
func (c *Client) ChooseLanguage(ctx context.Context, id, language string) (*models.SessionSnapshot, error) {
	var out models.SessionSnapshot
	if err := c.do(ctx, "POST", "/api/v1/sessions/"+id+"/language", models.ChooseLanguageRequest{Language: language}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitAnswer records the answer to the current question
func (c *Client) SubmitAnswer(ctx context.Context, id string, req models.SubmitAnswerRequest) (*models.SessionSnapshot, error) {
	var out models.SessionSnapshot
	if err := c.do(ctx, "POST", "/api/v1/sessions/"+id+"/answer", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RestartSession recovers a failed session back to language selection
func (c *Client) RestartSession(ctx context.Context, id string) (*models.SessionSnapshot, error) {
	var out models.SessionSnapshot
	if err := c.do(ctx, "POST", "/api/v1/sessions/"+id+"/restart", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AbandonSession discards a live session
func (c *Client) AbandonSession(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/api/v1/sessions/"+id, nil, nil)
}

// ListTasks retrieves the task board, optionally filtered by priority
func (c *Client) ListTasks(ctx context.Context, priority models.TaskPriority) ([]*models.Task, error) {
	path := "/api/v1/tasks"
	if priority != "" {
		path += "?priority=" + url.QueryEscape(string(priority))
	}

	var out struct {
		Tasks []*models.Task `json:"tasks"`
		Total int            `json:"total"`
	}
	if err := c.do(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// CreateTask adds a task to the To Do column
func (c *Client) CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, "POST", "/api/v1/tasks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MoveTask moves a task to another board column
func (c *Client) MoveTask(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, "POST", "/api/v1/tasks/"+id+"/move", models.MoveTaskRequest{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes a task from the board
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/api/v1/tasks/"+id, nil, nil)
}

// BoardProgress retrieves the board-wide level and XP
func (c *Client) BoardProgress(ctx context.Context) (*models.Progress, error) {
	var out models.Progress
	if err := c.do(ctx, "GET", "/api/v1/tasks/progress", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNotes retrieves notes, optionally filtered by a content substring
func (c *Client) ListNotes(ctx context.Context, query string) ([]*models.Note, error) {
	path := "/api/v1/notes"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}

	var out struct {
		Notes []*models.Note `json:"notes"`
		Total int            `json:"total"`
	}
	if err := c.do(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

// SaveNote creates a note with optional reminder
func (c *Client) SaveNote(ctx context.Context, req models.SaveNoteRequest) (*models.Note, error) {
	var out models.Note
	if err := c.do(ctx, "POST", "/api/v1/notes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListHistory retrieves finished session records, newest first
func (c *Client) ListHistory(ctx context.Context, limit, offset int) ([]*models.Session, error) {
	path := "/api/v1/history"
	if limit > 0 || offset > 0 {
		path += fmt.Sprintf("?limit=%d&offset=%d", limit, offset)
	}

	var out struct {
		Sessions []*models.Session `json:"sessions"`
		Total    int               `json:"total"`
	}
	if err := c.do(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// FieldLevels retrieves per-field mastery aggregates
func (c *Client) FieldLevels(ctx context.Context) ([]*models.FieldLevel, error) {
	var out struct {
		FieldLevels []*models.FieldLevel `json:"field_levels"`
		Total       int                  `json:"total"`
	}
	if err := c.do(ctx, "GET", "/api/v1/history/field-levels", nil, &out); err != nil {
		return nil, err
	}
	return out.FieldLevels, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "GET", "/health", nil, nil)
}

// do performs an HTTP request and decodes the response envelope into out
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *apiError       `json:"error"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !envelope.Success {
		if envelope.Error != nil {
			return fmt.Errorf("API error: %s - %s", envelope.Error.Code, envelope.Error.Message)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal data: %w", err)
		}
	}
	return nil
}
