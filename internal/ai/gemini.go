package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deepthink-labs/deepthink-engine/internal/config"
	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// GeminiClient implements Gateway against a Gemini-style generateContent API
// with schema-constrained JSON output. There is no retry loop here: every
// retry in the product is a user-initiated button press.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiClient creates a new gateway client
func NewGeminiClient(cfg config.AIConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &GeminiClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Wire shapes for the generateContent endpoint

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate issues one generateContent call and returns the raw text of the
// first candidate. Schema may be nil for plain-text generation.
func (c *GeminiClient) generate(ctx context.Context, prompt string, schema map[string]any) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	if schema != nil {
		reqBody.GenerationConfig = &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read ai response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ai request failed: http %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: invalid response envelope", ErrEmptyResult)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResult
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrEmptyResult
	}

	slog.Debug("ai generate complete",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"bytes", len(text),
	)

	return text, nil
}

// GenerateQuestions implements Gateway
func (c *GeminiClient) GenerateQuestions(ctx context.Context, scenario *models.ScenarioTemplate, language string) ([]models.Question, error) {
	prompt := fmt.Sprintf(`Based on the following scenario, generate %d distinct and challenging questions to test a user's intuition and decision-making skills. The user's role is a %s at the %s level.

Scenario: %q
Description: %q

IMPORTANT RULES:
1. Every question MUST be 'multiple-choice'.
2. Every question MUST have exactly %d distinct, plausible options.
3. Generate all text for the questions and options in %s.

Return the result as a JSON array that matches the provided schema.`,
		models.QuestionsPerSession, scenario.JobType, scenario.Level,
		scenario.Name, scenario.Description,
		models.OptionsPerQuestion, language)

	text, err := c.generate(ctx, prompt, questionSchema)
	if err != nil {
		return nil, err
	}

	var questions []models.Question
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil, fmt.Errorf("%w: unparsable question payload", ErrEmptyResult)
	}
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// AnalyzePerformance implements Gateway
func (c *GeminiClient) AnalyzePerformance(ctx context.Context, scenario *models.ScenarioTemplate, questions []models.Question, answers []models.Answer, language string, durationSeconds int) (*models.AnalysisReport, error) {
	var sb strings.Builder
	for i, ans := range answers {
		questionText := fmt.Sprintf("Question ID %d", ans.QuestionID)
		for _, q := range questions {
			if q.ID == ans.QuestionID {
				questionText = q.Text
				break
			}
		}
		fmt.Fprintf(&sb, "Question %d: %q\nUser Answer: %q\n\n", i+1, questionText, ans.Answer)
	}

	prompt := fmt.Sprintf(`You are an expert professional development coach. Analyze the user's performance in a training scenario.

Scenario: %q for a %s.
Description: %q

The user was presented with the following questions and gave these answers (which include their selected option and their own justification):
%s
Total Time Taken: %d seconds.

Provide a comprehensive performance analysis: an overall score from 0-100, 2-3 strengths, 1-2 weaknesses, 2-3 actionable optimization tips, feedback on response speed (%d seconds for %d questions), any cognitive biases detected in the reasoning (empty array if none), a per-answer breakdown echoing the original question text and the user's full answer with concise feedback, performance bar-chart data, decision-making pie-chart data, and suggested resources (3-4 research keywords plus 1-2 title/url references; an empty references array is acceptable).

IMPORTANT: Provide the entire analysis report in %s.

Return the result as a single JSON object that matches the provided schema.`,
		scenario.Name, scenario.JobType, scenario.Description,
		sb.String(), durationSeconds, durationSeconds, len(questions), language)

	text, err := c.generate(ctx, prompt, analysisSchema)
	if err != nil {
		return nil, err
	}

	var report models.AnalysisReport
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		return nil, fmt.Errorf("%w: unparsable analysis payload", ErrEmptyResult)
	}
	if err := ValidateReport(&report, len(answers)); err != nil {
		return nil, err
	}
	return &report, nil
}

// GenerateCustomScenario implements Gateway
func (c *GeminiClient) GenerateCustomScenario(ctx context.Context, jobType, level, topic string) (*models.ScenarioTemplate, error) {
	prompt := fmt.Sprintf(`Generate a single, compelling training scenario based on the user's request.

User Request:
- Job/Field: %s
- Experience Level: %s
- Specific Topic/Challenge: %s

Instructions:
1. Create a concise, engaging 'name' for the scenario.
2. Write a 'description' that sets up a challenging situation for the user.
3. Generate an array of 3 relevant 'tags'.
4. Set the 'jobType' and 'level' to match the user's request.
5. Generate a unique 'id' string, like 'custom-1678886400000'.

Return the result as a single JSON object that matches the provided schema.`,
		jobType, level, topic)

	return c.generateScenario(ctx, prompt)
}

// SuggestChallenge implements Gateway
func (c *GeminiClient) SuggestChallenge(ctx context.Context, history []models.Session) (*models.ScenarioTemplate, error) {
	var weaknesses []string
	for _, s := range history {
		weaknesses = append(weaknesses, s.Analysis.Weaknesses...)
	}
	jobType := "general professional"
	if len(history) > 0 {
		jobType = history[0].JobType
	}
	weaknessText := strings.Join(weaknesses, ", ")
	if weaknessText == "" {
		weaknessText = "None specified, assume they need a general challenge."
	}

	prompt := fmt.Sprintf(`A user has demonstrated the following weaknesses in past training scenarios: %q.
Their general field is %q.

Generate a new, single, compelling training scenario suggestion tailored to address these weaknesses: a concise 'name', a brief 'description', 3 relevant 'tags', an appropriate 'level' (Newbie, Expert, Specialist) based on the weaknesses, and 'jobType' set to the user's general field. Include a unique 'id' string.

Return the result as a single JSON object that matches the provided schema.`,
		weaknessText, jobType)

	return c.generateScenario(ctx, prompt)
}

func (c *GeminiClient) generateScenario(ctx context.Context, prompt string) (*models.ScenarioTemplate, error) {
	text, err := c.generate(ctx, prompt, scenarioSchema)
	if err != nil {
		return nil, err
	}

	var scenario models.ScenarioTemplate
	if err := json.Unmarshal([]byte(text), &scenario); err != nil {
		return nil, fmt.Errorf("%w: unparsable scenario payload", ErrEmptyResult)
	}
	if scenario.Name == "" || scenario.Description == "" || !scenario.Level.IsValid() {
		return nil, fmt.Errorf("%w: incomplete scenario payload", ErrEmptyResult)
	}
	return &scenario, nil
}

// BreakdownTask implements Gateway
func (c *GeminiClient) BreakdownTask(ctx context.Context, title string) ([]models.Subtask, error) {
	prompt := fmt.Sprintf(`You are a project management assistant. Break down the following high-level task into a list of smaller, actionable sub-tasks for a software development project.

High-Level Task: %q

For each sub-task, provide a clear 'title' and estimate the 'xp' (experience points) it should be worth, from %d (very simple) to %d (complex).

Generate between 3 and 7 sub-tasks. Return a JSON array of objects that matches the provided schema.`,
		title, models.TaskXPMin, models.TaskXPMax)

	text, err := c.generate(ctx, prompt, subtaskSchema)
	if err != nil {
		return nil, err
	}

	var subtasks []models.Subtask
	if err := json.Unmarshal([]byte(text), &subtasks); err != nil {
		return nil, fmt.Errorf("%w: unparsable subtask payload", ErrEmptyResult)
	}
	if err := ValidateSubtasks(subtasks); err != nil {
		return nil, err
	}
	return subtasks, nil
}

// NoteSuggestion implements Gateway
func (c *GeminiClient) NoteSuggestion(ctx context.Context, noteContent, language string) (string, error) {
	prompt := fmt.Sprintf(`You are an intelligent assistant for a professional user taking notes.
Based on the user's note below, provide one concise, helpful, and actionable suggestion. This could be a related idea, a question to provoke deeper thought, a potential next step, or a resource to look into.

User's Note:
%q

Your suggestion should be direct and to the point. Do not add any conversational fluff.

IMPORTANT: Generate the suggestion in %s.

Return only the suggestion as a plain string.`,
		noteContent, language)

	return c.generate(ctx, prompt, nil)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
