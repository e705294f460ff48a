package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lifeos/lifeos-api/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default chat model
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIImageModel is the default image model
	DefaultOpenAIImageModel = "dall-e-3"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
	// ErrNoImageInResponse is returned when the API response has no image data
	ErrNoImageInResponse = "no image data in response"
)

// OpenAIProvider implements Provider using OpenAI's API
type OpenAIProvider struct {
	client     openai.Client
	model      string
	imageModel string
	logger     *zap.Logger
	debugMode  bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey, baseURL, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:     client,
		model:      model,
		imageModel: DefaultOpenAIImageModel,
		logger:     logger,
		debugMode:  debugMode,
	}
}

// complete sends a system+user prompt pair and returns the response content
func (p *OpenAIProvider) complete(ctx context.Context, operation, system, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		// Temperature omitted - use model default to avoid "unsupported_value" errors
	}

	requestID := ExtractRequestID(ctx)
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to %s: %w", operation, apiErr)
		}
		return "", fmt.Errorf("failed to %s: %w", operation, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}

// DailyBrief fetches the day's briefing
func (p *OpenAIProvider) DailyBrief(ctx context.Context) (string, error) {
	return p.complete(ctx, "daily_brief",
		"You are a motivating assistant for a personal productivity dashboard.",
		"Provide a concise, motivating daily briefing for a user of a personal productivity dashboard. Include a piece of interesting tech news, a productivity tip, and a short motivational quote. Format the output as markdown with headings for each section.")
}

// WeeklySummary extrapolates one day's snapshot into a weekly summary
func (p *OpenAIProvider) WeeklySummary(ctx context.Context, snapshot WeeklySnapshot) (string, error) {
	habits := strings.Join(completedHabitNames(snapshot.Habits), ", ")
	if habits == "" {
		habits = "None"
	}
	todos := strings.Join(completedTodoTexts(snapshot.Todos), ", ")
	if todos == "" {
		todos = "None"
	}
	journalSnippet := snapshot.JournalEntry
	if len(journalSnippet) > 100 {
		journalSnippet = journalSnippet[:100]
	}

	prompt := fmt.Sprintf(`You are an AI assistant for a 'Life OS' app. Analyze the user's daily data and generate a motivational summary for their week.
This data represents a snapshot of one day this week. Extrapolate to celebrate their effort for the entire week.
Highlight their achievements and consistency. Be encouraging and provide a positive outlook for the week ahead.
Format the output as markdown.

**User's Data Snapshot:**
- **Completed Habits Today:** %s
- **Completed Todos Today:** %s
- **Journal Entry Snippet:** %s...

Based on this, generate a warm and motivational summary celebrating their weekly progress.`, habits, todos, journalSnippet)

	return p.complete(ctx, "weekly_summary",
		"You are a warm, encouraging assistant for a personal productivity dashboard.",
		prompt)
}

// AnalyzeBrainDump organizes raw notes into a structured outline
func (p *OpenAIProvider) AnalyzeBrainDump(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`You are an expert AI assistant skilled in productivity and organization.
Analyze the following 'brain dump' from a user. Your task is to organize the thoughts into a structured mind map format.
Use markdown with nested lists to create this structure.
Identify key themes, projects, actionable next steps, and any underlying feelings or concerns.
The goal is to bring clarity and order to the user's raw thoughts.

**User's Brain Dump:**
---
%s
---

Provide the analysis below.`, text)

	return p.complete(ctx, "analyze_brain_dump",
		"You are an expert AI assistant skilled in productivity and organization.",
		prompt)
}

// GenerateImage produces an image from a prompt, returned as a URL or data URI
func (p *OpenAIProvider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	requestID := ExtractRequestID(ctx)
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "generate_image"),
			zap.String("model", p.imageModel),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(p.imageModel),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	})
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "generate_image"),
				zap.String("model", p.imageModel),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to generate image: %w", apiErr)
		}
		return "", fmt.Errorf("failed to generate image: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", errors.New(ErrNoImageInResponse)
	}

	image := resp.Data[0]
	if image.B64JSON != "" {
		return "data:image/png;base64," + image.B64JSON, nil
	}
	if image.URL != "" {
		return image.URL, nil
	}
	return "", errors.New(ErrNoImageInResponse)
}

// SuggestTasks asks for three actionable tasks as a JSON array
func (p *OpenAIProvider) SuggestTasks(ctx context.Context, planning PlanningContext) ([]string, error) {
	var goalLines []string
	for _, wg := range planning.WeeklyGoals {
		if !wg.Completed {
			goalLines = append(goalLines, "- "+wg.Text)
		}
	}
	goalsText := strings.Join(goalLines, "\n")
	if goalsText == "" {
		goalsText = "No active weekly goals."
	}

	var eventLines []string
	for _, ev := range planning.Events {
		eventLines = append(eventLines, fmt.Sprintf("- %s at %s", ev.Title, ev.Time))
	}
	eventsText := strings.Join(eventLines, "\n")
	if eventsText == "" {
		eventsText = "No events scheduled."
	}

	prompt := fmt.Sprintf(`As a productivity assistant, analyze the user's context and suggest 3 actionable tasks for today.
The tasks should be concise, clear, and directly related to their goals and schedule.
Return ONLY a JSON array of strings, like ["Task 1", "Task 2", "Task 3"]. Do not include any other text, markdown, or code fences.

**User's Context:**
**This Week's Active Goals:**
%s
**Today's Calendar Events:**
%s

Based on this, what are 3 specific tasks they should focus on today?`, goalsText, eventsText)

	content, err := p.complete(ctx, "suggest_tasks",
		"You are a productivity assistant. Respond with a valid JSON array of strings only.",
		prompt)
	if err != nil {
		return nil, err
	}

	tasks, err := parseSuggestedTasks(content)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// parseSuggestedTasks tolerates code fences and surrounding prose around the array
func parseSuggestedTasks(content string) ([]string, error) {
	raw := strings.TrimSpace(content)
	var tasks []string
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start == -1 || end == -1 || end <= start {
			return nil, fmt.Errorf("failed to parse task suggestions: %w", err)
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &tasks); err != nil {
			return nil, fmt.Errorf("failed to parse task suggestions: %w", err)
		}
	}
	if len(tasks) > MaxSuggestedTasks {
		tasks = tasks[:MaxSuggestedTasks]
	}
	return tasks, nil
}

// JournalPrompt asks for a single reflective question
func (p *OpenAIProvider) JournalPrompt(ctx context.Context, reflection ReflectionContext) (string, error) {
	completed := strings.Join(completedHabitNames(reflection.Habits), ", ")
	if completed == "" {
		completed = "none"
	}
	missed := strings.Join(incompleteHabitNames(reflection.Habits), ", ")
	if missed == "" {
		missed = "none"
	}

	var value models.CoreValue
	if len(reflection.CoreValues) > 0 {
		// Rotate by day so the prompt stays fresh without being random
		value = reflection.CoreValues[time.Now().YearDay()%len(reflection.CoreValues)]
	}

	prompt := fmt.Sprintf(`You are a thoughtful journaling assistant. Your goal is to provide an insightful, open-ended question to help the user reflect on their day.
Base the question on their completed habits, their missed habits, or one of their core values.
Keep the prompt to a single, engaging question. Do not add any extra conversational text, quotes, or formatting.

**User's Context:**
- Habits they completed today: %s
- Habits they missed today: %s
- A core value of theirs: "%s" - which means "%s"

Generate one reflective journal prompt based on this context.`, completed, missed, value.Value, value.Statement)

	content, err := p.complete(ctx, "journal_prompt",
		"You are a thoughtful journaling assistant.",
		prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// CongratulateGoal writes a short celebration note for a completed goal
func (p *OpenAIProvider) CongratulateGoal(ctx context.Context, goal models.Goal) (string, error) {
	prompt := fmt.Sprintf(`A user of a personal productivity dashboard just completed a long-term goal from their vision board.
Write a short, warm congratulation note (2-3 sentences). Reference the goal and the reason they set it.
Do not use markdown headings.

**Goal:** %s
**Why it mattered to them:** %s`, goal.Title, goal.Why)

	content, err := p.complete(ctx, "congratulate_goal",
		"You are a warm, encouraging assistant. Keep responses short.",
		prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}
