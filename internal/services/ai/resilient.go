package ai

import (
	"context"

	"github.com/lifeos/lifeos-api/internal/models"
	"go.uber.org/zap"
)

// ResilientProvider wraps a live provider and falls back to deterministic
// offline content when the upstream call fails. AI features degrade, they
// never break the dashboard.
type ResilientProvider struct {
	live     Provider
	fallback *FallbackProvider
	logger   *zap.Logger
}

// NewResilientProvider wraps live with the offline fallback
func NewResilientProvider(live Provider, logger *zap.Logger) *ResilientProvider {
	return &ResilientProvider{
		live:     live,
		fallback: NewFallbackProvider(),
		logger:   logger,
	}
}

func (p *ResilientProvider) warn(operation string, err error) {
	p.logger.Warn("ai_provider_fallback",
		zap.String("operation", operation),
		zap.Bool("rate_limited", IsRateLimitError(err)),
		zap.Bool("quota_exceeded", IsQuotaError(err)),
		zap.Error(err),
	)
}

func (p *ResilientProvider) DailyBrief(ctx context.Context) (string, error) {
	out, err := p.live.DailyBrief(ctx)
	if err != nil {
		p.warn("daily_brief", err)
		return p.fallback.DailyBrief(ctx)
	}
	return out, nil
}

func (p *ResilientProvider) WeeklySummary(ctx context.Context, snapshot WeeklySnapshot) (string, error) {
	out, err := p.live.WeeklySummary(ctx, snapshot)
	if err != nil {
		p.warn("weekly_summary", err)
		return p.fallback.WeeklySummary(ctx, snapshot)
	}
	return out, nil
}

func (p *ResilientProvider) AnalyzeBrainDump(ctx context.Context, text string) (string, error) {
	out, err := p.live.AnalyzeBrainDump(ctx, text)
	if err != nil {
		p.warn("analyze_brain_dump", err)
		return p.fallback.AnalyzeBrainDump(ctx, text)
	}
	return out, nil
}

// GenerateImage falls back to the error placeholder, not the offline one, so
// callers can tell a failed generation from a missing API key.
func (p *ResilientProvider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	out, err := p.live.GenerateImage(ctx, prompt)
	if err != nil {
		p.warn("generate_image", err)
		return ErrorImageURL, nil
	}
	return out, nil
}

func (p *ResilientProvider) SuggestTasks(ctx context.Context, planning PlanningContext) ([]string, error) {
	out, err := p.live.SuggestTasks(ctx, planning)
	if err != nil {
		p.warn("suggest_tasks", err)
		return p.fallback.SuggestTasks(ctx, planning)
	}
	return out, nil
}

func (p *ResilientProvider) JournalPrompt(ctx context.Context, reflection ReflectionContext) (string, error) {
	out, err := p.live.JournalPrompt(ctx, reflection)
	if err != nil {
		p.warn("journal_prompt", err)
		return p.fallback.JournalPrompt(ctx, reflection)
	}
	return out, nil
}

func (p *ResilientProvider) CongratulateGoal(ctx context.Context, goal models.Goal) (string, error) {
	out, err := p.live.CongratulateGoal(ctx, goal)
	if err != nil {
		p.warn("congratulate_goal", err)
		return p.fallback.CongratulateGoal(ctx, goal)
	}
	return out, nil
}
