// Package ai turns natural language questions into structured intents and
// computed metrics into founder-ready narrative. Model calls degrade
// gracefully: intent extraction falls back to a general query, insights
// fall back to a plain metric listing, and follow-up suggestions fail
// silent. The /ask endpoint must produce numbers even when the model
// misbehaves.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhimh33/Skylark-BI/pkg/core/llm"
	"github.com/abhimh33/Skylark-BI/pkg/models"
)

const fallbackClarification = "I couldn't fully understand your question. Could you rephrase it?"

// Service orchestrates LLM calls for the /ask pipeline.
type Service struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewService creates an AI service over the given provider. A nil logger
// disables logging.
func NewService(provider llm.Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, logger: logger}
}

// intentPayload is the wire shape the intent extraction prompt asks for.
type intentPayload struct {
	Sector    *string `json:"sector"`
	TimeRange *struct {
		StartDate *string `json:"start_date"`
		EndDate   *string `json:"end_date"`
		Period    *string `json:"period"`
	} `json:"time_range"`
	MetricType            string   `json:"metric_type"`
	Entities              []string `json:"entities"`
	Confidence            float64  `json:"confidence"`
	RequiresClarification bool     `json:"requires_clarification"`
	ClarificationPrompt   *string  `json:"clarification_prompt"`
}

// fallbackIntent is returned whenever extraction fails outright. The
// pipeline still answers with the general metric bundle.
func fallbackIntent(query string) *models.Intent {
	return &models.Intent{
		MetricType:            models.MetricGeneral,
		Confidence:            0.5,
		RequiresClarification: true,
		ClarificationPrompt:   fallbackClarification,
		RawQuery:              query,
	}
}

// ExtractIntent interprets a natural language question into a structured
// intent. Never returns an error: a failed model call or unparsable output
// produces the low-confidence general fallback instead.
func (s *Service) ExtractIntent(ctx context.Context, query string, availableSectors []string) *models.Intent {
	sectors := strings.Join(availableSectors, ", ")
	if sectors == "" {
		sectors = "unknown"
	}
	prompt := fmt.Sprintf(intentExtractionPrompt, sectors, query)

	response, err := s.provider.GenerateResponse(ctx, prompt, intentSystemPrompt, withTemperature(llm.JSONMode(), 0.1))
	if err != nil {
		s.logger.Warn("intent extraction call failed", zap.Error(err))
		return fallbackIntent(query)
	}

	var payload intentPayload
	if err := SmartParse(response, &payload); err != nil {
		s.logger.Warn("failed to parse intent output", zap.Error(err), zap.String("output_head", head(response, 200)))
		return fallbackIntent(query)
	}

	intent := &models.Intent{
		MetricType:            models.ParseMetricType(strings.ToLower(payload.MetricType)),
		Entities:              payload.Entities,
		Confidence:            payload.Confidence,
		RequiresClarification: payload.RequiresClarification,
		RawQuery:              query,
	}
	if payload.Sector != nil {
		intent.Sector = *payload.Sector
	}
	if payload.ClarificationPrompt != nil {
		intent.ClarificationPrompt = *payload.ClarificationPrompt
	}
	if payload.TimeRange != nil {
		tr := &models.TimeRange{}
		tr.StartDate = parseISODate(payload.TimeRange.StartDate)
		tr.EndDate = parseISODate(payload.TimeRange.EndDate)
		if payload.TimeRange.Period != nil {
			tr.Period = *payload.TimeRange.Period
		}
		if tr.StartDate != nil || tr.EndDate != nil || tr.Period != "" {
			intent.TimeRange = tr
		}
	}
	return intent
}

func parseISODate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}

func withTemperature(options map[string]interface{}, temperature float64) map[string]interface{} {
	if options == nil {
		options = map[string]interface{}{}
	}
	options["temperature"] = temperature
	return options
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// metricsJSON renders metrics into the compact JSON listing the narrative
// prompts expect.
func metricsJSON(metrics []models.MetricResult) string {
	type entry struct {
		Name        string             `json:"name"`
		Value       models.MetricValue `json:"value"`
		Formatted   string             `json:"formatted"`
		Description string             `json:"description"`
	}
	entries := make([]entry, 0, len(metrics))
	for _, m := range metrics {
		entries = append(entries, entry{
			Name:        m.Name,
			Value:       m.Value,
			Formatted:   m.FormattedValue,
			Description: m.Description,
		})
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

func qualityNotes(warnings []models.QualityIssue) string {
	if len(warnings) == 0 {
		return "No significant data quality issues."
	}
	lines := make([]string, 0, len(warnings))
	for _, w := range warnings {
		lines = append(lines, "- "+w.Issue)
	}
	return strings.Join(lines, "\n")
}

func statsJSON(stats models.SummaryStats) string {
	b, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// GenerateExecutiveSummary produces a direct narrative answer to the
// founder's question from the computed metrics.
func (s *Service) GenerateExecutiveSummary(ctx context.Context, question string, metrics []models.MetricResult, stats models.SummaryStats, warnings []models.QualityIssue) (string, error) {
	prompt := fmt.Sprintf(executiveSummaryPrompt, question, metricsJSON(metrics), qualityNotes(warnings), statsJSON(stats))
	response, err := s.provider.GenerateResponse(ctx, prompt, summarySystemPrompt, withTemperature(nil, 0.5))
	if err != nil {
		return "", fmt.Errorf("executive summary generation failed: %w", err)
	}
	return CleanMarkdown(response), nil
}

// GenerateLeadershipUpdate produces the structured briefing with its fixed
// markdown section headers.
func (s *Service) GenerateLeadershipUpdate(ctx context.Context, metrics []models.MetricResult, stats models.SummaryStats, warnings []models.QualityIssue) (string, error) {
	prompt := fmt.Sprintf(leadershipUpdatePrompt, metricsJSON(metrics), statsJSON(stats), qualityNotes(warnings))
	response, err := s.provider.GenerateResponse(ctx, prompt, leadershipSystemPrompt, withTemperature(nil, 0.4))
	if err != nil {
		return "", fmt.Errorf("leadership update generation failed: %w", err)
	}
	return CleanMarkdown(response), nil
}

// GenerateClarification writes a friendly clarifying reply for an
// ambiguous question.
func (s *Service) GenerateClarification(ctx context.Context, question, ambiguityReason string, availableOptions []string) (string, error) {
	prompt := fmt.Sprintf(clarificationPrompt, question, ambiguityReason, strings.Join(availableOptions, ", "))
	response, err := s.provider.GenerateResponse(ctx, prompt, clarificationSystemPrompt, withTemperature(nil, 0.7))
	if err != nil {
		return "", fmt.Errorf("clarification generation failed: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// GenerateFollowUpSuggestions proposes up to three follow-up questions.
// Suggestions are decorative; any failure returns nil rather than an error.
func (s *Service) GenerateFollowUpSuggestions(ctx context.Context, question string, metricType models.MetricType, availableSectors []string) []string {
	prompt := fmt.Sprintf(followUpPrompt, question, string(metricType), strings.Join(availableSectors, ", "))
	response, err := s.provider.GenerateResponse(ctx, prompt, followUpSystemPrompt, withTemperature(nil, 0.7))
	if err != nil {
		s.logger.Warn("follow-up suggestion call failed", zap.Error(err))
		return nil
	}

	var suggestions []string
	if err := SmartParse(response, &suggestions); err != nil {
		s.logger.Warn("failed to parse follow-up suggestions", zap.Error(err))
		return nil
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

// FallbackInsights renders a plain metric listing used when narrative
// generation fails. The numbers still reach the founder.
func FallbackInsights(metrics []models.MetricResult) string {
	var b strings.Builder
	b.WriteString("Here's what the numbers show:\n\n")
	for _, m := range metrics {
		fmt.Fprintf(&b, "**%s:** %s\n\n", m.Description, m.FormattedValue)
	}
	return strings.TrimSpace(b.String())
}
