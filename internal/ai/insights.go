package ai

import (
	"context"
	"fmt"
	"log/slog"

	"finsight/internal/metrics"
	"finsight/pkg/contracts/domain"
)

const insightsSystemPrompt = `You are a senior financial analyst reviewing a company's ` +
	`transactions, marketing campaigns and targets. Respond with a single JSON object ` +
	`and nothing else, with keys "strengths", "weaknesses", "opportunities", "risks" ` +
	`and "recommendations" (each an array of short plain-English strings) and ` +
	`"executive_summary" (one paragraph).`

// InsightGenerator produces the narrative block of an analysis, asking
// the LLM first and composing a deterministic fallback from the
// computed numbers when that fails.
type InsightGenerator struct {
	client *Client
	logger *slog.Logger
}

// NewInsightGenerator creates an insight generator.
func NewInsightGenerator(client *Client, logger *slog.Logger) *InsightGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightGenerator{client: client, logger: logger}
}

// Generate never fails; any AI problem degrades to the fallback block.
func (g *InsightGenerator) Generate(ctx context.Context, result *domain.AnalysisResult) domain.Insights {
	if g.client.Enabled() {
		insights, err := g.generate(ctx, result)
		if err == nil {
			return insights
		}
		g.logger.WarnContext(ctx, "ai insights failed, using fallback",
			slog.String("error", err.Error()))
		metrics.AIFallbacks.WithLabelValues("insights").Inc()
	}
	return FallbackInsights(result)
}

func (g *InsightGenerator) generate(ctx context.Context, result *domain.AnalysisResult) (domain.Insights, error) {
	summary, err := json.Marshal(map[string]interface{}{
		"kpis":            result.KPIs,
		"current_metrics": result.Metrics,
		"patterns":        result.Patterns,
		"predictions":     result.Predictions,
	})
	if err != nil {
		return domain.Insights{}, fmt.Errorf("marshal analysis summary: %w", err)
	}

	content, err := g.client.Complete(ctx, insightsSystemPrompt,
		"Analyze this business data:\n"+string(summary), 0.7, 1024)
	if err != nil {
		return domain.Insights{}, err
	}

	blob, ok := ExtractJSON(content)
	if !ok {
		return domain.Insights{}, fmt.Errorf("no JSON object in model output")
	}

	var parsed domain.Insights
	if err := json.Unmarshal(blob, &parsed); err != nil {
		return domain.Insights{}, fmt.Errorf("decode insights: %w", err)
	}
	if parsed.ExecutiveSummary == "" && len(parsed.Strengths) == 0 && len(parsed.Recommendations) == 0 {
		return domain.Insights{}, fmt.Errorf("model returned an empty insights object")
	}

	parsed.Source = "ai"
	return parsed, nil
}
