package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"finsight/internal/metrics"
	"finsight/pkg/contracts/domain"
)

// Persona selects the voice an analysis question is answered in.
type Persona string

const (
	PersonaCFO  Persona = "cfo"
	PersonaCEO  Persona = "ceo"
	PersonaBoth Persona = "both"
)

// ParsePersona normalizes a user-supplied persona string.
func ParsePersona(s string) (Persona, bool) {
	switch Persona(strings.ToLower(strings.TrimSpace(s))) {
	case PersonaCFO:
		return PersonaCFO, true
	case PersonaCEO:
		return PersonaCEO, true
	case PersonaBoth, "":
		return PersonaBoth, true
	}
	return "", false
}

var personaPrompts = map[Persona]string{
	PersonaCFO: "You are the CFO. Focus on cash position, runway, burn rate and financial discipline. Answer in a few sentences.",
	PersonaCEO: "You are the CEO. Focus on growth, market opportunity and strategic direction. Answer in a few sentences.",
}

// Answer is the response to a persona query.
type Answer struct {
	Persona  string `json:"persona"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	// Source is "ai" or "fallback".
	Source string `json:"source"`
}

// AnswerQuery answers a free-form question about a stored analysis in
// the requested persona's voice. It never fails: LLM problems degrade
// to a deterministic answer built from the computed numbers.
func (g *InsightGenerator) AnswerQuery(ctx context.Context, persona Persona, question string, result *domain.AnalysisResult) Answer {
	if persona == PersonaBoth {
		cfo := g.AnswerQuery(ctx, PersonaCFO, question, result)
		ceo := g.AnswerQuery(ctx, PersonaCEO, question, result)
		return Answer{
			Persona:  string(PersonaBoth),
			Question: question,
			Answer:   "CFO perspective: " + cfo.Answer + "\n\nCEO perspective: " + ceo.Answer,
			Source:   combineSources(cfo.Source, ceo.Source),
		}
	}

	if g.client.Enabled() {
		answer, err := g.answer(ctx, persona, question, result)
		if err == nil {
			return Answer{Persona: string(persona), Question: question, Answer: answer, Source: "ai"}
		}
		g.logger.WarnContext(ctx, "persona query failed, using fallback",
			slog.String("persona", string(persona)),
			slog.String("error", err.Error()))
		metrics.AIFallbacks.WithLabelValues("query").Inc()
	}

	return Answer{
		Persona:  string(persona),
		Question: question,
		Answer:   fallbackAnswer(persona, result),
		Source:   "fallback",
	}
}

func (g *InsightGenerator) answer(ctx context.Context, persona Persona, question string, result *domain.AnalysisResult) (string, error) {
	summary, err := json.Marshal(map[string]interface{}{
		"kpis":        result.KPIs,
		"metrics":     result.Metrics,
		"predictions": result.Predictions,
	})
	if err != nil {
		return "", fmt.Errorf("marshal analysis context: %w", err)
	}

	content, err := g.client.Complete(ctx, personaPrompts[persona],
		fmt.Sprintf("Company data:\n%s\n\nQuestion: %s", summary, question), 0.5, 512)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("model returned an empty answer")
	}
	return content, nil
}

// fallbackAnswer builds a persona-appropriate response from computed
// values alone.
func fallbackAnswer(persona Persona, result *domain.AnalysisResult) string {
	switch persona {
	case PersonaCFO:
		var parts []string
		if cash, ok := result.KPIs.Value(domain.KPICashVisibility); ok {
			parts = append(parts, fmt.Sprintf("Our current net cash position is $%.2f.", cash))
		}
		if days, ok := result.KPIs.Value(domain.KPIDaysCashOnHand); ok {
			parts = append(parts, fmt.Sprintf("At the present burn rate we hold roughly %.0f days of cash.", days))
		}
		if cf := result.Patterns.CashFlow; cf != nil && cf.BurnRate > 0 {
			parts = append(parts, fmt.Sprintf("Average monthly burn in negative months is $%.2f.", cf.BurnRate))
		}
		if len(parts) == 0 {
			parts = append(parts, "We need more complete transaction data before I can speak to cash position with confidence.")
		}
		parts = append(parts, fmt.Sprintf("Overall financial risk is %s.", result.Predictions.RiskLevel))
		return strings.Join(parts, " ")

	case PersonaCEO:
		var parts []string
		if rev := result.Metrics.Revenue; rev != nil {
			parts = append(parts, fmt.Sprintf("We generated $%.2f in revenue with a %.1f%% period-over-period trend.",
				rev.TotalRevenue, rev.GrowthRate*100))
		}
		if roi, ok := result.KPIs.Value(domain.KPIMarketingROI); ok {
			parts = append(parts, fmt.Sprintf("Marketing is returning %.1f%% on spend.", roi))
		}
		if cp := result.Patterns.Campaigns; cp != nil && cp.BestChannel != "" {
			parts = append(parts, fmt.Sprintf("%s is our most efficient growth channel.", cp.BestChannel))
		}
		if len(parts) == 0 {
			parts = append(parts, "The current dataset is too thin for a strategic read; richer sales and campaign data would change that.")
		}
		return strings.Join(parts, " ")
	}
	return "Unsupported persona."
}

func combineSources(a, b string) string {
	if a == "ai" && b == "ai" {
		return "ai"
	}
	if a == "fallback" && b == "fallback" {
		return "fallback"
	}
	return "mixed"
}
