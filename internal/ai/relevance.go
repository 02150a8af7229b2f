package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"finsight/pkg/contracts/domain"
)

const relevanceSystemPrompt = `You advise which financial KPIs a dataset can support. ` +
	`The full KPI list is: cash_visibility, days_cash_on_hand, forecast_accuracy, ` +
	`budget_vs_actual_spend, payment_stp_rate, cost_per_transaction, marketing_spend_roi, ` +
	`customer_acquisition_cost. Respond with a single JSON object and nothing else: ` +
	`{"relevant_kpis": [...], "irrelevant_kpis": [...], "data_quality": "excellent|good|fair", ` +
	`"recommendations": [...]}. Every KPI must appear in exactly one list.`

// AdvisoryRelevance asks the LLM which KPIs the dataset supports. It
// implements kpi.RelevanceStrategy and is always wrapped with the
// rule-based fallback; errors here are expected operating conditions.
type AdvisoryRelevance struct {
	client *Client
	logger *slog.Logger
}

// NewAdvisoryRelevance creates the advisory strategy.
func NewAdvisoryRelevance(client *Client, logger *slog.Logger) *AdvisoryRelevance {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdvisoryRelevance{client: client, logger: logger}
}

// Assess summarizes the dataset's shape (never its full contents) for
// the model. Unknown KPI names in the reply are dropped; an effectively
// empty reply is an error.
func (a *AdvisoryRelevance) Assess(ctx context.Context, ds *domain.Dataset) (domain.RelevanceReport, error) {
	if !a.client.Enabled() {
		return domain.RelevanceReport{}, fmt.Errorf("advisory relevance disabled: no api key")
	}

	content, err := a.client.Complete(ctx, relevanceSystemPrompt, datasetSummary(ds), 0.2, 512)
	if err != nil {
		return domain.RelevanceReport{}, err
	}

	blob, ok := ExtractJSON(content)
	if !ok {
		return domain.RelevanceReport{}, fmt.Errorf("no JSON object in advisory output")
	}

	var parsed struct {
		RelevantKPIs    []string `json:"relevant_kpis"`
		IrrelevantKPIs  []string `json:"irrelevant_kpis"`
		DataQuality     string   `json:"data_quality"`
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal(blob, &parsed); err != nil {
		return domain.RelevanceReport{}, fmt.Errorf("decode advisory verdict: %w", err)
	}

	report := domain.RelevanceReport{
		RelevantKPIs:    filterKnownKPIs(parsed.RelevantKPIs),
		IrrelevantKPIs:  filterKnownKPIs(parsed.IrrelevantKPIs),
		DataQuality:     parsed.DataQuality,
		Recommendations: parsed.Recommendations,
		Source:          "advisory",
	}
	if len(report.RelevantKPIs)+len(report.IrrelevantKPIs) == 0 {
		return domain.RelevanceReport{}, fmt.Errorf("advisory verdict names no known KPIs")
	}
	if report.DataQuality == "" {
		report.DataQuality = "fair"
	}
	return report, nil
}

func filterKnownKPIs(names []string) []string {
	known := make(map[string]bool, len(domain.AllKPIs))
	for _, k := range domain.AllKPIs {
		known[k] = true
	}
	var out []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if known[n] {
			out = append(out, n)
		}
	}
	return out
}

// datasetSummary describes table shapes and provenance compactly.
func datasetSummary(ds *domain.Dataset) string {
	var b strings.Builder
	b.WriteString("Dataset summary:\n")
	fmt.Fprintf(&b, "- transactions: %d rows, columns %s, synthetic=%v\n",
		len(ds.Transactions), provColumns(ds.TransactionInfo), ds.TransactionInfo.Synthetic)
	fmt.Fprintf(&b, "- campaigns: %d rows, columns %s, synthetic=%v\n",
		len(ds.Campaigns), provColumns(ds.CampaignInfo), ds.CampaignInfo.Synthetic)
	fmt.Fprintf(&b, "- targets: %d rows, columns %s, synthetic=%v\n",
		len(ds.Targets), provColumns(ds.TargetInfo), ds.TargetInfo.Synthetic)

	if cats := distinctCategories(ds.Transactions, 8); len(cats) > 0 {
		fmt.Fprintf(&b, "- transaction categories: %s\n", strings.Join(cats, ", "))
	}
	return b.String()
}

func provColumns(p domain.TableProvenance) string {
	if len(p.MappedColumns) == 0 {
		return "[none mapped]"
	}
	cols := make([]string, 0, len(p.MappedColumns))
	for c := range p.MappedColumns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return "[" + strings.Join(cols, ", ") + "]"
}

func distinctCategories(tx []domain.TransactionRecord, limit int) []string {
	seen := make(map[string]bool)
	for _, t := range tx {
		if t.Category != "" {
			seen[t.Category] = true
		}
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	if len(cats) > limit {
		cats = cats[:limit]
	}
	return cats
}
