package domain

import (
	"time"
)

// KPI names as they appear in API responses.
const (
	KPICashVisibility   = "cash_visibility"
	KPIDaysCashOnHand   = "days_cash_on_hand"
	KPIForecastAccuracy = "forecast_accuracy"
	KPIBudgetVsActual   = "budget_vs_actual_spend"
	KPIPaymentSTPRate   = "payment_stp_rate"
	KPICostPerTxn       = "cost_per_transaction"
	KPIMarketingROI     = "marketing_spend_roi"
	KPICustomerAcqCost  = "customer_acquisition_cost"
)

// AllKPIs lists every KPI name in presentation order.
var AllKPIs = []string{
	KPICashVisibility,
	KPIDaysCashOnHand,
	KPIForecastAccuracy,
	KPIBudgetVsActual,
	KPIPaymentSTPRate,
	KPICostPerTxn,
	KPIMarketingROI,
	KPICustomerAcqCost,
}

// KpiSet holds the computed KPI values. A nil entry means the KPI was
// judged irrelevant for the dataset and was never computed; it serializes
// as JSON null.
type KpiSet map[string]*float64

// Set stores a computed value for the named KPI.
func (k KpiSet) Set(name string, value float64) {
	v := value
	k[name] = &v
}

// Value returns the KPI value and whether it was computed.
func (k KpiSet) Value(name string) (float64, bool) {
	v, ok := k[name]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// RelevanceReport is the outcome of the KPI relevance decision.
type RelevanceReport struct {
	RelevantKPIs    []string `json:"relevant_kpis"`
	IrrelevantKPIs  []string `json:"irrelevant_kpis"`
	DataQuality     string   `json:"data_quality"`
	Recommendations []string `json:"recommendations,omitempty"`
	// Source is "rules" or "advisory" depending on which strategy
	// produced the report.
	Source string `json:"source"`
}

// Relevant reports whether the named KPI made the relevant list.
func (r RelevanceReport) Relevant(name string) bool {
	for _, k := range r.RelevantKPIs {
		if k == name {
			return true
		}
	}
	return false
}

// RevenueMetrics summarizes the transactions table.
type RevenueMetrics struct {
	TotalRevenue        float64 `json:"total_revenue"`
	TotalExpenses       float64 `json:"total_expenses"`
	NetIncome           float64 `json:"net_income"`
	AvgTransactionValue float64 `json:"avg_transaction_value"`
	TransactionCount    int     `json:"transaction_count"`
	GrowthRate          float64 `json:"growth_rate"`
}

// MarketingMetrics summarizes the campaigns table.
type MarketingMetrics struct {
	TotalSpend            float64 `json:"total_spend"`
	TotalAcquisitions     int     `json:"total_acquisitions"`
	CostPerAcquisition    float64 `json:"cost_per_acquisition"`
	AcquisitionGrowthRate float64 `json:"acquisition_growth_rate"`
	SpendEfficiency       float64 `json:"spend_efficiency"`
}

// PerformanceMetrics holds cross-table operational ratios.
type PerformanceMetrics struct {
	TransactionSuccessRate float64 `json:"transaction_success_rate"`
	AcquisitionEfficiency  float64 `json:"acquisition_efficiency"`
}

// CurrentMetrics groups the point-in-time metric blocks. A nil block
// means its source table was absent.
type CurrentMetrics struct {
	Revenue     *RevenueMetrics     `json:"revenue,omitempty"`
	Marketing   *MarketingMetrics   `json:"marketing,omitempty"`
	Performance *PerformanceMetrics `json:"performance,omitempty"`
}

// TransactionPatterns describes timing structure in the transactions table.
type TransactionPatterns struct {
	BestDay        string  `json:"best_day"`
	WorstDay       string  `json:"worst_day"`
	BestMonth      string  `json:"best_month"`
	WorstMonth     string  `json:"worst_month"`
	DailyFrequency float64 `json:"daily_frequency"`
	Volatility     float64 `json:"volatility"`
	GrowthRate     float64 `json:"growth_rate"`
}

// CampaignPatterns describes channel performance in the campaigns table.
type CampaignPatterns struct {
	BestChannel       string  `json:"best_channel"`
	WorstChannel      string  `json:"worst_channel"`
	CampaignFrequency float64 `json:"campaign_frequency"`
	SpendTrend        float64 `json:"spend_trend"`
	AcquisitionTrend  float64 `json:"acquisition_trend"`
}

// CashFlowAnalysis summarizes monthly net cash movement.
type CashFlowAnalysis struct {
	MonthlyAverage    float64 `json:"monthly_average"`
	MonthlyVolatility float64 `json:"monthly_volatility"`
	PositiveMonths    int     `json:"positive_months"`
	NegativeMonths    int     `json:"negative_months"`
	Trend             float64 `json:"trend"`
	BurnRate          float64 `json:"burn_rate"`
}

// SeasonalityAnalysis holds monthly seasonality indices.
type SeasonalityAnalysis struct {
	// Indices maps month name (January..December) to the ratio of that
	// month's total to the overall monthly mean.
	Indices     map[string]float64 `json:"indices"`
	PeakMonth   string             `json:"peak_month"`
	TroughMonth string             `json:"trough_month"`
	Strength    float64            `json:"strength"`
}

// PatternAnalysis groups all derived pattern blocks.
type PatternAnalysis struct {
	Transactions *TransactionPatterns `json:"transactions,omitempty"`
	Campaigns    *CampaignPatterns    `json:"campaigns,omitempty"`
	CashFlow     *CashFlowAnalysis    `json:"cash_flow,omitempty"`
	Seasonality  *SeasonalityAnalysis `json:"seasonality,omitempty"`
}

// Forecast is the projection for a single horizon.
type Forecast struct {
	HorizonDays           int     `json:"horizon_days"`
	ProjectedRevenue      float64 `json:"projected_revenue"`
	RevenueGrowthPercent  float64 `json:"revenue_growth_percent"`
	ProjectedCashFlow     float64 `json:"projected_cash_flow"`
	ProjectedAcquisitions float64 `json:"projected_acquisitions"`
	ProjectedSpend        float64 `json:"projected_spend"`
}

// Risk levels derived from counted risk flags.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// PredictionSet holds forecasts for every horizon plus the risk
// assessment shared across them.
type PredictionSet struct {
	Horizons  map[string]Forecast `json:"horizons"`
	RiskLevel string              `json:"risk_level"`
	RiskFlags []string            `json:"risk_flags,omitempty"`
}

// Insights is the narrative block, either AI-generated or the
// deterministic fallback.
type Insights struct {
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Opportunities    []string `json:"opportunities"`
	Risks            []string `json:"risks"`
	Recommendations  []string `json:"recommendations"`
	ExecutiveSummary string   `json:"executive_summary"`
	// Source is "ai" when the external model produced the block,
	// "fallback" otherwise.
	Source string `json:"source"`
}

// Analysis status values.
const (
	AnalysisStatusComplete    = "complete"
	AnalysisStatusUnavailable = "unavailable"
)

// AnalysisResult is the complete output for one analyzed workbook.
type AnalysisResult struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	GeneratedAt time.Time `json:"generated_at"`

	FileInfo FileInfo `json:"file_info"`

	KPIs        KpiSet          `json:"kpis"`
	Relevance   RelevanceReport `json:"relevance"`
	Metrics     CurrentMetrics  `json:"current_metrics"`
	Patterns    PatternAnalysis `json:"patterns"`
	Predictions PredictionSet   `json:"predictions"`
	Insights    Insights        `json:"insights"`

	Cleaning map[SheetRole]CleaningReport `json:"cleaning,omitempty"`

	// Detail carries a short human-readable note when Status is
	// "unavailable".
	Detail string `json:"detail,omitempty"`
}
