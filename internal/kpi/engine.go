package kpi

import (
	"log/slog"
	"math"

	"finsight/pkg/contracts/domain"
)

// Engine computes KPI values over a cleaned dataset. Every calculator
// is total: divisions by zero and non-finite intermediates collapse to
// 0.0 rather than erroring, and missing inputs route through the
// documented fallback formulas.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a KPI engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Compute evaluates every KPI the relevance report approved. KPIs
// judged irrelevant are present in the result as nil and are never
// calculated.
func (e *Engine) Compute(ds *domain.Dataset, relevance domain.RelevanceReport) domain.KpiSet {
	calculators := map[string]func(*domain.Dataset) float64{
		domain.KPICashVisibility:   CashVisibility,
		domain.KPIDaysCashOnHand:   DaysCashOnHand,
		domain.KPIForecastAccuracy: ForecastAccuracy,
		domain.KPIBudgetVsActual:   BudgetVsActualSpend,
		domain.KPIPaymentSTPRate:   PaymentSTPRate,
		domain.KPICostPerTxn:       CostPerTransaction,
		domain.KPIMarketingROI:     MarketingSpendROI,
		domain.KPICustomerAcqCost:  CustomerAcquisitionCost,
	}

	set := make(domain.KpiSet, len(domain.AllKPIs))
	for _, name := range domain.AllKPIs {
		if !relevance.Relevant(name) {
			set[name] = nil
			continue
		}
		set.Set(name, safeFloat(calculators[name](ds)))
	}

	e.logger.Debug("kpis computed",
		slog.Int("relevant", len(relevance.RelevantKPIs)),
		slog.Int("irrelevant", len(relevance.IrrelevantKPIs)))
	return set
}

// CashVisibility is net cash position: categorized revenue minus
// categorized expenses when a real category column exists and yields a
// positive revenue sum, otherwise inflows minus outflows by sign.
func CashVisibility(ds *domain.Dataset) float64 {
	if ds.TransactionInfo.HasSourceColumn(domain.ColumnCategory) {
		revenue := sumWhere(ds.Transactions, revenueCategories)
		if revenue > 0 {
			expenses := math.Abs(sumWhere(ds.Transactions, expenseCategories))
			return round2(revenue - expenses)
		}
	}
	inflows, outflows := splitBySign(ds.Transactions)
	return round2(inflows - outflows)
}

// DaysCashOnHand estimates runway from the current cash target (or the
// cash visibility KPI when no target exists) against the observed daily
// burn. The result is capped at 365 days.
func DaysCashOnHand(ds *domain.Dataset) float64 {
	cash, ok := ds.TargetValue("Current_Cash")
	if !ok {
		cash = CashVisibility(ds)
	}
	if cash <= 0 {
		return 0
	}

	var expenses float64
	if ds.TransactionInfo.HasSourceColumn(domain.ColumnCategory) {
		expenses = math.Abs(sumWhere(ds.Transactions, expenseCategories))
	} else {
		_, outflows := splitBySign(ds.Transactions)
		expenses = outflows
	}

	if expenses == 0 {
		// No expense signal: assume a 10% monthly burn.
		daily := cash * 0.10 / 30
		if daily <= 0 {
			return 90
		}
		return round2(math.Min(cash/daily, 365))
	}

	days := periodDays(ds.Transactions)
	daily := expenses / float64(days)
	if daily == 0 {
		return 30
	}
	return round2(math.Min(cash/daily, 365))
}

// ForecastAccuracy reads the accuracy target, defaulting to 0.92.
func ForecastAccuracy(ds *domain.Dataset) float64 {
	for _, key := range []string{"Forecast_Accuracy_Target", "Forecast_Accuracy"} {
		if v, ok := ds.TargetValue(key); ok {
			return v
		}
	}
	return 0.92
}

// BudgetVsActualSpend is marketing spend as a percentage of budget. The
// budget comes from the first matching target key; with no budget
// target the actual spend plus 20% headroom stands in.
func BudgetVsActualSpend(ds *domain.Dataset) float64 {
	if len(ds.Campaigns) == 0 {
		return 0
	}
	spend := totalSpend(ds.Campaigns)

	var budget float64
	for _, key := range budgetTargetKeys {
		if v, ok := ds.TargetValue(key); ok && v > 0 {
			budget = v
			break
		}
	}
	if budget == 0 {
		budget = spend * 1.2
	}
	if budget == 0 {
		return 0
	}
	return round2(spend / budget * 100)
}

// PaymentSTPRate is the share of transactions that completed without
// manual intervention, approximated by nonzero amounts and adjusted by
// the success ratio within payment-categorized rows.
func PaymentSTPRate(ds *domain.Dataset) float64 {
	total := len(ds.Transactions)
	if total == 0 {
		return 0
	}
	nonzero := 0
	for _, t := range ds.Transactions {
		if t.Amount != 0 {
			nonzero++
		}
	}
	rate := float64(nonzero) / float64(total) * 100

	if ds.TransactionInfo.HasSourceColumn(domain.ColumnCategory) {
		payments, succeeded := 0, 0
		for _, t := range ds.Transactions {
			if categoryMatches(t.Category, paymentCategories) {
				payments++
				if t.Amount != 0 {
					succeeded++
				}
			}
		}
		if payments > 0 {
			rate *= float64(succeeded) / float64(payments)
		}
	}

	return round2(math.Max(0, math.Min(rate, 100)))
}

// CostPerTransaction averages processing costs per transaction. Without
// cost-categorized rows, costs are estimated at 0.5% of absolute volume;
// the result is tier-scaled by average ticket size and floored at one
// cent.
func CostPerTransaction(ds *domain.Dataset) float64 {
	n := len(ds.Transactions)
	if n == 0 {
		return 0
	}

	var totalAbs float64
	for _, t := range ds.Transactions {
		totalAbs += math.Abs(t.Amount)
	}

	var costs float64
	if ds.TransactionInfo.HasSourceColumn(domain.ColumnCategory) {
		for _, t := range ds.Transactions {
			if categoryMatches(t.Category, transactionCostCategories) {
				costs += math.Abs(t.Amount)
			}
		}
	}
	if costs == 0 {
		costs = totalAbs * 0.005
	}

	perTxn := costs / float64(n)
	avg := totalAbs / float64(n)
	switch {
	case avg > 1000:
		perTxn *= 0.7
	case avg < 100:
		perTxn *= 1.3
	}
	return round2(math.Max(perTxn, 0.01))
}

// MarketingSpendROI is return on marketing spend as a percentage.
// Revenue comes from categorized rows when a real category column
// exists, otherwise from positive amounts.
func MarketingSpendROI(ds *domain.Dataset) float64 {
	spend := totalSpend(ds.Campaigns)
	if spend == 0 {
		return 0
	}

	var revenue float64
	if ds.TransactionInfo.HasSourceColumn(domain.ColumnCategory) {
		if r := sumWhere(ds.Transactions, revenueCategories); r > 0 {
			revenue = r
		}
	} else {
		inflows, _ := splitBySign(ds.Transactions)
		revenue = inflows
	}

	return round2((revenue - spend) / spend * 100)
}

// CustomerAcquisitionCost is spend per acquired customer. Without a
// real acquisitions column the count is estimated at one customer per
// $50 of spend.
func CustomerAcquisitionCost(ds *domain.Dataset) float64 {
	if len(ds.Campaigns) == 0 {
		return 0
	}
	spend := totalSpend(ds.Campaigns)

	var acquisitions float64
	if ds.CampaignInfo.HasSourceColumn(domain.ColumnAcquisitions) {
		for _, c := range ds.Campaigns {
			acquisitions += float64(c.Acquisitions)
		}
	} else {
		acquisitions = spend / 50
	}
	if acquisitions == 0 {
		return 0
	}
	return round2(spend / acquisitions)
}

// sumWhere totals amounts whose category matches any keyword.
func sumWhere(records []domain.TransactionRecord, keywords []string) float64 {
	var sum float64
	for _, t := range records {
		if categoryMatches(t.Category, keywords) {
			sum += t.Amount
		}
	}
	return sum
}

// splitBySign returns the positive-amount total and the absolute
// negative-amount total.
func splitBySign(records []domain.TransactionRecord) (inflows, outflows float64) {
	for _, t := range records {
		if t.Amount > 0 {
			inflows += t.Amount
		} else {
			outflows += -t.Amount
		}
	}
	return inflows, outflows
}

// periodDays is the observed span of the transactions table in days,
// falling back to a row-count heuristic when dates are unusable.
func periodDays(records []domain.TransactionRecord) int {
	if len(records) == 0 {
		return 30
	}
	minDate, maxDate := records[0].Date, records[0].Date
	for _, t := range records[1:] {
		if t.Date.Before(minDate) {
			minDate = t.Date
		}
		if t.Date.After(maxDate) {
			maxDate = t.Date
		}
	}
	days := int(maxDate.Sub(minDate).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	if minDate.IsZero() {
		days = len(records) / 2
		if days < 30 {
			days = 30
		}
	}
	return days
}

// safeFloat maps NaN and infinities to 0.0 so KPI values always
// serialize as plain JSON numbers.
func safeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func totalSpend(records []domain.CampaignRecord) float64 {
	var sum float64
	for _, c := range records {
		sum += c.Spend
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
