package analysis

import (
	"finsight/pkg/contracts/domain"
)

// ComputeCurrentMetrics builds the point-in-time metric blocks. A block
// is nil when its source table is empty.
func ComputeCurrentMetrics(ds *domain.Dataset) domain.CurrentMetrics {
	var metrics domain.CurrentMetrics

	if len(ds.Transactions) > 0 {
		metrics.Revenue = revenueMetrics(ds.Transactions)
	}
	if len(ds.Campaigns) > 0 {
		metrics.Marketing = marketingMetrics(ds.Campaigns, metrics.Revenue)
	}
	if metrics.Revenue != nil || metrics.Marketing != nil {
		metrics.Performance = performanceMetrics(ds, metrics.Marketing)
	}

	return metrics
}

func revenueMetrics(records []domain.TransactionRecord) *domain.RevenueMetrics {
	// Date order, so the growth comparison is chronological regardless
	// of input row order.
	records = sortedTransactions(records)

	var totalRevenue, totalExpenses float64
	var positives []float64
	amounts := make([]float64, 0, len(records))
	for _, t := range records {
		amounts = append(amounts, t.Amount)
		if t.Amount > 0 {
			totalRevenue += t.Amount
			positives = append(positives, t.Amount)
		} else {
			totalExpenses += -t.Amount
		}
	}

	return &domain.RevenueMetrics{
		TotalRevenue:        round2(totalRevenue),
		TotalExpenses:       round2(totalExpenses),
		NetIncome:           round2(totalRevenue - totalExpenses),
		AvgTransactionValue: round2(mean(positives)),
		TransactionCount:    len(records),
		GrowthRate:          sanitize(growthRate(amounts)),
	}
}

func marketingMetrics(records []domain.CampaignRecord, revenue *domain.RevenueMetrics) *domain.MarketingMetrics {
	records = sortedCampaigns(records)

	var totalSpend float64
	var totalAcq int
	acqSeries := make([]float64, 0, len(records))
	for _, c := range records {
		totalSpend += c.Spend
		totalAcq += c.Acquisitions
		acqSeries = append(acqSeries, float64(c.Acquisitions))
	}

	var cpa float64
	if totalAcq > 0 {
		cpa = round2(totalSpend / float64(totalAcq))
	}
	var efficiency float64
	if revenue != nil && totalSpend > 0 {
		efficiency = round2(revenue.TotalRevenue / totalSpend)
	}

	return &domain.MarketingMetrics{
		TotalSpend:            round2(totalSpend),
		TotalAcquisitions:     totalAcq,
		CostPerAcquisition:    cpa,
		AcquisitionGrowthRate: sanitize(growthRate(acqSeries)),
		SpendEfficiency:       efficiency,
	}
}

func performanceMetrics(ds *domain.Dataset, marketing *domain.MarketingMetrics) *domain.PerformanceMetrics {
	perf := &domain.PerformanceMetrics{}

	if total := len(ds.Transactions); total > 0 {
		nonzero := 0
		for _, t := range ds.Transactions {
			if t.Amount != 0 {
				nonzero++
			}
		}
		perf.TransactionSuccessRate = sanitize(float64(nonzero) / float64(total))
	}

	if marketing != nil && marketing.TotalSpend > 0 {
		perf.AcquisitionEfficiency = sanitize(float64(marketing.TotalAcquisitions) / marketing.TotalSpend)
	}

	return perf
}
