package analysis

import (
	"math"

	"finsight/pkg/contracts/domain"
)

// horizon names and lengths, in presentation order.
var horizons = []struct {
	name string
	days int
}{
	{"30_days", 30},
	{"45_days", 45},
	{"3_months", 90},
	{"6_months", 180},
	{"1_year", 365},
}

// Predict projects revenue, cash flow and acquisitions over the fixed
// horizons. Growth compounds monthly; the cost per acquisition is held
// constant at its current value.
func Predict(metrics domain.CurrentMetrics, patterns domain.PatternAnalysis) domain.PredictionSet {
	set := domain.PredictionSet{Horizons: make(map[string]domain.Forecast, len(horizons))}

	var revGrowth, totalRevenue float64
	if metrics.Revenue != nil {
		revGrowth = metrics.Revenue.GrowthRate
		totalRevenue = metrics.Revenue.TotalRevenue
	}
	var monthlyAvg, cashTrend float64
	if patterns.CashFlow != nil {
		monthlyAvg = patterns.CashFlow.MonthlyAverage
		cashTrend = patterns.CashFlow.Trend
	}
	var acqGrowth, cpa float64
	var totalAcq int
	if metrics.Marketing != nil {
		acqGrowth = metrics.Marketing.AcquisitionGrowthRate
		cpa = metrics.Marketing.CostPerAcquisition
		totalAcq = metrics.Marketing.TotalAcquisitions
	}

	for _, h := range horizons {
		months := float64(h.days) / 30.0
		revFactor := math.Pow(1+revGrowth, months)
		acqFactor := math.Pow(1+acqGrowth, months)

		projAcq := sanitize(float64(totalAcq) * acqFactor)
		set.Horizons[h.name] = domain.Forecast{
			HorizonDays:           h.days,
			ProjectedRevenue:      round2(sanitize(totalRevenue * revFactor)),
			RevenueGrowthPercent:  round2(sanitize((revFactor - 1) * 100)),
			ProjectedCashFlow:     round2(sanitize(monthlyAvg * months * (1 + cashTrend))),
			ProjectedAcquisitions: round2(projAcq),
			ProjectedSpend:        round2(sanitize(projAcq * cpa)),
		}
	}

	set.RiskFlags = riskFlags(metrics, patterns)
	set.RiskLevel = riskLevel(len(set.RiskFlags))
	return set
}

func riskFlags(metrics domain.CurrentMetrics, patterns domain.PatternAnalysis) []string {
	var flags []string
	if cf := patterns.CashFlow; cf != nil {
		if cf.MonthlyAverage < 0 {
			flags = append(flags, "average monthly cash flow is negative")
		}
		if cf.MonthlyVolatility > math.Abs(cf.MonthlyAverage) {
			flags = append(flags, "cash flow volatility exceeds the monthly average")
		}
	}
	if metrics.Revenue != nil && metrics.Revenue.GrowthRate < -0.10 {
		flags = append(flags, "revenue is contracting more than 10% period over period")
	}
	if metrics.Marketing != nil && metrics.Marketing.CostPerAcquisition > 100 {
		flags = append(flags, "customer acquisition cost is above $100")
	}
	return flags
}

func riskLevel(flagCount int) string {
	switch {
	case flagCount >= 3:
		return domain.RiskHigh
	case flagCount >= 1:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}
