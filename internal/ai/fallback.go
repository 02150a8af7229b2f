package ai

import (
	"fmt"

	"finsight/pkg/contracts/domain"
)

// FallbackInsights composes a deterministic narrative block from the
// computed metrics. It is the output whenever the LLM is unavailable,
// times out, or returns something unparseable.
func FallbackInsights(result *domain.AnalysisResult) domain.Insights {
	ins := domain.Insights{Source: "fallback"}

	rev := result.Metrics.Revenue
	mkt := result.Metrics.Marketing

	if rev != nil {
		if rev.NetIncome > 0 {
			ins.Strengths = append(ins.Strengths,
				fmt.Sprintf("Positive net income of $%.2f over the observed period.", rev.NetIncome))
		} else if rev.NetIncome < 0 {
			ins.Weaknesses = append(ins.Weaknesses,
				fmt.Sprintf("Expenses exceed revenue by $%.2f over the observed period.", -rev.NetIncome))
		}
		if rev.GrowthRate > 0.05 {
			ins.Strengths = append(ins.Strengths,
				fmt.Sprintf("Revenue is growing at %.1f%% period over period.", rev.GrowthRate*100))
		} else if rev.GrowthRate < -0.05 {
			ins.Weaknesses = append(ins.Weaknesses,
				fmt.Sprintf("Revenue is declining at %.1f%% period over period.", -rev.GrowthRate*100))
		}
	}

	if mkt != nil {
		switch {
		case mkt.CostPerAcquisition > 0 && mkt.CostPerAcquisition <= 50:
			ins.Strengths = append(ins.Strengths,
				fmt.Sprintf("Customer acquisition is efficient at $%.2f per customer.", mkt.CostPerAcquisition))
		case mkt.CostPerAcquisition > 100:
			ins.Weaknesses = append(ins.Weaknesses,
				fmt.Sprintf("Customer acquisition cost is high at $%.2f per customer.", mkt.CostPerAcquisition))
		}
		if mkt.SpendEfficiency > 3 {
			ins.Strengths = append(ins.Strengths,
				fmt.Sprintf("Marketing returns $%.2f of revenue per dollar spent.", mkt.SpendEfficiency))
		}
	}

	if cp := result.Patterns.Campaigns; cp != nil && cp.BestChannel != "" {
		ins.Opportunities = append(ins.Opportunities,
			fmt.Sprintf("%s delivers the lowest acquisition cost; consider shifting budget toward it.", cp.BestChannel))
	}
	if sa := result.Patterns.Seasonality; sa != nil && sa.PeakMonth != "" {
		ins.Opportunities = append(ins.Opportunities,
			fmt.Sprintf("%s is the strongest month; plan inventory and campaigns around it.", sa.PeakMonth))
	}

	ins.Risks = append(ins.Risks, result.Predictions.RiskFlags...)

	ins.Recommendations = append(ins.Recommendations, result.Relevance.Recommendations...)
	if result.Predictions.RiskLevel == domain.RiskHigh {
		ins.Recommendations = append(ins.Recommendations,
			"Reduce discretionary spend until cash flow stabilizes.")
	}

	if len(ins.Strengths) == 0 {
		ins.Strengths = append(ins.Strengths, "Consistent transaction history is available for analysis.")
	}
	if len(ins.Weaknesses) == 0 {
		ins.Weaknesses = append(ins.Weaknesses, "No material weaknesses stand out in the available data.")
	}
	if len(ins.Opportunities) == 0 {
		ins.Opportunities = append(ins.Opportunities, "Richer categorization would surface more optimization opportunities.")
	}
	if len(ins.Risks) == 0 {
		ins.Risks = append(ins.Risks, "No elevated risk indicators in the current data.")
	}
	if len(ins.Recommendations) == 0 {
		ins.Recommendations = append(ins.Recommendations, "Keep data collection consistent to improve forecast quality.")
	}

	ins.ExecutiveSummary = executiveSummary(result)
	return ins
}

func executiveSummary(result *domain.AnalysisResult) string {
	rev := result.Metrics.Revenue
	if rev == nil {
		return fmt.Sprintf("Analysis of %s completed with limited transaction data; overall risk is %s.",
			result.FileInfo.Filename, result.Predictions.RiskLevel)
	}
	direction := "roughly flat"
	if rev.GrowthRate > 0.05 {
		direction = "growing"
	} else if rev.GrowthRate < -0.05 {
		direction = "declining"
	}
	return fmt.Sprintf(
		"The business generated $%.2f in revenue against $%.2f in expenses (net $%.2f), with revenue %s. Overall risk level is %s.",
		rev.TotalRevenue, rev.TotalExpenses, rev.NetIncome, direction, result.Predictions.RiskLevel)
}
