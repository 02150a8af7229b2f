// Package kpi computes the eight financial KPIs and decides which of
// them a given dataset can meaningfully support.
package kpi

import "strings"

// Category keyword tables. Matching is substring, case-insensitive, so
// "Subscription Revenue" and "revenue" both land in the revenue bucket.
var (
	revenueCategories = []string{
		"Revenue", "Income", "Sales", "Payment", "Cash In",
		"Subscription", "MRR", "Total Revenue",
	}
	expenseCategories = []string{
		"Expense", "Cost", "Spend", "COGS", "Marketing",
		"R&D", "G&A", "Infrastructure",
	}
	transactionCostCategories = []string{
		"Fee", "Cost", "Charge", "Processing", "Transaction",
	}
	paymentCategories = []string{"Payment"}
)

// budgetTargetKeys are tried in order when resolving the marketing
// budget from the targets table.
var budgetTargetKeys = []string{
	"Quarterly_Marketing_Budget",
	"Marketing_Budget",
	"Budget",
	"Total_Budget",
}

func categoryMatches(category string, keywords []string) bool {
	lower := strings.ToLower(category)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
