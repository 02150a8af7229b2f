// Package normalize turns raw workbook sheets into the canonical
// transactions, campaigns and targets tables the analysis pipeline
// consumes. Classification, schema mapping and cleaning never fail:
// anything unusable is replaced by documented defaults.
package normalize

import (
	"strings"

	"finsight/internal/workbook"
	"finsight/pkg/contracts/domain"
)

// roleRule binds a sheet role to the name keywords that claim it.
// Matching is substring, case-insensitive.
type roleRule struct {
	role     domain.SheetRole
	keywords []string
}

// Rules are checked in order; the order is also the positional fallback
// order for sheets whose names match nothing.
var classificationRules = []roleRule{
	{domain.RoleTransactions, []string{"transaction", "sales", "revenue", "expense", "ledger"}},
	{domain.RoleCampaigns, []string{"campaign", "marketing", "ad", "spend"}},
	{domain.RoleTargets, []string{"target", "goal", "budget", "forecast", "metric"}},
}

// ClassifySheets assigns each role at most one sheet. Keyword matches
// win first, scanning sheets in file order per role; roles still empty
// afterwards take the earliest unclaimed sheet. A sheet never serves
// two roles. Roles may come back unassigned (nil) when the workbook has
// fewer sheets than roles.
func ClassifySheets(sheets []workbook.Sheet) map[domain.SheetRole]*workbook.Sheet {
	assigned := make(map[domain.SheetRole]*workbook.Sheet, len(classificationRules))
	claimed := make(map[int]bool, len(sheets))

	for _, rule := range classificationRules {
		for i := range sheets {
			if claimed[i] {
				continue
			}
			if nameMatches(sheets[i].Name, rule.keywords) {
				assigned[rule.role] = &sheets[i]
				claimed[i] = true
				break
			}
		}
	}

	// Positional fallback for roles no sheet name claimed.
	for _, rule := range classificationRules {
		if _, ok := assigned[rule.role]; ok {
			continue
		}
		for i := range sheets {
			if !claimed[i] {
				assigned[rule.role] = &sheets[i]
				claimed[i] = true
				break
			}
		}
	}

	return assigned
}

func nameMatches(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
