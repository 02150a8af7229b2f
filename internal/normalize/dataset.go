package normalize

import (
	"log/slog"

	"finsight/internal/workbook"
	"finsight/pkg/contracts/domain"
)

// BuildDataset runs the full ingestion pipeline over a loaded workbook:
// classify sheets into roles, normalize each onto the canonical schema,
// clean rows into typed records. It never fails; a nil workbook yields
// the fully synthetic default dataset.
func BuildDataset(wb *workbook.Workbook, logger *slog.Logger) domain.Dataset {
	if logger == nil {
		logger = slog.Default()
	}

	var assigned map[domain.SheetRole]*workbook.Sheet
	if wb != nil {
		assigned = ClassifySheets(wb.Sheets)
	}

	txTable := Normalize(domain.RoleTransactions, assigned[domain.RoleTransactions])
	cmpTable := Normalize(domain.RoleCampaigns, assigned[domain.RoleCampaigns])
	tgtTable := Normalize(domain.RoleTargets, assigned[domain.RoleTargets])

	transactions, txReport := CleanTransactions(txTable)
	campaigns, cmpReport := CleanCampaigns(cmpTable)
	targets, tgtReport := CleanTargets(tgtTable)

	ds := domain.Dataset{
		Transactions:    transactions,
		Campaigns:       campaigns,
		Targets:         targets,
		TransactionInfo: txTable.Provenance,
		CampaignInfo:    cmpTable.Provenance,
		TargetInfo:      tgtTable.Provenance,
		Cleaning: map[domain.SheetRole]domain.CleaningReport{
			domain.RoleTransactions: txReport,
			domain.RoleCampaigns:    cmpReport,
			domain.RoleTargets:      tgtReport,
		},
	}

	logger.Info("dataset built",
		slog.Int("transactions", len(transactions)),
		slog.Int("campaigns", len(campaigns)),
		slog.Int("targets", len(targets)),
		slog.Int("rows_dropped", txReport.Dropped()+cmpReport.Dropped()+tgtReport.Dropped()),
		slog.Bool("synthetic_transactions", ds.TransactionInfo.Synthetic))
	return ds
}
