package kpi

import (
	"context"
	"log/slog"

	"finsight/pkg/contracts/domain"
)

// RelevanceStrategy decides which KPIs a dataset can support. The
// report drives the engine: irrelevant KPIs are reported as null and
// never computed.
type RelevanceStrategy interface {
	Assess(ctx context.Context, ds *domain.Dataset) (domain.RelevanceReport, error)
}

// RuleBasedRelevance derives relevance purely from data presence. It is
// deterministic and cannot fail.
type RuleBasedRelevance struct{}

// NewRuleBasedRelevance creates the rule-based strategy.
func NewRuleBasedRelevance() *RuleBasedRelevance {
	return &RuleBasedRelevance{}
}

// kpiRequirement binds a KPI to the table and column that make it
// meaningful.
type kpiRequirement struct {
	kpi    string
	table  domain.SheetRole
	column string
}

var kpiRequirements = []kpiRequirement{
	{domain.KPICashVisibility, domain.RoleTransactions, domain.ColumnAmount},
	{domain.KPIDaysCashOnHand, domain.RoleTransactions, domain.ColumnAmount},
	{domain.KPIPaymentSTPRate, domain.RoleTransactions, domain.ColumnAmount},
	{domain.KPICostPerTxn, domain.RoleTransactions, domain.ColumnAmount},
	{domain.KPIForecastAccuracy, domain.RoleTargets, domain.ColumnMetricName},
	{domain.KPIBudgetVsActual, domain.RoleTargets, domain.ColumnMetricName},
	{domain.KPIMarketingROI, domain.RoleCampaigns, domain.ColumnSpend},
	{domain.KPICustomerAcqCost, domain.RoleCampaigns, domain.ColumnAcquisitions},
}

// Assess marks a KPI relevant when its backing table has rows and its
// required column either came from real data or belongs to a fully
// synthetic default table.
func (s *RuleBasedRelevance) Assess(_ context.Context, ds *domain.Dataset) (domain.RelevanceReport, error) {
	report := domain.RelevanceReport{Source: "rules"}

	for _, req := range kpiRequirements {
		if s.satisfied(ds, req) {
			report.RelevantKPIs = append(report.RelevantKPIs, req.kpi)
		} else {
			report.IrrelevantKPIs = append(report.IrrelevantKPIs, req.kpi)
		}
	}

	totalRows := len(ds.Transactions) + len(ds.Campaigns) + len(ds.Targets)
	switch {
	case totalRows > 1000:
		report.DataQuality = "excellent"
	case totalRows > 100:
		report.DataQuality = "good"
	default:
		report.DataQuality = "fair"
	}

	report.Recommendations = s.recommend(ds, report)
	return report, nil
}

func (s *RuleBasedRelevance) satisfied(ds *domain.Dataset, req kpiRequirement) bool {
	switch req.table {
	case domain.RoleTransactions:
		return len(ds.Transactions) > 0 && columnAvailable(ds.TransactionInfo, req.column)
	case domain.RoleCampaigns:
		return len(ds.Campaigns) > 0 && columnAvailable(ds.CampaignInfo, req.column)
	case domain.RoleTargets:
		return len(ds.Targets) > 0 && columnAvailable(ds.TargetInfo, req.column)
	}
	return false
}

// columnAvailable treats fully synthetic tables as having every column;
// their values exist by construction. For real sheets only mapped
// columns count.
func columnAvailable(prov domain.TableProvenance, column string) bool {
	return prov.Synthetic || prov.HasSourceColumn(column)
}

func (s *RuleBasedRelevance) recommend(ds *domain.Dataset, report domain.RelevanceReport) []string {
	var recs []string
	if len(ds.Transactions) == 0 {
		recs = append(recs, "Add a transactions sheet with date and amount columns to unlock cash KPIs.")
	} else if !columnAvailable(ds.TransactionInfo, domain.ColumnCategory) {
		recs = append(recs, "Add a category column to transactions for more precise revenue and expense splits.")
	}
	if len(ds.Campaigns) == 0 {
		recs = append(recs, "Add a campaigns sheet with spend and acquisitions to unlock marketing KPIs.")
	} else if !columnAvailable(ds.CampaignInfo, domain.ColumnAcquisitions) {
		recs = append(recs, "Track acquisitions per campaign to replace the spend-based estimate.")
	}
	if len(ds.Targets) == 0 {
		recs = append(recs, "Add a targets sheet (metric name and value) to compare actuals against plan.")
	}
	if report.DataQuality == "fair" {
		recs = append(recs, "More historical rows would improve trend and prediction quality.")
	}
	return recs
}

// AdvisoryWithFallback runs a primary (typically external) strategy and
// degrades to the fallback on any error, so relevance assessment can
// never fail the pipeline.
type AdvisoryWithFallback struct {
	primary  RelevanceStrategy
	fallback RelevanceStrategy
	logger   *slog.Logger
}

// NewAdvisoryWithFallback wraps primary with fallback.
func NewAdvisoryWithFallback(primary, fallback RelevanceStrategy, logger *slog.Logger) *AdvisoryWithFallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdvisoryWithFallback{primary: primary, fallback: fallback, logger: logger}
}

// Assess tries the primary strategy first. An empty relevant list from
// the advisor is treated as a failure; advisors that misparse tend to
// return nothing rather than error.
func (a *AdvisoryWithFallback) Assess(ctx context.Context, ds *domain.Dataset) (domain.RelevanceReport, error) {
	report, err := a.primary.Assess(ctx, ds)
	if err == nil && len(report.RelevantKPIs)+len(report.IrrelevantKPIs) > 0 {
		return report, nil
	}
	if err != nil {
		a.logger.WarnContext(ctx, "advisory relevance failed, using rules",
			slog.String("error", err.Error()))
	}
	return a.fallback.Assess(ctx, ds)
}
