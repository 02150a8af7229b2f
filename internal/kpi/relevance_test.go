package kpi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/pkg/contracts/domain"
)

func TestRuleBasedRelevance_EmptyDataset(t *testing.T) {
	report, err := NewRuleBasedRelevance().Assess(context.Background(), &domain.Dataset{})

	require.NoError(t, err)
	assert.Empty(t, report.RelevantKPIs)
	assert.Len(t, report.IrrelevantKPIs, len(domain.AllKPIs))
	assert.Equal(t, "fair", report.DataQuality)
	assert.Equal(t, "rules", report.Source)
	assert.NotEmpty(t, report.Recommendations)
}

func TestRuleBasedRelevance_TransactionsOnly(t *testing.T) {
	ds := &domain.Dataset{
		Transactions: []domain.TransactionRecord{
			{Date: day(1), Description: "x", Amount: 10},
		},
		TransactionInfo: mapped(domain.ColumnDate, domain.ColumnAmount),
	}

	report, err := NewRuleBasedRelevance().Assess(context.Background(), ds)
	require.NoError(t, err)

	assert.True(t, report.Relevant(domain.KPICashVisibility))
	assert.True(t, report.Relevant(domain.KPIDaysCashOnHand))
	assert.True(t, report.Relevant(domain.KPIPaymentSTPRate))
	assert.True(t, report.Relevant(domain.KPICostPerTxn))
	assert.False(t, report.Relevant(domain.KPIMarketingROI))
	assert.False(t, report.Relevant(domain.KPICustomerAcqCost))
	assert.False(t, report.Relevant(domain.KPIForecastAccuracy))
}

func TestRuleBasedRelevance_MissingRequiredColumn(t *testing.T) {
	// Campaigns have rows and a real spend column but acquisitions were
	// synthesized on a real sheet, so CAC is out while ROI stays in.
	ds := &domain.Dataset{
		Campaigns: []domain.CampaignRecord{
			{Timestamp: day(1), CampaignID: "a", Spend: 100},
		},
		CampaignInfo: mapped(domain.ColumnSpend),
	}

	report, err := NewRuleBasedRelevance().Assess(context.Background(), ds)
	require.NoError(t, err)
	assert.True(t, report.Relevant(domain.KPIMarketingROI))
	assert.False(t, report.Relevant(domain.KPICustomerAcqCost))
}

func TestRuleBasedRelevance_SyntheticTableCountsAsComplete(t *testing.T) {
	ds := &domain.Dataset{
		Campaigns: []domain.CampaignRecord{
			{Timestamp: day(1), CampaignID: "a", Spend: 100, Acquisitions: 2},
		},
		CampaignInfo: domain.TableProvenance{Synthetic: true},
	}

	report, err := NewRuleBasedRelevance().Assess(context.Background(), ds)
	require.NoError(t, err)
	assert.True(t, report.Relevant(domain.KPIMarketingROI))
	assert.True(t, report.Relevant(domain.KPICustomerAcqCost))
}

func TestRuleBasedRelevance_DataQualityTiers(t *testing.T) {
	makeTx := func(n int) []domain.TransactionRecord {
		out := make([]domain.TransactionRecord, n)
		for i := range out {
			out[i] = domain.TransactionRecord{Date: day(1), Description: "x", Amount: 1}
		}
		return out
	}

	tests := []struct {
		rows int
		want string
	}{
		{50, "fair"},
		{500, "good"},
		{1500, "excellent"},
	}
	for _, tt := range tests {
		ds := &domain.Dataset{
			Transactions:    makeTx(tt.rows),
			TransactionInfo: mapped(domain.ColumnAmount),
		}
		report, err := NewRuleBasedRelevance().Assess(context.Background(), ds)
		require.NoError(t, err)
		assert.Equal(t, tt.want, report.DataQuality, "rows=%d", tt.rows)
	}
}

type stubStrategy struct {
	report domain.RelevanceReport
	err    error
	calls  int
}

func (s *stubStrategy) Assess(context.Context, *domain.Dataset) (domain.RelevanceReport, error) {
	s.calls++
	return s.report, s.err
}

func TestAdvisoryWithFallback_PrimarySucceeds(t *testing.T) {
	primary := &stubStrategy{report: domain.RelevanceReport{
		RelevantKPIs: []string{domain.KPICashVisibility},
		Source:       "advisory",
	}}
	fallback := &stubStrategy{}

	report, err := NewAdvisoryWithFallback(primary, fallback, nil).Assess(context.Background(), &domain.Dataset{})

	require.NoError(t, err)
	assert.Equal(t, "advisory", report.Source)
	assert.Equal(t, 0, fallback.calls)
}

func TestAdvisoryWithFallback_PrimaryError(t *testing.T) {
	primary := &stubStrategy{err: errors.New("model unavailable")}
	fallback := &stubStrategy{report: domain.RelevanceReport{
		IrrelevantKPIs: domain.AllKPIs,
		Source:         "rules",
	}}

	report, err := NewAdvisoryWithFallback(primary, fallback, nil).Assess(context.Background(), &domain.Dataset{})

	require.NoError(t, err)
	assert.Equal(t, "rules", report.Source)
	assert.Equal(t, 1, fallback.calls)
}

func TestAdvisoryWithFallback_EmptyVerdictTreatedAsFailure(t *testing.T) {
	primary := &stubStrategy{report: domain.RelevanceReport{Source: "advisory"}}
	fallback := &stubStrategy{report: domain.RelevanceReport{
		RelevantKPIs: []string{domain.KPICashVisibility},
		Source:       "rules",
	}}

	report, err := NewAdvisoryWithFallback(primary, fallback, nil).Assess(context.Background(), &domain.Dataset{})

	require.NoError(t, err)
	assert.Equal(t, "rules", report.Source)
}
