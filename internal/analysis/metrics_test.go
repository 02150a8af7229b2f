package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/pkg/contracts/domain"
)

func date(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeCurrentMetrics_Revenue(t *testing.T) {
	ds := &domain.Dataset{
		Transactions: []domain.TransactionRecord{
			{Date: date(time.January, 1), Description: "a", Amount: 100},
			{Date: date(time.January, 2), Description: "b", Amount: 200},
			{Date: date(time.January, 3), Description: "c", Amount: -50},
		},
	}

	m := ComputeCurrentMetrics(ds)

	require.NotNil(t, m.Revenue)
	assert.Equal(t, 300.0, m.Revenue.TotalRevenue)
	assert.Equal(t, 50.0, m.Revenue.TotalExpenses)
	assert.Equal(t, 250.0, m.Revenue.NetIncome)
	assert.Equal(t, 150.0, m.Revenue.AvgTransactionValue)
	assert.Equal(t, 3, m.Revenue.TransactionCount)

	require.NotNil(t, m.Performance)
	assert.Equal(t, 1.0, m.Performance.TransactionSuccessRate)

	assert.Nil(t, m.Marketing)
}

func TestComputeCurrentMetrics_Marketing(t *testing.T) {
	ds := &domain.Dataset{
		Transactions: []domain.TransactionRecord{
			{Date: date(time.January, 1), Description: "rev", Amount: 3000},
		},
		Campaigns: []domain.CampaignRecord{
			{Timestamp: date(time.January, 1), CampaignID: "a", Channel: "Email", Spend: 600, Acquisitions: 10},
			{Timestamp: date(time.January, 8), CampaignID: "b", Channel: "Email", Spend: 400, Acquisitions: 40},
		},
	}

	m := ComputeCurrentMetrics(ds)

	require.NotNil(t, m.Marketing)
	assert.Equal(t, 1000.0, m.Marketing.TotalSpend)
	assert.Equal(t, 50, m.Marketing.TotalAcquisitions)
	assert.Equal(t, 20.0, m.Marketing.CostPerAcquisition)
	assert.Equal(t, 3.0, m.Marketing.SpendEfficiency)
	// 10 then 40 acquisitions: second half quadruples the first.
	assert.InDelta(t, 3.0, m.Marketing.AcquisitionGrowthRate, 1e-9)

	require.NotNil(t, m.Performance)
	assert.InDelta(t, 0.05, m.Performance.AcquisitionEfficiency, 1e-9)
}

func TestComputeCurrentMetrics_Empty(t *testing.T) {
	m := ComputeCurrentMetrics(&domain.Dataset{})
	assert.Nil(t, m.Revenue)
	assert.Nil(t, m.Marketing)
	assert.Nil(t, m.Performance)
}

func TestComputeCurrentMetrics_OrderInsensitiveGrowth(t *testing.T) {
	records := []domain.TransactionRecord{
		{Date: date(time.January, 1), Description: "a", Amount: 100},
		{Date: date(time.February, 1), Description: "b", Amount: 100},
		{Date: date(time.March, 1), Description: "c", Amount: 200},
		{Date: date(time.April, 1), Description: "d", Amount: 200},
	}
	reversed := []domain.TransactionRecord{records[3], records[2], records[1], records[0]}

	a := ComputeCurrentMetrics(&domain.Dataset{Transactions: records})
	b := ComputeCurrentMetrics(&domain.Dataset{Transactions: reversed})

	assert.Equal(t, a.Revenue, b.Revenue)
	assert.InDelta(t, 1.0, a.Revenue.GrowthRate, 1e-9)
}

func TestComputeCurrentMetrics_ZeroAcquisitions(t *testing.T) {
	ds := &domain.Dataset{
		Campaigns: []domain.CampaignRecord{
			{Timestamp: date(time.January, 1), CampaignID: "a", Spend: 500},
		},
	}

	m := ComputeCurrentMetrics(ds)
	require.NotNil(t, m.Marketing)
	assert.Equal(t, 0.0, m.Marketing.CostPerAcquisition)
	assert.Equal(t, 0.0, m.Performance.AcquisitionEfficiency)
}
