package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/workbook"
	"finsight/pkg/contracts/domain"
)

func TestBuildDataset_NilWorkbook(t *testing.T) {
	ds := BuildDataset(nil, nil)

	assert.True(t, ds.TransactionInfo.Synthetic)
	assert.True(t, ds.CampaignInfo.Synthetic)
	assert.True(t, ds.TargetInfo.Synthetic)

	// Synthetic tables survive cleaning intact.
	assert.Len(t, ds.Transactions, 31)
	assert.Len(t, ds.Campaigns, 10)
	assert.Len(t, ds.Targets, len(defaultTargets))
	assert.Equal(t, 0, ds.Cleaning[domain.RoleTransactions].Dropped())

	cash, ok := ds.TargetValue("Current_Cash")
	require.True(t, ok)
	assert.Equal(t, 500000.0, cash)
}

func TestBuildDataset_Deterministic(t *testing.T) {
	first := BuildDataset(nil, nil)
	second := BuildDataset(nil, nil)
	assert.Equal(t, first.Transactions, second.Transactions)
	assert.Equal(t, first.Campaigns, second.Campaigns)
	assert.Equal(t, first.Targets, second.Targets)
}

func TestBuildDataset_RealSheets(t *testing.T) {
	wb := &workbook.Workbook{
		Sheets: []workbook.Sheet{
			{
				Name: "Transactions",
				Rows: [][]string{
					{"Date", "Description", "Category", "Amount"},
					{"2024-01-05", "Subscription", "Revenue", "250"},
					{"2024-01-06", "Hosting", "Expense", "-40"},
					{"bad date", "Dropped", "Expense", "-1"},
				},
			},
			{
				Name: "Campaigns",
				Rows: [][]string{
					{"Date", "Campaign", "Channel", "Spend", "Conversions"},
					{"2024-01-10", "launch", "Email", "500", "10"},
				},
			},
			{
				Name: "Targets",
				Rows: [][]string{
					{"Metric", "Value"},
					{"Current_Cash", "120000"},
				},
			},
		},
	}

	ds := BuildDataset(wb, nil)

	require.Len(t, ds.Transactions, 2)
	assert.Equal(t, 1, ds.Cleaning[domain.RoleTransactions].DroppedBadDate)
	assert.False(t, ds.TransactionInfo.Synthetic)
	assert.True(t, ds.TransactionInfo.HasSourceColumn(FieldAmount))

	require.Len(t, ds.Campaigns, 1)
	assert.Equal(t, 10, ds.Campaigns[0].Acquisitions)

	cash, ok := ds.TargetValue("Current_Cash")
	require.True(t, ok)
	assert.Equal(t, 120000.0, cash)
}

func TestBuildDataset_MissingSheetIsSynthesized(t *testing.T) {
	wb := &workbook.Workbook{
		Sheets: []workbook.Sheet{
			{
				Name: "Transactions",
				Rows: [][]string{
					{"Date", "Description", "Category", "Amount"},
					{"2024-01-05", "Subscription", "Revenue", "250"},
				},
			},
		},
	}

	ds := BuildDataset(wb, nil)

	assert.False(t, ds.TransactionInfo.Synthetic)
	assert.True(t, ds.CampaignInfo.Synthetic)
	assert.True(t, ds.TargetInfo.Synthetic)
	assert.NotEmpty(t, ds.Campaigns)
	assert.NotEmpty(t, ds.Targets)
}
