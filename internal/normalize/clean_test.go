package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/pkg/contracts/domain"
)

func transactionsTable(rows ...[]string) Table {
	return Table{
		Role:   domain.RoleTransactions,
		Fields: []string{FieldDate, FieldDescription, FieldCategory, FieldAmount},
		Rows:   rows,
	}
}

func TestCleanTransactions_DropReasons(t *testing.T) {
	table := transactionsTable(
		[]string{"2024-01-01", "Invoice", "Revenue", "100.555"},
		[]string{"not a date", "Invoice", "Revenue", "100"},
		[]string{"2024-01-02", "Invoice", "Revenue", "oops"},
		[]string{"2024-01-03", "", "Revenue", "100"},
		[]string{"2024-01-04", "Refund", "Revenue", "(25.00)"},
	)

	records, report := CleanTransactions(table)

	require.Len(t, records, 2)
	assert.Equal(t, 5, report.RowsIn)
	assert.Equal(t, 2, report.RowsOut)
	assert.Equal(t, 1, report.DroppedBadDate)
	assert.Equal(t, 1, report.DroppedBadNumber)
	assert.Equal(t, 1, report.DroppedEmptyText)
	assert.Equal(t, 3, report.Dropped())

	// Amounts round to cents; parenthesized values are negative.
	assert.Equal(t, 100.56, records[0].Amount)
	assert.Equal(t, -25.00, records[1].Amount)
}

func TestCleanTransactions_PreservesOrder(t *testing.T) {
	table := transactionsTable(
		[]string{"2024-03-01", "third", "", "3"},
		[]string{"2024-01-01", "first", "", "1"},
		[]string{"2024-02-01", "second", "", "2"},
	)

	records, _ := CleanTransactions(table)
	require.Len(t, records, 3)
	assert.Equal(t, "third", records[0].Description)
	assert.Equal(t, "first", records[1].Description)
	assert.Equal(t, "second", records[2].Description)
}

func TestCleanCampaigns(t *testing.T) {
	table := Table{
		Role:   domain.RoleCampaigns,
		Fields: []string{FieldTimestamp, FieldCampaignID, FieldChannel, FieldSpend, FieldAcquisitions},
		Rows: [][]string{
			{"2024-01-15", "spring-1", "Google Ads", "$1,200.50", "12.6"},
			{"2024-01-16", "spring-2", "Email", "300", "-4"},
			{"2024-01-17", "", "Email", "300", "5"},
			{"2024-01-18", "spring-4", "Email", "n/a", "5"},
		},
	}

	records, report := CleanCampaigns(table)

	require.Len(t, records, 2)
	assert.Equal(t, 1, report.DroppedEmptyText)
	assert.Equal(t, 1, report.DroppedBadNumber)

	// Currency symbols and thousands separators are stripped.
	assert.Equal(t, 1200.50, records[0].Spend)
	// Fractional counts round to whole customers.
	assert.Equal(t, 13, records[0].Acquisitions)
	// Negative counts clamp to zero.
	assert.Equal(t, 0, records[1].Acquisitions)
}

func TestCleanTargets(t *testing.T) {
	table := Table{
		Role:   domain.RoleTargets,
		Fields: []string{FieldMetricName, FieldValue},
		Rows: [][]string{
			{"Current_Cash", "500000"},
			{"", "42"},
			{"Broken", "NaN"},
			{"Forecast_Accuracy_Target", "0.92"},
		},
	}

	records, report := CleanTargets(table)

	require.Len(t, records, 2)
	assert.Equal(t, 1, report.DroppedEmptyText)
	assert.Equal(t, 1, report.DroppedBadNumber)
	assert.Equal(t, "Current_Cash", records[0].MetricName)
	assert.Equal(t, 0.92, records[1].Value)
}

func TestParseDate_Formats(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"03/05/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"3/5/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024/03/05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"05-Mar-2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"Mar 5, 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05 10:30:00", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestParseDate_ExcelSerial(t *testing.T) {
	got, ok := parseDate("45000")
	require.True(t, ok)
	assert.Equal(t, 2023, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 15, got.Day())

	// Small integers are plain numbers, not serials.
	_, ok = parseDate("42")
	assert.False(t, ok)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100", 100, true},
		{"-12.5", -12.5, true},
		{"$1,234.56", 1234.56, true},
		{"€99", 99, true},
		{"(250)", -250, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
