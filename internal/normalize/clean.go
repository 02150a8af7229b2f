package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"finsight/pkg/contracts/domain"
)

// Layouts tried in order when coercing date cells. Workbooks in the wild
// mix ISO, US and spreadsheet-native formats freely.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"2006/01/02",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
}

// col returns the position of a canonical field in the table, -1 when
// the schema does not carry it.
func (t Table) col(name string) int {
	for i, f := range t.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

func (t Table) cell(row []string, field string) string {
	i := t.col(field)
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// CleanTransactions coerces a canonical transactions table into typed
// records. Rows with unparseable dates or amounts, or an empty
// description, are dropped and counted; survivors keep their input
// order. Amounts are rounded to cents.
func CleanTransactions(t Table) ([]domain.TransactionRecord, domain.CleaningReport) {
	report := domain.CleaningReport{RowsIn: len(t.Rows)}
	records := make([]domain.TransactionRecord, 0, len(t.Rows))

	for _, row := range t.Rows {
		date, ok := parseDate(t.cell(row, FieldDate))
		if !ok {
			report.DroppedBadDate++
			continue
		}
		amount, ok := parseNumber(t.cell(row, FieldAmount))
		if !ok {
			report.DroppedBadNumber++
			continue
		}
		desc := t.cell(row, FieldDescription)
		if desc == "" {
			report.DroppedEmptyText++
			continue
		}
		records = append(records, domain.TransactionRecord{
			Date:        date,
			Description: desc,
			Category:    t.cell(row, FieldCategory),
			Amount:      round2(amount),
		})
	}

	report.RowsOut = len(records)
	return records, report
}

// CleanCampaigns coerces a canonical campaigns table. Acquisitions are
// rounded to whole customers; negative counts are clamped to zero.
func CleanCampaigns(t Table) ([]domain.CampaignRecord, domain.CleaningReport) {
	report := domain.CleaningReport{RowsIn: len(t.Rows)}
	records := make([]domain.CampaignRecord, 0, len(t.Rows))

	for _, row := range t.Rows {
		ts, ok := parseDate(t.cell(row, FieldTimestamp))
		if !ok {
			report.DroppedBadDate++
			continue
		}
		spend, ok := parseNumber(t.cell(row, FieldSpend))
		if !ok {
			report.DroppedBadNumber++
			continue
		}
		acq, ok := parseNumber(t.cell(row, FieldAcquisitions))
		if !ok {
			report.DroppedBadNumber++
			continue
		}
		id := t.cell(row, FieldCampaignID)
		if id == "" {
			report.DroppedEmptyText++
			continue
		}
		records = append(records, domain.CampaignRecord{
			Timestamp:    ts,
			CampaignID:   id,
			Channel:      t.cell(row, FieldChannel),
			Spend:        round2(spend),
			Acquisitions: int(math.Max(0, math.Round(acq))),
		})
	}

	report.RowsOut = len(records)
	return records, report
}

// CleanTargets coerces a canonical targets table.
func CleanTargets(t Table) ([]domain.TargetRecord, domain.CleaningReport) {
	report := domain.CleaningReport{RowsIn: len(t.Rows)}
	records := make([]domain.TargetRecord, 0, len(t.Rows))

	for _, row := range t.Rows {
		name := t.cell(row, FieldMetricName)
		if name == "" {
			report.DroppedEmptyText++
			continue
		}
		value, ok := parseNumber(t.cell(row, FieldValue))
		if !ok {
			report.DroppedBadNumber++
			continue
		}
		records = append(records, domain.TargetRecord{MetricName: name, Value: value})
	}

	report.RowsOut = len(records)
	return records, report
}

// parseDate tries the layout list, then an Excel serial day number.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// Excel stores dates as days since 1899-12-30; serials in this range
	// cover roughly 1955 through 2118.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 20000 && serial < 80000 {
		epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		return epoch.Add(time.Duration(serial * 24 * float64(time.Hour))), true
	}
	return time.Time{}, false
}

// parseNumber coerces spreadsheet numerics: currency symbols, thousands
// separators and accounting-style parenthesized negatives.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(strings.Trim(s, "$€£"))
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
