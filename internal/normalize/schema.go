package normalize

import (
	"strings"

	"finsight/internal/workbook"
	"finsight/pkg/contracts/domain"
)

// Canonical field names per table, aliased from the domain contract so
// provenance lookups and schema mapping agree on spelling.
const (
	FieldDate         = domain.ColumnDate
	FieldDescription  = domain.ColumnDescription
	FieldCategory     = domain.ColumnCategory
	FieldAmount       = domain.ColumnAmount
	FieldTimestamp    = domain.ColumnTimestamp
	FieldCampaignID   = domain.ColumnCampaignID
	FieldChannel      = domain.ColumnChannel
	FieldSpend        = domain.ColumnSpend
	FieldAcquisitions = domain.ColumnAcquisitions
	FieldMetricName   = domain.ColumnMetricName
	FieldValue        = domain.ColumnValue
)

// fieldSpec describes one canonical column: the headers that can supply
// it, in preference order, and how to synthesize it when absent.
type fieldSpec struct {
	name     string
	synonyms []string
	synth    synthKind
}

type synthKind int

const (
	synthDate synthKind = iota
	synthSequence
	synthCategory
	synthChannel
	synthAmount
	synthCount
	synthMetric
)

var tableSchemas = map[domain.SheetRole][]fieldSpec{
	domain.RoleTransactions: {
		{FieldDate, []string{"date", "transaction_date", "txn_date", "posted", "day"}, synthDate},
		{FieldDescription, []string{"description", "desc", "memo", "details", "narrative"}, synthSequence},
		{FieldCategory, []string{"category", "type", "class", "group"}, synthCategory},
		{FieldAmount, []string{"amount", "value", "price", "total", "sum"}, synthAmount},
	},
	domain.RoleCampaigns: {
		{FieldTimestamp, []string{"timestamp", "date", "start_date", "day"}, synthDate},
		{FieldCampaignID, []string{"campaign_id", "campaign", "id", "name"}, synthSequence},
		{FieldChannel, []string{"channel", "source", "platform", "medium"}, synthChannel},
		{FieldSpend, []string{"spend", "cost", "budget", "amount"}, synthAmount},
		{FieldAcquisitions, []string{"acquisitions", "conversions", "customers", "signups"}, synthCount},
	},
	domain.RoleTargets: {
		{FieldMetricName, []string{"metric_name", "metric", "kpi", "name"}, synthMetric},
		{FieldValue, []string{"value", "target", "goal", "amount"}, synthAmount},
	},
}

// Table is a canonical-schema string table: Fields in schema order, one
// row of cell text per record. Cleaning turns it into typed records.
type Table struct {
	Role       domain.SheetRole
	Fields     []string
	Rows       [][]string
	Provenance domain.TableProvenance
}

// Normalize maps a classified sheet onto the canonical schema for its
// role. Header matching tries each synonym in order against the trimmed,
// lowercased headers; fields with no matching header are synthesized
// from the deterministic default generator. A nil or effectively empty
// sheet yields the fully synthetic default table. Normalize never fails
// and is idempotent over already-canonical tables.
func Normalize(role domain.SheetRole, sheet *workbook.Sheet) Table {
	specs := tableSchemas[role]

	if sheet == nil || len(sheet.Rows) < 2 {
		return defaultTable(role)
	}

	header := sheet.Rows[0]
	data := sheet.Rows[1:]

	colIndex := make(map[string]int, len(specs))
	prov := domain.TableProvenance{
		SheetName:     sheet.Name,
		MappedColumns: make(map[string]string, len(specs)),
	}
	for _, spec := range specs {
		idx, src, ok := findColumn(header, spec.synonyms)
		if ok {
			colIndex[spec.name] = idx
			prov.MappedColumns[spec.name] = src
		} else {
			prov.DefaultedColumns = append(prov.DefaultedColumns, spec.name)
		}
	}

	// A sheet that matched nothing is not this table at all.
	if len(colIndex) == 0 {
		return defaultTable(role)
	}

	gen := newDefaultGenerator()
	fields := make([]string, len(specs))
	for i, spec := range specs {
		fields[i] = spec.name
	}

	rows := make([][]string, 0, len(data))
	for rowNum, src := range data {
		row := make([]string, len(specs))
		for i, spec := range specs {
			if idx, ok := colIndex[spec.name]; ok {
				if idx < len(src) {
					row[i] = src[idx]
				}
			} else {
				row[i] = gen.synthesize(spec.synth, rowNum)
			}
		}
		rows = append(rows, row)
	}

	return Table{Role: role, Fields: fields, Rows: rows, Provenance: prov}
}

// findColumn returns the index and original header text of the first
// synonym present in the header row.
func findColumn(header []string, synonyms []string) (int, string, bool) {
	for _, syn := range synonyms {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), syn) {
				return i, h, true
			}
		}
	}
	return 0, "", false
}
