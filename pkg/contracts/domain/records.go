package domain

import (
	"time"
)

// SheetRole identifies which logical table a workbook sheet feeds.
type SheetRole string

const (
	RoleTransactions SheetRole = "transactions"
	RoleCampaigns    SheetRole = "campaigns"
	RoleTargets      SheetRole = "targets"
)

// Canonical column names, as recorded in TableProvenance.
const (
	ColumnDate         = "date"
	ColumnDescription  = "description"
	ColumnCategory     = "category"
	ColumnAmount       = "amount"
	ColumnTimestamp    = "timestamp"
	ColumnCampaignID   = "campaign_id"
	ColumnChannel      = "channel"
	ColumnSpend        = "spend"
	ColumnAcquisitions = "acquisitions"
	ColumnMetricName   = "metric_name"
	ColumnValue        = "value"
)

// TransactionRecord is one cleaned row of the transactions table.
type TransactionRecord struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
}

// CampaignRecord is one cleaned row of the marketing campaigns table.
type CampaignRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	CampaignID   string    `json:"campaign_id"`
	Channel      string    `json:"channel"`
	Spend        float64   `json:"spend"`
	Acquisitions int       `json:"acquisitions"`
}

// TargetRecord is one named business target (metric name -> value).
type TargetRecord struct {
	MetricName string  `json:"metric_name"`
	Value      float64 `json:"value"`
}

// TableProvenance records how a table was obtained from the workbook,
// so downstream consumers can tell real columns from synthesized ones.
type TableProvenance struct {
	SheetName string `json:"sheet_name,omitempty"`
	// Synthetic is true when the whole table was generated because no
	// usable sheet existed for the role.
	Synthetic bool `json:"synthetic"`
	// MappedColumns maps canonical field names to the source header that
	// supplied them.
	MappedColumns map[string]string `json:"mapped_columns,omitempty"`
	// DefaultedColumns lists canonical fields that had to be synthesized.
	DefaultedColumns []string `json:"defaulted_columns,omitempty"`
}

// HasSourceColumn reports whether the canonical field came from a real
// workbook column rather than a synthesized default.
func (p TableProvenance) HasSourceColumn(field string) bool {
	if p.Synthetic {
		return false
	}
	_, ok := p.MappedColumns[field]
	return ok
}

// CleaningReport counts rows dropped during cleaning, per reason.
type CleaningReport struct {
	RowsIn           int `json:"rows_in"`
	RowsOut          int `json:"rows_out"`
	DroppedBadDate   int `json:"dropped_bad_date"`
	DroppedBadNumber int `json:"dropped_bad_number"`
	DroppedEmptyText int `json:"dropped_empty_text"`
}

// Dropped returns the total number of rows removed by cleaning.
func (r CleaningReport) Dropped() int {
	return r.DroppedBadDate + r.DroppedBadNumber + r.DroppedEmptyText
}

// Merge accumulates another report into this one.
func (r *CleaningReport) Merge(other CleaningReport) {
	r.RowsIn += other.RowsIn
	r.RowsOut += other.RowsOut
	r.DroppedBadDate += other.DroppedBadDate
	r.DroppedBadNumber += other.DroppedBadNumber
	r.DroppedEmptyText += other.DroppedEmptyText
}

// Dataset is the fully normalized and cleaned input to the analysis
// pipeline: the three logical tables plus provenance and cleaning stats.
type Dataset struct {
	Transactions []TransactionRecord `json:"transactions"`
	Campaigns    []CampaignRecord    `json:"campaigns"`
	Targets      []TargetRecord      `json:"targets"`

	TransactionInfo TableProvenance `json:"transaction_info"`
	CampaignInfo    TableProvenance `json:"campaign_info"`
	TargetInfo      TableProvenance `json:"target_info"`

	Cleaning map[SheetRole]CleaningReport `json:"cleaning,omitempty"`
}

// TargetValue looks up a target by exact metric name.
func (d *Dataset) TargetValue(name string) (float64, bool) {
	for _, t := range d.Targets {
		if t.MetricName == name {
			return t.Value, true
		}
	}
	return 0, false
}

// FileInfo describes the uploaded workbook an analysis was computed from.
type FileInfo struct {
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	SheetNames []string  `json:"sheet_names,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}
