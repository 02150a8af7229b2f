package normalize

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"finsight/pkg/contracts/domain"
)

// Synthetic data is drawn from a fixed seed so two normalizations of the
// same workbook produce identical datasets.
const defaultSeed = 42

var defaultStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var defaultCategories = []string{"Revenue", "Expense", "Marketing", "Operations"}

var defaultChannels = []string{"Google Ads", "Facebook", "LinkedIn", "Email"}

var defaultTargets = []domain.TargetRecord{
	{MetricName: "Current_Cash", Value: 500000},
	{MetricName: "Forecast_Accuracy_Target", Value: 0.92},
	{MetricName: "Quarterly_Marketing_Budget", Value: 150000},
	{MetricName: "CAC_Target", Value: 50},
	{MetricName: "ROI_Target", Value: 3.0},
}

// defaultGenerator produces synthetic cell values for columns a sheet
// did not supply.
type defaultGenerator struct {
	rng *rand.Rand
}

func newDefaultGenerator() *defaultGenerator {
	return &defaultGenerator{rng: rand.New(rand.NewSource(defaultSeed))}
}

func (g *defaultGenerator) synthesize(kind synthKind, rowNum int) string {
	switch kind {
	case synthDate:
		return defaultStart.AddDate(0, 0, rowNum).Format("2006-01-02")
	case synthSequence:
		return fmt.Sprintf("Record %d", rowNum+1)
	case synthCategory:
		return defaultCategories[g.rng.Intn(len(defaultCategories))]
	case synthChannel:
		return defaultChannels[g.rng.Intn(len(defaultChannels))]
	case synthAmount:
		// Normal(1000, 300), two decimals.
		return fmt.Sprintf("%.2f", g.rng.NormFloat64()*300+1000)
	case synthCount:
		return strconv.Itoa(g.poisson(5))
	case synthMetric:
		return defaultTargets[rowNum%len(defaultTargets)].MetricName
	}
	return ""
}

// poisson draws from Poisson(lambda) via Knuth's method. Lambdas here
// are small, so the loop stays short.
func (g *defaultGenerator) poisson(lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= g.rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// defaultTable builds the fully synthetic table for a role, used when a
// workbook supplies no usable sheet for it.
func defaultTable(role domain.SheetRole) Table {
	specs := tableSchemas[role]
	fields := make([]string, len(specs))
	defaulted := make([]string, len(specs))
	for i, spec := range specs {
		fields[i] = spec.name
		defaulted[i] = spec.name
	}

	rowCount := map[domain.SheetRole]int{
		domain.RoleTransactions: 31,
		domain.RoleCampaigns:    10,
		domain.RoleTargets:      len(defaultTargets),
	}[role]

	gen := newDefaultGenerator()
	rows := make([][]string, 0, rowCount)
	for rowNum := 0; rowNum < rowCount; rowNum++ {
		row := make([]string, len(specs))
		for i, spec := range specs {
			if role == domain.RoleTargets {
				t := defaultTargets[rowNum]
				if spec.name == FieldMetricName {
					row[i] = t.MetricName
				} else {
					row[i] = strconv.FormatFloat(t.Value, 'f', -1, 64)
				}
				continue
			}
			row[i] = gen.synthesize(spec.synth, rowNum)
		}
		rows = append(rows, row)
	}

	return Table{
		Role:   role,
		Fields: fields,
		Rows:   rows,
		Provenance: domain.TableProvenance{
			Synthetic:        true,
			DefaultedColumns: defaulted,
		},
	}
}
