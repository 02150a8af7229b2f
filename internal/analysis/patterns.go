package analysis

import (
	"sort"
	"time"

	"finsight/pkg/contracts/domain"
)

// AnalyzePatterns derives the historical pattern blocks. All grouping
// and tie-breaking uses fixed orderings (calendar order, sorted channel
// names), so output does not depend on input row order.
func AnalyzePatterns(ds *domain.Dataset) domain.PatternAnalysis {
	var patterns domain.PatternAnalysis

	if len(ds.Transactions) > 0 {
		tx := sortedTransactions(ds.Transactions)
		patterns.Transactions = transactionPatterns(tx)
		patterns.CashFlow = cashFlowAnalysis(tx)
		patterns.Seasonality = seasonalityAnalysis(tx)
	}
	if len(ds.Campaigns) > 0 {
		patterns.Campaigns = campaignPatterns(sortedCampaigns(ds.Campaigns))
	}

	return patterns
}

// sortedTransactions returns a date-ordered copy; description breaks
// date ties so equal-date rows keep a stable order.
func sortedTransactions(records []domain.TransactionRecord) []domain.TransactionRecord {
	out := make([]domain.TransactionRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Description < out[j].Description
	})
	return out
}

func sortedCampaigns(records []domain.CampaignRecord) []domain.CampaignRecord {
	out := make([]domain.CampaignRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].CampaignID < out[j].CampaignID
	})
	return out
}

func transactionPatterns(tx []domain.TransactionRecord) *domain.TransactionPatterns {
	byDay := make(map[time.Weekday][]float64)
	byMonth := make(map[time.Month][]float64)
	amounts := make([]float64, 0, len(tx))
	for _, t := range tx {
		byDay[t.Date.Weekday()] = append(byDay[t.Date.Weekday()], t.Amount)
		byMonth[t.Date.Month()] = append(byMonth[t.Date.Month()], t.Amount)
		amounts = append(amounts, t.Amount)
	}

	bestDay, worstDay := extremeWeekdays(byDay)
	bestMonth, worstMonth := extremeMonths(byMonth)

	return &domain.TransactionPatterns{
		BestDay:        bestDay,
		WorstDay:       worstDay,
		BestMonth:      bestMonth,
		WorstMonth:     worstMonth,
		DailyFrequency: round2(float64(len(tx)) / float64(spanDays(tx[0].Date, tx[len(tx)-1].Date))),
		Volatility:     round2(stddev(amounts)),
		GrowthRate:     sanitize(growthRate(amounts)),
	}
}

func extremeWeekdays(byDay map[time.Weekday][]float64) (best, worst string) {
	var bestMean, worstMean float64
	for d := time.Sunday; d <= time.Saturday; d++ {
		values, ok := byDay[d]
		if !ok {
			continue
		}
		m := mean(values)
		if best == "" || m > bestMean {
			best, bestMean = d.String(), m
		}
		if worst == "" || m < worstMean {
			worst, worstMean = d.String(), m
		}
	}
	return best, worst
}

func extremeMonths(byMonth map[time.Month][]float64) (best, worst string) {
	var bestMean, worstMean float64
	for mo := time.January; mo <= time.December; mo++ {
		values, ok := byMonth[mo]
		if !ok {
			continue
		}
		m := mean(values)
		if best == "" || m > bestMean {
			best, bestMean = mo.String(), m
		}
		if worst == "" || m < worstMean {
			worst, worstMean = mo.String(), m
		}
	}
	return best, worst
}

func campaignPatterns(campaigns []domain.CampaignRecord) *domain.CampaignPatterns {
	spendByChannel := make(map[string]float64)
	acqByChannel := make(map[string]int)
	spendSeries := make([]float64, 0, len(campaigns))
	acqSeries := make([]float64, 0, len(campaigns))
	for _, c := range campaigns {
		spendByChannel[c.Channel] += c.Spend
		acqByChannel[c.Channel] += c.Acquisitions
		spendSeries = append(spendSeries, c.Spend)
		acqSeries = append(acqSeries, float64(c.Acquisitions))
	}

	channels := make([]string, 0, len(spendByChannel))
	for ch := range spendByChannel {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	var best, worst string
	var bestCPA, worstCPA float64
	for _, ch := range channels {
		acq := acqByChannel[ch]
		if acq == 0 {
			acq = 1
		}
		cpa := spendByChannel[ch] / float64(acq)
		if best == "" || cpa < bestCPA {
			best, bestCPA = ch, cpa
		}
		if worst == "" || cpa > worstCPA {
			worst, worstCPA = ch, cpa
		}
	}

	days := spanDays(campaigns[0].Timestamp, campaigns[len(campaigns)-1].Timestamp)

	return &domain.CampaignPatterns{
		BestChannel:       best,
		WorstChannel:      worst,
		CampaignFrequency: round2(float64(len(campaigns)) / float64(days)),
		SpendTrend:        sanitize(trend(spendSeries)),
		AcquisitionTrend:  sanitize(trend(acqSeries)),
	}
}

func cashFlowAnalysis(tx []domain.TransactionRecord) *domain.CashFlowAnalysis {
	monthly := make(map[string]float64)
	for _, t := range tx {
		monthly[t.Date.Format("2006-01")] += t.Amount
	}

	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)

	series := make([]float64, 0, len(months))
	positives, negatives := 0, 0
	var negativeSums []float64
	for _, m := range months {
		v := monthly[m]
		series = append(series, v)
		if v >= 0 {
			positives++
		} else {
			negatives++
			negativeSums = append(negativeSums, v)
		}
	}

	var burn float64
	if len(negativeSums) > 0 {
		burn = -mean(negativeSums)
	}

	return &domain.CashFlowAnalysis{
		MonthlyAverage:    round2(mean(series)),
		MonthlyVolatility: round2(stddev(series)),
		PositiveMonths:    positives,
		NegativeMonths:    negatives,
		Trend:             sanitize(trend(series)),
		BurnRate:          round2(burn),
	}
}

func seasonalityAnalysis(tx []domain.TransactionRecord) *domain.SeasonalityAnalysis {
	sums := make(map[time.Month]float64)
	for _, t := range tx {
		sums[t.Date.Month()] += t.Amount
	}
	if len(sums) < 2 {
		return nil
	}

	var total float64
	for _, v := range sums {
		total += v
	}
	overallMean := total / float64(len(sums))
	if overallMean == 0 {
		return nil
	}

	indices := make(map[string]float64, len(sums))
	var peak, trough string
	var peakIdx, troughIdx float64
	var series []float64
	for mo := time.January; mo <= time.December; mo++ {
		sum, ok := sums[mo]
		if !ok {
			continue
		}
		idx := sanitize(sum / overallMean)
		indices[mo.String()] = round2(idx)
		series = append(series, idx)
		if peak == "" || idx > peakIdx {
			peak, peakIdx = mo.String(), idx
		}
		if trough == "" || idx < troughIdx {
			trough, troughIdx = mo.String(), idx
		}
	}

	return &domain.SeasonalityAnalysis{
		Indices:     indices,
		PeakMonth:   peak,
		TroughMonth: trough,
		Strength:    round2(stddev(series)),
	}
}

// spanDays is the inclusive day span between two dates, at least 1.
func spanDays(from, to time.Time) int {
	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}
