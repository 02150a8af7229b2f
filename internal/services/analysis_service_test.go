package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/ai"
	"finsight/internal/kpi"
	"finsight/internal/store"
	"finsight/internal/workbook"
	"finsight/pkg/contracts/domain"
)

func testService(relevance kpi.RelevanceStrategy) (*AnalysisService, *store.Memory) {
	mem := store.NewMemory(time.Minute, 10, nil)
	if relevance == nil {
		relevance = kpi.NewRuleBasedRelevance()
	}
	svc := NewAnalysisService(
		workbook.NewLoader(nil),
		relevance,
		kpi.NewEngine(nil),
		ai.NewInsightGenerator(ai.NewClient(ai.Config{}, nil), nil),
		mem,
		nil,
	)
	return svc, mem
}

func TestAnalyze_SyntheticDataset(t *testing.T) {
	svc, mem := testService(nil)

	result := svc.Analyze(context.Background(), nil, domain.FileInfo{Filename: "missing.xlsx"})

	require.NotNil(t, result)
	assert.Equal(t, domain.AnalysisStatusComplete, result.Status)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "missing.xlsx", result.FileInfo.Filename)

	// Synthetic default tables make every KPI computable.
	require.Len(t, result.KPIs, len(domain.AllKPIs))
	for _, name := range domain.AllKPIs {
		_, ok := result.KPIs.Value(name)
		assert.True(t, ok, "kpi %s should be computed", name)
	}

	assert.Len(t, result.Predictions.Horizons, 5)
	assert.Equal(t, "fallback", result.Insights.Source)
	assert.NotEmpty(t, result.Insights.ExecutiveSummary)
	assert.NotEmpty(t, result.Cleaning)

	stored, ok := mem.Get(result.ID)
	require.True(t, ok)
	assert.Equal(t, result.ID, stored.ID)
}

func TestAnalyzeFile_UnreadableWorkbookDegrades(t *testing.T) {
	svc, _ := testService(nil)

	result := svc.AnalyzeFile(context.Background(),
		filepath.Join(t.TempDir(), "missing.xlsx"),
		domain.FileInfo{Filename: "missing.xlsx"})

	assert.Equal(t, domain.AnalysisStatusComplete, result.Status)
	assert.Empty(t, result.FileInfo.SheetNames)
}

type panickingStrategy struct{}

func (panickingStrategy) Assess(context.Context, *domain.Dataset) (domain.RelevanceReport, error) {
	panic("boom")
}

func TestAnalyze_PanicYieldsUnavailableResult(t *testing.T) {
	svc, mem := testService(panickingStrategy{})

	result := svc.Analyze(context.Background(), nil, domain.FileInfo{Filename: "bad.xlsx"})

	require.NotNil(t, result)
	assert.Equal(t, domain.AnalysisStatusUnavailable, result.Status)
	assert.Contains(t, result.Detail, "analysis unavailable")

	// All KPIs report as null.
	require.Len(t, result.KPIs, len(domain.AllKPIs))
	for _, name := range domain.AllKPIs {
		assert.Nil(t, result.KPIs[name])
	}
	assert.Equal(t, "fallback", result.Insights.Source)

	// Degraded results are stored and retrievable like any other.
	_, ok := mem.Get(result.ID)
	assert.True(t, ok)
}

func TestGet(t *testing.T) {
	svc, _ := testService(nil)

	result := svc.Analyze(context.Background(), nil, domain.FileInfo{Filename: "a.xlsx"})

	got, ok := svc.Get(result.ID)
	require.True(t, ok)
	assert.Equal(t, result.ID, got.ID)

	_, ok = svc.Get("unknown")
	assert.False(t, ok)
}

func TestQuery(t *testing.T) {
	svc, _ := testService(nil)

	result := svc.Analyze(context.Background(), nil, domain.FileInfo{Filename: "a.xlsx"})

	answer, found := svc.Query(context.Background(), result.ID, ai.PersonaCFO, "How much runway do we have?")
	require.True(t, found)
	assert.Equal(t, "cfo", answer.Persona)
	assert.Equal(t, "fallback", answer.Source)
	assert.NotEmpty(t, answer.Answer)

	_, found = svc.Query(context.Background(), "unknown", ai.PersonaCFO, "anything?")
	assert.False(t, found)
}
