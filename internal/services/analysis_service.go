// Package services wires the ingestion, KPI, analysis and AI stages
// into the operations the transport layer exposes.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finsight/internal/ai"
	"finsight/internal/analysis"
	"finsight/internal/kpi"
	"finsight/internal/metrics"
	"finsight/internal/normalize"
	"finsight/internal/store"
	"finsight/internal/workbook"
	"finsight/pkg/contracts/domain"
)

// AnalysisService runs the end-to-end analysis pipeline and serves
// stored results. The pipeline is synchronous and total: any internal
// failure yields a structured "analysis unavailable" result instead of
// an error.
type AnalysisService struct {
	loader    *workbook.Loader
	relevance kpi.RelevanceStrategy
	engine    *kpi.Engine
	insights  *ai.InsightGenerator
	store     store.AnalysisStore
	logger    *slog.Logger
}

// NewAnalysisService creates the analysis service.
func NewAnalysisService(
	loader *workbook.Loader,
	relevance kpi.RelevanceStrategy,
	engine *kpi.Engine,
	insights *ai.InsightGenerator,
	analysisStore store.AnalysisStore,
	logger *slog.Logger,
) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		loader:    loader,
		relevance: relevance,
		engine:    engine,
		insights:  insights,
		store:     analysisStore,
		logger:    logger,
	}
}

// AnalyzeFile loads the workbook at path and analyzes it. A workbook
// that cannot be opened degrades to the synthetic default dataset
// rather than failing the request.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string, info domain.FileInfo) *domain.AnalysisResult {
	wb, err := s.loader.Load(path)
	if err != nil {
		s.logger.WarnContext(ctx, "workbook unreadable, using default dataset",
			slog.String("path", path),
			slog.String("error", err.Error()))
	} else {
		info.SheetNames = wb.SheetNames()
	}
	return s.Analyze(ctx, wb, info)
}

// Analyze runs the full pipeline over a loaded workbook (nil means
// fully synthetic data) and stores the result.
func (s *AnalysisService) Analyze(ctx context.Context, wb *workbook.Workbook, info domain.FileInfo) (result *domain.AnalysisResult) {
	start := time.Now()
	defer func() {
		if rvr := recover(); rvr != nil {
			s.logger.ErrorContext(ctx, "analysis pipeline panicked",
				slog.Any("panic", rvr),
				slog.String("filename", info.Filename))
			result = s.unavailableResult(info, fmt.Sprintf("internal failure: %v", rvr))
			s.store.Put(result)
			metrics.AnalysesTotal.WithLabelValues(domain.AnalysisStatusUnavailable).Inc()
		}
		metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	}()

	ds := normalize.BuildDataset(wb, s.logger)

	relevance, err := s.relevance.Assess(ctx, &ds)
	if err != nil {
		// The advisory decorator degrades internally; an error here
		// means even the rule-based path failed, which it cannot.
		s.logger.ErrorContext(ctx, "relevance assessment failed", slog.String("error", err.Error()))
		relevance = domain.RelevanceReport{Source: "rules", DataQuality: "fair"}
	}

	kpis := s.engine.Compute(&ds, relevance)
	current := analysis.ComputeCurrentMetrics(&ds)
	patterns := analysis.AnalyzePatterns(&ds)
	predictions := analysis.Predict(current, patterns)

	result = &domain.AnalysisResult{
		ID:          uuid.New().String(),
		Status:      domain.AnalysisStatusComplete,
		GeneratedAt: time.Now().UTC(),
		FileInfo:    info,
		KPIs:        kpis,
		Relevance:   relevance,
		Metrics:     current,
		Patterns:    patterns,
		Predictions: predictions,
		Cleaning:    ds.Cleaning,
	}
	result.Insights = s.insights.Generate(ctx, result)

	s.store.Put(result)
	metrics.AnalysesTotal.WithLabelValues(domain.AnalysisStatusComplete).Inc()

	s.logger.InfoContext(ctx, "analysis complete",
		slog.String("analysis_id", result.ID),
		slog.String("filename", info.Filename),
		slog.String("risk_level", result.Predictions.RiskLevel),
		slog.String("insights_source", result.Insights.Source),
		slog.Duration("elapsed", time.Since(start)))
	return result
}

// Get returns a stored analysis by ID.
func (s *AnalysisService) Get(id string) (*domain.AnalysisResult, bool) {
	return s.store.Get(id)
}

// Query answers a persona question against a stored analysis.
func (s *AnalysisService) Query(ctx context.Context, id string, persona ai.Persona, question string) (ai.Answer, bool) {
	result, ok := s.store.Get(id)
	if !ok {
		return ai.Answer{}, false
	}
	return s.insights.AnswerQuery(ctx, persona, question, result), true
}

// unavailableResult is the degraded output for catastrophic pipeline
// failure: all KPIs null, deterministic placeholder narrative, HTTP
// success at the transport layer.
func (s *AnalysisService) unavailableResult(info domain.FileInfo, detail string) *domain.AnalysisResult {
	kpis := make(domain.KpiSet, len(domain.AllKPIs))
	for _, name := range domain.AllKPIs {
		kpis[name] = nil
	}
	result := &domain.AnalysisResult{
		ID:          uuid.New().String(),
		Status:      domain.AnalysisStatusUnavailable,
		GeneratedAt: time.Now().UTC(),
		FileInfo:    info,
		KPIs:        kpis,
		Relevance:   domain.RelevanceReport{Source: "rules", DataQuality: "fair", IrrelevantKPIs: domain.AllKPIs},
		Predictions: domain.PredictionSet{Horizons: map[string]domain.Forecast{}, RiskLevel: domain.RiskLow},
		Detail:      "analysis unavailable: " + detail,
	}
	result.Insights = ai.FallbackInsights(result)
	return result
}
