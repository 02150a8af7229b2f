// Command analyzer runs the analysis pipeline over a workbook from the
// command line and prints the result as JSON. AI stages are used when
// FINSIGHT_AI_API_KEY is set; otherwise deterministic fallbacks apply.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"finsight/internal/ai"
	"finsight/internal/config"
	"finsight/internal/kpi"
	"finsight/internal/services"
	"finsight/internal/store"
	"finsight/internal/workbook"
	"finsight/pkg/contracts/domain"
)

func main() {
	_ = godotenv.Load()

	pretty := flag.Bool("pretty", true, "indent JSON output")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: analyzer [-pretty] <workbook.xlsx>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	// Quiet structured logs on stderr; stdout is reserved for the result.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	llm := ai.NewClient(ai.Config{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, logger)

	service := services.NewAnalysisService(
		workbook.NewLoader(logger),
		kpi.NewAdvisoryWithFallback(ai.NewAdvisoryRelevance(llm, logger), kpi.NewRuleBasedRelevance(), logger),
		kpi.NewEngine(logger),
		ai.NewInsightGenerator(llm, logger),
		store.NewMemory(time.Hour, 10, logger),
		logger,
	)

	info := domain.FileInfo{
		Filename:   filepath.Base(path),
		UploadedAt: time.Now().UTC(),
	}
	if st, err := os.Stat(path); err == nil {
		info.SizeBytes = st.Size()
	}

	result := service.AnalyzeFile(context.Background(), path, info)

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
}
