package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/neurobridge/neurobridge/internal/pipeline"
	"github.com/neurobridge/neurobridge/internal/report"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Screen a directory of session input files in parallel",
	Long: `Batch screens every *.json session file in a directory:
- Sessions are screened concurrently with a configurable worker count
- Each session produces its own JSON and Markdown report
- Per-session failures are reported without aborting the batch

Example:
  neurobridge batch ./sessions
  neurobridge batch ./sessions --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./neurobridge-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable plain-language narrative generation")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read input directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	if len(paths) == 0 {
		return fmt.Errorf("no *.json session files in %s", dir)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = concurrency
	if llmEnabled {
		if err := configureLLM(cfg, llmProvider, llmModel); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Screening %d sessions with %d workers...\n\n", len(paths), concurrency)

	p := pipeline.NewPipeline(cfg)
	results := p.ScreenBatch(ctx, paths)

	successCount := 0
	failureCount := 0
	for _, result := range results {
		name := strings.TrimSuffix(filepath.Base(result.Path), ".json")
		if result.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", name, result.Err)
			continue
		}

		r := result.Result.Report
		jsonPath := filepath.Join(outputDir, name+".json")
		data, err := report.RenderJSON(r)
		if err == nil {
			err = os.WriteFile(jsonPath, data, 0o644)
		}
		if err == nil {
			mdPath := filepath.Join(outputDir, name+".md")
			err = os.WriteFile(mdPath, []byte(report.RenderMarkdown(r)), 0o644)
		}
		if err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: write report: %v\n", name, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "OK   %s: %s\n", name, report.RenderSummary(r))
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d succeeded, %d failed, output in %s\n",
		successCount, failureCount, outputDir)
	return nil
}
