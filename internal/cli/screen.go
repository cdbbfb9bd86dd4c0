package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/neurobridge/neurobridge/internal/model"
	"github.com/neurobridge/neurobridge/internal/pipeline"
	"github.com/neurobridge/neurobridge/internal/report"
)

var (
	outJSON     string
	outMD       string
	outPDF      string
	outText     bool
	timeout     time.Duration
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen <input.json>",
	Short: "Run a screening from a session input file",
	Long: `Screen scores one recorded session:
- Score the symptom checklist (all answers required)
- Analyze the finger-tapping test (optional; unusable data is noted)
- Aggregate both into a transparent risk tier
- Build a shareable report

Input format:
  {"answers": {"tremor": true, "rigidity": false, ...}, "taps": [0.0, 0.42, 0.85]}

Example:
  neurobridge screen session.json
  neurobridge screen session.json --json report.json --md report.md
  neurobridge screen session.json --llm --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runScreen,
}

func init() {
	rootCmd.AddCommand(screenCmd)

	// Output flags
	screenCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	screenCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	screenCmd.Flags().StringVar(&outPDF, "pdf", "", "output PDF path (optional)")
	screenCmd.Flags().BoolVar(&outText, "text", false, "print the full report to stdout")

	screenCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall screening timeout")

	// LLM flags
	screenCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable plain-language narrative generation")
	screenCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	screenCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runScreen(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if llmEnabled {
		if err := configureLLM(cfg, llmProvider, llmModel); err != nil {
			return err
		}
	}

	p := pipeline.NewPipeline(cfg)

	if verbose {
		fmt.Fprintf(os.Stderr, "Screening: %s\n\n", inputPath)
	}

	result, err := p.ScreenFile(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("screen failed: %w", err)
	}

	if result.TappingSkipped {
		fmt.Fprintf(os.Stderr, "Note: tapping test not analyzed: %s\n", result.SkipReason)
	}

	return writeReport(result.Report)
}

// writeReport renders the report to the configured outputs
func writeReport(r model.Report) error {
	if outJSON != "" {
		data, err := report.RenderJSON(r)
		if err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if err := os.WriteFile(outJSON, data, 0o644); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", outJSON)
		}
	}

	if outMD != "" {
		if err := os.WriteFile(outMD, []byte(report.RenderMarkdown(r)), 0o644); err != nil {
			return fmt.Errorf("write Markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", outMD)
		}
	}

	if outPDF != "" {
		if err := report.WritePDF(r, outPDF); err != nil {
			return fmt.Errorf("write PDF: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote PDF: %s\n", outPDF)
		}
	}

	if outText {
		fmt.Println(report.RenderText(r))
	} else {
		fmt.Println(report.RenderSummary(r))
	}
	return nil
}
