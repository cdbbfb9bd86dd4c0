package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neurobridge/neurobridge/internal/model"
	"github.com/neurobridge/neurobridge/internal/pipeline"
	"github.com/neurobridge/neurobridge/internal/report"
	"github.com/neurobridge/neurobridge/internal/score"
	"github.com/neurobridge/neurobridge/internal/session"
)

// wizardCmd represents the wizard command
var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Run an interactive screening session",
	Long: `Wizard walks through a full screening interactively:
1. Answer the symptom checklist (yes/no)
2. Enter tapping test timestamps, or skip the test
3. Review the risk assessment and report

Example:
  neurobridge wizard
  neurobridge wizard --json report.json --llm --llm-provider openai`,
	RunE: runWizard,
}

func init() {
	rootCmd.AddCommand(wizardCmd)

	wizardCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	wizardCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	wizardCmd.Flags().StringVar(&outPDF, "pdf", "", "output PDF path (optional)")

	wizardCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable plain-language narrative generation")
	wizardCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	wizardCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runWizard(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	reader := bufio.NewScanner(os.Stdin)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if llmEnabled {
		if err := configureLLM(cfg, llmProvider, llmModel); err != nil {
			return err
		}
	}

	sess := session.New()
	fmt.Printf("NeuroBridge screening session %s\n", sess.ID)
	fmt.Println("This is a screening aid, not a diagnosis.")
	fmt.Println()

	// Stage 1: checklist
	checklist := make(model.SymptomChecklist)
	for i, q := range score.DefaultQuestions() {
		answer, err := askYesNo(reader, fmt.Sprintf("%2d. %s", i+1, q.Text))
		if err != nil {
			return err
		}
		checklist[q.ID] = model.SymptomAnswer{QuestionID: q.ID, Present: answer}
	}
	if err := sess.SubmitChecklist(checklist); err != nil {
		return err
	}

	// Stage 2: tapping test
	fmt.Println()
	fmt.Println("Tapping test: enter tap timestamps in seconds, space-separated")
	fmt.Println("(for example: 0 0.48 0.95 1.44 1.90 2.41), or press Enter to skip.")
	fmt.Print("> ")
	taps, err := readTaps(reader)
	if err != nil {
		return err
	}
	if len(taps) == 0 {
		if err := sess.SkipTapping(); err != nil {
			return err
		}
		fmt.Println("Tapping test skipped; the assessment will be checklist-only.")
	} else if err := sess.SubmitTaps(taps); err != nil {
		return err
	}

	// Stage 3: assessment and report
	p := pipeline.NewPipeline(cfg)
	result, err := p.Screen(ctx, sess.Checklist, sess.Taps)
	if err != nil {
		return fmt.Errorf("screen failed: %w", err)
	}
	if result.TappingSkipped {
		fmt.Fprintf(os.Stderr, "Note: tapping test not analyzed: %s\n", result.SkipReason)
	}
	if err := sess.RecordAssessment(result.Report.Assessment); err != nil {
		return err
	}
	if err := sess.AttachReport(result.Report); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(report.RenderText(result.Report))

	outText = false
	return writeReport(result.Report)
}

func askYesNo(reader *bufio.Scanner, prompt string) (bool, error) {
	for {
		fmt.Printf("%s [y/n] ", prompt)
		if !reader.Scan() {
			if err := reader.Err(); err != nil {
				return false, err
			}
			return false, fmt.Errorf("input closed")
		}
		switch strings.ToLower(strings.TrimSpace(reader.Text())) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Println("Please answer y or n.")
	}
}

func readTaps(reader *bufio.Scanner) (model.TapSequence, error) {
	if !reader.Scan() {
		return nil, reader.Err()
	}
	fields := strings.Fields(reader.Text())
	var taps model.TapSequence
	for _, field := range fields {
		ts, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", field, err)
		}
		taps = append(taps, model.TapEvent{Timestamp: ts})
	}
	return taps, nil
}
