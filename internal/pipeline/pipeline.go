package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/neurobridge/neurobridge/internal/llm"
	"github.com/neurobridge/neurobridge/internal/model"
	"github.com/neurobridge/neurobridge/internal/report"
	"github.com/neurobridge/neurobridge/internal/score"
	"github.com/neurobridge/neurobridge/internal/worker"
)

// Pipeline orchestrates one screening run: score the checklist, analyze
// the tapping test, aggregate the risk, and build the report.
type Pipeline struct {
	checklist  *score.ChecklistScorer
	tapping    *score.TappingAnalyzer
	aggregator *score.Aggregator
	builder    *report.Builder
	config     *model.Config
}

// NewPipeline creates a pipeline from configuration. An unusable LLM
// provider downgrades to templated narratives rather than failing.
func NewPipeline(cfg *model.Config) *Pipeline {
	var provider llm.Provider
	if cfg.LLM.Provider != "" {
		p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM provider disabled: %v\n", err)
		} else {
			provider = p
		}
	}

	return &Pipeline{
		checklist:  score.NewChecklistScorer(score.DefaultQuestions(), cfg.Checklist.FactorMateriality),
		tapping:    score.NewTappingAnalyzer(cfg.Tapping),
		aggregator: score.NewAggregator(cfg.Risk),
		builder:    report.NewBuilder(provider, cfg.LLM),
		config:     cfg,
	}
}

// ScreenResult is one completed screening
type ScreenResult struct {
	Report model.Report

	// TappingSkipped is set when taps were provided but could not be
	// analyzed; the assessment is then checklist-only.
	TappingSkipped bool
	SkipReason     string
}

// Screen runs the full screening for one session. The tapping test is
// optional: absent or unusable tap data yields a checklist-only assessment
// with reduced confidence, never a hard failure.
func (p *Pipeline) Screen(ctx context.Context, checklist model.SymptomChecklist, taps model.TapSequence) (*ScreenResult, error) {
	checklistScore, err := p.checklist.Score(checklist)
	if err != nil {
		return nil, fmt.Errorf("score checklist: %w", err)
	}

	subScores := []model.SubScore{checklistScore}
	result := &ScreenResult{}

	if len(taps) > 0 {
		tappingScore, err := p.tapping.Analyze(taps)
		var insufficient *score.InsufficientDataError
		switch {
		case err == nil:
			subScores = append(subScores, tappingScore)
		case errors.As(err, &insufficient):
			result.TappingSkipped = true
			result.SkipReason = insufficient.Error()
		default:
			return nil, fmt.Errorf("analyze tapping: %w", err)
		}
	}

	assessment, err := p.aggregator.Aggregate(subScores)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	result.Report = p.builder.Build(ctx, assessment)
	return result, nil
}

// ScreenFile loads a session input file and screens it
func (p *Pipeline) ScreenFile(ctx context.Context, path string) (*ScreenResult, error) {
	checklist, taps, err := LoadSessionInput(path)
	if err != nil {
		return nil, err
	}
	return p.Screen(ctx, checklist, taps)
}

// BatchResult pairs one input path with its screening outcome
type BatchResult struct {
	Path   string
	Result *ScreenResult
	Err    error
}

func (r *BatchResult) GetError() error { return r.Err }

type screenJob struct {
	pipeline *Pipeline
	path     string
}

func (j *screenJob) Execute(ctx context.Context) worker.Result {
	result, err := j.pipeline.ScreenFile(ctx, j.path)
	return &BatchResult{Path: j.path, Result: result, Err: err}
}

// ScreenBatch screens many session input files concurrently. Results come
// back keyed by path; per-file failures do not abort the batch.
func (p *Pipeline) ScreenBatch(ctx context.Context, paths []string) []*BatchResult {
	workers := p.config.Concurrency.Workers
	if workers <= 0 {
		workers = 1
	}

	pool := worker.NewPool(workers)
	pool.Start()
	for _, path := range paths {
		pool.Submit(&screenJob{pipeline: p, path: path})
	}

	results := make([]*BatchResult, 0, len(paths))
	for _, r := range pool.Wait() {
		results = append(results, r.(*BatchResult))
	}
	return results
}
