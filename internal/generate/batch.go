package generate

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"onboarding-videos/internal/catalog"
	"onboarding-videos/internal/model"
)

type Mode string

const (
	ModeSingle     Mode = "single"
	ModeAll        Mode = "all"
	ModeExplainers Mode = "explainers"
)

// Plan returns the step ids a mode covers, in execution order.
func Plan(cat *catalog.Catalog, mode Mode, stepID int) ([]int, error) {
	switch mode {
	case ModeSingle:
		return []int{stepID}, nil
	case ModeAll:
		return cat.AllIDs(), nil
	case ModeExplainers:
		return cat.ExplainerIDs(), nil
	default:
		return nil, fmt.Errorf("unknown generation mode %q", mode)
	}
}

type Runner struct {
	Driver *Driver
	// CostPerVideoUSD feeds the pre-batch estimate; zero hides the line.
	CostPerVideoUSD float64
	// MaxWaitPerVideo is the polling ceiling shown in the banner; zero hides the line.
	MaxWaitPerVideo time.Duration
	Out             io.Writer
}

// Run generates every step in order. A failed step never stops the ones after
// it; only context cancellation ends the batch early. The returned error is
// non-nil when any step failed.
func (r *Runner) Run(ctx context.Context, runID string, stepIDs []int) (model.RunResult, error) {
	out := r.out()
	result := model.RunResult{RunID: runID, OutputDir: r.Driver.OutputDir, Steps: []model.StepResult{}}

	fmt.Fprintf(out, "Generating %d videos...\n", len(stepIDs))
	if r.CostPerVideoUSD > 0 {
		fmt.Fprintf(out, "Estimated cost: ~$%s (8s at $0.75/sec each)\n", formatUSD(float64(len(stepIDs))*r.CostPerVideoUSD))
	}
	if r.MaxWaitPerVideo > 0 {
		fmt.Fprintf(out, "Max wait per video: %s\n", r.MaxWaitPerVideo)
	}
	fmt.Fprintf(out, "Output: %s\n", r.Driver.OutputDir)

	for _, id := range stepIDs {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("batch interrupted before step %d: %w", id, err)
		}
		step, _ := r.Driver.Generate(ctx, id)
		result.Add(step)
	}

	if result.Failed > 0 {
		return result, fmt.Errorf("%d video(s) failed", result.Failed)
	}
	return result, nil
}

// PrintResults writes the post-batch summary.
func PrintResults(out io.Writer, result model.RunResult) {
	fmt.Fprintln(out, "\n=== Results ===")
	for _, step := range result.Steps {
		state := "OK"
		if !step.OK() {
			state = "FAILED"
		}
		title := step.Title
		if title == "" {
			title = "unknown"
		}
		fmt.Fprintf(out, "  Step %d (%s): %s\n", step.StepID, title, state)
	}
	if result.Failed > 0 {
		fmt.Fprintf(out, "\n%d video(s) failed. Re-run with --video STEP to retry.\n", result.Failed)
		return
	}
	fmt.Fprintln(out, "\nAll videos generated successfully!")
}

func (r *Runner) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}

func formatUSD(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
