package generate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"onboarding-videos/internal/catalog"
	"onboarding-videos/internal/model"
)

func TestPlanModes(t *testing.T) {
	cat := scenarioCatalog()
	cases := []struct {
		mode Mode
		step int
		want []int
	}{
		{mode: ModeExplainers, want: []int{8}},
		{mode: ModeAll, want: []int{1, 8}},
		{mode: ModeSingle, step: 1, want: []int{1}},
		{mode: ModeSingle, step: 99, want: []int{99}},
	}
	for _, tc := range cases {
		got, err := Plan(cat, tc.mode, tc.step)
		if err != nil {
			t.Fatalf("plan %s: %v", tc.mode, err)
		}
		if !slices.Equal(got, tc.want) {
			t.Fatalf("plan %s: got %v want %v", tc.mode, got, tc.want)
		}
	}
	if _, err := Plan(cat, Mode("bogus"), 0); err == nil {
		t.Fatal("expected unknown mode error")
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	cat := catalog.New([]catalog.Entry{
		{StepID: 1, Filename: "a.mp4", Title: "A", Prompt: "pa"},
		{StepID: 2, Filename: "b.mp4", Title: "B", Prompt: "pb"},
		{StepID: 3, Filename: "c.mp4", Title: "C", Prompt: "pc"},
	}, nil)
	svc := newFakeService(1)
	svc.failPrompts = map[string]bool{"pb": true}
	td := newTestDriver(t, cat, svc)

	out := &bytes.Buffer{}
	runner := &Runner{Driver: td.Driver, Out: out}
	result, err := runner.Run(context.Background(), "run1", []int{1, 2, 3})
	if err == nil {
		t.Fatal("expected batch error when a step fails")
	}
	if len(result.Steps) != 3 {
		t.Fatalf("expected 3 results, got %d", len(result.Steps))
	}
	for _, step := range result.Steps {
		wantOK := step.StepID != 2
		if step.OK() != wantOK {
			t.Fatalf("step %d ok=%v want %v", step.StepID, step.OK(), wantOK)
		}
	}
	if result.Completed != 2 || result.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if svc.submits != 3 {
		t.Fatalf("expected every step submitted, got %d", svc.submits)
	}
}

func TestRunScenarioModes(t *testing.T) {
	t.Run("explainers", func(t *testing.T) {
		td := newTestDriver(t, scenarioCatalog(), newFakeService(1))
		ids, _ := Plan(td.Catalog, ModeExplainers, 0)
		result, err := (&Runner{Driver: td.Driver, Out: &bytes.Buffer{}}).Run(context.Background(), "r", ids)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if len(result.Steps) != 1 || result.Steps[0].StepID != 8 {
			t.Fatalf("unexpected steps: %+v", result.Steps)
		}
		if !slices.Equal(td.svc.prompts, []string{"openrouter prompt"}) {
			t.Fatalf("unexpected prompts: %v", td.svc.prompts)
		}
	})

	t.Run("all", func(t *testing.T) {
		td := newTestDriver(t, scenarioCatalog(), newFakeService(1))
		ids, _ := Plan(td.Catalog, ModeAll, 0)
		if _, err := (&Runner{Driver: td.Driver, Out: &bytes.Buffer{}}).Run(context.Background(), "r", ids); err != nil {
			t.Fatalf("run: %v", err)
		}
		if !slices.Equal(td.svc.prompts, []string{"welcome prompt", "openrouter prompt"}) {
			t.Fatalf("expected step 1 then step 8, got %v", td.svc.prompts)
		}
	})

	t.Run("single leaves other outputs untouched", func(t *testing.T) {
		td := newTestDriver(t, scenarioCatalog(), newFakeService(1))
		other := filepath.Join(td.OutputDir, "step08-openrouter.mp4")
		if err := os.WriteFile(other, []byte("old"), 0o644); err != nil {
			t.Fatalf("seed file: %v", err)
		}
		ids, _ := Plan(td.Catalog, ModeSingle, 1)
		if _, err := (&Runner{Driver: td.Driver, Out: &bytes.Buffer{}}).Run(context.Background(), "r", ids); err != nil {
			t.Fatalf("run: %v", err)
		}
		data, _ := os.ReadFile(other)
		if string(data) != "old" {
			t.Fatalf("step 8 output changed: %q", data)
		}
		if td.svc.submits != 1 {
			t.Fatalf("expected one submission, got %d", td.svc.submits)
		}
	})
}

func TestRunPrintsBannerAndStopsOnCancel(t *testing.T) {
	td := newTestDriver(t, scenarioCatalog(), newFakeService(1))
	out := &bytes.Buffer{}
	runner := &Runner{Driver: td.Driver, CostPerVideoUSD: 6, MaxWaitPerVideo: 10 * time.Minute, Out: out}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := runner.Run(ctx, "r", []int{1, 8})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if len(result.Steps) != 0 || td.svc.calls() != 0 {
		t.Fatalf("expected no work after cancellation, steps=%d calls=%d", len(result.Steps), td.svc.calls())
	}
	for _, want := range []string{
		"Generating 2 videos...",
		"Estimated cost: ~$12 (8s at $0.75/sec each)",
		"Max wait per video: 10m0s",
		"Output: " + td.OutputDir,
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("banner missing %q:\n%s", want, out.String())
		}
	}
}

func TestPrintResults(t *testing.T) {
	var ok model.RunResult
	ok.Add(model.StepResult{StepID: 1, Title: "Welcome", Status: model.StatusCompleted})
	ok.Add(model.StepResult{StepID: 8, Title: "OpenRouter", Status: model.StatusSkipped})
	out := &bytes.Buffer{}
	PrintResults(out, ok)
	for _, want := range []string{"=== Results ===", "Step 1 (Welcome): OK", "Step 8 (OpenRouter): OK", "All videos generated successfully!"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("missing %q:\n%s", want, out.String())
		}
	}

	var bad model.RunResult
	bad.Add(model.StepResult{StepID: 1, Title: "Welcome", Status: model.StatusTimedOut})
	bad.Add(model.StepResult{StepID: 99, Status: model.StatusFailed})
	out.Reset()
	PrintResults(out, bad)
	for _, want := range []string{"Step 1 (Welcome): FAILED", "Step 99 (unknown): FAILED", "2 video(s) failed. Re-run with --video STEP to retry."} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("missing %q:\n%s", want, out.String())
		}
	}
}
