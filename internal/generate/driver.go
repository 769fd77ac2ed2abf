// Package generate turns catalog entries into video files: one step at a time,
// submit, poll until done or the ceiling is reached, download, persist.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"onboarding-videos/internal/catalog"
	"onboarding-videos/internal/model"
	"onboarding-videos/internal/runstore"
	"onboarding-videos/internal/videogen"
)

const promptPreviewLen = 100

// Phases reported through Driver.Notify.
const (
	PhaseSubmitting  = "submitting"
	PhaseWaiting     = "waiting"
	PhaseDownloading = "downloading"
	PhaseSaved       = "saved"
	PhaseSkipped     = "skipped"
	PhaseFailed      = "failed"
)

type Event struct {
	StepID  int
	Title   string
	Phase   string
	Attempt int
	Elapsed time.Duration
}

// Publisher receives a copy of every newly written video.
type Publisher interface {
	Publish(ctx context.Context, localPath string) (string, error)
}

type Driver struct {
	Catalog         *catalog.Catalog
	Service         videogen.Service
	OutputDir       string
	Params          videogen.RenderParams
	PollInterval    time.Duration
	MaxPollAttempts int

	Out       io.Writer
	Logger    *slog.Logger
	Notify    func(Event)
	Publisher Publisher
	Metrics   *Metrics

	// Sleep defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Generate produces the video for one step. The returned StepResult is always
// populated; err is a *StepError when the step failed.
func (d *Driver) Generate(ctx context.Context, stepID int) (model.StepResult, error) {
	out := d.out()
	log := d.logger().With("step", stepID)

	entry, ok := d.Catalog.Lookup(stepID)
	if !ok {
		fmt.Fprintf(out, "No prompt defined for step %d\n", stepID)
		return d.fail(ctx, model.StepResult{StepID: stepID}, nil, KindConfiguration,
			fmt.Errorf("no prompt defined for step %d", stepID))
	}
	res := model.StepResult{StepID: stepID, Title: entry.Title, Filename: entry.Filename}

	path, err := runstore.OutputPath(d.OutputDir, entry.Filename)
	if err != nil {
		fmt.Fprintf(out, "  Error generating step %d: %v\n", stepID, err)
		return d.fail(ctx, res, nil, KindConfiguration, err)
	}
	res.Path = path

	exists, err := runstore.Exists(path)
	if err != nil {
		fmt.Fprintf(out, "  Error generating step %d: %v\n", stepID, err)
		return d.fail(ctx, res, nil, KindService, err)
	}
	if exists {
		fmt.Fprintf(out, "  Skipping step %d: %s already exists\n", stepID, entry.Filename)
		log.Debug("output exists, skipping", "path", path)
		res.Status = model.StatusSkipped
		d.Metrics.recordSkip(ctx, stepID)
		d.notify(Event{StepID: stepID, Title: entry.Title, Phase: PhaseSkipped})
		return res, nil
	}

	fmt.Fprintf(out, "\n  Generating: %s (step %d)...\n", entry.Title, stepID)
	fmt.Fprintf(out, "  Prompt: %s...\n", preview(entry.Prompt, promptPreviewLen))
	d.notify(Event{StepID: stepID, Title: entry.Title, Phase: PhaseSubmitting})

	job := &model.GenerationJob{StepID: stepID}
	op, err := d.Service.Submit(ctx, videogen.Request{Prompt: entry.Prompt, Params: d.Params})
	if err != nil {
		fmt.Fprintf(out, "  Error generating step %d: %v\n", stepID, err)
		return d.fail(ctx, res, job, KindService, err)
	}
	job.OperationID = op.ID
	job.SubmittedAt = time.Now()
	if err := model.TransitionJobStatus(job, model.StatusSubmitted, ""); err != nil {
		return d.fail(ctx, res, job, KindService, err)
	}
	d.Metrics.recordSubmit(ctx, stepID)
	log.Info("submitted", "operation", op.ID)

	for !op.Done {
		job.Attempts++
		res.Attempts = job.Attempts
		if job.Attempts > d.maxAttempts() {
			fmt.Fprintf(out, "  Timeout waiting for step %d video\n", stepID)
			return d.fail(ctx, res, job, KindTimeout,
				fmt.Errorf("operation %s not done after %d polls", op.ID, d.maxAttempts()))
		}
		if err := model.TransitionJobStatus(job, model.StatusPolling, ""); err != nil {
			return d.fail(ctx, res, job, KindService, err)
		}

		elapsed := time.Duration(job.Attempts) * d.PollInterval
		fmt.Fprintf(out, "  Waiting... (%s)\n", formatElapsed(elapsed))
		d.notify(Event{StepID: stepID, Title: entry.Title, Phase: PhaseWaiting, Attempt: job.Attempts, Elapsed: elapsed})

		if err := d.sleep(ctx, d.PollInterval); err != nil {
			fmt.Fprintf(out, "  Error generating step %d: %v\n", stepID, err)
			return d.fail(ctx, res, job, KindService, err)
		}
		op, err = d.Service.Poll(ctx, op)
		d.Metrics.recordPoll(ctx, stepID)
		if err != nil {
			fmt.Fprintf(out, "  Error generating step %d: %v\n", stepID, err)
			return d.fail(ctx, res, job, KindService, err)
		}
	}
	job.Done = true
	if op.Err != nil {
		fmt.Fprintf(out, "  Error generating step %d: %v\n", stepID, op.Err)
		return d.fail(ctx, res, job, KindService, op.Err)
	}

	d.notify(Event{StepID: stepID, Title: entry.Title, Phase: PhaseDownloading, Attempt: job.Attempts})
	data, err := d.Service.Download(ctx, op)
	if errors.Is(err, videogen.ErrNoVideo) || (err == nil && len(data) == 0) {
		fmt.Fprintf(out, "  No video generated for step %d\n", stepID)
		return d.fail(ctx, res, job, KindEmptyResult, videogen.ErrNoVideo)
	}
	if err != nil {
		fmt.Fprintf(out, "  Error generating step %d: %v\n", stepID, err)
		return d.fail(ctx, res, job, KindService, err)
	}
	job.Result = data

	if err := runstore.WriteBytes(path, data); err != nil {
		fmt.Fprintf(out, "  Error generating step %d: %v\n", stepID, err)
		return d.fail(ctx, res, job, KindService, err)
	}
	if err := model.TransitionJobStatus(job, model.StatusCompleted, ""); err != nil {
		return d.fail(ctx, res, job, KindService, err)
	}
	res.Status = model.StatusCompleted
	res.Bytes = len(data)
	fmt.Fprintf(out, "  Saved: %s\n", path)
	log.Info("saved", "path", path, "bytes", len(data), "polls", job.Attempts)
	d.Metrics.recordSaved(ctx, stepID)
	d.notify(Event{StepID: stepID, Title: entry.Title, Phase: PhaseSaved, Attempt: job.Attempts})

	d.publish(ctx, out, log, stepID, path)
	return res, nil
}

// publish mirrors a saved video. Failures are reported and otherwise ignored.
func (d *Driver) publish(ctx context.Context, out io.Writer, log *slog.Logger, stepID int, path string) {
	if d.Publisher == nil {
		return
	}
	dest, err := d.Publisher.Publish(ctx, path)
	if err != nil {
		fmt.Fprintf(out, "  warn  mirror failed for step %d (non-fatal): %v\n", stepID, err)
		log.Warn("mirror failed", "error", err)
		return
	}
	fmt.Fprintf(out, "  Mirrored: %s\n", dest)
}

func (d *Driver) fail(ctx context.Context, res model.StepResult, job *model.GenerationJob, kind Kind, cause error) (model.StepResult, error) {
	status := model.StatusFailed
	if kind == KindTimeout {
		status = model.StatusTimedOut
	}
	if job != nil {
		if err := model.TransitionJobStatus(job, status, cause.Error()); err != nil {
			d.logger().Debug("failure status not recorded", "step", res.StepID, "error", err)
		}
		res.Attempts = job.Attempts
	}
	res.Status = status
	res.ErrorKind = string(kind)
	res.Message = cause.Error()

	d.Metrics.recordFailure(ctx, res.StepID, kind)
	d.logger().Warn("step failed", "step", res.StepID, "kind", string(kind), "error", cause)
	d.notify(Event{StepID: res.StepID, Title: res.Title, Phase: PhaseFailed, Attempt: res.Attempts})
	return res, &StepError{Kind: kind, StepID: res.StepID, Err: cause}
}

func (d *Driver) maxAttempts() int {
	if d.MaxPollAttempts <= 0 {
		return 60
	}
	return d.MaxPollAttempts
}

func (d *Driver) sleep(ctx context.Context, dur time.Duration) error {
	if d.Sleep != nil {
		return d.Sleep(ctx, dur)
	}
	return sleepContext(ctx, dur)
}

func (d *Driver) out() io.Writer {
	if d.Out != nil {
		return d.Out
	}
	return os.Stdout
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (d *Driver) notify(ev Event) {
	if d.Notify != nil {
		d.Notify(ev)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func preview(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
