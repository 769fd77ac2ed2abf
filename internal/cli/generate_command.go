package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"onboarding-videos/internal/config"
	"onboarding-videos/internal/generate"
	"onboarding-videos/internal/mirror"
	"onboarding-videos/internal/runstore"
	"onboarding-videos/internal/videogen"
)

type generateOptions struct {
	Mode       generate.Mode
	StepID     int
	ConfigPath string
	OutputDir  string
	Provider   string
	JSON       bool
	Progress   bool
}

var newService = func(ctx context.Context, s config.Settings, apiKey string) (videogen.Service, error) {
	switch s.Provider {
	case config.ProviderArk:
		svc, err := videogen.NewArk(apiKey, s.ArkBaseURL, s.Model)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		svc, err := videogen.NewVeo(ctx, apiKey, s.Model)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
}

var newPublisher = func(cfg mirror.Config) (generate.Publisher, error) {
	m, err := mirror.NewMinIO(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func runGenerate(ctx context.Context, opts generateOptions) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	settings = settings.WithProvider(opts.Provider)
	if opts.OutputDir != "" {
		settings.OutputDir = opts.OutputDir
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	apiKey, err := config.Credential(settings.Provider)
	if err != nil {
		return err
	}

	runID := newRunID()
	logger := newLogger(opts.JSON, os.Stderr).With("run_id", runID, "provider", settings.Provider)

	cat := loadCatalog()
	stepIDs, err := generate.Plan(cat, opts.Mode, opts.StepID)
	if err != nil {
		return err
	}
	if opts.Mode == generate.ModeSingle {
		if _, ok := cat.Lookup(opts.StepID); !ok {
			fmt.Fprintf(progressOut(opts.JSON), "No prompt defined for step %d\n", opts.StepID)
			return &generate.StepError{
				Kind:   generate.KindConfiguration,
				StepID: opts.StepID,
				Err:    fmt.Errorf("no prompt defined for step %d", opts.StepID),
			}
		}
	}

	svc, err := newService(ctx, settings, apiKey)
	if err != nil {
		return err
	}

	if err := runstore.Mkdir(settings.OutputDir); err != nil {
		return err
	}
	lock, err := runstore.AcquireOutputLock(settings.OutputDir, runID)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Release()
	}()

	driver := &generate.Driver{
		Catalog:         cat,
		Service:         svc,
		OutputDir:       settings.OutputDir,
		Params:          videogen.RenderParams{AspectRatio: settings.AspectRatio, Resolution: settings.Resolution},
		PollInterval:    settings.PollInterval,
		MaxPollAttempts: settings.MaxPollAttempts,
		Out:             progressOut(opts.JSON),
		Logger:          logger,
	}
	if settings.Mirror.Enabled() {
		pub, err := newPublisher(settings.Mirror)
		if err != nil {
			return fmt.Errorf("mirror: %w", err)
		}
		driver.Publisher = pub
	}
	if metrics, err := generate.NewMetrics(); err != nil {
		logger.Warn("metrics disabled", "error", err)
	} else {
		driver.Metrics = metrics
	}

	var view *progressView
	if opts.Progress && !opts.JSON && stdoutIsTTY() {
		view = startProgressView(len(stepIDs))
		driver.Out = view.writer
		driver.Notify = view.notify
	}
	logger.Info("generation started",
		"mode", string(opts.Mode),
		"steps", len(stepIDs),
		"output_dir", settings.OutputDir,
		"poll_ceiling", settings.PollCeiling().String(),
	)

	if opts.Mode == generate.ModeSingle {
		res, genErr := driver.Generate(ctx, opts.StepID)
		view.stop(logger)
		if opts.JSON {
			if err := printJSON(res); err != nil {
				return err
			}
		}
		return genErr
	}

	runner := &generate.Runner{
		Driver:          driver,
		CostPerVideoUSD: settings.CostPerVideoUSD,
		MaxWaitPerVideo: settings.PollCeiling(),
		Out:             driver.Out,
	}
	result, runErr := runner.Run(ctx, runID, stepIDs)
	view.stop(logger)
	if opts.JSON {
		if err := printJSON(result); err != nil {
			return err
		}
		return runErr
	}
	generate.PrintResults(os.Stdout, result)
	return runErr
}

// progressOut keeps stdout clean for the JSON document when --json is set.
func progressOut(jsonOut bool) io.Writer {
	if jsonOut {
		return os.Stderr
	}
	return os.Stdout
}
