package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"onboarding-videos/internal/catalog"
	"onboarding-videos/internal/config"
	"onboarding-videos/internal/generate"
)

var loadCatalog = catalog.Default

func Run(args []string) error {
	return RunContext(context.Background(), args)
}

// RunContext parses flags and dispatches one mode. When several modes are
// given, list wins over video, video over explainers, explainers over all.
func RunContext(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("onboarding-videos", flag.ContinueOnError)
	video := fs.Int("video", 0, "generate a single step by id")
	all := fs.Bool("all", false, "generate every cataloged step")
	explainers := fs.Bool("explainers", false, "generate explainer steps only")
	list := fs.Bool("list", false, "list cataloged steps")
	outputDir := fs.String("output-dir", "", "output directory (default "+config.DefaultOutputDir+")")
	configPath := fs.String("config", config.DefaultConfigPath, "settings file (optional)")
	provider := fs.String("provider", "", "video provider: veo|ark")
	jsonOut := fs.Bool("json", false, "print JSON output")
	progress := fs.Bool("progress", true, "show live progress when stdout is a terminal")
	fs.SetOutput(flag.CommandLine.Output())
	fs.Usage = printRootUsage
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 0 {
		printRootUsage()
		return fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	videoSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "video" {
			videoSet = true
		}
	})

	opts := generateOptions{
		ConfigPath: strings.TrimSpace(*configPath),
		OutputDir:  strings.TrimSpace(*outputDir),
		Provider:   strings.TrimSpace(*provider),
		JSON:       *jsonOut,
		Progress:   *progress,
	}
	switch {
	case *list:
		return runList(loadCatalog(), *jsonOut)
	case videoSet:
		opts.Mode = generate.ModeSingle
		opts.StepID = *video
	case *explainers:
		opts.Mode = generate.ModeExplainers
	case *all:
		opts.Mode = generate.ModeAll
	default:
		printRootUsage()
		return nil
	}
	return runGenerate(ctx, opts)
}

func printRootUsage() {
	fmt.Println("onboarding-videos: batch-generate onboarding videos with a text-to-video API")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  onboarding-videos --video <step>   generate one step")
	fmt.Println("  onboarding-videos --all            generate every cataloged step")
	fmt.Println("  onboarding-videos --explainers     generate explainer steps only")
	fmt.Println("  onboarding-videos --list           list cataloged steps")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --output-dir <dir>   output directory (default " + config.DefaultOutputDir + ")")
	fmt.Println("  --config <path>      settings file (default " + config.DefaultConfigPath + ")")
	fmt.Println("  --provider veo|ark   video provider (default " + config.DefaultProvider + ")")
	fmt.Println("  --json               machine-readable output")
	fmt.Println("  --progress=false     disable the live progress view")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  " + config.EnvGeminiAPIKey + "       API key for --provider veo")
	fmt.Println("  " + config.EnvArkAPIKey + "          API key for --provider ark")
	fmt.Println("  " + config.EnvLogLevel + " debug|info|warn|error (diagnostics on stderr)")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Existing files in the output directory are skipped; delete one to regenerate it")
	fmt.Println("  - Failed steps can be retried with --video <step>")
}
