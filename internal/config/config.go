// Package config resolves runtime settings for the video generator.
//
// Layers apply in order: built-in defaults, the optional YAML file, then
// ONBOARDING_* environment variables. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"onboarding-videos/internal/mirror"
)

type Settings struct {
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	AspectRatio     string        `yaml:"aspect_ratio"`
	Resolution      string        `yaml:"resolution"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	MaxPollAttempts int           `yaml:"max_poll_attempts"`
	OutputDir       string        `yaml:"output_dir"`
	CostPerVideoUSD float64       `yaml:"cost_per_video_usd"`
	ArkBaseURL      string        `yaml:"ark_base_url"`
	Mirror          mirror.Config `yaml:"mirror"`
}

func Defaults() Settings {
	return Settings{
		Provider:        DefaultProvider,
		AspectRatio:     DefaultAspectRatio,
		Resolution:      DefaultResolution,
		PollInterval:    DefaultPollInterval,
		MaxPollAttempts: DefaultMaxPollAttempts,
		OutputDir:       DefaultOutputDir,
		CostPerVideoUSD: DefaultCostPerVideoUSD,
		ArkBaseURL:      DefaultArkBaseURL,
	}
}

// Load reads the YAML file at path over the defaults and then applies the
// environment. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Defaults()
	path = strings.TrimSpace(path)
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return Settings{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := s.applyEnv(); err != nil {
		return Settings{}, err
	}
	return s.Normalize(), nil
}

func (s *Settings) applyEnv() error {
	var err error
	s.Provider = envString("ONBOARDING_PROVIDER", s.Provider)
	s.Model = envString("ONBOARDING_MODEL", s.Model)
	s.OutputDir = envString("ONBOARDING_OUTPUT_DIR", s.OutputDir)
	s.ArkBaseURL = envString("ONBOARDING_ARK_BASE_URL", s.ArkBaseURL)
	if s.PollInterval, err = envDuration("ONBOARDING_POLL_INTERVAL", s.PollInterval); err != nil {
		return err
	}
	if s.MaxPollAttempts, err = envInt("ONBOARDING_MAX_POLL_ATTEMPTS", s.MaxPollAttempts); err != nil {
		return err
	}

	s.Mirror.Endpoint = envString("ONBOARDING_MIRROR_ENDPOINT", s.Mirror.Endpoint)
	s.Mirror.AccessKey = envString("ONBOARDING_MIRROR_ACCESS_KEY", s.Mirror.AccessKey)
	s.Mirror.SecretKey = envString("ONBOARDING_MIRROR_SECRET_KEY", s.Mirror.SecretKey)
	s.Mirror.Bucket = envString("ONBOARDING_MIRROR_BUCKET", s.Mirror.Bucket)
	s.Mirror.Region = envString("ONBOARDING_MIRROR_REGION", s.Mirror.Region)
	s.Mirror.Prefix = envString("ONBOARDING_MIRROR_PREFIX", s.Mirror.Prefix)
	if s.Mirror.UseSSL, err = envBool("ONBOARDING_MIRROR_USE_SSL", s.Mirror.UseSSL); err != nil {
		return err
	}
	return nil
}

// Normalize fills provider-dependent defaults.
func (s Settings) Normalize() Settings {
	out := s
	out.Provider = strings.ToLower(strings.TrimSpace(out.Provider))
	if out.Provider == "" {
		out.Provider = DefaultProvider
	}
	if strings.TrimSpace(out.Model) == "" {
		out.Model = DefaultModel(out.Provider)
	}
	if strings.TrimSpace(out.OutputDir) == "" {
		out.OutputDir = DefaultOutputDir
	}
	if strings.TrimSpace(out.ArkBaseURL) == "" {
		out.ArkBaseURL = DefaultArkBaseURL
	}
	return out
}

// DefaultModel is the model used for provider when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderArk {
		return DefaultArkModel
	}
	return DefaultVeoModel
}

// WithProvider switches provider. A model that was only the old provider's
// default is replaced by the new provider's default.
func (s Settings) WithProvider(provider string) Settings {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" || provider == s.Provider {
		return s
	}
	out := s
	if out.Model == DefaultModel(out.Provider) {
		out.Model = ""
	}
	out.Provider = provider
	return out.Normalize()
}

func (s Settings) Validate() error {
	switch s.Provider {
	case ProviderVeo, ProviderArk:
	default:
		return fmt.Errorf("unknown provider %q (expected %s or %s)", s.Provider, ProviderVeo, ProviderArk)
	}
	if strings.TrimSpace(s.AspectRatio) == "" {
		return errors.New("aspect ratio is required")
	}
	if strings.TrimSpace(s.Resolution) == "" {
		return errors.New("resolution is required")
	}
	if s.PollInterval < 0 {
		return errors.New("poll interval must be >= 0")
	}
	if s.MaxPollAttempts <= 0 {
		return errors.New("max poll attempts must be > 0")
	}
	if s.CostPerVideoUSD < 0 {
		return errors.New("cost per video must be >= 0")
	}
	if s.Mirror.Enabled() {
		if err := s.Mirror.Validate(); err != nil {
			return fmt.Errorf("mirror: %w", err)
		}
	}
	return nil
}

// CredentialEnv names the environment variable holding the provider's API key.
func CredentialEnv(provider string) string {
	if provider == ProviderArk {
		return EnvArkAPIKey
	}
	return EnvGeminiAPIKey
}

// Credential reads the provider's API key from the process environment.
func Credential(provider string) (string, error) {
	key := CredentialEnv(provider)
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("%s environment variable not set", key)
	}
	return v, nil
}

// PollCeiling is the longest a single step waits for its operation.
func (s Settings) PollCeiling() time.Duration {
	return time.Duration(s.MaxPollAttempts) * s.PollInterval
}
