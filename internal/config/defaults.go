package config

import "time"

const (
	DefaultConfigPath      = "onboarding-videos.yaml"
	DefaultOutputDir       = "public/videos"
	DefaultProvider        = ProviderVeo
	DefaultAspectRatio     = "16:9"
	DefaultResolution      = "720p"
	DefaultPollInterval    = 10 * time.Second
	DefaultMaxPollAttempts = 60
	DefaultCostPerVideoUSD = 6

	ProviderVeo = "veo"
	ProviderArk = "ark"

	DefaultVeoModel   = "veo-3.0-generate-001"
	DefaultArkModel   = "doubao-seedance-1-0-pro-250528"
	DefaultArkBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvArkAPIKey    = "ARK_API_KEY"
	EnvLogLevel     = "ONBOARDING_LOG_LEVEL"
)
