package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultUserAgent         = "Harvest/1.0 (+https://github.com/histia/harvest)"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultRateLimitRPS      = 2.0
	DefaultRateLimitBurst    = 4
	DefaultBrowserPoolSize   = 3
	DefaultMaxBrowserPool    = 10
	DefaultBrowserHeadless   = true
	DefaultPoolAcquireTTL    = 10 * time.Second
	DefaultListenAddr        = ":8000"
	DefaultLLMBaseURL        = "https://api.openai.com/v1"
	DefaultLLMModel          = "gpt-4o-mini"
	DefaultLLMTimeout        = 60 * time.Second
	DefaultLLMMaxRetries     = 2
	DefaultLLMTemperature    = 0.0
	DefaultNavigationSettle  = 300 * time.Millisecond
	DefaultRunTimeout        = 5 * time.Minute
)
