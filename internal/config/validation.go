package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.BrowserPoolSize <= 0 || c.BrowserPoolSize > DefaultMaxBrowserPool {
		return fmt.Errorf("browser pool size must be between 1 and %d", DefaultMaxBrowserPool)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit rps must be > 0")
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be > 0")
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("run timeout must be > 0")
	}
	return nil
}
