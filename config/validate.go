package config

import "fmt"

// Validate checks addresses and economics before the node starts.
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if err := c.Genesis.Validate(); err != nil {
		return err
	}
	if c.Quota.MaxRequestsPerWindow > 0 && c.Quota.WindowSeconds == 0 {
		return fmt.Errorf("quota: window seconds must be positive when a limit is set")
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit: values must not be negative")
	}
	if c.LogMaxSizeMB < 0 {
		return fmt.Errorf("log: max size must not be negative")
	}
	return nil
}
