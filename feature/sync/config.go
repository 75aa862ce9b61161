package sync

import "time"

// Config holds the cycle window, schedule and recency settings.
type Config struct {
	// WindowMinutes is how far back each cycle pulls Hub changes.
	WindowMinutes int `mapstructure:"window_minutes" default:"60"`
	// IntervalMinutes is the pause between scheduled cycles.
	IntervalMinutes int `mapstructure:"interval_minutes" default:"30"`
	// GraceMinutes is the recency grace window guarding Tracker→Hub pushes.
	GraceMinutes int `mapstructure:"grace_minutes" default:"15"`
	// DryRun logs every outbound payload instead of sending it.
	DryRun bool `mapstructure:"dry_run" default:"false"`
}

// Window returns the pull window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}

// Interval returns the scheduling interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Grace returns the recency grace window as a duration.
func (c *Config) Grace() time.Duration {
	return time.Duration(c.GraceMinutes) * time.Minute
}
