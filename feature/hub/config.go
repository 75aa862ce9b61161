package hub

import "strings"

// Config holds connection settings for the Hub registry API.
type Config struct {
	// URL is the base URL of the Hub API, without a trailing slash.
	URL string `mapstructure:"url" default:""`
	// ApiKey authenticates every search and upload request.
	ApiKey string `mapstructure:"api_key" default:""`
	// MaxSets caps how many gear sets a single search may return.
	MaxSets int `mapstructure:"max_sets" default:"1000"`
	// TimeoutSeconds bounds each HTTP request to the Hub.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// ShareWith is a comma-separated list of partner names attached to
	// uploaded gear sets.
	ShareWith string `mapstructure:"share_with" default:""`
}

// ShareList returns the configured share_with partners as a slice.
func (c *Config) ShareList() []string {
	if strings.TrimSpace(c.ShareWith) == "" {
		return []string{}
	}

	parts := strings.Split(c.ShareWith, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
