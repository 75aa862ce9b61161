package tracker

// Config holds connection settings for one Tracker deployment.
type Config struct {
	// Name identifies this destination in logs and cycle results.
	Name string `mapstructure:"name" default:"tracker"`
	// BaseURL is the root of the Tracker API.
	BaseURL string `mapstructure:"base_url" default:""`
	// Token is the bearer token used on every request.
	Token string `mapstructure:"token" default:""`
	// PageSize controls how many gear records each list page returns.
	PageSize int `mapstructure:"page_size" default:"100"`
	// TimeoutSeconds bounds each HTTP request to the Tracker.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
