package labdb

import "fmt"

// Config holds connection settings for a lab automation server.
type Config struct {
	// Host is the IP address or hostname of the lab server.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the port of the lab server API.
	Port int `mapstructure:"port" default:"13371"`
	// Username is the lab server account to authenticate as.
	Username string `mapstructure:"username" default:""`
	// Password is the password of the lab server account.
	Password string `mapstructure:"password" default:""`
	// UseSSL indicates whether to use HTTPS for API requests.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// BaseURL renders the root URL of the lab server API.
func (c Config) BaseURL() string {
	scheme := "https"
	if !c.UseSSL {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}
