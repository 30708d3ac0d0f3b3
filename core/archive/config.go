package archive

import "fmt"

// Config holds connection settings for an archive instance.
type Config struct {
	// Domain is the hostname of the archive, without scheme.
	Domain string `mapstructure:"domain" default:"archive.example.org"`
	// Port is the port of the archive API.
	Port int `mapstructure:"port" default:"443"`
	// Token is the personal access token used as the bearer credential.
	Token string `mapstructure:"token" default:""`
	// UseSSL indicates whether to use HTTPS for API requests.
	UseSSL bool `mapstructure:"use_ssl" default:"true"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// BaseURL renders the root URL of the archive API.
func (c Config) BaseURL() string {
	scheme := "https"
	if !c.UseSSL {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Domain, c.Port)
}

// RecordURL renders the public landing page of a published record version.
// It is shown to users after publish operations.
func (c Config) RecordURL(recordID string) string {
	scheme := "https"
	if !c.UseSSL {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/records/%s", scheme, c.Domain, recordID)
}

// UploadURL renders the landing page of an unpublished draft.
func (c Config) UploadURL(recordID string) string {
	scheme := "https"
	if !c.UseSSL {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/uploads/%s", scheme, c.Domain, recordID)
}
