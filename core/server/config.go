package server

// Config holds configuration for the emulator HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. When empty,
	// the server accepts unauthenticated requests.
	ApiKey string `mapstructure:"api_key" default:""`
	// ContentStore specifies where uploaded file content is kept
	// (memory, storage).
	ContentStore string `mapstructure:"content_store" default:"memory"`
}

const (
	// ContentStoreMemory keeps file content in process memory. Contents
	// are lost on restart; suited for tests and short-lived sandboxes.
	ContentStoreMemory = "memory"
	// ContentStoreStorage keeps file content in an S3/MinIO bucket.
	ContentStoreStorage = "storage"
)

// IsValidContentStore checks if the configured content store is valid.
func (c Config) IsValidContentStore() bool {
	switch c.ContentStore {
	case ContentStoreMemory, ContentStoreStorage:
		return true
	default:
		return false
	}
}
