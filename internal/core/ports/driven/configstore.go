package driven

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}

// Configuration keys understood by fundfetch.
const (
	// ConfigOutputRoot overrides the default output directory.
	ConfigOutputRoot = "fetch.output_root"

	// ConfigHeadless sets the default browser mode.
	ConfigHeadless = "fetch.headless"

	// ConfigPageTimeoutSeconds bounds page navigation waits.
	ConfigPageTimeoutSeconds = "fetch.page_timeout_seconds"

	// ConfigDownloadTimeoutSeconds bounds the per-file completion watch.
	ConfigDownloadTimeoutSeconds = "fetch.download_timeout_seconds"

	// ConfigFallbackFirstYear and ConfigFallbackLastYear bound the
	// static year range used when probing finds nothing.
	ConfigFallbackFirstYear = "probe.fallback_first_year"
	ConfigFallbackLastYear  = "probe.fallback_last_year"
)
