package config

// DefaultRegionTemplate is the base URL pattern for the object storage
// compatibility API.
const DefaultRegionTemplate = "https://s3.{region}.cloud-object-storage.appdomain.cloud"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8000,
			Host:         "localhost",
			EnableReload: false,
			MaxBodyBytes: 1 << 20,
		},
		Dispatch: DispatchConfig{
			Timeout:          "30s",
			DefaultRegion:    "us-south",
			MaxResponseBytes: 50 << 20,
		},
		Loader: LoaderConfig{
			FetchTimeout:     "30s",
			Concurrency:      4,
			CacheTTL:         "0s",
			MaxDocumentBytes: 32 << 20,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Outputs: []string{"console"},
		},
	}
}
