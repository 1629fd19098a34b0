package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Acquisition: AcquisitionConfig{
			TempDir:      "",
			CopySidecars: true,
			VerifyHash:   true,
		},
		Output: OutputConfig{
			ConsoleSeparator: " | ",
			EventTypes:       []string{},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}
