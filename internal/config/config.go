package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Storage selects the archive backend: "sqlite" or "memory".
	Storage      string `mapstructure:"storage" yaml:"storage"`
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	// SendBuffer is the per-connection outbound queue size. A client that
	// falls this many frames behind is dropped.
	SendBuffer int `mapstructure:"send_buffer" yaml:"send_buffer"`

	// MaxMessageBytes caps a single inbound WebSocket frame.
	MaxMessageBytes int64 `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`

	// MaxUploadBytes caps an image upload.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		Storage:           "sqlite",
		DatabasePath:      "chatrelay.db",
		LogLevel:          "info",
		JWTSecret:         "change-me",
		JWTIssuer:         "chatrelay",
		JWTAudience:       "chatrelay",
		SendBuffer:        32,
		MaxMessageBytes:   1 << 20,
		MaxUploadBytes:    5 << 20,
	}
}
