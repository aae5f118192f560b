package rest

import (
	"time"

	"github.com/kbukum/restpipe/config"
	"github.com/kbukum/restpipe/transport"
)

// Options holds the client settings that can come from configuration
// files or the environment. Zero fields keep the builder's value.
type Options struct {
	BaseURL            string            `mapstructure:"base_url" yaml:"base_url"`
	UserAgent          string            `mapstructure:"user_agent" yaml:"user_agent"`
	LogLevel           string            `mapstructure:"log_level" yaml:"log_level"`
	ReadTimeout        time.Duration     `mapstructure:"read_timeout" yaml:"read_timeout"`
	ConnectionTimeout  time.Duration     `mapstructure:"connection_timeout" yaml:"connection_timeout"`
	MaxIdleConnections int               `mapstructure:"max_idle_connections" yaml:"max_idle_connections"`
	Retry              RetrySettings     `mapstructure:"retry" yaml:"retry"`
	Headers            map[string]string `mapstructure:"headers" yaml:"headers"`
	TLS                transport.TLS     `mapstructure:"tls" yaml:"tls"`
}

// RetrySettings is the configurable subset of policy.RetryOptions.
type RetrySettings struct {
	MaxAttempts  int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
}

// fileOptions is the document layout read by LoadOptions.
type fileOptions struct {
	Rest Options `mapstructure:"rest"`
}

// LoadOptions reads Options for service from the "rest" section of its
// config file, .env file and environment (REST_BASE_URL, REST_RETRY_MAX_ATTEMPTS, ...).
func LoadOptions(service string, opts ...config.LoaderOption) (Options, error) {
	var doc fileOptions
	if err := config.LoadConfig(service, &doc, opts...); err != nil {
		return Options{}, err
	}
	return doc.Rest, nil
}
