// Package commands implements the restcli command tree.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbukum/restpipe/logger"
)

// Output formats.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)

// serviceName selects the config files and .env files restcli reads.
const serviceName = "restcli"

// flagKeys maps flags onto the config keys they override.
var flagKeys = map[string]string{
	"base-url":       "rest.base_url",
	"user-agent":     "rest.user_agent",
	"log-level":      "rest.log_level",
	"read-timeout":   "rest.read_timeout",
	"retry-attempts": "rest.retry.max_attempts",
}

// NewRootCommand builds the restcli command tree. Each call uses its own
// viper instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "restcli",
		Short: "Send requests through the REST client pipeline",
		Long: `restcli builds a REST client from config files, environment variables
and flags, then sends requests through its policy pipeline (user agent,
retry, logging, credentials and any enabled custom policies).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cfg := logger.Config{Level: "warn", Format: logger.FormatConsole, Writer: cmd.ErrOrStderr()}
			if v.GetBool("verbose") {
				cfg.Level = "debug"
			}
			logger.SetGlobalLogger(logger.New(&cfg, serviceName))
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default: search ./config.yml and friends)")
	flags.String("env-file", "", ".env file to load")
	flags.StringP("base-url", "u", "", "base URL requests are resolved against")
	flags.String("user-agent", "", "User-Agent header value")
	flags.String("log-level", "", "pipeline log level (none, basic, headers, body, body_and_headers)")
	flags.Duration("read-timeout", 0, "response header timeout")
	flags.Int("retry-attempts", 0, "total attempts per request")
	flags.StringP("token", "t", "", "bearer token")
	flags.StringP("output", "o", OutputFormatTable, "output format (table, json, yaml)")
	flags.String("otlp-endpoint", "", "OTLP HTTP endpoint for traces and metrics (host:port)")
	flags.BoolP("verbose", "v", false, "debug logging")

	for flag, key := range flagKeys {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	for _, name := range []string{"config", "env-file", "token", "output", "otlp-endpoint", "verbose"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	_ = v.BindEnv("token", "RESTCLI_TOKEN")

	root.AddCommand(newSendCommand(v))
	root.AddCommand(newVersionCommand(v))
	return root
}

// overrides returns the config keys whose flags were set explicitly.
func overrides(v *viper.Viper) map[string]any {
	out := make(map[string]any)
	for _, key := range flagKeys {
		if v.IsSet(key) {
			out[key] = v.Get(key)
		}
	}
	return out
}
