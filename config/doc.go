// Package config loads layered configuration with Viper.
//
// Values come from defaults, a YAML file, the environment (optionally
// seeded from a .env file via godotenv) and explicit overrides, in that
// order of precedence:
//
//	var cfg struct {
//	    REST rest.Options `mapstructure:"rest"`
//	}
//	err := config.LoadConfig("billing", &cfg, config.WithConfigFile("billing.yml"))
//
// REST_BASE_URL=https://... in the environment overrides rest.base_url.
package config
