// Package config loads and validates pypeline configuration.
//
// It uses Viper to load configuration from a config.yml file, a .env file and
// environment variables. Environment variables map onto nested keys by
// splitting on underscores, so ENGINE_STDERR sets engine.stderr and
// LOGGING_LEVEL sets logging.level.
//
// # Usage
//
//	var cfg config.Config
//	if err := config.LoadConfig("my-script", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
