// Package config loads sessionscribe configuration.
//
// It uses Viper to read a YAML config file and Godotenv to load a .env
// file, then overlays SESSIONSCRIBE_* environment variables. Nested keys
// map to underscore-separated names (SESSIONSCRIBE_DEDUP_TIME_WINDOW sets
// dedup.time_window).
//
// # Usage
//
//	cfg, err := config.Load(config.WithConfigFile("session.yml"))
//	params := cfg.DedupParams()
//
// Without an explicit file the loader searches ./sessionscribe.yml,
// ./config.yml, ./config/config.yml, ./cmd/sessionscribe/config.yml and the
// user config directory.
package config
