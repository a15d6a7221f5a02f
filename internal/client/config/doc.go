// Package config loads runtime configuration for the valetkey CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c / -config or VALETKEY_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// The merged result is checked with go-playground/validator before use.
//
// # JSON schema
//
// Durations accept strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_url": "https://files.example.com",
//	  "public_base_url": "https://files.example.com",
//	  "page_size": 20,
//	  "request_timeout": "30s",
//	  "session_dsn": "session.db",
//	  "download_dir": "download",
//	  "log_level": "info",
//	  "log_backend": "zap",
//	  "log_format": "json",
//	  "metrics_addr": "127.0.0.1:9091"
//	}
package config
