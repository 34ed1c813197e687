// Package config loads runtime configuration for the WhatTheNote CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags -c or -config,
//     or the WHATTHENOTE_CONFIG environment variable.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-t int      request timeout (seconds)
//	-d string   path of the local SQLite database
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "15s"
// or integer nanoseconds. Absent keys keep their previous value:
//
//	{
//	  "server_url": "http://localhost:8000",
//	  "request_timeout": "15s",
//	  "processing_timeout": "5m",
//	  "database_path": "whatthenote.db",
//	  "log_level": "info",
//	  "upload_allowed_types": [".pdf"],
//	  "upload_max_size_mb": 10,
//	  "export_dir": "exports",
//	  "s3_bucket": "notes",
//	  "s3_region": "us-east-1",
//	  "s3_base_endpoint": "http://127.0.0.1:9000",
//	  "s3_access_key": "admin",
//	  "s3_secret_key": "secret"
//	}
package config
