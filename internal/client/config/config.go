package config

import "time"

// Config holds runtime settings for the WhatTheNote CLI.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - RequestTimeout: deadline for ordinary API calls.
//   - ProcessingTimeout: deadline for upload and ask, which run the model
//     synchronously on the backend.
//   - DatabasePath: SQLite file holding the stored credential and profile.
//   - LogLevel: debug, info, warn or error.
//   - UploadAllowedTypes / UploadMaxSizeMB: local upload validation rules.
//   - ExportDir: directory for downloaded document reports.
//   - S3*: optional S3-compatible target for exported reports.
type Config struct {
	ServerURL          string
	RequestTimeout     time.Duration
	ProcessingTimeout  time.Duration
	DatabasePath       string
	LogLevel           string
	UploadAllowedTypes []string
	UploadMaxSizeMB    int
	ExportDir          string
	S3Bucket           string
	S3Region           string
	S3BaseEndpoint     string
	S3AccessKey        string
	S3SecretKey        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.RequestTimeout = 15 * time.Second
	c.ProcessingTimeout = 5 * time.Minute
	c.DatabasePath = "whatthenote.db"
	c.LogLevel = "warn"
	c.UploadAllowedTypes = []string{".pdf"}
	c.UploadMaxSizeMB = 10
	c.ExportDir = "exports"
	c.S3Region = "us-east-1"
}

// S3Enabled reports whether exports may also be pushed to object storage.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
