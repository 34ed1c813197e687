package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/whatthenote/internal/flagx"
	"github.com/dmitrijs2005/whatthenote/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero values so a partial file only
// overrides what it names.
type JsonConfig struct {
	ServerURL          *string         `json:"server_url"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	ProcessingTimeout  *timex.Duration `json:"processing_timeout"`
	DatabasePath       *string         `json:"database_path"`
	LogLevel           *string         `json:"log_level"`
	UploadAllowedTypes []string        `json:"upload_allowed_types"`
	UploadMaxSizeMB    *int            `json:"upload_max_size_mb"`
	ExportDir          *string         `json:"export_dir"`
	S3Bucket           *string         `json:"s3_bucket"`
	S3Region           *string         `json:"s3_region"`
	S3BaseEndpoint     *string         `json:"s3_base_endpoint"`
	S3AccessKey        *string         `json:"s3_access_key"`
	S3SecretKey        *string         `json:"s3_secret_key"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from flagx.ConfigFile (-c, -config or the
// WHATTHENOTE_CONFIG variable); when empty nothing is loaded.
// Panics on read or unmarshal errors.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.ExportDir, jc.ExportDir)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ProcessingTimeout != nil {
		cfg.ProcessingTimeout = jc.ProcessingTimeout.Duration
	}
	if jc.UploadAllowedTypes != nil {
		cfg.UploadAllowedTypes = jc.UploadAllowedTypes
	}
	if jc.UploadMaxSizeMB != nil {
		cfg.UploadMaxSizeMB = *jc.UploadMaxSizeMB
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
