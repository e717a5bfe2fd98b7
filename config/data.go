package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const envPrefix = "ASSETSHRINK_"

// DefaultPublicDir is the static asset folder the job table is resolved
// against when ASSETSHRINK_PUBLIC_DIR is unset.
const DefaultPublicDir = "public"

// DefaultHistoryMaxAge bounds how long run history records are kept.
const DefaultHistoryMaxAge = 30 * 24 * time.Hour

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + name))
}

// GetPublicDir returns the directory job filenames are resolved against.
// Priority: ASSETSHRINK_PUBLIC_DIR > "public"
func GetPublicDir() string {
	if dir := getenv("PUBLIC_DIR"); dir != "" {
		return dir
	}
	return DefaultPublicDir
}

// GetDataDir returns the directory for the run history database.
// An empty result means history is disabled, which is the default.
func GetDataDir() string {
	return getenv("DATA_DIR")
}

// GetHistoryDBPath returns {DATA_DIR}/history.db, or "" when history is off.
func GetHistoryDBPath() string {
	dir := GetDataDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "history.db")
}

// GetHistoryMaxAge parses ASSETSHRINK_HISTORY_MAX_AGE as a Go duration.
// Invalid or non-positive values fall back to DefaultHistoryMaxAge.
func GetHistoryMaxAge() time.Duration {
	raw := getenv("HISTORY_MAX_AGE")
	if raw == "" {
		return DefaultHistoryMaxAge
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return DefaultHistoryMaxAge
	}
	return d
}

func GetLogFile() string {
	return getenv("LOG_FILE")
}

func GetLogLevel() string {
	return getenv("LOG_LEVEL")
}

// IsStrict reports whether a failed job should make the process exit
// non-zero.
func IsStrict() bool {
	switch strings.ToLower(getenv("STRICT")) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// GetMirrorType returns the mirror backend name ("dir", "s3", "gcs",
// "sftp") or "" when mirroring is disabled.
func GetMirrorType() string {
	return strings.ToLower(getenv("MIRROR"))
}

// mirrorKeys lists the access info keys a mirror backend may read.
var mirrorKeys = []string{
	"baseDir",
	"endpoint",
	"folder",
	"bucket",
	"region",
	"accessKey",
	"secretKey",
	"credentialsJSON",
	"host",
	"port",
	"user",
	"password",
	"privateKey",
	"remoteDir",
}

// GetMirrorAccessInfo collects ASSETSHRINK_MIRROR_<KEY> variables into the
// access info map the publish backends consume. accessKey is read from
// ASSETSHRINK_MIRROR_ACCESS_KEY, credentialsJSON from
// ASSETSHRINK_MIRROR_CREDENTIALS_JSON, and so on.
func GetMirrorAccessInfo() map[string]string {
	info := make(map[string]string)
	for _, key := range mirrorKeys {
		if v := getenv("MIRROR_" + EnvName(key)); v != "" {
			info[key] = v
		}
	}
	return info
}

// EnvName converts a camelCase access info key to UPPER_SNAKE_CASE.
func EnvName(key string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range key {
		if unicode.IsUpper(r) && prevLower {
			b.WriteByte('_')
		}
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
