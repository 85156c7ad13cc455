package buildinfo

import "time"

// Set via -ldflags at build time
var (
	Version    string // release tag
	BuildTime  string // when the binary was compiled
	CommitHash string // short git commit hash
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC().Format(time.RFC3339)

// Summary returns the fields the health endpoint exposes. Unset build-time
// values are reported as "dev".
func Summary() map[string]string {
	version := Version
	if version == "" {
		version = "dev"
	}
	return map[string]string{
		"version":   version,
		"commit":    CommitHash,
		"buildTime": BuildTime,
		"startTime": StartTime,
	}
}
