package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"resume-uploads/internal/shared/telemetry"
)

// loadEnvFiles loads KEY=VALUE pairs from the given files if they exist.
// Variables already present in the environment win.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			telemetry.Warn("config.env_file_failed", map[string]any{"path": path, "error": err.Error()})
		}
	}
}

// LoadEnvFile loads a single env file, reporting any error including a missing file.
func LoadEnvFile(path string) error {
	return godotenv.Load(path)
}
