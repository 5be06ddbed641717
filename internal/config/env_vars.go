package config

import (
	"os"
	"time"
)

const (
	appNameVar        = "APP_NAME"
	folderEnvVar      = "LEDGER_DATA_FOLDER"
	baseURLVar        = "LEDGER_BASE_URL"
	httpTimeoutVar    = "LEDGER_HTTP_TIMEOUT"
	credentialsKeyVar = "LEDGER_CREDENTIALS_KEY"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ HTTPConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Bingo Ledger")
}

// GetDataFolder returns the folder that holds persistent client state
// (the remembered credentials file lives here).
func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, defaultDataFolder())
}

// GetCredentialsKey returns the base64 key used to encrypt the
// credentials file at rest. Empty disables encryption.
func (EnvVars) GetCredentialsKey() string {
	return GetEnv(credentialsKeyVar, "")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseURL returns the API base URL including the /api prefix
// (e.g., "https://ledger.example.org/api"). All request paths are
// resolved relative to it.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:5000/api")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	raw := GetEnv(httpTimeoutVar, "30s")
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func defaultDataFolder() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./data"
	}
	return dir + string(os.PathSeparator) + "bingo-ledger"
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
