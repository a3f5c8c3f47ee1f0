package app

import (
	"os"
	"strings"
)

// Store backends selectable with FEES_STORE_BACKEND
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendDrive    = "drive"
)

// Config holds the settings read from the environment
type Config struct {
	Port            string
	BaseURL         string
	StoreBackend    string
	StoreKey        string
	SQLitePath      string
	CredentialsPath string
	DriveFolderID   string
}

func getenvDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// LoadConfig reads the configuration from environment variables
func LoadConfig() Config {
	port := getenvDefault("PORT", "8080")
	// PORT from Render doesn't include the leading colon, but local .env files sometimes do
	port = strings.TrimPrefix(port, ":")

	return Config{
		Port:            port,
		BaseURL:         getenvDefault("BASE_URL", "http://localhost:"+port),
		StoreBackend:    strings.ToLower(getenvDefault("FEES_STORE_BACKEND", BackendSQLite)),
		StoreKey:        os.Getenv("FEES_STORE_KEY"),
		SQLitePath:      getenvDefault("SQLITE_PATH", "catering_fees.db"),
		CredentialsPath: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		DriveFolderID:   os.Getenv("FEES_DRIVE_FOLDER_ID"),
	}
}
