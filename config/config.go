/*
config.go - Startup configuration

PURPOSE:
  Builds the single Config value the rest of the application receives at
  startup. Values come from the environment (with an optional .env file via
  godotenv) and can be overridden by command-line flags in cmd/server.

DESIGN:
  Config is constructed once in main and passed into constructors. No
  package-level globals, no config reads scattered through the codebase.

VARIABLES:
  PORT           HTTP listen port                     (default 8080)
  DB_PATH        SQLite database path                 (default placement.db)
  FILE_ROOT      Directory for uploaded documents     (default ./uploads)
  FILE_BASE_URL  Public URL prefix for uploaded files (default /files)
  AUTH_SECRET    HMAC secret for bearer tokens        (empty disables auth)
  CORS_ORIGINS   Comma-separated allowed origins

SEE ALSO:
  - cmd/server/main.go: Flag overrides and wiring
*/
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port        int
	DBPath      string
	FileRoot    string
	FileBaseURL string
	AuthSecret  string
	CORSOrigins []string
}

// Load reads the environment, first loading a .env file if one exists.
// A missing .env file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:        8080,
		DBPath:      "placement.db",
		FileRoot:    "./uploads",
		FileBaseURL: "/files",
		AuthSecret:  os.Getenv("AUTH_SECRET"),
		CORSOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("FILE_ROOT"); v != "" {
		cfg.FileRoot = v
	}
	if v := os.Getenv("FILE_BASE_URL"); v != "" {
		cfg.FileBaseURL = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSOrigins = origins
	}
	return cfg, nil
}
