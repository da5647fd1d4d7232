package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// Local folder where uploaded images land before the background
	// uploader pushes them to Drive.
	UploadDir string

	// Base URL joined with the stored image reference to build the
	// public image URL. The reference is a Drive file id once the
	// background upload has committed, or the local filename before that.
	ImageBaseURL string

	// Users allowed to read the history log.
	AdminUsers []string

	// Google Drive uploader.
	DriveEnabled     bool
	DriveTokenPath   string // delegated-user OAuth token (JSON)
	DriveCredsPath   string // service-account credentials (JSON)
	DriveFolderID    string // target folder; must be a Shared Drive folder for service accounts
	DriveImpersonate string // optional domain-wide delegation subject

	QueueCapacity int
	// How long shutdown waits for the in-flight upload to finish.
	ShutdownGrace time.Duration

	LogLevel  string
	LogFormat string // "console" or "json"

	CORSOrigins []string
}

func FromEnv() Config {
	return Config{
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		UploadDir:    envOr("UPLOAD_DIR", "uploads"),
		ImageBaseURL: envOr("IMAGE_BASE_URL", "https://drive.google.com/uc?export=view&id="),

		AdminUsers: csvOr("ADMIN_USERS", "admin"),

		DriveEnabled:     envBool("GDRIVE_ENABLED", true),
		DriveTokenPath:   envOr("GDRIVE_TOKEN_PATH", "environment/token.json"),
		DriveCredsPath:   envOr("GDRIVE_CREDENTIALS_PATH", "credentials.json"),
		DriveFolderID:    os.Getenv("GDRIVE_FOLDER_ID"),
		DriveImpersonate: os.Getenv("GDRIVE_IMPERSONATE_USER"),

		QueueCapacity: envInt("UPLOAD_QUEUE_CAPACITY", 64),
		ShutdownGrace: envDuration("SHUTDOWN_GRACE", 30*time.Second),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "console"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func (c Config) IsAdmin(userID string) bool {
	for _, u := range c.AdminUsers {
		if u == userID {
			return true
		}
	}
	return false
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
