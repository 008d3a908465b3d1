package config

import (
	"os"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	BlobBasePath string // fs root for archived uploads

	AdminUser     string
	AdminPassHash string // bcrypt

	EnableGuestAuth bool

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	// Default classes seeded once at startup (quiz authoring groups).
	SeedClasses []string

	// Question generation via an external generative-text service.
	// Empty AIBaseURL selects the heuristic-only generator.
	AIBaseURL string
	AIAPIKey  string
	AIModel   string
	AITimeout time.Duration

	MaxUploadBytes int64
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           addr,
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		BlobBasePath:       envOr("BLOB_BASE_PATH", "./data"),
		AdminUser:          envOr("ADMIN_USER", "admin"),
		AdminPassHash:      os.Getenv("ADMIN_PASS_HASH"),
		EnableGuestAuth:    envBool("ENABLE_GUEST_AUTH", mode == ModeOffline),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://classroomconnect.app"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),
		SeedClasses:        csvOr("SEED_CLASSES", "Mathematics,Science,History,English,Computer Science"),
		AIBaseURL:          os.Getenv("AI_BASE_URL"),
		AIAPIKey:           os.Getenv("AI_API_KEY"),
		AIModel:            envOr("AI_MODEL", "gpt-4o-mini"),
		AITimeout:          envDuration("AI_TIMEOUT", 30*time.Second),
		MaxUploadBytes:     envInt64("MAX_UPLOAD_BYTES", 16<<20),
	}
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

func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func envInt64(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var n int64
	for _, r := range v {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int64(r-'0')
	}
	if n == 0 {
		return def
	}
	return n
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
