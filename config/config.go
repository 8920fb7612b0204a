package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	LogLevel    string
	DBUrl       string
	FrontendURL string
	// Identity provider (Supabase GoTrue)
	SupabaseUrl       string
	SupabaseKey       string
	SupabaseJWTSecret string
	// Google sign-in
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	// AI backend
	AIBackendURL     string
	AIRequestTimeout time.Duration
	// Object storage
	StorageProvider        string // "cloudinary" or "s3"
	CloudinaryUploadURL    string
	CloudinaryUploadPreset string
	S3AccessKeyID          string
	S3SecretAccessKey      string
	S3Region               string
	S3Bucket               string
	S3Endpoint             string // optional, for S3-compatible providers
	S3PublicBaseURL        string
	// Redis/Upstash Configuration
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds  int
	RateLimitLoginThreshold int
	RateLimitAIThreshold    int
	UploadsPerMinute        int
	UploadsPerDay           int
	// Sessions
	SessionCookieName   string
	SessionCookieSecure bool
	SessionIdleTTL      time.Duration
	SessionMaxLive      int
	RunMigrations       bool
}

func LoadConfig() (*Config, error) {
	// Only effective locally; production injects the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "debug"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		// Trailing slash would produce .co//auth
		SupabaseUrl:        strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:        getEnv("SUPABASE_KEY", getEnv("SUPABASE_ANON_KEY", "")),
		SupabaseJWTSecret:  getEnv("SUPABASE_JWT_SECRET", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/callback"),
		AIBackendURL:       strings.TrimRight(getEnv("AI_BACKEND_URL", "http://localhost:5000"), "/"),
		AIRequestTimeout:   getEnvDuration("AI_REQUEST_TIMEOUT", 2*time.Minute),
		// Object storage
		StorageProvider:        strings.ToLower(getEnv("STORAGE_PROVIDER", "cloudinary")),
		CloudinaryUploadURL:    getEnv("CLOUDINARY_UPLOAD_URL", ""),
		CloudinaryUploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", "SkillSprint"),
		S3AccessKeyID:          getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:      getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:               getEnv("S3_REGION", "us-east-1"),
		S3Bucket:               getEnv("S3_BUCKET", ""),
		S3Endpoint:             getEnv("S3_ENDPOINT", ""),
		S3PublicBaseURL:        strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		// Redis/Upstash Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:  getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold: getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitAIThreshold:    getEnvInt("RATE_LIMIT_AI_THRESHOLD", 30),
		UploadsPerMinute:        getEnvInt("UPLOADS_PER_MINUTE", 10),
		UploadsPerDay:           getEnvInt("UPLOADS_PER_DAY", 50),
		// Sessions
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "ss_session"),
		SessionCookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		SessionIdleTTL:      getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute),
		SessionMaxLive:      getEnvInt("SESSION_MAX_LIVE", 10000),
		RunMigrations:       getEnvBool("RUN_MIGRATIONS", true),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Sessions, profile cache and rate limits will be in-memory.")
	}
	if cfg.StorageProvider == "cloudinary" && cfg.CloudinaryUploadURL == "" {
		log.Println("WARNING: CLOUDINARY_UPLOAD_URL not configured. Uploads will fail.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "5m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
