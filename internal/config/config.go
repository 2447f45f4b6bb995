package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	GinMode    string
	ListenAddr string

	// Session credential signing
	JWTSecret  string
	JWTExpires string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Frontend base URL used for post-login redirects and invitation links
	FrontendURL string

	// Object storage
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
	S3Bucket     string
	S3KeyPrefix  string

	// SMTP
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string

	// External analysis service
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Collaboration-room credential issuer
	RoomAuthURL   string
	RoomSecretKey string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "puzzle"),
		DBPassword: getEnv("DB_PASSWORD", "puzzle"),
		DBName:     getEnv("DB_NAME", "puzzle_board"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		GinMode:    getEnv("GIN_MODE", "debug"),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		JWTSecret:  getEnv("JWT_SECRET", "default-secret-key-change-me"),
		JWTExpires: getEnv("JWT_EXPIRES", "24h"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		AWSRegion:    getEnv("AWS_REGION", "ap-northeast-2"),
		AWSAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AWSSecretKey: getEnv("AWS_SECRET_KEY", ""),
		S3Bucket:     getEnv("AWS_S3_BUCKET", ""),
		S3KeyPrefix:  getEnv("AWS_S3_KEY_PREFIX", "puzzle-board-images"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", ""),
		FromName:     getEnv("FROM_NAME", "Spread Puzzle"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		RoomAuthURL:   getEnv("ROOM_AUTH_URL", "https://api.liveblocks.io/v2/authorize-user"),
		RoomSecretKey: getEnv("ROOM_SECRET_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
