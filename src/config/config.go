package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port     string
	LogLevel string

	TransactionsCSVPath string
	UserCodesPath       string
	DatabasePath        string

	AdminUser string

	HandoffSecret   string
	HandoffTokenTTL time.Duration

	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	CSRFAuthKey        []byte

	// Base URL of the dashboard page the portal hands users off to,
	// e.g. https://reports.example.com/accessory-bonus
	ReportBaseURL string

	CacheExpiration      time.Duration
	CacheCleanupInterval time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	handoffSecret := getEnv("HANDOFF_SECRET", "change-me-shared-handoff-secret-minimum-32-bytes")
	if handoffSecret == "change-me-shared-handoff-secret-minimum-32-bytes" {
		log.Println("WARNING: Using default insecure HANDOFF_SECRET. Set HANDOFF_SECRET environment variable for production. The portal and the dashboard must share the same value.")
	}

	jwtSecret := getEnv("JWT_SECRET", "change-me-portal-session-jwt-secret-32-bytes!")
	if jwtSecret == "change-me-portal-session-jwt-secret-32-bytes!" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	csrfAuthKeyStr := getEnv("CSRF_AUTH_KEY", "a-very-secure-32-byte-long-key-must-be-32-bytes!")
	if len(csrfAuthKeyStr) < 32 {
		log.Fatalf("FATAL: CSRF_AUTH_KEY must be at least 32 bytes long. Current length: %d", len(csrfAuthKeyStr))
	}

	Cfg = &AppConfig{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		TransactionsCSVPath: getEnv("TRANSACTIONS_CSV_PATH", "data/Accessory_Contest.csv"),
		UserCodesPath:       getEnv("USER_CODES_PATH", "data/IDM_User_Codes.xlsx"),
		DatabasePath:        getEnv("DATABASE_PATH", "./twgreports.db"),

		AdminUser: getEnv("ADMIN_USER", "Admin"),

		HandoffSecret:   handoffSecret,
		HandoffTokenTTL: getEnvAsDuration("HANDOFF_TOKEN_TTL", 600*time.Second),

		JWTSecret:          jwtSecret,
		AccessTokenExpiry:  getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 60*time.Minute),
		RefreshTokenExpiry: getEnvAsDuration("REFRESH_TOKEN_EXPIRY", 168*time.Hour),
		CSRFAuthKey:        []byte(csrfAuthKeyStr),

		ReportBaseURL: getEnv("REPORT_BASE_URL", "http://localhost:3000/dashboard"),

		CacheExpiration:      getEnvAsDuration("CACHE_EXPIRATION", 15*time.Minute),
		CacheCleanupInterval: getEnvAsDuration("CACHE_CLEANUP_INTERVAL", 30*time.Minute),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, TransactionsCSV=%s, UserCodes=%s, DBPath=%s, AdminUser=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.TransactionsCSVPath, Cfg.UserCodesPath, Cfg.DatabasePath, Cfg.AdminUser)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
