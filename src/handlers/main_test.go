package handlers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/username/twgreports/backend/src/config"
	"github.com/username/twgreports/backend/src/database"
	"github.com/username/twgreports/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")

	config.Cfg = &config.AppConfig{
		Port:               "8080",
		LogLevel:           "error",
		AdminUser:          "Admin",
		HandoffSecret:      "unit-test-shared-secret-at-least-32-bytes!",
		HandoffTokenTTL:    600 * time.Second,
		JWTSecret:          "unit-test-portal-jwt-secret-32-bytes!!!!",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 168 * time.Hour,
		CSRFAuthKey:        []byte("a-very-secure-32-byte-long-key-must-be-32-bytes!"),
		ReportBaseURL:      "http://localhost:3000/dashboard",
	}

	dir, err := os.MkdirTemp("", "handlers-test-*")
	if err != nil {
		panic(err)
	}
	database.InitDB(filepath.Join(dir, "sessions.db"))

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}
