package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/twgreports/backend/src/config"
	"github.com/username/twgreports/backend/src/database"
	"github.com/username/twgreports/backend/src/handlers"
	"github.com/username/twgreports/backend/src/logger"
	"github.com/username/twgreports/backend/src/parsers"
	"github.com/username/twgreports/backend/src/processors"
	"github.com/username/twgreports/backend/src/security"
	"github.com/username/twgreports/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, X-Request-ID")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("TWG Reports backend server starting...")

	if len(config.Cfg.HandoffSecret) < 32 {
		logger.L.Error("HANDOFF_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.CSRFAuthKey) < 32 {
		logger.L.Error("CSRF_AUTH_KEY must be at least 32 bytes long.")
		os.Exit(1)
	}

	// Missing data files are not fatal: the files can land after startup and
	// every request re-checks them.
	if _, err := os.Stat(config.Cfg.TransactionsCSVPath); err != nil {
		logger.L.Warn("Transaction file not readable at startup", "path", config.Cfg.TransactionsCSVPath, "error", err)
	}
	if _, err := os.Stat(config.Cfg.UserCodesPath); err != nil {
		logger.L.Warn("User codes file not readable at startup", "path", config.Cfg.UserCodesPath, "error", err)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(config.Cfg.CacheExpiration, config.Cfg.CacheCleanupInterval)
	logger.L.Info("Report cache initialized.")

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	handoffService := security.NewHandoffService(config.Cfg.HandoffSecret, config.Cfg.HandoffTokenTTL)

	csvParser := parsers.NewCSVTransactionParser()
	bonusProcessor := processors.NewBonusProcessor()
	reportProcessor := processors.NewReportProcessor(bonusProcessor, config.Cfg.AdminUser)

	reportService := services.NewReportService(config.Cfg.TransactionsCSVPath, csvParser, reportProcessor, reportCache)
	directoryService := services.NewDirectoryService(config.Cfg.UserCodesPath, reportCache)

	portalHandler := handlers.NewPortalHandler(directoryService, authService, handoffService)
	dashboardHandler := handlers.NewDashboardHandler(reportService, handoffService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public GET routes (no CSRF needed for these GETs)
	apiRouter.HandleFunc("GET /api/portal/csrf", handlers.GetCSRFToken)
	apiRouter.HandleFunc("GET /api/portal/users", portalHandler.HandleListUsers)

	// Portal actions router - POST routes need CSRF
	portalActionRouter := http.NewServeMux()
	portalActionRouter.HandleFunc("POST /login", portalHandler.HandleLogin)
	portalActionRouter.HandleFunc("POST /refresh", portalHandler.HandleRefresh)
	portalActionRouter.Handle("POST /logout", portalHandler.AuthMiddleware(http.HandlerFunc(portalHandler.HandleLogout)))
	portalActionRouter.Handle("POST /open-report", portalHandler.AuthMiddleware(http.HandlerFunc(portalHandler.HandleOpenReport)))

	// Apply CSRF to the entire portalActionRouter group
	apiRouter.Handle("/api/portal/", http.StripPrefix("/api/portal", handlers.CSRFMiddleware()(portalActionRouter)))

	// Dashboard routes are gated on the handoff token alone.
	withToken := func(handler http.HandlerFunc) http.Handler {
		return dashboardHandler.TokenMiddleware(handler)
	}

	apiRouter.Handle("GET /api/dashboard/view", withToken(dashboardHandler.HandleView))
	apiRouter.Handle("GET /api/dashboard/leaderboard", withToken(dashboardHandler.HandleLeaderboard))
	apiRouter.Handle("GET /api/dashboard/summary", withToken(dashboardHandler.HandleSummary))
	apiRouter.Handle("GET /api/dashboard/detail", withToken(dashboardHandler.HandleDetail))
	apiRouter.Handle("GET /api/dashboard/export", withToken(dashboardHandler.HandleExport))
	apiRouter.Handle("GET /api/dashboard/filters", withToken(dashboardHandler.HandleFilterOptions))
	apiRouter.Handle("POST /api/dashboard/refresh", withToken(dashboardHandler.HandleRefreshData))

	rootMux.Handle("/api/", handlers.RequestIDMiddleware(apiRouter))

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "TWG Reports Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
