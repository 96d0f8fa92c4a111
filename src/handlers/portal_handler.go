package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/username/twgreports/backend/src/config"
	"github.com/username/twgreports/backend/src/database"
	"github.com/username/twgreports/backend/src/logger"
	"github.com/username/twgreports/backend/src/model"
	"github.com/username/twgreports/backend/src/security"
	"github.com/username/twgreports/backend/src/services"
	"github.com/username/twgreports/backend/src/utils"
)

// reportNames lists the reports a logged-in portal user can open. There is a
// single report today; the list shape leaves room for more.
var reportNames = []string{"Accessory Dashboard"}

// PortalHandler serves the launch portal: login against the user directory,
// session management and minting handoff tokens for the dashboard.
type PortalHandler struct {
	directory   services.DirectoryService
	authService *security.AuthService
	handoff     *security.HandoffService
}

func NewPortalHandler(directory services.DirectoryService, authService *security.AuthService, handoff *security.HandoffService) *PortalHandler {
	return &PortalHandler{
		directory:   directory,
		authService: authService,
		handoff:     handoff,
	}
}

// HandleListUsers returns every username in the directory, in directory order,
// for the login dropdown.
func (h *PortalHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	usernames, err := h.directory.Usernames()
	if err != nil {
		logger.L.Error("Failed to load user directory", "error", err)
		utils.SendJSONError(w, "Failed to load user list", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]interface{}{
		"usernames": usernames,
	})
}

// HandleLogin authenticates a username/access-code pair against the directory
// and opens a portal session.
func (h *PortalHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Code     string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.SendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if creds.Username == "" || creds.Code == "" {
		utils.SendJSONError(w, "Username and code are required", http.StatusBadRequest)
		return
	}

	if err := h.directory.Authenticate(creds.Username, creds.Code); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.SendJSONError(w, "Invalid username or code", http.StatusUnauthorized)
			return
		}
		logger.L.Error("Directory lookup failed during login", "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	accessToken, err := h.authService.GenerateToken(creds.Username)
	if err != nil {
		logger.L.Error("Failed to generate access token", "username", creds.Username, "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		logger.L.Error("Failed to generate refresh token", "username", creds.Username, "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	session := &model.Session{
		Username:     creds.Username,
		Token:        accessToken,
		RefreshToken: refreshToken,
		UserAgent:    r.UserAgent(),
		ClientIP:     r.RemoteAddr,
		ExpiresAt:    time.Now().Add(config.Cfg.RefreshTokenExpiry),
	}
	if err := model.CreateSession(database.DB, session); err != nil {
		logger.L.Error("Failed to persist session", "username", creds.Username, "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Portal login", "username", creds.Username)
	utils.SendJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          map[string]string{"username": creds.Username},
		"reports":       reportNames,
	})
}

// HandleOpenReport mints a handoff token for the acting user and returns the
// dashboard URL carrying it. The dashboard re-verifies the token on its own.
func (h *PortalHandler) HandleOpenReport(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Could not identify user from token", http.StatusInternalServerError)
		return
	}

	var req struct {
		Report string `json:"report"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if !knownReport(req.Report) {
		utils.SendJSONError(w, "Unknown report", http.StatusNotFound)
		return
	}

	token := h.handoff.Issue(username)
	reportURL := config.Cfg.ReportBaseURL + "?token=" + url.QueryEscape(token)

	logger.L.Info("Report handoff issued", "username", username, "report", req.Report)
	utils.SendJSON(w, http.StatusOK, map[string]string{
		"url": reportURL,
	})
}

func knownReport(name string) bool {
	for _, n := range reportNames {
		if n == name {
			return true
		}
	}
	return false
}

// HandleRefresh rotates the token pair for a session found by refresh token.
func (h *PortalHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		utils.SendJSONError(w, "Refresh token is required", http.StatusBadRequest)
		return
	}

	session, err := model.GetSessionByRefreshToken(database.DB, req.RefreshToken)
	if err != nil {
		logger.L.Warn("Refresh with invalid token", "error", err)
		utils.SendJSONError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.authService.GenerateToken(session.Username)
	if err != nil {
		logger.L.Error("Failed to generate access token on refresh", "username", session.Username, "error", err)
		utils.SendJSONError(w, "Token refresh failed", http.StatusInternalServerError)
		return
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		logger.L.Error("Failed to generate refresh token on refresh", "username", session.Username, "error", err)
		utils.SendJSONError(w, "Token refresh failed", http.StatusInternalServerError)
		return
	}

	// Old session is replaced, not kept alongside the new one.
	if err := model.DeleteSessionByToken(database.DB, session.Token); err != nil {
		logger.L.Warn("Failed to delete old session on refresh", "username", session.Username, "error", err)
	}

	newSession := &model.Session{
		Username:     session.Username,
		Token:        accessToken,
		RefreshToken: refreshToken,
		UserAgent:    r.UserAgent(),
		ClientIP:     r.RemoteAddr,
		ExpiresAt:    time.Now().Add(config.Cfg.RefreshTokenExpiry),
	}
	if err := model.CreateSession(database.DB, newSession); err != nil {
		logger.L.Error("Failed to persist refreshed session", "username", session.Username, "error", err)
		utils.SendJSONError(w, "Token refresh failed", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// HandleLogout tears down the portal session behind the presented access token.
func (h *PortalHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if tokenString == "" {
		utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
		return
	}

	if err := model.DeleteSessionByToken(database.DB, tokenString); err != nil {
		logger.L.Error("Failed to delete session on logout", "error", err)
		utils.SendJSONError(w, "Logout failed", http.StatusInternalServerError)
		return
	}

	if username, ok := GetUsernameFromContext(r.Context()); ok {
		logger.L.Info("Portal logout", "username", username)
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}
