package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/username/twgreports/backend/src/logger"
	"github.com/username/twgreports/backend/src/processors"
	"github.com/username/twgreports/backend/src/security"
	"github.com/username/twgreports/backend/src/services"
	"github.com/username/twgreports/backend/src/utils"
)

// Page names accepted by the view endpoint. The home page is the leaderboard.
const (
	pageHome     = "Home Page"
	pageSummary  = "Summary"
	pageDetailed = "Detailed"
)

const filterDateLayout = "2006-01-02"

// allFilterValue is the dropdown sentinel meaning "filter disabled".
const allFilterValue = "All"

// DashboardHandler serves the report views. Every route sits behind
// TokenMiddleware, so the acting username is always in the context.
type DashboardHandler struct {
	reportService services.ReportService
	handoff       *security.HandoffService
}

func NewDashboardHandler(reportService services.ReportService, handoff *security.HandoffService) *DashboardHandler {
	return &DashboardHandler{
		reportService: reportService,
		handoff:       handoff,
	}
}

// parseFilters builds the filter set from query parameters. A missing
// parameter and the "All" sentinel both leave that filter disabled.
func parseFilters(r *http.Request) (processors.Filters, error) {
	q := r.URL.Query()

	f := processors.Filters{
		Fullname: categoricalParam(q.Get("fullname")),
		AddUser:  categoricalParam(q.Get("adduser")),
		Company:  categoricalParam(q.Get("company")),
	}

	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse(filterDateLayout, raw)
		if err != nil {
			return f, fmt.Errorf("invalid start_date %q, expected YYYY-MM-DD", raw)
		}
		f.Start = &t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse(filterDateLayout, raw)
		if err != nil {
			return f, fmt.Errorf("invalid end_date %q, expected YYYY-MM-DD", raw)
		}
		f.End = &t
	}
	return f, nil
}

func categoricalParam(value string) string {
	if value == allFilterValue {
		return ""
	}
	return value
}

// HandleView is the page dispatcher: it renders whichever of the three pages
// the client asked for, defaulting to the home page.
func (h *DashboardHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}

	page := r.URL.Query().Get("page")
	if page == "" {
		page = pageHome
	}

	switch page {
	case pageHome:
		result, err := h.reportService.Leaderboard(username, time.Now())
		if err != nil {
			logger.L.Error("Failed to build leaderboard view", "username", username, "error", err)
			utils.SendJSONError(w, "Failed to load report data", http.StatusInternalServerError)
			return
		}
		utils.SendJSON(w, http.StatusOK, map[string]interface{}{
			"page":        page,
			"leaderboard": result,
		})

	case pageSummary:
		f, err := parseFilters(r)
		if err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, err := h.reportService.Summary(username, f, time.Now())
		if err != nil {
			logger.L.Error("Failed to build summary view", "username", username, "error", err)
			utils.SendJSONError(w, "Failed to load report data", http.StatusInternalServerError)
			return
		}
		utils.SendJSON(w, http.StatusOK, map[string]interface{}{
			"page":    page,
			"summary": result,
		})

	case pageDetailed:
		f, err := parseFilters(r)
		if err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, err := h.reportService.Detail(username, f, time.Now())
		if err != nil {
			logger.L.Error("Failed to build detail view", "username", username, "error", err)
			utils.SendJSONError(w, "Failed to load report data", http.StatusInternalServerError)
			return
		}
		utils.SendJSON(w, http.StatusOK, map[string]interface{}{
			"page":   page,
			"detail": result,
		})

	default:
		utils.SendJSONError(w, fmt.Sprintf("Unknown page %q", page), http.StatusBadRequest)
	}
}

// HandleLeaderboard serves the current month's top performers.
func (h *DashboardHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}

	result, err := h.reportService.Leaderboard(username, time.Now())
	if err != nil {
		logger.L.Error("Failed to build leaderboard", "username", username, "error", err)
		utils.SendJSONError(w, "Failed to load report data", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, result)
}

// HandleSummary serves the aggregate totals and bonus for the filtered rows.
func (h *DashboardHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}

	f, err := parseFilters(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.reportService.Summary(username, f, time.Now())
	if err != nil {
		logger.L.Error("Failed to build summary", "username", username, "error", err)
		utils.SendJSONError(w, "Failed to load report data", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, result)
}

// HandleDetail serves the row-level transaction view.
func (h *DashboardHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}

	f, err := parseFilters(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.reportService.Detail(username, f, time.Now())
	if err != nil {
		logger.L.Error("Failed to build detail", "username", username, "error", err)
		utils.SendJSONError(w, "Failed to load report data", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, result)
}

// HandleExport streams the grouped bonus table as an xlsx download.
func (h *DashboardHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}

	f, err := parseFilters(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := h.reportService.Export(username, f, time.Now())
	if err != nil {
		logger.L.Error("Failed to build export workbook", "username", username, "error", err)
		utils.SendJSONError(w, "Failed to generate export", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("accessory_bonus_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.L.Warn("Failed to write export response", "username", username, "error", err)
	}
}

// HandleRefreshData drops every cached parse so the next view re-reads the
// source files immediately instead of waiting out the cache TTL.
func (h *DashboardHandler) HandleRefreshData(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}

	h.reportService.InvalidateCache()
	logger.L.Info("Report data refresh requested", "username", username)
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "Report data refreshed"})
}

// HandleFilterOptions serves the dropdown values and observed date range for
// the current filter state, so dropdowns cascade.
func (h *DashboardHandler) HandleFilterOptions(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
		return
	}

	f, err := parseFilters(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.reportService.FilterOptions(username, f)
	if err != nil {
		logger.L.Error("Failed to build filter options", "username", username, "error", err)
		utils.SendJSONError(w, "Failed to load report data", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, result)
}
