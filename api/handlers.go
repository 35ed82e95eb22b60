/*
handlers.go - HTTP handlers for the interactive command surface

PURPOSE:
  Exposes the reporting engine over HTTP for dashboards and manual
  checks, parallel to the chat commands. All endpoints are read-only;
  the ledger is written only through the answer stream.

ENDPOINTS:
  GET /api/reports/weekly          Weekly summary for the current week
  GET /api/reports/history?days=n  N-day history grid
  GET /api/reports/rates?days=n    N-day attendance rates
  GET /api/reports/missing         Who hasn't answered today
  GET /api/health                  Liveness

ERROR HANDLING:
  A bad "days" argument degrades to the documented default and clamp
  rather than failing. Storage failures return 500 with a JSON error.

SEE ALSO:
  - dto.go: Response types
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/weekiatscis/GymBot/attendance"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store attendance.Store
	Loc   *time.Location
	Log   *zap.Logger

	now func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(store attendance.Store, loc *time.Location, log *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Loc:   loc,
		Log:   log,
		now:   time.Now,
	}
}

func (h *Handler) today() attendance.CivilDate {
	return attendance.DateOf(h.now(), h.Loc)
}

// GetWeekly returns the weekly summary for the week containing today.
// GET /api/reports/weekly
func (h *Handler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	text, err := attendance.WeeklySummary(r.Context(), h.Store, today)
	if err != nil {
		h.reportError(w, "weekly summary", err)
		return
	}
	writeJSON(w, http.StatusOK, ReportDTO{GeneratedAt: today.String(), Text: text})
}

// GetHistory returns the N-day history grid.
// GET /api/reports/history?days=n
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	days := attendance.ParseDays(r.URL.Query().Get("days"))
	text, err := attendance.HistoryGrid(r.Context(), h.Store, today, days)
	if err != nil {
		h.reportError(w, "history grid", err)
		return
	}
	writeJSON(w, http.StatusOK, ReportDTO{GeneratedAt: today.String(), Days: days, Text: text})
}

// GetRates returns the N-day attendance rates.
// GET /api/reports/rates?days=n
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	days := attendance.ParseDays(r.URL.Query().Get("days"))
	text, err := attendance.AttendanceRates(r.Context(), h.Store, today, days)
	if err != nil {
		h.reportError(w, "attendance rates", err)
		return
	}
	writeJSON(w, http.StatusOK, ReportDTO{GeneratedAt: today.String(), Days: days, Text: text})
}

// GetMissing returns the known users who have not answered today.
// GET /api/reports/missing
func (h *Handler) GetMissing(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	missing, err := attendance.MissingToday(r.Context(), h.Store, today)
	if err != nil {
		h.reportError(w, "missing today", err)
		return
	}
	if missing == nil {
		missing = []string{}
	}
	writeJSON(w, http.StatusOK, MissingDTO{
		Date:    today.String(),
		Missing: missing,
		Message: attendance.NudgeMessage(missing),
	})
}

// Health is a liveness probe.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) reportError(w http.ResponseWriter, op string, err error) {
	h.Log.Error("report failed", zap.String("report", op), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "failed to build "+op, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
