package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cafeteria/backend/internal/domain"
)

var errInvalidDate = errors.New("fecha inválida, use el formato AAAA-MM-DD")

// parseDate reads a YYYY-MM-DD business date in the engine's timezone.
func (a *API) parseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(domain.DateLayout, raw, a.reports.Location())
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return t, nil
}

// dateParam falls back to today when fecha is absent.
func (a *API) dateParam(r *http.Request) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("fecha"))
	if raw == "" {
		return a.reports.Today(), nil
	}
	return a.parseDate(raw)
}

func intParam(r *http.Request, names []string, min, max int) (int, error) {
	for _, name := range names {
		raw := strings.TrimSpace(r.URL.Query().Get(name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < min || v > max {
			return 0, fmt.Errorf("%s debe estar entre %d y %d", names[0], min, max)
		}
		return v, nil
	}
	return 0, nil
}

func (a *API) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	date, err := a.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("formato")))

	report, err := a.reports.DailyProducts(r.Context(), date)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	switch format {
	case "csv":
		body, err := dailyReportToCSV(report)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"reporte-diario-%s.csv\"", report.Date))
		_, _ = w.Write(body)
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(dailyReportToPrintableHTML(report)))
	case "", "json":
		writeJSON(w, http.StatusOK, report)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("formato %q no soportado", format))
	}
}

func (a *API) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := a.reports.Statistics(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleDailySnapshot(w http.ResponseWriter, r *http.Request) {
	date, err := a.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snapshot, err := a.reports.DailySnapshot(r.Context(), date)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := a.reports.Dashboard(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (a *API) handleWeekly(w http.ResponseWriter, r *http.Request) {
	ref, err := a.dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	report, err := a.reports.Weekly(r.Context(), ref)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleMonthly(w http.ResponseWriter, r *http.Request) {
	month, err := intParam(r, []string{"mes"}, 1, 12)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	year, err := intParam(r, []string{"año", "anio"}, 2000, 2100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := a.reports.Monthly(r.Context(), month, year)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handlePredictions(w http.ResponseWriter, r *http.Request) {
	report, err := a.reports.Predictions(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleTrends(w http.ResponseWriter, r *http.Request) {
	report, err := a.reports.Trends(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleComparative(w http.ResponseWriter, r *http.Request) {
	kind := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("tipo")))
	report, err := a.reports.Comparative(r.Context(), kind)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
