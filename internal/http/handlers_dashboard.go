package http

import (
	"net/http"

	"babysteps/internal/core"
	"babysteps/internal/log"
	"babysteps/internal/milestones"
	"babysteps/internal/services"
)

type dashboardPage struct {
	basePage
	Data       services.DashboardData
	StepTitles [milestones.StepCount]string
	LoadError  string
}

// handleDashboard renders the aggregated dashboard. A backend failure
// renders the page shell with an inline error instead of a blank 500.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user, _ := pc.User()

	page := dashboardPage{
		basePage:   s.base("Dashboard", pc),
		StepTitles: milestones.Titles,
	}

	data, err := s.services.Dashboard.Load(authedCtx(r, pc), user.UserID, user.Salary)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard load failed",
			log.FieldUserID, user.UserID, log.FieldError, err.Error())
		page.LoadError = "Could not load dashboard data"
		s.render(w, r, "dashboard.html", page)
		return
	}

	page.Data = data
	s.render(w, r, "dashboard.html", page)
}

// AlertClass maps the monthly summary's alert level to a CSS class.
func alertClass(summary core.MonthlySummary) string {
	switch {
	case summary.AlertLevel >= 2:
		return "alert-danger"
	case summary.AlertLevel == 1:
		return "alert-warning"
	default:
		return "alert-ok"
	}
}
