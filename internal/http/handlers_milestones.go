package http

import (
	"net/http"

	"babysteps/internal/core"
	"babysteps/internal/log"
	"babysteps/internal/milestones"
	"babysteps/internal/services"
)

type milestonesPage struct {
	basePage
	Overview  services.Overview
	Titles    [milestones.StepCount]string
	LoadError string
}

// handleMilestones renders the step list with completion recomputed from
// the questionnaire. The congratulations banner only fires on the
// save-then-view path, once per session.
func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user, _ := pc.User()

	page := milestonesPage{
		basePage: s.base("Seven Baby Steps", pc),
		Titles:   milestones.Titles,
	}

	armed := pc.Containers.CongratsArmed()

	overview, err := s.services.Milestone.View(authedCtx(r, pc), user.UserID, user.Salary, armed)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Milestones load failed",
			log.FieldUserID, user.UserID, log.FieldError, err.Error())
		page.LoadError = "Could not load milestones"
		page.Overview.Catalog = cappedCatalog(s.cachedCatalog())
		s.render(w, r, "milestones.html", page)
		return
	}

	if overview.Congrats {
		pc.Containers.LatchCongrats()
	}

	s.catalogCache.Set("catalog", overview.Catalog)
	page.Overview = overview
	page.Overview.Catalog = cappedCatalog(overview.Catalog)
	s.render(w, r, "milestones.html", page)
}

// cappedCatalog bounds the displayed catalog to the steps the evaluation
// scores. The backend may carry an extra row beyond them; the template
// indexes the fixed-size step vector by catalog position.
func cappedCatalog(catalog []core.Milestone) []core.Milestone {
	if len(catalog) > milestones.StepCount {
		return catalog[:milestones.StepCount]
	}
	return catalog
}

// cachedCatalog serves the last known milestone catalog when the backend
// is down, so the page can still show the step list.
func (s *Server) cachedCatalog() []core.Milestone {
	if catalog, ok := s.catalogCache.Get("catalog"); ok {
		return catalog
	}
	return nil
}
