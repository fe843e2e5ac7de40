package http

import (
	"net/http"

	"babysteps/internal/api"
	"babysteps/internal/core"
	"babysteps/internal/log"
)

type profilePage struct {
	basePage
	Profile   core.Profile
	Saved     bool
	FormError string
	LoadError string
}

// handleProfile shows and edits the account record, including the address
// fields and the budget preference that drives the monthly summary.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	switch r.Method {
	case http.MethodGet:
		s.renderProfile(w, r, pc, "", false)
	case http.MethodPost:
		s.updateProfile(w, r, pc)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderProfile(w http.ResponseWriter, r *http.Request, pc *pageContext, formError string, saved bool) {
	user, _ := pc.User()

	page := profilePage{
		basePage:  s.base("Profile", pc),
		Saved:     saved,
		FormError: formError,
	}

	profile, err := s.services.Profile.Get(authedCtx(r, pc), pc.Containers, user.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Profile load failed",
			log.FieldUserID, user.UserID, log.FieldError, err.Error())
		page.LoadError = "Could not load your profile"
		s.render(w, r, "profile.html", page)
		return
	}

	page.Profile = profile
	s.render(w, r, "profile.html", page)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	if err := r.ParseForm(); err != nil {
		s.renderProfile(w, r, pc, "Invalid form submission", false)
		return
	}

	user, _ := pc.User()

	patch := api.UserPatch{}
	setString := func(field **string, key string) {
		v := formValue(r, key)
		*field = &v
	}
	setString(&patch.FirstName, "first_name")
	setString(&patch.LastName, "last_name")
	setString(&patch.City, "city")
	setString(&patch.ProvinceState, "province_state")
	setString(&patch.PhoneNumber, "phone_number")

	if raw := formValue(r, "country"); raw != "" {
		country := core.Country(raw)
		if !country.Valid() {
			s.renderProfile(w, r, pc, "Choose a valid country", false)
			return
		}
		patch.Country = &country
		code := formValue(r, "postal_code")
		patch.PostalCode = &code
	}

	if raw := formValue(r, "budget_preference"); raw != "" {
		pref := core.BudgetPreference(raw)
		patch.BudgetPreference = &pref
	}

	if raw := formValue(r, "salary"); raw != "" {
		salary, err := core.ParseDecimal(raw)
		if err != nil || salary.Cents < 0 {
			s.renderProfile(w, r, pc, "Enter a valid salary", false)
			return
		}
		patch.Salary = &salary
	}

	if raw := formValue(r, "total_balance"); raw != "" {
		balance, err := core.ParseDecimal(raw)
		if err != nil {
			s.renderProfile(w, r, pc, "Enter a valid balance", false)
			return
		}
		patch.TotalBalance = &balance
	}

	emailNotification := r.FormValue("email_notification") != ""
	patch.EmailNotification = &emailNotification

	if _, err := s.services.Profile.Update(authedCtx(r, pc), pc.Containers, user.UserID, patch); err != nil {
		s.logger.WarnContext(r.Context(), "Profile update failed",
			log.FieldUserID, user.UserID, log.FieldError, err.Error())
		s.renderProfile(w, r, pc, backendMessage(err, "Could not save your profile"), false)
		return
	}

	s.renderProfile(w, r, pc, "", true)
}
