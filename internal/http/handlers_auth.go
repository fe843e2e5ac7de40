package http

import (
	"net/http"

	"babysteps/internal/core"
	"babysteps/internal/log"
)

type loginPage struct {
	basePage
	Email  string
	Notice string
	Error  string
}

// handleLogin authenticates and routes by questionnaire status: users with
// a finance response land on the dashboard, first-timers on the
// questionnaire.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	if r.Method == http.MethodGet {
		if pc.Authenticated() {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		page := loginPage{basePage: s.base("Sign in", pc)}
		if r.URL.Query().Get("registered") != "" {
			page.Notice = "Account created. Sign in to get started."
		}
		s.render(w, r, "login.html", page)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.render(w, r, "login.html", loginPage{
			basePage: s.base("Sign in", pc),
			Error:    "Invalid form submission",
		})
		return
	}

	email := formValue(r, "email")
	password := r.FormValue("password")

	_, hasResponse, err := s.services.Auth.Login(r.Context(), pc.SID, email, password)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Login failed", log.FieldError, err.Error())
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, r, "login.html", loginPage{
			basePage: s.base("Sign in", pc),
			Email:    email,
			Error:    backendMessage(err, "Could not sign in. Please try again."),
		})
		return
	}

	if hasResponse {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/questionnaire", http.StatusSeeOther)
}

type registerPage struct {
	basePage
	Form  core.Registration
	Error string
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	if r.Method == http.MethodGet {
		s.render(w, r, "register.html", registerPage{basePage: s.base("Create account", pc)})
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.render(w, r, "register.html", registerPage{
			basePage: s.base("Create account", pc),
			Error:    "Invalid form submission",
		})
		return
	}

	reg := core.Registration{
		Username:         formValue(r, "username"),
		Email:            formValue(r, "email"),
		Password:         r.FormValue("password"),
		FirstName:        formValue(r, "first_name"),
		LastName:         formValue(r, "last_name"),
		City:             formValue(r, "city"),
		ProvinceState:    formValue(r, "province_state"),
		Country:          core.Country(formValue(r, "country")),
		PostalCode:       formValue(r, "postal_code"),
		PhoneNumber:      formValue(r, "phone_number"),
		BudgetPreference: core.BudgetPreference(formValue(r, "budget_preference")),
	}
	if reg.BudgetPreference == "" {
		reg.BudgetPreference = core.Monthly
	}
	if raw := formValue(r, "salary"); raw != "" {
		if salary, err := core.ParseDecimal(raw); err == nil {
			reg.Salary = salary
		}
	}
	if raw := formValue(r, "total_balance"); raw != "" {
		if balance, err := core.ParseDecimal(raw); err == nil {
			reg.TotalBalance = balance
		}
	}

	if _, err := s.services.Auth.Register(r.Context(), reg); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		reg.Password = ""
		s.render(w, r, "register.html", registerPage{
			basePage: s.base("Create account", pc),
			Form:     reg,
			Error:    backendMessage(err, err.Error()),
		})
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := s.services.Auth.Logout(r.Context(), pc.SID); err != nil {
		s.logger.ErrorContext(r.Context(), "Logout failed",
			log.FieldSessionID, pc.SID, log.FieldError, err.Error())
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
