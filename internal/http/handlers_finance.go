package http

import (
	"net/http"
	"strconv"

	"babysteps/internal/core"
	"babysteps/internal/log"
	"babysteps/internal/questionnaire"
)

type questionnairePage struct {
	basePage
	Form      questionnaire.Form
	Errors    questionnaire.Errors
	LoadError string
	SaveError string
}

// ChildRows pads the posted child rows to five, so the no-script form
// always shows enough rows to fill in.
func (p questionnairePage) ChildRows() []questionnaire.ChildForm {
	const rows = 5
	out := make([]questionnaire.ChildForm, rows)
	copy(out, p.Form.Children)
	return out
}

// handleQuestionnaire shows the Baby Steps form prefilled from the saved
// response (GET) and validates-then-upserts it (POST). A successful save
// arms the congratulations latch and lands on the milestones page.
func (s *Server) handleQuestionnaire(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	switch r.Method {
	case http.MethodGet:
		s.renderQuestionnaire(w, r, pc)
	case http.MethodPost:
		s.saveQuestionnaire(w, r, pc)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderQuestionnaire(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	user, _ := pc.User()
	ctx := authedCtx(r, pc)

	page := questionnairePage{basePage: s.base("Your Baby Steps", pc)}

	resp, found, err := s.services.Finance.Load(ctx, user.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Finance response load failed",
			log.FieldUserID, user.UserID, log.FieldError, err.Error())
		page.LoadError = "Could not load your saved answers"
		s.render(w, r, "questionnaire.html", page)
		return
	}
	if found {
		var children []core.ChildContribution
		if resp.HasChildren {
			if children, err = s.services.Finance.LoadChildren(ctx, user.UserID); err != nil {
				s.logger.WarnContext(r.Context(), "Children load failed",
					log.FieldUserID, user.UserID, log.FieldError, err.Error())
			}
		}
		page.Form = prefillForm(resp, children)
		pc.Containers.Finance.Set(resp)
	}

	s.render(w, r, "questionnaire.html", page)
}

func (s *Server) saveQuestionnaire(w http.ResponseWriter, r *http.Request, pc *pageContext) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "questionnaire.html", questionnairePage{
			basePage:  s.base("Your Baby Steps", pc),
			SaveError: "Invalid form submission",
		})
		return
	}

	user, _ := pc.User()
	form := questionnaire.FromValues(r.PostForm)

	result, errs := form.Validate(user.UserID, user.Salary)
	if len(errs) > 0 {
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "questionnaire.html", questionnairePage{
			basePage: s.base("Your Baby Steps", pc),
			Form:     form,
			Errors:   errs,
		})
		return
	}

	ctx := authedCtx(r, pc)
	saved, err := s.services.Finance.Save(ctx, user.UserID, result.Response, result.Children)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Finance save failed",
			log.FieldUserID, user.UserID, log.FieldError, err.Error())
		s.render(w, r, "questionnaire.html", questionnairePage{
			basePage:  s.base("Your Baby Steps", pc),
			Form:      form,
			SaveError: backendMessage(err, "Could not save your answers"),
		})
		return
	}

	pc.Containers.Finance.Set(saved)
	pc.Containers.MarkSaved()
	if err := s.sessions.SetCompletedBabySteps(r.Context(), pc.SID, true); err != nil {
		s.logger.WarnContext(r.Context(), "Session flag update failed",
			log.FieldSessionID, pc.SID, log.FieldError, err.Error())
	}

	http.Redirect(w, r, "/milestones", http.StatusSeeOther)
}

// prefillForm turns a stored response back into form inputs.
func prefillForm(resp core.FinanceResponse, children []core.ChildContribution) questionnaire.Form {
	f := questionnaire.Form{
		SalaryConfirmed:     resp.SalaryConfirmed,
		EmergencySavings:    resp.EmergencySavings,
		HasDebt:             resp.HasDebt,
		FullEmergencyFund:   resp.FullEmergencyFund,
		RetirementInvesting: resp.RetirementInvesting,
		HasChildren:         resp.HasChildren,
		BoughtHome:          resp.BoughtHome,
		PayOffHome:          resp.PayOffHome,
	}

	if resp.EmergencySavingsAmount.Valid {
		f.EmergencySavingsAmount = resp.EmergencySavingsAmount.String()
	}
	if resp.DebtAmount.Valid {
		f.DebtAmount = resp.DebtAmount.String()
	}
	if resp.FullEmergencyFundAmount.Valid {
		f.FullEmergencyFundAmount = resp.FullEmergencyFundAmount.String()
	}
	if resp.RetirementSavingsAmount.Valid {
		f.RetirementSavingsAmount = resp.RetirementSavingsAmount.String()
	}
	if resp.MortgageRemaining.Valid {
		f.MortgageRemaining = resp.MortgageRemaining.String()
	}
	if resp.ChildrenCount != nil {
		f.ChildrenCount = strconv.Itoa(*resp.ChildrenCount)
	}

	for _, c := range children {
		row := questionnaire.ChildForm{
			ChildName:            c.ChildName,
			ParentName:           c.ParentName,
			ContributedAsPlanned: c.ContributedAsPlanned,
		}
		if c.ChildID != 0 {
			row.ChildID = strconv.FormatInt(c.ChildID, 10)
		}
		if c.TotalContributionPlanned.Valid {
			row.TotalContributionPlanned = c.TotalContributionPlanned.String()
		}
		if c.MonthlyContribution.Valid {
			row.MonthlyContribution = c.MonthlyContribution.String()
		}
		f.Children = append(f.Children, row)
	}

	return f
}
