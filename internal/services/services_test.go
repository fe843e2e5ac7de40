package services

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"babysteps/internal/api"
	"babysteps/internal/api/memory"
	"babysteps/internal/cache"
	"babysteps/internal/core"
	"babysteps/internal/log"
	"babysteps/internal/session"
	"babysteps/internal/state"
)

type fixture struct {
	store    *memory.Store
	sessions *session.Store
	states   *state.Registry
	user     core.Profile
	sid      string

	auth      *AuthService
	finance   *FinanceService
	milestone *MilestoneService
	expense   *ExpenseService
	dashboard *DashboardService
	profile   *ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	user := store.Seed(core.Registration{
		Username:         "tester",
		Email:            "tester@example.com",
		Password:         "secret-pass",
		Country:          core.Canada,
		PostalCode:       "K1A 0B1",
		Salary:           core.NewDecimal(400000),
		BudgetPreference: core.Monthly,
	})

	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	sess, err := sessions.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	states := state.NewRegistry(time.Hour, time.Hour)
	t.Cleanup(states.Stop)

	logger := log.New(log.Config{Output: io.Discard})
	categories := cache.NewLRUCache[[]core.Category](8, time.Minute)

	finance := NewFinanceService(store, logger)
	milestone := NewMilestoneService(store, finance, logger)

	return &fixture{
		store:     store,
		sessions:  sessions,
		states:    states,
		user:      user,
		sid:       sess.SID,
		auth:      NewAuthService(store, sessions, states, logger),
		finance:   finance,
		milestone: milestone,
		expense:   NewExpenseService(store, categories, logger),
		dashboard: NewDashboardService(store, milestone, logger),
		profile:   NewProfileService(store, logger),
	}
}

func (f *fixture) authedCtx() context.Context {
	return api.WithToken(context.Background(), "mem-access-1")
}

func allCompleteResponse(userID int64) core.FinanceResponse {
	return core.FinanceResponse{
		UserID:                  userID,
		SalaryConfirmed:         true,
		EmergencySavings:        true,
		EmergencySavingsAmount:  core.NewDecimal(100000),
		HasDebt:                 false,
		FullEmergencyFund:       true,
		FullEmergencyFundAmount: core.NewDecimal(200000),
		RetirementInvesting:     true,
		RetirementSavingsAmount: core.NewDecimal(5000),
		HasChildren:             false,
		BoughtHome:              true,
		PayOffHome:              true,
		MortgageRemaining:       core.NewDecimal(0),
	}
}

func TestLoginRoutesByResponse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, hasResponse, err := f.auth.Login(ctx, f.sid, "tester@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if hasResponse {
		t.Error("Login() hasResponse = true before any questionnaire save")
	}

	if _, err := f.finance.Save(f.authedCtx(), f.user.UserID, allCompleteResponse(f.user.UserID), nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, hasResponse, err = f.auth.Login(ctx, f.sid, "tester@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !hasResponse {
		t.Error("Login() hasResponse = false after questionnaire save")
	}
}

func TestLoginPersistsSessionAndState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, _, err := f.auth.Login(ctx, f.sid, "tester@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	sess, err := f.sessions.Get(ctx, f.sid)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sess.UserID != user.UserID {
		t.Errorf("session UserID = %d, want %d", sess.UserID, user.UserID)
	}
	if sess.AccessToken == "" {
		t.Error("session access token empty after login")
	}

	if !f.states.Get(f.sid).Auth.IsAuthenticated() {
		t.Error("state not authenticated after login")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.auth.Login(context.Background(), f.sid, "tester@example.com", "wrong")
	if err == nil {
		t.Fatal("Login() error = nil for bad credentials")
	}
	if !api.IsUnauthorized(err) {
		t.Errorf("Login() error = %v, want unauthorized", err)
	}
}

func TestLogoutDeletesSessionAndState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, _, err := f.auth.Login(ctx, f.sid, "tester@example.com", "secret-pass"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := f.auth.Logout(ctx, f.sid); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if _, err := f.sessions.Get(ctx, f.sid); err != session.ErrNotFound {
		t.Errorf("Get() error = %v, want ErrNotFound after logout", err)
	}
	if f.states.Get(f.sid).Auth.IsAuthenticated() {
		t.Error("state still authenticated after logout")
	}
}

func TestHydrateRestoresAuth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, _, err := f.auth.Login(ctx, f.sid, "tester@example.com", "secret-pass"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// Simulate a restart: in-memory state is gone, the session row survives.
	f.states.Drop(f.sid)

	containers, err := f.auth.Hydrate(ctx, f.sid)
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if !containers.Auth.IsAuthenticated() {
		t.Error("Hydrate() did not restore authenticated state")
	}
	if got, ok := containers.Profile.Get(); !ok || got.UserID != f.user.UserID {
		t.Errorf("Hydrate() profile = %v, %v, want user %d", got, ok, f.user.UserID)
	}
}

func TestFinanceSaveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := f.authedCtx()

	resp := allCompleteResponse(f.user.UserID)

	first, err := f.finance.Save(ctx, f.user.UserID, resp, nil)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if first.ResponseID == 0 {
		t.Fatal("Save() did not assign a response id")
	}

	resp.EmergencySavingsAmount = core.NewDecimal(120000)
	second, err := f.finance.Save(ctx, f.user.UserID, resp, nil)
	if err != nil {
		t.Fatalf("Save() second error = %v", err)
	}
	if second.ResponseID != first.ResponseID {
		t.Errorf("second Save() ResponseID = %d, want %d", second.ResponseID, first.ResponseID)
	}

	all, err := f.store.ListResponses(ctx)
	if err != nil {
		t.Fatalf("ListResponses() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("stored responses = %d, want 1", len(all))
	}
	if got := all[0].EmergencySavingsAmount.Cents; got != 120000 {
		t.Errorf("stored amount = %d, want 120000", got)
	}
}

func TestFinanceSaveAssignsChildIDs(t *testing.T) {
	f := newFixture(t)
	ctx := f.authedCtx()

	resp := allCompleteResponse(f.user.UserID)
	resp.HasChildren = true
	two := 2
	resp.ChildrenCount = &two

	children := []core.ChildContribution{
		{ChildName: "Ada", ParentName: "tester", TotalContributionPlanned: core.NewDecimal(50000), MonthlyContribution: core.NewDecimal(1000)},
		{ChildName: "Ben", ParentName: "tester", TotalContributionPlanned: core.NewDecimal(60000), MonthlyContribution: core.NewDecimal(1200)},
	}

	if _, err := f.finance.Save(ctx, f.user.UserID, resp, children); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if children[0].ChildID == 0 || children[1].ChildID == 0 {
		t.Fatalf("child ids not written back: %+v", children)
	}

	// A second save with the assigned ids must patch, not duplicate.
	children[0].TotalContributionPlanned = core.NewDecimal(55000)
	if _, err := f.finance.Save(ctx, f.user.UserID, resp, children); err != nil {
		t.Fatalf("Save() second error = %v", err)
	}

	stored, err := f.finance.LoadChildren(ctx, f.user.UserID)
	if err != nil {
		t.Fatalf("LoadChildren() error = %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored children = %d, want 2", len(stored))
	}
	if got := stored[0].TotalContributionPlanned.Cents; got != 55000 {
		t.Errorf("patched contribution = %d, want 55000", got)
	}
}

func TestMilestoneViewSyncsRecords(t *testing.T) {
	f := newFixture(t)
	ctx := f.authedCtx()

	if _, err := f.finance.Save(ctx, f.user.UserID, allCompleteResponse(f.user.UserID), nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	overview, err := f.milestone.View(ctx, f.user.UserID, f.user.Salary, true)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if !overview.Evaluation.AllComplete() {
		t.Fatalf("Evaluation = %+v, want all complete", overview.Evaluation)
	}
	if !overview.Congrats {
		t.Error("Congrats = false with armed flag and all steps complete")
	}

	records, err := f.store.ListUserMilestones(ctx, f.user.UserID)
	if err != nil {
		t.Fatalf("ListUserMilestones() error = %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("synced records = %d, want 6", len(records))
	}
	for _, rec := range records {
		if !rec.IsCompleted {
			t.Errorf("milestone %d not marked completed", rec.MilestoneID)
		}
		if rec.CompletedAt == nil {
			t.Errorf("milestone %d missing completion time", rec.MilestoneID)
		}
	}
}

func TestMilestoneViewNoCongratsWhenIncomplete(t *testing.T) {
	f := newFixture(t)
	ctx := f.authedCtx()

	resp := allCompleteResponse(f.user.UserID)
	resp.PayOffHome = false
	if _, err := f.finance.Save(ctx, f.user.UserID, resp, nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	overview, err := f.milestone.View(ctx, f.user.UserID, f.user.Salary, true)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if overview.Congrats {
		t.Error("Congrats = true with an incomplete step")
	}
	if overview.Evaluation.Completed != 5 {
		t.Errorf("Completed = %d, want 5", overview.Evaluation.Completed)
	}
}

func TestExpenseCreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := f.authedCtx()

	categories, err := f.expense.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(categories) == 0 {
		t.Fatal("Categories() returned none")
	}

	e := core.Expense{
		ExpenseDate: core.NewDate(2025, 3, 10),
		UserID:      f.user.UserID,
		CategoryID:  categories[0].CategoryID,
		Amount:      core.NewDecimal(2599),
	}
	if _, err := f.expense.Create(ctx, e); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Same (user, date, category) must be rejected by the backend.
	if _, err := f.expense.Create(ctx, e); err == nil {
		t.Error("Create() duplicate error = nil, want conflict")
	}

	listed, err := f.expense.List(ctx, api.ExpenseFilter{UserID: f.user.UserID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("List() = %d expenses, want 1", len(listed))
	}
}

func TestDashboardLoad(t *testing.T) {
	f := newFixture(t)
	ctx := f.authedCtx()

	if _, err := f.finance.Save(ctx, f.user.UserID, allCompleteResponse(f.user.UserID), nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := f.dashboard.Load(ctx, f.user.UserID, f.user.Salary)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !data.Evaluation.AllComplete() {
		t.Errorf("Evaluation = %+v, want all complete", data.Evaluation)
	}
}

func TestProfileUpdateRefreshesState(t *testing.T) {
	f := newFixture(t)
	ctx := f.authedCtx()

	containers := f.states.Get(f.sid)
	containers.Auth.SetAuthenticated("mem-access-1", f.user)

	city := "Ottawa"
	updated, err := f.profile.Update(ctx, containers, f.user.UserID, api.UserPatch{City: &city})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.City != "Ottawa" {
		t.Errorf("Update() City = %q, want Ottawa", updated.City)
	}

	cached, ok := containers.Profile.Get()
	if !ok || cached.City != "Ottawa" {
		t.Errorf("cached profile City = %q, %v, want Ottawa", cached.City, ok)
	}
}

func TestProfileUpdateRejectsBadPostalCode(t *testing.T) {
	f := newFixture(t)

	containers := f.states.Get(f.sid)
	country := core.US
	code := "ABC"
	_, err := f.profile.Update(f.authedCtx(), containers, f.user.UserID, api.UserPatch{Country: &country, PostalCode: &code})
	if err == nil {
		t.Fatal("Update() error = nil for invalid postal code")
	}
}
