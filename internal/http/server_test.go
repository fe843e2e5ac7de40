package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"babysteps/internal/api/memory"
	"babysteps/internal/cache"
	"babysteps/internal/config"
	"babysteps/internal/core"
	"babysteps/internal/log"
	"babysteps/internal/services"
	"babysteps/internal/session"
	"babysteps/internal/state"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	store := memory.New()
	store.Seed(core.Registration{
		Username:         "tester",
		Email:            "tester@example.com",
		Password:         "secret-pass",
		Salary:           core.NewDecimal(400000),
		BudgetPreference: core.Monthly,
	})

	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	states := state.NewRegistry(time.Hour, time.Hour)

	logger := log.New(log.Config{Output: io.Discard})
	categories := cache.NewLRUCache[[]core.Category](8, time.Minute)

	finance := services.NewFinanceService(store, logger)
	milestone := services.NewMilestoneService(store, finance, logger)

	svcs := Services{
		Auth:      services.NewAuthService(store, sessions, states, logger),
		Profile:   services.NewProfileService(store, logger),
		Finance:   finance,
		Expense:   services.NewExpenseService(store, categories, logger),
		Dashboard: services.NewDashboardService(store, milestone, logger),
		Milestone: milestone,
	}

	cfg := &config.Config{
		Port:            "0",
		CacheSize:       16,
		CacheTTL:        time.Minute,
		LoginRateLimit:  100,
		LoginRateWindow: time.Minute,
	}

	srv, err := NewServer(cfg, svcs, sessions, states, logger)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)
	return ts, store
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New() error = %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func login(t *testing.T, client *http.Client, baseURL string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(baseURL+"/login", url.Values{
		"email":    {"tester@example.com"},
		"password": {"secret-pass"},
	})
	if err != nil {
		t.Fatalf("POST /login error = %v", err)
	}
	resp.Body.Close()
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestRequireAuthRedirectsToLogin(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	for _, path := range []string{"/dashboard", "/expenses", "/questionnaire", "/milestones", "/profile"} {
		resp, err := client.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusSeeOther {
			t.Errorf("GET %s status = %d, want 303", path, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/login" {
			t.Errorf("GET %s redirect = %q, want /login", path, loc)
		}
	}
}

func TestLoginRoutesToQuestionnaireForNewUser(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	resp := login(t, client, ts.URL)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("POST /login status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/questionnaire" {
		t.Errorf("login redirect = %q, want /questionnaire", loc)
	}
}

func TestLoginBadCredentialsShowsBackendMessage(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	resp, err := client.PostForm(ts.URL+"/login", url.Values{
		"email":    {"tester@example.com"},
		"password": {"wrong"},
	})
	if err != nil {
		t.Fatalf("POST /login error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("POST /login status = %d, want 401", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "No active account found with the given credentials") {
		t.Error("login page missing the backend's verbatim error message")
	}
}

func questionnaireValues() url.Values {
	return url.Values{
		"salary_confirmed":           {"on"},
		"emergency_savings":          {"on"},
		"emergency_savings_amount":   {"1000"},
		"full_emergency_fund":        {"on"},
		"full_emergency_fund_amount": {"2000"},
		"retirement_investing":       {"on"},
		"retirement_savings_amount":  {"50"},
		"bought_home":                {"on"},
		"pay_off_home":               {"on"},
		"mortgage_remaining":         {"0"},
	}
}

func TestQuestionnaireSaveThenCongratsOnce(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	login(t, client, ts.URL)

	resp, err := client.PostForm(ts.URL+"/questionnaire", questionnaireValues())
	if err != nil {
		t.Fatalf("POST /questionnaire error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("POST /questionnaire status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/milestones" {
		t.Fatalf("save redirect = %q, want /milestones", loc)
	}

	// First view after save: congratulations banner.
	resp, err = client.Get(ts.URL + "/milestones")
	if err != nil {
		t.Fatalf("GET /milestones error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "Congratulations") {
		t.Error("first milestones view missing congratulations banner")
	}

	// Refresh: the banner must not fire again.
	resp, err = client.Get(ts.URL + "/milestones")
	if err != nil {
		t.Fatalf("GET /milestones error = %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if strings.Contains(string(body), "Congratulations") {
		t.Error("congratulations banner fired again on refresh")
	}
	if !strings.Contains(string(body), "6 of 6 steps complete") {
		t.Error("milestones view missing completion summary")
	}
}

func TestMilestonesRendersWithLargerCatalog(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	login(t, client, ts.URL)

	if resp, err := client.PostForm(ts.URL+"/questionnaire", questionnaireValues()); err == nil {
		resp.Body.Close()
	}

	// The backend catalog carries a seventh step beyond the six scored
	// ones; the page must cap the list and still render to the end.
	resp, err := client.Get(ts.URL + "/milestones")
	if err != nil {
		t.Fatalf("GET /milestones error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	page := string(body)
	if got := strings.Count(page, `<span class="badge">`); got != 6 {
		t.Errorf("rendered step count = %d, want 6", got)
	}
	if strings.Contains(page, "Build Wealth and Give") {
		t.Error("unscored seventh step rendered")
	}
	if !strings.Contains(page, "Update your answers") {
		t.Error("page truncated before the footer link")
	}
}

func TestMilestonesNavLinkGatedByQuestionnaire(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	login(t, client, ts.URL)

	resp, err := client.Get(ts.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if strings.Contains(string(body), `href="/milestones"`) {
		t.Error("milestones nav link shown before the questionnaire was answered")
	}

	resp, err = client.PostForm(ts.URL+"/questionnaire", questionnaireValues())
	if err != nil {
		t.Fatalf("POST /questionnaire error = %v", err)
	}
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard error = %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `href="/milestones"`) {
		t.Error("milestones nav link missing after answering the questionnaire")
	}
}

func TestCongratsHeldUntilAllStepsComplete(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	login(t, client, ts.URL)

	// Save with step one missed (wrong starter-fund amount), then view.
	values := questionnaireValues()
	values.Set("emergency_savings_amount", "999")
	resp, err := client.PostForm(ts.URL+"/questionnaire", values)
	if err != nil {
		t.Fatalf("POST /questionnaire error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("POST /questionnaire status = %d, want 303", resp.StatusCode)
	}

	resp, err = client.Get(ts.URL + "/milestones")
	if err != nil {
		t.Fatalf("GET /milestones error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if strings.Contains(string(body), "Congratulations") {
		t.Error("congratulations banner fired with steps incomplete")
	}

	// Completing the last step afterwards must still fire the banner.
	resp, err = client.PostForm(ts.URL+"/questionnaire", questionnaireValues())
	if err != nil {
		t.Fatalf("POST /questionnaire error = %v", err)
	}
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/milestones")
	if err != nil {
		t.Fatalf("GET /milestones error = %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "Congratulations") {
		t.Error("no congratulations after completing all steps via save-then-view")
	}

	resp, err = client.Get(ts.URL + "/milestones")
	if err != nil {
		t.Fatalf("GET /milestones error = %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if strings.Contains(string(body), "Congratulations") {
		t.Error("congratulations banner fired again on refresh")
	}
}

func TestRegisterSuccessShowsLoginNotice(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	resp, err := client.PostForm(ts.URL+"/register", url.Values{
		"username": {"newbie"},
		"email":    {"newbie@example.com"},
		"password": {"secret-pass"},
	})
	if err != nil {
		t.Fatalf("POST /register error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("POST /register status = %d, want 303", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if loc != "/login?registered=1" {
		t.Fatalf("register redirect = %q, want /login?registered=1", loc)
	}

	resp, err = client.Get(ts.URL + loc)
	if err != nil {
		t.Fatalf("GET %s error = %v", loc, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "Account created") {
		t.Error("login page missing the registration notice")
	}
}

func TestQuestionnaireValidationBlocksSave(t *testing.T) {
	ts, store := newTestServer(t)
	client := newClient(t)
	login(t, client, ts.URL)

	values := questionnaireValues()
	values.Set("emergency_savings_amount", "")

	resp, err := client.PostForm(ts.URL+"/questionnaire", values)
	if err != nil {
		t.Fatalf("POST /questionnaire error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("POST /questionnaire status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(string(body), "This field is required") {
		t.Error("validation message not rendered")
	}

	responses, _ := store.ListResponses(context.Background())
	if len(responses) != 0 {
		t.Errorf("responses saved despite validation errors: %d", len(responses))
	}
}

func TestExpenseCreateAndDuplicate(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	login(t, client, ts.URL)

	values := url.Values{
		"expense_date": {"2025-03-10"},
		"category_id":  {"1"},
		"amount":       {"25.99"},
	}

	resp, err := client.PostForm(ts.URL+"/expenses", values)
	if err != nil {
		t.Fatalf("POST /expenses error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("POST /expenses status = %d, want 303", resp.StatusCode)
	}

	// Same (date, category): backend conflict surfaces inline.
	resp, err = client.PostForm(ts.URL+"/expenses", values)
	if err != nil {
		t.Fatalf("POST /expenses duplicate error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("duplicate POST status = %d, want 200 with inline error", resp.StatusCode)
	}
	if !strings.Contains(strings.ToLower(string(body)), "already") {
		t.Error("duplicate expense error not rendered inline")
	}
}

func TestLogoutRestoresAnonymous(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	login(t, client, ts.URL)

	resp, err := client.PostForm(ts.URL+"/logout", nil)
	if err != nil {
		t.Fatalf("POST /logout error = %v", err)
	}
	resp.Body.Close()
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("logout redirect = %q, want /login", loc)
	}

	resp, err = client.Get(ts.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("GET /dashboard after logout status = %d, want 303", resp.StatusCode)
	}
}

func TestDashboardRenders(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)
	login(t, client, ts.URL)

	if resp, err := client.PostForm(ts.URL+"/questionnaire", questionnaireValues()); err == nil {
		resp.Body.Close()
	}

	resp, err := client.Get(ts.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /dashboard status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Baby Steps progress") {
		t.Error("dashboard missing progress section")
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/login")
	if err != nil {
		t.Fatalf("GET /login error = %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if resp.Header.Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy header missing")
	}
}
