// Package state holds the three units of shared client state (auth,
// profile, finance response) scoped per browser session. Each container
// exposes load/save/reset plus a loading flag; logout on the auth container
// cascades resets into the other two.
package state

import (
	"sync"

	"babysteps/internal/core"
)

// Auth tracks the session's authentication state. The derived
// IsAuthenticated requires BOTH a token and a loaded user payload: a
// rehydrated session knowing only its user id stays provisional until the
// profile fetch completes.
type Auth struct {
	mu          sync.Mutex
	accessToken string
	user        *core.Profile
	loading     bool
}

func (a *Auth) SetLoading(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = v
}

func (a *Auth) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// SetToken records the access token without a user payload (the boot
// rehydration path).
func (a *Auth) SetToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accessToken = token
}

// SetAuthenticated records a full login result.
func (a *Auth) SetAuthenticated(token string, user core.Profile) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accessToken = token
	u := user
	a.user = &u
}

// SetUser attaches the user payload once the profile load completes.
func (a *Auth) SetUser(user core.Profile) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u := user
	a.user = &u
}

func (a *Auth) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accessToken
}

func (a *Auth) User() (core.Profile, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return core.Profile{}, false
	}
	return *a.user, true
}

// IsAuthenticated = token present AND user present. Load-ordering contract:
// components must not treat a token-only session as authenticated.
func (a *Auth) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accessToken != "" && a.user != nil
}

func (a *Auth) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accessToken = ""
	a.user = nil
	a.loading = false
}

// Profile caches the fetched profile record.
type Profile struct {
	mu      sync.Mutex
	profile *core.Profile
	loading bool
}

func (p *Profile) SetLoading(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = v
}

func (p *Profile) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *Profile) Set(profile core.Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := profile
	p.profile = &cp
}

func (p *Profile) Get() (core.Profile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.profile == nil {
		return core.Profile{}, false
	}
	return *p.profile, true
}

func (p *Profile) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = nil
	p.loading = false
}

// Finance caches the session's finance response.
type Finance struct {
	mu       sync.Mutex
	response *core.FinanceResponse
	loading  bool
}

func (f *Finance) SetLoading(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = v
}

func (f *Finance) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *Finance) Set(resp core.FinanceResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := resp
	f.response = &cp
}

func (f *Finance) Get() (core.FinanceResponse, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.response == nil {
		return core.FinanceResponse{}, false
	}
	return *f.response, true
}

func (f *Finance) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.response = nil
	f.loading = false
}

// Containers bundles one session's three containers plus the one-shot
// congratulations latch.
type Containers struct {
	Auth    *Auth
	Profile *Profile
	Finance *Finance

	mu             sync.Mutex
	congratsFired  bool
	cameFromSave   bool
}

func NewContainers() *Containers {
	return &Containers{
		Auth:    &Auth{},
		Profile: &Profile{},
		Finance: &Finance{},
	}
}

// Logout resets everything, cascading into profile and finance.
func (c *Containers) Logout() {
	c.Auth.Reset()
	c.Profile.Reset()
	c.Finance.Reset()

	c.mu.Lock()
	c.congratsFired = false
	c.cameFromSave = false
	c.mu.Unlock()
}

// MarkSaved records that the questionnaire was just saved, arming the
// congratulations side effect for the next milestones view.
func (c *Containers) MarkSaved() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cameFromSave = true
}

// CongratsArmed reports whether the congratulations notification may fire
// on this view, consuming the save marker. It only arms on the
// save-then-view path, never on a refresh or direct navigation, and never
// once the notification has already been shown this session. Arming does
// NOT latch: a view where the steps turn out incomplete leaves the
// notification available for a later save that completes them.
func (c *Containers) CongratsArmed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	armed := c.cameFromSave && !c.congratsFired
	c.cameFromSave = false
	return armed
}

// LatchCongrats records that the notification was actually shown, so it
// fires at most once per session.
func (c *Containers) LatchCongrats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.congratsFired = true
}
