package state

import (
	"testing"
	"time"

	"babysteps/internal/core"
)

func TestAuthRequiresTokenAndUser(t *testing.T) {
	a := &Auth{}
	if a.IsAuthenticated() {
		t.Error("IsAuthenticated() = true for empty container")
	}

	a.SetToken("tok")
	if a.IsAuthenticated() {
		t.Error("IsAuthenticated() = true with token only")
	}

	a.SetUser(core.Profile{UserID: 7, Email: "a@b.com"})
	if !a.IsAuthenticated() {
		t.Error("IsAuthenticated() = false with token and user")
	}
}

func TestLogoutCascades(t *testing.T) {
	c := NewContainers()
	c.Auth.SetAuthenticated("tok", core.Profile{UserID: 1})
	c.Profile.Set(core.Profile{UserID: 1})
	c.Finance.Set(core.FinanceResponse{ResponseID: 3, UserID: 1})

	c.Logout()

	if c.Auth.IsAuthenticated() {
		t.Error("auth still authenticated after logout")
	}
	if _, ok := c.Profile.Get(); ok {
		t.Error("profile survived logout")
	}
	if _, ok := c.Finance.Get(); ok {
		t.Error("finance response survived logout")
	}
}

func TestCongratsArmsOnSaveAndLatchesOnce(t *testing.T) {
	c := NewContainers()

	if c.CongratsArmed() {
		t.Error("CongratsArmed() = true without a preceding save")
	}

	// A view where the steps turn out incomplete consumes the save marker
	// but does not latch.
	c.MarkSaved()
	if !c.CongratsArmed() {
		t.Error("CongratsArmed() = false on save-then-view")
	}
	if c.CongratsArmed() {
		t.Error("CongratsArmed() = true on refresh")
	}

	// A later save can still arm, because nothing was shown yet.
	c.MarkSaved()
	if !c.CongratsArmed() {
		t.Error("CongratsArmed() = false after re-save with nothing shown yet")
	}
	c.LatchCongrats()

	// Once shown, no save re-arms within the session.
	c.MarkSaved()
	if c.CongratsArmed() {
		t.Error("CongratsArmed() = true after the notification was shown")
	}

	c.Logout()
	c.MarkSaved()
	if !c.CongratsArmed() {
		t.Error("CongratsArmed() = false in fresh session after logout")
	}
}

func TestRegistryGetCreatesAndReuses(t *testing.T) {
	r := NewRegistry(time.Hour, time.Hour)
	defer r.Stop()

	c1 := r.Get("sid-1")
	c1.Auth.SetToken("tok")

	c2 := r.Get("sid-1")
	if c2.Auth.Token() != "tok" {
		t.Error("Get() did not return the same containers for one sid")
	}

	other := r.Get("sid-2")
	if other.Auth.Token() != "" {
		t.Error("containers leaked across session ids")
	}
}

func TestRegistryDrop(t *testing.T) {
	r := NewRegistry(time.Hour, time.Hour)
	defer r.Stop()

	r.Get("sid-1").Auth.SetToken("tok")
	r.Drop("sid-1")

	if r.Get("sid-1").Auth.Token() != "" {
		t.Error("Drop() did not evict session state")
	}
}
