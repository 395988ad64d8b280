package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/yndnr/gamesvc-go/internal/bridge/simbridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

func TestAuth_ServerSideAccessRequiresSignIn(t *testing.T) {
	h := newHarness(t)
	c := NewAuthController(h.p.Auth(), h.deps)
	t.Cleanup(func() { c.Close() })
	ctx := testContext(t)

	if _, err := c.RequestServerSideAccess(ctx, "", false); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("empty client id error = %v", err)
	}
	_, err := c.RequestServerSideAccess(ctx, "client", false)
	if domain.KindOf(err) != domain.KindNotAuthenticated {
		t.Errorf("before sign-in error = %v, want NotAuthenticated", err)
	}
	_, err = c.RequestServerSideAccessWithScopes(ctx, "client", false, []domain.AuthScope{domain.ScopeEmail})
	if domain.KindOf(err) != domain.KindNotAuthenticated {
		t.Errorf("scoped before sign-in error = %v, want NotAuthenticated", err)
	}
	if c.IsAuthenticated() || c.CurrentPlayer() != nil {
		t.Error("signed in without Authenticate")
	}
}

func TestAuth_SignInAndAccess(t *testing.T) {
	profile := domain.IDTokenClaims{Email: "player@example.com", EmailVerified: true, Name: "Full Name"}
	h := newHarness(t, simbridge.WithProfile(profile))
	c := NewAuthController(h.p.Auth(), h.deps)
	t.Cleanup(func() { c.Close() })
	ctx := testContext(t)

	var observed *domain.Player
	c.OnAuthenticated(func(p *domain.Player) { observed = p })

	player, err := c.Authenticate(ctx)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if player.ID != "sim_player" || !c.IsAuthenticated() || observed != player {
		t.Fatalf("player = %+v, observed = %+v", player, observed)
	}

	code, err := c.RequestServerSideAccess(ctx, "client", true)
	if err != nil || !strings.HasPrefix(code, "sim_auth_code_") {
		t.Errorf("RequestServerSideAccess() = %q, %v", code, err)
	}

	if _, err := c.RequestServerSideAccessWithScopes(ctx, "client", false, nil); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("no scopes error = %v", err)
	}
	resp, err := c.RequestServerSideAccessWithScopes(ctx, "client", false, []domain.AuthScope{domain.ScopeEmail})
	if err != nil {
		t.Fatalf("RequestServerSideAccessWithScopes() error = %v", err)
	}
	if len(resp.GrantedScopes) != 1 || resp.GrantedScopes[0] != domain.ScopeEmail {
		t.Errorf("granted = %v", resp.GrantedScopes)
	}
	if resp.IDTokenClaims == nil || resp.IDTokenClaims.Email != profile.Email {
		t.Errorf("claims = %+v", resp.IDTokenClaims)
	}
}

func TestAuth_ConsentDenied(t *testing.T) {
	h := newHarness(t, simbridge.WithConsent(false))
	c := NewAuthController(h.p.Auth(), h.deps)
	t.Cleanup(func() { c.Close() })
	ctx := testContext(t)

	if _, err := c.Authenticate(ctx); err != nil {
		t.Fatal(err)
	}
	resp, err := c.RequestServerSideAccessWithScopes(ctx, "client", false, []domain.AuthScope{domain.ScopeEmail, domain.ScopeProfile})
	if err != nil {
		t.Fatal(err)
	}
	if resp.AuthCode == "" || resp.GrantedScopes == nil || len(resp.GrantedScopes) != 0 {
		t.Errorf("response = %+v, want a code with no scopes", resp)
	}
}

func TestAuth_SignInFailureSignsOut(t *testing.T) {
	h := newHarness(t)
	c := NewAuthController(h.p.Auth(), h.deps)
	t.Cleanup(func() { c.Close() })
	ctx := testContext(t)

	if _, err := c.Authenticate(ctx); err != nil {
		t.Fatal(err)
	}

	var failures []*domain.Error
	c.OnAuthFailed(func(e *domain.Error) { failures = append(failures, e) })

	h.p.FailNext(simbridge.OpSignIn, domain.CodeAuthUserCanceled, "canceled by user")
	_, err := c.Authenticate(ctx)
	if domain.KindOf(err) != domain.KindUserCanceled {
		t.Fatalf("Authenticate() error = %v, want UserCanceled", err)
	}
	if c.IsAuthenticated() {
		t.Error("failed sign-in kept the player")
	}
	if len(failures) != 1 || failures[0].Code != domain.CodeAuthUserCanceled {
		t.Errorf("failure observers = %v", failures)
	}
}
