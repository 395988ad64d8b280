package simbridge

import (
	"context"
	"sync"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

// holder guards the callback registered by SetCallback. Responses with no
// callback registered are discarded.
type holder[T any] struct {
	mu sync.RWMutex
	cb T
	ok bool
}

func (h *holder[T]) set(cb T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cb = cb
	h.ok = any(cb) != nil
}

func (h *holder[T]) with(fn func(cb T)) {
	h.mu.RLock()
	cb, ok := h.cb, h.ok
	h.mu.RUnlock()
	if ok {
		fn(cb)
	}
}

type authAPI struct {
	p  *Platform
	cb holder[bridge.AuthCallback]
}

var _ bridge.Auth = (*authAPI)(nil)

func (a *authAPI) SetCallback(cb bridge.AuthCallback) {
	a.cb.set(cb)
}

func (a *authAPI) SignIn() {
	a.p.submit(OpSignIn, func(context.Context) {
		a.p.mu.Lock()
		a.p.signedIn = true
		player := a.p.player
		a.p.mu.Unlock()

		a.cb.with(func(cb bridge.AuthCallback) {
			cb.OnAuthSuccess(player.ID, player.DisplayName, player.HiResImageURI)
		})
	}, func(code int, msg string) {
		a.p.mu.Lock()
		a.p.signedIn = false
		a.p.mu.Unlock()
		a.cb.with(func(cb bridge.AuthCallback) { cb.OnAuthFailure(code, msg) })
	})
}

func (a *authAPI) signedIn() bool {
	a.p.mu.Lock()
	defer a.p.mu.Unlock()
	return a.p.signedIn
}

func (a *authAPI) RequestServerSideAccess(clientID string, _ bool) {
	fail := func(code int, msg string) {
		a.cb.with(func(cb bridge.AuthCallback) { cb.OnServerSideAccessFailure(code, msg) })
	}
	a.p.submit(OpServerSideAccess, func(context.Context) {
		if !a.signedIn() {
			fail(domain.CodeAuthSignInRequired, "Sign in required")
			return
		}
		if clientID == "" {
			fail(domain.CodeAuthSignInFailed, "Server client id is required")
			return
		}
		code := "sim_auth_code_" + newHandle()
		a.cb.with(func(cb bridge.AuthCallback) { cb.OnServerSideAccessSuccess(code) })
	}, fail)
}

func (a *authAPI) RequestServerSideAccessWithScopes(clientID string, _ bool, scopesJSON string) {
	fail := func(code int, msg string) {
		a.cb.with(func(cb bridge.AuthCallback) { cb.OnScopedAccessFailure(code, msg) })
	}
	a.p.submit(OpScopedAccess, func(context.Context) {
		if !a.signedIn() {
			fail(domain.CodeAuthSignInRequired, "Sign in required")
			return
		}
		if clientID == "" {
			fail(domain.CodeAuthSignInFailed, "Server client id is required")
			return
		}
		requested, err := bridge.DecodeScopes(scopesJSON)
		if err != nil {
			fail(domain.CodeInternalError, err.Error())
			return
		}

		granted, claims := a.grant(requested)
		code := "sim_auth_code_" + newHandle()
		a.cb.with(func(cb bridge.AuthCallback) {
			cb.OnScopedAccessSuccess(code, bridge.EncodeScopes(granted), bridge.EncodeClaims(claims))
		})
	}, fail)
}

// grant applies the player's consent to the requested scopes and builds the
// claims they cover.
func (a *authAPI) grant(requested []domain.AuthScope) ([]domain.AuthScope, *domain.IDTokenClaims) {
	a.p.mu.Lock()
	consent, profile, player := a.p.consent, a.p.profile, a.p.player
	a.p.mu.Unlock()

	if !consent || len(requested) == 0 {
		return []domain.AuthScope{}, nil
	}

	claims := &domain.IDTokenClaims{Sub: profile.Sub}
	if claims.Sub == "" {
		claims.Sub = player.ID
	}
	for _, s := range requested {
		switch s {
		case domain.ScopeEmail:
			claims.Email = profile.Email
			claims.EmailVerified = profile.EmailVerified
		case domain.ScopeProfile:
			claims.Name = profile.Name
			claims.GivenName = profile.GivenName
			claims.FamilyName = profile.FamilyName
			claims.Picture = profile.Picture
			claims.Locale = profile.Locale
		}
	}
	return requested, claims
}
