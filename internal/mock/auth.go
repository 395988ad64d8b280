package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/observer"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// Auth is the mock sign-in provider.
type Auth struct {
	core

	mu     sync.RWMutex
	player *domain.Player

	onAuthenticated observer.List[func(*domain.Player)]
	onFailed        observer.List[func(*domain.Error)]
}

var _ provider.Auth = (*Auth)(nil)

// NewAuth creates the mock auth provider.
func NewAuth(settings config.MockSettings, opts Options) *Auth {
	a := &Auth{}
	a.init(domain.SubsystemAuth, settings, opts)
	return a
}

// Authenticate waits the configured auth delay, then signs the mock player
// in or fails with the configured error.
func (a *Auth) Authenticate(ctx context.Context) (*domain.Player, error) {
	if err := a.wait(ctx, a.settings.AuthDelay); err != nil {
		return nil, err
	}

	if !a.settings.AuthSucceeds {
		e := domain.NewError(domain.SubsystemAuth, a.settings.AuthErrorCode(), a.settings.AuthErrorMessage(), "")
		a.setPlayer(nil)
		a.log.Warn("mock sign-in failed", "error_type", string(a.settings.AuthErrorType))
		a.onFailed.Each(func(fn func(*domain.Error)) { fn(e) })
		return nil, e
	}

	p := &domain.Player{
		ID:            a.settings.PlayerID,
		DisplayName:   a.settings.DisplayName,
		HiResImageURI: a.settings.PictureURL,
	}
	a.setPlayer(p)
	a.log.Info("mock player signed in", "player_id", p.ID)
	a.onAuthenticated.Each(func(fn func(*domain.Player)) { fn(p) })
	return p, nil
}

// RequestServerSideAccess returns a fresh mock auth code.
func (a *Auth) RequestServerSideAccess(ctx context.Context, clientID string, _ bool) (string, error) {
	if err := a.checkAccess(clientID); err != nil {
		return "", err
	}
	if err := a.wait(ctx, a.delay/2); err != nil {
		return "", err
	}
	return "mock_auth_code_" + newID(), nil
}

// RequestServerSideAccessWithScopes grants every requested scope when
// consent is configured, with claims for the email and profile scopes.
// Declined consent returns the code alone.
func (a *Auth) RequestServerSideAccessWithScopes(ctx context.Context, clientID string, _ bool, scopes []domain.AuthScope) (*domain.AuthResponse, error) {
	if err := a.checkAccess(clientID); err != nil {
		return nil, err
	}
	if err := a.wait(ctx, a.delay); err != nil {
		return nil, err
	}

	resp := &domain.AuthResponse{
		AuthCode:      "mock_auth_code_" + newID(),
		GrantedScopes: []domain.AuthScope{},
	}
	if len(scopes) == 0 || !a.settings.ConsentGranted {
		a.log.Info("mock scoped access without scopes", "consent", a.settings.ConsentGranted)
		return resp, nil
	}

	resp.GrantedScopes = slices.Clone(scopes)
	resp.IDTokenClaims = a.claims(resp)
	return resp, nil
}

func (a *Auth) claims(resp *domain.AuthResponse) *domain.IDTokenClaims {
	claims := &domain.IDTokenClaims{Sub: a.settings.PlayerID}
	if resp.HasScope(domain.ScopeEmail) {
		claims.Email = a.settings.Email
		claims.EmailVerified = a.settings.EmailVerified
	}
	if resp.HasScope(domain.ScopeProfile) {
		claims.Name = a.settings.FullName
		claims.GivenName = a.settings.GivenName
		claims.FamilyName = a.settings.FamilyName
		claims.Picture = a.settings.PictureURL
		claims.Locale = a.settings.Locale
	}
	return claims
}

func (a *Auth) checkAccess(clientID string) error {
	if clientID == "" {
		return domain.ErrMissingArgument.WithDetails("server client id is required")
	}
	if !a.IsAuthenticated() {
		return domain.NewError(domain.SubsystemAuth, domain.CodeAuthSignInRequired,
			"Not authenticated - call Authenticate first", "")
	}
	return nil
}

// IsAuthenticated reports whether the mock player is signed in.
func (a *Auth) IsAuthenticated() bool {
	return a.CurrentPlayer() != nil
}

// CurrentPlayer returns the signed-in player, or nil.
func (a *Auth) CurrentPlayer() *domain.Player {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.player
}

func (a *Auth) setPlayer(p *domain.Player) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.player = p
}

// OnAuthenticated registers fn for every successful sign-in.
func (a *Auth) OnAuthenticated(fn func(*domain.Player)) { a.onAuthenticated.Add(fn) }

// OnAuthFailed registers fn for every failed sign-in.
func (a *Auth) OnAuthFailed(fn func(*domain.Error)) { a.onFailed.Add(fn) }
