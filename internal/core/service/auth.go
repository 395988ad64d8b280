package service

import (
	"context"
	"sync"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/observer"
	"github.com/yndnr/gamesvc-go/internal/core/pending"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// errNotAuthenticated is returned by server-side access requests made before
// a successful sign-in.
var errNotAuthenticated = domain.NewError(domain.SubsystemAuth, domain.CodeAuthSignInRequired,
	"Not authenticated - call Authenticate first", "")

// AuthController signs the player in over the bridge.
type AuthController struct {
	base
	api bridge.Auth

	auth   *pending.Slot[*domain.Player]
	server *pending.Slot[string]
	scoped *pending.Slot[*domain.AuthResponse]

	mu     sync.RWMutex
	player *domain.Player

	onAuthenticated observer.List[func(*domain.Player)]
	onFailed        observer.List[func(*domain.Error)]
}

var _ provider.Auth = (*AuthController)(nil)

// NewAuthController creates the controller and registers its bridge
// callback.
func NewAuthController(api bridge.Auth, deps Deps) *AuthController {
	c := &AuthController{api: api}
	c.init(domain.SubsystemAuth, deps)

	opts := c.pendingOpts()
	c.auth = pending.NewSlot[*domain.Player]("authenticate", opts...)
	c.server = pending.NewSlot[string]("server_side_access", opts...)
	c.scoped = pending.NewSlot[*domain.AuthResponse]("scoped_access", opts...)

	api.SetCallback(&authCallbacks{c: c})
	return c
}

// Authenticate signs the player in. A second call while one is in flight
// cancels the first.
func (c *AuthController) Authenticate(ctx context.Context) (p *domain.Player, err error) {
	defer c.track("authenticate")(&err)

	if err := c.begin(ctx); err != nil {
		return nil, err
	}
	comp := c.auth.Replace()
	c.api.SignIn()
	return await(ctx, &c.base, comp, c.timeout)
}

// RequestServerSideAccess returns a one-time auth code for clientID.
func (c *AuthController) RequestServerSideAccess(ctx context.Context, clientID string, forceRefresh bool) (code string, err error) {
	defer c.track("server_side_access")(&err)

	if err := c.checkAccess(ctx, clientID); err != nil {
		return "", err
	}
	comp := c.server.Replace()
	c.api.RequestServerSideAccess(clientID, forceRefresh)
	return await(ctx, &c.base, comp, c.timeout)
}

// RequestServerSideAccessWithScopes returns an auth code together with the
// scopes the player granted and, when profile scopes were granted, the ID
// token claims.
func (c *AuthController) RequestServerSideAccessWithScopes(ctx context.Context, clientID string, forceRefresh bool, scopes []domain.AuthScope) (resp *domain.AuthResponse, err error) {
	defer c.track("scoped_access")(&err)

	if err := c.checkAccess(ctx, clientID); err != nil {
		return nil, err
	}
	if len(scopes) == 0 {
		return nil, domain.ErrMissingArgument.WithDetails("at least one scope is required")
	}
	comp := c.scoped.Replace()
	c.api.RequestServerSideAccessWithScopes(clientID, forceRefresh, bridge.EncodeScopes(scopes))
	return await(ctx, &c.base, comp, c.timeout)
}

func (c *AuthController) checkAccess(ctx context.Context, clientID string) error {
	if clientID == "" {
		return domain.ErrMissingArgument.WithDetails("server client id is required")
	}
	if err := c.begin(ctx); err != nil {
		return err
	}
	if !c.IsAuthenticated() {
		return errNotAuthenticated
	}
	return nil
}

// IsAuthenticated reports whether a player is signed in.
func (c *AuthController) IsAuthenticated() bool {
	return c.CurrentPlayer() != nil
}

// CurrentPlayer returns the signed-in player, or nil.
func (c *AuthController) CurrentPlayer() *domain.Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.player
}

func (c *AuthController) setPlayer(p *domain.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player = p
}

// OnAuthenticated registers fn for every successful sign-in.
func (c *AuthController) OnAuthenticated(fn func(*domain.Player)) {
	c.onAuthenticated.Add(fn)
}

// OnAuthFailed registers fn for every failed auth request.
func (c *AuthController) OnAuthFailed(fn func(*domain.Error)) {
	c.onFailed.Add(fn)
}

// Close cancels every pending call.
func (c *AuthController) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.rejectAll(domain.ErrCanceled)
	return nil
}

func (c *AuthController) rejectAll(err error) {
	c.auth.Reject(err)
	c.server.Reject(err)
	c.scoped.Reject(err)
}

// fail reports a vendor auth error. Sign-in failures sign the player out.
func (c *AuthController) fail(code int, message string, signOut bool) {
	e := c.vendorError(code, message, "")
	if signOut {
		c.setPlayer(nil)
	}
	c.onFailed.Each(func(fn func(*domain.Error)) { fn(e) })
	c.rejectAll(e)
}

type authCallbacks struct {
	c *AuthController
}

func (p *authCallbacks) OnAuthSuccess(playerID, displayName, avatarURI string) {
	p.c.post("auth_success", func() {
		player := &domain.Player{ID: playerID, DisplayName: displayName, HiResImageURI: avatarURI}
		p.c.setPlayer(player)
		p.c.log.Info("player signed in", "player_id", playerID)
		p.c.onAuthenticated.Each(func(fn func(*domain.Player)) { fn(player) })
		p.c.auth.Resolve(player)
	})
}

func (p *authCallbacks) OnAuthFailure(code int, message string) {
	p.c.post("auth_failure", func() { p.c.fail(code, message, true) })
}

func (p *authCallbacks) OnServerSideAccessSuccess(authCode string) {
	p.c.post("server_side_access_success", func() {
		p.c.server.Resolve(authCode)
	})
}

func (p *authCallbacks) OnServerSideAccessFailure(code int, message string) {
	p.c.post("server_side_access_failure", func() { p.c.fail(code, message, false) })
}

func (p *authCallbacks) OnScopedAccessSuccess(authCode, scopesDoc, claimsDoc string) {
	p.c.post("scoped_access_success", func() {
		scopes, err := bridge.DecodeScopes(scopesDoc)
		if err != nil {
			p.c.scoped.Reject(err)
			return
		}
		claims, err := bridge.DecodeClaims(claimsDoc)
		if err != nil {
			p.c.scoped.Reject(err)
			return
		}
		if scopes == nil {
			scopes = []domain.AuthScope{}
		}
		p.c.scoped.Resolve(&domain.AuthResponse{AuthCode: authCode, GrantedScopes: scopes, IDTokenClaims: claims})
	})
}

func (p *authCallbacks) OnScopedAccessFailure(code int, message string) {
	p.c.post("scoped_access_failure", func() { p.c.fail(code, message, false) })
}
