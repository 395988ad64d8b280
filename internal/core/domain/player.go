package domain

import (
	"fmt"
	"strings"
)

// Player is the signed-in player.
type Player struct {
	ID             string `json:"playerId"`
	DisplayName    string `json:"displayName"`
	BannerImageURI string `json:"bannerImageUri,omitempty"`
	HiResImageURI  string `json:"hiResImageUri,omitempty"`
}

// String returns "name (id)".
func (p *Player) String() string {
	return fmt.Sprintf("%s (%s)", p.DisplayName, p.ID)
}

// AuthScope is an OAuth scope requested with server-side access.
type AuthScope string

// Scopes.
const (
	ScopeEmail   AuthScope = "EMAIL"
	ScopeProfile AuthScope = "PROFILE"
	ScopeOpenID  AuthScope = "OPEN_ID"
)

// ParseAuthScope parses a scope name.
func ParseAuthScope(s string) (AuthScope, error) {
	switch AuthScope(strings.ToUpper(s)) {
	case ScopeEmail:
		return ScopeEmail, nil
	case ScopeProfile:
		return ScopeProfile, nil
	case ScopeOpenID, "OPENID":
		return ScopeOpenID, nil
	}
	return "", ErrInvalidArgument.WithDetails("unknown auth scope: " + s)
}

// IDTokenClaims are the profile claims returned with scoped access.
type IDTokenClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Locale        string `json:"locale,omitempty"`
}

// AuthResponse is the result of a server-side access request.
type AuthResponse struct {
	AuthCode      string         `json:"authCode"`
	GrantedScopes []AuthScope    `json:"grantedScopes"`
	IDTokenClaims *IDTokenClaims `json:"idTokenClaims,omitempty"`
}

// HasScope reports whether scope was granted.
func (r *AuthResponse) HasScope(scope AuthScope) bool {
	for _, s := range r.GrantedScopes {
		if s == scope {
			return true
		}
	}
	return false
}
