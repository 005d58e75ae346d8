// ABOUTME: Reads display details out of a backend access token
// ABOUTME: Claims are decoded without verification; the backend remains the authority

package tokeninfo

import (
	"errors"
	"time"

	"github.com/doklink/doklink-auth/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Info is what the CLI shows about a session token
type Info struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
}

// ErrNotJWT is returned when the access token is opaque
var ErrNotJWT = errors.New("access token is not a JWT")

// Inspect decodes the registered claims of token without checking its signature
func Inspect(token string) (Info, error) {
	if token == "" {
		return Info{}, ErrNotJWT
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Info{}, errors.Join(ErrNotJWT, err)
	}

	info := Info{Subject: claims.Subject, Issuer: claims.Issuer}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// Enrich fills UserID and ExpiresAt from the access token when the backend
// left them out of the response. Opaque tokens leave auth unchanged.
func Enrich(auth *models.AuthResult) {
	if auth == nil {
		return
	}
	info, err := Inspect(auth.AccessToken)
	if err != nil {
		return
	}
	if auth.UserID == "" {
		auth.UserID = info.Subject
	}
	if auth.ExpiresAt.IsZero() {
		auth.ExpiresAt = info.ExpiresAt
	}
}
