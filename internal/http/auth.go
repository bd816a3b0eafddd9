package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"dompet/internal/log"
)

// HeaderOwnerID is set by a fronting auth proxy when no JWT secret is
// configured.
const HeaderOwnerID = "X-Owner-ID"

const maxOwnerIDLen = 128

type ownerKey struct{}

var (
	errMissingIdentity = errors.New("missing identity")
	errInvalidToken    = errors.New("invalid token")
)

// Authenticator resolves the owner of a request. With a secret it accepts
// only HS256 bearer tokens whose sub claim is the owner id.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	a := &Authenticator{}
	if secret != "" {
		a.secret = []byte(secret)
	}
	return a
}

// UsesJWT reports whether bearer tokens are required.
func (a *Authenticator) UsesJWT() bool { return len(a.secret) > 0 }

// Owner extracts the owner id from r.
func (a *Authenticator) Owner(r *http.Request) (string, error) {
	if !a.UsesJWT() {
		return validOwner(r.Header.Get(HeaderOwnerID))
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingIdentity
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: expected bearer token", errInvalidToken)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	return validOwner(claims.Subject)
}

func validOwner(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errMissingIdentity
	}
	if len(s) > maxOwnerIDLen {
		return "", fmt.Errorf("%w: owner id too long", errInvalidToken)
	}
	return s, nil
}

// Middleware rejects requests without a resolvable owner with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, err := a.Owner(r)
		if err != nil {
			log.FromContext(r.Context()).WithComponent(log.ComponentAuth).WarnContext(r.Context(), "Rejected unauthenticated request",
				log.FieldPath, r.URL.Path,
				"error_type", log.ErrorTypeAuth,
				"jwt", a.UsesJWT(),
				log.FieldError, err)
			if a.UsesJWT() {
				w.Header().Set("WWW-Authenticate", `Bearer realm="dompet"`)
			}
			ErrorResponse(http.StatusUnauthorized, "unauthorized").Write(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
	})
}

// WithOwner stores owner in ctx.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFrom returns the authenticated owner, or "" outside the middleware.
func OwnerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}
