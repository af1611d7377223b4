// Package identity verifies users through the external sign-in provider.
// The provider issues HS256 JWTs carrying the Farcaster id (fid) and
// username; this package only checks them.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"longevity-frame/internal/domain"
)

// SessionCookie is the cookie that may carry the identity token.
const SessionCookie = "session"

// Claims is the token payload issued by the sign-in provider.
type Claims struct {
	FID      int64  `json:"fid"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks identity tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Enabled reports whether a secret is configured. Without one every request is anonymous.
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Verify parses and validates token.
func (v *Verifier) Verify(token string) (domain.Identity, error) {
	if !v.Enabled() {
		return domain.Identity{}, fmt.Errorf("%w: verifier not configured", domain.ErrInvalidToken)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.FID <= 0 {
		if sub, convErr := strconv.ParseInt(claims.Subject, 10, 64); convErr == nil && sub > 0 {
			claims.FID = sub
		} else {
			return domain.Identity{}, fmt.Errorf("%w: missing fid", domain.ErrInvalidToken)
		}
	}
	return domain.Identity{UserID: claims.FID, Username: claims.Username}, nil
}

// Issue mints a token for id. It exists for development tooling and tests;
// production tokens come from the sign-in provider.
func (v *Verifier) Issue(id domain.Identity, ttl time.Duration) (string, error) {
	if !v.Enabled() {
		return "", errors.New("identity secret not configured")
	}
	now := v.now()
	claims := Claims{
		FID:      id.UserID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the verified identity, or nil for anonymous requests.
func FromContext(ctx context.Context) *domain.Identity {
	id, ok := ctx.Value(contextKey{}).(domain.Identity)
	if !ok {
		return nil
	}
	return &id
}

// Middleware attaches a verified identity to the request context when the
// request carries a valid token. Invalid or missing tokens leave the request
// anonymous; guarded handlers reject it with RequireIdentity.
func Middleware(v *Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" || !v.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			id, err := v.Verify(token)
			if err != nil {
				log.Debug("identity token rejected", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		next(w, r)
	}
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
