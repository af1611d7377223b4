package identity

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"longevity-frame/internal/domain"
)

func TestVerifierRoundTrip(t *testing.T) {
	v := NewVerifier("secret", "longevity-frame")
	token, err := v.Issue(domain.Identity{UserID: 42, Username: "alice"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != 42 || id.Username != "alice" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestVerifierRejectsBadTokens(t *testing.T) {
	v := NewVerifier("secret", "longevity-frame")
	other := NewVerifier("other-secret", "longevity-frame")
	foreign, _ := other.Issue(domain.Identity{UserID: 1}, time.Hour)

	expired := NewVerifier("secret", "longevity-frame")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _ := expired.Issue(domain.Identity{UserID: 1}, time.Hour)

	wrongIssuer, _ := NewVerifier("secret", "someone-else").Issue(domain.Identity{UserID: 1}, time.Hour)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{FID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, token := range map[string]string{
		"garbage":      "not-a-jwt",
		"foreign":      foreign,
		"expired":      stale,
		"wrong issuer": wrongIssuer,
		"alg none":     none,
	} {
		if _, err := v.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	v := NewVerifier("secret", "")
	token, _ := v.Issue(domain.Identity{UserID: 7, Username: "bob"}, time.Hour)

	var seen *domain.Identity
	handler := Middleware(v, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil || seen.UserID != 7 {
		t.Fatalf("expected identity from bearer token, got %+v", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil || seen.Username != "bob" {
		t.Fatalf("expected identity from cookie, got %+v", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tampered")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != nil {
		t.Fatalf("expected anonymous request for invalid token, got %+v", seen)
	}
}

func TestRequireIdentity(t *testing.T) {
	called := false
	handler := RequireIdentity(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
	if rec.Body.String() != `{"error":"Unauthorized"}` {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), domain.Identity{UserID: 1}))
	handler(httptest.NewRecorder(), req)
	if !called {
		t.Fatalf("expected handler to run with identity")
	}
}
