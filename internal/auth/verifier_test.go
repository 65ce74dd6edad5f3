package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-storefront/internal/common"
)

const (
	buyerSubject = "0b7f7a8e-5d55-4c77-9a3e-1f2f6b0c9a11"
	adminSubject = "5e3c2a10-7c8b-4d0e-8f1a-2b3c4d5e6f70"
)

func newTestVerifier(t *testing.T, now time.Time) *Verifier {
	t.Helper()
	v, err := NewVerifier(Config{Secret: "super-secret-key", AccessTTL: time.Minute})
	require.NoError(t, err)
	v.WithNow(func() time.Time { return now })
	return v
}

func TestVerifierRoundTrip(t *testing.T) {
	now := time.Now()
	v := newTestVerifier(t, now)

	token, exp, err := v.SignAccessToken(buyerSubject)
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Minute), exp)

	subject, err := v.ParseAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, buyerSubject, subject)

	id, err := v.Identify(token)
	require.NoError(t, err)
	require.False(t, id.Admin)

	admin, _, err := v.SignAccessToken(adminSubject, "admin")
	require.NoError(t, err)
	id, err = v.Identify(admin)
	require.NoError(t, err)
	require.True(t, id.Admin)
}

func TestVerifierRejects(t *testing.T) {
	now := time.Now()
	v := newTestVerifier(t, now)

	t.Run("algorithm mismatch", func(t *testing.T) {
		built, err := jwt.NewBuilder().
			Subject(buyerSubject).
			Issuer(v.issuer).
			Audience([]string{v.audience}).
			IssuedAt(now).
			Expiration(now.Add(time.Minute)).
			Build()
		require.NoError(t, err)
		signed, err := jwt.Sign(built, jwt.WithKey(jwa.HS384, v.secret))
		require.NoError(t, err)
		_, err = v.ParseAccessToken(string(signed))
		require.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewVerifier(Config{Secret: "another-secret"})
		require.NoError(t, err)
		token, _, err := other.SignAccessToken(buyerSubject)
		require.NoError(t, err)
		_, err = v.ParseAccessToken(token)
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, _, err := v.SignAccessToken(buyerSubject)
		require.NoError(t, err)
		later := newTestVerifier(t, now.Add(2*time.Minute))
		_, err = later.ParseAccessToken(token)
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
	})

	t.Run("subject is not a user id", func(t *testing.T) {
		token, _, err := v.SignAccessToken("buyer-1")
		require.NoError(t, err)
		_, err = v.ParseAccessToken(token)
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.ParseAccessToken("not-a-jwt")
		require.Error(t, err)
		_, err = v.ParseAccessToken("  ")
		require.Error(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	v := newTestVerifier(t, time.Now())
	m := Middleware{Verifier: v, AccessCookie: "access_token"}

	var gotUser string
	var gotAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = common.UserID(r.Context())
		gotAdmin = common.IsAdmin(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	serve := func(h http.Handler, mutate func(r *http.Request)) int {
		gotUser, gotAdmin = "", false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if mutate != nil {
			mutate(req)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	buyer, _, err := v.SignAccessToken(buyerSubject)
	require.NoError(t, err)
	admin, _, err := v.SignAccessToken(adminSubject, "admin")
	require.NoError(t, err)

	require.Equal(t, http.StatusUnauthorized, serve(m.RequireAuth(next), nil))
	require.Equal(t, http.StatusUnauthorized, serve(m.RequireAuth(next), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer nope")
	}))

	require.Equal(t, http.StatusNoContent, serve(m.RequireAuth(next), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+buyer)
	}))
	require.Equal(t, buyerSubject, gotUser)
	require.False(t, gotAdmin)

	require.Equal(t, http.StatusNoContent, serve(m.RequireAuth(next), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "access_token", Value: buyer})
	}))
	require.Equal(t, buyerSubject, gotUser)

	require.Equal(t, http.StatusForbidden, serve(m.RequireAuth(m.RequireAdmin(next)), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+buyer)
	}))
	require.Equal(t, http.StatusNoContent, serve(m.RequireAuth(m.RequireAdmin(next)), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+admin)
	}))
	require.True(t, gotAdmin)

	require.Equal(t, http.StatusNoContent, serve(m.Authenticate(next), nil))
	require.Empty(t, gotUser)
}
