package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanjparedez/mundobl/internal/models"
)

func token(t *testing.T, v *Verifier, role models.Role) string {
	t.Helper()
	tok, err := v.Sign(&Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return tok
}

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("secret", "idp")
	claims, err := v.Verify(token(t, v, models.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "idp", claims.Issuer)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("secret", "idp")
	other := NewVerifier("other", "idp")
	wrongIssuer := NewVerifier("secret", "someone-else")

	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = v.Verify(token(t, other, models.RoleAdmin))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(token(t, wrongIssuer, models.RoleAdmin))
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := v.Sign(&Claims{
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewVerifier("", "").Verify("x")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestCheckPermission(t *testing.T) {
	assert.True(t, CheckPermission(models.RoleAdmin, models.RoleAdmin, models.RoleModerator))
	assert.False(t, CheckPermission(models.RoleVisitor, models.RoleAdmin, models.RoleModerator))
	assert.True(t, CheckPermission(models.RoleVisitor))
	assert.False(t, CheckPermission(""))
}

func TestRequire(t *testing.T) {
	v := NewVerifier("secret", "")
	mw := NewMiddleware(v)

	var seen *ContextUserData
	h := mw.Require(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"wrong role", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token(t, v, models.RoleVisitor))
		}, http.StatusForbidden},
		{"admin header", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token(t, v, models.RoleAdmin))
		}, http.StatusNoContent},
		{"admin query", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", token(t, v, models.RoleAdmin))
			r.URL.RawQuery = q.Encode()
		}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	require.NotNil(t, seen)
	assert.Equal(t, models.RoleAdmin, seen.Role)
}

func TestMeEndpoint(t *testing.T) {
	v := NewVerifier("secret", "")
	h := NewHandler(NewMiddleware(v))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, v, models.RoleModerator))
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"subject":"user-1","email":"","role":"MODERATOR","canEdit":true}`, rec.Body.String())
}
