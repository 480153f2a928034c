package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/nexus/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nexus/internal/lib/jwt"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// jwtValidator проверяет токены настоящим jwt.Maker.
type jwtValidator struct {
	maker jwt.Maker
}

func (v jwtValidator) ValidateToken(_ context.Context, token string) (*models.Principal, error) {
	p, err := v.maker.ParseToken(token)
	if err != nil {
		return nil, errors.Join(models.ErrUnauthorized, err)
	}
	return p, nil
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAuthenticateAndRequireKind(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	token := func(kind models.PrincipalKind, id string) string {
		s, err := maker.GenerateToken(models.Principal{Kind: kind, ID: id})
		require.NoError(t, err)
		return s
	}
	userToken := token(models.KindEndUser, "usr_1")
	adminToken := token(models.KindAdmin, "root")
	ownerToken := token(models.KindOwner, "app-1")

	resolver := middlewarectx.NewSessionResolver(jwtValidator{maker: maker})
	logger := newNoopLogger()

	tests := []struct {
		name       string
		kinds      []models.PrincipalKind
		prepare    func(r *http.Request)
		wantStatus int
		wantID     string
	}{
		{
			name:       "no session",
			kinds:      []models.PrincipalKind{models.KindEndUser},
			prepare:    func(_ *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:  "bearer user",
			kinds: []models.PrincipalKind{models.KindEndUser},
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+userToken)
			},
			wantStatus: http.StatusOK,
			wantID:     "usr_1",
		},
		{
			name:  "malformed header",
			kinds: []models.PrincipalKind{models.KindEndUser},
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Basic "+userToken)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:  "tampered bearer",
			kinds: []models.PrincipalKind{models.KindEndUser},
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+userToken+"x")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:  "admin cookie on admin route",
			kinds: []models.PrincipalKind{models.KindAdmin},
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: middlewarectx.AdminSessionCookie, Value: adminToken})
			},
			wantStatus: http.StatusOK,
			wantID:     "root",
		},
		{
			name:  "owner token in admin cookie",
			kinds: []models.PrincipalKind{models.KindAdmin},
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: middlewarectx.AdminSessionCookie, Value: ownerToken})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:  "user on admin route",
			kinds: []models.PrincipalKind{models.KindAdmin},
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+userToken)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:  "admin on shared route",
			kinds: []models.PrincipalKind{models.KindEndUser, models.KindAdmin},
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: middlewarectx.AdminSessionCookie, Value: adminToken})
			},
			wantStatus: http.StatusOK,
			wantID:     "root",
		},
		{
			name:  "stale bearer with valid owner cookie",
			kinds: []models.PrincipalKind{models.KindOwner},
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer broken")
				r.AddCookie(&http.Cookie{Name: middlewarectx.OwnerSessionCookie, Value: ownerToken})
			},
			wantStatus: http.StatusOK,
			wantID:     "app-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				p, ok := middlewarectx.PrincipalFrom(r.Context())
				require.True(t, ok)
				gotID = p.ID
				w.WriteHeader(http.StatusOK)
			})
			h := middlewarectx.Authenticate(resolver, logger)(middlewarectx.RequireKind(logger, tt.kinds...)(next))

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantID, gotID)
		})
	}
}

func TestAuthenticate_AnonymousPassesThrough(t *testing.T) {
	resolver := middlewarectx.NewSessionResolver(jwtValidator{maker: jwt.NewJWTMaker("k", time.Hour)})
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := middlewarectx.PrincipalFrom(r.Context())
		assert.False(t, ok)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/groups/explore", nil)
	req.Header.Set("Authorization", "Bearer expired")
	middlewarectx.Authenticate(resolver, newNoopLogger())(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
}

func TestRateLimitMiddleware(t *testing.T) {
	h := middlewarectx.RateLimitMiddleware(newNoopLogger(), 0.001, 2)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
