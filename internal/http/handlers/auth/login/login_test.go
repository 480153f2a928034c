package login

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/nexus/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.Session)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	creds := models.LoginRequest{Email: "user1@example.com", Password: "password123"}

	tests := []struct {
		name           string
		requestBody    any
		mockResp       *models.Session
		mockErr        error
		callService    bool
		wantStatusCode int
		wantBody       string
	}{
		{
			name:        "valid login",
			requestBody: creds,
			mockResp: &models.Session{
				Token:     "tok",
				Principal: models.Principal{Kind: models.KindEndUser, ID: "usr_1"},
			},
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"success":true,"data":{"token":"tok","principal":{"kind":"end_user","id":"usr_1"}}}`,
		},
		{
			name:           "invalid json body",
			requestBody:    "invalid json",
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"success":false,"error":"invalid request body"}`,
		},
		{
			name:           "bad email",
			requestBody:    models.LoginRequest{Email: "nope", Password: "password123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBody:       `{"success":false,"error":"field Email must be a valid email"}`,
		},
		{
			name:           "wrong password",
			requestBody:    creds,
			mockErr:        fmt.Errorf("services.auth.Login: %w", models.ErrUnauthorized),
			callService:    true,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"success":false,"error":"unauthorized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callService {
				svc.On("Login", mock.Anything, creds).Return(tt.mockResp, tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), svc)

			var body []byte
			if s, ok := tt.requestBody.(string); ok {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tt.requestBody)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
