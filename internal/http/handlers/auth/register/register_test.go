package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

func (m *ServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	valid := models.RegisterRequest{Username: "user1", Password: "password123", Email: "user1@example.com"}

	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantBody       string
	}{
		{
			name:        "valid registration",
			requestBody: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, valid).Return(&models.Session{
					Token:     "jwt",
					Principal: models.Principal{Kind: models.KindEndUser, ID: "usr_1"},
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantBody:       `{"success":true,"data":{"token":"jwt","principal":{"kind":"end_user","id":"usr_1"}}}`,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"success":false,"error":"invalid request body"}`,
		},
		{
			name:           "validation error - missing password",
			requestBody:    models.RegisterRequest{Username: "user1", Email: "user1@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBody:       `{"success":false,"error":"field Password is a required field"}`,
		},
		{
			name:        "duplicate email",
			requestBody: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, valid).Return(nil, models.ErrAlreadyExists).Once()
			},
			wantStatusCode: http.StatusConflict,
			wantBody:       `{"success":false,"error":"already exists"}`,
		},
		{
			name:        "storage error",
			requestBody: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, valid).Return(nil, errors.New("db down")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       `{"success":false,"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}
			handler := New(newNoopLogger(), svc)

			var body []byte
			switch v := tt.requestBody.(type) {
			case string:
				body = []byte(v)
			default:
				var err error
				body, err = json.Marshal(v)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
