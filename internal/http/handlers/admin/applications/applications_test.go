package applications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/nexus/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ListApplications(ctx context.Context, status string) ([]*models.OwnerApplication, error) {
	args := m.Called(ctx, status)
	apps, _ := args.Get(0).([]*models.OwnerApplication)
	return apps, args.Error(1)
}

func TestApplicationsHandler(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	pending := &models.OwnerApplication{
		ID:        "0b0f2ad4-5f5e-4d7a-9c77-2f3b8b1c0a11",
		Name:      "Ann",
		Email:     "ann@example.com",
		Phone:     "9876543210",
		Status:    models.ApplicationPending,
		CreatedAt: created,
	}

	tests := []struct {
		name       string
		query      string
		status     string
		apps       []*models.OwnerApplication
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "filter by status",
			query:      "?status=pending",
			status:     "pending",
			apps:       []*models.OwnerApplication{pending},
			wantStatus: http.StatusOK,
			wantBody: `{"success":true,"data":[{"id":"0b0f2ad4-5f5e-4d7a-9c77-2f3b8b1c0a11","name":"Ann",` +
				`"email":"ann@example.com","phone":"9876543210","status":"PENDING","created_at":"2025-03-01T09:00:00Z"}]}`,
		},
		{
			name:       "empty list",
			apps:       []*models.OwnerApplication{},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true,"data":[]}`,
		},
		{
			name:       "unknown status",
			query:      "?status=lost",
			status:     "lost",
			err:        models.ErrInvalidInput,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"error":"invalid input"}`,
		},
		{
			name:       "storage error",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"success":false,"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("ListApplications", mock.Anything, tt.status).Return(tt.apps, tt.err).Once()

			req := httptest.NewRequest(http.MethodGet, "/api/admin/applications"+tt.query, nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
