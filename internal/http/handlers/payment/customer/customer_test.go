package customer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/nexus/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nexus/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) RegisterCustomer(ctx context.Context, authID, phone, name string) (string, error) {
	args := m.Called(ctx, authID, phone, name)
	return args.String(0), args.Error(1)
}

func TestCustomerHandler(t *testing.T) {
	user := &models.Principal{Kind: models.KindEndUser, ID: "usr_1"}

	tests := []struct {
		name       string
		body       string
		principal  *models.Principal
		setup      func(m *ServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name:      "registered",
			body:      `{"phone":"9876543210","name":"Ann"}`,
			principal: user,
			setup: func(m *ServiceMock) {
				m.On("RegisterCustomer", mock.Anything, "usr_1", "9876543210", "Ann").Return("cust_1", nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true,"data":{"customerId":"cust_1"}}`,
		},
		{
			name:      "gateway down",
			body:      `{"phone":"9876543210"}`,
			principal: user,
			setup: func(m *ServiceMock) {
				m.On("RegisterCustomer", mock.Anything, "usr_1", "9876543210", "").
					Return("", fmt.Errorf("op: %w", models.ErrGatewayFailure)).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"success":false,"error":"payment gateway failure"}`,
		},
		{
			name:       "phone with letters",
			body:       `{"phone":"98765abc10"}`,
			principal:  user,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"success":false,"error":"field Phone can contain only numbers"}`,
		},
		{
			name:       "no session",
			body:       `{"phone":"9876543210"}`,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"success":false,"error":"unauthorized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.setup != nil {
				tt.setup(svc)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/razorpay/create-cutomer", strings.NewReader(tt.body))
			if tt.principal != nil {
				req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), tt.principal))
			}
			rec := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
