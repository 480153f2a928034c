package checkpayment

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/nexus/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nexus/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) HasPaymentMethod(ctx context.Context, authID string) (bool, error) {
	args := m.Called(ctx, authID)
	return args.Bool(0), args.Error(1)
}

func TestCheckPaymentHandler(t *testing.T) {
	user := &models.Principal{Kind: models.KindEndUser, ID: "usr_1"}

	tests := []struct {
		name       string
		principal  *models.Principal
		has        bool
		err        error
		callSvc    bool
		wantStatus int
		wantBody   string
	}{
		{name: "has method", principal: user, has: true, callSvc: true, wantStatus: http.StatusOK,
			wantBody: `{"success":true,"data":{"hasPaymentMethod":true}}`},
		{name: "no method", principal: user, callSvc: true, wantStatus: http.StatusOK,
			wantBody: `{"success":true,"data":{"hasPaymentMethod":false}}`},
		{name: "unknown user", principal: user, callSvc: true, err: models.ErrUnauthorized,
			wantStatus: http.StatusUnauthorized, wantBody: `{"success":false,"error":"unauthorized"}`},
		{name: "anonymous", wantStatus: http.StatusUnauthorized, wantBody: `{"success":false,"error":"unauthorized"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callSvc {
				svc.On("HasPaymentMethod", mock.Anything, "usr_1").Return(tt.has, tt.err).Once()
			}
			req := httptest.NewRequest(http.MethodGet, "/api/user/check-payment-method", nil)
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
