package plan

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/nexus/internal/models"
	"github.com/magabrotheeeer/nexus/internal/paymentprovider"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreatePlan(ctx context.Context, req models.PlanRequest) (*paymentprovider.Plan, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*paymentprovider.Plan)
	return p, args.Error(1)
}

func TestPlanHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("created", func(t *testing.T) {
		svc := new(ServiceMock)
		req := models.PlanRequest{Name: "Group", Amount: 49900, Currency: "INR", Period: "monthly"}
		svc.On("CreatePlan", mock.Anything, req).Return(&paymentprovider.Plan{
			ID: "plan_1", Period: "monthly", Interval: 1,
			Item: paymentprovider.PlanItem{Name: "Group", Amount: 49900, Currency: "INR"},
		}, nil).Once()

		rec := httptest.NewRecorder()
		body := `{"name":"Group","amount":49900,"currency":"INR","period":"monthly"}`
		New(log, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/razorpay/create-plan", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"success":true,"data":{"id":"plan_1","period":"monthly","interval":1,`+
			`"item":{"name":"Group","amount":49900,"currency":"INR"}}}`, rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("unknown period", func(t *testing.T) {
		svc := new(ServiceMock)
		rec := httptest.NewRecorder()
		body := `{"name":"Group","amount":49900,"currency":"INR","period":"hourly"}`
		New(log, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/razorpay/create-plan", strings.NewReader(body)))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"field Period must be one of: daily weekly monthly yearly"}`, rec.Body.String())
		svc.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything)
	})
}
