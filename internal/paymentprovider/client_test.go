package paymentprovider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/nexus/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.Razorpay{
		APIURL:        srv.URL + "/",
		KeyID:         "rzp_test",
		KeySecret:     "secret",
		WebhookSecret: "whsec",
		Timeout:       2 * time.Second,
	})
}

func TestClient_CreateCustomer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/customers", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test", user)
		assert.Equal(t, "secret", pass)

		var req CreateCustomerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "9876543210", req.Contact)
		assert.Equal(t, "0", req.FailExisting)

		_, _ = w.Write([]byte(`{"id":"cust_1","name":"Alice","contact":"9876543210"}`))
	})

	customer, err := client.CreateCustomer(context.Background(), "Alice", "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "cust_1", customer.ID)
}

func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"plan does not exist"}}`))
	})

	_, err := client.CreateSubscription(context.Background(), CreateSubscriptionRequest{PlanID: "plan_x"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "BAD_REQUEST_ERROR", apiErr.Code)
	assert.Contains(t, err.Error(), "plan does not exist")
}

func TestClient_CreateSubscription(t *testing.T) {
	startAt := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC).Unix()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscriptions", r.URL.Path)
		var req CreateSubscriptionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "plan_1", req.PlanID)
		assert.Equal(t, startAt, req.StartAt)
		assert.Equal(t, "42", req.Notes["group_id"])
		_, _ = w.Write([]byte(`{"id":"sub_1","status":"created","charge_at":1742169600}`))
	})

	sub, err := client.CreateSubscription(context.Background(), CreateSubscriptionRequest{
		PlanID:     "plan_1",
		TotalCount: 12,
		StartAt:    startAt,
		Notes:      map[string]string{"group_id": "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sub_1", sub.ID)
}

func TestClient_CreateSubscription_EmptyID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"created"}`))
	})

	_, err := client.CreateSubscription(context.Background(), CreateSubscriptionRequest{PlanID: "plan_1"})
	assert.Error(t, err)
}

func TestClient_CancelSubscription(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscriptions/sub_1/cancel", r.URL.Path)
		var req map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 0, req["cancel_at_cycle_end"])
		_, _ = w.Write([]byte(`{"id":"sub_1","status":"cancelled"}`))
	})

	sub, err := client.CancelSubscription(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", sub.Status)
}

func TestClient_FetchPaymentAndRefund(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/payments/pay_1":
			assert.Equal(t, http.MethodGet, r.Method)
			_, _ = w.Write([]byte(`{"id":"pay_1","token_id":"token_1","amount":100,"currency":"INR","status":"captured"}`))
		case "/payments/pay_1/refund":
			assert.Equal(t, http.MethodPost, r.Method)
			_, _ = w.Write([]byte(`{"id":"rfnd_1","payment_id":"pay_1","amount":100}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	payment, err := client.FetchPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "token_1", payment.TokenID)

	refund, err := client.RefundPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", refund.ID)
}

func TestClient_CreatePlan(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plans", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"plan_1","period":"monthly","interval":1,"item":{"name":"Group","amount":49900,"currency":"INR"}}`))
	})

	plan, err := client.CreatePlan(context.Background(), CreatePlanRequest{
		Period:   "monthly",
		Interval: 1,
		Item:     PlanItem{Name: "Group", Amount: 49900, Currency: "INR"},
	})
	require.NoError(t, err)
	assert.Equal(t, "plan_1", plan.ID)
}

func TestClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.FetchPayment(ctx, "pay_1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
