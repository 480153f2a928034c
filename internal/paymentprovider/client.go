// Package paymentprovider реализует клиент REST API платёжного шлюза:
// клиенты, платежи, возвраты, тарифные планы и подписки, а также проверку
// подписей платежей и вебхуков.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/magabrotheeeer/nexus/internal/config"
)

// APIError ошибка, которую вернул шлюз.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway error %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// Client клиент платёжного шлюза.
type Client struct {
	keyID         string
	keySecret     string
	webhookSecret string
	apiURL        string
	httpClient    *http.Client
}

// NewClient создаёт клиент с таймаутом на каждый вызов шлюза.
func NewClient(cfg config.Razorpay) *Client {
	return &Client{
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		apiURL:        strings.TrimRight(cfg.APIURL, "/"),
		httpClient:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er errorResponse
		if json.NewDecoder(resp.Body).Decode(&er) == nil {
			apiErr.Code = er.Error.Code
			apiErr.Description = er.Error.Description
		}
		return apiErr
	}

	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// CreateCustomer создаёт клиента шлюза. Если клиент с таким контактом
// уже есть, шлюз возвращает существующего.
func (c *Client) CreateCustomer(ctx context.Context, name, contact string) (*Customer, error) {
	const op = "paymentprovider.CreateCustomer"
	var customer Customer
	req := CreateCustomerRequest{Name: name, Contact: contact, FailExisting: "0"}
	if err := c.do(ctx, http.MethodPost, "/customers", req, &customer); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &customer, nil
}

// FetchPayment возвращает платёж по ID.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	const op = "paymentprovider.FetchPayment"
	var payment Payment
	if err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, &payment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &payment, nil
}

// RefundPayment возвращает платёж целиком.
func (c *Client) RefundPayment(ctx context.Context, paymentID string) (*Refund, error) {
	const op = "paymentprovider.RefundPayment"
	var refund Refund
	if err := c.do(ctx, http.MethodPost, "/payments/"+url.PathEscape(paymentID)+"/refund", refundRequest{}, &refund); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &refund, nil
}

// CreatePlan создаёт тарифный план.
func (c *Client) CreatePlan(ctx context.Context, req CreatePlanRequest) (*Plan, error) {
	const op = "paymentprovider.CreatePlan"
	var plan Plan
	if err := c.do(ctx, http.MethodPost, "/plans", req, &plan); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

// CreateSubscription создаёт подписку по тарифному плану.
func (c *Client) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*Subscription, error) {
	const op = "paymentprovider.CreateSubscription"
	var sub Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions", req, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub.ID == "" {
		return nil, fmt.Errorf("%s: empty subscription id", op)
	}
	return &sub, nil
}

// CancelSubscription отменяет подписку немедленно, не дожидаясь конца периода.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	const op = "paymentprovider.CancelSubscription"
	var sub Subscription
	path := "/subscriptions/" + url.PathEscape(subscriptionID) + "/cancel"
	if err := c.do(ctx, http.MethodPost, path, cancelSubscriptionRequest{CancelAtCycleEnd: 0}, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}
