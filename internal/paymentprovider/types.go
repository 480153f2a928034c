package paymentprovider

// CreateCustomerRequest запрос на создание клиента шлюза.
type CreateCustomerRequest struct {
	Name         string `json:"name"`
	Contact      string `json:"contact"`
	Email        string `json:"email,omitempty"`
	FailExisting string `json:"fail_existing"`
}

// Customer клиент шлюза.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// Payment платёж, через который пользователь подтвердил карту.
type Payment struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	TokenID    string `json:"token_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
}

// Refund возврат платежа.
type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// PlanItem позиция тарифного плана.
type PlanItem struct {
	Name        string `json:"name"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
}

// CreatePlanRequest запрос на создание тарифного плана.
type CreatePlanRequest struct {
	Period   string   `json:"period"`
	Interval int      `json:"interval"`
	Item     PlanItem `json:"item"`
}

// Plan тарифный план.
type Plan struct {
	ID       string   `json:"id"`
	Period   string   `json:"period"`
	Interval int      `json:"interval"`
	Item     PlanItem `json:"item"`
}

// CreateSubscriptionRequest запрос на создание подписки.
// StartAt unix-время первого списания, то есть конец пробного периода.
type CreateSubscriptionRequest struct {
	PlanID         string            `json:"plan_id"`
	CustomerID     string            `json:"customer_id,omitempty"`
	TotalCount     int               `json:"total_count"`
	CustomerNotify int               `json:"customer_notify"`
	StartAt        int64             `json:"start_at,omitempty"`
	Notes          map[string]string `json:"notes,omitempty"`
}

// Subscription подписка в шлюзе.
type Subscription struct {
	ID         string `json:"id"`
	PlanID     string `json:"plan_id"`
	CustomerID string `json:"customer_id"`
	Status     string `json:"status"`
	StartAt    int64  `json:"start_at"`
	ChargeAt   int64  `json:"charge_at"`
	CurrentEnd int64  `json:"current_end"`
}

type cancelSubscriptionRequest struct {
	CancelAtCycleEnd int `json:"cancel_at_cycle_end"`
}

type refundRequest struct {
	Amount int64 `json:"amount,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// WebhookEvent событие, присылаемое шлюзом.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Subscription struct {
			Entity Subscription `json:"entity"`
		} `json:"subscription"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}
