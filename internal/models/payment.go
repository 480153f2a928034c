package models

// TokenPayload данные, которые клиент получает от шлюза после оплаты
// проверочного платежа.
type TokenPayload struct {
	OrderRef   string `json:"razorpay_order_id" validate:"required"`
	PaymentRef string `json:"razorpay_payment_id" validate:"required"`
	Signature  string `json:"razorpay_signature" validate:"required"`
}

// PlanRequest параметры тарифного плана для групп.
type PlanRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,len=3"`
	Period   string `json:"period" validate:"required,oneof=daily weekly monthly yearly"`
	Interval int    `json:"interval" validate:"omitempty,gt=0"`
}
