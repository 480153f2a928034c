// Package services регистрирует платёжный метод пользователя в шлюзе:
// клиента, токен проверенной карты и возврат проверочного платежа.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/magabrotheeeer/nexus/internal/config"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
	"github.com/magabrotheeeer/nexus/internal/paymentprovider"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// UserRepository описывает операции с пользователями, нужные регистратору.
type UserRepository interface {
	GetUserByAuthID(ctx context.Context, authID string) (*models.User, error)
	SetCustomerRef(ctx context.Context, userUID, customerRef, phone string) (string, error)
	SaveToken(ctx context.Context, userUID, tokenRef string, trialEnd time.Time) error
}

// Gateway операции платёжного шлюза.
type Gateway interface {
	CreateCustomer(ctx context.Context, name, contact string) (*paymentprovider.Customer, error)
	FetchPayment(ctx context.Context, paymentID string) (*paymentprovider.Payment, error)
	RefundPayment(ctx context.Context, paymentID string) (*paymentprovider.Refund, error)
	CreatePlan(ctx context.Context, req paymentprovider.CreatePlanRequest) (*paymentprovider.Plan, error)
	VerifyPaymentSignature(orderRef, paymentRef, signature string) bool
}

// Service регистратор платёжного метода.
type Service struct {
	users       UserRepository
	gateway     Gateway
	trialPeriod time.Duration
	log         *slog.Logger
	now         func() time.Time
}

// NewService создаёт регистратор.
func NewService(users UserRepository, gateway Gateway, billing config.Billing, log *slog.Logger) *Service {
	return &Service{
		users:       users,
		gateway:     gateway,
		trialPeriod: billing.TrialPeriod,
		log:         log,
		now:         time.Now,
	}
}

func (s *Service) user(ctx context.Context, authID string) (*models.User, error) {
	u, err := s.users.GetUserByAuthID(ctx, authID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthorized
	}
	return u, err
}

// HasPaymentMethod сообщает, есть ли у пользователя и клиент, и токен.
func (s *Service) HasPaymentMethod(ctx context.Context, authID string) (bool, error) {
	const op = "services.payment.HasPaymentMethod"
	u, err := s.user(ctx, authID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return u.HasPaymentMethod(), nil
}

// RegisterCustomer создаёт клиента шлюза для пользователя. Повторный вызов
// возвращает уже сохранённую ссылку без обращения к шлюзу.
func (s *Service) RegisterCustomer(ctx context.Context, authID, phone, name string) (string, error) {
	const op = "services.payment.RegisterCustomer"
	log := s.log.With(slog.String("op", op))

	if !phonePattern.MatchString(phone) {
		return "", fmt.Errorf("%s: phone must be exactly 10 digits: %w", op, models.ErrInvalidInput)
	}

	u, err := s.user(ctx, authID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if u.CustomerRef != "" {
		return u.CustomerRef, nil
	}

	if strings.TrimSpace(name) == "" {
		name = u.Username
	}
	customer, err := s.gateway.CreateCustomer(ctx, name, phone)
	if err != nil {
		log.Error("failed to create customer", sl.Err(err))
		return "", fmt.Errorf("%s: %w: %w", op, models.ErrGatewayFailure, err)
	}

	stored, err := s.users.SetCustomerRef(ctx, u.UUID, customer.ID, phone)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if stored != customer.ID {
		log.Info("customer already registered concurrently", slog.String("customer_ref", stored))
	}
	return stored, nil
}

// SaveToken проверяет подпись проверочного платежа, сохраняет токен карты
// и начинает пробный период. Проверочный платёж возвращается, ошибка
// возврата только логируется.
func (s *Service) SaveToken(ctx context.Context, authID string, payload models.TokenPayload) (string, error) {
	const op = "services.payment.SaveToken"
	log := s.log.With(slog.String("op", op))

	if !s.gateway.VerifyPaymentSignature(payload.OrderRef, payload.PaymentRef, payload.Signature) {
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidSignature)
	}

	u, err := s.user(ctx, authID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	payment, err := s.gateway.FetchPayment(ctx, payload.PaymentRef)
	if err != nil {
		log.Error("failed to fetch payment", sl.Err(err))
		return "", fmt.Errorf("%s: %w: %w", op, models.ErrGatewayFailure, err)
	}
	if payment.TokenID == "" {
		return "", fmt.Errorf("%s: payment %s has no token: %w", op, payment.ID, models.ErrGatewayFailure)
	}

	trialEnd := s.now().Add(s.trialPeriod)
	if err := s.users.SaveToken(ctx, u.UUID, payment.TokenID, trialEnd); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.gateway.RefundPayment(ctx, payload.PaymentRef); err != nil {
		log.Warn("failed to refund validation payment",
			slog.String("payment_ref", payload.PaymentRef), sl.Err(err))
	}
	return payment.TokenID, nil
}

// CreatePlan создаёт тарифный план подписки групп.
func (s *Service) CreatePlan(ctx context.Context, req models.PlanRequest) (*paymentprovider.Plan, error) {
	const op = "services.payment.CreatePlan"
	interval := req.Interval
	if interval == 0 {
		interval = 1
	}
	plan, err := s.gateway.CreatePlan(ctx, paymentprovider.CreatePlanRequest{
		Period:   req.Period,
		Interval: interval,
		Item: paymentprovider.PlanItem{
			Name:     req.Name,
			Amount:   req.Amount,
			Currency: strings.ToUpper(req.Currency),
		},
	})
	if err != nil {
		s.log.Error("failed to create plan", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrGatewayFailure, err)
	}
	return plan, nil
}
