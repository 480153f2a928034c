package models

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized сессия отсутствует или недействительна
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden идентичность не совпадает с владельцем ресурса.
	// Частный случай ErrUnauthorized, HTTP-слой отдаёт для него 403.
	ErrForbidden = fmt.Errorf("forbidden: %w", ErrUnauthorized)

	// ErrInvalidInput неверные входные данные
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidSignature подпись платежа не совпала
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrPaymentMethodRequired у пользователя нет подтверждённого платёжного метода
	ErrPaymentMethodRequired = errors.New("payment method required")

	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("not found")

	// ErrGatewayFailure платёжный шлюз отклонил запрос или недоступен
	ErrGatewayFailure = errors.New("payment gateway failure")

	// ErrRequestInFlight у владельца уже есть незавершённое создание группы
	ErrRequestInFlight = errors.New("group creation already in progress")

	// ErrAlreadyReviewed заявка уже рассмотрена
	ErrAlreadyReviewed = errors.New("application already reviewed")

	// ErrAlreadyExists запись уже существует
	ErrAlreadyExists = errors.New("already exists")
)

// PaymentSetupPath путь, на который клиент переходит для привязки карты.
const PaymentSetupPath = "/payment-setup"

// PaymentMethodRequiredError несёт подсказку для редиректа клиента.
type PaymentMethodRequiredError struct {
	RedirectTo string
}

func (e *PaymentMethodRequiredError) Error() string {
	return ErrPaymentMethodRequired.Error()
}

// Is позволяет сравнивать через errors.Is с ErrPaymentMethodRequired.
func (e *PaymentMethodRequiredError) Is(target error) bool {
	return target == ErrPaymentMethodRequired
}

// NewPaymentMethodRequired создаёт ошибку с путём настройки оплаты.
func NewPaymentMethodRequired() *PaymentMethodRequiredError {
	return &PaymentMethodRequiredError{RedirectTo: PaymentSetupPath}
}
