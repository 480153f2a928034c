// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков: успешных ответов, ошибок
// и сообщений валидации в едином конверте {success, data | error}.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/nexus/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Success — признак успешного запроса.
// Поле Error — текст ошибки (при неуспехе).
// Поле RedirectTo — путь, куда клиенту следует перейти (при неуспехе).
// Поле Data — данные ответа (при успехе).
type Response struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	RedirectTo string `json:"redirectTo,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Success    bool   `json:"success" example:"false"`
	Error      string `json:"error" example:"invalid request body"`
	RedirectTo string `json:"redirectTo,omitempty" example:"/payment-setup"`
}

// Сообщения об ошибках, которые видит клиент.
const (
	MsgInvalidBody           = "invalid request body"
	MsgPaymentMethodRequired = "Payment method required"
	MsgInternal              = "internal server error"
)

// OK возвращает успешный Response с переданными данными.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{Success: false, Error: msg}
}

// ValidationError формирует Response на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "numeric":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		case "min", "max", "len":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has invalid length", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Success: false,
		Error:   strings.Join(errsMsgs, ", "),
	}
}

// FromError переводит доменную ошибку в HTTP-статус и тело ответа.
func FromError(err error) (int, Response) {
	var paymentErr *models.PaymentMethodRequiredError
	switch {
	case errors.As(err, &paymentErr):
		return http.StatusBadRequest, Response{Error: MsgPaymentMethodRequired, RedirectTo: paymentErr.RedirectTo}
	case errors.Is(err, models.ErrPaymentMethodRequired):
		return http.StatusBadRequest, Response{Error: MsgPaymentMethodRequired, RedirectTo: models.PaymentSetupPath}
	case errors.Is(err, models.ErrInvalidSignature):
		return http.StatusBadRequest, Error("invalid signature")
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, Error("invalid input")
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, Error("forbidden")
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, Error("unauthorized")
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, Error("not found")
	case errors.Is(err, models.ErrRequestInFlight):
		return http.StatusConflict, Error("group creation already in progress")
	case errors.Is(err, models.ErrAlreadyReviewed):
		return http.StatusConflict, Error("application already reviewed")
	case errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict, Error("already exists")
	case errors.Is(err, models.ErrGatewayFailure):
		return http.StatusInternalServerError, Error("payment gateway failure")
	default:
		return http.StatusInternalServerError, Error(MsgInternal)
	}
}

// WriteError пишет ошибку в ответ со статусом из FromError.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := FromError(err)
	render.Status(r, status)
	render.JSON(w, r, resp)
}
