// Package customer регистрирует пользователя клиентом платёжного шлюза.
package customer

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/nexus/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nexus/internal/http/request"
	"github.com/magabrotheeeer/nexus/internal/http/response"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// Request тело запроса. Имя необязательно, по умолчанию берётся username.
type Request struct {
	Phone string `json:"phone" validate:"required,numeric,len=10"`
	Name  string `json:"name,omitempty" validate:"omitempty,max=100"`
}

// Service создаёт клиента шлюза.
type Service interface {
	RegisterCustomer(ctx context.Context, authID, phone, name string) (string, error)
}

// Handler обрабатывает POST /api/razorpay/create-cutomer.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать клиента платёжного шлюза
// @Description Повторный вызов возвращает уже сохранённый customerId.
// @Tags Payment
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Телефон и имя"
// @Success 200 {object} response.Response "customerId"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка шлюза"
// @Router /razorpay/create-cutomer [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.customer"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.WriteError(w, r, models.ErrUnauthorized)
		return
	}

	customerID, err := h.service.RegisterCustomer(r.Context(), principal.ID, req.Phone, req.Name)
	if err != nil {
		log.Error("failed to register customer", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("customer registered", slog.String("customer_ref", customerID))
	render.JSON(w, r, response.OK(map[string]string{"customerId": customerID}))
}
