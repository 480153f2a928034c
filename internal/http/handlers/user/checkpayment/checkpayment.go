// Package checkpayment сообщает, привязан ли у пользователя платёжный метод.
package checkpayment

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nexus/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nexus/internal/http/response"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// Service проверяет платёжный метод.
type Service interface {
	HasPaymentMethod(ctx context.Context, authID string) (bool, error)
}

// Handler обрабатывает GET /api/user/check-payment-method.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Есть ли платёжный метод
// @Tags User
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "hasPaymentMethod"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /user/check-payment-method [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.checkpayment"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.WriteError(w, r, models.ErrUnauthorized)
		return
	}

	has, err := h.service.HasPaymentMethod(r.Context(), principal.ID)
	if err != nil {
		log.Error("failed to check payment method", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(map[string]bool{"hasPaymentMethod": has}))
}
