// Package savetoken сохраняет токен карты после проверочного платежа.
package savetoken

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

// Service проверяет подпись платежа и сохраняет токен.
type Service interface {
	SaveToken(ctx context.Context, authID string, payload models.TokenPayload) (string, error)
}

// Handler обрабатывает POST /api/razorpay/save-token.
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
// @Summary Сохранить платёжный метод
// @Description Проверяет подпись платежа, сохраняет токен и начинает пробный период.
// @Tags Payment
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.TokenPayload true "Данные платежа от шлюза"
// @Success 200 {object} response.Response "tokenId"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись"
// @Failure 500 {object} response.ErrorResponse "Ошибка шлюза"
// @Router /razorpay/save-token [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.savetoken"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var payload models.TokenPayload
	if !request.Decode(w, r, log, h.validate, &payload) {
		return
	}

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.WriteError(w, r, models.ErrUnauthorized)
		return
	}

	tokenID, err := h.service.SaveToken(r.Context(), principal.ID, payload)
	if err != nil {
		log.Error("failed to save token", slog.String("payment_ref", payload.PaymentRef), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("payment method saved", slog.String("auth_id", principal.ID))
	render.JSON(w, r, response.OK(map[string]string{"tokenId": tokenID}))
}
