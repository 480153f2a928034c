// Package cancel отменяет подписку группы по запросу владельца.
package cancel

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

// Request тело запроса отмены.
type Request struct {
	GroupID int64 `json:"groupId" validate:"required,gt=0"`
}

// Service отменяет подписку.
type Service interface {
	Cancel(ctx context.Context, groupID int64, principal *models.Principal) error
}

// Handler обрабатывает POST /api/razorpay/cancel-subscription.
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
// @Summary Отменить подписку группы
// @Description Отменяет подписку в шлюзе, затем локально. Повторная отмена успешна.
// @Tags Payment
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "ID группы"
// @Success 200 {object} response.Response "Подписка отменена"
// @Failure 403 {object} response.ErrorResponse "Чужая группа"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка шлюза"
// @Router /razorpay/cancel-subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.cancel"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	principal, _ := middlewarectx.PrincipalFrom(r.Context())
	if err := h.service.Cancel(r.Context(), req.GroupID, principal); err != nil {
		log.Error("failed to cancel subscription", slog.Int64("group_id", req.GroupID), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("subscription cancelled", slog.Int64("group_id", req.GroupID))
	render.JSON(w, r, response.OK(map[string]any{
		"groupId": req.GroupID,
		"status":  models.StatusCancelled,
	}))
}
