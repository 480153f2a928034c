// Package status отдаёт текущий статус подписки группы.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nexus/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nexus/internal/http/request"
	"github.com/magabrotheeeer/nexus/internal/http/response"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// Service читает статус подписки.
type Service interface {
	GetStatus(ctx context.Context, groupID int64, principal *models.Principal) (*models.StatusView, error)
}

// Handler обрабатывает GET /api/groups/{id}/subscription.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статус подписки группы
// @Description Доступен владельцу группы и администратору.
// @Tags Groups
// @Produce  json
// @Param id path int true "ID группы"
// @Success 200 {object} response.Response "Статус, даты и цена"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Чужая группа"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Router /groups/{id}/subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	groupID, err := request.IDParam(r, "id")
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	principal, _ := middlewarectx.PrincipalFrom(r.Context())
	view, err := h.service.GetStatus(r.Context(), groupID, principal)
	if err != nil {
		log.Error("failed to read subscription status", slog.Int64("group_id", groupID), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(view))
}
