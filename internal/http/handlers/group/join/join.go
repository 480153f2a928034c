// Package join добавляет пользователя в участники группы.
package join

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

// Service добавляет участника.
type Service interface {
	Join(ctx context.Context, principal *models.Principal, groupID int64) error
}

// Handler обрабатывает POST /api/groups/{id}/join.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Вступить в группу
// @Tags Groups
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID группы"
// @Success 200 {object} response.Response "Пользователь в группе"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Группа не найдена"
// @Router /groups/{id}/join [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.join"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	groupID, err := request.IDParam(r, "id")
	if err != nil {
		log.Info("bad group id", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	principal, _ := middlewarectx.PrincipalFrom(r.Context())
	if err := h.service.Join(r.Context(), principal, groupID); err != nil {
		log.Error("failed to join group", slog.Int64("group_id", groupID), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("joined group", slog.Int64("group_id", groupID))
	render.JSON(w, r, response.OK(map[string]int64{"groupId": groupID}))
}
