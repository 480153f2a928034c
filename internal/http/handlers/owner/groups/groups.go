// Package groups отдаёт владельцу его группы вместе с подписками.
package groups

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

// Service возвращает группы владельца.
type Service interface {
	OwnerGroups(ctx context.Context, principal *models.Principal) ([]*models.GroupWithSubscription, error)
}

// Handler обрабатывает GET /api/owner/groups.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Группы владельца
// @Tags Owner
// @Produce  json
// @Success 200 {object} response.Response "Группы с подписками"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Заявка не одобрена"
// @Router /owner/groups [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.owner.groups"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, _ := middlewarectx.PrincipalFrom(r.Context())
	groups, err := h.service.OwnerGroups(r.Context(), principal)
	if err != nil {
		log.Error("failed to list owner groups", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(groups))
}
