// Package application показывает заявителю статус его заявки.
package application

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

// Service ищет заявку по ID.
type Service interface {
	GetApplication(ctx context.Context, id string) (*models.OwnerApplication, error)
}

// Handler обрабатывает GET /api/owner/application.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статус заявки владельца
// @Description ID берётся из cookie owner_pending_id или параметра id.
// @Tags Owner
// @Produce  json
// @Param id query string false "ID заявки"
// @Success 200 {object} response.Response "Заявка"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Router /owner/application [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.owner.application"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := r.URL.Query().Get("id")
	if id == "" {
		if c, err := r.Cookie(middlewarectx.OwnerPendingCookie); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		log.Info("no pending application")
		response.WriteError(w, r, models.ErrNotFound)
		return
	}

	app, err := h.service.GetApplication(r.Context(), id)
	if err != nil {
		log.Error("failed to get application", slog.String("application_id", id), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(app))
}
