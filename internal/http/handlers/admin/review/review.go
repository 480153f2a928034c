// Package review реализует решение администратора по заявке владельца.
//
// Маршрут /api/admin/applications/{id}/{decision}, где decision равен
// approve или reject. Тело с заметкой необязательно.
package review

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/nexus/internal/http/request"
	"github.com/magabrotheeeer/nexus/internal/http/response"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// Решения, принимаемые в пути запроса.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Service меняет статус заявки.
type Service interface {
	Approve(ctx context.Context, id, note string) (*models.OwnerApplication, error)
	Reject(ctx context.Context, id, note string) (*models.OwnerApplication, error)
}

// Handler обрабатывает POST /api/admin/applications/{id}/{decision}.
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
// @Summary Одобрить или отклонить заявку
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID заявки"
// @Param decision path string true "approve или reject"
// @Param request body models.ReviewRequest false "Заметка администратора"
// @Success 200 {object} response.Response "Обновлённая заявка"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 409 {object} response.ErrorResponse "Заявка уже рассмотрена"
// @Router /admin/applications/{id}/{decision} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.review"

	id := chi.URLParam(r, "id")
	decision := chi.URLParam(r, "decision")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("application_id", id),
		slog.String("decision", decision),
	)

	var req models.ReviewRequest
	if r.ContentLength != 0 {
		if !request.Decode(w, r, log, h.validate, &req) {
			return
		}
	}

	var (
		app *models.OwnerApplication
		err error
	)
	switch decision {
	case DecisionApprove:
		app, err = h.service.Approve(r.Context(), id, req.Note)
	case DecisionReject:
		app, err = h.service.Reject(r.Context(), id, req.Note)
	default:
		log.Info("unknown decision")
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("not found"))
		return
	}
	if err != nil {
		log.Error("review failed", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("application reviewed", slog.String("status", string(app.Status)))
	render.JSON(w, r, response.OK(app))
}
