// Package applications отдаёт администратору список заявок владельцев.
package applications

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nexus/internal/http/response"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// Service возвращает заявки с опциональным фильтром по статусу.
type Service interface {
	ListApplications(ctx context.Context, status string) ([]*models.OwnerApplication, error)
}

// Handler обрабатывает GET /api/admin/applications.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список заявок владельцев
// @Tags Admin
// @Produce  json
// @Param status query string false "PENDING, APPROVED или REJECTED"
// @Success 200 {object} response.Response "Заявки"
// @Failure 400 {object} response.ErrorResponse "Неизвестный статус"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Не администратор"
// @Router /admin/applications [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.applications"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	status := r.URL.Query().Get("status")
	apps, err := h.service.ListApplications(r.Context(), status)
	if err != nil {
		log.Error("failed to list applications", slog.String("status", status), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("applications listed", slog.Int("count", len(apps)))
	render.JSON(w, r, response.OK(apps))
}
