// Package explore реализует публичный каталог групп с поиском и пагинацией.
package explore

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nexus/internal/http/response"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// Service ищет группы в каталоге.
type Service interface {
	Explore(ctx context.Context, filter models.ExploreFilter) (*models.ExplorePage, error)
}

// Handler обрабатывает GET /api/groups/explore.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог групп
// @Tags Groups
// @Produce  json
// @Param page query int false "Номер страницы, с 1"
// @Param limit query int false "Размер страницы, до 50"
// @Param search query string false "Поиск по названию и описанию"
// @Param category query string false "Категория"
// @Success 200 {object} response.Response "Группы и пагинация"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /groups/explore [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.explore"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	// нечисловые page и limit трактуются как отсутствующие
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	filter := models.ExploreFilter{
		Page:     page,
		Limit:    limit,
		Search:   q.Get("search"),
		Category: q.Get("category"),
	}

	res, err := h.service.Explore(r.Context(), filter)
	if err != nil {
		log.Error("failed to explore groups", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(res))
}
