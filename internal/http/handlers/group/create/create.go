// Package create реализует создание группы вместе с подпиской в платёжном шлюзе.
//
// Незаполненные или неверные поля дают 400, как и отсутствие платёжного метода.
// Заголовок Idempotency-Key необязателен: повтор запроса с тем же ключом
// возвращает уже созданную пару группа+подписка и не создаёт вторую.
package create

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

// IdempotencyKeyHeader заголовок с ключом повтора.
const IdempotencyKeyHeader = "Idempotency-Key"

// Service описывает сагу создания группы.
type Service interface {
	CreateGroupWithBilling(ctx context.Context, principal *models.Principal,
		idempotencyKey string, data models.DummyGroup) (*models.GroupWithSubscription, error)
}

// Handler обрабатывает POST /api/groups/create.
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
// @Summary Создать группу
// @Description Создаёт группу и подписку. Без платёжного метода возвращает 400 с redirectTo.
// @Tags Groups
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Ключ повтора запроса"
// @Param request body models.DummyGroup true "Данные группы"
// @Success 200 {object} response.Response "Группа и подписка"
// @Failure 400 {object} response.ErrorResponse "Нет платёжного метода или не заполнены поля"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 409 {object} response.ErrorResponse "Создание уже выполняется"
// @Failure 500 {object} response.ErrorResponse "Ошибка шлюза или хранилища"
// @Router /groups/create [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var data models.DummyGroup
	if !request.Decode(w, r, log, h.validate, &data, request.WithValidationStatus(http.StatusBadRequest)) {
		return
	}

	principal, _ := middlewarectx.PrincipalFrom(r.Context())
	key := r.Header.Get(IdempotencyKeyHeader)

	res, err := h.service.CreateGroupWithBilling(r.Context(), principal, key, data)
	if err != nil {
		log.Error("failed to create group", slog.String("idempotency_key", key), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("group created",
		slog.Int64("group_id", res.Group.ID),
		slog.String("status", string(res.Subscription.Status)),
	)
	render.JSON(w, r, response.OK(res))
}
