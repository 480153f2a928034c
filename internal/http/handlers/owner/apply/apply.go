// Package apply принимает заявку на роль владельца групп.
package apply

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/nexus/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nexus/internal/http/request"
	"github.com/magabrotheeeer/nexus/internal/http/response"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
)

// Service сохраняет заявку.
type Service interface {
	ApplyOwner(ctx context.Context, req models.OwnerApplyRequest) (*models.OwnerApplication, error)
}

// Handler обрабатывает POST /api/owner/apply.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	ttl      time.Duration
	secure   bool
}

// New создает новый экземпляр Handler. ttl задаёт время жизни cookie
// owner_pending_id.
func New(log *slog.Logger, service Service, ttl time.Duration, secure bool) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		ttl:      ttl,
		secure:   secure,
	}
}

// ServeHTTP godoc
// @Summary Подать заявку владельца
// @Description Создаёт заявку в статусе PENDING и запоминает её ID в cookie.
// @Tags Owner
// @Accept  json
// @Produce  json
// @Param request body models.OwnerApplyRequest true "Данные заявителя"
// @Success 201 {object} response.Response "Заявка создана"
// @Failure 409 {object} response.ErrorResponse "Заявка с такой почтой уже есть"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /owner/apply [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.owner.apply"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.OwnerApplyRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	app, err := h.service.ApplyOwner(r.Context(), req)
	if err != nil {
		log.Error("failed to apply", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	middlewarectx.SetCookie(w, middlewarectx.OwnerPendingCookie, app.ID, h.ttl, h.secure)
	log.Info("owner application created", slog.String("application_id", app.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK(app))
}
