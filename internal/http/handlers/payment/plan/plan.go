// Package plan создаёт тарифный план в платёжном шлюзе. Доступен администратору.
package plan

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/nexus/internal/http/request"
	"github.com/magabrotheeeer/nexus/internal/http/response"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
	"github.com/magabrotheeeer/nexus/internal/paymentprovider"
)

// Service создаёт план.
type Service interface {
	CreatePlan(ctx context.Context, req models.PlanRequest) (*paymentprovider.Plan, error)
}

// Handler обрабатывает POST /api/razorpay/create-plan.
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
// @Summary Создать тарифный план
// @Tags Payment
// @Accept  json
// @Produce  json
// @Param request body models.PlanRequest true "Параметры плана"
// @Success 201 {object} response.Response "План шлюза"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка шлюза"
// @Router /razorpay/create-plan [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.plan"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.PlanRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), req)
	if err != nil {
		log.Error("failed to create plan", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("plan created", slog.String("plan_id", plan.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK(plan))
}
