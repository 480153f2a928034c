// Package ownerlogin реализует вход владельца с одобренной заявкой.
package ownerlogin

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

// Service проверяет учётные данные заявителя.
type Service interface {
	OwnerLogin(ctx context.Context, req models.LoginRequest) (*models.Session, error)
}

// Handler обрабатывает POST /api/owner/login.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	ttl      time.Duration
	secure   bool
}

// New создает новый экземпляр Handler.
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
// @Summary Вход владельца
// @Description Доступен только после одобрения заявки. Ставит cookie owner_session.
// @Tags Owner
// @Accept  json
// @Produce  json
// @Param request body models.LoginRequest true "Почта и пароль из заявки"
// @Success 200 {object} response.Response "Сессия установлена"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 403 {object} response.ErrorResponse "Заявка не одобрена"
// @Router /owner/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.owner.ownerlogin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.LoginRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	session, err := h.service.OwnerLogin(r.Context(), req)
	if err != nil {
		log.Warn("owner login failed", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	middlewarectx.SetCookie(w, middlewarectx.OwnerSessionCookie, session.Token, h.ttl, h.secure)
	log.Info("owner logged in", slog.String("application_id", session.Principal.ID))
	render.JSON(w, r, response.OK(session.Principal))
}
