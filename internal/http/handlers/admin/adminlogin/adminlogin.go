// Package adminlogin реализует вход администратора. Токен сессии
// кладётся в HttpOnly cookie admin_session.
package adminlogin

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

// Service проверяет учётные данные администратора.
type Service interface {
	AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.Session, error)
}

// Handler обрабатывает POST /api/admin/login.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	ttl      time.Duration
	secure   bool
}

// New создает новый экземпляр Handler. ttl задаёт время жизни cookie.
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
// @Summary Вход администратора
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body models.AdminLoginRequest true "Учетные данные администратора"
// @Success 200 {object} response.Response "Сессия установлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.adminlogin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.AdminLoginRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	session, err := h.service.AdminLogin(r.Context(), req)
	if err != nil {
		log.Warn("admin login failed", slog.String("username", req.Username), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	middlewarectx.SetCookie(w, middlewarectx.AdminSessionCookie, session.Token, h.ttl, h.secure)
	log.Info("admin logged in", slog.String("username", req.Username))
	render.JSON(w, r, response.OK(session.Principal))
}
