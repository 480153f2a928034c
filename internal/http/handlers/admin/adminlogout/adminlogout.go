// Package adminlogout реализует выход администратора.
package adminlogout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nexus/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nexus/internal/http/response"
)

// Handler сбрасывает cookie admin_session.
type Handler struct {
	log    *slog.Logger
	secure bool
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, secure bool) *Handler {
	return &Handler{log: log, secure: secure}
}

// ServeHTTP godoc
// @Summary Выход администратора
// @Tags Admin
// @Produce  json
// @Success 200 {object} response.Response "Сессия сброшена"
// @Router /admin/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.adminlogout"

	middlewarectx.ClearCookie(w, middlewarectx.AdminSessionCookie, h.secure)
	h.log.Info("admin logged out",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	render.JSON(w, r, response.OK(nil))
}
