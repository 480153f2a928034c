// Package middlewarectx содержит HTTP middleware аутентификации и ограничения
// частоты запросов.
//
// Authenticate один раз на запрос определяет principal через IdentityResolver
// и кладёт его в контекст. RequireKind пропускает запрос дальше, только если
// principal есть и его вид входит в список разрешённых, иначе отвечает
// 401 Unauthorized или 403 Forbidden.
package middlewarectx

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

// Key тип для ключей контекста HTTP-запроса.
type Key string

// PrincipalKey ключ principal в контексте.
const PrincipalKey Key = "principal"

// WithPrincipal возвращает контекст с principal.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFrom достаёт principal из контекста.
func PrincipalFrom(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*models.Principal)
	return p, ok && p != nil
}

// Authenticate определяет principal запроса. Запрос без сессии или с
// недействительной сессией проходит дальше анонимно.
func Authenticate(resolver IdentityResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"

			principal, err := resolver.Resolve(r)
			if err != nil {
				log.Debug("session rejected",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
			}
			if principal == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireKind пропускает только principal одного из видов kinds.
func RequireKind(log *slog.Logger, kinds ...models.PrincipalKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireKind"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				log.Info("missing or invalid session")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			if !principal.Is(kinds...) {
				log.Info("session kind not allowed", slog.String("kind", string(principal.Kind)))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
