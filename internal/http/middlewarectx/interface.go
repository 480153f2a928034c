package middlewarectx

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/nexus/internal/models"
)

// TokenValidator проверяет токен сессии.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.Principal, error)
}

// IdentityResolver определяет, кто выполняет запрос.
// Возвращает nil без ошибки, если в запросе нет данных этого вида сессии.
type IdentityResolver interface {
	Resolve(r *http.Request) (*models.Principal, error)
}
