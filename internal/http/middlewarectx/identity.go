package middlewarectx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/nexus/internal/models"
)

// Имена cookie сессий.
const (
	AdminSessionCookie = "admin_session"
	OwnerSessionCookie = "owner_session"
	OwnerPendingCookie = "owner_pending_id"
)

// BearerResolver читает токен пользователя из заголовка Authorization.
type BearerResolver struct {
	Validator TokenValidator
}

// Resolve реализует IdentityResolver.
func (b BearerResolver) Resolve(r *http.Request) (*models.Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, fmt.Errorf("malformed authorization header: %w", models.ErrUnauthorized)
	}
	return expectKind(b.Validator, r, token, models.KindEndUser)
}

// CookieResolver читает токен сессии из cookie Name и принимает только
// principal вида Kind.
type CookieResolver struct {
	Name      string
	Kind      models.PrincipalKind
	Validator TokenValidator
}

// Resolve реализует IdentityResolver.
func (c CookieResolver) Resolve(r *http.Request) (*models.Principal, error) {
	cookie, err := r.Cookie(c.Name)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && cookie.Value == "") {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cookie %s: %w", c.Name, models.ErrUnauthorized)
	}
	return expectKind(c.Validator, r, cookie.Value, c.Kind)
}

func expectKind(v TokenValidator, r *http.Request, token string, kind models.PrincipalKind) (*models.Principal, error) {
	principal, err := v.ValidateToken(r.Context(), token)
	if err != nil {
		return nil, err
	}
	if principal.Kind != kind {
		return nil, fmt.Errorf("session kind %s where %s expected: %w", principal.Kind, kind, models.ErrUnauthorized)
	}
	return principal, nil
}

// ChainResolver опрашивает резолверы по порядку и возвращает первый найденный
// principal. Ошибка возвращается, только если ни один резолвер не нашёл principal.
type ChainResolver []IdentityResolver

// Resolve реализует IdentityResolver.
func (c ChainResolver) Resolve(r *http.Request) (*models.Principal, error) {
	var errs []error
	for _, res := range c {
		principal, err := res.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if principal != nil {
			return principal, nil
		}
	}
	return nil, errors.Join(errs...)
}

// NewSessionResolver собирает цепочку: bearer-токен, затем cookie администратора
// и владельца.
func NewSessionResolver(v TokenValidator) ChainResolver {
	return ChainResolver{
		BearerResolver{Validator: v},
		CookieResolver{Name: AdminSessionCookie, Kind: models.KindAdmin, Validator: v},
		CookieResolver{Name: OwnerSessionCookie, Kind: models.KindOwner, Validator: v},
	}
}
