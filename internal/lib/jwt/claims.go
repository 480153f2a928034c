package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/nexus/internal/models"
)

const issuer = "nexus"

// CustomClaims описывает данные сессии, хранящиеся в JWT.
type CustomClaims struct {
	Kind                 models.PrincipalKind `json:"kind"` // Вид сессии
	jwt.RegisteredClaims                      // Subject: идентичность principal
}

// GenerateToken создает JWT токен для principal, подписывая его секретным ключом.
func (j *MakerImpl) GenerateToken(principal models.Principal) (string, error) {
	const op = "jwt.GenerateToken"
	if principal.ID == "" || principal.Kind == "" {
		return "", fmt.Errorf("%s: empty principal", op)
	}
	now := time.Now()
	claims := CustomClaims{
		Kind: principal.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   principal.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит JWT токен, проверяет подпись, алгоритм и срок,
// возвращает principal, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*models.Principal, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return &models.Principal{Kind: claims.Kind, ID: claims.Subject}, nil
}
