// Package jwt реализует выпуск и разбор подписанных сессионных токенов.
//
// Один формат токена обслуживает все виды сессий платформы: bearer-токен
// пользователя, cookie admin_session и cookie owner_session. Вид сессии
// хранится в claim kind, идентичность в subject.
package jwt

import (
	"time"

	"github.com/magabrotheeeer/nexus/internal/models"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для principal.
	GenerateToken(principal models.Principal) (string, error)
	// ParseToken проверяет подпись и срок и возвращает principal.
	ParseToken(tokenStr string) (*models.Principal, error)
	// TTL время жизни выпускаемых токенов.
	TTL() time.Duration
}

// MakerImpl реализует Maker на HMAC-SHA256.
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// TTL возвращает время жизни токена.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
