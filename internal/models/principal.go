package models

// PrincipalKind тип аутентифицированной стороны запроса.
type PrincipalKind string

const (
	// KindEndUser пользователь платформы (bearer-токен).
	KindEndUser PrincipalKind = "end_user"
	// KindAdmin администратор (cookie admin_session).
	KindAdmin PrincipalKind = "admin"
	// KindOwner одобренный владелец (cookie owner_session).
	KindOwner PrincipalKind = "owner"
)

// Principal описывает, кто выполняет запрос.
// Для KindEndUser ID это внешний auth_id пользователя,
// для KindOwner ID заявки, для KindAdmin имя администратора.
type Principal struct {
	Kind PrincipalKind `json:"kind"`
	ID   string        `json:"id"`
}

// Is сообщает, относится ли principal к одному из типов.
func (p *Principal) Is(kinds ...PrincipalKind) bool {
	if p == nil {
		return false
	}
	for _, k := range kinds {
		if p.Kind == k {
			return true
		}
	}
	return false
}
