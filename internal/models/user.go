// Package models содержит доменные структуры платформы: пользователей, группы,
// подписки групп, заявки владельцев и журнал создания групп.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя платформы.
type User struct {
	UUID         string     `json:"uid"`                      // Уникальный идентификатор пользователя
	AuthID       string     `json:"auth_id"`                  // Внешний идентификатор у провайдера аутентификации
	Email        string     `json:"email"`                    // Электронная почта
	Username     string     `json:"username"`                 // Имя пользователя (уникальное)
	PasswordHash string     `json:"-"`                        // Хэш пароля пользователя
	Phone        string     `json:"phone,omitempty"`          // Телефон для платёжного шлюза
	CustomerRef  string     `json:"customer_ref,omitempty"`   // Идентификатор клиента в платёжном шлюзе
	TokenRef     string     `json:"token_ref,omitempty"`      // Токен проверенного платёжного метода
	TrialEndDate *time.Time `json:"trial_end_date,omitempty"` // Дата окончания пробного периода
	CreatedAt    time.Time  `json:"created_at"`
}

// HasPaymentMethod сообщает, подтверждён ли у пользователя платёжный метод.
// Группы может создавать только пользователь с customer и token одновременно.
func (u *User) HasPaymentMethod() bool {
	return u.CustomerRef != "" && u.TokenRef != ""
}

// Profile публичное представление пользователя для /api/user/profile.
type Profile struct {
	UUID             string     `json:"uid"`
	Email            string     `json:"email"`
	Username         string     `json:"username"`
	HasPaymentMethod bool       `json:"has_payment_method"`
	TrialEndDate     *time.Time `json:"trial_end_date,omitempty"`
	OwnedGroups      int        `json:"owned_groups"`
}
