package models

// RegisterRequest данные регистрации пользователя.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest вход пользователя или владельца по почте.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest вход администратора.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// OwnerApplyRequest заявка на роль владельца групп.
type OwnerApplyRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,numeric,len=10"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ReviewRequest решение администратора по заявке.
type ReviewRequest struct {
	Note string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// Session выданный токен сессии.
type Session struct {
	Token     string    `json:"token"`
	Principal Principal `json:"principal"`
}
