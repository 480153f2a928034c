package models

import "time"

// ApplicationStatus статус заявки на роль владельца.
type ApplicationStatus string

const (
	// ApplicationPending заявка ожидает решения администратора.
	ApplicationPending ApplicationStatus = "PENDING"
	// ApplicationApproved заявка одобрена.
	ApplicationApproved ApplicationStatus = "APPROVED"
	// ApplicationRejected заявка отклонена.
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// OwnerApplication заявка на роль владельца групп.
type OwnerApplication struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	PasswordHash string            `json:"-"`
	Status       ApplicationStatus `json:"status"`
	ReviewNote   string            `json:"review_note,omitempty"`
	ReviewedAt   *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ApplicationDecision сообщение в очередь уведомлений о решении по заявке.
type ApplicationDecision struct {
	ApplicationID string            `json:"application_id"`
	Email         string            `json:"email"`
	Name          string            `json:"name"`
	Status        ApplicationStatus `json:"status"`
	Note          string            `json:"note,omitempty"`
}

// GroupCreatedEvent сообщение в очередь уведомлений о новой группе.
type GroupCreatedEvent struct {
	GroupID      int64      `json:"group_id"`
	GroupName    string     `json:"group_name"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	TrialEndDate *time.Time `json:"trial_end_date,omitempty"`
}

// TrialEndingNotice сообщение в очередь уведомлений о скором конце пробного
// периода подписки группы.
type TrialEndingNotice struct {
	GroupID      int64     `json:"group_id"`
	GroupName    string    `json:"group_name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	TrialEndDate time.Time `json:"trial_end_date"`
	Price        int64     `json:"price"`
	Currency     string    `json:"currency"`
}
