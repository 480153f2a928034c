package models

import "time"

// IntentState состояние записи журнала создания группы.
type IntentState string

const (
	IntentPending            IntentState = "pending"
	IntentGroupCreated       IntentState = "group_created"
	IntentCompleted          IntentState = "completed"
	IntentCompensated        IntentState = "compensated"
	IntentCompensationFailed IntentState = "compensation_failed"
	IntentFailed             IntentState = "failed"
)

// GroupCreationIntent запись журнала саги «группа + подписка».
// Пока запись в состоянии pending или group_created, у владельца
// не может быть второй незавершённой записи.
type GroupCreationIntent struct {
	ID             string      `json:"id"`
	OwnerUID       string      `json:"owner_uid"`
	IdempotencyKey string      `json:"idempotency_key"`
	State          IntentState `json:"state"`
	GroupID        *int64      `json:"group_id,omitempty"`
	ExternalRef    string      `json:"external_ref,omitempty"`
	Error          string      `json:"error,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// InFlight сообщает, что сага ещё не завершена.
func (i *GroupCreationIntent) InFlight() bool {
	return i.State == IntentPending || i.State == IntentGroupCreated
}
