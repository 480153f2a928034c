package models

import "time"

// SubscriptionStatus статус подписки группы.
type SubscriptionStatus string

const (
	// StatusTrial пробный период ещё не закончился.
	StatusTrial SubscriptionStatus = "TRIAL"
	// StatusActive подписка оплачивается.
	StatusActive SubscriptionStatus = "ACTIVE"
	// StatusCancelled подписка отменена владельцем или шлюзом.
	StatusCancelled SubscriptionStatus = "CANCELLED"
)

// Subscription представляет подписку группы, один к одному с Group.
type Subscription struct {
	ID              int64              `json:"id"`
	GroupID         int64              `json:"group_id"`
	Status          SubscriptionStatus `json:"status"`
	TrialEndDate    *time.Time         `json:"trial_end_date,omitempty"`
	NextBillingDate *time.Time         `json:"next_billing_date,omitempty"`
	Price           int64              `json:"price"`
	Currency        string             `json:"currency"`
	ExternalRef     string             `json:"external_ref,omitempty"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`

	// OwnerUID и OwnerAuthID заполняются при чтении вместе с владельцем группы.
	OwnerUID    string `json:"owner_uid,omitempty"`
	OwnerAuthID string `json:"owner_auth_id,omitempty"`
}

// EffectiveStatus выводит статус на момент now.
func (s *Subscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if s.Status == StatusCancelled || s.CancelledAt != nil {
		return StatusCancelled
	}
	if s.TrialEndDate != nil && now.Before(*s.TrialEndDate) {
		return StatusTrial
	}
	return StatusActive
}

// StatusView ответ читателя статуса подписки.
type StatusView struct {
	Status          SubscriptionStatus `json:"status"`
	TrialEndDate    *time.Time         `json:"trialEndDate,omitempty"`
	NextBillingDate *time.Time         `json:"nextBillingDate,omitempty"`
	Price           int64              `json:"price"`
	Currency        string             `json:"currency"`
}

// View строит StatusView на момент now.
func (s *Subscription) View(now time.Time) StatusView {
	return StatusView{
		Status:          s.EffectiveStatus(now),
		TrialEndDate:    s.TrialEndDate,
		NextBillingDate: s.NextBillingDate,
		Price:           s.Price,
		Currency:        s.Currency,
	}
}

// GroupWithSubscription пара, возвращаемая после создания группы.
type GroupWithSubscription struct {
	Group        *Group        `json:"group"`
	Subscription *Subscription `json:"subscription"`
}
