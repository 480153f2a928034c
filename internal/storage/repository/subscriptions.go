package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/nexus/internal/models"
)

const subscriptionColumns = `s.id, s.group_id, s.status, s.trial_end_date, s.next_billing_date,
	s.price, s.currency, s.external_ref, s.cancelled_at, s.created_at`

func subscriptionDest(sub *models.Subscription, trialEnd, nextBilling, cancelledAt *sql.NullTime) []any {
	return []any{&sub.ID, &sub.GroupID, &sub.Status, trialEnd, nextBilling,
		&sub.Price, &sub.Currency, &sub.ExternalRef, cancelledAt, &sub.CreatedAt}
}

// nullableSubscription сканирует подписку из LEFT JOIN, где её может не быть.
type nullableSubscription struct {
	id, groupID, price                     sql.NullInt64
	status, currency, externalRef          sql.NullString
	trialEnd, nextBilling, cancelled, crAt sql.NullTime
}

func (n *nullableSubscription) dest() []any {
	return []any{&n.id, &n.groupID, &n.status, &n.trialEnd, &n.nextBilling,
		&n.price, &n.currency, &n.externalRef, &n.cancelled, &n.crAt}
}

func (n *nullableSubscription) subscription() *models.Subscription {
	if !n.id.Valid {
		return nil
	}
	return &models.Subscription{
		ID:              n.id.Int64,
		GroupID:         n.groupID.Int64,
		Status:          models.SubscriptionStatus(n.status.String),
		TrialEndDate:    timePtr(n.trialEnd),
		NextBillingDate: timePtr(n.nextBilling),
		Price:           n.price.Int64,
		Currency:        n.currency.String,
		ExternalRef:     n.externalRef.String,
		CancelledAt:     timePtr(n.cancelled),
		CreatedAt:       n.crAt.Time,
	}
}

// CompleteGroupBilling сохраняет подписку группы и закрывает запись журнала
// в состоянии completed в одной транзакции.
func (s *Storage) CompleteGroupBilling(ctx context.Context, intentID string, sub models.Subscription) (*models.Subscription, error) {
	const op = "storage.CompleteGroupBilling"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	insert := `INSERT INTO subscriptions (group_id, status, trial_end_date, next_billing_date,
			      price, currency, external_ref)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, created_at`
	complete := `UPDATE group_creation_intents
			  SET state = $2, updated_at = now()
			  WHERE id = $1 AND state = $3`

	created := sub
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, insert,
			sub.GroupID, string(sub.Status), sub.TrialEndDate, sub.NextBillingDate,
			sub.Price, sub.Currency, sub.ExternalRef).Scan(&created.ID, &created.CreatedAt)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, complete, intentID,
			string(models.IntentCompleted), string(models.IntentGroupCreated))
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("intent %s is not in state %s", intentID, models.IntentGroupCreated)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

// GetSubscriptionByGroup возвращает подписку группы вместе с идентичностью владельца.
func (s *Storage) GetSubscriptionByGroup(ctx context.Context, groupID int64) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByGroup"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `, u.uid, u.auth_id
			  FROM subscriptions s
			  JOIN groups g ON g.id = s.group_id
			  JOIN users u ON u.uid = g.owner_uid
			  WHERE s.group_id = $1`
	sub := &models.Subscription{}
	var trialEnd, nextBilling, cancelledAt sql.NullTime
	dest := append(subscriptionDest(sub, &trialEnd, &nextBilling, &cancelledAt), &sub.OwnerUID, &sub.OwnerAuthID)
	if err := s.DB.QueryRowContext(ctx, query, groupID).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.TrialEndDate = timePtr(trialEnd)
	sub.NextBillingDate = timePtr(nextBilling)
	sub.CancelledAt = timePtr(cancelledAt)
	return sub, nil
}

// CancelSubscriptionsByGroup помечает подписки группы отменёнными.
// Повторная отмена сохраняет первое время отмены.
func (s *Storage) CancelSubscriptionsByGroup(ctx context.Context, groupID int64, at time.Time) (int64, error) {
	const op = "storage.CancelSubscriptionsByGroup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $2, cancelled_at = COALESCE(cancelled_at, $3)
			  WHERE group_id = $1`
	res, err := s.DB.ExecContext(ctx, query, groupID, string(models.StatusCancelled), at)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// UpdateSubscriptionByExternalRef применяет событие шлюза к подписке
// и возвращает ID группы. Отменённая подписка не активируется повторно.
func (s *Storage) UpdateSubscriptionByExternalRef(ctx context.Context, externalRef string,
	status models.SubscriptionStatus, nextBilling *time.Time, at time.Time) (int64, error) {
	const op = "storage.UpdateSubscriptionByExternalRef"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = CASE WHEN status = 'CANCELLED' THEN status ELSE $2::text END,
			      next_billing_date = COALESCE($3, next_billing_date),
			      cancelled_at = CASE WHEN $2::text = 'CANCELLED' THEN COALESCE(cancelled_at, $4) ELSE cancelled_at END
			  WHERE external_ref = $1
			  RETURNING group_id`
	var groupID int64
	err := s.DB.QueryRowContext(ctx, query, externalRef, string(status), nextBilling, at).Scan(&groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return groupID, nil
}

// ListTrialsEndingBetween возвращает неотменённые пробные подписки,
// у которых пробный период заканчивается в [from, to).
func (s *Storage) ListTrialsEndingBetween(ctx context.Context, from, to time.Time) ([]*models.TrialEndingNotice, error) {
	const op = "storage.ListTrialsEndingBetween"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT g.id, g.name, u.email, u.username, s.trial_end_date, s.price, s.currency
			  FROM subscriptions s
			  JOIN groups g ON g.id = s.group_id
			  JOIN users u ON u.uid = g.owner_uid
			  WHERE s.status = 'TRIAL'
			    AND s.cancelled_at IS NULL
			    AND s.trial_end_date >= $1 AND s.trial_end_date < $2
			  ORDER BY s.trial_end_date`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var notices []*models.TrialEndingNotice
	for rows.Next() {
		var n models.TrialEndingNotice
		if err := rows.Scan(&n.GroupID, &n.GroupName, &n.Email, &n.Username, &n.TrialEndDate, &n.Price, &n.Currency); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		notices = append(notices, &n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return notices, nil
}
