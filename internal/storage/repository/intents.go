package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/nexus/internal/models"
)

const (
	intentColumns       = `id, owner_uid, idempotency_key, state, group_id, external_ref, error, created_at, updated_at`
	inFlightIntentIndex = "idx_intents_in_flight"
)

func scanIntent(row rowScanner) (*models.GroupCreationIntent, error) {
	i := &models.GroupCreationIntent{}
	var groupID sql.NullInt64
	if err := row.Scan(&i.ID, &i.OwnerUID, &i.IdempotencyKey, &i.State, &groupID,
		&i.ExternalRef, &i.Error, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	if groupID.Valid {
		id := groupID.Int64
		i.GroupID = &id
	}
	return i, nil
}

// OpenIntent открывает запись журнала создания группы. Если запись с тем же
// ключом уже есть, возвращает её и created=false. Если у владельца уже есть
// незавершённая запись с другим ключом, возвращает models.ErrRequestInFlight.
func (s *Storage) OpenIntent(ctx context.Context, ownerUID, idempotencyKey string) (*models.GroupCreationIntent, bool, error) {
	const op = "storage.OpenIntent"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	insert := `INSERT INTO group_creation_intents (owner_uid, idempotency_key, state)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (owner_uid, idempotency_key) DO NOTHING
			  RETURNING ` + intentColumns
	intent, err := scanIntent(s.DB.QueryRowContext(ctx, insert, ownerUID, idempotencyKey, string(models.IntentPending)))
	if err == nil {
		return intent, true, nil
	}
	if name, ok := uniqueConstraint(err); ok && name == inFlightIntentIndex {
		return nil, false, fmt.Errorf("%s: %w", op, models.ErrRequestInFlight)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + intentColumns + ` FROM group_creation_intents
			  WHERE owner_uid = $1 AND idempotency_key = $2`
	intent, err = scanIntent(s.DB.QueryRowContext(ctx, query, ownerUID, idempotencyKey))
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return intent, false, nil
}

// MarkIntentGroupCreated фиксирует созданную группу в записи журнала.
func (s *Storage) MarkIntentGroupCreated(ctx context.Context, id string, groupID int64) error {
	const op = "storage.MarkIntentGroupCreated"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE group_creation_intents
			  SET state = $2, group_id = $3, updated_at = now()
			  WHERE id = $1 AND state = $4`
	res, err := s.DB.ExecContext(ctx, query, id, string(models.IntentGroupCreated), groupID, string(models.IntentPending))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// SetIntentExternalRef запоминает ссылку на подписку в шлюзе, чтобы при
// восстановлении после падения её можно было отменить.
func (s *Storage) SetIntentExternalRef(ctx context.Context, id, externalRef string) error {
	const op = "storage.SetIntentExternalRef"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE group_creation_intents
			  SET external_ref = $2, updated_at = now()
			  WHERE id = $1 AND state = $3`
	res, err := s.DB.ExecContext(ctx, query, id, externalRef, string(models.IntentGroupCreated))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// FinishIntent переводит незавершённую запись в конечное состояние state.
func (s *Storage) FinishIntent(ctx context.Context, id string, state models.IntentState, reason string) error {
	const op = "storage.FinishIntent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE group_creation_intents
			  SET state = $2, error = $3, updated_at = now()
			  WHERE id = $1 AND state IN ('pending', 'group_created')`
	res, err := s.DB.ExecContext(ctx, query, id, string(state), reason)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// ListStaleIntents возвращает незавершённые записи, не обновлявшиеся с before.
func (s *Storage) ListStaleIntents(ctx context.Context, before time.Time, limit int) ([]*models.GroupCreationIntent, error) {
	const op = "storage.ListStaleIntents"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + intentColumns + ` FROM group_creation_intents
			  WHERE state IN ('pending', 'group_created') AND updated_at < $1
			  ORDER BY updated_at
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.GroupCreationIntent
	for rows.Next() {
		intent, err := scanIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, intent)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
