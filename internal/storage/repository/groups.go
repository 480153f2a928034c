package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/nexus/internal/models"
)

const groupColumns = `g.id, g.owner_uid, g.name, g.category, g.description, g.privacy, g.is_active, g.created_at`

// likeEscaper экранирует спецсимволы шаблона ILIKE в поисковой строке.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanGroup(row rowScanner, extra ...any) (*models.Group, error) {
	g := &models.Group{}
	dest := append([]any{&g.ID, &g.OwnerUID, &g.Name, &g.Category, &g.Description,
		&g.Privacy, &g.IsActive, &g.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return g, nil
}

// CreateGroup создаёт группу и членство владельца в одной транзакции.
// Вставка выполняется только если у владельца подтверждён платёжный метод,
// иначе возвращается models.ErrPaymentMethodRequired.
func (s *Storage) CreateGroup(ctx context.Context, group models.Group) (*models.Group, error) {
	const op = "storage.CreateGroup"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	insertGroup := `INSERT INTO groups (owner_uid, name, category, description, privacy, is_active)
			  SELECT u.uid, $2, $3, $4, $5, $6
			  FROM users u
			  WHERE u.uid = $1
			    AND COALESCE(u.customer_ref, '') <> ''
			    AND COALESCE(u.token_ref, '') <> ''
			  RETURNING id, created_at`
	insertMember := `INSERT INTO group_members (group_id, user_uid) VALUES ($1, $2)`

	created := group
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, insertGroup,
			group.OwnerUID, group.Name, group.Category, group.Description,
			string(group.Privacy), group.IsActive).Scan(&created.ID, &created.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewPaymentMethodRequired()
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, insertMember, created.ID, group.OwnerUID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

// DeleteGroup удаляет группу. Подписка и участники удаляются каскадно.
func (s *Storage) DeleteGroup(ctx context.Context, groupID int64) error {
	const op = "storage.DeleteGroup"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// GetGroup возвращает группу по ID.
func (s *Storage) GetGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	const op = "storage.GetGroup"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.id = $1`
	g, err := scanGroup(s.DB.QueryRowContext(ctx, query, groupID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return g, nil
}

// ExploreGroups ищет публичные активные группы и возвращает страницу
// вместе с общим количеством найденных.
func (s *Storage) ExploreGroups(ctx context.Context, filter models.ExploreFilter) ([]*models.GroupWithMembers, int, error) {
	const op = "storage.ExploreGroups"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where := []string{"g.is_active", "g.privacy = 'PUBLIC'"}
	var args []any
	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(`(g.name ILIKE $%d ESCAPE '\' OR g.description ILIKE $%d ESCAPE '\')`, n, n))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("g.category = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups g WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(`SELECT %s, COUNT(m.user_uid)
			  FROM groups g
			  LEFT JOIN group_members m ON m.group_id = g.id
			  WHERE %s
			  GROUP BY g.id
			  ORDER BY g.created_at DESC, g.id DESC
			  LIMIT $%d OFFSET $%d`, groupColumns, cond, len(args)-1, len(args))
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.GroupWithMembers, 0, filter.Limit)
	for rows.Next() {
		var members int
		g, err := scanGroup(rows, &members)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &models.GroupWithMembers{Group: *g, MemberCount: members})
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// JoinGroup добавляет пользователя в публичную активную группу.
func (s *Storage) JoinGroup(ctx context.Context, groupID int64, userUID string) error {
	const op = "storage.JoinGroup"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !g.IsActive || g.Privacy != models.PrivacyPublic {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	_, err = s.DB.ExecContext(ctx, `INSERT INTO group_members (group_id, user_uid) VALUES ($1, $2)`, groupID, userUID)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return fmt.Errorf("%s: %w", op, models.ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListGroupsByOwnerEmail возвращает группы владельца, найденного по email,
// вместе с подписками.
func (s *Storage) ListGroupsByOwnerEmail(ctx context.Context, email string) ([]*models.GroupWithSubscription, error) {
	const op = "storage.ListGroupsByOwnerEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + groupColumns + `, ` + subscriptionColumns + `
			  FROM groups g
			  JOIN users u ON u.uid = g.owner_uid
			  LEFT JOIN subscriptions s ON s.group_id = g.id
			  WHERE u.email = $1
			  ORDER BY g.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.GroupWithSubscription
	for rows.Next() {
		var ns nullableSubscription
		g, err := scanGroup(rows, ns.dest()...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &models.GroupWithSubscription{Group: g, Subscription: ns.subscription()})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountGroupsByOwner возвращает количество групп пользователя.
func (s *Storage) CountGroupsByOwner(ctx context.Context, ownerUID string) (int, error) {
	const op = "storage.CountGroupsByOwner"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups WHERE owner_uid = $1`, ownerUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
