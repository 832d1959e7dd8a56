package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/leadsplit/internal/domain/model"
)

// CreateUser stores a new account. Returns ErrDuplicate when the email is taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, u model.User) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	defer observe("create_user", time.Now())

	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	row := fromUser(u)
	query, args := userStruct.InsertInto(tableUsers, &row).Build()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
		}
		return storageError("create_user", err)
	}
	return nil
}

// GetUserByEmail returns the account registered under email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	if err := s.checkOpen(); err != nil {
		return model.User{}, err
	}
	defer observe("get_user", time.Now())

	sb := userStruct.SelectFrom(tableUsers)
	sb.Where(sb.Equal("email", email))
	sb.Limit(1)
	query, args := sb.Build()

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return model.User{}, storageError("get_user", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return model.User{}, storageError("get_user", err)
		}
		return model.User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	var r userRow
	if err := rows.Scan(userStruct.Addr(&r)...); err != nil {
		return model.User{}, storageError("get_user", err)
	}
	return r.to(), nil
}

// UpdatePassword replaces the password hash of the account under email.
func (s *SQLiteStore) UpdatePassword(ctx context.Context, email, hash string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	defer observe("update_password", time.Now())

	ub := flavor.NewUpdateBuilder()
	ub.Update(tableUsers).Set(ub.Assign("password_hash", hash)).Where(ub.Equal("email", email))
	query, args := ub.Build()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storageError("update_password", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return nil
}
