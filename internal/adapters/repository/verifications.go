package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/leadsplit/internal/domain/model"
)

// SaveVerification upserts the pending code for an address. A new code
// always resets the verified flag.
func (s *SQLiteStore) SaveVerification(ctx context.Context, v model.EmailVerification) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	defer observe("save_verification", time.Now())

	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now()
	}
	v.Verified = false
	row := fromVerification(v)
	ib := verificationStruct.InsertInto(tableVerifications, &row)
	ib.SQL("ON CONFLICT (email) DO UPDATE SET otp = excluded.otp, verified = 0, created_at = excluded.created_at")
	query, args := ib.Build()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return storageError("save_verification", err)
	}
	return nil
}

// GetVerification returns the pending verification for email.
func (s *SQLiteStore) GetVerification(ctx context.Context, email string) (model.EmailVerification, error) {
	if err := s.checkOpen(); err != nil {
		return model.EmailVerification{}, err
	}
	defer observe("get_verification", time.Now())

	sb := verificationStruct.SelectFrom(tableVerifications)
	sb.Where(sb.Equal("email", email))
	query, args := sb.Build()

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return model.EmailVerification{}, storageError("get_verification", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return model.EmailVerification{}, storageError("get_verification", err)
		}
		return model.EmailVerification{}, fmt.Errorf("verification %s: %w", email, ErrNotFound)
	}
	var r verificationRow
	if err := rows.Scan(verificationStruct.Addr(&r)...); err != nil {
		return model.EmailVerification{}, storageError("get_verification", err)
	}
	return r.to(), nil
}

// MarkVerified flags the address as verified.
func (s *SQLiteStore) MarkVerified(ctx context.Context, email string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	defer observe("mark_verified", time.Now())

	ub := flavor.NewUpdateBuilder()
	ub.Update(tableVerifications).Set(ub.Assign("verified", true)).Where(ub.Equal("email", email))
	query, args := ub.Build()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storageError("mark_verified", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("verification %s: %w", email, ErrNotFound)
	}
	return nil
}

// DeleteVerification removes the record for email. Missing records are ignored.
func (s *SQLiteStore) DeleteVerification(ctx context.Context, email string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	defer observe("delete_verification", time.Now())

	db := flavor.NewDeleteBuilder()
	db.DeleteFrom(tableVerifications).Where(db.Equal("email", email))
	query, args := db.Build()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return storageError("delete_verification", err)
	}
	return nil
}
