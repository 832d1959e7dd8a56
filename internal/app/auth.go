package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/leadsplit/internal/domain/credentials"
	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/pkg/logger"
)

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", model.ErrInvalidInput)
	}
	if !credentials.ValidEmail(email) {
		return "", fmt.Errorf("%w: invalid email format", model.ErrInvalidInput)
	}
	return email, nil
}

// SendOTP stores a fresh verification code for an unregistered address and
// queues the email carrying it.
func (s *Service) SendOTP(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	_, err = s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return fmt.Errorf("email %s: %w", email, model.ErrConflict)
	case !errors.Is(err, model.ErrNotFound):
		return err
	}

	return s.issueCode(ctx, email, model.MailVerifyEmail)
}

// VerifyOTP marks the address verified when otp matches and is still valid.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if _, err := s.validCode(ctx, email, otp); err != nil {
		return err
	}
	return s.store.MarkVerified(ctx, email)
}

// Register creates an admin account for a verified address.
func (s *Service) Register(ctx context.Context, email, password string) (model.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return model.User{}, err
	}
	if password == "" {
		return model.User{}, fmt.Errorf("%w: password is required", model.ErrInvalidInput)
	}

	v, err := s.store.GetVerification(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNotVerified
		}
		return model.User{}, err
	}
	if !v.Verified {
		return model.User{}, model.ErrNotVerified
	}

	hash, err := credentials.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}
	user := model.User{ID: s.newID(), Email: email, PasswordHash: hash, Role: model.RoleAdmin, CreatedAt: s.now()}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return model.User{}, err
	}
	if err := s.store.DeleteVerification(ctx, email); err != nil {
		s.log().Warn(ctx, "verification record not removed", logger.Error(err))
	}

	s.log().Info(ctx, "user registered", logger.String("user_id", user.ID))
	return user, nil
}

// Login checks the password and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (model.LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.LoginResult{}, model.ErrInvalidCredentials
		}
		return model.LoginResult{}, err
	}
	if !credentials.CheckPassword(user.PasswordHash, password) {
		return model.LoginResult{}, model.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return model.LoginResult{}, err
	}
	return model.LoginResult{Token: token, User: user}, nil
}

// ForgotPassword queues a reset code for a registered address.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err != nil {
		return err
	}
	return s.issueCode(ctx, email, model.MailResetPassword)
}

// ResetPassword replaces the password when otp is valid, then queues a
// confirmation email.
func (s *Service) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", model.ErrInvalidInput)
	}
	if _, err := s.validCode(ctx, email, otp); err != nil {
		return err
	}

	hash, err := credentials.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, email, hash); err != nil {
		return err
	}
	if err := s.store.DeleteVerification(ctx, email); err != nil {
		s.log().Warn(ctx, "verification record not removed", logger.Error(err))
	}

	// The password already changed; a full queue only loses the notice.
	if err := s.enqueueMail(ctx, model.MailResetDone, email, ""); err != nil {
		s.log().Warn(ctx, "reset confirmation not queued", logger.Error(err))
	}
	return nil
}

func (s *Service) issueCode(ctx context.Context, email string, kind model.MailKind) error {
	code, err := credentials.NewOTP()
	if err != nil {
		return err
	}
	v := model.EmailVerification{Email: email, OTP: code, CreatedAt: s.now()}
	if err := s.store.SaveVerification(ctx, v); err != nil {
		return err
	}
	return s.enqueueMail(ctx, kind, email, code)
}

// validCode returns the stored verification when otp matches it and it was
// issued within the OTP lifetime.
func (s *Service) validCode(ctx context.Context, email, otp string) (model.EmailVerification, error) {
	v, err := s.store.GetVerification(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.EmailVerification{}, model.ErrInvalidOTP
		}
		return model.EmailVerification{}, err
	}
	if otp == "" || v.OTP != strings.TrimSpace(otp) {
		return model.EmailVerification{}, model.ErrInvalidOTP
	}
	if s.now().Sub(v.CreatedAt) > s.otpTTL {
		return model.EmailVerification{}, model.ErrInvalidOTP
	}
	return v, nil
}
