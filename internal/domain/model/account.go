package model

import "time"

// Roles known to the access layer.
const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// User is an account that can sign in to the service.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// LoginResult is a signed bearer token and the account it was issued for.
type LoginResult struct {
	Token string
	User  User
}

// EmailVerification holds the pending one-time code for an email address.
// At most one record exists per email.
type EmailVerification struct {
	Email     string
	OTP       string
	Verified  bool
	CreatedAt time.Time
}

// MailKind identifies which template a MailJob renders.
type MailKind string

// Known mail kinds.
const (
	MailVerifyEmail   MailKind = "verify_email"
	MailResetPassword MailKind = "reset_password"
	MailResetDone     MailKind = "reset_done"
)

// MailJob is a unit of outbound mail flowing through the dispatch queue.
type MailJob struct {
	ID       string
	Kind     MailKind
	To       string
	Code     string // one-time code, empty for notifications
	Enqueued time.Time
}
