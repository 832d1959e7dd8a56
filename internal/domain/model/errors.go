package model

import "errors"

// Sentinel error kinds shared by the domain, store and API layers.
var (
	// Distribution.
	ErrDecode               = errors.New("failed to parse file")
	ErrUnsupportedExtension = errors.New("invalid file type. Allowed: csv, xlsx, xls")
	ErrNoValidRows          = errors.New("no valid rows found. Expect columns: FirstName, Phone, Notes")
	ErrInsufficientAgents   = errors.New("at least 5 agents required to distribute the list")
	ErrStorage              = errors.New("storage failure")

	// Directory and accounts.
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidOTP         = errors.New("invalid or expired code")
	ErrNotVerified        = errors.New("please verify your email first")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMailUnavailable    = errors.New("mail dispatch unavailable")
)
