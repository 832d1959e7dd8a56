package api

import (
	"errors"
	"net/http"

	"github.com/okian/leadsplit/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNoFile     = errors.New("no file uploaded")
	ErrTooLarge   = errors.New("upload exceeds the size limit")
)

// opError tags an error with the handler operation that produced it and,
// optionally, a sentinel kind matched by errors.Is.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string { return e.op + ": " + e.message() }

func (e *opError) message() string {
	switch {
	case e.kind != nil && e.err != nil:
		return e.kind.Error() + ": " + publicMessage(e.err)
	case e.kind != nil:
		return e.kind.Error()
	case e.err != nil:
		return publicMessage(e.err)
	}
	return "unknown error"
}

func (e *opError) Unwrap() []error {
	var errs []error
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.err != nil {
		errs = append(errs, e.err)
	}
	return errs
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// WrapKind annotates err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// publicMessage is the client facing text of err, without operation names.
func publicMessage(err error) string {
	var oe *opError
	if errors.As(err, &oe) {
		return oe.message()
	}
	return err.Error()
}

type statusMapping struct {
	kind   error
	status int
	code   string
}

var statusTable = []statusMapping{
	{ErrTooLarge, http.StatusRequestEntityTooLarge, "too_large"},
	{ErrNoFile, http.StatusBadRequest, "no_file"},
	{ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{model.ErrUnsupportedExtension, http.StatusBadRequest, "invalid_file_type"},
	{model.ErrDecode, http.StatusBadRequest, "decode_failed"},
	{model.ErrNoValidRows, http.StatusBadRequest, "no_valid_rows"},
	{model.ErrInsufficientAgents, http.StatusBadRequest, "insufficient_agents"},
	{model.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{model.ErrInvalidOTP, http.StatusBadRequest, "invalid_otp"},
	{model.ErrNotVerified, http.StatusBadRequest, "not_verified"},
	{model.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{model.ErrNotFound, http.StatusNotFound, "not_found"},
	{model.ErrConflict, http.StatusConflict, "conflict"},
	{model.ErrMailUnavailable, http.StatusServiceUnavailable, "mail_unavailable"},
	{model.ErrStorage, http.StatusInternalServerError, "storage_error"},
}

// statusFor maps err onto an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	for _, m := range statusTable {
		if errors.Is(err, m.kind) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
