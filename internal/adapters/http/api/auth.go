package api

import (
	"net/http"

	"github.com/okian/leadsplit/internal/domain/types"
)

type emailRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,max=254"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,max=254"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

type registerResponse struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

type loginResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    types.User `json:"user"`
}

// AccountHandler serves signup, login and password reset.
type AccountHandler struct {
	deps AccountDependencies
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(deps AccountDependencies) *AccountHandler {
	return &AccountHandler{deps: deps}
}

// HandleSendOTP handles POST /api/auth/send-otp.
func (h *AccountHandler) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	const op = "api.send_otp"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	if err := h.deps.SendOTP(r.Context(), req.Email); err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Verification code sent"})
}

// HandleVerifyOTP handles POST /api/auth/verify-otp.
func (h *AccountHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	const op = "api.verify_otp"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req verifyOTPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	if err := h.deps.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Email verified"})
}

// HandleRegister handles POST /api/auth/register.
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	user, err := h.deps.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{Message: "Registration successful", User: types.FromUser(user)})
}

// HandleLogin handles POST /api/auth/login.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	res, err := h.deps.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Token: res.Token, User: types.FromUser(res.User)})
}

// HandleForgotPassword handles POST /api/auth/forgot-password.
func (h *AccountHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	const op = "api.forgot_password"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	if err := h.deps.ForgotPassword(r.Context(), req.Email); err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Reset code sent"})
}

// HandleResetPassword handles POST /api/auth/reset-password.
func (h *AccountHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset_password"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	if err := h.deps.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password reset successful"})
}
