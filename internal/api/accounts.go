package api

import (
	"net/http"

	"fitness/internal/service"
	"fitness/internal/weblink"
)

type AccountHandler struct {
	accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"max=100"`
}

type registerResponse struct {
	Result    bool   `json:"result"`
	Message   string `json:"message"`
	EmailSent bool   `json:"emailSent"`
}

// POST /register_user
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	message := "User registered. Please check your email to verify your account."
	if !res.EmailSent {
		message = "User registered, but the verification email could not be sent. Please request a new one."
	}
	writeJSON(w, http.StatusOK, registerResponse{
		Result:    true,
		Message:   message,
		EmailSent: res.EmailSent,
	})
}

type emailRequest struct {
	Email string `json:"email" validate:"required"`
}

// POST /signin_admin
func (h *AccountHandler) SignInAdmin(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	isAdmin, err := h.accounts.IsAdminEmail(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Result: isAdmin})
}

type verificationResponse struct {
	Message   string `json:"message"`
	Verified  bool   `json:"verified,omitempty"`
	EmailSent bool   `json:"emailSent,omitempty"`
}

// GET /verify-email?token=
func (h *AccountHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		badRequest(w, "Verification token is required")
		return
	}
	token, ok := weblink.ParseVerifyEmailToken(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidToken, "Invalid or expired verification token")
		return
	}

	res, err := h.accounts.VerifyEmail(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	message := "Email verified successfully"
	if res.AlreadyVerified {
		message = "Email is already verified"
	}
	writeJSON(w, http.StatusOK, verificationResponse{Message: message, Verified: true})
}

// POST /resend-verification
func (h *AccountHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := h.accounts.ResendVerification(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if res.AlreadyVerified {
		writeJSON(w, http.StatusOK, verificationResponse{Message: "Email is already verified", Verified: true})
		return
	}
	writeJSON(w, http.StatusOK, verificationResponse{
		Message:   "Verification email sent successfully. Please check your inbox.",
		EmailSent: true,
	})
}
