package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fitness/internal/auth"
	"fitness/internal/db"
	"fitness/internal/email"
	"fitness/internal/identity"
	"fitness/internal/metrics"
	"fitness/internal/models"
	"fitness/internal/weblink"
)

// initialPasswordBytes sizes the throwaway password handed to the identity
// provider. Users set their own password through the reset email.
const initialPasswordBytes = 24

type AccountConfig struct {
	AppName     string
	FrontendURL string
}

type AccountService struct {
	users    UserStore
	identity IdentityProvider
	mailer   Mailer
	tokens   *auth.VerificationTokenService
	cfg      AccountConfig
	now      func() time.Time
}

func NewAccountService(users UserStore, idp IdentityProvider, mailer Mailer, tokens *auth.VerificationTokenService, cfg AccountConfig) *AccountService {
	return &AccountService{
		users:    users,
		identity: idp,
		mailer:   mailer,
		tokens:   tokens,
		cfg:      cfg,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Email    string
	Username string
}

type RegisterResult struct {
	User      *models.User
	EmailSent bool
}

// Register creates an unverified account. A failed verification email does
// not fail the registration; the caller sees it through EmailSent.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	addr := normalizeEmail(in.Email)
	if addr == "" {
		return nil, newError(ErrValidation, "Please add email")
	}

	exists, err := s.users.EmailExists(ctx, addr)
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.RecordRegistration("conflict")
		return nil, newError(ErrConflict, "A user with that email already exists")
	}

	token, expiresAt, err := s.tokens.Generate()
	if err != nil {
		return nil, err
	}

	password, err := auth.GenerateOpaqueToken(initialPasswordBytes)
	if err != nil {
		return nil, err
	}
	if _, err := s.identity.CreateAccount(ctx, addr, password); err != nil {
		var perr *identity.ProviderError
		if errors.As(err, &perr) && perr.EmailExists() {
			metrics.RecordRegistration("conflict")
			return nil, wrapError(ErrConflict, "A user with that email already exists", err)
		}
		metrics.RecordRegistration("failed")
		return nil, wrapError(ErrExternalService, "Error creating user", err)
	}
	if err := s.identity.SendPasswordReset(ctx, addr); err != nil {
		slog.Warn("failed to send password reset email", "component", "identity", "email", addr, "error", err)
	}

	user := &models.User{
		Email:                        addr,
		Name:                         strings.TrimSpace(in.Username),
		EmailVerificationToken:       &token,
		EmailVerificationTokenExpiry: &expiresAt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			metrics.RecordRegistration("conflict")
			return nil, wrapError(ErrConflict, "A user with that email already exists", err)
		}
		metrics.RecordRegistration("failed")
		return nil, err
	}
	metrics.RecordRegistration("created")
	user.EnsureCollections()

	sendErr := s.sendVerification(ctx, addr, token)
	metrics.RecordVerificationEmail("register", sendErr)
	if sendErr != nil {
		slog.Error("failed to send verification email", "component", "email", "email", addr, "error", sendErr)
	}

	return &RegisterResult{User: user, EmailSent: sendErr == nil}, nil
}

type VerifyResult struct {
	User            *models.User
	AlreadyVerified bool
}

// VerifyEmail consumes a verification token.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (*VerifyResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, newError(ErrValidation, "Verification token is required")
	}

	user, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(ErrInvalidToken, "Invalid or expired verification token")
		}
		return nil, err
	}

	if user.VerificationExpired(s.now()) {
		return nil, newError(ErrExpiredToken, "Verification token has expired. Please request a new one.")
	}
	if user.IsEmailVerified {
		return &VerifyResult{User: user, AlreadyVerified: true}, nil
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.IsEmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationTokenExpiry = nil
	return &VerifyResult{User: user}, nil
}

// ResendVerification issues a new token and mails it. Unlike Register, a
// mail failure is returned to the caller.
func (s *AccountService) ResendVerification(ctx context.Context, address string) (*VerifyResult, error) {
	addr := normalizeEmail(address)
	if addr == "" {
		return nil, newError(ErrValidation, "Email address is required")
	}

	user, err := s.users.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}
	if user.IsEmailVerified {
		return &VerifyResult{User: user, AlreadyVerified: true}, nil
	}

	token, expiresAt, err := s.tokens.Generate()
	if err != nil {
		return nil, err
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, token, expiresAt); err != nil {
		return nil, err
	}
	user.EmailVerificationToken = &token
	user.EmailVerificationTokenExpiry = &expiresAt

	sendErr := s.sendVerification(ctx, addr, token)
	metrics.RecordVerificationEmail("resend", sendErr)
	if sendErr != nil {
		return nil, wrapError(ErrExternalService, "Failed to send verification email", sendErr)
	}
	return &VerifyResult{User: user}, nil
}

// IsAdminEmail reports whether address belongs to an administrator. Unknown
// addresses are not an error.
func (s *AccountService) IsAdminEmail(ctx context.Context, address string) (bool, error) {
	addr := normalizeEmail(address)
	if addr == "" {
		return false, newError(ErrValidation, "Please add email")
	}
	role, err := s.users.RoleByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return role >= 1, nil
}

func (s *AccountService) sendVerification(ctx context.Context, to, token string) error {
	link := weblink.VerifyEmail(s.cfg.FrontendURL, token)
	msg, err := email.VerificationMessage(s.cfg.AppName, to, link, s.tokens.TTL())
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, msg)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
