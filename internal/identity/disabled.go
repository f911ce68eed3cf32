package identity

import (
	"context"
	"log/slog"
)

// Disabled stands in for the provider in local setups. Accounts exist only
// in the local database and no password-reset email is sent.
type Disabled struct{}

func (Disabled) CreateAccount(_ context.Context, email, _ string) (string, error) {
	slog.Warn("identity provider disabled, skipping account creation", "component", "identity", "email", email)
	return "", nil
}

func (Disabled) SendPasswordReset(_ context.Context, email string) error {
	slog.Warn("identity provider disabled, skipping password reset", "component", "identity", "email", email)
	return nil
}
