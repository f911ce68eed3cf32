package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fitness/internal/db"
	"fitness/internal/email"
	"fitness/internal/models"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeIdentity struct {
	created   []string
	resets    []string
	createErr error
	resetErr  error
}

func (f *fakeIdentity) CreateAccount(_ context.Context, email, password string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	if password == "" {
		return "", errors.New("empty password")
	}
	f.created = append(f.created, email)
	return "uid-" + email, nil
}

func (f *fakeIdentity) SendPasswordReset(_ context.Context, email string) error {
	f.resets = append(f.resets, email)
	return f.resetErr
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}

func createUser(t *testing.T, users *db.UserRepository, u *models.User) *models.User {
	t.Helper()
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func requireKind(t *testing.T, err, kind error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.NotEmpty(t, svcErr.Message)
}
