package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"fitness/internal/auth"
	"fitness/internal/config"
	"fitness/internal/db"
	"fitness/internal/email"
	"fitness/internal/identity"
	"fitness/internal/models"
	"fitness/internal/service"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []email.Message
}

func (m *recordingMailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type testServer struct {
	handler http.Handler
	queries *db.Queries
	jwt     *auth.JWTService
	mailer  *recordingMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	database := openTestDB(t)
	queries := database.Queries()
	mailer := &recordingMailer{}
	jwtService := auth.NewJWTService(strings.Repeat("k", 32), time.Hour)

	clock, err := service.NewReferenceClock("UTC")
	if err != nil {
		t.Fatalf("NewReferenceClock() error = %v", err)
	}
	plans := service.NewPlanService(queries.Plans, queries.Exercises, clock)

	cfg := &config.Config{
		Server: config.ServerConfig{
			FrontendURL:    "https://app.example.com",
			AllowedOrigins: []string{"https://app.example.com"},
		},
	}
	srv, err := NewServer(cfg, database, queries.Users, jwtService, Services{
		Accounts: service.NewAccountService(
			queries.Users,
			identity.Disabled{},
			mailer,
			auth.NewVerificationTokenService(0),
			service.AccountConfig{AppName: "Booty Fitness", FrontendURL: cfg.Server.FrontendURL},
		),
		Users:   service.NewUserService(queries.Users, plans),
		History: service.NewHistoryService(queries.Users),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	return &testServer{handler: srv, queries: queries, jwt: jwtService, mailer: mailer}
}

func (s *testServer) createUser(t *testing.T, u *models.User) *models.User {
	t.Helper()
	if err := s.queries.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return u
}

func (s *testServer) tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(u)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	return token
}

func (s *testServer) do(t *testing.T, method, target, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	var decoded map[string]any
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("json.Unmarshal() error = %v, body=%q", err, rr.Body.String())
		}
	}
	return rr, decoded
}

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}
