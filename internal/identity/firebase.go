package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"
	requestTimeout = 15 * time.Second
	maxResponse    = 1 << 20
)

// FirebaseClient talks to the Identity Toolkit REST API of a Firebase
// project. It owns account creation and the password-reset email.
type FirebaseClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewFirebaseClient(apiKey, baseURL string) *FirebaseClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FirebaseClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// CreateAccount registers email with password and returns the provider uid.
func (c *FirebaseClient) CreateAccount(ctx context.Context, email, password string) (string, error) {
	body, err := c.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": false,
	})
	if err != nil {
		return "", fmt.Errorf("creating identity account: %w", err)
	}

	uid := gjson.GetBytes(body, "localId").String()
	if uid == "" {
		return "", fmt.Errorf("creating identity account: response carries no localId")
	}
	return uid, nil
}

// SendPasswordReset asks the provider to email a password-reset link.
func (c *FirebaseClient) SendPasswordReset(ctx context.Context, email string) error {
	if _, err := c.call(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}); err != nil {
		return fmt.Errorf("sending password reset: %w", err)
	}
	return nil
}

func (c *FirebaseClient) call(ctx context.Context, method string, payload map[string]any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	endpoint := c.baseURL + "/" + method + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", method, err)
	}

	if resp.StatusCode >= 300 {
		return nil, &ProviderError{
			Status:  resp.StatusCode,
			Message: gjson.GetBytes(body, "error.message").String(),
		}
	}
	return body, nil
}

// ProviderError is a non-2xx answer from the identity provider.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity provider returned status %d", e.Status)
	}
	return fmt.Sprintf("identity provider returned status %d: %s", e.Status, e.Message)
}

// EmailExists reports whether the provider rejected a sign-up because the
// address is already registered there.
func (e *ProviderError) EmailExists() bool {
	return e.Message == "EMAIL_EXISTS"
}
