// Package identity binds the session to a username persisted in the
// durable key-value store. Everything except the OAuth callback treats the
// binding as read-only; an unset binding resolves to "guest".
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fablepress/core/internal/pkg/kv"
)

const (
	keyCurrentUser = "currentUser"
	keyToken       = "gh_token"

	// Guest is the author attributed when no identity is bound.
	Guest = "guest"
)

// Binding resolves and updates the current identity.
type Binding struct {
	kv          *kv.Store
	log         *zap.Logger
	exchangeURL string
	client      *http.Client
}

// NewBinding creates an identity binding. exchangeURL is the remote code
// exchange endpoint; the code is appended as a query parameter.
func NewBinding(store *kv.Store, exchangeURL string, log *zap.Logger) *Binding {
	if log == nil {
		log = zap.NewNop()
	}
	return &Binding{
		kv:          store,
		log:         log,
		exchangeURL: exchangeURL,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Current returns the bound username, or "guest" when unset or when the
// store is unreachable.
func (b *Binding) Current(ctx context.Context) string {
	username, err := b.kv.Get(ctx, keyCurrentUser)
	if err != nil {
		b.log.Warn("identity lookup failed", zap.Error(err))
		return Guest
	}
	if username == "" {
		return Guest
	}
	return username
}

// SignedIn reports whether an identity is bound.
func (b *Binding) SignedIn(ctx context.Context) bool {
	bound, err := b.kv.Exists(ctx, keyCurrentUser)
	if err != nil {
		b.log.Warn("identity lookup failed", zap.Error(err))
		return false
	}
	return bound
}

// SignOut clears the binding and the held token.
func (b *Binding) SignOut(ctx context.Context) error {
	return b.kv.Del(ctx, keyCurrentUser, keyToken)
}

type exchangeResponse struct {
	Profile struct {
		Login string `json:"login"`
	} `json:"profile"`
	Token string `json:"token"`
}

// Exchange trades an OAuth code for a login and token at the configured
// endpoint and persists both.
func (b *Binding) Exchange(ctx context.Context, code string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.exchangeURL+"?code="+code, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("code exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("code exchange: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("code exchange: %w", err)
	}
	var parsed exchangeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("code exchange: %w", err)
	}
	if parsed.Profile.Login == "" {
		return "", fmt.Errorf("code exchange: empty login")
	}

	if err := b.kv.Set(ctx, keyCurrentUser, parsed.Profile.Login); err != nil {
		return "", err
	}
	if err := b.kv.Set(ctx, keyToken, parsed.Token); err != nil {
		return "", err
	}
	b.log.Info("identity bound", zap.String("username", parsed.Profile.Login))
	return parsed.Profile.Login, nil
}
