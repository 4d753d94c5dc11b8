package github

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// tokenRefreshBuffer is how long before expiry a cached token is treated
// as stale. Installation tokens live for an hour; refreshing five minutes
// early keeps long fetches from racing the expiry.
const tokenRefreshBuffer = 5 * time.Minute

// TokenManager caches a GitHub App installation token and refreshes it
// when it is missing or close to expiry. Safe for concurrent use.
type TokenManager struct {
	mu sync.RWMutex

	auth           *AppAuth
	installationID int64

	token     string
	expiresAt time.Time

	// nowFunc allows the clock to be mocked in tests.
	nowFunc func() time.Time
}

// TokenManagerOption configures a TokenManager.
type TokenManagerOption func(*TokenManager)

// WithNowFunc sets a custom time source for testing.
func WithNowFunc(fn func() time.Time) TokenManagerOption {
	return func(tm *TokenManager) {
		tm.nowFunc = fn
	}
}

// NewTokenManager creates a TokenManager for the given App credentials.
func NewTokenManager(auth *AppAuth, installationID int64, opts ...TokenManagerOption) (*TokenManager, error) {
	if auth == nil {
		return nil, fmt.Errorf("auth cannot be nil")
	}
	if installationID <= 0 {
		return nil, fmt.Errorf("installation ID must be positive")
	}

	tm := &TokenManager{
		auth:           auth,
		installationID: installationID,
		nowFunc:        time.Now,
	}

	for _, opt := range opts {
		opt(tm)
	}

	return tm, nil
}

// Token returns a valid installation token, refreshing if necessary.
func (tm *TokenManager) Token(ctx context.Context) (string, error) {
	tm.mu.RLock()
	if tm.isValidLocked() {
		token := tm.token
		tm.mu.RUnlock()
		return token, nil
	}
	tm.mu.RUnlock()

	return tm.Refresh(ctx)
}

// Refresh forces a token refresh regardless of current validity.
func (tm *TokenManager) Refresh(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	token, err := tm.auth.CreateInstallationToken(ctx, tm.installationID)
	if err != nil {
		return "", fmt.Errorf("failed to create installation token: %w", err)
	}

	tm.token = token.Token
	tm.expiresAt = token.ExpiresAt

	return tm.token, nil
}

// NeedsRefresh reports whether the cached token is missing, expired, or
// inside the refresh buffer.
func (tm *TokenManager) NeedsRefresh() bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return !tm.isValidLocked()
}

// ExpiresAt returns the expiry of the cached token, or the zero time if
// no token has been fetched yet.
func (tm *TokenManager) ExpiresAt() time.Time {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.expiresAt
}

// isValidLocked checks the cached token; callers must hold at least RLock.
func (tm *TokenManager) isValidLocked() bool {
	if tm.token == "" {
		return false
	}
	return tm.expiresAt.After(tm.nowFunc().Add(tokenRefreshBuffer))
}
