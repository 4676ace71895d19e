package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Nopass0/hh-autopilot/internal/models"
	"github.com/Nopass0/hh-autopilot/internal/repository"
)

const (
	// DefaultTokenURL is the recruitment platform's OAuth token endpoint.
	DefaultTokenURL = "https://hh.ru/oauth/token"

	// expiryMargin is the safety window: a token expiring within it is
	// refreshed before use. Ticks never run concurrently, so the margin is
	// the only freshness guard needed.
	expiryMargin = 5 * time.Minute
)

// ErrUnauthorized is returned when no token is stored or the platform rejects
// the refresh. Callers must abort the current tick and retry on the next one.
var ErrUnauthorized = errors.New("platform authorization failed")

// TokenStore persists access/refresh token pairs, append-only.
type TokenStore interface {
	Latest(ctx context.Context) (*models.AuthToken, error)
	Save(ctx context.Context, token *models.AuthToken) error
}

// Manager owns the OAuth token lifecycle for the platform account.
type Manager struct {
	store TokenStore
	conf  *oauth2.Config
	now   func() time.Time
}

func NewManager(clientID, clientSecret string, store TokenStore) *Manager {
	return &Manager{
		store: store,
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: DefaultTokenURL,
			},
		},
		now: time.Now,
	}
}

// SetTokenURL overrides the token endpoint (used in tests).
func (m *Manager) SetTokenURL(url string) {
	m.conf.Endpoint.TokenURL = url
}

// ValidToken returns a currently valid access token, refreshing it first when
// its expiry falls within the safety margin. A refresh persists the new pair
// as a new row; old pairs stay as history.
func (m *Manager) ValidToken(ctx context.Context) (string, error) {
	stored, err := m.store.Latest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoToken) {
			return "", fmt.Errorf("%w: no stored token", ErrUnauthorized)
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}

	if m.now().Add(expiryMargin).Before(stored.ExpiresAt) {
		return stored.AccessToken, nil
	}

	log.Printf("Access token expires at %s, refreshing", stored.ExpiresAt.Format(time.RFC3339))

	source := m.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: stored.RefreshToken})
	refreshed, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: refresh rejected: %v", ErrUnauthorized, err)
	}

	refreshToken := refreshed.RefreshToken
	if refreshToken == "" {
		refreshToken = stored.RefreshToken
	}

	pair := &models.AuthToken{
		ID:           uuid.New().String(),
		AccessToken:  refreshed.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    refreshed.Expiry,
		CreatedAt:    m.now(),
	}
	if err := m.store.Save(ctx, pair); err != nil {
		return "", fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	log.Printf("Token refreshed, new expiry %s", pair.ExpiresAt.Format(time.RFC3339))
	return pair.AccessToken, nil
}
