package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
	"github.com/SezimOrozobekova/velox-backend/internal/log"
	"github.com/SezimOrozobekova/velox-backend/internal/oauth"
)

// ErrNoCredential means the user never connected a calendar; sync is
// skipped, the task itself is untouched.
var ErrNoCredential = errors.New("no calendar credential stored")

type CredentialStore interface {
	FindCredentialByUser(ctx context.Context, userID primitive.ObjectID) (*domain.GoogleCredential, error)
	UpdateCredentialToken(ctx context.Context, userID primitive.ObjectID, access string, expiry time.Time) error
}

type EventCreator interface {
	CreateEvent(ctx context.Context, accessToken string, t *domain.Task) error
}

// Refresher runs a refresh grant; the default is oauth.RefreshToken.
type Refresher func(ctx context.Context, tokenURL, clientID, clientSecret, refreshToken string) (*oauth.TokenResponse, error)

// Syncer mirrors freshly created tasks into the external calendar.
// Best effort: it never touches the task, but errors are returned, not
// swallowed, so the caller can surface them.
type Syncer struct {
	Creds   CredentialStore
	Events  EventCreator
	Refresh Refresher
	Now     func() time.Time
}

func NewSyncer(creds CredentialStore, events EventCreator) *Syncer {
	return &Syncer{
		Creds:   creds,
		Events:  events,
		Refresh: oauth.RefreshToken,
		Now:     time.Now,
	}
}

func (s *Syncer) Sync(ctx context.Context, userID primitive.ObjectID, t *domain.Task) error {
	cred, err := s.Creds.FindCredentialByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load calendar credential: %w", err)
	}
	if cred == nil {
		log.Infof("calendar sync skipped for user %s: no credential", userID.Hex())
		return ErrNoCredential
	}

	if cred.Expired(s.Now()) && cred.RefreshToken != "" {
		tr, err := s.Refresh(ctx, cred.TokenURI, cred.ClientID, cred.ClientSecret, cred.RefreshToken)
		if err != nil {
			log.Errorf("calendar token refresh failed for user %s: %v", userID.Hex(), err)
			return fmt.Errorf("refresh calendar token: %w", err)
		}
		expiry := s.Now().Add(time.Duration(tr.ExpiresIn) * time.Second).UTC()
		// persist before use: a crash later must not lose the new token
		if err := s.Creds.UpdateCredentialToken(ctx, userID, tr.AccessToken, expiry); err != nil {
			return fmt.Errorf("persist refreshed token: %w", err)
		}
		cred.AccessToken = tr.AccessToken
	}

	if err := s.Events.CreateEvent(ctx, cred.AccessToken, t); err != nil {
		log.Errorf("calendar event create failed for task %q: %v", t.Title, err)
		return fmt.Errorf("create calendar event: %w", err)
	}
	log.Infof("calendar event created for task %q", t.Title)
	return nil
}
