package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoogleCredential is the one-per-user external calendar OAuth bundle.
// A new grant replaces the previous bundle in place.
type GoogleCredential struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID       primitive.ObjectID `bson:"user_id"       json:"-"`
	AccessToken  string             `bson:"access_token"  json:"-"`
	RefreshToken string             `bson:"refresh_token" json:"-"`
	TokenURI     string             `bson:"token_uri"     json:"token_uri"`
	ClientID     string             `bson:"client_id"     json:"-"`
	ClientSecret string             `bson:"client_secret" json:"-"`
	TokenExpiry  time.Time          `bson:"token_expiry"  json:"token_expiry"`
	Scopes       string             `bson:"scopes"        json:"scopes"` // comma-joined
}

func (c *GoogleCredential) Expired(now time.Time) bool {
	return !c.TokenExpiry.IsZero() && !now.Before(c.TokenExpiry)
}

func (c *GoogleCredential) ScopeList() []string {
	if c.Scopes == "" {
		return nil
	}
	return strings.Split(c.Scopes, ",")
}
