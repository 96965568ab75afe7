package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
)

// UpsertCredential replaces the user's bundle in place; a new OAuth grant
// never leaves two live bundles behind.
func (s *Store) UpsertCredential(ctx context.Context, c *domain.GoogleCredential) error {
	c.ID = primitive.NilObjectID
	_, err := s.colCreds.ReplaceOne(ctx,
		bson.M{"user_id": c.UserID},
		c,
		options.Replace().SetUpsert(true))
	return err
}

func (s *Store) FindCredentialByUser(ctx context.Context, userID primitive.ObjectID) (*domain.GoogleCredential, error) {
	var c domain.GoogleCredential
	err := s.colCreds.FindOne(ctx, bson.M{"user_id": userID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &c, err
}

// UpdateCredentialToken persists a refreshed access token and its new
// expiry before any calendar call is made with it.
func (s *Store) UpdateCredentialToken(ctx context.Context, userID primitive.ObjectID, access string, expiry time.Time) error {
	res, err := s.colCreds.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"access_token": access, "token_expiry": expiry.UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
