package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	u.CreatedAt = time.Now().UTC()
	res, err := s.colUsers.InsertOne(ctx, u)
	if IsDup(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (s *Store) ActivateUser(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.colUsers.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"active": true}})
	return err
}

// UpdateUserProfile applies the allow-listed mutable profile fields.
// Nil means "leave unchanged".
func (s *Store) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, name, wakeUp, sleep *string) error {
	set := bson.M{}
	if name != nil {
		set["name"] = *name
	}
	if wakeUp != nil {
		set["wake_up_time"] = *wakeUp
	}
	if sleep != nil {
		set["sleep_time"] = *sleep
	}
	if len(set) == 0 {
		return nil
	}
	_, err := s.colUsers.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// ListUserIDs walks every user; used by the default-category backfill.
func (s *Store) ListUserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cur, err := s.colUsers.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, row.ID)
	}
	return out, cur.Err()
}
