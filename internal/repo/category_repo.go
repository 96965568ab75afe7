package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
)

func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	res, err := s.colCategories.InsertOne(ctx, c)
	if IsDup(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = id
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context, userID primitive.ObjectID) ([]domain.Category, error) {
	cur, err := s.colCategories.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Category
	for cur.Next(ctx) {
		var c domain.Category
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, cur.Err()
}

// FindCategory is owner scoped: a foreign id behaves like a missing one.
func (s *Store) FindCategory(ctx context.Context, userID, id primitive.ObjectID) (*domain.Category, error) {
	var c domain.Category
	err := s.colCategories.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &c, err
}

func (s *Store) UpdateCategoryName(ctx context.Context, userID, id primitive.ObjectID, name string) (bool, error) {
	res, err := s.colCategories.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"name": name}})
	if IsDup(err) {
		return false, ErrDuplicate
	}
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id primitive.ObjectID) (bool, error) {
	res, err := s.colCategories.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return false, err
	}
	// detach, don't delete, the owner's tasks that pointed here
	_, err = s.colTasks.UpdateMany(ctx,
		bson.M{"user_id": userID, "category_id": id},
		bson.M{"$unset": bson.M{"category_id": ""}})
	return res.DeletedCount == 1, err
}

// EnsureDefaultCategories inserts the canonical names the user lacks.
// Safe to run any number of times.
func (s *Store) EnsureDefaultCategories(ctx context.Context, userID primitive.ObjectID) (int, error) {
	existing, err := s.ListCategories(ctx, userID)
	if err != nil {
		return 0, err
	}
	names := make([]string, 0, len(existing))
	for _, c := range existing {
		names = append(names, c.Name)
	}

	created := 0
	for _, name := range domain.MissingCategories(names) {
		err := s.CreateCategory(ctx, &domain.Category{UserID: userID, Name: name})
		if err == ErrDuplicate {
			continue // raced with another backfill
		}
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
