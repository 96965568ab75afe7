package repo

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
)

func (s *Store) CreateTask(ctx context.Context, t *domain.Task) error {
	t.CreatedAt = time.Now().UTC()
	res, err := s.colTasks.InsertOne(ctx, t)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = id
	}
	return nil
}

// TaskQuery carries the list filters. Ordering accepts date, time_start,
// created_at, each with an optional leading "-".
type TaskQuery struct {
	Search   string
	Ordering string
}

var orderableFields = map[string]string{
	"date":       "date",
	"time_start": "time_start",
	"created_at": "created_at",
}

func sortSpec(ordering string) bson.D {
	dir := 1
	key := strings.TrimSpace(ordering)
	if strings.HasPrefix(key, "-") {
		dir = -1
		key = key[1:]
	}
	field, ok := orderableFields[key]
	if !ok {
		field = "date"
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}}
}

func (s *Store) ListTasks(ctx context.Context, userID primitive.ObjectID, q TaskQuery) ([]domain.Task, error) {
	filter := bson.M{"user_id": userID}

	if term := strings.TrimSpace(q.Search); term != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		or := []bson.M{
			{"title": re},
			{"notes": re},
		}
		// the category leg matches by the caller's own category names
		if ids, err := s.categoryIDsMatching(ctx, userID, term); err != nil {
			return nil, err
		} else if len(ids) > 0 {
			or = append(or, bson.M{"category_id": bson.M{"$in": ids}})
		}
		filter["$or"] = or
	}

	cur, err := s.colTasks.Find(ctx, filter, options.Find().SetSort(sortSpec(q.Ordering)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Task
	for cur.Next(ctx) {
		var t domain.Task
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, cur.Err()
}

func (s *Store) categoryIDsMatching(ctx context.Context, userID primitive.ObjectID, term string) ([]primitive.ObjectID, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	cur, err := s.colCategories.Find(ctx, bson.M{"user_id": userID, "name": re})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var c domain.Category
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		ids = append(ids, c.ID)
	}
	return ids, cur.Err()
}

func (s *Store) FindTask(ctx context.Context, userID, id primitive.ObjectID) (*domain.Task, error) {
	var t domain.Task
	err := s.colTasks.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &t, err
}

// ReplaceTask writes back a task previously loaded via FindTask, still
// scoped by owner.
func (s *Store) ReplaceTask(ctx context.Context, t *domain.Task) error {
	res, err := s.colTasks.ReplaceOne(ctx, bson.M{"_id": t.ID, "user_id": t.UserID}, t)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, userID, id primitive.ObjectID) (bool, error) {
	res, err := s.colTasks.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}
