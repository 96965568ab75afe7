package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category is a per-user bucket for tasks. Names are unique per owner,
// not globally.
type Category struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id"       json:"-"`
	Name   string             `bson:"name"          json:"name"`
}

// DefaultCategories are seeded for every user who lacks them.
var DefaultCategories = []string{"Work", "Study", "Personal", "Shopping", "Health", "Home", "Other"}

// MissingCategories returns the default names absent from existing.
// Calling the backfill twice therefore never duplicates a category.
func MissingCategories(existing []string) []string {
	have := make(map[string]struct{}, len(existing))
	for _, n := range existing {
		have[n] = struct{}{}
	}
	var missing []string
	for _, n := range DefaultCategories {
		if _, ok := have[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}
