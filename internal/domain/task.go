package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recurrence frequencies. Anything else is coerced to FrequencyNone.
const (
	FrequencyNone    = "none"
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
)

var Frequencies = map[string]struct{}{
	FrequencyNone:    {},
	FrequencyDaily:   {},
	FrequencyWeekly:  {},
	FrequencyMonthly: {},
	FrequencyYearly:  {},
}

// ValidFrequency reports whether f is one of the five allowed values.
func ValidFrequency(f string) bool {
	_, ok := Frequencies[f]
	return ok
}

// Task keeps date and time-of-day fields as the strings the API speaks
// ("2006-01-02" and "15:04:05"); they are produced by clients or by the
// extractor and are not re-parsed here.
type Task struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty"         json:"id"`
	UserID     primitive.ObjectID  `bson:"user_id"               json:"-"`
	CategoryID *primitive.ObjectID `bson:"category_id,omitempty" json:"category"`
	Title      string              `bson:"title"                 json:"title"`
	Date       string              `bson:"date"                  json:"date"`
	TimeStart  string              `bson:"time_start"            json:"time_start"`
	TimeEnd    string              `bson:"time_end"              json:"time_end"`
	Frequency  string              `bson:"frequency"             json:"frequency"`
	Reminder   bool                `bson:"reminder"              json:"reminder"`
	Location   string              `bson:"location"              json:"location"`
	Notes      string              `bson:"notes"                 json:"notes"`
	CreatedAt  time.Time           `bson:"created_at"            json:"created_at"`
}
