package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email"         json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Name         string             `bson:"name"          json:"name"`
	Active       bool               `bson:"active"        json:"active"`
	WakeUpTime   string             `bson:"wake_up_time"  json:"wake_up_time"` // HH:MM:SS
	SleepTime    string             `bson:"sleep_time"    json:"sleep_time"`   // HH:MM:SS
	CreatedAt    time.Time          `bson:"created_at"    json:"created_at"`
}
