package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-user-directory/internal/domain/entity"
)

// Event types
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Event is the envelope published after a successful write.
type Event struct {
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Data      UserEventData `json:"data"`
}

type UserEventData struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Age    int    `json:"age,omitempty"`
}

func newUserEvent(typ string, u *entity.User) Event {
	return Event{
		Type:      typ,
		Timestamp: time.Now().UTC(),
		Data:      UserEventData{UserID: u.ID, Name: u.Name, Email: u.Email, Age: u.Age},
	}
}

// EventPublisher delivers user lifecycle events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

// UserIndexer maintains a search projection of users outside the store.
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]entity.User, error)
}
