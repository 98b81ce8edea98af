package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-user-directory/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no record matches the given identifier.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned when an identifier string is not a valid
	// encoding of the store's native identifier.
	ErrInvalidID = errors.New("invalid identifier")
)

// UserRepository defines the interface for user-related store operations.
// Implementations own identifier translation between the transport string
// and their native identifier type.
type UserRepository interface {
	Insert(ctx context.Context, f entity.UserFields) (*entity.User, error)
	FindAll(ctx context.Context) ([]entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// ReplaceByID overwrites every field of the matched record and returns
	// the record as stored after the write.
	ReplaceByID(ctx context.Context, id string, f entity.UserFields) (*entity.User, error)
	DeleteByID(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
