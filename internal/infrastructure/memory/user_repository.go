// Package memory provides an in-process UserRepository. It backs
// STORE_DRIVER=memory and stands in for the document store in tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/go-user-directory/internal/domain/entity"
	"github.com/oksasatya/go-user-directory/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	order []uuid.UUID
	users map[uuid.UUID]entity.UserFields
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]entity.UserFields)}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, repository.ErrInvalidID
	}
	return u, nil
}

func (r *UserRepository) Insert(_ context.Context, f entity.UserFields) (*entity.User, error) {
	id := uuid.New()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = f
	r.order = append(r.order, id)
	return f.WithID(id.String()), nil
}

// FindAll returns records in insertion order.
func (r *UserRepository) FindAll(_ context.Context) ([]entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.users[id].WithID(id.String()))
	}
	return out, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.users[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.WithID(key.String()), nil
}

func (r *UserRepository) ReplaceByID(_ context.Context, id string, f entity.UserFields) (*entity.User, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[key]; !ok {
		return nil, repository.ErrNotFound
	}
	r.users[key] = f
	return f.WithID(key.String()), nil
}

func (r *UserRepository) DeleteByID(_ context.Context, id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *UserRepository) Ping(context.Context) error { return nil }
