package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-directory/internal/domain/entity"
	repo "github.com/oksasatya/go-user-directory/internal/domain/repository"
	"github.com/oksasatya/go-user-directory/pkg/metrics"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

// Service implements the user directory operations. Every read goes to the
// repository; nothing is kept between calls. Publisher, Index and Metrics
// are optional.
type Service struct {
	Repo      repo.UserRepository
	Publisher EventPublisher
	Index     UserIndexer
	Metrics   *metrics.Manager
	Logger    *logrus.Logger
}

func NewService(repo repo.UserRepository, pub EventPublisher, index UserIndexer, m *metrics.Manager, logger *logrus.Logger) *Service {
	return &Service{
		Repo:      repo,
		Publisher: pub,
		Index:     index,
		Metrics:   m,
		Logger:    logger,
	}
}

// validateInput enforces the user schema before anything touches the store.
func validateInput(f entity.UserFields) error {
	fields := map[string]string{}
	if f.Name == "" {
		fields["name"] = "is required"
	}
	if f.Email == "" {
		fields["email"] = "is required"
	}
	switch {
	case f.Age <= 0:
		fields["age"] = "must be greater than 0"
	case f.Age > entity.MaxAge:
		fields["age"] = "must be less than or equal to " + strconv.Itoa(entity.MaxAge)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Create inserts a new user and returns it with its assigned id.
func (s *Service) Create(ctx context.Context, f entity.UserFields) (*entity.User, error) {
	if err := validateInput(f); err != nil {
		return nil, err
	}
	start := time.Now()
	u, err := s.Repo.Insert(ctx, f)
	s.observe("insert", start, err)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.afterWrite(ctx, EventUserCreated, u)
	return u, nil
}

// ListAll returns every user in store order.
func (s *Service) ListAll(ctx context.Context) ([]entity.User, error) {
	start := time.Now()
	users, err := s.Repo.FindAll(ctx)
	s.observe("find_all", start, err)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*entity.User, error) {
	start := time.Now()
	u, err := s.Repo.FindByID(ctx, id)
	s.observe("find_one", start, err)
	if err != nil {
		return nil, lookupErr("get user", err)
	}
	return u, nil
}

// UpdateByID replaces name, email and age of the user and returns the
// stored result. The id never changes.
func (s *Service) UpdateByID(ctx context.Context, id string, f entity.UserFields) (*entity.User, error) {
	if err := validateInput(f); err != nil {
		return nil, err
	}
	start := time.Now()
	u, err := s.Repo.ReplaceByID(ctx, id, f)
	s.observe("update", start, err)
	if err != nil {
		return nil, lookupErr("update user", err)
	}
	s.afterWrite(ctx, EventUserUpdated, u)
	return u, nil
}

func (s *Service) DeleteByID(ctx context.Context, id string) error {
	start := time.Now()
	err := s.Repo.DeleteByID(ctx, id)
	s.observe("delete", start, err)
	if err != nil {
		return lookupErr("delete user", err)
	}
	s.afterWrite(ctx, EventUserDeleted, &entity.User{ID: id})
	return nil
}

// Search queries the search index. Without an index it returns no results.
func (s *Service) Search(ctx context.Context, q string, size int) ([]entity.User, error) {
	if s.Index == nil || q == "" {
		return []entity.User{}, nil
	}
	switch {
	case size <= 0:
		size = defaultSearchSize
	case size > maxSearchSize:
		size = maxSearchSize
	}
	users, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.Repo.Ping(ctx)
}

func lookupErr(op string, err error) error {
	if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrInvalidID) {
		return ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, repo.ErrInvalidID):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	s.Metrics.ObserveStoreOp(op, outcome, time.Since(start))
}

// afterWrite publishes the lifecycle event and refreshes the search index.
// Both are best effort: failures are logged and never fail the request.
func (s *Service) afterWrite(ctx context.Context, typ string, u *entity.User) {
	if s.Publisher != nil {
		if err := s.Publisher.Publish(ctx, newUserEvent(typ, u)); err != nil {
			s.warn(err, typ, u.ID, "publish user event failed")
		}
	}
	if s.Index == nil {
		return
	}
	var err error
	if typ == EventUserDeleted {
		err = s.Index.Remove(ctx, u.ID)
	} else {
		err = s.Index.Index(ctx, u)
	}
	if err != nil {
		s.warn(err, typ, u.ID, "search index update failed")
	}
}

func (s *Service) warn(err error, typ, userID, msg string) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(logrus.Fields{"event": typ, "user_id": userID}).Warn(msg)
}
