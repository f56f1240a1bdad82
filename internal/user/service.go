package user

import (
	"context"

	internal "github.com/taskhive/task-management/internal"
)

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// GetByID returns the user profile; a zero or negative id means the request
// never carried an authenticated user.
func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	if userID <= 0 {
		return nil, internal.ErrNotAuthenticated
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrUserProfileNotFound
	}

	return u, nil
}
