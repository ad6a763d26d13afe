package user

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Service defines business logic related to users.
type Service interface {
	Create(ctx context.Context, name, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*User, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	log  *zap.Logger
}

// NewService creates a new user Service.
func NewService(repo Repository, log *zap.Logger) Service {
	return &service{
		repo: repo,
		log:  log.Named("user"),
	}
}

func (s *service) Create(ctx context.Context, name, email string) (*User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" {
		return nil, ErrEmailRequired
	}
	cleanName := strings.TrimSpace(name)
	if cleanName == "" {
		return nil, ErrNameRequired
	}

	u := &User{
		Name:  cleanName,
		Email: cleanEmail,
	}

	// Uniqueness is enforced by the store.
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user created", zap.Int64("user_id", u.ID))
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil && normalizeEmail(*req.Email) != "" {
		u.Email = normalizeEmail(*req.Email)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
