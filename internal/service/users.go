package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"example.com/storefront/internal/model"
	"example.com/storefront/internal/store"
)

type UserService struct {
	profiles ProfileRepository
	log      *slog.Logger
}

func NewUserService(profiles ProfileRepository, log *slog.Logger) *UserService {
	return &UserService{profiles: profiles, log: log}
}

func (s *UserService) List(ctx context.Context, p PageRequest) (Paged[model.Profile], error) {
	ps, total, err := s.profiles.List(ctx, p.window())
	if err != nil {
		return Paged[model.Profile]{}, Unexpected(err, "failed to list users")
	}
	return newPaged(ps, p, total), nil
}

// SetRole stores the role; repeating the current role succeeds unchanged.
func (s *UserService) SetRole(ctx context.Context, id uuid.UUID, role model.Role) (model.Profile, error) {
	if !role.Valid() {
		return model.Profile{}, Invalid("invalid role %q", role)
	}
	p, err := s.profiles.UpdateRole(ctx, id, role)
	if errors.Is(err, store.ErrNotFound) {
		return model.Profile{}, NotFound("user not found")
	}
	if err != nil {
		return model.Profile{}, Unexpected(err, "failed to update role")
	}
	s.log.Info("role updated", "user_id", id, "role", role)
	return p, nil
}
