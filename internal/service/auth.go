package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"example.com/storefront/internal/identity"
	"example.com/storefront/internal/model"
	"example.com/storefront/internal/store"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *model.Profile) error
	Get(ctx context.Context, id uuid.UUID) (model.Profile, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Role(ctx context.Context, id uuid.UUID) (model.Role, error)
	List(ctx context.Context, page store.Page) ([]model.Profile, int64, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (model.Profile, error)
}

type RegisterInput struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	FullName string     `json:"full_name"`
	Role     model.Role `json:"role"`
}

type LoginResult struct {
	Session identity.Session `json:"session"`
	Profile *model.Profile   `json:"profile"`
}

type AuthService struct {
	gateway  identity.Gateway
	profiles ProfileRepository
	log      *slog.Logger
}

func NewAuthService(gateway identity.Gateway, profiles ProfileRepository, log *slog.Logger) *AuthService {
	return &AuthService{gateway: gateway, profiles: profiles, log: log}
}

// Register creates the identity account and its customer profile. A taken
// email is rejected before any account exists; a profile that cannot be
// written takes the fresh account down with it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	role := in.Role
	if role == "" {
		role = model.RoleCustomer
	}
	if !role.Valid() {
		return model.Profile{}, Invalid("unknown role %q", role)
	}

	taken, err := s.profiles.EmailTaken(ctx, email)
	if err != nil {
		// the gateway still refuses duplicates, so carry on
		s.log.Warn("email lookup failed", "email", email, "err", err)
	}
	if taken {
		return model.Profile{}, Domain(ErrEmailTaken, "email already in use")
	}

	id, err := s.gateway.SignUp(ctx, email, in.Password, in.FullName)
	if errors.Is(err, identity.ErrEmailExists) {
		return model.Profile{}, Domain(ErrEmailTaken, "email already in use")
	}
	if err != nil {
		return model.Profile{}, Domain(err, "failed to create user")
	}

	p := model.Profile{ID: id.ID, Email: id.Email, FullName: in.FullName, Role: role}
	if err := s.profiles.Create(ctx, &p); err != nil {
		if derr := s.gateway.DeleteAccount(context.WithoutCancel(ctx), id.ID); derr != nil {
			s.log.Error("orphaned account after profile failure", "account_id", id.ID, "err", derr)
		}
		return model.Profile{}, Domain(err, "failed to create user profile")
	}
	s.log.Info("user registered", "user_id", p.ID, "role", p.Role)
	return p, nil
}

// Login signs in and attaches the stored profile when it can be read.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	sess, err := s.gateway.SignIn(ctx, email, password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		return LoginResult{}, Domain(ErrInvalidCredentials, "invalid credentials")
	}
	if err != nil {
		return LoginResult{}, Unexpected(err, "failed to sign in")
	}
	res := LoginResult{Session: sess}
	if p, err := s.profiles.Get(ctx, sess.User.ID); err == nil {
		res.Profile = &p
	} else {
		s.log.Warn("profile missing at login", "user_id", sess.User.ID, "err", err)
	}
	return res, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.gateway.SignOut(ctx, token); err != nil {
		return Domain(err, "failed to sign out")
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	p, err := s.profiles.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Profile{}, NotFound("profile not found")
	}
	if err != nil {
		return model.Profile{}, Unexpected(err, "failed to load profile")
	}
	return p, nil
}

// IsAdmin reports whether the account's stored role is admin. A missing
// profile is simply not an admin.
func (s *AuthService) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	role, err := s.profiles.Role(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, Unexpected(err, "failed to load role")
	}
	return role == model.RoleAdmin, nil
}
