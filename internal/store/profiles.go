package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"example.com/storefront/internal/model"
)

type Profiles struct{ db *gorm.DB }

func NewProfiles(db *gorm.DB) *Profiles { return &Profiles{db: db} }

func (s *Profiles) Create(ctx context.Context, p *model.Profile) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *Profiles) Get(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	var p model.Profile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return p, translate(err)
}

func (s *Profiles) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Profile{}).Where("email = ?", email).Limit(1).Count(&n).Error
	return n > 0, translate(err)
}

func (s *Profiles) Role(ctx context.Context, id uuid.UUID) (model.Role, error) {
	var p model.Profile
	err := s.db.WithContext(ctx).Select("id", "role").Where("id = ?", id).First(&p).Error
	return p.Role, translate(err)
}

func (s *Profiles) List(ctx context.Context, page Page) ([]model.Profile, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Profile{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var ps []model.Profile
	err := s.db.WithContext(ctx).Scopes(page.scope).Order("created_at desc").Find(&ps).Error
	return ps, total, translate(err)
}

// UpdateRole sets the role and returns the stored row. Setting the current
// role again leaves the row untouched and still succeeds.
func (s *Profiles) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (model.Profile, error) {
	err := s.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ? AND role <> ?", id, role).
		Updates(map[string]any{"role": role, "updated_at": time.Now()}).Error
	if err != nil {
		return model.Profile{}, translate(err)
	}
	return s.Get(ctx, id)
}

func (s *Profiles) FindByEmail(ctx context.Context, email string) (model.Profile, error) {
	var p model.Profile
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&p).Error
	return p, translate(err)
}
