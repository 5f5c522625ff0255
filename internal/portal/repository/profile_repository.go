package repository

import (
	"context"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"gorm.io/gorm"
)

// ProfileRepository 用户档案仓库
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	var p entity.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	var p entity.Profile
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]entity.Profile, error) {
	var ps []entity.Profile
	err := r.db.WithContext(ctx).Order("email").Find(&ps).Error
	return ps, err
}

func (r *ProfileRepository) Upsert(ctx context.Context, p *entity.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}
