package repository

import (
	"context"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"gorm.io/gorm"
)

// KitRepository 套件预设仓库
type KitRepository struct {
	db *gorm.DB
}

func NewKitRepository(db *gorm.DB) *KitRepository {
	return &KitRepository{db: db}
}

func (r *KitRepository) Create(ctx context.Context, kit *entity.Kit) error {
	return r.db.WithContext(ctx).Create(kit).Error
}

func (r *KitRepository) GetByID(ctx context.Context, id string) (*entity.Kit, error) {
	var kit entity.Kit
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Where("id = ?", id).First(&kit).Error
	if err != nil {
		return nil, translate(err)
	}
	return &kit, nil
}

func (r *KitRepository) List(ctx context.Context) ([]entity.Kit, error) {
	var kits []entity.Kit
	err := r.db.WithContext(ctx).Order("name").Find(&kits).Error
	return kits, err
}

func (r *KitRepository) Update(ctx context.Context, kit *entity.Kit) error {
	return r.db.WithContext(ctx).Save(kit).Error
}

func (r *KitRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Select("Items").Where("id = ?", id).Delete(&entity.Kit{ID: id}).Error
}

// GetItems 按 sort_order 取套件行
func (r *KitRepository) GetItems(ctx context.Context, kitID string) ([]entity.KitItem, error) {
	var items []entity.KitItem
	err := r.db.WithContext(ctx).Where("kit_id = ?", kitID).Order("sort_order").Find(&items).Error
	return items, err
}

func (r *KitRepository) CreateItem(ctx context.Context, item *entity.KitItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *KitRepository) UpdateItem(ctx context.Context, item *entity.KitItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *KitRepository) DeleteItem(ctx context.Context, itemID string) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&entity.KitItem{}).Error
}
