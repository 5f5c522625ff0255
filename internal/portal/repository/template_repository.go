package repository

import (
	"context"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"gorm.io/gorm"
)

// TemplateRepository 设备模板仓库
type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, tpl *entity.SeapodTemplate) error {
	return r.db.WithContext(ctx).Create(tpl).Error
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*entity.SeapodTemplate, error) {
	var tpl entity.SeapodTemplate
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Where("id = ?", id).First(&tpl).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tpl, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]entity.SeapodTemplate, error) {
	var tpls []entity.SeapodTemplate
	err := r.db.WithContext(ctx).Order("name").Find(&tpls).Error
	return tpls, err
}

func (r *TemplateRepository) Update(ctx context.Context, tpl *entity.SeapodTemplate) error {
	return r.db.WithContext(ctx).Save(tpl).Error
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Select("Items").Where("id = ?", id).Delete(&entity.SeapodTemplate{ID: id}).Error
}

// GetItems 按 sort_order 取模板组件行
func (r *TemplateRepository) GetItems(ctx context.Context, templateID string) ([]entity.SeapodTemplateItem, error) {
	var items []entity.SeapodTemplateItem
	err := r.db.WithContext(ctx).Where("template_id = ?", templateID).Order("sort_order").Find(&items).Error
	return items, err
}

func (r *TemplateRepository) CreateItem(ctx context.Context, item *entity.SeapodTemplateItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *TemplateRepository) UpdateItem(ctx context.Context, item *entity.SeapodTemplateItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *TemplateRepository) DeleteItem(ctx context.Context, itemID string) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&entity.SeapodTemplateItem{}).Error
}
