package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// translate 把 gorm 的未找到错误统一成 ErrNotFound
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Repositories 仓库集合
type Repositories struct {
	Item     *ItemRepository
	Kit      *KitRepository
	Template *TemplateRepository
	Order    *OrderRepository
	Seapod   *SeapodRepository
	Profile  *ProfileRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Item:     NewItemRepository(db),
		Kit:      NewKitRepository(db),
		Template: NewTemplateRepository(db),
		Order:    NewOrderRepository(db),
		Seapod:   NewSeapodRepository(db),
		Profile:  NewProfileRepository(db),
	}
}
