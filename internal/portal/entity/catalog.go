package entity

import (
	"time"
)

// Item 主数据：可被订单/套件/设备模板引用的物料条目
type Item struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	SKU       string    `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Price     float64   `json:"price" gorm:"type:decimal(12,2);default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}

// Kit 订单预设：创建订单时用于批量生成行项目
type Kit struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []KitItem `json:"items,omitempty" gorm:"foreignKey:KitID;constraint:OnDelete:CASCADE"`
}

func (Kit) TableName() string {
	return "kits"
}

// KitItem 套件行项目，piece 冗余物料名称
type KitItem struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	KitID     string    `json:"kit_id" gorm:"size:36;not null;index"`
	ItemID    string    `json:"item_id" gorm:"size:36"`
	Piece     string    `json:"piece" gorm:"size:128;not null"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KitItem) TableName() string {
	return "kit_items"
}

// SeapodTemplate 设备模板：新建生产记录时复制版本信息与组件清单
type SeapodTemplate struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Name          string    `json:"name" gorm:"size:128;not null"`
	HWVersion     string    `json:"hw_version" gorm:"size:64"`
	SWVersion     string    `json:"sw_version" gorm:"size:64"`
	SeapodVersion string    `json:"seapod_version" gorm:"size:64"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Items []SeapodTemplateItem `json:"items,omitempty" gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`
}

func (SeapodTemplate) TableName() string {
	return "seapod_templates"
}

// SeapodTemplateItem 模板组件行
type SeapodTemplateItem struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	TemplateID string    `json:"template_id" gorm:"size:36;not null;index"`
	ItemID     string    `json:"item_id" gorm:"size:36"`
	Piece      string    `json:"piece" gorm:"size:128;not null"`
	Quantity   int       `json:"quantity" gorm:"not null;default:1"`
	SortOrder  int       `json:"sort_order" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (SeapodTemplateItem) TableName() string {
	return "seapod_template_items"
}
