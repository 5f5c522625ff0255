package entity

import (
	"strings"
	"time"
)

// OrderStatus 订单状态
const (
	OrderStatusNew            = "New"
	OrderStatusInPreparation  = "In preparation"
	OrderStatusInBox          = "In Box"
	OrderStatusReadyForPickup = "Ready for Pickup"
	OrderStatusShipped        = "Shipped"
)

// VesselPlaceholder 未填写船名时的占位值
const VesselPlaceholder = "Unknown Vessel"

// SeapodKeyword 行项目名称包含该关键字即视为设备行
const SeapodKeyword = "seapod"

// OrderStatuses 合法状态全集（下拉顺序即生命周期顺序）
var OrderStatuses = []string{
	OrderStatusNew,
	OrderStatusInPreparation,
	OrderStatusInBox,
	OrderStatusReadyForPickup,
	OrderStatusShipped,
}

// IsValidOrderStatus 校验状态取值
func IsValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsAdvancedStatus 是否属于需要设备校验门禁的状态
func IsAdvancedStatus(s string) bool {
	return s == OrderStatusInBox || s == OrderStatusReadyForPickup || s == OrderStatusShipped
}

// IsDeletableStatus 订单是否允许删除
func IsDeletableStatus(s string) bool {
	return s == OrderStatusNew || s == OrderStatusInPreparation || s == OrderStatusInBox
}

// Order 订单头
type Order struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	OrderNumber string     `json:"order_number" gorm:"size:32;not null;uniqueIndex"`
	Vessel      string     `json:"vessel" gorm:"size:128"`
	AccountName string     `json:"account_name" gorm:"size:128"`
	Warehouse   string     `json:"warehouse" gorm:"size:64"`
	PickupDate  *time.Time `json:"pickup_date"`
	Kit         string     `json:"kit" gorm:"size:128"` // 创建时使用的套件名，仅展示用
	Status      string     `json:"status" gorm:"size:32;not null;default:New"`
	ShippedAt   *time.Time `json:"shipped_at"`
	CreatedBy   string     `json:"created_by" gorm:"size:64"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Files []OrderFile `json:"files,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "orders"
}

// HasVessel 船名是否为真实值（非空且非占位符）
func (o *Order) HasVessel() bool {
	return o.Vessel != "" && o.Vessel != VesselPlaceholder
}

// OrderItem 订单行项目
type OrderItem struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	OrderID    string    `json:"order_id" gorm:"size:36;not null;index"`
	ItemID     string    `json:"item_id" gorm:"size:36"`
	Piece      string    `json:"piece" gorm:"size:128;not null"`
	Quantity   int       `json:"quantity" gorm:"not null;default:1"`
	Serial     string    `json:"serial" gorm:"size:128"`
	ExternalID string    `json:"external_id" gorm:"size:128"`
	Price      float64   `json:"price" gorm:"type:decimal(12,2);default:0"`
	SortOrder  int       `json:"sort_order" gorm:"default:0"`
	IsDone     bool      `json:"is_done" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// IsSeapod 名称包含设备关键字（大小写不敏感）
func (i *OrderItem) IsSeapod() bool {
	return strings.Contains(strings.ToLower(i.Piece), SeapodKeyword)
}

// HasSerial 序列号已填写（非空白）
func (i *OrderItem) HasSerial() bool {
	return strings.TrimSpace(i.Serial) != ""
}

// OrderFile 订单附件元数据，文件本体存对象存储
type OrderFile struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	OrderID    string    `json:"order_id" gorm:"size:36;not null;index"`
	FileName   string    `json:"file_name" gorm:"size:256;not null"`
	FilePath   string    `json:"file_path" gorm:"size:512;not null"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type" gorm:"size:128"`
	UploadedBy string    `json:"uploaded_by" gorm:"size:64"`
	CreatedAt  time.Time `json:"created_at"`
}

func (OrderFile) TableName() string {
	return "order_files"
}
