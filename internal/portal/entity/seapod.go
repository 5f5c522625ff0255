package entity

import (
	"strings"
	"time"
)

// SeapodStatus 生产记录状态
const (
	SeapodStatusInProgress = "In Progress"
	SeapodStatusCompleted  = "Completed"
	SeapodStatusAssigned   = "Assigned to Order"
	SeapodStatusScrapped   = "Failed / Scrapped"
)

// SeapodStatuses 合法状态全集
var SeapodStatuses = []string{
	SeapodStatusInProgress,
	SeapodStatusCompleted,
	SeapodStatusAssigned,
	SeapodStatusScrapped,
}

// IsValidSeapodStatus 校验状态取值
func IsValidSeapodStatus(s string) bool {
	for _, v := range SeapodStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// SeapodProduction 设备生产/序列化记录
// serial_number 是业务主键，订单通过行项目序列号查到这里；
// order_number 仅在 Assigned to Order 状态下有值
type SeapodProduction struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	SerialNumber  string     `json:"serial_number" gorm:"size:128;not null;uniqueIndex"`
	TemplateName  string     `json:"template_name" gorm:"size:128"`
	HWVersion     string     `json:"hw_version" gorm:"size:64"`
	SWVersion     string     `json:"sw_version" gorm:"size:64"`
	SeapodVersion string     `json:"seapod_version" gorm:"size:64"`
	Status        string     `json:"status" gorm:"size:32;not null;default:'In Progress'"`
	OrderNumber   string     `json:"order_number" gorm:"size:32;index"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Items []SeapodItem `json:"items,omitempty" gorm:"foreignKey:SeapodID;constraint:OnDelete:CASCADE"`
	Files []SeapodFile `json:"files,omitempty" gorm:"foreignKey:SeapodID;constraint:OnDelete:CASCADE"`
}

func (SeapodProduction) TableName() string {
	return "seapod_production"
}

// SeapodItem 设备组件行，完工前每行必须有序列号
type SeapodItem struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	SeapodID  string    `json:"seapod_id" gorm:"size:36;not null;index"`
	ItemID    string    `json:"item_id" gorm:"size:36"`
	Piece     string    `json:"piece" gorm:"size:128;not null"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	Serial    string    `json:"serial" gorm:"size:128"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	IsDone    bool      `json:"is_done" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SeapodItem) TableName() string {
	return "seapod_items"
}

// HasSerial 序列号已填写（非空白）
func (i *SeapodItem) HasSerial() bool {
	return strings.TrimSpace(i.Serial) != ""
}

// SeapodFile 生产记录附件元数据
type SeapodFile struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	SeapodID   string    `json:"seapod_id" gorm:"size:36;not null;index"`
	FileName   string    `json:"file_name" gorm:"size:256;not null"`
	FilePath   string    `json:"file_path" gorm:"size:512;not null"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type" gorm:"size:128"`
	UploadedBy string    `json:"uploaded_by" gorm:"size:64"`
	CreatedAt  time.Time `json:"created_at"`
}

func (SeapodFile) TableName() string {
	return "seapod_files"
}
