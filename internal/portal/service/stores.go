package service

import (
	"context"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/shared/n8n"
)

// 门禁/向导/发货只依赖这里的窄接口，gorm 仓库、redis 会话存储、
// minio、n8n 客户端分别实现；单测用内存假实现即可，不需要活的存储。

// OrderStore 订单侧依赖
type OrderStore interface {
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetItems(ctx context.Context, orderID string) ([]entity.OrderItem, error)
	GetFiles(ctx context.Context, orderID string) ([]entity.OrderFile, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetShipped(ctx context.Context, id string, at time.Time) error
	SetVessel(ctx context.Context, id, vessel, account string) error
	UpdateItemSerial(ctx context.Context, itemID, serial string) error
}

// SeapodStore 生产记录侧依赖
type SeapodStore interface {
	GetBySerial(ctx context.Context, serial string) (*entity.SeapodProduction, error)
	Create(ctx context.Context, sp *entity.SeapodProduction) error
	BatchCreateItems(ctx context.Context, items []entity.SeapodItem) error
	GetItems(ctx context.Context, seapodID string) ([]entity.SeapodItem, error)
	UpdateItemSerial(ctx context.Context, itemID, serial string) error
	Assign(ctx context.Context, id, orderNumber string, at time.Time) error
	Claim(ctx context.Context, serial, orderNumber string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// TemplateStore 向导取模板用
type TemplateStore interface {
	GetByID(ctx context.Context, id string) (*entity.SeapodTemplate, error)
}

// WizardStore 向导会话存储
type WizardStore interface {
	Get(ctx context.Context, orderID string) (*entity.WizardSession, error)
	Save(ctx context.Context, session *entity.WizardSession) error
	Delete(ctx context.Context, orderID string) error
}

// ShipmentNotifier 发货 webhook
type ShipmentNotifier interface {
	NotifyShipment(ctx context.Context, payload *n8n.ShipmentPayload) error
}

// VesselDirectory 外部 CRM 船名查询
type VesselDirectory interface {
	LookupVessel(ctx context.Context, vessel string) (string, bool, error)
}

// FileURLResolver 附件路径换可下载地址
type FileURLResolver interface {
	DownloadURL(ctx context.Context, path string) (string, error)
}
