package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService 主数据维护：物料、套件、设备模板。
// 纯表单式 CRUD，写操作在路由层限 admin。
type CatalogService struct {
	items     *repository.ItemRepository
	kits      *repository.KitRepository
	templates *repository.TemplateRepository
	logger    *zap.Logger
}

// NewCatalogService 创建主数据服务
func NewCatalogService(items *repository.ItemRepository, kits *repository.KitRepository, templates *repository.TemplateRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{items: items, kits: kits, templates: templates, logger: logger}
}

// --- 物料 ---

// ItemRequest 物料创建/更新请求
type ItemRequest struct {
	SKU   string  `json:"sku" binding:"required"`
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price"`
}

func (s *CatalogService) CreateItem(ctx context.Context, req ItemRequest) (*entity.Item, error) {
	if req.Price < 0 {
		return nil, validationf("price must not be negative")
	}
	item := &entity.Item{
		ID:    uuid.New().String(),
		SKU:   req.SKU,
		Name:  req.Name,
		Price: req.Price,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

func (s *CatalogService) UpdateItem(ctx context.Context, id string, req ItemRequest) (*entity.Item, error) {
	if req.Price < 0 {
		return nil, validationf("price must not be negative")
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item.SKU = req.SKU
	item.Name = req.Name
	item.Price = req.Price
	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

func (s *CatalogService) ListItems(ctx context.Context) ([]entity.Item, error) {
	return s.items.List(ctx)
}

func (s *CatalogService) DeleteItem(ctx context.Context, id string) error {
	return s.items.Delete(ctx, id)
}

// --- 套件 ---

func (s *CatalogService) CreateKit(ctx context.Context, name string) (*entity.Kit, error) {
	if name == "" {
		return nil, validationf("kit name is required")
	}
	kit := &entity.Kit{ID: uuid.New().String(), Name: name}
	if err := s.kits.Create(ctx, kit); err != nil {
		return nil, fmt.Errorf("create kit: %w", err)
	}
	return kit, nil
}

func (s *CatalogService) GetKit(ctx context.Context, id string) (*entity.Kit, error) {
	return s.kits.GetByID(ctx, id)
}

func (s *CatalogService) ListKits(ctx context.Context) ([]entity.Kit, error) {
	return s.kits.List(ctx)
}

func (s *CatalogService) DeleteKit(ctx context.Context, id string) error {
	return s.kits.Delete(ctx, id)
}

// KitItemRequest 套件行请求
type KitItemRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// AddKitItem 套件加行，piece 冗余物料当前名称
func (s *CatalogService) AddKitItem(ctx context.Context, kitID string, req KitItemRequest) (*entity.KitItem, error) {
	item, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("load master item: %w", err)
	}
	existing, err := s.kits.GetItems(ctx, kitID)
	if err != nil {
		return nil, err
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}
	ki := &entity.KitItem{
		ID:        uuid.New().String(),
		KitID:     kitID,
		ItemID:    item.ID,
		Piece:     item.Name,
		Quantity:  qty,
		SortOrder: len(existing),
	}
	if err := s.kits.CreateItem(ctx, ki); err != nil {
		return nil, fmt.Errorf("create kit item: %w", err)
	}
	return ki, nil
}

func (s *CatalogService) DeleteKitItem(ctx context.Context, itemID string) error {
	return s.kits.DeleteItem(ctx, itemID)
}

// --- 设备模板 ---

// TemplateRequest 模板创建/更新请求
type TemplateRequest struct {
	Name          string `json:"name" binding:"required"`
	HWVersion     string `json:"hw_version"`
	SWVersion     string `json:"sw_version"`
	SeapodVersion string `json:"seapod_version"`
}

func (s *CatalogService) CreateTemplate(ctx context.Context, req TemplateRequest) (*entity.SeapodTemplate, error) {
	tpl := &entity.SeapodTemplate{
		ID:            uuid.New().String(),
		Name:          req.Name,
		HWVersion:     req.HWVersion,
		SWVersion:     req.SWVersion,
		SeapodVersion: req.SeapodVersion,
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return tpl, nil
}

func (s *CatalogService) GetTemplate(ctx context.Context, id string) (*entity.SeapodTemplate, error) {
	return s.templates.GetByID(ctx, id)
}

func (s *CatalogService) ListTemplates(ctx context.Context) ([]entity.SeapodTemplate, error) {
	return s.templates.List(ctx)
}

func (s *CatalogService) UpdateTemplate(ctx context.Context, id string, req TemplateRequest) (*entity.SeapodTemplate, error) {
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tpl.Name = req.Name
	tpl.HWVersion = req.HWVersion
	tpl.SWVersion = req.SWVersion
	tpl.SeapodVersion = req.SeapodVersion
	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return tpl, nil
}

func (s *CatalogService) DeleteTemplate(ctx context.Context, id string) error {
	return s.templates.Delete(ctx, id)
}

// AddTemplateItem 模板加组件行
func (s *CatalogService) AddTemplateItem(ctx context.Context, templateID string, req KitItemRequest) (*entity.SeapodTemplateItem, error) {
	item, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("load master item: %w", err)
	}
	existing, err := s.templates.GetItems(ctx, templateID)
	if err != nil {
		return nil, err
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}
	ti := &entity.SeapodTemplateItem{
		ID:         uuid.New().String(),
		TemplateID: templateID,
		ItemID:     item.ID,
		Piece:      item.Name,
		Quantity:   qty,
		SortOrder:  len(existing),
	}
	if err := s.templates.CreateItem(ctx, ti); err != nil {
		return nil, fmt.Errorf("create template item: %w", err)
	}
	return ti, nil
}

func (s *CatalogService) DeleteTemplateItem(ctx context.Context, itemID string) error {
	return s.templates.DeleteItem(ctx, itemID)
}
