package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeapodService 设备生产记录维护。
// 完工（Completed）必须走 RequestCompletion，组件序列号不齐不放行；
// Assigned to Order 只能由门禁/向导写入，这里不提供。
type SeapodService struct {
	seapods   *repository.SeapodRepository
	templates *repository.TemplateRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewSeapodService 创建生产记录服务
func NewSeapodService(seapods *repository.SeapodRepository, templates *repository.TemplateRepository, logger *zap.Logger) *SeapodService {
	return &SeapodService{seapods: seapods, templates: templates, logger: logger, now: time.Now}
}

// CreateSeapodRequest 新建生产记录请求
type CreateSeapodRequest struct {
	SerialNumber string `json:"serial_number" binding:"required"`
	TemplateID   string `json:"template_id"`
}

// Create 登记一台新设备，选了模板就复制版本信息和组件清单
func (s *SeapodService) Create(ctx context.Context, req CreateSeapodRequest) (*entity.SeapodProduction, error) {
	serial := strings.TrimSpace(req.SerialNumber)
	if serial == "" {
		return nil, validationf("serial number is required")
	}

	if _, err := s.seapods.GetBySerial(ctx, serial); err == nil {
		return nil, validationf("seapod with serial %s already exists", serial)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check serial uniqueness: %w", err)
	}

	sp := &entity.SeapodProduction{
		ID:           uuid.New().String(),
		SerialNumber: serial,
		Status:       entity.SeapodStatusInProgress,
	}

	var tplItems []entity.SeapodTemplateItem
	if req.TemplateID != "" {
		tpl, err := s.templates.GetByID(ctx, req.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("load template: %w", err)
		}
		sp.TemplateName = tpl.Name
		sp.HWVersion = tpl.HWVersion
		sp.SWVersion = tpl.SWVersion
		sp.SeapodVersion = tpl.SeapodVersion
		tplItems = tpl.Items
	}

	if err := s.seapods.Create(ctx, sp); err != nil {
		return nil, fmt.Errorf("create seapod production: %w", err)
	}

	items := make([]entity.SeapodItem, 0, len(tplItems))
	for _, ti := range tplItems {
		items = append(items, entity.SeapodItem{
			ID:        uuid.New().String(),
			SeapodID:  sp.ID,
			ItemID:    ti.ItemID,
			Piece:     ti.Piece,
			Quantity:  ti.Quantity,
			SortOrder: ti.SortOrder,
		})
	}
	if err := s.seapods.BatchCreateItems(ctx, items); err != nil {
		return nil, fmt.Errorf("copy template items: %w", err)
	}
	sp.Items = items

	s.logger.Info("seapod registered",
		zap.String("serial", sp.SerialNumber),
		zap.String("template", sp.TemplateName),
	)
	return sp, nil
}

// Get 详情（含组件行与附件）
func (s *SeapodService) Get(ctx context.Context, id string) (*entity.SeapodProduction, error) {
	sp, err := s.seapods.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp.Items, err = s.seapods.GetItems(ctx, id); err != nil {
		return nil, err
	}
	if sp.Files, err = s.seapods.GetFiles(ctx, id); err != nil {
		return nil, err
	}
	return sp, nil
}

// List 列表
func (s *SeapodService) List(ctx context.Context, params repository.SeapodListParams) ([]entity.SeapodProduction, int64, error) {
	return s.seapods.List(ctx, params)
}

// UpdateHeaderRequest 头字段更新请求，nil 字段不动
type UpdateHeaderRequest struct {
	TemplateName  *string `json:"template_name"`
	HWVersion     *string `json:"hw_version"`
	SWVersion     *string `json:"sw_version"`
	SeapodVersion *string `json:"seapod_version"`
	Status        *string `json:"status"`
}

// UpdateHeader 更新头字段。状态只接受 In Progress / Failed-Scrapped，
// Completed 走 RequestCompletion，Assigned to Order 由门禁写。
func (s *SeapodService) UpdateHeader(ctx context.Context, id string, req UpdateHeaderRequest) (*entity.SeapodProduction, error) {
	sp, err := s.seapods.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TemplateName != nil {
		sp.TemplateName = *req.TemplateName
	}
	if req.HWVersion != nil {
		sp.HWVersion = *req.HWVersion
	}
	if req.SWVersion != nil {
		sp.SWVersion = *req.SWVersion
	}
	if req.SeapodVersion != nil {
		sp.SeapodVersion = *req.SeapodVersion
	}
	if req.Status != nil {
		switch *req.Status {
		case entity.SeapodStatusInProgress, entity.SeapodStatusScrapped:
			sp.Status = *req.Status
		case entity.SeapodStatusCompleted:
			return nil, validationf("use the completion endpoint to mark a seapod Completed")
		default:
			return nil, validationf("status %q cannot be set directly", *req.Status)
		}
	}

	if err := s.seapods.Update(ctx, sp); err != nil {
		return nil, fmt.Errorf("update seapod: %w", err)
	}
	return sp, nil
}

// ValidateCompletion 完工前置校验：每个组件行都要有序列号
func ValidateCompletion(items []entity.SeapodItem) error {
	for _, it := range items {
		if !it.HasSerial() {
			return validationf("component %q is missing a serial number", it.Piece)
		}
	}
	return nil
}

// RequestCompletion 请求完工。校验不过状态不动。
func (s *SeapodService) RequestCompletion(ctx context.Context, id string) (*entity.SeapodProduction, error) {
	sp, err := s.seapods.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp.Status == entity.SeapodStatusCompleted {
		return sp, nil
	}
	if sp.Status != entity.SeapodStatusInProgress {
		return nil, validationf("seapod in status %q cannot be completed", sp.Status)
	}

	items, err := s.seapods.GetItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load seapod items: %w", err)
	}
	if err := ValidateCompletion(items); err != nil {
		return nil, err
	}

	completedAt := s.now()
	if err := s.seapods.SetCompleted(ctx, id, completedAt); err != nil {
		return nil, fmt.Errorf("mark seapod completed: %w", err)
	}
	sp.Status = entity.SeapodStatusCompleted
	sp.CompletedAt = &completedAt

	s.logger.Info("seapod completed", zap.String("serial", sp.SerialNumber))
	return sp, nil
}

// --- 组件行 ---

// AddItem 追加组件行。完工之后不许再加：组件行全有序列号是完工的前提，
// 事后补一行空序列号会把这个前提弄破。
func (s *SeapodService) AddItem(ctx context.Context, seapodID, piece string, quantity int) (*entity.SeapodItem, error) {
	sp, err := s.seapods.GetByID(ctx, seapodID)
	if err != nil {
		return nil, err
	}
	if sp.Status != entity.SeapodStatusInProgress {
		return nil, validationf("components can only be added while the seapod is In Progress")
	}
	existing, err := s.seapods.GetItems(ctx, seapodID)
	if err != nil {
		return nil, err
	}
	if piece == "" {
		piece = "New Component"
	}
	if quantity <= 0 {
		quantity = 1
	}
	item := &entity.SeapodItem{
		ID:        uuid.New().String(),
		SeapodID:  seapodID,
		Piece:     piece,
		Quantity:  quantity,
		SortOrder: len(existing),
	}
	if err := s.seapods.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create seapod item: %w", err)
	}
	return item, nil
}

// UpdateItemSerial 更新组件序列号
func (s *SeapodService) UpdateItemSerial(ctx context.Context, seapodID, itemID, serial string) error {
	item, err := s.seapods.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.SeapodID != seapodID {
		return validationf("item does not belong to this seapod")
	}
	return s.seapods.UpdateItemSerial(ctx, itemID, serial)
}

// UpdateItemDone 勾选/取消组件完成标记
func (s *SeapodService) UpdateItemDone(ctx context.Context, seapodID, itemID string, done bool) error {
	item, err := s.seapods.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.SeapodID != seapodID {
		return validationf("item does not belong to this seapod")
	}
	item.IsDone = done
	return s.seapods.UpdateItem(ctx, item)
}

// DeleteItem 删除组件行
func (s *SeapodService) DeleteItem(ctx context.Context, seapodID, itemID string) error {
	item, err := s.seapods.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.SeapodID != seapodID {
		return validationf("item does not belong to this seapod")
	}
	return s.seapods.DeleteItem(ctx, itemID)
}
