package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WizardService 建机向导：select_template → edit_serials → acknowledge → done。
// 会话由门禁创建（RequestStatus 发现未登记序列号时），每步显式校验当前
// 步骤，非法跳步直接拒绝。acknowledge 确认后绑定设备并续上挂起的状态切换。
type WizardService struct {
	orders    OrderStore
	seapods   SeapodStore
	templates TemplateStore
	wizards   WizardStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewWizardService 创建向导服务
func NewWizardService(orders OrderStore, seapods SeapodStore, templates TemplateStore, wizards WizardStore, logger *zap.Logger) *WizardService {
	return &WizardService{
		orders:    orders,
		seapods:   seapods,
		templates: templates,
		wizards:   wizards,
		logger:    logger,
		now:       time.Now,
	}
}

// WizardView 向导当前状态与待填组件行
type WizardView struct {
	Session *entity.WizardSession `json:"session"`
	Items   []entity.SeapodItem   `json:"items,omitempty"`
}

// Get 查询订单当前的向导会话
func (s *WizardService) Get(ctx context.Context, orderID string) (*WizardView, error) {
	session, err := s.wizards.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	view := &WizardView{Session: session}
	if session.SeapodID != "" {
		items, err := s.seapods.GetItems(ctx, session.SeapodID)
		if err != nil {
			return nil, fmt.Errorf("load seapod items: %w", err)
		}
		view.Items = items
	}
	return view, nil
}

// SelectTemplate 第一步确认：按模板创建 In Progress 的生产记录并复制组件行
func (s *WizardService) SelectTemplate(ctx context.Context, orderID, templateID string) (*WizardView, error) {
	session, err := s.wizards.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if session.Step != entity.WizardStepSelectTemplate {
		return nil, validationf("wizard is at step %q, template already selected", session.Step)
	}

	tpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}

	sp := &entity.SeapodProduction{
		ID:            uuid.New().String(),
		SerialNumber:  session.SerialNumber,
		TemplateName:  tpl.Name,
		HWVersion:     tpl.HWVersion,
		SWVersion:     tpl.SWVersion,
		SeapodVersion: tpl.SeapodVersion,
		Status:        entity.SeapodStatusInProgress,
	}
	if err := s.seapods.Create(ctx, sp); err != nil {
		return nil, fmt.Errorf("create seapod production: %w", err)
	}

	items := make([]entity.SeapodItem, 0, len(tpl.Items))
	for _, ti := range tpl.Items {
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

	session.TemplateID = tpl.ID
	session.SeapodID = sp.ID
	session.Step = entity.WizardStepEditSerials
	if err := s.wizards.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save wizard session: %w", err)
	}

	s.logger.Info("wizard created seapod from template",
		zap.String("serial", session.SerialNumber),
		zap.String("template", tpl.Name),
	)
	return &WizardView{Session: session, Items: items}, nil
}

// UpdateItemSerial 第二步逐格保存组件序列号
func (s *WizardService) UpdateItemSerial(ctx context.Context, orderID, itemID, serial string) error {
	session, err := s.wizards.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if session.Step != entity.WizardStepEditSerials {
		return validationf("wizard is at step %q, serials are not editable", session.Step)
	}
	return s.seapods.UpdateItemSerial(ctx, itemID, serial)
}

// ConfirmSerials 第二步确认：所有组件行序列号必须非空，过了进 acknowledge
func (s *WizardService) ConfirmSerials(ctx context.Context, orderID string) (*WizardView, error) {
	session, err := s.wizards.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if session.Step != entity.WizardStepEditSerials {
		return nil, validationf("wizard is at step %q", session.Step)
	}

	items, err := s.seapods.GetItems(ctx, session.SeapodID)
	if err != nil {
		return nil, fmt.Errorf("load seapod items: %w", err)
	}
	for _, it := range items {
		if !it.HasSerial() {
			return nil, validationf("component %q is missing a serial number", it.Piece)
		}
	}

	session.Step = entity.WizardStepAcknowledge
	if err := s.wizards.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save wizard session: %w", err)
	}
	return &WizardView{Session: session, Items: items}, nil
}

// Back 从 acknowledge 退回序列号编辑
func (s *WizardService) Back(ctx context.Context, orderID string) (*WizardView, error) {
	session, err := s.wizards.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if session.Step != entity.WizardStepAcknowledge {
		return nil, validationf("wizard is at step %q, nothing to go back from", session.Step)
	}
	session.Step = entity.WizardStepEditSerials
	if err := s.wizards.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save wizard session: %w", err)
	}
	return s.Get(ctx, orderID)
}

// Acknowledge 第三步确认版本信息：设备置为 Assigned to Order 并绑定订单号，
// 然后续上门禁挂起的状态切换。挂起的是 Shipped 时仍要走发货确认，不在这里落。
func (s *WizardService) Acknowledge(ctx context.Context, orderID string) (*TransitionOutcome, error) {
	session, err := s.wizards.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if session.Step != entity.WizardStepAcknowledge {
		return nil, validationf("wizard is at step %q, serials must be confirmed first", session.Step)
	}

	if err := s.seapods.Assign(ctx, session.SeapodID, session.OrderNumber, s.now()); err != nil {
		return nil, fmt.Errorf("assign seapod to order: %w", err)
	}

	outcome := &TransitionOutcome{Status: session.PendingStatus}
	if session.PendingStatus == entity.OrderStatusShipped {
		outcome.RequiresShipConfirm = true
		outcome.Status = entity.OrderStatusShipped
	} else if session.PendingStatus != "" {
		if err := s.orders.UpdateStatus(ctx, session.OrderID, session.PendingStatus); err != nil {
			return nil, fmt.Errorf("apply pending status: %w", err)
		}
		outcome.Applied = true
	}

	if err := s.wizards.Delete(ctx, orderID); err != nil {
		return nil, fmt.Errorf("close wizard session: %w", err)
	}

	s.logger.Info("wizard completed",
		zap.String("order_number", session.OrderNumber),
		zap.String("serial", session.SerialNumber),
		zap.String("pending_status", session.PendingStatus),
	)
	return outcome, nil
}

// Cancel 任意非终态取消：删掉向导建出来的 In Progress 记录，不留孤儿。
// 挂起的状态切换随之放弃，订单保持原状态。
func (s *WizardService) Cancel(ctx context.Context, orderID string) error {
	session, err := s.wizards.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if !session.CanCancel() {
		return validationf("wizard already finished")
	}

	if session.SeapodID != "" {
		if err := s.seapods.Delete(ctx, session.SeapodID); err != nil {
			return fmt.Errorf("discard in-progress seapod: %w", err)
		}
	}
	if err := s.wizards.Delete(ctx, orderID); err != nil {
		return fmt.Errorf("delete wizard session: %w", err)
	}

	s.logger.Info("wizard cancelled",
		zap.String("order_id", session.OrderID),
		zap.String("serial", session.SerialNumber),
	)
	return nil
}
