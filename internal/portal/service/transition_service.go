package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"go.uber.org/zap"
)

// TransitionService 订单状态切换门禁。
// In Box / Ready for Pickup / Shipped 三个状态前置设备校验：
// 行项目里有设备行就必须能解析到一台已完工、未被其他订单占用的设备，
// 解析不到记录时挂起切换、转入建机向导。
type TransitionService struct {
	orders  OrderStore
	seapods SeapodStore
	wizards WizardStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewTransitionService 创建状态门禁服务
func NewTransitionService(orders OrderStore, seapods SeapodStore, wizards WizardStore, logger *zap.Logger) *TransitionService {
	return &TransitionService{
		orders:  orders,
		seapods: seapods,
		wizards: wizards,
		logger:  logger,
		now:     time.Now,
	}
}

// TransitionOutcome 门禁裁决结果
type TransitionOutcome struct {
	Applied             bool                  `json:"applied"`
	Status              string                `json:"status"`
	RequiresWizard      bool                  `json:"requires_wizard"`
	RequiresShipConfirm bool                  `json:"requires_ship_confirmation"`
	Wizard              *entity.WizardSession `json:"wizard,omitempty"`
}

// RequestStatus 请求切换订单状态。
// 返回值三种走向：直接落库（Applied）、转入向导（RequiresWizard）、
// 等待发货确认（RequiresShipConfirm）；其余情况以错误阻断，状态不动。
func (s *TransitionService) RequestStatus(ctx context.Context, orderID, newStatus, role string) (*TransitionOutcome, error) {
	if !entity.IsValidOrderStatus(newStatus) {
		return nil, validationf("unknown order status %q", newStatus)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == entity.OrderStatusShipped && !entity.CanShip(role) {
		return nil, ErrLocked
	}

	// 重复请求当前状态是无操作，不触发任何副作用
	if order.Status == newStatus {
		return &TransitionOutcome{Applied: true, Status: order.Status}, nil
	}

	if entity.IsAdvancedStatus(newStatus) {
		outcome, err := s.runSeapodGate(ctx, order, newStatus)
		if err != nil || outcome != nil {
			return outcome, err
		}
	}

	if newStatus == entity.OrderStatusShipped {
		if !order.HasVessel() {
			return nil, validationf("vessel name is required before shipping")
		}
		// 发货是不可逆的锁单动作，需要单独确认后走 ShippingService
		return &TransitionOutcome{Status: order.Status, RequiresShipConfirm: true}, nil
	}

	if err := s.orders.UpdateStatus(ctx, orderID, newStatus); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	s.logger.Info("order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", order.Status),
		zap.String("to", newStatus),
	)
	return &TransitionOutcome{Applied: true, Status: newStatus}, nil
}

// runSeapodGate 设备校验。返回非 nil 的 outcome 表示切换被挂起（进向导），
// 返回 (nil, nil) 表示门禁放行，由调用方继续落库。
func (s *TransitionService) runSeapodGate(ctx context.Context, order *entity.Order, newStatus string) (*TransitionOutcome, error) {
	items, err := s.orders.GetItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}

	var seapodLines []entity.OrderItem
	for _, it := range items {
		if it.IsSeapod() {
			seapodLines = append(seapodLines, it)
		}
	}

	switch {
	case len(seapodLines) == 0:
		// 没有设备行，门禁不适用
		return nil, nil
	case len(seapodLines) > 1:
		return nil, validationf("order has %d seapod line items, expected at most one", len(seapodLines))
	}

	line := seapodLines[0]
	if !line.HasSerial() {
		return nil, validationf("seapod item exists but has no serial number")
	}

	sp, err := s.seapods.GetBySerial(ctx, line.Serial)
	if errors.Is(err, repository.ErrNotFound) {
		// 设备未登记：挂起切换，开建机向导
		session := &entity.WizardSession{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			SerialNumber:  line.Serial,
			PendingStatus: newStatus,
			Step:          entity.WizardStepSelectTemplate,
			StartedAt:     s.now(),
		}
		if err := s.wizards.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("save wizard session: %w", err)
		}
		s.logger.Info("seapod not registered, opening build wizard",
			zap.String("order_number", order.OrderNumber),
			zap.String("serial", line.Serial),
		)
		return &TransitionOutcome{Status: order.Status, RequiresWizard: true, Wizard: session}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup seapod by serial: %w", err)
	}

	switch sp.Status {
	case entity.SeapodStatusAssigned:
		if sp.OrderNumber != order.OrderNumber {
			return nil, &ConflictError{SerialNumber: sp.SerialNumber, AssignedOrder: sp.OrderNumber}
		}
		// 已绑定本订单，放行
		return nil, nil
	case entity.SeapodStatusCompleted:
		if sp.OrderNumber != "" && sp.OrderNumber != order.OrderNumber {
			return nil, &ConflictError{SerialNumber: sp.SerialNumber, AssignedOrder: sp.OrderNumber}
		}
	default:
		return nil, validationf("seapod %s exists but status is %q, it must be Completed first", sp.SerialNumber, sp.Status)
	}

	// 条件更新抢占设备，并发下两个订单只会有一个成功
	claimed, err := s.seapods.Claim(ctx, line.Serial, order.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("claim seapod: %w", err)
	}
	if !claimed {
		current, err := s.seapods.GetBySerial(ctx, line.Serial)
		if err != nil {
			return nil, fmt.Errorf("re-read seapod after failed claim: %w", err)
		}
		return nil, &ConflictError{SerialNumber: current.SerialNumber, AssignedOrder: current.OrderNumber}
	}

	s.logger.Info("seapod assigned to order",
		zap.String("serial", line.Serial),
		zap.String("order_number", order.OrderNumber),
	)
	return nil, nil
}

// ResolveSeapodConflict 冲突解除动作：清空本订单设备行的序列号，
// 让用户换一台设备。不碰对方订单，也不碰设备记录。
func (s *TransitionService) ResolveSeapodConflict(ctx context.Context, orderID, role string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == entity.OrderStatusShipped && !entity.CanShip(role) {
		return ErrLocked
	}

	items, err := s.orders.GetItems(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	for _, it := range items {
		if it.IsSeapod() && it.HasSerial() {
			return s.orders.UpdateItemSerial(ctx, it.ID, "")
		}
	}
	return validationf("order has no seapod line with a serial to clear")
}
