package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// OrderService 订单 CRUD 与行项目维护。
// 状态切换不在这里，一律走 TransitionService；
// Shipped 的订单对非特权角色只读。
type OrderService struct {
	orders *repository.OrderRepository
	items  *repository.ItemRepository
	kits   *repository.KitRepository
	logger *zap.Logger
}

// NewOrderService 创建订单服务
func NewOrderService(orders *repository.OrderRepository, items *repository.ItemRepository, kits *repository.KitRepository, logger *zap.Logger) *OrderService {
	return &OrderService{orders: orders, items: items, kits: kits, logger: logger}
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Vessel     string `json:"vessel"`
	Warehouse  string `json:"warehouse"`
	PickupDate string `json:"pickup_date"` // YYYY-MM-DD
	KitID      string `json:"kit_id"`
}

// Create 建单，选了套件就把套件行复制成订单行（价格取当前主数据）
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest, userEmail, role string) (*entity.Order, error) {
	number, err := s.generateOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	vessel := req.Vessel
	if vessel == "" {
		vessel = entity.VesselPlaceholder
	}
	// 仓库只有 admin 可选，其他角色固定 Baz
	warehouse := "Baz"
	if entity.IsAdmin(role) && req.Warehouse != "" {
		warehouse = req.Warehouse
	}

	kitName := "Custom"
	var kit *entity.Kit
	if req.KitID != "" {
		kit, err = s.kits.GetByID(ctx, req.KitID)
		if err != nil {
			return nil, fmt.Errorf("load kit: %w", err)
		}
		kitName = kit.Name
	}

	order := &entity.Order{
		ID:          uuid.New().String(),
		OrderNumber: number,
		Vessel:      vessel,
		Warehouse:   warehouse,
		Kit:         kitName,
		Status:      entity.OrderStatusNew,
		CreatedBy:   userEmail,
	}
	if req.PickupDate != "" {
		if t, err := time.Parse("2006-01-02", req.PickupDate); err == nil {
			order.PickupDate = &t
		}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if kit != nil {
		items := make([]entity.OrderItem, 0, len(kit.Items))
		for _, ki := range kit.Items {
			oi := entity.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				ItemID:    ki.ItemID,
				Piece:     ki.Piece,
				Quantity:  ki.Quantity,
				SortOrder: ki.SortOrder,
			}
			if ki.ItemID != "" {
				if mi, err := s.items.GetByID(ctx, ki.ItemID); err == nil {
					oi.Price = mi.Price
				}
			}
			items = append(items, oi)
		}
		if err := s.orders.BatchCreateItems(ctx, items); err != nil {
			return nil, fmt.Errorf("copy kit items: %w", err)
		}
	}

	s.logger.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("kit", kitName),
		zap.String("created_by", userEmail),
	)
	return order, nil
}

// 单号按天顺序编号，字典序即时间序
func (s *OrderService) generateOrderNumber(ctx context.Context) (string, error) {
	prefix := "SO-" + time.Now().Format("20060102")
	n, err := s.orders.CountByDatePrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, n+1), nil
}

// Get 订单详情（含行项目与附件）
func (s *OrderService) Get(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Items, err = s.orders.GetItems(ctx, id); err != nil {
		return nil, err
	}
	if order.Files, err = s.orders.GetFiles(ctx, id); err != nil {
		return nil, err
	}
	return order, nil
}

// List 订单列表
func (s *OrderService) List(ctx context.Context, params repository.OrderListParams) ([]entity.Order, int64, error) {
	return s.orders.List(ctx, params)
}

// 可单字段更新的列。status 不在其中：必须过门禁。
var orderUpdatableFields = map[string]bool{
	"vessel":       true,
	"account_name": true,
	"warehouse":    true,
	"pickup_date":  true,
	"kit":          true,
}

// UpdateField 单字段更新，锁单后拒绝
func (s *OrderService) UpdateField(ctx context.Context, id, field string, value interface{}, role string) error {
	if !orderUpdatableFields[field] {
		return validationf("field %q is not updatable", field)
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkLocked(order, role); err != nil {
		return err
	}
	return s.orders.UpdateField(ctx, id, field, value)
}

// Delete 只允许删早期状态的订单，且需要 admin/operation
func (s *OrderService) Delete(ctx context.Context, id, role string) error {
	if !entity.CanShip(role) {
		return ErrForbidden
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !entity.IsDeletableStatus(order.Status) {
		return validationf("order in status %q cannot be deleted", order.Status)
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	s.logger.Info("order deleted", zap.String("order_number", order.OrderNumber))
	return nil
}

func (s *OrderService) checkLocked(order *entity.Order, role string) error {
	if order.Status == entity.OrderStatusShipped && !entity.CanShip(role) {
		return ErrLocked
	}
	return nil
}

// --- 行项目 ---

// AddItemRequest 新增行项目请求
type AddItemRequest struct {
	ItemID   string `json:"item_id"`
	Piece    string `json:"piece"`
	Quantity int    `json:"quantity"`
}

// AddItem 追加行项目，排序接在末尾
func (s *OrderService) AddItem(ctx context.Context, orderID string, req AddItemRequest, role string) (*entity.OrderItem, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.checkLocked(order, role); err != nil {
		return nil, err
	}

	existing, err := s.orders.GetItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	item := &entity.OrderItem{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Piece:     req.Piece,
		Quantity:  req.Quantity,
		SortOrder: len(existing),
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	s.resolvePiece(ctx, item, req.ItemID, req.Piece)

	if err := s.orders.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create order item: %w", err)
	}
	return item, nil
}

// UpdateItemRequest 行项目更新请求，nil 字段不动
type UpdateItemRequest struct {
	ItemID     *string `json:"item_id"`
	Piece      *string `json:"piece"`
	Quantity   *int    `json:"quantity"`
	Serial     *string `json:"serial"`
	ExternalID *string `json:"external_id"`
	IsDone     *bool   `json:"is_done"`
}

// UpdateItem 更新行项目；换了物料就按当前主数据重新解析价格
func (s *OrderService) UpdateItem(ctx context.Context, orderID, itemID string, req UpdateItemRequest, role string) (*entity.OrderItem, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.checkLocked(order, role); err != nil {
		return nil, err
	}

	item, err := s.orders.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OrderID != orderID {
		return nil, validationf("item does not belong to this order")
	}

	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Serial != nil {
		item.Serial = *req.Serial
	}
	if req.ExternalID != nil {
		item.ExternalID = *req.ExternalID
	}
	if req.IsDone != nil {
		item.IsDone = *req.IsDone
	}
	if req.ItemID != nil || req.Piece != nil {
		id, piece := item.ItemID, item.Piece
		if req.ItemID != nil {
			id = *req.ItemID
		}
		if req.Piece != nil {
			piece = *req.Piece
		}
		s.resolvePiece(ctx, item, id, piece)
	}

	if err := s.orders.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update order item: %w", err)
	}
	return item, nil
}

// resolvePiece 根据物料引用或名称补全 item_id/piece/price
func (s *OrderService) resolvePiece(ctx context.Context, item *entity.OrderItem, itemID, piece string) {
	item.ItemID = itemID
	item.Piece = piece
	if itemID != "" {
		if mi, err := s.items.GetByID(ctx, itemID); err == nil {
			item.Piece = mi.Name
			item.Price = mi.Price
			return
		}
	}
	if piece != "" {
		if mi, err := s.items.GetByName(ctx, piece); err == nil {
			item.ItemID = mi.ID
			item.Price = mi.Price
		}
	}
}

// DeleteItem 删除行项目
func (s *OrderService) DeleteItem(ctx context.Context, orderID, itemID, role string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.checkLocked(order, role); err != nil {
		return err
	}
	item, err := s.orders.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OrderID != orderID {
		return validationf("item does not belong to this order")
	}
	return s.orders.DeleteItem(ctx, itemID)
}

// ReorderItems 按给定顺序重写 sort_order
func (s *OrderService) ReorderItems(ctx context.Context, orderID string, itemIDs []string, role string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.checkLocked(order, role); err != nil {
		return err
	}
	return s.orders.ReorderItems(ctx, orderID, itemIDs)
}

// --- 导出 ---

// ExportXLSX 订单一览导出
func (s *OrderService) ExportXLSX(ctx context.Context) ([]byte, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Order #", "Vessel", "Account", "Status", "Warehouse", "Kit", "Pickup Date", "Shipped At", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, o := range orders {
		values := []interface{}{
			o.OrderNumber, o.Vessel, o.AccountName, o.Status, o.Warehouse, o.Kit,
			formatDate(o.PickupDate), formatDate(o.ShippedAt), o.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
