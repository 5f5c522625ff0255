package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"github.com/bitfantasy/seapod-portal/internal/shared/n8n"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 船名查询结果缓存时间，CRM 数据变化很慢
const vesselCacheTTL = 10 * time.Minute

// ShippingService 发货终结与船名解析。
// ConfirmShipment 是唯一允许把订单写成 Shipped 的路径：
// 先推 webhook，webhook 成功才落库，失败则订单原样返回错误。
type ShippingService struct {
	orders   OrderStore
	seapods  SeapodStore
	notifier ShipmentNotifier
	vessels  VesselDirectory
	files    FileURLResolver
	rdb      *redis.Client
	logger   *zap.Logger
	now      func() time.Time
}

// NewShippingService 创建发货服务，rdb 可为 nil（不缓存船名查询）
func NewShippingService(orders OrderStore, seapods SeapodStore, notifier ShipmentNotifier, vessels VesselDirectory, files FileURLResolver, rdb *redis.Client, logger *zap.Logger) *ShippingService {
	return &ShippingService{
		orders:   orders,
		seapods:  seapods,
		notifier: notifier,
		vessels:  vessels,
		files:    files,
		rdb:      rdb,
		logger:   logger,
		now:      time.Now,
	}
}

// ConfirmShipment 用户在发货确认弹窗点了确认之后调用。
// 前置条件：门禁已对 Shipped 放行（设备校验、船名校验都过了）。
func (s *ShippingService) ConfirmShipment(ctx context.Context, orderID, role string) (*entity.Order, error) {
	if !entity.CanShip(role) {
		return nil, ErrForbidden
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == entity.OrderStatusShipped {
		// 已发货的确认重放是无操作，不重发 webhook
		return order, nil
	}
	if !order.HasVessel() {
		return nil, validationf("vessel name is required before shipping")
	}

	items, err := s.orders.GetItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}

	payload := &n8n.ShipmentPayload{
		Order:       order,
		Items:       items,
		TriggeredAt: s.now(),
	}

	files, err := s.orders.GetFiles(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order files: %w", err)
	}
	for _, f := range files {
		url := ""
		if s.files != nil {
			if u, err := s.files.DownloadURL(ctx, f.FilePath); err == nil {
				url = u
			} else {
				s.logger.Warn("resolve attachment url failed", zap.String("path", f.FilePath), zap.Error(err))
			}
		}
		payload.Files = append(payload.Files, n8n.FileRef{
			ID:          f.ID,
			FileName:    f.FileName,
			FilePath:    f.FilePath,
			DownloadURL: url,
		})
	}

	// 有设备行就附上生产记录的版本信息
	for _, it := range items {
		if it.IsSeapod() && it.HasSerial() {
			sp, err := s.seapods.GetBySerial(ctx, it.Serial)
			if err == nil {
				payload.SeapodInfo = &n8n.SeapodInfo{
					Serial:        it.Serial,
					HWVersion:     sp.HWVersion,
					SWVersion:     sp.SWVersion,
					SeapodVersion: sp.SeapodVersion,
				}
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("load seapod info: %w", err)
			}
			break
		}
	}

	if err := s.notifier.NotifyShipment(ctx, payload); err != nil {
		// webhook 失败订单不动，错误抛给调用方重新发起
		return nil, fmt.Errorf("shipment webhook: %w", err)
	}

	shippedAt := s.now()
	if err := s.orders.SetShipped(ctx, orderID, shippedAt); err != nil {
		return nil, fmt.Errorf("mark order shipped: %w", err)
	}

	order.Status = entity.OrderStatusShipped
	order.ShippedAt = &shippedAt
	s.logger.Info("order shipped",
		zap.String("order_number", order.OrderNumber),
		zap.Time("shipped_at", shippedAt),
	)
	return order, nil
}

// VesselResult 船名解析结果
type VesselResult struct {
	Vessel  string `json:"vessel"`
	Account string `json:"account"`
	Found   bool   `json:"found"`
}

// CheckVessel 调 CRM 解析船名对应客户。查到就写回订单；
// 查不到把订单上的船名和客户都清掉，由前端提示用户。
func (s *ShippingService) CheckVessel(ctx context.Context, orderID, vessel string) (*VesselResult, error) {
	vessel = strings.TrimSpace(vessel)
	if vessel == "" {
		return nil, validationf("vessel name is required")
	}

	account, found, err := s.lookupCached(ctx, vessel)
	if err != nil {
		return nil, fmt.Errorf("vessel lookup: %w", err)
	}

	if !found {
		if err := s.orders.SetVessel(ctx, orderID, "", ""); err != nil {
			return nil, fmt.Errorf("clear vessel: %w", err)
		}
		return &VesselResult{Vessel: vessel, Found: false}, nil
	}

	if err := s.orders.SetVessel(ctx, orderID, vessel, account); err != nil {
		return nil, fmt.Errorf("set vessel: %w", err)
	}
	return &VesselResult{Vessel: vessel, Account: account, Found: true}, nil
}

func (s *ShippingService) lookupCached(ctx context.Context, vessel string) (string, bool, error) {
	key := "vessel:account:" + strings.ToLower(vessel)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			return cached, cached != "", nil
		}
	}

	account, found, err := s.vessels.LookupVessel(ctx, vessel)
	if err != nil {
		return "", false, err
	}
	if s.rdb != nil {
		// 未命中也缓存空值，挡住对同一错误船名的反复查询
		if err := s.rdb.Set(ctx, key, account, vesselCacheTTL).Err(); err != nil {
			s.logger.Warn("cache vessel lookup failed", zap.Error(err))
		}
	}
	return account, found, nil
}
