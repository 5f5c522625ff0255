package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"gorm.io/gorm"
)

// OrderRepository 订单仓库
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// OrderListParams 列表过滤参数
type OrderListParams struct {
	Status  string
	Keyword string
	Page    int
	Size    int
}

func (r *OrderRepository) List(ctx context.Context, params OrderListParams) ([]entity.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Order{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("order_number ILIKE ? OR vessel ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var orders []entity.Order
	err := query.Order("order_number DESC").Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&orders).Error
	return orders, total, err
}

// ListAll 导出用，全量按单号倒序
func (r *OrderRepository) ListAll(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.WithContext(ctx).Order("order_number DESC").Find(&orders).Error
	return orders, err
}

// UpdateField 单字段更新
func (r *OrderRepository) UpdateField(ctx context.Context, id, column string, value interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.Order{}).Where("id = ?", id).Update(column, value).Error
}

// UpdateStatus 仅更新状态列
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&entity.Order{}).Where("id = ?", id).Update("status", status).Error
}

// SetShipped 发货终态：状态与发货时间一次写入
func (r *OrderRepository) SetShipped(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": entity.OrderStatusShipped, "shipped_at": at}).Error
}

// SetVessel 船名与账户一起写（外部CRM解析结果）
func (r *OrderRepository) SetVessel(ctx context.Context, id, vessel, account string) error {
	return r.db.WithContext(ctx).Model(&entity.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"vessel": vessel, "account_name": account}).Error
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Select("Items", "Files").Delete(&entity.Order{ID: id}).Error
}

// CountByDatePrefix 当日已有单号数量，用于生成顺序单号
func (r *OrderRepository) CountByDatePrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Order{}).Where("order_number LIKE ?", prefix+"%").Count(&n).Error
	return n, err
}

// --- 行项目 ---

func (r *OrderRepository) GetItems(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	var items []entity.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("sort_order").Find(&items).Error
	return items, err
}

func (r *OrderRepository) GetItem(ctx context.Context, itemID string) (*entity.OrderItem, error) {
	var item entity.OrderItem
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *OrderRepository) CreateItem(ctx context.Context, item *entity.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *OrderRepository) BatchCreateItems(ctx context.Context, items []entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *OrderRepository) UpdateItem(ctx context.Context, item *entity.OrderItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// UpdateItemSerial 仅写序列号列（冲突解除时清空用）
func (r *OrderRepository) UpdateItemSerial(ctx context.Context, itemID, serial string) error {
	return r.db.WithContext(ctx).Model(&entity.OrderItem{}).Where("id = ?", itemID).Update("serial", serial).Error
}

func (r *OrderRepository) DeleteItem(ctx context.Context, itemID string) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&entity.OrderItem{}).Error
}

// ReorderItems 持久化新的 sort_order，id 顺序即展示顺序
func (r *OrderRepository) ReorderItems(ctx context.Context, orderID string, itemIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range itemIDs {
			if err := tx.Model(&entity.OrderItem{}).
				Where("id = ? AND order_id = ?", id, orderID).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// --- 附件 ---

func (r *OrderRepository) GetFiles(ctx context.Context, orderID string) ([]entity.OrderFile, error) {
	var files []entity.OrderFile
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC").Find(&files).Error
	return files, err
}

func (r *OrderRepository) CreateFile(ctx context.Context, file *entity.OrderFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *OrderRepository) GetFile(ctx context.Context, fileID string) (*entity.OrderFile, error) {
	var file entity.OrderFile
	err := r.db.WithContext(ctx).Where("id = ?", fileID).First(&file).Error
	if err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

func (r *OrderRepository) DeleteFile(ctx context.Context, fileID string) error {
	return r.db.WithContext(ctx).Where("id = ?", fileID).Delete(&entity.OrderFile{}).Error
}
