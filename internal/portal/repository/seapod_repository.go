package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"gorm.io/gorm"
)

// SeapodRepository 设备生产记录仓库
type SeapodRepository struct {
	db *gorm.DB
}

func NewSeapodRepository(db *gorm.DB) *SeapodRepository {
	return &SeapodRepository{db: db}
}

func (r *SeapodRepository) Create(ctx context.Context, sp *entity.SeapodProduction) error {
	return r.db.WithContext(ctx).Create(sp).Error
}

func (r *SeapodRepository) GetByID(ctx context.Context, id string) (*entity.SeapodProduction, error) {
	var sp entity.SeapodProduction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sp).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sp, nil
}

// GetBySerial 序列号是业务主键，门禁按它查
func (r *SeapodRepository) GetBySerial(ctx context.Context, serial string) (*entity.SeapodProduction, error) {
	var sp entity.SeapodProduction
	err := r.db.WithContext(ctx).Where("serial_number = ?", serial).First(&sp).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sp, nil
}

// SeapodListParams 列表过滤参数
type SeapodListParams struct {
	Status  string
	Keyword string
	Page    int
	Size    int
}

func (r *SeapodRepository) List(ctx context.Context, params SeapodListParams) ([]entity.SeapodProduction, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.SeapodProduction{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("serial_number ILIKE ? OR template_name ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var sps []entity.SeapodProduction
	err := query.Order("created_at DESC").Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&sps).Error
	return sps, total, err
}

func (r *SeapodRepository) Update(ctx context.Context, sp *entity.SeapodProduction) error {
	return r.db.WithContext(ctx).Save(sp).Error
}

// SetCompleted 完工：状态与完工时间一次写入
func (r *SeapodRepository) SetCompleted(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.SeapodProduction{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": entity.SeapodStatusCompleted, "completed_at": at}).Error
}

// Assign 向导终点：直接置为已分配并绑定订单号
func (r *SeapodRepository) Assign(ctx context.Context, id, orderNumber string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.SeapodProduction{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entity.SeapodStatusAssigned,
			"order_number": orderNumber,
			"completed_at": at,
		}).Error
}

// Claim 把已完工设备绑定到订单，条件更新一步完成。
// 仅当状态为 Completed 且尚未绑定（或已绑定同一订单）时生效，
// 返回 false 表示设备已被其他订单占用——读后写的竞态由这里收口。
func (r *SeapodRepository) Claim(ctx context.Context, serial, orderNumber string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.SeapodProduction{}).
		Where("serial_number = ?", serial).
		Where("status = ? OR (status = ? AND order_number = ?)", entity.SeapodStatusCompleted, entity.SeapodStatusAssigned, orderNumber).
		Where("order_number = '' OR order_number IS NULL OR order_number = ?", orderNumber).
		Updates(map[string]interface{}{
			"status":       entity.SeapodStatusAssigned,
			"order_number": orderNumber,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SeapodRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Select("Items", "Files").Delete(&entity.SeapodProduction{ID: id}).Error
}

// --- 组件行 ---

func (r *SeapodRepository) GetItems(ctx context.Context, seapodID string) ([]entity.SeapodItem, error) {
	var items []entity.SeapodItem
	err := r.db.WithContext(ctx).Where("seapod_id = ?", seapodID).Order("sort_order").Find(&items).Error
	return items, err
}

func (r *SeapodRepository) GetItem(ctx context.Context, itemID string) (*entity.SeapodItem, error) {
	var item entity.SeapodItem
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *SeapodRepository) CreateItem(ctx context.Context, item *entity.SeapodItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *SeapodRepository) BatchCreateItems(ctx context.Context, items []entity.SeapodItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *SeapodRepository) UpdateItem(ctx context.Context, item *entity.SeapodItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// UpdateItemSerial 向导逐格保存序列号
func (r *SeapodRepository) UpdateItemSerial(ctx context.Context, itemID, serial string) error {
	return r.db.WithContext(ctx).Model(&entity.SeapodItem{}).Where("id = ?", itemID).Update("serial", serial).Error
}

func (r *SeapodRepository) DeleteItem(ctx context.Context, itemID string) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&entity.SeapodItem{}).Error
}

// --- 附件 ---

func (r *SeapodRepository) GetFiles(ctx context.Context, seapodID string) ([]entity.SeapodFile, error) {
	var files []entity.SeapodFile
	err := r.db.WithContext(ctx).Where("seapod_id = ?", seapodID).Order("created_at DESC").Find(&files).Error
	return files, err
}

func (r *SeapodRepository) CreateFile(ctx context.Context, file *entity.SeapodFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *SeapodRepository) GetFile(ctx context.Context, fileID string) (*entity.SeapodFile, error) {
	var file entity.SeapodFile
	if err := r.db.WithContext(ctx).Where("id = ?", fileID).First(&file).Error; err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

func (r *SeapodRepository) DeleteFile(ctx context.Context, fileID string) error {
	return r.db.WithContext(ctx).Where("id = ?", fileID).Delete(&entity.SeapodFile{}).Error
}
