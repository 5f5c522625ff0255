package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// 附件下载链接有效期
const downloadURLExpiry = 15 * time.Minute

// StorageService 附件存取：订单附件、设备附件，对象落 MinIO。
type StorageService struct {
	orders      *repository.OrderRepository
	seapods     *repository.SeapodRepository
	minioClient *minio.Client
	bucketName  string
	logger      *zap.Logger
}

// NewStorageService 创建附件服务，minioClient 可为 nil（仅存元数据）
func NewStorageService(orders *repository.OrderRepository, seapods *repository.SeapodRepository, minioClient *minio.Client, bucketName string, logger *zap.Logger) *StorageService {
	return &StorageService{
		orders:      orders,
		seapods:     seapods,
		minioClient: minioClient,
		bucketName:  bucketName,
		logger:      logger,
	}
}

func (s *StorageService) objectName(scope, fileName string) string {
	return fmt.Sprintf("%s/%s/%s%s", scope, time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))
}

// UploadOrderFile 上传订单附件
func (s *StorageService) UploadOrderFile(ctx context.Context, orderID string, reader io.Reader, fileName string, fileSize int64, contentType, uploadedBy string) (*entity.OrderFile, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	objectName := s.objectName("orders", fileName)
	if s.minioClient != nil {
		_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("upload file: %w", err)
		}
	}

	file := &entity.OrderFile{
		ID:         uuid.New().String(),
		OrderID:    orderID,
		FileName:   fileName,
		FilePath:   objectName,
		Size:       fileSize,
		MimeType:   contentType,
		UploadedBy: uploadedBy,
	}
	if err := s.orders.CreateFile(ctx, file); err != nil {
		return nil, fmt.Errorf("create file record: %w", err)
	}

	s.logger.Info("order file uploaded",
		zap.String("order_id", orderID),
		zap.String("file_name", fileName),
	)
	return file, nil
}

// DownloadOrderFile 下载订单附件
func (s *StorageService) DownloadOrderFile(ctx context.Context, orderID, fileID string) (io.ReadCloser, *entity.OrderFile, error) {
	file, err := s.orders.GetFile(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if file.OrderID != orderID {
		return nil, nil, validationf("file does not belong to this order")
	}
	if s.minioClient == nil {
		return nil, file, fmt.Errorf("storage not configured")
	}
	object, err := s.minioClient.GetObject(ctx, s.bucketName, file.FilePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}
	return object, file, nil
}

// DeleteOrderFile 删除订单附件（只删元数据，对象留作审计）
func (s *StorageService) DeleteOrderFile(ctx context.Context, orderID, fileID string) error {
	file, err := s.orders.GetFile(ctx, fileID)
	if err != nil {
		return err
	}
	if file.OrderID != orderID {
		return validationf("file does not belong to this order")
	}
	return s.orders.DeleteFile(ctx, fileID)
}

// UploadSeapodFile 上传设备附件（测试报告、出厂照片）
func (s *StorageService) UploadSeapodFile(ctx context.Context, seapodID string, reader io.Reader, fileName string, fileSize int64, contentType, uploadedBy string) (*entity.SeapodFile, error) {
	if _, err := s.seapods.GetByID(ctx, seapodID); err != nil {
		return nil, err
	}

	objectName := s.objectName("seapods", fileName)
	if s.minioClient != nil {
		_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("upload file: %w", err)
		}
	}

	file := &entity.SeapodFile{
		ID:         uuid.New().String(),
		SeapodID:   seapodID,
		FileName:   fileName,
		FilePath:   objectName,
		Size:       fileSize,
		MimeType:   contentType,
		UploadedBy: uploadedBy,
	}
	if err := s.seapods.CreateFile(ctx, file); err != nil {
		return nil, fmt.Errorf("create file record: %w", err)
	}
	return file, nil
}

// DownloadSeapodFile 下载设备附件
func (s *StorageService) DownloadSeapodFile(ctx context.Context, seapodID, fileID string) (io.ReadCloser, *entity.SeapodFile, error) {
	file, err := s.seapods.GetFile(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if file.SeapodID != seapodID {
		return nil, nil, validationf("file does not belong to this seapod")
	}
	if s.minioClient == nil {
		return nil, file, fmt.Errorf("storage not configured")
	}
	object, err := s.minioClient.GetObject(ctx, s.bucketName, file.FilePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}
	return object, file, nil
}

// DeleteSeapodFile 删除设备附件
func (s *StorageService) DeleteSeapodFile(ctx context.Context, seapodID, fileID string) error {
	file, err := s.seapods.GetFile(ctx, fileID)
	if err != nil {
		return err
	}
	if file.SeapodID != seapodID {
		return validationf("file does not belong to this seapod")
	}
	return s.seapods.DeleteFile(ctx, fileID)
}

// DownloadURL 生成限时预签名下载链接，发货 webhook 的附件引用用它
func (s *StorageService) DownloadURL(ctx context.Context, objectPath string) (string, error) {
	if s.minioClient == nil {
		return "", fmt.Errorf("storage not configured")
	}
	u, err := s.minioClient.PresignedGetObject(ctx, s.bucketName, objectPath, downloadURLExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u.String(), nil
}
