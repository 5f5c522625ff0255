package service

import (
	"github.com/bitfantasy/seapod-portal/internal/config"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"github.com/bitfantasy/seapod-portal/internal/shared/n8n"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Catalog    *CatalogService
	Order      *OrderService
	Seapod     *SeapodService
	Transition *TransitionService
	Wizard     *WizardService
	Shipping   *ShippingService
	Storage    *StorageService
	Profile    *ProfileService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	// 初始化MinIO客户端
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("minio init failed, attachments disabled", zap.Error(err))
			minioClient = nil
		}
	}

	n8nClient := n8n.NewClient(cfg.N8N.ShippingWebhookURL, cfg.N8N.VesselCheckURL)
	wizardStore := repository.NewRedisWizardStore(rdb)
	storage := NewStorageService(repos.Order, repos.Seapod, minioClient, cfg.MinIO.Bucket, logger)

	return &Services{
		Catalog:    NewCatalogService(repos.Item, repos.Kit, repos.Template, logger),
		Order:      NewOrderService(repos.Order, repos.Item, repos.Kit, logger),
		Seapod:     NewSeapodService(repos.Seapod, repos.Template, logger),
		Transition: NewTransitionService(repos.Order, repos.Seapod, wizardStore, logger),
		Wizard:     NewWizardService(repos.Order, repos.Seapod, repos.Template, wizardStore, logger),
		Shipping:   NewShippingService(repos.Order, repos.Seapod, n8nClient, n8nClient, storage, rdb, logger),
		Storage:    storage,
		Profile:    NewProfileService(repos.Profile, logger),
	}
}
