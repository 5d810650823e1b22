package provider

import (
	"time"

	"github.com/bazaar-next/internal/cache"
	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/models"
	"github.com/bazaar-next/internal/queue"
	"github.com/bazaar-next/internal/repository"
	"github.com/bazaar-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	ProductRepo    repository.ProductRepository
	PromoCodeRepo  repository.PromoCodeRepository
	PromoUsageRepo repository.PromoUsageRepository

	// Services
	AuthService       *service.AuthService
	PromoService      *service.PromoService
	PromoAdminService *service.PromoAdminService
	PromoUsageService *service.PromoUsageService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.PromoCodeRepo = repository.NewPromoCodeRepository(db)
	c.PromoUsageRepo = repository.NewPromoUsageRepository(db)
}

func (c *Container) initServices() {
	activeListCacheTTL := time.Duration(c.Config.Promo.ActiveListCacheTTLSec) * time.Second
	if activeListCacheTTL <= 0 {
		activeListCacheTTL = time.Minute
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.PromoService = service.NewPromoService(c.PromoCodeRepo, c.ProductRepo, activeListCacheTTL)
	c.PromoAdminService = service.NewPromoAdminService(c.PromoCodeRepo, c.PromoUsageRepo)
	c.PromoUsageService = service.NewPromoUsageService(c.PromoCodeRepo, c.PromoUsageRepo)
}
