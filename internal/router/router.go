package router

import (
	"fmt"
	"strings"

	"github.com/bazaar-next/internal/cache"
	"github.com/bazaar-next/internal/config"
	adminhandlers "github.com/bazaar-next/internal/http/handlers/admin"
	publichandlers "github.com/bazaar-next/internal/http/handlers/public"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "bz"
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 商城侧接口
		promos := apiV1.Group("/promos")
		{
			promos.POST("/validate", publicHandler.ValidatePromo)
			promos.GET("/active", publicHandler.GetActivePromos)
		}

		// 订单事件接口（核销/回退）
		orders := apiV1.Group("/orders")
		{
			orders.POST("/:order_no/promo/redeem", publicHandler.RedeemPromo)
			orders.POST("/:order_no/promo/release", publicHandler.ReleasePromo)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authorized.GET("/profile", adminHandler.GetAdminProfile)

				// 优惠码管理
				authorized.POST("/promos", adminHandler.CreatePromo)
				authorized.GET("/promos", adminHandler.GetAdminPromos)
				authorized.GET("/promos/:id", adminHandler.GetAdminPromo)
				authorized.PUT("/promos/:id", adminHandler.UpdatePromo)
				authorized.DELETE("/promos/:id", adminHandler.DeletePromo)
				authorized.PATCH("/promos/:id/status", adminHandler.SetPromoStatus)

				// 核销记录
				authorized.GET("/promo-usages", adminHandler.GetPromoUsages)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
