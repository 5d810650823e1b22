package worker

import (
	"context"
	"errors"
	"time"

	"github.com/bazaar-next/internal/config"
	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	promoExpireSweepInterval = time.Minute
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.PromoCodeRepo != nil {
		go s.runPromoExpireSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runPromoExpireSweepLoop 定时把过期优惠码置为终态，
// 与读取路径的惰性校正互为补充（长期无人读取的码也能收敛）。
func (s *Service) runPromoExpireSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.PromoCodeRepo == nil {
		return
	}
	runOnce := func() {
		affected, err := s.consumer.PromoCodeRepo.MarkExpired(time.Now())
		if err != nil {
			logger.Warnw("worker_promo_expire_sweep_failed", "error", err)
			return
		}
		if affected > 0 {
			logger.Infow("worker_promo_expire_sweep_done", "affected", affected)
		}
	}
	runOnce()

	ticker := time.NewTicker(promoExpireSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
