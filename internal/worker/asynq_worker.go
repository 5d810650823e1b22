package worker

import (
	"context"
	"encoding/json"

	"github.com/bazaar-next/internal/logger"
	"github.com/bazaar-next/internal/provider"
	"github.com/bazaar-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPromoUsageIncrement, c.handlePromoUsageIncrement)
	mux.HandleFunc(queue.TaskPromoUsageDecrement, c.handlePromoUsageDecrement)
}

func (c *Consumer) handlePromoUsageIncrement(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_promo_usage_increment_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PromoUsageIncrementPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_promo_usage_increment_unmarshal_failed", "error", err)
		return err
	}
	if payload.Code == "" || payload.OrderNo == "" {
		logger.Debugw("worker_promo_usage_increment_skip_invalid_payload",
			"code", payload.Code,
			"order_no", payload.OrderNo,
		)
		return nil
	}
	if c.PromoUsageService == nil {
		logger.Warnw("worker_promo_usage_increment_skip_service_nil", "order_no", payload.OrderNo)
		return nil
	}
	// 计数服务内部吞掉错误并记日志，任务不重试
	c.PromoUsageService.IncrementUsage(payload.Code, payload.OrderNo, payload.UserID, payload.DiscountAmount, nil)
	return nil
}

func (c *Consumer) handlePromoUsageDecrement(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_promo_usage_decrement_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PromoUsageDecrementPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_promo_usage_decrement_unmarshal_failed", "error", err)
		return err
	}
	if payload.Code == "" || payload.OrderNo == "" {
		logger.Debugw("worker_promo_usage_decrement_skip_invalid_payload",
			"code", payload.Code,
			"order_no", payload.OrderNo,
		)
		return nil
	}
	if c.PromoUsageService == nil {
		logger.Warnw("worker_promo_usage_decrement_skip_service_nil", "order_no", payload.OrderNo)
		return nil
	}
	c.PromoUsageService.DecrementUsage(payload.Code, payload.OrderNo, nil)
	return nil
}
