package queue

import (
	"encoding/json"

	"github.com/bazaar-next/internal/constants"
	"github.com/bazaar-next/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// TaskPromoUsageIncrement 优惠码使用计数累加任务
	TaskPromoUsageIncrement = constants.TaskPromoUsageIncrement
	// TaskPromoUsageDecrement 优惠码使用计数回退任务
	TaskPromoUsageDecrement = constants.TaskPromoUsageDecrement
)

// PromoUsageIncrementPayload 使用计数累加任务载荷
type PromoUsageIncrementPayload struct {
	Code           string       `json:"code"`
	OrderNo        string       `json:"order_no"`
	UserID         string       `json:"user_id"`
	DiscountAmount models.Money `json:"discount_amount"`
}

// PromoUsageDecrementPayload 使用计数回退任务载荷
type PromoUsageDecrementPayload struct {
	Code    string `json:"code"`
	OrderNo string `json:"order_no"`
}

// NewPromoUsageIncrementTask 创建使用计数累加任务
func NewPromoUsageIncrementTask(payload PromoUsageIncrementPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromoUsageIncrement, body), nil
}

// NewPromoUsageDecrementTask 创建使用计数回退任务
func NewPromoUsageDecrementTask(payload PromoUsageDecrementPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromoUsageDecrement, body), nil
}
