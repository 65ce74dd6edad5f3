package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TypeExpire is the asynq task type that expires an unpaid order.
const TypeExpire = "order:expire"

type expirePayload struct {
	OrderID string `json:"orderId"`
}

// NewExpireTask builds the expiry task for orderID.
func NewExpireTask(orderID string) (*asynq.Task, error) {
	payload, err := json.Marshal(expirePayload{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeExpire, payload, asynq.MaxRetry(10)), nil
}

func (s *Service) scheduleExpiry(ctx context.Context, orderID string) error {
	if s.Tasks == nil {
		return nil
	}
	task, err := NewExpireTask(orderID)
	if err != nil {
		return fmt.Errorf("build expiry task: %w", err)
	}
	_, err = s.Tasks.EnqueueContext(ctx, task,
		asynq.ProcessIn(s.paymentTTL()),
		asynq.TaskID("expire:"+orderID),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("enqueue expiry task: %w", err)
	}
	return nil
}

// HandleExpireTask processes TypeExpire tasks. Orders deleted in the meantime are
// acknowledged; malformed payloads are not retried.
func (s *Service) HandleExpireTask(ctx context.Context, t *asynq.Task) error {
	var p expirePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TypeExpire, err, asynq.SkipRetry)
	}
	err := s.Expire(ctx, p.OrderID)
	if errors.Is(err, ErrOrderNotFound) {
		zerolog.Ctx(ctx).Warn().Str("order_id", p.OrderID).Msg("expiry task for unknown order")
		return nil
	}
	return err
}

// RegisterTasks binds the order task handlers on mux.
func (s *Service) RegisterTasks(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeExpire, s.HandleExpireTask)
}
