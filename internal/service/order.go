package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/repo"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MsgOrderNotFound         = "Order not found"
	MsgAlreadyConfirmed      = "Order is already confirmed or completed"
	MsgCancelledNotConfirm   = "Cancelled orders cannot be confirmed"
	MsgOnlyConfirmedComplete = "Only confirmed orders can be completed"
	MsgAlreadyCancelled      = "Order is already cancelled"
	MsgCompletedNotCancel    = "Completed orders cannot be cancelled"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
	Now    func() time.Time
	// StockChanged is called with the product whose stock a deduction
	// changed, so cached listings and search documents can be refreshed.
	StockChanged func(ctx context.Context, productID uuid.UUID)
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func storeFailure(op string, err error) Result {
	return fail(KindStoreFailure, fmt.Sprintf("%s: %v", op, err))
}

func (s *OrderService) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.Repo.ListOrders(ctx, status)
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return nil, err
	}
	return order, nil
}

// ConfirmOrder moves a pending order to confirmed and deducts stock for each
// of its items. Deductions are best-effort: a failing item is recorded and
// logged, and never undoes the confirmation.
func (s *OrderService) ConfirmOrder(ctx context.Context, id uuid.UUID) Result {
	l := logging.FromContext(ctx).With("op", "order.confirm", "order_id", id)

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(KindNotFound, MsgOrderNotFound)
		}
		l.Error("confirm_order_error", "reason", "cannot load order", "error", err)
		return storeFailure("cannot load order", err)
	}
	if r, ok := confirmGuard(order.Status); !ok {
		return r
	}

	at := s.now()
	changed, err := s.Repo.TransitionStatus(ctx, id, []models.OrderStatus{models.OrderStatusPending}, models.OrderStatusConfirmed, at)
	if err != nil {
		l.Error("confirm_order_error", "reason", "cannot update status", "error", err)
		return storeFailure("cannot update order status", err)
	}
	if !changed {
		// another session moved the order first
		return s.lostRace(ctx, id, confirmGuard)
	}

	// The status change is committed, so stock work must not stop with the request.
	ctx = context.WithoutCancel(ctx)
	s.deductStock(ctx, order, at)

	publish(ctx, s.Events, topicOrderEvents, id.String(), OrderEvent{
		Type:    "order_confirmed",
		OrderID: id,
		Status:  models.OrderStatusConfirmed,
		At:      at,
	})
	l.Info("confirm_order_success", "items", len(order.Items))
	return succeed()
}

func confirmGuard(status models.OrderStatus) (Result, bool) {
	switch status {
	case models.OrderStatusPending:
		return Result{}, true
	case models.OrderStatusCancelled:
		return fail(KindInvalidTransition, MsgCancelledNotConfirm), false
	default:
		return fail(KindInvalidTransition, MsgAlreadyConfirmed), false
	}
}

func completeGuard(status models.OrderStatus) (Result, bool) {
	if status == models.OrderStatusConfirmed {
		return Result{}, true
	}
	return fail(KindInvalidTransition, MsgOnlyConfirmedComplete), false
}

func cancelGuard(status models.OrderStatus) (Result, bool) {
	switch status {
	case models.OrderStatusPending, models.OrderStatusConfirmed:
		return Result{}, true
	case models.OrderStatusCancelled:
		return fail(KindInvalidTransition, MsgAlreadyCancelled), false
	default:
		return fail(KindInvalidTransition, MsgCompletedNotCancel), false
	}
}

// lostRace reports the failure for a conditional update that matched no row.
func (s *OrderService) lostRace(ctx context.Context, id uuid.UUID, guard func(models.OrderStatus) (Result, bool)) Result {
	status, err := s.Repo.GetOrderStatus(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(KindNotFound, MsgOrderNotFound)
		}
		return storeFailure("cannot load order", err)
	}
	if r, ok := guard(status); !ok {
		return r
	}
	return fail(KindInvalidTransition, fmt.Sprintf("Order status changed concurrently to %s", status))
}

func clampDeduct(qty int) func(int) int {
	return func(current int) int {
		return max(0, current-qty)
	}
}

func (s *OrderService) deductStock(ctx context.Context, order *models.Order, at time.Time) {
	for _, item := range order.Items {
		d := &models.StockDeduction{
			OrderID:     order.ID,
			OrderItemID: item.ID,
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		}
		s.applyDeduction(ctx, d, at)
	}
}

// applyDeduction runs one deduction attempt and records its outcome. It
// reports whether this attempt changed stock.
func (s *OrderService) applyDeduction(ctx context.Context, d *models.StockDeduction, at time.Time) bool {
	l := logging.FromContext(ctx).With("order_id", d.OrderID, "order_item_id", d.OrderItemID, "product_id", d.ProductID)
	if d.VariationID != nil {
		l = l.With("variation_id", *d.VariationID)
	}

	err := s.Repo.ApplyDeduction(ctx, d, clampDeduct(d.Quantity))
	switch {
	case err == nil:
		l.Info("stock_deducted", "quantity", d.Quantity, "before", *d.StockBefore, "after", *d.StockAfter)
		publish(ctx, s.Events, topicOrderEvents, d.OrderID.String(), StockEvent{
			Type:        "stock_deducted",
			OrderID:     d.OrderID,
			ProductID:   d.ProductID,
			VariationID: d.VariationID,
			Quantity:    d.Quantity,
			StockBefore: *d.StockBefore,
			StockAfter:  *d.StockAfter,
			At:          at,
		})
		if s.StockChanged != nil {
			s.StockChanged(ctx, d.ProductID)
		}
		return true
	case errors.Is(err, repo.ErrAlreadyApplied):
		l.Info("stock_deduction_already_applied")
		return false
	case errors.Is(err, gorm.ErrRecordNotFound):
		d.Status = models.DeductionSkipped
		l.Warn("stock_deduction_skipped", "reason", "stock target not found", "error", err)
	default:
		d.Status = models.DeductionFailed
		l.Warn("stock_deduction_failed", "reason", "store failure", "error", err)
	}

	msg := err.Error()
	d.LastError = &msg
	if recErr := s.Repo.RecordDeduction(context.WithoutCancel(ctx), d); recErr != nil && !errors.Is(recErr, repo.ErrAlreadyApplied) {
		l.Error("stock_deduction_record_failed", "error", recErr)
	}
	return false
}

func (s *OrderService) ListDeductions(ctx context.Context, orderID uuid.UUID) ([]models.StockDeduction, error) {
	if _, err := s.Repo.GetOrderStatus(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, err
	}
	return s.Repo.ListDeductions(ctx, orderID)
}

// RetryFailedDeductions reapplies failed deductions, optionally limited to
// one order, and returns how many were applied.
func (s *OrderService) RetryFailedDeductions(ctx context.Context, orderID *uuid.UUID, limit int) (int, error) {
	pending, err := s.Repo.ListFailedDeductions(ctx, orderID, limit)
	if err != nil {
		return 0, err
	}

	at := s.now()
	applied := 0
	for i := range pending {
		d := pending[i]
		if s.applyDeduction(ctx, &d, at) {
			applied++
		}
	}
	return applied, nil
}

// CompleteOrder moves a confirmed order to completed. Stock is untouched.
func (s *OrderService) CompleteOrder(ctx context.Context, id uuid.UUID) Result {
	return s.transition(ctx, id, "complete", completeGuard,
		[]models.OrderStatus{models.OrderStatusConfirmed}, models.OrderStatusCompleted)
}

// CancelOrder moves a pending or confirmed order to cancelled. Stock already
// deducted at confirmation is not restored.
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID) Result {
	return s.transition(ctx, id, "cancel", cancelGuard,
		[]models.OrderStatus{models.OrderStatusPending, models.OrderStatusConfirmed}, models.OrderStatusCancelled)
}

func (s *OrderService) transition(ctx context.Context, id uuid.UUID, op string, guard func(models.OrderStatus) (Result, bool), from []models.OrderStatus, to models.OrderStatus) Result {
	l := logging.FromContext(ctx).With("op", "order."+op, "order_id", id)

	status, err := s.Repo.GetOrderStatus(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(KindNotFound, MsgOrderNotFound)
		}
		l.Error(op+"_order_error", "reason", "cannot load order", "error", err)
		return storeFailure("cannot load order", err)
	}
	if r, ok := guard(status); !ok {
		return r
	}

	at := s.now()
	changed, err := s.Repo.TransitionStatus(ctx, id, from, to, at)
	if err != nil {
		l.Error(op+"_order_error", "reason", "cannot update status", "error", err)
		return storeFailure("cannot update order status", err)
	}
	if !changed {
		return s.lostRace(ctx, id, guard)
	}

	publish(ctx, s.Events, topicOrderEvents, id.String(), OrderEvent{
		Type:    "order_" + string(to),
		OrderID: id,
		Status:  to,
		At:      at,
	})
	l.Info(op+"_order_success", "from", status)
	return succeed()
}
