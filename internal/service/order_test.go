package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Skotchmaster/peptide_shop/internal/cache"
	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmOrder_PendingSetsStatusAndTimestamp(t *testing.T) {
	svc, r, _ := newOrderService(t)
	ctx := context.Background()
	p := seedProduct(t, r, "BPC-157", 10)
	o := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: p, qty: 1})

	res := svc.ConfirmOrder(ctx, o.ID)
	require.True(t, res.Success, res.Error)

	got, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
	require.NotNil(t, got.ConfirmedAt)
	assert.WithinDuration(t, fixedNow, *got.ConfirmedAt, 0)
	assert.Nil(t, got.CompletedAt)
}

func TestConfirmOrder_ScenarioDeductsOnceAndRejectsSecondConfirm(t *testing.T) {
	svc, r, _ := newOrderService(t)
	ctx := context.Background()
	p1 := seedProduct(t, r, "P1", 10)
	o1 := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: p1, qty: 3})

	res := svc.ConfirmOrder(ctx, o1.ID)
	assert.Equal(t, Result{Success: true}, res)
	assert.Equal(t, 7, productStock(t, r, p1.ID))

	status, err := r.GetOrderStatus(ctx, o1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, status)

	res = svc.ConfirmOrder(ctx, o1.ID)
	assert.False(t, res.Success)
	assert.Equal(t, "Order is already confirmed or completed", res.Error)
	assert.Equal(t, KindInvalidTransition, res.Kind)
	assert.Equal(t, 7, productStock(t, r, p1.ID))
}

func TestConfirmOrder_ClampsAtZero(t *testing.T) {
	svc, r, _ := newOrderService(t)
	p2 := seedProduct(t, r, "P2", 5)
	o2 := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: p2, qty: 12})

	res := svc.ConfirmOrder(context.Background(), o2.ID)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 0, productStock(t, r, p2.ID))
}

func TestConfirmOrder_VariationItemDeductsVariationOnly(t *testing.T) {
	svc, r, _ := newOrderService(t)
	p := seedProduct(t, r, "TB-500", 20)
	v := seedVariation(t, r, p.ID, "10mg", 6)
	o := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: p, variation: v, qty: 4})

	res := svc.ConfirmOrder(context.Background(), o.ID)
	require.True(t, res.Success, res.Error)

	assert.Equal(t, 2, variationStock(t, r, v.ID))
	assert.Equal(t, 20, productStock(t, r, p.ID))
}

func TestConfirmOrder_DeductsEveryItemInOrder(t *testing.T) {
	svc, r, _ := newOrderService(t)
	ctx := context.Background()
	a := seedProduct(t, r, "A", 10)
	b := seedProduct(t, r, "B", 10)
	v := seedVariation(t, r, b.ID, "5mg", 3)
	o := seedOrder(t, r, models.OrderStatusPending,
		itemSpec{product: a, qty: 2},
		itemSpec{product: b, qty: 1},
		itemSpec{product: b, variation: v, qty: 5},
	)

	require.True(t, svc.ConfirmOrder(ctx, o.ID).Success)
	assert.Equal(t, 8, productStock(t, r, a.ID))
	assert.Equal(t, 9, productStock(t, r, b.ID))
	assert.Equal(t, 0, variationStock(t, r, v.ID))

	deductions, err := svc.ListDeductions(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, deductions, 3)
	for _, d := range deductions {
		assert.Equal(t, models.DeductionApplied, d.Status)
		assert.Equal(t, 1, d.Attempts)
	}
}

func TestConfirmOrder_RejectsConfirmedAndCompleted(t *testing.T) {
	for _, status := range []models.OrderStatus{models.OrderStatusConfirmed, models.OrderStatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			svc, r, pub := newOrderService(t)
			p := seedProduct(t, r, "P", 10)
			o := seedOrder(t, r, status, itemSpec{product: p, qty: 3})

			res := svc.ConfirmOrder(context.Background(), o.ID)
			assert.False(t, res.Success)
			assert.Equal(t, KindInvalidTransition, res.Kind)
			assert.Equal(t, MsgAlreadyConfirmed, res.Error)

			assert.Equal(t, 10, productStock(t, r, p.ID))
			got, err := r.GetOrderStatus(context.Background(), o.ID)
			require.NoError(t, err)
			assert.Equal(t, status, got)
			assert.Empty(t, pub.types())
		})
	}
}

func TestConfirmOrder_RejectsCancelled(t *testing.T) {
	svc, r, _ := newOrderService(t)
	p := seedProduct(t, r, "P", 10)
	o := seedOrder(t, r, models.OrderStatusCancelled, itemSpec{product: p, qty: 3})

	res := svc.ConfirmOrder(context.Background(), o.ID)
	assert.False(t, res.Success)
	assert.Equal(t, KindInvalidTransition, res.Kind)
	assert.Equal(t, MsgCancelledNotConfirm, res.Error)
	assert.Equal(t, 10, productStock(t, r, p.ID))
}

func TestConfirmOrder_NotFound(t *testing.T) {
	svc, _, _ := newOrderService(t)

	res := svc.ConfirmOrder(context.Background(), uuid.New())
	assert.Equal(t, Result{Kind: KindNotFound, Error: MsgOrderNotFound}, res)
}

func TestConfirmOrder_MissingProductIsSkipped(t *testing.T) {
	svc, r, _ := newOrderService(t)
	ctx := context.Background()
	gone := seedProduct(t, r, "Gone", 10)
	kept := seedProduct(t, r, "Kept", 10)
	o := seedOrder(t, r, models.OrderStatusPending,
		itemSpec{product: gone, qty: 1},
		itemSpec{product: kept, qty: 4},
	)
	require.NoError(t, r.DeleteProduct(ctx, gone.ID))

	res := svc.ConfirmOrder(ctx, o.ID)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 6, productStock(t, r, kept.ID))

	deductions, err := svc.ListDeductions(ctx, o.ID)
	require.NoError(t, err)
	byProduct := map[uuid.UUID]models.StockDeduction{}
	for _, d := range deductions {
		byProduct[d.ProductID] = d
	}
	assert.Equal(t, models.DeductionSkipped, byProduct[gone.ID].Status)
	require.NotNil(t, byProduct[gone.ID].LastError)
	assert.Equal(t, models.DeductionApplied, byProduct[kept.ID].Status)
}

func TestConfirmOrder_StoreFailure(t *testing.T) {
	svc, r, _ := newOrderService(t)
	p := seedProduct(t, r, "P", 10)
	o := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: p, qty: 1})

	sqlDB, err := r.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	res := svc.ConfirmOrder(context.Background(), o.ID)
	assert.False(t, res.Success)
	assert.Equal(t, KindStoreFailure, res.Kind)
	assert.NotEmpty(t, res.Error)
}

func TestConfirmOrder_PublishesEvents(t *testing.T) {
	svc, r, pub := newOrderService(t)
	p := seedProduct(t, r, "P", 10)
	o := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: p, qty: 2})

	require.True(t, svc.ConfirmOrder(context.Background(), o.ID).Success)
	assert.Equal(t, []string{"stock_deducted", "order_confirmed"}, pub.types())

	ev, ok := pub.events[0].event.(StockEvent)
	require.True(t, ok)
	assert.Equal(t, 10, ev.StockBefore)
	assert.Equal(t, 8, ev.StockAfter)
	assert.Equal(t, "order_events", pub.events[0].topic)
	assert.Equal(t, o.ID.String(), pub.events[0].key)
}

func TestConfirmOrder_PublishFailureDoesNotFail(t *testing.T) {
	svc, r, pub := newOrderService(t)
	pub.err = errors.New("broker down")
	p := seedProduct(t, r, "P", 10)
	o := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: p, qty: 2})

	require.True(t, svc.ConfirmOrder(context.Background(), o.ID).Success)
	assert.Equal(t, 8, productStock(t, r, p.ID))
}

func TestRetryFailedDeductions(t *testing.T) {
	svc, r, _ := newOrderService(t)
	ctx := context.Background()
	p := seedProduct(t, r, "P", 10)
	o := seedOrder(t, r, models.OrderStatusConfirmed, itemSpec{product: p, qty: 3})

	msg := "connection reset"
	require.NoError(t, r.RecordDeduction(ctx, &models.StockDeduction{
		OrderID:     o.ID,
		OrderItemID: o.Items[0].ID,
		ProductID:   p.ID,
		Quantity:    3,
		Status:      models.DeductionFailed,
		LastError:   &msg,
	}))

	n, err := svc.RetryFailedDeductions(ctx, &o.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 7, productStock(t, r, p.ID))

	deductions, err := svc.ListDeductions(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, deductions, 1)
	assert.Equal(t, models.DeductionApplied, deductions[0].Status)
	assert.Equal(t, 2, deductions[0].Attempts)
	assert.Nil(t, deductions[0].LastError)

	n, err = svc.RetryFailedDeductions(ctx, nil, 10)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 7, productStock(t, r, p.ID))
}

func TestListDeductions_UnknownOrder(t *testing.T) {
	svc, _, _ := newOrderService(t)
	_, err := svc.ListDeductions(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteOrder(t *testing.T) {
	svc, r, pub := newOrderService(t)
	ctx := context.Background()
	p := seedProduct(t, r, "P", 10)
	o := seedOrder(t, r, models.OrderStatusConfirmed, itemSpec{product: p, qty: 3})

	res := svc.CompleteOrder(ctx, o.ID)
	require.True(t, res.Success, res.Error)

	got, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, 10, productStock(t, r, p.ID))
	assert.Equal(t, []string{"order_completed"}, pub.types())
}

func TestCompleteOrder_RequiresConfirmed(t *testing.T) {
	for _, status := range []models.OrderStatus{models.OrderStatusPending, models.OrderStatusCompleted, models.OrderStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			svc, r, _ := newOrderService(t)
			p := seedProduct(t, r, "P", 10)
			o := seedOrder(t, r, status, itemSpec{product: p, qty: 3})

			res := svc.CompleteOrder(context.Background(), o.ID)
			assert.False(t, res.Success)
			assert.Equal(t, KindInvalidTransition, res.Kind)

			got, err := r.GetOrderStatus(context.Background(), o.ID)
			require.NoError(t, err)
			assert.Equal(t, status, got)
		})
	}
}

func TestCompleteOrder_NotFound(t *testing.T) {
	svc, _, _ := newOrderService(t)
	assert.Equal(t, KindNotFound, svc.CompleteOrder(context.Background(), uuid.New()).Kind)
}

func TestCancelOrder_PendingLeavesStock(t *testing.T) {
	svc, r, _ := newOrderService(t)
	p := seedProduct(t, r, "P", 10)
	o := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: p, qty: 3})

	require.True(t, svc.CancelOrder(context.Background(), o.ID).Success)

	got, err := r.GetOrderStatus(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got)
	assert.Equal(t, 10, productStock(t, r, p.ID))
}

func TestCancelOrder_AfterConfirmDoesNotRestock(t *testing.T) {
	svc, r, _ := newOrderService(t)
	ctx := context.Background()
	p := seedProduct(t, r, "P", 10)
	o := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: p, qty: 4})

	require.True(t, svc.ConfirmOrder(ctx, o.ID).Success)
	require.Equal(t, 6, productStock(t, r, p.ID))

	require.True(t, svc.CancelOrder(ctx, o.ID).Success)
	assert.Equal(t, 6, productStock(t, r, p.ID))

	res := svc.ConfirmOrder(ctx, o.ID)
	assert.Equal(t, MsgCancelledNotConfirm, res.Error)
	assert.Equal(t, 6, productStock(t, r, p.ID))
}

func TestCancelOrder_TerminalStatesRejected(t *testing.T) {
	cases := map[models.OrderStatus]string{
		models.OrderStatusCompleted: MsgCompletedNotCancel,
		models.OrderStatusCancelled: MsgAlreadyCancelled,
	}
	for status, msg := range cases {
		t.Run(string(status), func(t *testing.T) {
			svc, r, _ := newOrderService(t)
			p := seedProduct(t, r, "P", 10)
			o := seedOrder(t, r, status, itemSpec{product: p, qty: 3})

			res := svc.CancelOrder(context.Background(), o.ID)
			assert.Equal(t, Result{Kind: KindInvalidTransition, Error: msg}, res)
		})
	}
}

func TestListOrders_FilterAndValidation(t *testing.T) {
	svc, r, _ := newOrderService(t)
	ctx := context.Background()
	p := seedProduct(t, r, "P", 10)
	seedOrder(t, r, models.OrderStatusPending, itemSpec{product: p, qty: 1})
	seedOrder(t, r, models.OrderStatusConfirmed, itemSpec{product: p, qty: 1})

	all, err := svc.ListOrders(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.ListOrders(ctx, models.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.OrderStatusPending, pending[0].Status)

	_, err = svc.ListOrders(ctx, "shipped")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetOrder_NotFound(t *testing.T) {
	svc, _, _ := newOrderService(t)
	_, err := svc.GetOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

// cancelOnDeduct cancels the caller's context as soon as the first stock
// deduction is published, like a client that goes away mid-request.
type cancelOnDeduct struct {
	recordingPublisher
	cancel context.CancelFunc
}

func (p *cancelOnDeduct) PublishEvent(ctx context.Context, topic, key string, event any) error {
	if _, ok := event.(StockEvent); ok {
		p.cancel()
	}
	return p.recordingPublisher.PublishEvent(ctx, topic, key, event)
}

func TestConfirmOrder_DeductsEveryItemAfterRequestCancelled(t *testing.T) {
	svc, r, _ := newOrderService(t)
	a := seedProduct(t, r, "A", 10)
	b := seedProduct(t, r, "B", 10)
	o := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: a, qty: 2}, itemSpec{product: b, qty: 3})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Events = &cancelOnDeduct{cancel: cancel}

	require.True(t, svc.ConfirmOrder(ctx, o.ID).Success)
	assert.Equal(t, 8, productStock(t, r, a.ID))
	assert.Equal(t, 7, productStock(t, r, b.ID))

	deductions, err := svc.ListDeductions(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, deductions, 2)
	for _, d := range deductions {
		assert.Equal(t, models.DeductionApplied, d.Status)
	}
}

func blockStockUpdates(t *testing.T, svc *OrderService, productID uuid.UUID) {
	t.Helper()
	require.NoError(t, svc.Repo.DB.Exec(fmt.Sprintf(
		"CREATE TRIGGER block_stock BEFORE UPDATE ON products WHEN OLD.id = '%s' BEGIN SELECT RAISE(ABORT, 'stock row locked'); END",
		productID)).Error)
}

func TestConfirmOrder_StoreFailureIsRecordedAndRetried(t *testing.T) {
	svc, r, _ := newOrderService(t)
	ctx := context.Background()
	a := seedProduct(t, r, "A", 10)
	b := seedProduct(t, r, "B", 10)
	o := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: a, qty: 2}, itemSpec{product: b, qty: 3})

	blockStockUpdates(t, svc, b.ID)
	require.True(t, svc.ConfirmOrder(ctx, o.ID).Success)
	assert.Equal(t, 8, productStock(t, r, a.ID))
	assert.Equal(t, 10, productStock(t, r, b.ID))

	deductions, err := svc.ListDeductions(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, deductions, 2)
	byProduct := map[uuid.UUID]models.StockDeduction{}
	for _, d := range deductions {
		byProduct[d.ProductID] = d
	}
	failed := byProduct[b.ID]
	assert.Equal(t, models.DeductionFailed, failed.Status)
	require.NotNil(t, failed.LastError)
	assert.Contains(t, *failed.LastError, "stock row locked")
	assert.Equal(t, models.DeductionApplied, byProduct[a.ID].Status)

	// Still blocked: the row stays failed and nothing counts as applied.
	n, err := svc.RetryFailedDeductions(ctx, &o.ID, 10)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, r.DB.Exec("DROP TRIGGER block_stock").Error)
	n, err = svc.RetryFailedDeductions(ctx, &o.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 7, productStock(t, r, b.ID))
	assert.Equal(t, 8, productStock(t, r, a.ID))
}

func TestRetryFailedDeductions_AlreadyAppliedIsNotCounted(t *testing.T) {
	svc, r, _ := newOrderService(t)
	ctx := context.Background()
	p := seedProduct(t, r, "P", 10)
	o := seedOrder(t, r, models.OrderStatusConfirmed, itemSpec{product: p, qty: 3})

	msg := "connection reset"
	failed := models.StockDeduction{
		OrderID:     o.ID,
		OrderItemID: o.Items[0].ID,
		ProductID:   p.ID,
		Quantity:    3,
		Status:      models.DeductionFailed,
		LastError:   &msg,
	}
	require.NoError(t, r.RecordDeduction(ctx, &failed))

	// Another retrier picked up the same row first.
	stale, err := r.ListFailedDeductions(ctx, &o.ID, 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.NoError(t, r.ApplyDeduction(ctx, &stale[0], clampDeduct(3)))

	d := failed
	assert.False(t, svc.applyDeduction(ctx, &d, fixedNow))
	assert.Equal(t, 7, productStock(t, r, p.ID))
}

func TestConfirmOrder_RefreshesCachedListing(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := newRepo(t)
	seedCategory(t, r, "research")
	searcher := &fakeSearcher{}
	catalog := &CatalogService{Repo: r, Searcher: searcher, Cache: cache.NewRedisCache(client)}
	orders := &OrderService{Repo: r, Now: func() time.Time { return fixedNow }, StockChanged: catalog.StockDeducted}
	ctx := context.Background()

	p := seedProduct(t, r, "P", 10)
	o := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: p, qty: 3})

	page, err := catalog.ListProducts(ctx, "", 1, 0, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 10, page.Items[0].StockQuantity)

	require.True(t, orders.ConfirmOrder(ctx, o.ID).Success)

	page, err = catalog.ListProducts(ctx, "", 1, 0, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 7, page.Items[0].StockQuantity)
	assert.Contains(t, searcher.indexed, p.ID)
}

func flipStatusOnNow(t *testing.T, svc *OrderService, id uuid.UUID, to models.OrderStatus) {
	t.Helper()
	svc.Now = func() time.Time {
		require.NoError(t, svc.Repo.DB.Model(&models.Order{}).Where("id = ?", id).Update("status", to).Error)
		return fixedNow
	}
}

func TestConfirmOrder_LosesRaceToCancel(t *testing.T) {
	svc, r, pub := newOrderService(t)
	p := seedProduct(t, r, "P", 10)
	o := seedOrder(t, r, models.OrderStatusPending, itemSpec{product: p, qty: 3})
	flipStatusOnNow(t, svc, o.ID, models.OrderStatusCancelled)

	res := svc.ConfirmOrder(context.Background(), o.ID)
	assert.False(t, res.Success)
	assert.Equal(t, KindInvalidTransition, res.Kind)
	assert.Equal(t, MsgCancelledNotConfirm, res.Error)
	assert.Equal(t, 10, productStock(t, r, p.ID))
	assert.Empty(t, pub.types())

	deductions, err := svc.ListDeductions(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Empty(t, deductions)
}

func TestCancelOrder_LosesRaceToComplete(t *testing.T) {
	svc, r, pub := newOrderService(t)
	p := seedProduct(t, r, "P", 10)
	o := seedOrder(t, r, models.OrderStatusConfirmed, itemSpec{product: p, qty: 3})
	flipStatusOnNow(t, svc, o.ID, models.OrderStatusCompleted)

	res := svc.CancelOrder(context.Background(), o.ID)
	assert.False(t, res.Success)
	assert.Equal(t, KindInvalidTransition, res.Kind)
	assert.Equal(t, MsgCompletedNotCancel, res.Error)
	assert.Empty(t, pub.types())

	got, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, got.Status)
}
