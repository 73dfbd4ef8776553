package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bayramdkmn/ecommerce-api/internal/cache"
	"github.com/bayramdkmn/ecommerce-api/internal/domain"
	"github.com/bayramdkmn/ecommerce-api/internal/repository"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	orders repository.OrderStore
	cache  cache.CartCache
}

func NewOrderService(orders repository.OrderStore, cartCache cache.CartCache) *OrderService {
	return &OrderService{
		orders: orders,
		cache:  cartCache,
	}
}

// Checkout converts the user's cart into an order in one transaction:
// read and lock the cart lines with their current prices, compute the
// rounded total, insert the order and its items with full-precision price
// snapshots, and empty the cart. Any failure rolls everything back and
// leaves the cart exactly as it was.
func (s *OrderService) Checkout(ctx context.Context, userID int64) (*domain.Order, error) {
	var order *domain.Order

	err := s.orders.WithinTx(ctx, func(tx *sql.Tx) error {
		lines, err := s.orders.LockCartLines(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("read cart lines: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		items := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			price := line.EffectivePrice()
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, domain.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				Price:       price,
			})
		}

		// Round half away from zero; totals are non-negative so this is
		// the half-up rounding currency display expects.
		order = &domain.Order{
			UserID:     userID,
			TotalPrice: total.Round(2),
			Status:     domain.OrderStatusPending,
		}

		if err := s.orders.InsertOrder(ctx, tx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.orders.InsertOrderItems(ctx, tx, order.ID, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		order.Items = items

		if err := s.orders.DeleteCartLines(ctx, tx, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCartCache(userID)
	return order, nil
}

// CompleteOrder transitions a pending order to completed. A cancelled
// order can never be completed; completing an already-completed order is
// a no-op success.
func (s *OrderService) CompleteOrder(ctx context.Context, orderID int64, actor domain.Identity) (*domain.Order, error) {
	return s.transition(ctx, orderID, actor, domain.OrderStatusCompleted, ErrOrderCancelled)
}

// CancelOrder transitions a pending order to cancelled. A completed order
// can never be cancelled; cancelling an already-cancelled order is a
// no-op success.
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64, actor domain.Identity) (*domain.Order, error) {
	return s.transition(ctx, orderID, actor, domain.OrderStatusCancelled, ErrOrderCompleted)
}

func (s *OrderService) transition(ctx context.Context, orderID int64, actor domain.Identity, target domain.OrderStatus, conflict error) (*domain.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !actor.Owns(order.UserID) {
		return nil, fmt.Errorf("%w: only the order's owner or an administrator may change it", ErrPermission)
	}

	switch {
	case order.Status == target:
		return order, nil // repeated transition, nothing to do
	case order.Status.IsTerminal():
		return nil, conflict
	}

	err = s.orders.UpdateOrderStatus(ctx, orderID, order.Status, target)
	if errors.Is(err, repository.ErrOrderStatusChanged) {
		// A concurrent transition won the write. Judge against where the
		// order actually landed.
		order, err = s.getOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.Status == target {
			return order, nil
		}
		return nil, conflict
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = target
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int64, actor domain.Identity) (*domain.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(order.UserID) {
		return nil, fmt.Errorf("%w: only the order's owner or an administrator may view it", ErrPermission)
	}
	return order, nil
}

func (s *OrderService) getOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return s.orders.ListOrdersByUser(ctx, userID)
}

func (s *OrderService) ListPendingOrders(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return s.orders.ListOrdersByUserAndStatus(ctx, userID, domain.OrderStatusPending)
}

func (s *OrderService) ListAllOrders(ctx context.Context, actor domain.Identity) ([]*domain.Order, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: listing all orders requires an administrator", ErrPermission)
	}
	return s.orders.ListAllOrders(ctx)
}

func (s *OrderService) invalidateCartCache(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
