package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/internal/event"
	"github.com/royalboe/commercia/internal/repository"
	apperrors "github.com/royalboe/commercia/pkg/errors"
)

// OrderService implements the business logic for order operations. Order
// totals are never accepted from callers; they are derived from the items
// when the items change.
type OrderService struct {
	repo     repository.OrderRepository
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, products repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// OrderItemInput holds one requested line of an order. The price is never
// part of the input; it is snapshotted from the product at write time.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrder creates an order for the actor with price snapshots taken from
// the current catalog.
func (s *OrderService) CreateOrder(ctx context.Context, actor Actor, inputs []OrderItemInput) (*domain.Order, error) {
	if actor.UserID == "" {
		return nil, apperrors.Forbidden("authentication required")
	}

	items, err := s.snapshotItems(ctx, inputs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:        uuid.New().String(),
		UserID:    actor.UserID,
		Status:    domain.OrderStatusPending,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// Re-read for the derived total.
	created, err := s.repo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, created); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", created.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", created.ID),
		slog.Int64("total_amount", created.TotalAmount),
	)

	return created, nil
}

// GetOrder retrieves an order. Non-admin actors may only read their own.
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if !actor.CanAccess(order.UserID) {
		return nil, apperrors.Forbidden("order belongs to another user")
	}

	return order, nil
}

// ListOrders returns orders visible to the actor. Non-admin actors only see
// their own orders regardless of the requested filter.
func (s *OrderService) ListOrders(ctx context.Context, actor Actor, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if !actor.Admin {
		if actor.UserID == "" {
			return nil, 0, apperrors.Forbidden("authentication required")
		}
		filter.UserID = &actor.UserID
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// ReplaceOrderItems discards the order's current items and writes the given
// set with fresh price snapshots. The stored total follows in the same
// transaction.
func (s *OrderService) ReplaceOrderItems(ctx context.Context, actor Actor, orderID string, inputs []OrderItemInput) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if !actor.CanAccess(order.UserID) {
		return nil, apperrors.Forbidden("order belongs to another user")
	}

	items, err := s.snapshotItems(ctx, inputs)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceItems(ctx, orderID, items); err != nil {
		return nil, fmt.Errorf("replace order items: %w", err)
	}

	updated, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if err := s.producer.PublishOrderItemsReplaced(ctx, orderID, len(updated.Items)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.items_replaced event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	return updated, nil
}

// DeleteOrderItem removes one item from an order. The stored total follows in
// the same transaction.
func (s *OrderService) DeleteOrderItem(ctx context.Context, actor Actor, orderID string, itemID int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if !actor.CanAccess(order.UserID) {
		return nil, apperrors.Forbidden("order belongs to another user")
	}

	if err := s.repo.DeleteItem(ctx, orderID, itemID); err != nil {
		return nil, fmt.Errorf("delete order item: %w", err)
	}

	updated, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	return updated, nil
}

// UpdateOrderStatus moves an order to the given status. Admin only.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor Actor, orderID string, status string) (*domain.Order, error) {
	if !actor.Admin {
		return nil, apperrors.Forbidden("only admins may change order status")
	}

	if !domain.IsValidOrderStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid order status %q", status))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	return s.repo.GetByID(ctx, orderID)
}

// DeleteOrder removes an order.
func (s *OrderService) DeleteOrder(ctx context.Context, actor Actor, orderID string) error {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order by id: %w", err)
	}

	if !actor.CanAccess(order.UserID) {
		return apperrors.Forbidden("order belongs to another user")
	}

	if err := s.repo.Delete(ctx, orderID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	s.logger.InfoContext(ctx, "order deleted", slog.String("order_id", orderID))

	return nil
}

// snapshotItems validates the inputs and resolves each line against the
// current catalog, capturing name and price as they are right now.
func (s *OrderService) snapshotItems(ctx context.Context, inputs []OrderItemInput) ([]domain.OrderItem, error) {
	if len(inputs) == 0 {
		return nil, apperrors.InvalidInput("order must have at least one item")
	}

	ids := make([]string, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be positive")
		}
		if seen[in.ProductID] {
			return nil, apperrors.InvalidInput(fmt.Sprintf("duplicate product %s in order", in.ProductID))
		}
		seen[in.ProductID] = true
		ids = append(ids, in.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]domain.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		p, ok := byID[in.ProductID]
		if !ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown product %s", in.ProductID))
		}
		items = append(items, domain.OrderItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Quantity:     in.Quantity,
			PriceAtOrder: p.Price,
		})
	}

	return items, nil
}
