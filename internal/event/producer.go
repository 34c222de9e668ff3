package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/royalboe/commercia/internal/domain"
	pkgkafka "github.com/royalboe/commercia/pkg/kafka"
)

// Kafka topic constants for outbound integration events.
const (
	TopicOrderCreated       = "commercia.order.created"
	TopicOrderItemsReplaced = "commercia.order.items_replaced"
	TopicCartMerged         = "commercia.cart.merged"
	TopicReviewCreated      = "commercia.review.created"
)

// Aggregate type constants.
const (
	AggregateTypeOrder  = "order"
	AggregateTypeCart   = "cart"
	AggregateTypeReview = "review"
)

// Source identifier for events originating from this service.
const Source = "commercia"

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"total_amount"`
	ItemCount   int    `json:"item_count"`
}

// OrderItemsReplacedData is the payload for an order.items_replaced event.
type OrderItemsReplacedData struct {
	OrderID   string `json:"order_id"`
	ItemCount int    `json:"item_count"`
}

// CartMergedData is the payload for a cart.merged event.
type CartMergedData struct {
	UserID    string `json:"user_id"`
	CartID    string `json:"cart_id"`
	ItemCount int    `json:"item_count"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
}

// Producer publishes integration events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new integration event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, Source, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
	)

	return nil
}

// PublishOrderItemsReplaced publishes an order.items_replaced event.
func (p *Producer) PublishOrderItemsReplaced(ctx context.Context, orderID string, itemCount int) error {
	data := OrderItemsReplacedData{
		OrderID:   orderID,
		ItemCount: itemCount,
	}

	event, err := pkgkafka.NewEvent(TopicOrderItemsReplaced, orderID, AggregateTypeOrder, Source, data)
	if err != nil {
		return fmt.Errorf("create order.items_replaced event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderItemsReplaced, event); err != nil {
		return fmt.Errorf("publish order.items_replaced event: %w", err)
	}

	return nil
}

// PublishCartMerged publishes a cart.merged event.
func (p *Producer) PublishCartMerged(ctx context.Context, cart *domain.Cart, userID string) error {
	data := CartMergedData{
		UserID:    userID,
		CartID:    cart.ID,
		ItemCount: len(cart.Items),
	}

	event, err := pkgkafka.NewEvent(TopicCartMerged, cart.ID, AggregateTypeCart, Source, data)
	if err != nil {
		return fmt.Errorf("create cart.merged event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartMerged, event); err != nil {
		return fmt.Errorf("publish cart.merged event: %w", err)
	}

	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, rev *domain.Review) error {
	data := ReviewCreatedData{
		ID:        rev.ID,
		ProductID: rev.ProductID,
		UserID:    rev.UserID,
		Rating:    rev.Rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, rev.ID, AggregateTypeReview, Source, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("review_id", rev.ID),
		slog.String("product_id", rev.ProductID),
	)

	return nil
}
