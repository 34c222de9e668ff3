package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/royalboe/commercia/pkg/database"
)

func TestBusDispatchesByType(t *testing.T) {
	bus := NewBus()

	var gotOrders []string
	bus.Subscribe(OrderItemsChanged{}, func(_ context.Context, _ database.Querier, e any) error {
		gotOrders = append(gotOrders, e.(OrderItemsChanged).OrderID)
		return nil
	})

	var gotProducts []string
	bus.Subscribe(ReviewsChanged{}, func(_ context.Context, _ database.Querier, e any) error {
		gotProducts = append(gotProducts, e.(ReviewsChanged).ProductID)
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), nil, OrderItemsChanged{OrderID: "o1"}))
	require.NoError(t, bus.Publish(context.Background(), nil, ReviewsChanged{ProductID: "p1"}))

	assert.Equal(t, []string{"o1"}, gotOrders)
	assert.Equal(t, []string{"p1"}, gotProducts)
}

func TestBusHandlerErrorStopsDispatch(t *testing.T) {
	bus := NewBus()
	boom := errors.New("boom")

	var secondCalled bool
	bus.Subscribe(OrderItemsChanged{}, func(_ context.Context, _ database.Querier, _ any) error {
		return boom
	})
	bus.Subscribe(OrderItemsChanged{}, func(_ context.Context, _ database.Querier, _ any) error {
		secondCalled = true
		return nil
	})

	err := bus.Publish(context.Background(), nil, OrderItemsChanged{OrderID: "o1"})
	assert.ErrorIs(t, err, boom)
	assert.False(t, secondCalled)
}

func TestBusNoHandlersIsNoop(t *testing.T) {
	bus := NewBus()
	assert.NoError(t, bus.Publish(context.Background(), nil, ReviewsChanged{ProductID: "p1"}))
}
