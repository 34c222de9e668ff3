package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/royalboe/commercia/internal/cache"
	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/internal/event"
	"github.com/royalboe/commercia/internal/repository"
	"github.com/royalboe/commercia/internal/service"
	apperrors "github.com/royalboe/commercia/pkg/errors"
	"github.com/royalboe/commercia/pkg/health"
	pkgkafka "github.com/royalboe/commercia/pkg/kafka"
	"github.com/royalboe/commercia/pkg/pagination"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockCategoryRepo struct{ mock.Mock }

func (m *mockCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}
func (m *mockCategoryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}
func (m *mockCategoryRepo) List(ctx context.Context, p pagination.Params) ([]domain.Category, int, error) {
	args := m.Called(ctx, p)
	return args.Get(0).([]domain.Category), args.Int(1), args.Error(2)
}
func (m *mockCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCategoryRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product, categoryIDs []string) error {
	return m.Called(ctx, p, categoryIDs).Error(0)
}
func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *mockProductRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Product), args.Error(1)
}
func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}
func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product, categoryIDs []string) error {
	return m.Called(ctx, p, categoryIDs).Error(0)
}
func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}
func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *mockOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}
func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *mockOrderRepo) ReplaceItems(ctx context.Context, orderID string, items []domain.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}
func (m *mockOrderRepo) DeleteItem(ctx context.Context, orderID string, itemID int64) error {
	return m.Called(ctx, orderID, itemID).Error(0)
}
func (m *mockOrderRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockCartRepo struct{ mock.Mock }

func (m *mockCartRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}
func (m *mockCartRepo) GetOrCreateByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}
func (m *mockCartRepo) GetOrCreateByCode(ctx context.Context, code string) (*domain.Cart, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}
func (m *mockCartRepo) AddItem(ctx context.Context, cartID, productID string) error {
	return m.Called(ctx, cartID, productID).Error(0)
}
func (m *mockCartRepo) SetItemQuantity(ctx context.Context, cartID string, itemID int64, quantity int) error {
	return m.Called(ctx, cartID, itemID, quantity).Error(0)
}
func (m *mockCartRepo) RemoveItem(ctx context.Context, cartID string, itemID int64) error {
	return m.Called(ctx, cartID, itemID).Error(0)
}
func (m *mockCartRepo) Merge(ctx context.Context, code, userID string) error {
	return m.Called(ctx, code, userID).Error(0)
}
func (m *mockCartRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockReviewRepo struct{ mock.Mock }

func (m *mockReviewRepo) Create(ctx context.Context, rev *domain.Review) error {
	return m.Called(ctx, rev).Error(0)
}
func (m *mockReviewRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}
func (m *mockReviewRepo) ListByProduct(ctx context.Context, productID string, p pagination.Params) ([]domain.Review, int, error) {
	args := m.Called(ctx, productID, p)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}
func (m *mockReviewRepo) Update(ctx context.Context, rev *domain.Review) error {
	return m.Called(ctx, rev).Error(0)
}
func (m *mockReviewRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockReviewRepo) GetRating(ctx context.Context, productID string) (*domain.Rating, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rating), args.Error(1)
}

type mockWishlistRepo struct{ mock.Mock }

func (m *mockWishlistRepo) GetOrCreateByUser(ctx context.Context, userID string) (*domain.Wishlist, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}
func (m *mockWishlistRepo) GetByID(ctx context.Context, id string) (*domain.Wishlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}
func (m *mockWishlistRepo) List(ctx context.Context, p pagination.Params) ([]domain.Wishlist, int, error) {
	args := m.Called(ctx, p)
	return args.Get(0).([]domain.Wishlist), args.Int(1), args.Error(2)
}
func (m *mockWishlistRepo) ToggleProduct(ctx context.Context, wishlistID, productID string) (bool, error) {
	args := m.Called(ctx, wishlistID, productID)
	return args.Bool(0), args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *mockUserRepo) List(ctx context.Context, p pagination.Params) ([]domain.User, int, error) {
	args := m.Called(ctx, p)
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}
func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// =============================================================================
// Test setup
// =============================================================================

type testRepos struct {
	categories *mockCategoryRepo
	products   *mockProductRepo
	orders     *mockOrderRepo
	carts      *mockCartRepo
	reviews    *mockReviewRepo
	wishlists  *mockWishlistRepo
	users      *mockUserRepo
}

func newTestRouter(t *testing.T) (http.Handler, *testRepos) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })
	ratings := cache.NewRatingCache(redisClient, time.Hour)

	repos := &testRepos{
		categories: new(mockCategoryRepo),
		products:   new(mockProductRepo),
		orders:     new(mockOrderRepo),
		carts:      new(mockCartRepo),
		reviews:    new(mockReviewRepo),
		wishlists:  new(mockWishlistRepo),
		users:      new(mockUserRepo),
	}

	svcs := Services{
		Categories: service.NewCategoryService(repos.categories, logger),
		Products:   service.NewProductService(repos.products, logger),
		Orders:     service.NewOrderService(repos.orders, repos.products, producer, logger),
		Carts:      service.NewCartService(repos.carts, repos.products, producer, logger),
		Reviews:    service.NewReviewService(repos.reviews, repos.products, ratings, producer, logger),
		Wishlists:  service.NewWishlistService(repos.wishlists, repos.products, logger),
		Users:      service.NewUserService(repos.users, logger),
	}

	return NewRouter(svcs, health.NewHandler(), "commercia-test", logger), repos
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func asUser(id string) map[string]string {
	return map[string]string{"X-User-ID": id}
}

func asAdmin(id string) map[string]string {
	return map[string]string{"X-User-ID": id, "X-User-Role": "admin"}
}

// =============================================================================
// Tests
// =============================================================================

func TestRouter_HealthLive(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetProduct_NotFound(t *testing.T) {
	router, repos := newTestRouter(t)

	repos.products.On("GetBySlug", mock.Anything, "missing").
		Return(nil, apperrors.ErrNotFound)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrder_RequiresItems(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/orders",
		map[string]any{"items": []any{}}, asUser("2f6f7a34-2b56-4a2e-9f6a-0d7c9e3e8b01"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_Success(t *testing.T) {
	router, repos := newTestRouter(t)

	userID := "2f6f7a34-2b56-4a2e-9f6a-0d7c9e3e8b01"
	productID := "7c9a1d3e-5b2f-4e8a-9c6d-1f0b3a5e7d90"

	repos.products.On("GetByIDs", mock.Anything, []string{productID}).
		Return([]domain.Product{{ID: productID, Name: "Widget", Price: 2500}}, nil)
	repos.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Return(nil)
	repos.orders.On("GetByID", mock.Anything, mock.AnythingOfType("string")).
		Return(&domain.Order{
			ID: "order-001", UserID: userID, Status: domain.OrderStatusPending,
			TotalAmount: 5000,
			Items:       []domain.OrderItem{{ProductID: productID, Quantity: 2, PriceAtOrder: 2500}},
		}, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/orders",
		map[string]any{"items": []map[string]any{{"product_id": productID, "quantity": 2}}},
		asUser(userID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data domain.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(5000), resp.Data.TotalAmount)
}

func TestGetOrder_ForbiddenForOtherUser(t *testing.T) {
	router, repos := newTestRouter(t)

	repos.orders.On("GetByID", mock.Anything, "order-001").
		Return(&domain.Order{ID: "order-001", UserID: "owner-1"}, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/orders/order-001", nil, asUser("intruder-1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/orders/order-001", nil, asAdmin("admin-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetCart_WithSessionCode(t *testing.T) {
	router, repos := newTestRouter(t)

	code := "sess-abc"
	repos.carts.On("GetOrCreateByCode", mock.Anything, code).
		Return(&domain.Cart{ID: "cart-001", Code: &code, Items: []domain.CartItem{
			{ID: 1, ProductID: "prod-001", Quantity: 2, UnitPrice: 500, IsActive: true},
			{ID: 2, ProductID: "prod-002", Quantity: 1, UnitPrice: 300, IsActive: false},
		}}, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/carts", nil,
		map[string]string{"X-Cart-Code": code})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			CartTotal int64 `json:"cart_total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// The inactive line is excluded from the total.
	assert.Equal(t, int64(1000), resp.Data.CartTotal)
}

func TestGetCart_NoIdentity(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/carts", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMergeCart(t *testing.T) {
	router, repos := newTestRouter(t)

	userID := "2f6f7a34-2b56-4a2e-9f6a-0d7c9e3e8b01"
	repos.carts.On("Merge", mock.Anything, "sess-abc", userID).Return(nil)
	repos.carts.On("GetOrCreateByUser", mock.Anything, userID).
		Return(&domain.Cart{ID: "cart-001", UserID: &userID, Items: []domain.CartItem{
			{ID: 1, ProductID: "prod-001", Quantity: 5, UnitPrice: 200, IsActive: true},
		}}, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/carts/merge",
		map[string]any{"code": "sess-abc"}, asUser(userID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	repos.carts.AssertExpectations(t)
}

func TestToggleWishlistProduct(t *testing.T) {
	router, repos := newTestRouter(t)

	userID := "2f6f7a34-2b56-4a2e-9f6a-0d7c9e3e8b01"
	productID := "7c9a1d3e-5b2f-4e8a-9c6d-1f0b3a5e7d90"

	repos.products.On("GetByID", mock.Anything, productID).
		Return(&domain.Product{ID: productID}, nil)
	repos.wishlists.On("GetOrCreateByUser", mock.Anything, userID).
		Return(&domain.Wishlist{ID: "wl-001", UserID: userID}, nil)
	repos.wishlists.On("ToggleProduct", mock.Anything, "wl-001", productID).
		Return(true, nil)
	repos.wishlists.On("GetByID", mock.Anything, "wl-001").
		Return(&domain.Wishlist{ID: "wl-001", UserID: userID, Products: []domain.Product{{ID: productID}}}, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/wishlists/toggle",
		map[string]any{"product_id": productID}, asUser(userID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Added bool `json:"added"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Added)
}

func TestListUsers_AdminOnly(t *testing.T) {
	router, repos := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/users", nil, asUser("user-1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	repos.users.On("List", mock.Anything, mock.Anything).
		Return([]domain.User{{ID: "user-1"}}, 1, nil)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/users", nil, asAdmin("admin-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateReview_ValidatesRating(t *testing.T) {
	router, repos := newTestRouter(t)

	repos.products.On("GetBySlug", mock.Anything, "widget").
		Return(&domain.Product{ID: "prod-001", Slug: "widget"}, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/products/widget/reviews",
		map[string]any{"rating": 6}, asUser("user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
