package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/royalboe/commercia/internal/domain"
	apperrors "github.com/royalboe/commercia/pkg/errors"
	"github.com/royalboe/commercia/pkg/pagination"
)

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) List(ctx context.Context, p pagination.Params) ([]domain.Category, int, error) {
	args := m.Called(ctx, p)
	return args.Get(0).([]domain.Category), args.Int(1), args.Error(2)
}

func (m *mockCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCategoryService_CreateCategory_GeneratesSlug(t *testing.T) {
	categories := new(mockCategoryRepository)
	svc := NewCategoryService(categories, newTestLogger())

	categories.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.Slug == "home-garden"
	})).Return(nil)

	category, err := svc.CreateCategory(context.Background(), &CreateCategoryInput{Name: "Home & Garden"})
	require.NoError(t, err)
	assert.Equal(t, "home-garden", category.Slug)
	categories.AssertExpectations(t)
}

func TestCategoryService_CreateCategory_EmptyName(t *testing.T) {
	svc := NewCategoryService(new(mockCategoryRepository), newTestLogger())

	_, err := svc.CreateCategory(context.Background(), &CreateCategoryInput{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestProductService_CreateProduct_GeneratesSlug(t *testing.T) {
	products := new(mockProductRepository)
	svc := NewProductService(products, newTestLogger())

	products.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Slug == "super-widget-2024"
	}), []string{"cat-001"}).Return(nil)
	products.On("GetByID", mock.Anything, mock.AnythingOfType("string")).
		Return(&domain.Product{ID: "prod-001", Slug: "super-widget-2024"}, nil)

	p, err := svc.CreateProduct(context.Background(), &CreateProductInput{
		Name:        "Super Widget (2024)",
		Price:       1999,
		Stock:       5,
		CategoryIDs: []string{"cat-001"},
	})
	require.NoError(t, err)
	assert.Equal(t, "super-widget-2024", p.Slug)
	products.AssertExpectations(t)
}

func TestProductService_CreateProduct_NegativePrice(t *testing.T) {
	svc := NewProductService(new(mockProductRepository), newTestLogger())

	_, err := svc.CreateProduct(context.Background(), &CreateProductInput{Name: "Widget", Price: -1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestProductService_UpdateProduct_RenameRegeneratesSlug(t *testing.T) {
	products := new(mockProductRepository)
	svc := NewProductService(products, newTestLogger())

	products.On("GetBySlug", mock.Anything, "widget").
		Return(&domain.Product{ID: "prod-001", Name: "Widget", Slug: "widget", Price: 1000}, nil)
	products.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Slug == "mega-widget"
	}), []string(nil)).Return(nil)
	products.On("GetByID", mock.Anything, "prod-001").
		Return(&domain.Product{ID: "prod-001", Name: "Mega Widget", Slug: "mega-widget", Price: 1000}, nil)

	p, err := svc.UpdateProduct(context.Background(), "widget", &UpdateProductInput{Name: strPtr("Mega Widget")})
	require.NoError(t, err)
	assert.Equal(t, "mega-widget", p.Slug)
}
