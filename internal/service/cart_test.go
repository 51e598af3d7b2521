package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shoplane/storefront/internal/domain"
	apperrors "github.com/shoplane/storefront/pkg/errors"
)

func newCartService(carts *mockCartRepo, products *mockProductRepo) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   newTestLogger(),
	}
}

func stockedProduct() *domain.Product {
	return &domain.Product{
		ID:         "prod-1",
		Name:       "Widget",
		Price:      1500,
		Currency:   "usd",
		StockCount: 5,
		ImageURL:   "https://cdn.example.com/w.jpg",
	}
}

func TestGetCart_MissingCartIsEmpty(t *testing.T) {
	carts := new(mockCartRepo)
	products := new(mockProductRepo)
	svc := newCartService(carts, products)

	carts.On("Get", mock.Anything, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))

	cart, err := svc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", cart.UserID)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)
}

func TestAddItem_SnapshotsCatalogPrice(t *testing.T) {
	carts := new(mockCartRepo)
	products := new(mockProductRepo)
	svc := newCartService(carts, products)

	products.On("GetByID", mock.Anything, "prod-1").Return(stockedProduct(), nil)
	carts.On("Get", mock.Anything, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))
	carts.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Cart) bool {
		return len(c.Items) == 1 &&
			c.Items[0].Price == 1500 &&
			c.Items[0].Name == "Widget" &&
			c.Items[0].Quantity == 2 &&
			c.Currency == "usd"
	})).Return(nil)

	cart, err := svc.AddItem(context.Background(), "user-1", &AddItemInput{ProductID: "prod-1", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), cart.TotalAmount())

	carts.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestAddItem_InsufficientStock(t *testing.T) {
	carts := new(mockCartRepo)
	products := new(mockProductRepo)
	svc := newCartService(carts, products)

	products.On("GetByID", mock.Anything, "prod-1").Return(stockedProduct(), nil)

	cart, err := svc.AddItem(context.Background(), "user-1", &AddItemInput{ProductID: "prod-1", Quantity: 9})
	assert.Nil(t, cart)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	carts := new(mockCartRepo)
	products := new(mockProductRepo)
	svc := newCartService(carts, products)

	products.On("GetByID", mock.Anything, "prod-ghost").Return(nil, apperrors.ErrNotFound)

	cart, err := svc.AddItem(context.Background(), "user-1", &AddItemInput{ProductID: "prod-ghost", Quantity: 1})
	assert.Nil(t, cart)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemoveItem_DropsEntry(t *testing.T) {
	carts := new(mockCartRepo)
	products := new(mockProductRepo)
	svc := newCartService(carts, products)

	carts.On("Get", mock.Anything, "user-1").Return(stockedCart(), nil)
	carts.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Cart) bool {
		return len(c.Items) == 1 && c.Items[0].ProductID == "prod-2"
	})).Return(nil)

	cart, err := svc.RemoveItem(context.Background(), "user-1", "prod-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	carts.AssertExpectations(t)
}

func TestClearCart(t *testing.T) {
	carts := new(mockCartRepo)
	products := new(mockProductRepo)
	svc := newCartService(carts, products)

	carts.On("Delete", mock.Anything, "user-1").Return(nil)

	assert.NoError(t, svc.ClearCart(context.Background(), "user-1"))
	carts.AssertExpectations(t)
}
