package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shoplane/storefront/internal/domain"
	"github.com/shoplane/storefront/internal/repository"
	"github.com/shoplane/storefront/internal/service"
	apperrors "github.com/shoplane/storefront/pkg/errors"
	"github.com/shoplane/storefront/pkg/middleware"
)

func testProductRouter(repo *mockProductRepository, isAdmin bool) *chi.Mux {
	svc := service.NewCatalogService(repo, testLogger())
	handler := NewProductHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", handler.ListProducts)
		r.Get("/categories", handler.ListCategories)
		r.Get("/top", handler.TopRated)
		r.Get("/slug/{slug}", handler.GetProductBySlug)
		r.Get("/{id}", handler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(identity("admin-1", "Admin", isAdmin))
			r.Use(middleware.RequireAdmin)
			r.Post("/", handler.CreateProduct)
			r.Put("/{id}", handler.UpdateProduct)
			r.Delete("/{id}", handler.DeleteProduct)
		})
	})
	return r
}

func catalogProduct() *domain.Product {
	now := time.Now().UTC()
	return &domain.Product{
		ID:         testProductID,
		Name:       "Trail Backpack",
		Slug:       "trail-backpack",
		Category:   "outdoor",
		Price:      4500,
		Currency:   "usd",
		StockCount: 12,
		Reviews:    []domain.Review{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func validProductJSON() []byte {
	b, _ := json.Marshal(ProductRequest{
		Name:       "Trail Backpack",
		Category:   "outdoor",
		Price:      4500,
		Currency:   "usd",
		StockCount: 12,
	})
	return b
}

func TestListProducts_Success(t *testing.T) {
	repo := new(mockProductRepository)
	router := testProductRouter(repo, false)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Page == 1 && f.PerPage == 20 && f.Category == nil && f.Search == nil
	})).Return([]domain.Product{*catalogProduct()}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var paginated struct {
		Data       []map[string]interface{} `json:"data"`
		TotalCount int                      `json:"total_count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&paginated))
	assert.Equal(t, 1, paginated.TotalCount)
	require.Len(t, paginated.Data, 1)
	assert.Equal(t, "trail-backpack", paginated.Data[0]["slug"])

	repo.AssertExpectations(t)
}

func TestListProducts_WithFilters(t *testing.T) {
	repo := new(mockProductRepository)
	router := testProductRouter(repo, false)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Category != nil && *f.Category == "outdoor" &&
			f.Search != nil && *f.Search == "pack"
	})).Return([]domain.Product{}, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=outdoor&search=pack", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestListProducts_InvalidPage(t *testing.T) {
	repo := new(mockProductRepository)
	router := testProductRouter(repo, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?page=zero", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestGetProductBySlug_Success(t *testing.T) {
	repo := new(mockProductRepository)
	router := testProductRouter(repo, false)

	repo.On("GetBySlug", mock.Anything, "trail-backpack").Return(catalogProduct(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/slug/trail-backpack", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, testProductID, data["id"])
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := new(mockProductRepository)
	router := testProductRouter(repo, false)

	repo.On("GetByID", mock.Anything, testProductID).Return(nil, apperrors.NotFound("product", testProductID))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+testProductID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProduct_InvalidUUID(t *testing.T) {
	repo := new(mockProductRepository)
	router := testProductRouter(repo, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestCreateProduct_Success(t *testing.T) {
	repo := new(mockProductRepository)
	router := testProductRouter(repo, true)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Slug == "trail-backpack" && p.Price == 4500
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(validProductJSON()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	repo.AssertExpectations(t)
}

func TestCreateProduct_NonAdminForbidden(t *testing.T) {
	repo := new(mockProductRepository)
	router := testProductRouter(repo, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(validProductJSON()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProduct_ValidationError(t *testing.T) {
	repo := new(mockProductRepository)
	router := testProductRouter(repo, true)

	body, _ := json.Marshal(ProductRequest{Name: "X", Category: "outdoor", Price: 0, Currency: "usd"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestDeleteProduct_NoContent(t *testing.T) {
	repo := new(mockProductRepository)
	router := testProductRouter(repo, true)

	repo.On("Delete", mock.Anything, testProductID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+testProductID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}

func TestTopRated_LimitTooLarge(t *testing.T) {
	repo := new(mockProductRepository)
	router := testProductRouter(repo, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/top?limit=50", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCategories_Success(t *testing.T) {
	repo := new(mockProductRepository)
	router := testProductRouter(repo, false)

	repo.On("Categories", mock.Anything).Return([]string{"apparel", "outdoor"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/categories", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
	assert.Len(t, resp.Data, 2)
}
