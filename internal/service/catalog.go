package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/shoplane/storefront/internal/domain"
	"github.com/shoplane/storefront/internal/repository"
	"github.com/shoplane/storefront/pkg/validator"
)

// CatalogService implements the business logic for the product catalog.
type CatalogService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(products repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		logger:   logger,
	}
}

// ProductInput holds the parameters for creating or updating a product.
type ProductInput struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Brand       string `json:"brand" validate:"max=100"`
	Category    string `json:"category" validate:"max=100"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
	StockCount  int    `json:"stock_count" validate:"gte=0"`
}

// ListProductsInput holds the catalog listing parameters.
type ListProductsInput struct {
	Category string
	Search   string
	Page     int
	PerPage  int
}

// CreateProduct adds a new product to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, input *ProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        slugify(input.Name),
		Description: input.Description,
		Brand:       input.Brand,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Price:       input.Price,
		Currency:    strings.ToLower(input.Currency),
		StockCount:  input.StockCount,
		Reviews:     []domain.Review{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// GetProduct retrieves a product with its reviews by ID.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// GetProductBySlug retrieves a product with its reviews by slug.
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// ListProducts returns a filtered, paginated catalog page.
func (s *CatalogService) ListProducts(ctx context.Context, input *ListProductsInput) ([]domain.Product, int, error) {
	filter := repository.ProductFilter{
		Page:    input.Page,
		PerPage: input.PerPage,
	}
	if input.Category != "" {
		filter.Category = &input.Category
	}
	if input.Search != "" {
		filter.Search = &input.Search
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// UpdateProduct modifies an existing product. Review aggregates are not
// touched; they only move through review mutations.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input *ProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	product.Name = input.Name
	product.Slug = slugify(input.Name)
	product.Description = input.Description
	product.Brand = input.Brand
	product.Category = input.Category
	product.ImageURL = input.ImageURL
	product.Price = input.Price
	product.Currency = strings.ToLower(input.Currency)
	product.StockCount = input.StockCount

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product and its reviews from the catalog.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

// Categories returns the distinct product categories.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.products.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// TopRated returns the highest-rated products for the storefront carousel.
func (s *CatalogService) TopRated(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 || limit > 10 {
		limit = 3
	}

	products, err := s.products.TopRated(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list top rated products: %w", err)
	}
	return products, nil
}

// slugify lowercases the name and collapses non-alphanumeric runs into
// single hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
