package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shoplane/storefront/internal/domain"
	"github.com/shoplane/storefront/internal/repository"
	"github.com/shoplane/storefront/pkg/database"
	apperrors "github.com/shoplane/storefront/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
// Reviews live in their own table but are read and written as part of the
// product aggregate.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, slug, description, brand, category, image_url, price, currency, stock_count, num_reviews, rating, created_at, updated_at`

// reviewsAggExpr folds a product's reviews into a single JSONB array so a
// product and its reviews load in one query.
const reviewsAggExpr = `
	COALESCE(
		JSONB_AGG(
			JSONB_BUILD_OBJECT(
				'id', r.id,
				'product_id', r.product_id,
				'user_id', r.user_id,
				'user_name', r.user_name,
				'rating', r.rating,
				'comment', r.comment,
				'likes', r.likes,
				'dislikes', r.dislikes,
				'admin_reply', r.admin_reply,
				'created_at', r.created_at,
				'updated_at', r.updated_at
			) ORDER BY r.created_at
		) FILTER (WHERE r.id IS NOT NULL),
		'[]'::jsonb
	) AS reviews`

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, slug, description, brand, category, image_url, price, currency, stock_count, num_reviews, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		p.Brand,
		p.Category,
		p.ImageURL,
		p.Price,
		p.Currency,
		p.StockCount,
		p.NumReviews,
		p.Rating,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID, eagerly loading its reviews.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getWithReviews(ctx, "p.id = $1", id)
}

// GetBySlug retrieves a product by its slug, eagerly loading its reviews.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getWithReviews(ctx, "p.slug = $1", slug)
}

func (r *ProductRepository) getWithReviews(ctx context.Context, where string, arg any) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT
			p.id, p.name, p.slug, p.description, p.brand, p.category, p.image_url,
			p.price, p.currency, p.stock_count, p.num_reviews, p.rating,
			p.created_at, p.updated_at,
			%s
		FROM products p
		LEFT JOIN product_reviews r ON p.id = r.product_id
		WHERE %s
		GROUP BY p.id, p.name, p.slug, p.description, p.brand, p.category, p.image_url,
			p.price, p.currency, p.stock_count, p.num_reviews, p.rating,
			p.created_at, p.updated_at`,
		reviewsAggExpr, where,
	)

	var (
		p           domain.Product
		reviewsJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Brand,
		&p.Category,
		&p.ImageURL,
		&p.Price,
		&p.Currency,
		&p.StockCount,
		&p.NumReviews,
		&p.Rating,
		&p.CreatedAt,
		&p.UpdatedAt,
		&reviewsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	if len(reviewsJSON) > 0 && string(reviewsJSON) != "null" {
		if err := json.Unmarshal(reviewsJSON, &p.Reviews); err != nil {
			return nil, fmt.Errorf("unmarshal reviews: %w", err)
		}
	}
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}

	return &p, nil
}

// List returns products matching the given filter with the total count.
// Listed products carry the stored aggregates; review bodies are not loaded.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var totalCount int
	products := make([]domain.Product, 0)

	for rows.Next() {
		var p domain.Product

		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Brand,
			&p.Category,
			&p.ImageURL,
			&p.Price,
			&p.Currency,
			&p.StockCount,
			&p.NumReviews,
			&p.Rating,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}

// Update modifies an existing product in the database.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, slug = $2, description = $3, brand = $4, category = $5,
		    image_url = $6, price = $7, currency = $8, stock_count = $9, updated_at = $10
		WHERE id = $11`

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		p.Brand,
		p.Category,
		p.ImageURL,
		p.Price,
		p.Currency,
		p.StockCount,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product from the database. Reviews are removed by the
// ON DELETE CASCADE on product_reviews.product_id.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// Categories returns the distinct product categories, alphabetically.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

// TopRated returns the highest-rated products, best first.
func (r *ProductRepository) TopRated(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 3
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		ORDER BY rating DESC, num_reviews DESC
		LIMIT $1`, productColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list top rated products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Brand,
			&p.Category,
			&p.ImageURL,
			&p.Price,
			&p.Currency,
			&p.StockCount,
			&p.NumReviews,
			&p.Rating,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan top rated row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top rated rows: %w", err)
	}

	return products, nil
}

// CreateReview inserts the review and the product's recomputed aggregates
// in one transaction. The unique (product_id, user_id) index is the
// authoritative one-review-per-user guard under concurrent submissions.
func (r *ProductRepository) CreateReview(ctx context.Context, p *domain.Product, review *domain.Review) error {
	likesJSON, dislikesJSON, replyJSON, err := marshalReviewFields(review)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO product_reviews (id, product_id, user_id, user_name, rating, comment, likes, dislikes, admin_reply, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.Exec(ctx, insertQuery,
		review.ID,
		review.ProductID,
		review.UserID,
		review.UserName,
		review.Rating,
		review.Comment,
		likesJSON,
		dislikesJSON,
		replyJSON,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("review", "user_id", review.UserID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	if err := r.updateAggregates(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// UpdateReview persists a mutated review and the product aggregates in one
// transaction.
func (r *ProductRepository) UpdateReview(ctx context.Context, p *domain.Product, review *domain.Review) error {
	likesJSON, dislikesJSON, replyJSON, err := marshalReviewFields(review)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE product_reviews
		SET rating = $1, comment = $2, likes = $3, dislikes = $4, admin_reply = $5, updated_at = $6
		WHERE id = $7`

	ct, err := tx.Exec(ctx, updateQuery,
		review.Rating,
		review.Comment,
		likesJSON,
		dislikesJSON,
		replyJSON,
		review.UpdatedAt,
		review.ID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}

	if err := r.updateAggregates(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// DeleteReview removes the review and writes the product's recomputed
// aggregates in one transaction.
func (r *ProductRepository) DeleteReview(ctx context.Context, p *domain.Product, reviewID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `DELETE FROM product_reviews WHERE id = $1 AND product_id = $2`, reviewID, p.ID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", reviewID)
	}

	if err := r.updateAggregates(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// updateAggregates writes the product's derived review figures.
func (r *ProductRepository) updateAggregates(ctx context.Context, tx pgx.Tx, p *domain.Product) error {
	query := `
		UPDATE products
		SET num_reviews = $1, rating = $2, updated_at = $3
		WHERE id = $4`

	ct, err := tx.Exec(ctx, query, p.NumReviews, p.Rating, time.Now().UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("update product aggregates: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

func marshalReviewFields(review *domain.Review) (likes, dislikes, reply []byte, err error) {
	likes, err = json.Marshal(emptyIfNil(review.Likes))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal likes: %w", err)
	}

	dislikes, err = json.Marshal(emptyIfNil(review.Dislikes))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal dislikes: %w", err)
	}

	if review.AdminReply != nil {
		reply, err = json.Marshal(review.AdminReply)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal admin reply: %w", err)
		}
	}

	return likes, dislikes, reply, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
