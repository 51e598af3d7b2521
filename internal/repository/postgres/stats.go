package postgres

import (
	"context"
	"fmt"

	"github.com/shoplane/storefront/internal/domain"
	"github.com/shoplane/storefront/pkg/database"
)

// StatsRepository computes the admin dashboard aggregates using PostgreSQL.
type StatsRepository struct {
	pool database.DBTX
}

// NewStatsRepository creates a new PostgreSQL-backed stats repository.
func NewStatsRepository(pool database.DBTX) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Summary computes the dashboard figures. Customer count excludes admins,
// and sales figures count paid orders only.
func (r *StatsRepository) Summary(ctx context.Context) (*domain.AdminSummary, error) {
	var summary domain.AdminSummary

	countsQuery := `
		SELECT
			(SELECT count(*) FROM users WHERE is_admin = FALSE),
			(SELECT count(*) FROM orders),
			(SELECT count(*) FROM products),
			(SELECT COALESCE(sum(total_amount), 0) FROM orders WHERE is_paid = TRUE)`

	err := r.pool.QueryRow(ctx, countsQuery).Scan(
		&summary.UserCount,
		&summary.OrderCount,
		&summary.ProductCount,
		&summary.TotalSales,
	)
	if err != nil {
		return nil, fmt.Errorf("scan summary counts: %w", err)
	}

	bestSellers, err := r.bestSellers(ctx, 5)
	if err != nil {
		return nil, err
	}
	summary.BestSellers = bestSellers

	dailyRevenue, err := r.dailyRevenue(ctx, 7)
	if err != nil {
		return nil, err
	}
	summary.DailyRevenue = dailyRevenue

	return &summary, nil
}

func (r *StatsRepository) bestSellers(ctx context.Context, limit int) ([]domain.BestSeller, error) {
	query := `
		SELECT oi.product_id, oi.name, sum(oi.quantity)::int AS units_sold
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.is_paid = TRUE
		GROUP BY oi.product_id, oi.name
		ORDER BY units_sold DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query best sellers: %w", err)
	}
	defer rows.Close()

	sellers := make([]domain.BestSeller, 0, limit)
	for rows.Next() {
		var s domain.BestSeller
		if err := rows.Scan(&s.ProductID, &s.Name, &s.UnitsSold); err != nil {
			return nil, fmt.Errorf("scan best seller: %w", err)
		}
		sellers = append(sellers, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate best seller rows: %w", err)
	}

	return sellers, nil
}

func (r *StatsRepository) dailyRevenue(ctx context.Context, days int) ([]domain.RevenuePoint, error) {
	query := `
		SELECT date_trunc('day', paid_at) AS day,
			   sum(total_amount) AS revenue,
			   count(*)::int AS orders
		FROM orders
		WHERE is_paid = TRUE AND paid_at >= now() - make_interval(days => $1)
		GROUP BY day
		ORDER BY day`

	rows, err := r.pool.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("query daily revenue: %w", err)
	}
	defer rows.Close()

	points := make([]domain.RevenuePoint, 0, days)
	for rows.Next() {
		var p domain.RevenuePoint
		if err := rows.Scan(&p.Day, &p.Revenue, &p.Orders); err != nil {
			return nil, fmt.Errorf("scan revenue point: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revenue rows: %w", err)
	}

	return points, nil
}
