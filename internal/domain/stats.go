package domain

import "time"

// AdminSummary is the aggregate dashboard view for the admin surface.
type AdminSummary struct {
	UserCount    int            `json:"user_count"`
	OrderCount   int            `json:"order_count"`
	ProductCount int            `json:"product_count"`
	TotalSales   int64          `json:"total_sales"`
	BestSellers  []BestSeller   `json:"best_sellers"`
	DailyRevenue []RevenuePoint `json:"daily_revenue"`
}

// BestSeller is a product ranked by units sold across paid orders.
type BestSeller struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitsSold int    `json:"units_sold"`
}

// RevenuePoint is one day of paid-order revenue.
type RevenuePoint struct {
	Day     time.Time `json:"day"`
	Revenue int64     `json:"revenue"`
	Orders  int       `json:"orders"`
}
