package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shoplane/storefront/internal/domain"
	"github.com/shoplane/storefront/internal/repository"
)

// AdminService serves the dashboard aggregates.
type AdminService struct {
	stats  repository.StatsRepository
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(stats repository.StatsRepository, logger *slog.Logger) *AdminService {
	return &AdminService{
		stats:  stats,
		logger: logger,
	}
}

// Summary returns the dashboard view: customer, order, and product counts,
// total paid sales, best sellers, and the recent daily revenue series.
func (s *AdminService) Summary(ctx context.Context) (*domain.AdminSummary, error) {
	summary, err := s.stats.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("load admin summary: %w", err)
	}
	return summary, nil
}
