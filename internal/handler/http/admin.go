package http

import (
	"log/slog"
	"net/http"

	"github.com/shoplane/storefront/internal/service"
	"github.com/shoplane/storefront/pkg/httputil"
)

// AdminHandler handles HTTP requests for the admin dashboard endpoints.
type AdminHandler struct {
	admin  *service.AdminService
	users  *service.UserService
	orders *service.OrderService
	logger *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(admin *service.AdminService, users *service.UserService, orders *service.OrderService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		users:  users,
		orders: orders,
		logger: logger,
	}
}

// Summary handles GET /api/v1/admin/summary
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.admin.Summary(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := parsePagination(w, r)
	if !ok {
		return
	}

	users, total, err := h.users.ListUsers(r.Context(), page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(users, total, page, perPage))
}

// ListOrders handles GET /api/v1/admin/orders
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := parsePagination(w, r)
	if !ok {
		return
	}

	orders, total, err := h.orders.ListAllOrders(r.Context(), page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, page, perPage))
}
