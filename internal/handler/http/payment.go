package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shoplane/storefront/internal/service"
	"github.com/shoplane/storefront/pkg/httputil"
	"github.com/shoplane/storefront/pkg/middleware"
	"github.com/shoplane/storefront/pkg/validator"
)

// signatureHeader carries the provider's webhook payload signature.
const signatureHeader = "Stripe-Signature"

// maxWebhookBody bounds provider event payloads. Checkout session events
// are small; anything larger is not ours.
const maxWebhookBody = 1 << 16

// PaymentHandler handles HTTP requests for payment endpoints.
type PaymentHandler struct {
	service *service.PaymentService
	logger  *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler.
func NewPaymentHandler(svc *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: svc,
		logger:  logger,
	}
}

// ConfirmPaymentRequest is the JSON request body for the manual confirmation
// fallback used when the webhook has not arrived.
type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// CreateCheckout handles POST /api/v1/orders/{id}/checkout
func (h *PaymentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	email := middleware.UserEmailFromContext(r.Context())

	session, err := h.service.CreateCheckoutIntent(r.Context(), id.String(), userID, email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: session})
}

// ConfirmPayment handles PUT /api/v1/orders/{id}/pay
//
// The session is re-verified against the payment provider before the order
// is marked paid; the client-reported outcome is never trusted on its own.
func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	isAdmin := middleware.IsAdminFromContext(r.Context())

	order, err := h.service.ConfirmManual(r.Context(), id.String(), req.SessionID, userID, isAdmin)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// Webhook handles POST /api/v1/webhooks/payment
//
// The raw body is needed for signature verification, so this endpoint must
// not sit behind any middleware that consumes or rewrites the body.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "unable to read request body"},
		})
		return
	}

	if err := h.service.HandleProviderEvent(r.Context(), payload, r.Header.Get(signatureHeader)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{"received": true}})
}
