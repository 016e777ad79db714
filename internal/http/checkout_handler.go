package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"go.uber.org/zap"
)

type CheckoutService interface {
	Checkout(ctx context.Context, info domain.ShippingInfo) (*domain.Order, error)
}

type CheckoutHandler struct {
	orders  CheckoutService
	timeout time.Duration
	logger  *zap.Logger
}

func NewCheckoutHandler(orders CheckoutService, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		orders:  orders,
		timeout: timeout,
		logger:  log,
	}
}

type CheckoutRequestDTO struct {
	ShippingInfo domain.ShippingInfo `json:"shipping_info"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.orders.Checkout(ctx, req.ShippingInfo)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}
