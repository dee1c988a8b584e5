package handler

import (
	billingapp "github.com/fub-assistant/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// BillingHandler starts checkouts and opens the billing portal
type BillingHandler struct {
	BaseHandler
	checkoutService *billingapp.CheckoutService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(checkoutService *billingapp.CheckoutService) *BillingHandler {
	return &BillingHandler{
		checkoutService: checkoutService,
	}
}

// StartCheckoutRequest starts a subscription checkout
type StartCheckoutRequest struct {
	CustomerEmail string `json:"customer_email" binding:"omitempty,email"`
}

// StartCheckout creates a Stripe checkout session for the monthly plan.
// POST /api/v1/billing/checkout
func (h *BillingHandler) StartCheckout(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, "invalid checkout request")
		return
	}

	result, err := h.checkoutService.StartCheckout(c.Request.Context(), billingapp.StartCheckoutInput{
		AccountID:     accountID,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// OpenPortal creates a Stripe billing portal session.
// POST /api/v1/billing/portal
func (h *BillingHandler) OpenPortal(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.checkoutService.OpenPortal(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
