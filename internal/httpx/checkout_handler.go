package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/bookstore-storefront/internal/auth"
	"github.com/ariefcatur/bookstore-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CheckoutService interface {
	Checkout(ctx context.Context, userID int64, ship orders.ShippingInfo, lines []orders.CartLine, declaredGross decimal.Decimal) (orders.Receipt, error)
}

type CheckoutMetrics interface {
	Observe(result string, elapsed time.Duration)
}

type CheckoutHandler struct {
	Service CheckoutService
	Tokens  *auth.Tokens
	Metrics CheckoutMetrics
	Logger  *zap.Logger
	// Debug exposes internal error text on 500 responses.
	Debug bool
}

type checkoutDetails struct {
	FullName      string `json:"fullName" validate:"required,min=2,max=100"`
	Address       string `json:"address" validate:"required,max=500"`
	City          string `json:"city" validate:"required,max=50"`
	State         string `json:"state" validate:"required,max=50"`
	ZipCode       string `json:"zipCode" validate:"required,max=10"`
	BkashNumber   string `json:"bkashNumber" validate:"required,bkash"`
	TransactionID string `json:"transactionId" validate:"required,min=5,max=50"`
}

type checkoutProduct struct {
	ProductID         int64   `json:"productId" validate:"gte=1"`
	ProductQuantity   int     `json:"productQuantity" validate:"gte=1"`
	Price             float64 `json:"price" validate:"gte=0"`
	ProductTotalPrice float64 `json:"productTotalPrice" validate:"gte=0"`
}

type checkoutProducts struct {
	Products        []checkoutProduct `json:"products" validate:"required,min=1,dive"`
	GrossTotalPrice float64           `json:"grossTotalPrice" validate:"gte=0"`
}

type checkoutReq struct {
	Details  checkoutDetails  `json:"userCheckoutDetails"`
	Products checkoutProducts `json:"userCheckoutProductDetails"`
}

func (r *checkoutReq) normalize() {
	d := &r.Details
	for _, s := range []*string{&d.FullName, &d.Address, &d.City, &d.State, &d.ZipCode, &d.BkashNumber, &d.TransactionID} {
		*s = strings.TrimSpace(*s)
	}
}

type checkoutResp struct {
	OrderID     int64   `json:"orderId"`
	TotalAmount float64 `json:"totalAmount"`
	Status      string  `json:"status"`
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.With(Authenticate(h.Tokens)).Post("/api/checkout", h.checkout)
}

func (h *CheckoutHandler) checkout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req checkoutReq
	if !decode(w, r, &req) {
		h.observe("VALIDATION_FAILED", start)
		return
	}
	claims := claimsFrom(r.Context())
	if claims.UserID == 0 {
		h.observe("FORBIDDEN", start)
		fail(w, http.StatusForbidden, "FORBIDDEN", "Checkout requires a customer account")
		return
	}

	d := req.Details
	ship := orders.ShippingInfo{
		FullName: d.FullName, Address: d.Address, City: d.City, State: d.State,
		ZipCode: d.ZipCode, BkashNumber: d.BkashNumber, TransactionID: d.TransactionID,
	}
	lines := make([]orders.CartLine, 0, len(req.Products.Products))
	for _, p := range req.Products.Products {
		lines = append(lines, orders.CartLine{
			ProductID: p.ProductID,
			Quantity:  p.ProductQuantity,
			UnitPrice: decimal.NewFromFloat(p.Price),
			LineTotal: decimal.NewFromFloat(p.ProductTotalPrice),
		})
	}

	rec, err := h.Service.Checkout(r.Context(), claims.UserID, ship, lines, decimal.NewFromFloat(req.Products.GrossTotalPrice))
	if err != nil {
		status, code := checkoutError(err)
		h.observe(code, start)
		if status == http.StatusInternalServerError {
			h.Logger.Error("checkout failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
			env := envelope{Success: false, Message: "Checkout failed", Code: code}
			if h.Debug {
				env.Error = err.Error()
			}
			writeJSON(w, status, env)
			return
		}
		fail(w, status, code, err.Error())
		return
	}

	h.observe("ok", start)
	ok(w, http.StatusCreated, "Order placed successfully", checkoutResp{
		OrderID:     rec.OrderID,
		TotalAmount: rec.TotalAmount.InexactFloat64(),
		Status:      string(rec.Status),
	})
}

func (h *CheckoutHandler) observe(result string, start time.Time) {
	if h.Metrics != nil {
		h.Metrics.Observe(result, time.Since(start))
	}
}

// checkoutError maps a checkout failure kind to an HTTP status and error code.
func checkoutError(err error) (int, string) {
	switch kind := orders.Kind(err); {
	case errors.Is(kind, orders.ErrInvalidCart):
		return http.StatusBadRequest, "INVALID_CART"
	case errors.Is(kind, orders.ErrProductNotFound):
		return http.StatusBadRequest, "PRODUCT_NOT_FOUND"
	case errors.Is(kind, orders.ErrPriceMismatch):
		return http.StatusBadRequest, "PRICE_MISMATCH"
	case errors.Is(kind, orders.ErrLineTotalMismatch):
		return http.StatusBadRequest, "LINE_TOTAL_MISMATCH"
	case errors.Is(kind, orders.ErrGrossTotalMismatch):
		return http.StatusBadRequest, "GROSS_TOTAL_MISMATCH"
	case errors.Is(kind, orders.ErrDuplicateTransaction):
		return http.StatusConflict, "DUPLICATE_TRANSACTION"
	case errors.Is(kind, orders.ErrOrderPersistenceFailed):
		return http.StatusInternalServerError, "ORDER_PERSISTENCE_FAILED"
	default:
		return http.StatusInternalServerError, "CHECKOUT_FAILED"
	}
}
