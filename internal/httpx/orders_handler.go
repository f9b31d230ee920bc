package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/bookstore-storefront/internal/auth"
	"github.com/ariefcatur/bookstore-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderReader interface {
	ListByUser(ctx context.Context, userID int64) ([]orders.Order, error)
	ListWithStats(ctx context.Context, page, limit int) (orders.Dashboard, error)
	Details(ctx context.Context, orderID int64) (orders.Order, error)
}

type OrdersHandler struct {
	Orders OrderReader
	Tokens *auth.Tokens
	Logger *zap.Logger
}

type shippingAddress struct {
	FullName string `json:"fullName,omitempty"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
}

type orderedProduct struct {
	ProductID    int64   `json:"productId"`
	Name         string  `json:"name"`
	Authors      string  `json:"authors"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	Quantity     int     `json:"quantity"`
	PricePerUnit float64 `json:"pricePerUnit"`
	TotalPrice   float64 `json:"totalPrice"`
}

func toOrderedProducts(items []orders.OrderItem) []orderedProduct {
	out := make([]orderedProduct, 0, len(items))
	for _, it := range items {
		out = append(out, orderedProduct{
			ProductID: it.ProductID, Name: it.ProductName, Authors: it.Authors, ImageURL: it.ImageURL,
			Quantity: it.Quantity, PricePerUnit: it.PriceAtTime.InexactFloat64(), TotalPrice: it.TotalPrice.InexactFloat64(),
		})
	}
	return out
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.With(Authenticate(h.Tokens)).Get("/api/products/myorders", h.myOrders)
	r.Group(func(r chi.Router) {
		r.Use(Authenticate(h.Tokens), RequireAdmin)
		r.Get("/api/admin/checkout/getall", h.listAll)
		r.Get("/api/admin/checkout/{id}", h.details)
	})
}

func (h *OrdersHandler) myOrders(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	list, err := h.Orders.ListByUser(r.Context(), c.UserID)
	if err != nil {
		h.Logger.Error("list user orders", zap.Int64("user_id", c.UserID), zap.Error(err))
		fail(w, http.StatusInternalServerError, "LIST_FAILED", "Failed to fetch orders")
		return
	}

	type orderOut struct {
		OrderID         int64            `json:"orderId"`
		TransactionID   string           `json:"transactionId"`
		OrderDate       time.Time        `json:"orderDate"`
		Status          orders.Status    `json:"status"`
		ShippingAddress shippingAddress  `json:"shippingAddress"`
		OrderSummary    map[string]any   `json:"orderSummary"`
		Products        []orderedProduct `json:"products"`
	}
	out := make([]orderOut, 0, len(list))
	counts := map[orders.Status]int{}
	for _, o := range list {
		s := o.Shipping
		out = append(out, orderOut{
			OrderID:       o.ID,
			TransactionID: s.TransactionID,
			OrderDate:     o.CreatedAt,
			Status:        o.Status,
			ShippingAddress: shippingAddress{
				FullName: s.FullName, Address: s.Address, City: s.City, State: s.State, ZipCode: s.ZipCode,
			},
			OrderSummary: map[string]any{"totalAmount": o.TotalAmount.InexactFloat64(), "totalItems": o.TotalItems()},
			Products:     toOrderedProducts(o.Items),
		})
		counts[o.Status]++
	}

	ok(w, http.StatusOK, "Orders retrieved successfully", map[string]any{
		"orders":     out,
		"statistics": map[string]any{"totalOrders": len(out), "statusCounts": counts},
	})
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	d, err := h.Orders.ListWithStats(r.Context(), page, limit)
	if err != nil {
		h.Logger.Error("list orders", zap.Error(err))
		fail(w, http.StatusInternalServerError, "LIST_FAILED", "Failed to fetch orders")
		return
	}

	type summaryOut struct {
		OrderID       int64         `json:"orderId"`
		TransactionID string        `json:"transactionId"`
		UserName      string        `json:"userName"`
		UserEmail     string        `json:"userEmail"`
		Date          time.Time     `json:"date"`
		Amount        float64       `json:"amount"`
		Status        orders.Status `json:"status"`
	}
	out := make([]summaryOut, 0, len(d.Orders))
	for _, s := range d.Orders {
		out = append(out, summaryOut{
			OrderID: s.ID, TransactionID: s.TransactionID, UserName: s.FullName, UserEmail: s.UserEmail,
			Date: s.CreatedAt, Amount: s.TotalAmount.InexactFloat64(), Status: s.Status,
		})
	}

	pageURL := func(n int) string { return fmt.Sprintf("/api/admin/checkout/getall?page=%d&limit=%d", n, limit) }
	var next, prev, nextURL, prevURL any
	if d.HasNextPage() {
		next, nextURL = page+1, pageURL(page+1)
	}
	if d.HasPrevPage() {
		prev, prevURL = page-1, pageURL(page-1)
	}

	ok(w, http.StatusOK, "Orders retrieved successfully", map[string]any{
		"orders": out,
		"statistics": map[string]int{
			"totalCheckouts":     d.Stats.Total,
			"pendingCheckouts":   d.Stats.Pending,
			"confirmedCheckouts": d.Stats.Confirmed,
			"deliveredCheckouts": d.Stats.Delivered,
		},
		"pagination": map[string]any{
			"totalPages":     d.TotalPages,
			"currentPage":    d.CurrentPage,
			"nextPage":       next,
			"prevPage":       prev,
			"currentPageUrl": pageURL(page),
			"nextPageUrl":    nextURL,
			"prevPageUrl":    prevURL,
		},
	})
}

func (h *OrdersHandler) details(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(chi.URLParam(r, "id"))
	if !valid {
		fail(w, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid order ID")
		return
	}
	o, err := h.Orders.Details(r.Context(), id)
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		fail(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	case err != nil:
		h.Logger.Error("order details", zap.Int64("order_id", id), zap.Error(err))
		fail(w, http.StatusInternalServerError, "GET_FAILED", "Failed to fetch order details")
		return
	}

	s := o.Shipping
	subTotal := decimal.Zero
	for _, it := range o.Items {
		subTotal = subTotal.Add(it.TotalPrice)
	}
	ok(w, http.StatusOK, "Order details retrieved successfully", map[string]any{
		"orderDetails": map[string]any{
			"orderId":       o.ID,
			"transactionId": s.TransactionID,
			"orderDate":     o.CreatedAt,
			"status":        o.Status,
			"customerInfo": map[string]any{
				"name":  s.FullName,
				"email": o.UserEmail,
				"phone": o.UserPhone,
				"shippingAddress": shippingAddress{
					Address: s.Address, City: s.City, State: s.State, ZipCode: s.ZipCode,
				},
			},
			"paymentInfo": map[string]any{
				"bkashNumber":   s.BkashNumber,
				"transactionId": s.TransactionID,
				"totalAmount":   o.TotalAmount.InexactFloat64(),
			},
		},
		"products": toOrderedProducts(o.Items),
		"summary": map[string]any{
			"totalItems": o.TotalItems(),
			"subTotal":   subTotal.InexactFloat64(),
			"grossTotal": o.TotalAmount.InexactFloat64(),
		},
	})
}
