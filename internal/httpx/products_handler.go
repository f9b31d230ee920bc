package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ariefcatur/bookstore-storefront/internal/auth"
	"github.com/ariefcatur/bookstore-storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductStore interface {
	List(ctx context.Context, page, limit int, search string) (catalog.Page, error)
	AddProducts(ctx context.Context, in []catalog.NewProduct) ([]int64, error)
}

type ProductGetter interface {
	GetByID(ctx context.Context, id int64) (catalog.Product, error)
}

type ProductsHandler struct {
	Store  ProductStore
	Getter ProductGetter
	Tokens *auth.Tokens
	Logger *zap.Logger
}

type productResp struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Authors     string    `json:"authors"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Stock       int       `json:"stock"`
	IsInStock   bool      `json:"isInStock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProductResp(p catalog.Product) productResp {
	return productResp{
		ID: p.ID, Name: p.Name, Authors: p.Authors, Price: p.Price.InexactFloat64(),
		Description: p.Description, ImageURL: p.ImageURL, Stock: p.Stock, IsInStock: p.Stock > 0,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

type newProductReq struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Authors     string  `json:"authors" validate:"required,max=255"`
	Price       float64 `json:"price" validate:"gt=0"`
	Description string  `json:"description" validate:"max=1000"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

type addProductsReq struct {
	Products []newProductReq `json:"products" validate:"required,min=1,dive"`
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/api/products", h.list)
	r.Get("/api/products/{id}", h.get)
	r.With(Authenticate(h.Tokens), RequireAdmin).Post("/api/products/add-products", h.add)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	res, err := h.Store.List(r.Context(), page, limit, search)
	if err != nil {
		h.Logger.Error("list products", zap.Error(err))
		fail(w, http.StatusInternalServerError, "LIST_FAILED", "Failed to fetch products")
		return
	}

	items := make([]productResp, 0, len(res.Products))
	for _, p := range res.Products {
		items = append(items, toProductResp(p))
	}
	pageURL := func(n int) *string {
		q := url.Values{}
		q.Set("page", fmt.Sprint(n))
		q.Set("limit", fmt.Sprint(limit))
		if search != "" {
			q.Set("search", search)
		}
		s := "/api/products?" + q.Encode()
		return &s
	}
	var next, prev *string
	if res.HasNextPage {
		next = pageURL(page + 1)
	}
	if res.HasPrevPage {
		prev = pageURL(page - 1)
	}

	msg := "Products retrieved successfully"
	if search != "" {
		msg = "Products found"
	}
	ok(w, http.StatusOK, msg, map[string]any{
		"products": items,
		"pagination": map[string]any{
			"totalProducts": res.TotalProducts,
			"totalPages":    res.TotalPages,
			"currentPage":   res.CurrentPage,
			"limit":         res.Limit,
			"hasNextPage":   res.HasNextPage,
			"hasPrevPage":   res.HasPrevPage,
			"nextPage":      next,
			"prevPage":      prev,
		},
	})
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(chi.URLParam(r, "id"))
	if !valid {
		fail(w, http.StatusBadRequest, "VALIDATION_FAILED", "Product ID must be a positive integer")
		return
	}
	p, err := h.Getter.GetByID(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		fail(w, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	case err != nil:
		h.Logger.Error("get product", zap.Int64("product_id", id), zap.Error(err))
		fail(w, http.StatusInternalServerError, "GET_FAILED", "Failed to fetch product details")
		return
	}
	ok(w, http.StatusOK, "Product details retrieved successfully", toProductResp(p))
}

// add accepts a single product object or an array of them.
func (h *ProductsHandler) add(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		fail(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	var req addProductsReq
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &req.Products); err != nil {
			fail(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
			return
		}
	} else {
		var one newProductReq
		if err := json.Unmarshal(raw, &one); err != nil {
			fail(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
			return
		}
		req.Products = []newProductReq{one}
	}
	if !check(w, &req) {
		return
	}

	in := make([]catalog.NewProduct, 0, len(req.Products))
	for _, p := range req.Products {
		in = append(in, catalog.NewProduct{
			Name: strings.TrimSpace(p.Name), Authors: strings.TrimSpace(p.Authors),
			Price: decimal.NewFromFloat(p.Price), Description: p.Description,
			ImageURL: p.ImageURL, Stock: p.Stock,
		})
	}
	ids, err := h.Store.AddProducts(r.Context(), in)
	if err != nil {
		h.Logger.Error("add products", zap.Error(err))
		fail(w, http.StatusInternalServerError, "ADD_FAILED", "Failed to add product(s)")
		return
	}

	added := make([]map[string]any, 0, len(ids))
	for i, id := range ids {
		p := req.Products[i]
		added = append(added, map[string]any{
			"id": id, "name": p.Name, "authors": p.Authors, "price": p.Price,
			"description": p.Description, "image_url": p.ImageURL, "stock": p.Stock,
		})
	}
	if len(added) == 1 {
		ok(w, http.StatusCreated, "Product added successfully", added[0])
		return
	}
	ok(w, http.StatusCreated, fmt.Sprintf("%d products added successfully", len(added)), added)
}
