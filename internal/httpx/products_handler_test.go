package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ariefcatur/bookstore-storefront/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProducts struct {
	page   catalog.Page
	search string
	added  []catalog.NewProduct
	byID   map[int64]catalog.Product
}

func (s *stubProducts) List(_ context.Context, page, limit int, search string) (catalog.Page, error) {
	s.search = search
	p := s.page
	p.CurrentPage, p.Limit = page, limit
	return p, nil
}

func (s *stubProducts) AddProducts(_ context.Context, in []catalog.NewProduct) ([]int64, error) {
	s.added = append(s.added, in...)
	ids := make([]int64, len(in))
	for i := range in {
		ids[i] = int64(100 + i)
	}
	return ids, nil
}

func (s *stubProducts) GetByID(_ context.Context, id int64) (catalog.Product, error) {
	p, found := s.byID[id]
	if !found {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func newProductsHandler(s *stubProducts) *ProductsHandler {
	return &ProductsHandler{Store: s, Getter: s, Tokens: testTokens, Logger: zap.NewNop()}
}

func TestProducts_List(t *testing.T) {
	s := &stubProducts{page: catalog.Page{
		Products:      []catalog.Product{{ID: 1, Name: "Go", Price: decimal.RequireFromString("12.50"), Stock: 0}},
		TotalProducts: 3, TotalPages: 3, HasNextPage: true, HasPrevPage: true,
	}}

	rec := serve(newProductsHandler(s), http.MethodGet, "/api/products?page=2&limit=1&search=%20go%20", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "go", s.search)

	var data struct {
		Products   []productResp `json:"products"`
		Pagination struct {
			CurrentPage int     `json:"currentPage"`
			NextPage    *string `json:"nextPage"`
			PrevPage    *string `json:"prevPage"`
		} `json:"pagination"`
	}
	env := readEnvelope(t, rec)
	assert.Equal(t, "Products found", env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Products, 1)
	assert.Equal(t, 12.5, data.Products[0].Price)
	assert.False(t, data.Products[0].IsInStock)
	assert.Equal(t, 2, data.Pagination.CurrentPage)
	require.NotNil(t, data.Pagination.NextPage)
	assert.Equal(t, "/api/products?limit=1&page=3&search=go", *data.Pagination.NextPage)
	require.NotNil(t, data.Pagination.PrevPage)
}

func TestProducts_ListRejectsBadPaging(t *testing.T) {
	h := newProductsHandler(&stubProducts{})
	for _, q := range []string{"page=0", "limit=101", "page=x"} {
		rec := serve(h, http.MethodGet, "/api/products?"+q, "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestProducts_Get(t *testing.T) {
	s := &stubProducts{byID: map[int64]catalog.Product{7: {ID: 7, Name: "Go", Price: decimal.NewFromInt(5), Stock: 2}}}
	h := newProductsHandler(s)

	rec := serve(h, http.MethodGet, "/api/products/7", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p productResp
	require.NoError(t, json.Unmarshal(readEnvelope(t, rec).Data, &p))
	assert.True(t, p.IsInStock)

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/api/products/8", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/api/products/abc", "", "").Code)
}

func TestProducts_Add(t *testing.T) {
	t.Run("single object", func(t *testing.T) {
		s := &stubProducts{}
		rec := serve(newProductsHandler(s), http.MethodPost, "/api/products/add-products",
			`{"name":"Go","authors":"Pike","price":12.5,"stock":3}`, adminToken(t))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "Product added successfully", readEnvelope(t, rec).Message)
		require.Len(t, s.added, 1)
		assert.Equal(t, "12.50", s.added[0].Price.StringFixed(2))
	})

	t.Run("array", func(t *testing.T) {
		s := &stubProducts{}
		rec := serve(newProductsHandler(s), http.MethodPost, "/api/products/add-products",
			`[{"name":"A","authors":"X","price":1,"stock":1},{"name":"B","authors":"Y","price":2,"stock":0}]`, adminToken(t))
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "2 products added successfully", readEnvelope(t, rec).Message)
		assert.Len(t, s.added, 2)
	})

	t.Run("invalid price", func(t *testing.T) {
		s := &stubProducts{}
		rec := serve(newProductsHandler(s), http.MethodPost, "/api/products/add-products",
			`{"name":"Go","authors":"Pike","price":0,"stock":3}`, adminToken(t))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, s.added)
	})

	t.Run("customers cannot add", func(t *testing.T) {
		rec := serve(newProductsHandler(&stubProducts{}), http.MethodPost, "/api/products/add-products",
			`{"name":"Go","authors":"Pike","price":1,"stock":3}`, userToken(t, 2))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
