package httpx

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ariefcatur/bookstore-storefront/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

var testTokens = &auth.Tokens{
	Secret: []byte("test-secret"),
	TTL:    time.Hour,
	Now:    time.Now,
}

func userToken(t *testing.T, id int64) string {
	t.Helper()
	tok, err := testTokens.Issue(auth.Claims{UserID: id, Email: "jane@example.com", Role: auth.RoleUser})
	require.NoError(t, err)
	return tok
}

func adminToken(t *testing.T) string {
	t.Helper()
	tok, err := testTokens.Issue(auth.Claims{Name: "Admin", Email: "admin@example.com", Role: auth.RoleAdmin, IsAdmin: true})
	require.NoError(t, err)
	return tok
}

type registrar interface{ Register(chi.Router) }

func serve(h registrar, method, target, body, token string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Errors  []fieldError    `json:"errors"`
	Error   string          `json:"error"`
}

func readEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}
