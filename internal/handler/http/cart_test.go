package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/internal/inventory/memory"
	"github.com/hivx/My-store/internal/service"
	apperrors "github.com/hivx/My-store/pkg/errors"
	"github.com/hivx/My-store/pkg/httputil"
)

// ============================================================================
// Test fakes
// ============================================================================

type stubCartRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: map[string]*domain.Cart{}}
}

func (r *stubCartRepo) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[sessionID]
	if !ok {
		return nil, apperrors.NotFound("cart", sessionID)
	}
	return c.Snapshot(), nil
}

func (r *stubCartRepo) Save(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cart.SessionID] = cart.Snapshot()
	return nil
}

func (r *stubCartRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type cartTestEnv struct {
	router *chi.Mux
	repo   *stubCartRepo
	stock  *memory.Gateway
}

// setupCartRouter creates a chi router matching the production route layout,
// including the SessionIDFromHeader and ContentTypeJSON middleware so that
// session behavior is tested end-to-end.
func setupCartRouter(t *testing.T) *cartTestEnv {
	t.Helper()

	repo := newStubCartRepo()
	stock := memory.NewGateway()
	svc := service.NewCartService(repo, stock, "VND", testLogger())
	handler := NewCartHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionIDFromHeader)

		r.Get("/", handler.GetCart)
		r.Post("/lines", handler.AddLine)
		r.Put("/lines/{productId}/quantity", handler.UpdateQuantity)
		r.Put("/lines/{productId}/selection", handler.SetSelection)
		r.Delete("/lines/{productId}", handler.RemoveLine)
	})

	return &cartTestEnv{router: r, repo: repo, stock: stock}
}

// decodeResponse reads the response body into the standard envelope.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func doJSON(t *testing.T, router *chi.Mux, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seededCart() *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:        "cart-001",
		SessionID: "sess-123",
		Currency:  "VND",
		Lines: []domain.CartLine{
			{ProductID: "prod-a", Title: "Album A", UnitPrice: 100, Quantity: 2, Selected: true, Available: true},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ============================================================================
// GetCart
// ============================================================================

func TestGetCart_ReturnsExistingCart(t *testing.T) {
	env := setupCartRouter(t)
	require.NoError(t, env.repo.Save(context.Background(), seededCart()))

	rec := doJSON(t, env.router, http.MethodGet, "/api/v1/cart", "sess-123", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Data)
	cart := resp.Data.(map[string]any)
	assert.Equal(t, "cart-001", cart["id"])
}

func TestGetCart_MissingSessionHeader(t *testing.T) {
	env := setupCartRouter(t)

	rec := doJSON(t, env.router, http.MethodGet, "/api/v1/cart", "", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestGetCart_CreatesEmptyCartWhenNoneExists(t *testing.T) {
	env := setupCartRouter(t)

	rec := doJSON(t, env.router, http.MethodGet, "/api/v1/cart", "sess-new", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Data)
	cart := resp.Data.(map[string]any)
	assert.Equal(t, "sess-new", cart["session_id"])
}

// ============================================================================
// AddLine
// ============================================================================

func TestAddLine_Success(t *testing.T) {
	env := setupCartRouter(t)
	env.stock.SetStock("prod-a", 5, 150)

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/cart/lines", "sess-123", AddLineRequest{
		ProductID: "prod-a",
		Title:     "Album A",
		Quantity:  2,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Data)
	cart := resp.Data.(map[string]any)
	lines := cart["lines"].([]any)
	require.Len(t, lines, 1)
	line := lines[0].(map[string]any)
	assert.Equal(t, float64(150), line["unit_price"])
}

func TestAddLine_ValidationError(t *testing.T) {
	env := setupCartRouter(t)

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/cart/lines", "sess-123", AddLineRequest{
		ProductID: "prod-a",
		// Title missing
		Quantity: 1,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "Title")
}

func TestAddLine_OutOfStock(t *testing.T) {
	env := setupCartRouter(t)
	env.stock.SetStock("prod-a", 0, 150)

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/cart/lines", "sess-123", AddLineRequest{
		ProductID: "prod-a",
		Title:     "Album A",
		Quantity:  1,
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ITEM_UNAVAILABLE", resp.Error.Code)
}

func TestAddLine_InvalidBody(t *testing.T) {
	env := setupCartRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/lines", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", "sess-123")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddLine_RejectsNonJSONContentType(t *testing.T) {
	env := setupCartRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/lines", bytes.NewBufferString("quantity=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Session-ID", "sess-123")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// ============================================================================
// UpdateQuantity / SetSelection / RemoveLine
// ============================================================================

func TestUpdateQuantity_Success(t *testing.T) {
	env := setupCartRouter(t)
	require.NoError(t, env.repo.Save(context.Background(), seededCart()))

	rec := doJSON(t, env.router, http.MethodPut, "/api/v1/cart/lines/prod-a/quantity", "sess-123", UpdateQuantityRequest{Quantity: 5})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	cart := resp.Data.(map[string]any)
	lines := cart["lines"].([]any)
	line := lines[0].(map[string]any)
	assert.Equal(t, float64(5), line["quantity"])
}

func TestUpdateQuantity_LineNotFound(t *testing.T) {
	env := setupCartRouter(t)
	require.NoError(t, env.repo.Save(context.Background(), seededCart()))

	rec := doJSON(t, env.router, http.MethodPut, "/api/v1/cart/lines/prod-x/quantity", "sess-123", UpdateQuantityRequest{Quantity: 5})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetSelection_Deselect(t *testing.T) {
	env := setupCartRouter(t)
	require.NoError(t, env.repo.Save(context.Background(), seededCart()))

	rec := doJSON(t, env.router, http.MethodPut, "/api/v1/cart/lines/prod-a/selection", "sess-123", SetSelectionRequest{Selected: false})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	cart := resp.Data.(map[string]any)
	lines := cart["lines"].([]any)
	line := lines[0].(map[string]any)
	assert.Equal(t, false, line["selected"])
}

func TestRemoveLine_Success(t *testing.T) {
	env := setupCartRouter(t)
	require.NoError(t, env.repo.Save(context.Background(), seededCart()))

	rec := doJSON(t, env.router, http.MethodDelete, "/api/v1/cart/lines/prod-a", "sess-123", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	cart := resp.Data.(map[string]any)
	lines := cart["lines"].([]any)
	assert.Empty(t, lines)
}
