package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/rl1809/micro-shop/internal/adapter/filestore"
	"github.com/rl1809/micro-shop/internal/adapter/storage"
	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/core/service"
)

type testEnv struct {
	router   *gin.Engine
	store    *storage.MemoryAdapter
	orders   *service.OrderService
	products *service.ProductService
	settings *service.SettingsService
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryAdapter()
	files, err := filestore.NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)

	orders := service.NewOrderService(store, store, files, 100)
	t.Cleanup(orders.Close)
	go func() {
		for range orders.GetEventQueue() {
		}
	}()

	products := service.NewProductService(store, store, files)
	settings := service.NewSettingsService(store, 0)
	token, err := settings.IssueAdminToken(context.Background())
	require.NoError(t, err)

	router := gin.New()
	NewHTTPHandler(orders, products, settings, nil).Register(router)

	return &testEnv{
		router:   router,
		store:    store,
		orders:   orders,
		products: products,
		settings: settings,
		token:    token,
	}
}

func (e *testEnv) do(req *http.Request, admin bool) *httptest.ResponseRecorder {
	if admin {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) json(method, path string, body any, admin bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, admin)
}

type formFile struct {
	field, name, content string
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		fw.Write([]byte(f.content))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (e *testEnv) seedProducts(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := e.products.CreateProduct(context.Background(), service.ProductInput{
			Name:     "Item " + string(rune('A'+i)),
			Category: "Misc",
			Price:    domain.MustMoney("1.50"),
			Quantity: 1,
		}, nil, 0)
		require.NoError(t, err)
	}
}

func placeOrderBody() map[string]any {
	return map[string]any{
		"name":         "Ada",
		"email":        "ada@example.com",
		"location":     "London",
		"phone":        "555",
		"products":     "Mug (x2)",
		"total_amount": "25.50",
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	w := env.json(http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListProducts_PlainAndPaged(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducts(t, 12)

	w := env.json(http.MethodGet, "/api/products/", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Product](t, w), 12)

	w = env.json(http.MethodGet, "/api/products/?page=2", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[map[string]any](t, w)
	assert.EqualValues(t, 12, page["count"])
	assert.EqualValues(t, 2, page["total_pages"])
	assert.Len(t, page["results"], 2)

	w = env.json(http.MethodGet, "/api/products/?search=item%20c", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Product](t, w), 1)

	w = env.json(http.MethodGet, "/api/products/?page=x", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.json(http.MethodGet, "/api/products/?page=9223372036854775807&limit=9223372036854775807", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[map[string]any](t, w)
	assert.EqualValues(t, 1, page["total_pages"])
	assert.Empty(t, page["results"])
}

func TestProductAdminFlow(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, http.MethodPost, "/api/products/", map[string]string{
		"name":                "Mug",
		"category":            "Kitchen",
		"description":         "ceramic",
		"price":               "12.5",
		"quantity":            "3",
		"primary_image_index": "1",
	}, formFile{"images", "a.jpg", "a"}, formFile{"images", "b.jpg", "b"})
	w := env.do(req, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[map[string]any](t, w)
	assert.Equal(t, "12.50", created["price"])
	assert.Len(t, created["images"], 2)
	primary := created["primary_image"].(map[string]any)
	assert.True(t, strings.HasSuffix(primary["image"].(string), ".jpg"))
	id := int64(created["id"].(float64))

	p, err := env.products.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, p.Images[1].IsPrimary)

	req = multipartRequest(t, http.MethodPost, "/api/products/1/upload-images/",
		map[string]string{"primary_image_index": "0"}, formFile{"images", "c.png", "c"})
	w = env.do(req, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p, _ = env.products.GetProduct(context.Background(), id)
	require.Len(t, p.Images, 3)
	assert.True(t, p.Images[2].IsPrimary)

	w = env.json(http.MethodPatch, "/api/products/1/", map[string]any{"quantity": 0}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[domain.Product](t, w)
	assert.Equal(t, 0, updated.Quantity)
	assert.Equal(t, "Mug", updated.Name)

	w = env.json(http.MethodPatch, "/api/products/1/", map[string]any{"price": "-1"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.json(http.MethodDelete, "/api/products/1/", nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.json(http.MethodGet, "/api/products/1/", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(http.MethodGet, "/api/transactions/", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid token"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/", nil)
	req.Header.Set("Authorization", "Token "+env.token)
	w = env.do(req, false)
	assert.Equal(t, http.StatusOK, w.Code)

	old := domain.AdminToken{Token: "old", CreatedAt: time.Now().Add(-8 * 24 * time.Hour)}
	require.NoError(t, env.store.CreateAdminToken(context.Background(), old))
	req = httptest.NewRequest(http.MethodGet, "/api/transactions/", nil)
	req.Header.Set("Authorization", "Bearer old")
	w = env.do(req, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Token expired"}`, w.Body.String())
}

func TestPlaceOrderAndTrack(t *testing.T) {
	env := newTestEnv(t)

	body := placeOrderBody()
	body["total_amount"] = 25.5
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/", strings.NewReader(mustJSON(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "attempt-1")
	w := env.do(req, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	tx := decode[domain.Transaction](t, w)
	assert.Equal(t, domain.OrderStatusPending, tx.Status)
	assert.Equal(t, "25.50", tx.TotalAmount.String())
	assert.Len(t, tx.TrackingNumber, 36)

	req = httptest.NewRequest(http.MethodPost, "/api/transactions/", strings.NewReader(mustJSON(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "attempt-1")
	w = env.do(req, false)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.json(http.MethodGet, "/api/track-order/?tracking_number="+tx.TrackingNumber, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tx.ID, decode[domain.Transaction](t, w).ID)

	w = env.json(http.MethodGet, "/api/track-order/?tracking_number=nope", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid tracking number"}`, w.Body.String())

	missing := placeOrderBody()
	delete(missing, "email")
	w = env.json(http.MethodPost, "/api/transactions/", missing, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadPaymentProof(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(http.MethodPost, "/api/transactions/", placeOrderBody(), false)
	require.Equal(t, http.StatusCreated, w.Code)
	tx := decode[domain.Transaction](t, w)

	req := multipartRequest(t, http.MethodPost, "/api/upload-payment-proof/",
		map[string]string{"tracking_number": tx.TrackingNumber}, formFile{"payment_proof", "proof.exe", "x"})
	w = env.do(req, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = multipartRequest(t, http.MethodPost, "/api/upload-payment-proof/",
		map[string]string{"tracking_number": tx.TrackingNumber}, formFile{"payment_proof", "proof.pdf", "%PDF"})
	w = env.do(req, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"Payment proof uploaded successfully"}`, w.Body.String())

	got, err := env.orders.TrackOrder(context.Background(), tx.TrackingNumber)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaymentUploaded, got.Status)
	require.NotNil(t, got.PaymentProof)

	req = multipartRequest(t, http.MethodPost, "/api/upload-payment-proof/",
		map[string]string{"tracking_number": "unknown"}, formFile{"payment_proof", "proof.pdf", "%PDF"})
	w = env.do(req, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionsAdmin(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"Ada", "Bob", "Cy"} {
		body := placeOrderBody()
		body["name"] = name
		require.Equal(t, http.StatusCreated, env.json(http.MethodPost, "/api/transactions/", body, false).Code)
	}

	w := env.json(http.MethodPatch, "/api/transactions/2/", map[string]string{"status": "shipped"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.OrderStatusShipped, decode[domain.Transaction](t, w).Status)

	w = env.json(http.MethodPatch, "/api/transactions/2/", map[string]string{"status": "lost"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.json(http.MethodPatch, "/api/transactions/99/", map[string]string{"status": "shipped"}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.json(http.MethodGet, "/api/transactions/?status=shipped", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	txs := decode[[]domain.Transaction](t, w)
	require.Len(t, txs, 1)
	assert.Equal(t, "Bob", txs[0].Name)

	w = env.json(http.MethodGet, "/api/transactions/?search=CY&status=all", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Transaction](t, w), 1)

	w = env.json(http.MethodGet, "/api/transactions/1/", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", decode[domain.Transaction](t, w).Name)
}

func TestVerifyAdmin(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(http.MethodPost, "/api/verify-admin/", map[string]string{"token": env.token}, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())

	old := domain.AdminToken{Token: "old", CreatedAt: time.Now().Add(-8 * 24 * time.Hour)}
	require.NoError(t, env.store.CreateAdminToken(context.Background(), old))
	w = env.json(http.MethodPost, "/api/verify-admin/", map[string]string{"token": "old"}, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":false,"message":"Token expired"}`, w.Body.String())

	w = env.json(http.MethodPost, "/api/verify-admin/", map[string]string{"token": "bogus"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"valid":false,"message":"Invalid token"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/verify-admin/", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w = env.do(req, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"valid":false,"message":"Invalid token"}`, w.Body.String())
}

func TestSiteSettings(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(http.MethodGet, "/api/site-settings/", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Equal(t, domain.DefaultSiteTitle, got["site_title"])
	assert.Equal(t, "#FF69B4", got["main_color"])
	theme := got["theme"].(map[string]any)
	assert.Equal(t, domain.Lighten("#FF69B4", 0.47), theme["lightened_shade"])

	w = env.json(http.MethodPatch, "/api/site-settings/1/", map[string]string{"main_color": "#112233"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = decode[map[string]any](t, w)
	assert.Equal(t, "#112233", got["main_color"])
	assert.Equal(t, domain.DefaultContactEmail, got["contact_email"])

	w = env.json(http.MethodPut, "/api/site-settings/42/", map[string]string{"main_color": "pink"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.json(http.MethodPatch, "/api/site-settings/1/", map[string]string{"site_title": "x"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBankDetails(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(http.MethodGet, "/api/bank-details/", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	details := map[string]string{"bank_name": "Bank", "account_name": "Shop", "account_number": "123"}
	w = env.json(http.MethodPost, "/api/bank-details/", details, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	details["account_number"] = "456"
	w = env.json(http.MethodPut, "/api/bank-details/1/", details, true)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.json(http.MethodGet, "/api/bank-details/", nil, false)
	list := decode[[]domain.BankDetails](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "456", list[0].AccountNumber)

	w = env.json(http.MethodPost, "/api/bank-details/", map[string]string{"bank_name": "x"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExports(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducts(t, 2)
	require.Equal(t, http.StatusCreated, env.json(http.MethodPost, "/api/transactions/", placeOrderBody(), false).Code)

	w := env.json(http.MethodGet, "/api/products/export/", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	sheet := file.Sheets[0]
	assert.Equal(t, "Products", sheet.Name)
	assert.Equal(t, 3, sheet.MaxRow)
	assert.Equal(t, "1.50", sheet.Rows[1].Cells[4].String())

	w = env.json(http.MethodGet, "/api/transactions/export/", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	file, err = xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	sheet = file.Sheets[0]
	assert.Equal(t, 2, sheet.MaxRow)
	assert.Equal(t, "Pending", sheet.Rows[1].Cells[8].String())

	w = env.json(http.MethodGet, "/api/products/export/", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
