package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"assunnahmart/backend/internal/cache"
	"assunnahmart/backend/internal/dedup"
	"assunnahmart/backend/internal/domain"
	"assunnahmart/backend/internal/invalidation"
	"assunnahmart/backend/internal/service"
	"assunnahmart/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, cache.NewMemoryRecapCache(), invalidation.NewLocalBus(), dedup.NewGuard(2*time.Second), 30*time.Second)
	auth := NewAuthManager("test-secret-key", time.Hour, "123456", repo)

	return New(svc, auth, "*")
}

// mustHashPassword generates a bcrypt hash of the given password or fails the test.
func mustHashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["access_token"] == "" || body["access_token"] == nil {
		t.Fatalf("expected access_token in response, got %v", body)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleProducts_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleProducts_WithValidToken(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	token := loginAsAdmin(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["products"] == nil {
		t.Fatalf("expected products key in response, got %v", body)
	}
}

func TestHandleObservations_KasirCanSubmit(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	token := loginAsKasir(t, api)
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(domain.ObservationRequest{
		ProductID:  "brg-gula-1kg",
		CountedQty: 52,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock-opname/observations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp domain.ObservationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Duplicate {
		t.Fatalf("first observation must not be flagged duplicate")
	}
	if resp.Preview.RealStockTotal != 52 {
		t.Fatalf("expected preview real total 52, got %d", resp.Preview.RealStockTotal)
	}
}

func TestHandleOpnameRecap_KasirForbidden(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	token := loginAsKasir(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stock-opname/recap", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for kasir on recap, got %d", rec.Code)
	}
}

func TestHandleOpnameRecap_CSVDownload(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	token := loginAsAdmin(t, api)
	day := time.Now().UTC().Format("2006-01-02")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stock-opname/recap?date_from="+day+"&date_to="+day+"&format=csv", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv content type, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("expected attachment disposition, got %q", cd)
	}
}

func TestHandleSales_CreatesSale(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	token := loginAsKasir(t, api)
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(domain.SaleRequest{
		IdempotencyKey: "handler-sale-1",
		TerminalID:     "kasir-1",
		PaymentType:    domain.PaymentTypeCash,
		Items:          []domain.SaleLine{{ProductID: "brg-air-600ml", Qty: 2}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp domain.SaleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Duplicate {
		t.Fatalf("first sale must not be duplicate")
	}
	if resp.Sale.TotalAmount != 7000 {
		t.Fatalf("expected total 7000, got %d", resp.Sale.TotalAmount)
	}
}

func TestHandleSupplierPayments_KasirForbidden(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	token := loginAsKasir(t, api)
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(domain.PaymentRequest{
		PartyID:     "sup-sembako",
		Amount:      100000,
		PaymentDate: time.Now().UTC().Format("2006-01-02"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/supplier", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for kasir on supplier payment, got %d", rec.Code)
	}
}

func TestHandleStockCorrection_RequiresSupervisorPIN(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(domain.StockCorrectionRequest{
		SupervisorPIN: "000000",
		NewStock:      41,
		Reason:        "salah hitung",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/brg-beras-5kg/stock-correction", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong supervisor pin, got %d", rec.Code)
	}
}

func TestHandleStockCorrection_WithValidPIN(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(domain.StockCorrectionRequest{
		SupervisorPIN: "123456",
		NewStock:      42,
		Reason:        "hasil hitung ulang gudang",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/brg-beras-5kg/stock-correction", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Product domain.Product `json:"product"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Product.Stock != 42 {
		t.Fatalf("expected corrected stock 42, got %d", body.Product.Stock)
	}
}

// TestMustHashPassword verifies that the test helper produces valid bcrypt hashes
// (used to confirm test infrastructure is sound).
func TestMustHashPassword(t *testing.T) {
	hash := mustHashPassword(t, "secret")
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")); err != nil {
		t.Fatalf("hash verification failed: %v", err)
	}
}

func loginAsKasir(t *testing.T, api *API) string {
	t.Helper()

	body, _ := json.Marshal(domain.LoginRequest{Username: "kasir", Password: "kasir123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("kasir login failed, status %d", res.Code)
	}

	var payload domain.LoginResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response failed: %v", err)
	}
	return payload.AccessToken
}
