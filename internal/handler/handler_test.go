package handler

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/taskify_api/internal/alert"
	"github.com/GTDGit/taskify_api/internal/cache"
	"github.com/GTDGit/taskify_api/internal/middleware"
	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/repository"
	"github.com/GTDGit/taskify_api/internal/repository/mocks"
	"github.com/GTDGit/taskify_api/internal/service"
	"github.com/GTDGit/taskify_api/internal/sse"
	"github.com/GTDGit/taskify_api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memSnapshots struct {
	mu       sync.Mutex
	products []models.Product
	ok       bool
}

func (m *memSnapshots) Get(context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ok {
		return nil, cache.ErrMiss
	}
	return m.products, nil
}

func (m *memSnapshots) Set(_ context.Context, p []models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products, m.ok = p, true
	return nil
}

func (m *memSnapshots) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ok = false
	return nil
}

type memDrafts struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (d *memDrafts) Save(_ context.Context, draft *cache.Draft) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	d.m[draft.Owner+"/"+draft.ID] = b
	return nil
}

func (d *memDrafts) Get(_ context.Context, owner, id string) (*cache.Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.m[owner+"/"+id]
	if !ok {
		return nil, cache.ErrMiss
	}
	var draft cache.Draft
	return &draft, json.Unmarshal(b, &draft)
}

func (d *memDrafts) Delete(_ context.Context, owner, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.m, owner+"/"+id)
	return nil
}

type testEnv struct {
	router    *gin.Engine
	products  *mocks.MockProductStore
	customers *mocks.MockCustomerStore
	sales     *mocks.MockSaleStore
	admins    *mocks.MockAdminUserStore
	registry  *alert.Registry
	hub       *sse.Hub
	jwtm      *utils.JWTManager
	token     string
	dbErr     error
}

var catalog = []models.Product{
	{ID: 1, Name: "Knee Brace", ModelNumber: "KB-1", Description: "Hinged", Category: models.CategoryJoint,
		SellingPrice: decimal.NewFromInt(100), StockQuantity: 2, LowStockThreshold: 5},
	{ID: 2, Name: "Wrist Splint", ModelNumber: "WS-1", Description: "Rigid", Category: models.CategoryLimb,
		SellingPrice: decimal.NewFromInt(50), StockQuantity: 10, LowStockThreshold: 5},
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		products:  new(mocks.MockProductStore),
		customers: new(mocks.MockCustomerStore),
		sales:     new(mocks.MockSaleStore),
		admins:    new(mocks.MockAdminUserStore),
		hub:       sse.NewHub(),
	}
	env.registry = alert.NewRegistry(alert.Options{Publisher: sse.NewHubNotifier(env.hub)})
	t.Cleanup(env.registry.Close)

	for i := range catalog {
		p := catalog[i]
		env.products.On("GetByID", mock.Anything, p.ID).Return(&p, nil).Maybe()
	}
	env.products.On("GetByID", mock.Anything, mock.Anything).Return(nil, sql.ErrNoRows).Maybe()
	env.products.On("GetAll", mock.Anything).Return(catalog, nil).Maybe()

	jwtm := utils.NewJWTManager("secret", time.Hour)
	token, err := jwtm.GenerateJWT(5, "admin@taskify.test", "admin")
	require.NoError(t, err)
	env.jwtm, env.token = jwtm, token

	limiter := middleware.NewInvalidAuthRateLimiter(2, time.Minute)
	productSvc := service.NewProductService(env.products, &memSnapshots{}, env.registry)
	saleSvc := service.NewSaleService(env.sales, env.products, env.customers, productSvc)
	draftSvc, err := service.NewDraftService(&memDrafts{m: map[string][]byte{}}, env.products, saleSvc, 18)
	require.NoError(t, err)
	alertSvc := service.NewAlertService(env.registry, productSvc)

	h := &Handlers{
		Health: NewHealthHandler(
			PingFunc(func(context.Context) error { return env.dbErr }),
			PingFunc(func(context.Context) error { return nil }),
		),
		Auth:     NewAuthHandler(service.NewAdminAuthService(env.admins, jwtm), limiter),
		Product:  NewProductHandler(productSvc),
		Customer: NewCustomerHandler(service.NewCustomerService(env.customers)),
		Sale:     NewSaleHandler(saleSvc),
		Draft:    NewDraftHandler(draftSvc),
		Alert:    NewAlertHandler(alertSvc),
		SSE:      NewSSEHandler(env.hub, alertSvc),
		User:     NewUserHandler(service.NewUserService(env.admins)),
	}

	env.router = gin.New()
	env.router.Use(middleware.LoggingMiddleware())
	RegisterRoutes(env.router, h, middleware.NewJWTMiddleware(jwtm, limiter))
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
	Meta struct {
		RequestID  string            `json:"requestId"`
		Pagination *utils.Pagination `json:"pagination"`
	} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}

func TestProducts_ListPaged(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("GetAllPaged", mock.Anything, repository.ProductFilter{Search: "brace", Page: 2, Limit: 100}).
		Return(catalog[:1], 101, nil).Once()

	w := env.do(http.MethodGet, "/v1/products?search=brace&page=2&limit=500", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.True(t, body.Success)
	require.NotNil(t, body.Meta.Pagination)
	assert.Equal(t, 2, body.Meta.Pagination.TotalPages)
	assert.Len(t, body.Meta.RequestID, 8)
}

func TestProducts_GetNotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/v1/products/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorCode(t, w))
}

func TestProducts_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/v1/products", `{"name":"Brace","modelNumber":"B-1","description":"x","category":"Limb","sellingPrice":"0"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = env.do(http.MethodPost, "/v1/products", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))
}

func TestProducts_UpdateRaisesAlert(t *testing.T) {
	env := newTestEnv(t)

	// Open a session holding the KB-1 low stock alert.
	w := env.do(http.MethodGet, "/v1/alerts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var alerts []alert.Alert
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, 1, alerts[0].ProductID)

	env.products.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == 1 && p.StockQuantity == 50
	})).Return(nil).Once()

	w = env.do(http.MethodPut, "/v1/products/1", `{"stockQuantity":50}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/v1/alerts", "")
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.KindReplenished, alerts[0].Kind)
}

func TestSales_CreateRejectsMismatches(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/v1/sales", `{"items":[{"productId":1,"quantity":1,"unitPrice":"90"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "PRICE_MISMATCH", errorCode(t, w))

	w = env.do(http.MethodPost, "/v1/sales", `{"items":[{"productId":1,"quantity":1}],"taxPercent":18,"totals":{"subtotal":100,"discountAmount":0,"taxAmount":0,"total":100}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "TOTALS_MISMATCH", errorCode(t, w))

	w = env.do(http.MethodPost, "/v1/sales", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_ITEMS", errorCode(t, w))

	w = env.do(http.MethodPost, "/v1/sales", `{"items":[{"productId":9,"quantity":1}]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorCode(t, w))

	env.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSales_Create(t *testing.T) {
	env := newTestEnv(t)
	env.sales.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	w := env.do(http.MethodPost, "/v1/sales", `{"items":[{"productId":1,"quantity":2,"unitPrice":100},{"productId":2,"quantity":1}],
		"discountPercent":10,"taxPercent":18,"totals":{"subtotal":250,"discountAmount":25,"taxAmount":40.5,"total":265.5}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sale models.Sale
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &sale))
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("265.5")))
	require.NotNil(t, sale.CreatedBy)
	assert.Equal(t, 5, *sale.CreatedBy)
}

func TestDrafts_Flow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/v1/sales/drafts", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var draft struct {
		ID     string `json:"id"`
		Totals struct {
			Total decimal.Decimal `json:"total"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &draft))
	base := "/v1/sales/drafts/" + draft.ID

	w = env.do(http.MethodPost, base+"/items", `{"productId":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodPut, base+"/items/0", `{"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodPut, base+"/rates", `{"discountPercent":0,"taxPercent":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &draft))
	assert.True(t, draft.Totals.Total.Equal(decimal.NewFromInt(100)))

	w = env.do(http.MethodDelete, base+"/items/3", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ITEM_NOT_FOUND", errorCode(t, w))

	env.sales.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	w = env.do(http.MethodPost, base+"/submit", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "DRAFT_NOT_FOUND", errorCode(t, w))
}

func TestAlerts_Dismiss(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodDelete, "/v1/alerts/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ALERT_NOT_FOUND", errorCode(t, w))

	w = env.do(http.MethodPost, "/v1/alerts/reconcile", "")
	require.Equal(t, http.StatusOK, w.Code)
	var low []models.Product
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &low))
	require.Len(t, low, 1)

	w = env.do(http.MethodDelete, "/v1/alerts/product/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"dismissed":1}`, string(decode(t, w).Data))
}

func TestAlerts_DismissAllBeforeFirstList(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodDelete, "/v1/alerts", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/v1/alerts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var alerts []alert.Alert
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, 1, alerts[0].ProductID)
}

func TestUsers_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	env.admins.On("GetAllPaged", mock.Anything, repository.UserFilter{Role: models.RoleStaff, Page: 1, Limit: 20}).
		Return([]models.AdminUser{{ID: 7, Email: "staff@taskify.test", Name: "Staff", Role: models.RoleStaff, IsActive: true}}, 1, nil).Once()

	w := env.do(http.MethodGet, "/v1/users?role=staff", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	staffToken, err := env.jwtm.GenerateJWT(7, "staff@taskify.test", "staff")
	require.NoError(t, err)
	env.token = staffToken
	w = env.do(http.MethodGet, "/v1/users", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))
}

func TestUsers_CreateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	env.admins.On("Create", mock.Anything, mock.MatchedBy(func(u *models.AdminUser) bool {
		return u.Email == "new@taskify.test" && u.Role == models.RoleStaff && u.PasswordHash != ""
	})).Return(nil).Once()

	w := env.do(http.MethodPost, "/v1/users", `{"name":"New","email":"New@Taskify.test","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"role":"staff"`)

	w = env.do(http.MethodPost, "/v1/users", `{"name":"New","email":"not-an-email","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	env.admins.On("Create", mock.Anything, mock.Anything).Return(utils.ErrEmailTaken).Once()
	w = env.do(http.MethodPost, "/v1/users", `{"name":"Dup","email":"admin@taskify.test","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_TAKEN", errorCode(t, w))

	w = env.do(http.MethodDelete, "/v1/users/5", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "callers cannot delete themselves")

	env.admins.On("GetByID", mock.Anything, 9).Return(nil, sql.ErrNoRows).Once()
	w = env.do(http.MethodDelete, "/v1/users/9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(t, w))
}

func TestAuth_LoginAndRateLimit(t *testing.T) {
	env := newTestEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	env.admins.On("GetByEmail", mock.Anything, "admin@taskify.test").Return(&models.AdminUser{
		ID: 5, Email: "admin@taskify.test", PasswordHash: string(hash), IsActive: true,
	}, nil)

	w := env.do(http.MethodPost, "/v1/auth/login", `{"email":"admin@taskify.test","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)

	codes := []int{}
	for i := 0; i < 3; i++ {
		w = env.do(http.MethodPost, "/v1/auth/login", `{"email":"admin@taskify.test","password":"wrong"}`)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{401, 401, 429}, codes)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	env.dbErr = errors.New("connection refused")
	w = env.do(http.MethodGet, "/v1/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)
}

func TestRoutes_RequireAuth(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSSE_StreamsSessionEvents(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/alerts/stream?token="+env.token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	waitFor := func(prefix string) string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, prefix) {
				return line
			}
		}
	}

	waitFor("event:connected")

	rec, _ := env.registry.For("5")
	rec.Add(alert.Alert{Title: "Stock count"})

	waitFor("event:alert")
	data := waitFor("data:")
	assert.Contains(t, data, "alert.raised")
	assert.Contains(t, data, "Stock count")
}
