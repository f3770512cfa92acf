package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"strings"
	"sync"
	"testing"

	"replate-api/internal/adapters/http/middleware"
	"replate-api/internal/adapters/mail"
	"replate-api/internal/adapters/persistence/models"
	"replate-api/internal/adapters/storage"
	"replate-api/internal/config"
	"replate-api/internal/pkg/metrics"
	"replate-api/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@replate.id"
	adminPassword = "AdminPass1"
)

// outbox records every email the app sends
type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

var tokenInLink = regexp.MustCompile(`token=([A-Za-z0-9_\-\.]+)`)

func (o *outbox) lastToken(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent, "no email sent")
	match := tokenInLink.FindStringSubmatch(o.sent[len(o.sent)-1].HTML)
	require.Len(t, match, 2, "no token link in email")
	return match[1]
}

type testApp struct {
	app    *fiber.App
	db     *gorm.DB
	mailer *outbox
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := &config.Config{
		AppMode:     "dev",
		FrontendURL: "http://localhost:5173",
		JWT: config.JWTConfig{
			Secret:       "routes-test-secret",
			SessionDays:  7,
			VerifyHours:  24,
			ResetMinutes: 60,
		},
		Password: config.PasswordConfig{MinLength: 8},
	}
	files, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	mailer := &outbox{}
	m := metrics.New()

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	middleware.Setup(app, cfg, nil, m)
	Setup(app, Deps{
		DB:      db,
		Config:  cfg,
		Mailer:  mailer,
		Files:   files,
		Metrics: m,
	})

	_, err = config.NewSeeder(db, config.AdminConfig{Email: adminEmail, Password: adminPassword, Name: "Admin"}).SeedAdmin()
	require.NoError(t, err)

	return &testApp{app: app, db: db, mailer: mailer}
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func (a *testApp) send(t *testing.T, req *http.Request, token string) (*http.Response, *envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	env := &envelope{}
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, env), string(raw))
	}
	return resp, env
}

func (a *testApp) json(t *testing.T, method, path string, body interface{}, token string) (int, *envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, env := a.send(t, req, token)
	return resp.StatusCode, env
}

type formFile struct {
	field, filename, contentType string
	data                         []byte
}

func (a *testApp) multipart(t *testing.T, path string, fields map[string]string, files []formFile, token string) (int, *envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, env := a.send(t, req, token)
	return resp.StatusCode, env
}

func registerBody(email string) fiber.Map {
	return fiber.Map{
		"name":            "Sari",
		"email":           email,
		"phone":           "081234567890",
		"password":        "Passw0rd1",
		"confirmPassword": "Passw0rd1",
	}
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	status, env := a.json(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, status, env.Message)
	token, _ := env.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// merchant registers a merchant and submits its store information
func (a *testApp) merchant(t *testing.T, email string) (token string, storeID uint) {
	t.Helper()
	status, env := a.json(t, http.MethodPost, "/api/auth/register/store/merchant", registerBody(email), "")
	require.Equal(t, http.StatusCreated, status, env.Message)
	token = env.Data["token"].(string)

	status, env = a.json(t, http.MethodPost, "/api/auth/register/store/info", fiber.Map{
		"storeName":      "Roti Sari",
		"description":    "Fresh bread daily",
		"address":        "Jl. Sudirman 1",
		"city":           "Jakarta",
		"latitude":       -6.2,
		"longitude":      106.8,
		"phone":          "081234567890",
		"operatingHours": "08:00-20:00",
	}, token)
	require.Equal(t, http.StatusCreated, status, env.Message)
	store := env.Data["store"].(map[string]interface{})
	return token, uint(store["store_id"].(float64))
}

func TestRegisterCustomer(t *testing.T) {
	a := newTestApp(t)

	status, env := a.json(t, http.MethodPost, "/api/auth/register/user", registerBody("a@x.com"), "")
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.True(t, env.Success)
	assert.IsType(t, true, env.Data["emailSent"])
	assert.NotEmpty(t, env.Data["token"])

	var user models.User
	require.NoError(t, a.db.Where("email = ?", "a@x.com").First(&user).Error)
	assert.Equal(t, "customer", user.Role)
	assert.False(t, user.IsVerified)

	status, _ = a.json(t, http.MethodPost, "/api/auth/register/user", registerBody("A@X.com"), "")
	assert.Equal(t, http.StatusConflict, status)
}

func TestRegister_RejectsBadInput(t *testing.T) {
	a := newTestApp(t)

	body := registerBody("not-an-email")
	status, env := a.json(t, http.MethodPost, "/api/auth/register/user", body, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid email format", env.Message)

	body = registerBody("b@x.com")
	body["confirmPassword"] = "different1"
	status, _ = a.json(t, http.MethodPost, "/api/auth/register/user", body, "")
	assert.Equal(t, http.StatusBadRequest, status)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register/user", strings.NewReader("{"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, env := a.send(t, req, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", env.Message)
}

func TestLogin_RequiresVerifiedEmail(t *testing.T) {
	a := newTestApp(t)

	status, _ := a.json(t, http.MethodPost, "/api/auth/register/user", registerBody("d@x.com"), "")
	require.Equal(t, http.StatusCreated, status)

	status, _ = a.json(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": "d@x.com", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := a.json(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": "d@x.com", "password": "Passw0rd1"}, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, true, env.Data["needsVerification"])

	status, env = a.json(t, http.MethodPost, "/api/auth/verify-email", fiber.Map{"token": a.mailer.lastToken(t)}, "")
	require.Equal(t, http.StatusOK, status, env.Message)

	token := a.login(t, "d@x.com", "Passw0rd1")

	status, env = a.json(t, http.MethodGet, "/api/auth/profile", nil, token)
	require.Equal(t, http.StatusOK, status)
	user := env.Data["user"].(map[string]interface{})
	assert.Equal(t, "d@x.com", user["email"])
	assert.Equal(t, true, user["is_verified"])
	assert.NotContains(t, user, "password")
}

func TestPasswordReset(t *testing.T) {
	a := newTestApp(t)

	status, _ := a.json(t, http.MethodPost, "/api/auth/register/user", registerBody("r@x.com"), "")
	require.Equal(t, http.StatusCreated, status)
	status, _ = a.json(t, http.MethodPost, "/api/auth/verify-email", fiber.Map{"token": a.mailer.lastToken(t)}, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = a.json(t, http.MethodPost, "/api/auth/forgot-password", fiber.Map{"email": "nobody@x.com"}, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.json(t, http.MethodPost, "/api/auth/forgot-password", fiber.Map{"email": "r@x.com"}, "")
	require.Equal(t, http.StatusOK, status)
	resetToken := a.mailer.lastToken(t)

	status, _ = a.json(t, http.MethodPost, "/api/auth/reset-password", fiber.Map{
		"token": resetToken, "newPassword": "N3wPassword", "confirmPassword": "N3wPassword",
	}, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = a.json(t, http.MethodPost, "/api/auth/reset-password", fiber.Map{
		"token": resetToken, "newPassword": "Another123", "confirmPassword": "Another123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status, "a reset token is single use")

	a.login(t, "r@x.com", "N3wPassword")
}

func TestGoogleSignIn_DisabledWithoutClientID(t *testing.T) {
	a := newTestApp(t)

	status, _ := a.json(t, http.MethodPost, "/api/auth/google", fiber.Map{"credential": "id-token"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, _ = a.json(t, http.MethodPost, "/api/auth/google", fiber.Map{"credential": "id-token", "mode": "sideways"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAccessControl(t *testing.T) {
	a := newTestApp(t)

	status, env := a.json(t, http.MethodPost, "/api/auth/register/user", registerBody("c@x.com"), "")
	require.Equal(t, http.StatusCreated, status)
	customerToken := env.Data["token"].(string)
	verifyToken := a.mailer.lastToken(t)
	merchantToken, _ := a.merchant(t, "m@x.com")

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no token", "/api/merchant/store", "", http.StatusUnauthorized},
		{"not bearer", "/api/merchant/store", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "/api/merchant/store", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"verification token as session", "/api/auth/profile", "Bearer " + verifyToken, http.StatusUnauthorized},
		{"customer on merchant route", "/api/merchant/store", "Bearer " + customerToken, http.StatusForbidden},
		{"customer on admin route", "/api/admin/stats", "Bearer " + customerToken, http.StatusForbidden},
		{"merchant on admin route", "/api/admin/stores/pending", "Bearer " + merchantToken, http.StatusForbidden},
		{"merchant on own store", "/api/merchant/store", "Bearer " + merchantToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, _ := a.send(t, req, "")
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	status, _ = a.json(t, http.MethodPost, "/api/auth/register/store/info", fiber.Map{
		"storeName":      "Not Mine",
		"address":        "Jl. Thamrin 2",
		"city":           "Jakarta",
		"latitude":       -6.1,
		"longitude":      106.7,
		"phone":          "081234567890",
		"operatingHours": "09:00-17:00",
	}, customerToken)
	assert.Equal(t, http.StatusForbidden, status, "customers cannot open a store")
}

func TestOnboardingAndRejection(t *testing.T) {
	a := newTestApp(t)
	merchantToken, storeID := a.merchant(t, "m@x.com")

	png := []byte("\x89PNG\r\n\x1a\nfake")
	status, env := a.multipart(t, "/api/auth/register/store/verification",
		map[string]string{"bankAccountNumber": "1234567890123"},
		[]formFile{{field: "qrisImage", filename: "qris.png", contentType: "image/png", data: png}},
		merchantToken)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, true, env.Data["needsVerification"])
	store := env.Data["store"].(map[string]interface{})
	qrisURL, _ := store["qris_image_url"].(string)
	require.True(t, strings.HasPrefix(qrisURL, "/uploads/qrisImage-"), qrisURL)
	assert.Nil(t, store["id_card_image_url"])

	resp, _ := a.send(t, httptest.NewRequest(http.MethodGet, qrisURL, nil), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderCacheControl), "public")

	status, _ = a.multipart(t, "/api/auth/register/store/verification",
		map[string]string{"bankAccountNumber": "1"},
		[]formFile{{field: "idCardImage", filename: "id.pdf", contentType: "application/pdf", data: []byte("%PDF")}},
		merchantToken)
	assert.Equal(t, http.StatusBadRequest, status)

	adminToken := a.login(t, adminEmail, adminPassword)

	status, env = a.json(t, http.MethodGet, "/api/admin/stores/pending", nil, adminToken)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, env.Data["count"])
	pending := env.Data["stores"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "1234567890123", pending["bank_account_number"])
	assert.Equal(t, "m@x.com", pending["merchant_email"])

	path := fmt.Sprintf("/api/admin/stores/%d/reject", storeID)
	status, _ = a.json(t, http.MethodPatch, path, fiber.Map{"adminNotes": "Too short"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, status)

	var stores int64
	a.db.Model(&models.Store{}).Count(&stores)
	assert.EqualValues(t, 1, stores)

	status, env = a.json(t, http.MethodPatch, path, fiber.Map{"adminNotes": "Documents illegible"}, adminToken)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.EqualValues(t, storeID, env.Data["deletedStoreId"])
	assert.Equal(t, "m@x.com", env.Data["merchantEmail"])

	a.db.Model(&models.Store{}).Count(&stores)
	assert.Zero(t, stores)
	var merchants int64
	a.db.Model(&models.User{}).Where("email = ?", "m@x.com").Count(&merchants)
	assert.Zero(t, merchants)

	resp, _ = a.send(t, httptest.NewRequest(http.MethodGet, qrisURL, nil), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	status, _ = a.json(t, http.MethodPatch, path, fiber.Map{"adminNotes": "Documents illegible"}, adminToken)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestApproveStore(t *testing.T) {
	a := newTestApp(t)
	merchantToken, storeID := a.merchant(t, "m@x.com")
	adminToken := a.login(t, adminEmail, adminPassword)
	sentBefore := a.mailer.count()

	path := fmt.Sprintf("/api/admin/stores/%d/approve", storeID)
	status, env := a.json(t, http.MethodPatch, path, nil, adminToken)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, true, env.Data["emailSent"])
	assert.Equal(t, sentBefore+1, a.mailer.count())

	status, _ = a.json(t, http.MethodPatch, path, nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.json(t, http.MethodPatch, "/api/admin/stores/999/approve", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = a.json(t, http.MethodPatch, "/api/admin/stores/abc/approve", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = a.json(t, http.MethodGet, "/api/merchant/store", nil, merchantToken)
	require.Equal(t, http.StatusOK, status)
	store := env.Data["store"].(map[string]interface{})
	assert.Equal(t, "approved", store["approval_status"])
	assert.Equal(t, true, store["is_active"])

	status, env = a.json(t, http.MethodGet, "/api/admin/stores?status=approved", nil, adminToken)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, env.Data["count"])

	status, _ = a.json(t, http.MethodGet, "/api/admin/stores?status=archived", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = a.json(t, http.MethodGet, "/api/admin/stats", nil, adminToken)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, env.Data["approved_stores"])
}

func TestMerchantProducts(t *testing.T) {
	a := newTestApp(t)
	token, _ := a.merchant(t, "m@x.com")

	status, env := a.json(t, http.MethodPost, "/api/merchant/products", fiber.Map{
		"name": "Croissant", "original_price": 20000, "discounted_price": 10000, "stock": 5,
	}, token)
	require.Equal(t, http.StatusCreated, status, env.Message)
	product := env.Data["product"].(map[string]interface{})
	id := uint(product["product_id"].(float64))
	productPath := fmt.Sprintf("/api/merchant/products/%d", id)

	status, _ = a.json(t, http.MethodPost, "/api/merchant/products", fiber.Map{
		"name": "Bagel", "original_price": 10000, "discounted_price": 15000, "stock": 1,
	}, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = a.json(t, http.MethodPatch, productPath, fiber.Map{"stock": 2}, token)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.EqualValues(t, 2, env.Data["product"].(map[string]interface{})["stock"])

	status, _ = a.json(t, http.MethodPatch, productPath, fiber.Map{}, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = a.json(t, http.MethodPatch, productPath+"/toggle", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, env.Data["product"].(map[string]interface{})["is_active"])

	// the template ships with one example row
	resp, err := a.app.Test(withToken(httptest.NewRequest(http.MethodGet, "/api/merchant/products/import/template", nil), token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	workbook, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	status, env = a.multipart(t, "/api/merchant/products/import", nil,
		[]formFile{{field: "file", filename: "products.xlsx", contentType: "application/octet-stream", data: workbook}}, token)
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.EqualValues(t, 1, env.Data["imported"])

	status, _ = a.multipart(t, "/api/merchant/products/import", nil,
		[]formFile{{field: "file", filename: "products.csv", contentType: "text/csv", data: []byte("a,b")}}, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = a.json(t, http.MethodGet, "/api/merchant/products?page=1&limit=1", nil, token)
	require.Equal(t, http.StatusOK, status)
	meta := env.Data["meta"].(map[string]interface{})
	assert.EqualValues(t, 2, meta["total"])
	assert.Equal(t, true, meta["has_next"])
	assert.Len(t, env.Data["data"], 1)

	status, _ = a.json(t, http.MethodDelete, productPath, nil, token)
	require.Equal(t, http.StatusOK, status)
	status, _ = a.json(t, http.MethodGet, productPath, nil, token)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.json(t, http.MethodGet, "/api/merchant/store/stats", nil, token)
	assert.Equal(t, http.StatusOK, status)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestApp(t)

	status, _ := a.json(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = a.json(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = a.json(t, http.MethodGet, "/api", nil, "")
	assert.Equal(t, http.StatusOK, status)

	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "replate_http_requests_total")
}

func withToken(req *http.Request, token string) *http.Request {
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}
