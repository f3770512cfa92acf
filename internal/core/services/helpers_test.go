package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"replate-api/internal/adapters/mail"
	"replate-api/internal/adapters/persistence/models"
	"replate-api/internal/adapters/persistence/repositories"
	"replate-api/internal/adapters/storage"
	"replate-api/internal/config"
	"replate-api/internal/core/domain"
	"replate-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeMailer records messages and fails while err is set
type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *fakeMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

func (m *fakeMailer) last(t *testing.T) mail.Message {
	t.Helper()
	msgs := m.messages()
	require.NotEmpty(t, msgs, "no email sent")
	return msgs[len(msgs)-1]
}

var tokenInLink = regexp.MustCompile(`token=([A-Za-z0-9_\-\.]+)`)

// lastToken extracts the token from the most recent email link
func (m *fakeMailer) lastToken(t *testing.T) string {
	t.Helper()
	match := tokenInLink.FindStringSubmatch(m.last(t).HTML)
	require.Len(t, match, 2, "no token link in email")
	return match[1]
}

// memFiles is an in-memory FileStore
type memFiles struct {
	mu      sync.Mutex
	objects map[string]storage.Object
	data    map[string][]byte
	saveErr error
}

func newMemFiles() *memFiles {
	return &memFiles{objects: map[string]storage.Object{}, data: map[string][]byte{}}
}

func (f *memFiles) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "/uploads/" + name
	f.objects[url] = storage.Object{Name: name, URL: url, ModTime: time.Now()}
	f.data[url] = b
	return url, nil
}

func (f *memFiles) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, url)
	delete(f.data, url)
	return nil
}

func (f *memFiles) List(_ context.Context) ([]storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]storage.Object, 0, len(f.objects))
	for _, o := range f.objects {
		out = append(out, o)
	}
	return out, nil
}

func (f *memFiles) put(url string, modTime time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[url] = storage.Object{Name: strings.TrimPrefix(url, "/uploads/"), URL: url, ModTime: modTime}
}

func (f *memFiles) has(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[url]
	return ok
}

func (f *memFiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// fakeGoogle maps credentials to identities
type fakeGoogle map[string]*GoogleIdentity

func (g fakeGoogle) Verify(_ context.Context, idToken string) (*GoogleIdentity, error) {
	if id, ok := g[idToken]; ok {
		return id, nil
	}
	return nil, errors.New("bad signature")
}

func testConfig() *config.Config {
	return &config.Config{
		AppMode:     "dev",
		FrontendURL: "http://localhost:5173",
		JWT: config.JWTConfig{
			Secret:       "test-secret",
			SessionDays:  7,
			VerifyHours:  24,
			ResetMinutes: 60,
		},
		Password: config.PasswordConfig{MinLength: 8},
	}
}

// env wires every service over a private in-memory database
type env struct {
	db         *gorm.DB
	cfg        *config.Config
	mailer     *fakeMailer
	files      *memFiles
	users      repositories.UserRepository
	stores     repositories.StoreRepository
	products   repositories.ProductRepository
	auth       *AuthService
	onboarding *OnboardingService
	admin      *AdminService
	product    *ProductService
	janitor    *UploadJanitor
}

func newEnv(t *testing.T) *env {
	return newEnvWithGoogle(t, nil)
}

func newEnvWithGoogle(t *testing.T, google GoogleVerifier) *env {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := testConfig()
	mailer := &fakeMailer{}
	files := newMemFiles()

	users := repositories.NewUserRepository(db)
	stores := repositories.NewStoreRepository(db)
	products := repositories.NewProductRepository(db)

	notifier := NewNotificationService(mailer, cfg.FrontendURL, nil)
	auth := NewAuthService(users, stores, notifier, google, cfg, nil)

	return &env{
		db:         db,
		cfg:        cfg,
		mailer:     mailer,
		files:      files,
		users:      users,
		stores:     stores,
		products:   products,
		auth:       auth,
		onboarding: NewOnboardingService(users, stores, files, auth, nil),
		admin:      NewAdminService(stores, notifier, files, nil),
		product:    NewProductService(stores, products),
		janitor:    NewUploadJanitor(stores, files, nil),
	}
}

func registerInput(role domain.Role, email string) *RegisterInput {
	return &RegisterInput{
		Name:            "Sari Bakery",
		Email:           email,
		Phone:           "081234567890",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Role:            role,
	}
}

// register creates an account and returns it with its session token
func (e *env) register(t *testing.T, role domain.Role, email string) (*models.User, string) {
	t.Helper()
	res, err := e.auth.Register(context.Background(), registerInput(role, email))
	require.NoError(t, err)
	user, err := e.users.GetByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	return user, res.Token
}

// verify redeems the most recent verification email
func (e *env) verify(t *testing.T) {
	t.Helper()
	_, err := e.auth.VerifyEmail(context.Background(), e.mailer.lastToken(t))
	require.NoError(t, err)
}

func storeInfo() *StoreInfoInput {
	lat, lng := -6.2, 106.8
	return &StoreInfoInput{
		StoreName:      "Roti Sari",
		Description:    "Fresh bread daily",
		Address:        "Jl. Sudirman 1",
		City:           "Jakarta",
		Latitude:       &lat,
		Longitude:      &lng,
		Phone:          "081234567890",
		OperatingHours: "08:00-20:00",
	}
}

// merchantWithStore runs onboarding steps 1 and 2 for a new merchant
func (e *env) merchantWithStore(t *testing.T, email string) (*models.User, *models.Store) {
	t.Helper()
	user, _ := e.register(t, domain.RoleMerchant, email)
	store, err := e.onboarding.SubmitStoreInfo(context.Background(), user.ID, storeInfo())
	require.NoError(t, err)
	return user, store
}

func imageUpload(field, filename, contentType string, size int) *Upload {
	body := bytes.Repeat([]byte{0xFF}, size)
	return &Upload{
		Field:       field,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(size),
		Reader:      bytes.NewReader(body),
	}
}

func newAdmin(t *testing.T, e *env) *models.User {
	t.Helper()
	admin := &models.User{
		Email:      fmt.Sprintf("admin%d@replate.id", time.Now().UnixNano()),
		Password:   "x",
		Name:       "Admin",
		Role:       string(domain.RoleAdmin),
		IsVerified: true,
	}
	require.NoError(t, e.users.Create(context.Background(), admin))
	return admin
}
