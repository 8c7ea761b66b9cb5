package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"workeradmin/internal/config"
	"workeradmin/internal/handlers"
	"workeradmin/internal/middleware"
	"workeradmin/internal/models"
	"workeradmin/internal/pdf"
	"workeradmin/internal/repositories"
	"workeradmin/internal/routes"
	"workeradmin/internal/services"
	"workeradmin/internal/session"
	"workeradmin/internal/utils"
	"workeradmin/web"
)

const testPassword = "Secret123"

// memWorkers is an in-memory WorkerRepository keyed by usuario.
type memWorkers struct {
	mu     sync.Mutex
	rows   map[string]*models.Worker
	nextID int
}

func newMemWorkers() *memWorkers {
	return &memWorkers{rows: map[string]*models.Worker{}, nextID: 1}
}

func (m *memWorkers) add(w models.Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w.ID = m.nextID
	m.nextID++
	m.rows[w.Usuario] = &w
}

func (m *memWorkers) get(usuario string) (models.Worker, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.rows[usuario]
	if !ok {
		return models.Worker{}, false
	}
	return *w, true
}

func (m *memWorkers) FindByHandleWithAccess(_ context.Context, usuario string) (*models.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.rows[usuario]
	if !ok || !w.Permiso {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (m *memWorkers) Create(_ context.Context, w *models.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[w.Usuario]; ok {
		return repositories.ErrDuplicateUsuario
	}
	for _, r := range m.rows {
		if r.Email == w.Email {
			return repositories.ErrDuplicateEmail
		}
	}
	w.ID = m.nextID
	m.nextID++
	cp := *w
	m.rows[w.Usuario] = &cp
	return nil
}

func (m *memWorkers) byID(id int) *models.Worker {
	for _, w := range m.rows {
		if w.ID == id {
			return w
		}
	}
	return nil
}

func (m *memWorkers) UpdateAccess(_ context.Context, id int, enabled bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.byID(id)
	if w == nil {
		return false, nil
	}
	w.Permiso = enabled
	return true, nil
}

func (m *memWorkers) UpdateAdmin(_ context.Context, id int, admin bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.byID(id)
	if w == nil {
		return false, nil
	}
	w.Administrador = admin
	return true, nil
}

func (m *memWorkers) Filter(_ context.Context, nombre, apellido string) ([]*models.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Worker
	for _, w := range m.rows {
		if strings.Contains(strings.ToLower(w.Nombre), strings.ToLower(nombre)) &&
			strings.Contains(strings.ToLower(w.Apellido), strings.ToLower(apellido)) {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memWorkers) DeleteByUsuario(_ context.Context, usuario string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[usuario]; !ok {
		return false, nil
	}
	delete(m.rows, usuario)
	return true, nil
}

func (m *memWorkers) UpdateVisibility(_ context.Context, usuario string, visible bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.rows[usuario]
	if !ok {
		return false, nil
	}
	w.UsuarioVisible = visible
	return true, nil
}

func (m *memWorkers) UpdateProfile(_ context.Context, current string, w *models.Worker) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[current]; !ok {
		return false, nil
	}
	delete(m.rows, current)
	cp := *w
	m.rows[w.Usuario] = &cp
	return true, nil
}

// fixedCodes always issues the same code.
type fixedCodes struct {
	code   string
	err    error
	sentTo []string
}

func (f *fixedCodes) IssueCode(_ context.Context, email string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sentTo = append(f.sentTo, email)
	return f.code, nil
}

type captureMail struct {
	mu     sync.Mutex
	bodies []string
	err    error
}

func (m *captureMail) Send(_ context.Context, _, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.bodies = append(m.bodies, body)
	return nil
}

type stubCustomers struct {
	rows    []models.Customer
	err     error
	lastKey string
}

func (s *stubCustomers) FindBySurname(_ context.Context, _, key string) ([]models.Customer, error) {
	s.lastKey = key
	return s.rows, s.err
}

type stubReports struct{ err error }

func (s stubReports) AgesOfExited(context.Context) ([]models.AgeRow, error) {
	return []models.AgeRow{{Age: 40}}, s.err
}
func (s stubReports) CardTypes(context.Context) ([]models.CardTypeCount, error) {
	return []models.CardTypeCount{{CardType: "GOLD", Cantidad: 2}}, s.err
}
func (s stubReports) CountByGeography(context.Context, bool) ([]models.GeographyCount, error) {
	return []models.GeographyCount{{Geography: "Spain", Cantidad: 1}}, s.err
}
func (s stubReports) Count(context.Context, repositories.CustomerCount) (int, error) { return 5, s.err }
func (s stubReports) Average(context.Context, string) (float64, error)             { return 10.5, s.err }

type env struct {
	router    *gin.Engine
	workers   *memWorkers
	codes     *fixedCodes
	mail      *captureMail
	customers *stubCustomers
	reports   *stubReports
	svc       services.WorkerService
	pingErr   error
	now       time.Time
	ttl       time.Duration
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handlers.RegisterValidators()

	codec, err := utils.NewCodec("aes-secret")
	require.NoError(t, err)
	auth := services.NewAuthService(bcrypt.MinCost)
	digest, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	e := &env{
		workers:   newMemWorkers(),
		codes:     &fixedCodes{code: "4321"},
		mail:      &captureMail{},
		customers: &stubCustomers{},
		reports:   &stubReports{},
		now:       time.Now().Truncate(time.Second),
		ttl:       time.Hour,
	}
	e.workers.add(models.Worker{Nombre: "Alice", Apellido: "Admin", Email: "alice@example.com", Usuario: "aliceadmin", Clave: digest, Permiso: true, Administrador: true, UsuarioVisible: true})
	e.workers.add(models.Worker{Nombre: "Bob", Apellido: "Worker", Email: "bob@example.com", Usuario: "bobworker", Clave: digest, Permiso: true})
	e.workers.add(models.Worker{Nombre: "Carol", Apellido: "Off", Email: "carol@example.com", Usuario: "caroldisabled", Clave: digest})

	tokens := services.NewTokenService([]byte("jwt-secret"), e.ttl, services.WithClock(func() time.Time { return e.now }))
	emails := services.NewEmailService(e.mail)
	e.svc = services.NewWorkerService(e.workers, auth, emails, codec, "https://admin.example.com")

	backend, err := session.NewBackend(config.SessionConfig{Backend: "memory", MaxAge: 3600}, config.RedisConfig{}, []byte("session-secret"), false)
	require.NoError(t, err)
	store := session.New()
	gate := middleware.NewGate(tokens, e.workers, codec, store)

	tmpl, err := web.Templates()
	require.NoError(t, err)
	r := gin.New()
	r.Use(session.Middleware("sid", backend))
	r.SetHTMLTemplate(tmpl)

	routes.SetupRoutes(r, gate,
		handlers.NewAuthHandler(e.svc, e.codes, tokens, codec, store, gate),
		handlers.NewWorkerHandler(e.svc, tokens, gate, store, pdf.NewProfileGenerator("")),
		handlers.NewCustomerHandler(services.NewCustomerService(e.customers)),
		handlers.NewReportHandler(services.NewReportService(e.reports, nil)),
		func(context.Context) error { return e.pingErr },
	)
	e.router = r
	return e
}

// client keeps cookies between requests the way a browser would.
type client struct {
	t   *testing.T
	h   http.Handler
	jar map[string]*http.Cookie
}

func (e *env) client(t *testing.T) *client {
	return &client{t: t, h: e.router, jar: map[string]*http.Cookie{}}
}

func (c *client) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range c.jar {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.jar, ck.Name)
			continue
		}
		c.jar[ck.Name] = ck
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, path, nil, "")
}

func (c *client) postForm(path string, vals url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, path, strings.NewReader(vals.Encode()), "application/x-www-form-urlencoded")
}

func (c *client) postJSON(path string, v any) *httptest.ResponseRecorder {
	b, err := json.Marshal(v)
	require.NoError(c.t, err)
	return c.do(http.MethodPost, path, bytes.NewReader(b), "application/json")
}

func (c *client) cookie(name string) *http.Cookie { return c.jar[name] }

// login runs both steps and fails the test if no auth cookie comes back.
func (c *client) login(usuario string) {
	c.t.Helper()
	w := c.postForm("/login", url.Values{"usuario": {usuario}, "clave": {testPassword}})
	require.Equal(c.t, http.StatusOK, w.Code, w.Header().Get("Location"))
	w = c.postForm("/login/verify", url.Values{"codigo_mfa": {"4321"}})
	require.Equal(c.t, "/dashboard", w.Header().Get("Location"))
	require.NotNil(c.t, c.cookie(middleware.CookieName))
}

// redirectQuery splits a Location header into path and one query value.
func redirectQuery(t *testing.T, w *httptest.ResponseRecorder, key string) (string, string) {
	t.Helper()
	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	return u.Path, u.Query().Get(key)
}

var errBoom = errors.New("boom")
