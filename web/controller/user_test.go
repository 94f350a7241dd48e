package controller

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/usuarios-app/usuarios/database"
	"github.com/usuarios-app/usuarios/logger"
	"github.com/usuarios-app/usuarios/web/service"
	"github.com/usuarios-app/usuarios/web/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	os.Setenv("USUARIOS_LOG_FOLDER", os.TempDir())
	logger.InitLogger(logging.DEBUG)
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type msg struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Obj     json.RawMessage `json:"obj"`
}

// mailCapture records the last payload the mail API received.
type mailCapture struct {
	srv  *httptest.Server
	body string
}

func newMailCapture() *mailCapture {
	m := &mailCapture{}
	m.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf strings.Builder
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if html, ok := payload["htmlContent"].(string); ok {
			buf.WriteString(html)
		}
		m.body = buf.String()
		w.WriteHeader(http.StatusCreated)
	}))
	return m
}

// lastCode pulls the verification code out of the captured email body.
func (m *mailCapture) lastCode(t *testing.T) string {
	t.Helper()
	re := regexp.MustCompile(`<strong>([A-Z0-9]{6})</strong>`)
	match := re.FindStringSubmatch(m.body)
	if len(match) != 2 {
		t.Fatalf("no verification code in email body %q", m.body)
	}
	return match[1]
}

func newTestRouter(t *testing.T, mailURL string) *gin.Engine {
	t.Helper()

	dbPath := "controller_test.db"
	os.Remove(dbPath)
	if err := database.InitDB(dbPath); err != nil {
		t.Fatalf("init test db: %v", err)
	}
	t.Cleanup(func() {
		db, _ := database.GetDB().DB()
		db.Close()
		os.Remove(dbPath)
	})

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", "/")
	})
	store := cookie.NewStore([]byte("test-secret"))
	engine.Use(sessions.Sessions(session.CookieName, store))

	mailService := service.NewMailService(mailURL, "test-key", "noreply@x.com", "Usuarios", true)

	g := engine.Group("/")
	NewIndexController(g)
	NewUserController(g, mailService)
	return engine
}

func postForm(t *testing.T, client *http.Client, baseURL, path string, values url.Values) msg {
	t.Helper()
	resp, err := client.PostForm(baseURL+path, values)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var m msg
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return m
}

func getJSON(t *testing.T, client *http.Client, baseURL, path string) (int, msg) {
	t.Helper()
	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	var m msg
	_ = json.NewDecoder(resp.Body).Decode(&m)
	return resp.StatusCode, m
}

func fieldErrors(t *testing.T, m msg) map[string][]string {
	t.Helper()
	errs := map[string][]string{}
	if err := json.Unmarshal(m.Obj, &errs); err != nil {
		t.Fatalf("decode field errors from %s: %v", string(m.Obj), err)
	}
	return errs
}

func TestUserLifecycle(t *testing.T) {
	mail := newMailCapture()
	defer mail.srv.Close()

	engine := newTestRouter(t, mail.srv.URL)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	userService := service.UserService{}

	// Register alice.
	m := postForm(t, client, srv.URL, "/users/register/", url.Values{
		"username":  {"alice"},
		"email":     {"alice@x.com"},
		"nombres":   {"Alicia"},
		"apellidos": {"Pérez"},
		"genero":    {"F"},
		"password":  {"pw12345678"},
		"password2": {"pw12345678"},
	})
	assert.True(t, m.Success)

	var result struct {
		Username  string `json:"username"`
		EmailSent bool   `json:"emailSent"`
	}
	assert.NoError(t, json.Unmarshal(m.Obj, &result))
	assert.Equal(t, "alice", result.Username)
	assert.True(t, result.EmailSent)

	user, err := userService.FindByUsername("alice")
	assert.NoError(t, err)
	assert.False(t, user.IsActive)

	code := mail.lastCode(t)
	assert.Equal(t, user.CodigoVerificador, code)

	// Login is refused while unverified, with a generic message.
	m = postForm(t, client, srv.URL, "/users/login/", url.Values{
		"username": {"alice"},
		"password": {"pw12345678"},
	})
	assert.False(t, m.Success)

	// Wrong code: rejected on the code field, still inactive.
	m = postForm(t, client, srv.URL, "/users/verificar-codigo/", url.Values{
		"username":           {"alice"},
		"codigo_verificador": {"XXXXXX"},
	})
	assert.False(t, m.Success)
	assert.NotEmpty(t, fieldErrors(t, m)["codigo_verificador"])
	user, _ = userService.FindByUsername("alice")
	assert.False(t, user.IsActive)

	// Correct code activates.
	m = postForm(t, client, srv.URL, "/users/verificar-codigo/", url.Values{
		"username":           {"alice"},
		"codigo_verificador": {code},
	})
	assert.True(t, m.Success)
	user, _ = userService.FindByUsername("alice")
	assert.True(t, user.IsActive)

	// Login succeeds now.
	m = postForm(t, client, srv.URL, "/users/login/", url.Values{
		"username": {"alice"},
		"password": {"pw12345678"},
	})
	assert.True(t, m.Success)

	// Authenticated listing, ordered by username, paginated.
	status, m := getJSON(t, client, srv.URL, "/users/lista/")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, m.Success)

	var page struct {
		Items    []struct{ Username string } `json:"items"`
		Total    int64                       `json:"total"`
		PageSize int                         `json:"pageSize"`
	}
	assert.NoError(t, json.Unmarshal(m.Obj, &page))
	assert.EqualValues(t, 2, page.Total) // seeded admin + alice
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, "admin", page.Items[0].Username)
	assert.Equal(t, "alice", page.Items[1].Username)

	// Password update with the wrong current password is rejected.
	m = postForm(t, client, srv.URL, "/users/update-password/", url.Values{
		"password_actual": {"wrongpassword"},
		"password_nueva":  {"nw12345678"},
		"password_nueva2": {"nw12345678"},
	})
	assert.False(t, m.Success)
	assert.NotEmpty(t, fieldErrors(t, m)["password_actual"])

	// Correct current password succeeds and keeps the session alive.
	m = postForm(t, client, srv.URL, "/users/update-password/", url.Values{
		"password_actual": {"pw12345678"},
		"password_nueva":  {"nw12345678"},
		"password_nueva2": {"nw12345678"},
	})
	assert.True(t, m.Success)

	status, m = getJSON(t, client, srv.URL, "/users/lista/")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, m.Success)

	// The new password is live.
	assert.NotNil(t, userService.CheckUser("alice", "nw12345678"))
	assert.Nil(t, userService.CheckUser("alice", "pw12345678"))
}

func TestRegisterValidationErrors(t *testing.T) {
	mail := newMailCapture()
	defer mail.srv.Close()

	engine := newTestRouter(t, mail.srv.URL)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	client := &http.Client{}

	m := postForm(t, client, srv.URL, "/users/register/", url.Values{
		"username":  {"bad user"},
		"email":     {"not-an-email"},
		"nombres":   {"Bob2"},
		"apellidos": {"García"},
		"genero":    {"X"},
		"password":  {"short"},
		"password2": {"other"},
	})
	assert.False(t, m.Success)

	errs := fieldErrors(t, m)
	for _, field := range []string{"username", "email", "nombres", "genero", "password"} {
		assert.NotEmpty(t, errs[field], "expected error on %s", field)
	}

	svc := service.UserService{}
	_, err := svc.FindByUsername("bad user")
	assert.True(t, database.IsNotFound(err))
}

func TestListaRequiresLogin(t *testing.T) {
	mail := newMailCapture()
	defer mail.srv.Close()

	engine := newTestRouter(t, mail.srv.URL)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	// Browsers get redirected to the login page.
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(srv.URL + "/users/lista/")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/users/login/")

	// AJAX callers get a 401 JSON answer.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/users/lista/", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	resp, err = client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	mail := newMailCapture()
	defer mail.srv.Close()

	engine := newTestRouter(t, mail.srv.URL)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	// The seeded admin account is active and can log in directly.
	m := postForm(t, client, srv.URL, "/users/login/", url.Values{
		"username": {"admin"},
		"password": {"admin"},
	})
	assert.True(t, m.Success)

	status, m := getJSON(t, client, srv.URL, "/users/lista/")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, m.Success)

	// Logout clears the session and lands on the home page.
	resp, err := client.Get(srv.URL + "/users/logout/")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// The session is gone.
	status, _ = getJSON(t, client, srv.URL, "/users/lista/")
	assert.Equal(t, http.StatusTemporaryRedirect, status)
}
