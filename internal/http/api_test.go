package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"weather-dashboard/internal/repository/sqlite"
	"weather-dashboard/internal/service"
	"weather-dashboard/internal/session"
	"weather-dashboard/internal/weather"
)

// lookupStub serves fixture data but does not know Atlantis.
type lookupStub struct {
	fixture weather.Client
}

func (s lookupStub) Current(ctx context.Context, city, country string) (weather.Snapshot, error) {
	if strings.EqualFold(city, "Atlantis") {
		return weather.Snapshot{}, &weather.LookupError{Kind: weather.KindNotFound, City: city}
	}
	return s.fixture.Current(ctx, city, country)
}

type testServer struct {
	router   *gin.Engine
	db       *sql.DB
	sessions *session.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "weather.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	accounts, err := service.DemoAccounts()
	require.NoError(t, err)
	seeded, err := sqlite.NewSeeder(db).SeedIfEmpty(context.Background(), accounts)
	require.NoError(t, err)
	require.True(t, seeded)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client := lookupStub{fixture: weather.NewFixtureClient()}
	users := sqlite.NewUserRepository(db)
	cities := sqlite.NewCityRepository(db)

	sessions, err := session.NewManager(session.Config{Secret: "test-secret"})
	require.NoError(t, err)

	h := NewHandler(
		service.NewUserService(users),
		service.NewCityService(cities, users, client, logger),
		client,
		sessions,
		logger,
	)
	router := gin.New()
	router.Use(gin.Recovery())
	h.RegisterRoutes(router)

	return &testServer{router: router, db: db, sessions: sessions}
}

func (s *testServer) do(t *testing.T, method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == s.sessions.CookieName() {
			return c
		}
	}
	return nil
}

func (s *testServer) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/login", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	cookie := s.sessionCookie(rec)
	require.NotNil(t, cookie)
	return cookie
}

func (s *testServer) identity(t *testing.T, cookie *http.Cookie) session.Identity {
	t.Helper()
	id, err := s.sessions.Parse(cookie.Value)
	require.NoError(t, err)
	return id
}

func (s *testServer) cityIDs(t *testing.T, userID int64) map[string]int64 {
	t.Helper()
	cities, err := sqlite.NewCityRepository(s.db).ListByUser(context.Background(), userID)
	require.NoError(t, err)
	ids := make(map[string]int64, len(cities))
	for _, c := range cities {
		ids[c.Name] = c.ID
	}
	return ids
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestWeatherAPI(t *testing.T) {
	s := newTestServer(t)

	t.Run("fixture city", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/weather?city=Riga&country=LV", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"city":"Riga","temp":8,"desc":"Cloudy","wind":5.2,"humidity":78,"icon":"04d","error":null}`, rec.Body.String())
	})

	t.Run("unknown city gets placeholder", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/weather?city=Nowhereville", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"city":"Nowhereville","temp":10,"desc":"Unknown","wind":0,"humidity":50,"icon":"01d","error":null}`, rec.Body.String())
	})

	t.Run("missing city", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/weather?country=LV", nil, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error":"Missing parameter: city"}`, rec.Body.String())
	})

	t.Run("lookup error", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/weather?city=Atlantis", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"error":"City 'Atlantis' not found."}`, rec.Body.String())
	})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeJSON(t, rec)["ok"])
}

func TestHomeRedirectsWhenLoggedIn(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Weather Dashboard")

	cookie := s.login(t, "demo", "user123")
	rec = s.do(t, http.MethodGet, "/", nil, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestLoginSetsRole(t *testing.T) {
	s := newTestServer(t)

	demo := s.identity(t, s.login(t, "demo", "user123"))
	require.Equal(t, "demo", demo.Username)
	require.False(t, demo.IsAdmin())

	admin := s.identity(t, s.login(t, "admin", "admin123"))
	require.Equal(t, "admin", admin.Username)
	require.True(t, admin.IsAdmin())
}

func TestLoginFailure(t *testing.T) {
	s := newTestServer(t)

	for _, form := range []url.Values{
		{"username": {"demo"}, "password": {"wrong-password"}},
		{"username": {"nobody"}, "password": {"user123"}},
	} {
		rec := s.do(t, http.MethodPost, "/login", form, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Wrong username or password.")
		require.Nil(t, s.sessionCookie(rec))
	}
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		username, password, message string
	}{
		{"ab", "secret1", "Username must be at least 3 characters."},
		{"  ab  ", "secret1", "Username must be at least 3 characters."},
		{"alice", "12345", "Password must be at least 6 characters."},
		{"demo", "secret1", "That username is already taken."},
	}
	for _, tc := range cases {
		rec := s.do(t, http.MethodPost, "/register", url.Values{"username": {tc.username}, "password": {tc.password}}, nil)
		require.Equal(t, http.StatusOK, rec.Code, tc.username)
		require.Contains(t, rec.Body.String(), escaped(tc.message), tc.username)
		require.Nil(t, s.sessionCookie(rec))
	}

	rec := s.do(t, http.MethodPost, "/register", url.Values{"username": {" alice "}, "password": {"secret1"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	id := s.identity(t, s.sessionCookie(rec))
	require.Equal(t, "alice", id.Username)
	require.False(t, id.IsAdmin())

	s.login(t, "alice", "secret1")
}

// escaped mirrors html/template escaping of the apostrophe in messages.
func escaped(msg string) string {
	return strings.ReplaceAll(msg, "'", "&#39;")
}

func TestLogoutClearsSession(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "demo", "user123")

	rec := s.do(t, http.MethodGet, "/logout", nil, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	cleared := s.sessionCookie(rec)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)
}

func TestProtectedRoutesRedirect(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/dashboard"},
		{http.MethodPost, "/add"},
		{http.MethodGet, "/delete/1"},
		{http.MethodGet, "/admin"},
	} {
		rec := s.do(t, tc.method, tc.path, url.Values{}, nil)
		require.Equal(t, http.StatusFound, rec.Code, tc.path)
		require.Equal(t, "/login", rec.Header().Get("Location"), tc.path)
	}
}

func TestForgedCookieIsAnonymous(t *testing.T) {
	s := newTestServer(t)

	forged, err := session.NewManager(session.Config{Secret: "other-secret"})
	require.NoError(t, err)
	token, err := forged.Issue(session.Identity{UserID: 2, Username: "admin", Role: "admin"})
	require.NoError(t, err)

	for _, value := range []string{token, "garbage"} {
		rec := s.do(t, http.MethodGet, "/admin", nil, &http.Cookie{Name: s.sessions.CookieName(), Value: value})
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
		cleared := s.sessionCookie(rec)
		require.NotNil(t, cleared)
		require.Empty(t, cleared.Value)
	}
}

func TestSessionOfUnknownUserIsAnonymous(t *testing.T) {
	s := newTestServer(t)

	token, err := s.sessions.Issue(session.Identity{UserID: 999, Username: "ghost", Role: "user"})
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/dashboard", nil, &http.Cookie{Name: s.sessions.CookieName(), Value: token})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
	cleared := s.sessionCookie(rec)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)
}

func TestRegisterLongPassword(t *testing.T) {
	s := newTestServer(t)
	password := strings.Repeat("a", 100)

	rec := s.do(t, http.MethodPost, "/register", url.Values{"username": {"longpw"}, "password": {password}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	cookie := s.login(t, "longpw", password)
	require.Equal(t, "longpw", s.identity(t, cookie).Username)
}

func TestRequestLoggerLogsAtInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := logrustest.NewNullLogger()

	router := gin.New()
	router.Use(requestLogger(logger))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusTeapot, "pong") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.InfoLevel, entry.Level)
	require.Equal(t, http.StatusTeapot, entry.Data["http.resp.status"])
	require.Equal(t, "/ping", entry.Data["http.req.path"])
	require.NotEmpty(t, entry.Data["http.req.id"])
}

func TestDashboardShowsSeededCities(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "demo", "user123")

	rec := s.do(t, http.MethodGet, "/dashboard", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	riga := strings.Index(body, "Riga")
	london := strings.Index(body, "London")
	tokyo := strings.Index(body, "Tokyo")
	require.True(t, riga >= 0 && riga < london && london < tokyo, "cities rendered in stored order")
	require.Contains(t, body, "8&deg;C")
	require.Contains(t, body, "Light rain")

	id := s.identity(t, cookie)
	for _, cityID := range s.cityIDs(t, id.UserID) {
		require.Contains(t, body, "/delete/"+itoa(cityID))
	}
}

func TestAddCity(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "demo", "user123")
	userID := s.identity(t, cookie).UserID

	rec := s.do(t, http.MethodPost, "/add", url.Values{"name": {"Paris"}, "country": {"fr"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.Contains(t, s.cityIDs(t, userID), "Paris")

	// same city again is silently ignored
	rec = s.do(t, http.MethodPost, "/add", url.Values{"name": {"Paris"}, "country": {"FR"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Len(t, s.cityIDs(t, userID), 4)

	cities, err := sqlite.NewCityRepository(s.db).ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, "FR", cities[len(cities)-1].Country)

	// blank names are ignored
	rec = s.do(t, http.MethodPost, "/add", url.Values{"name": {"   "}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Len(t, s.cityIDs(t, userID), 4)
}

func TestAddUnknownCityRendersError(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "demo", "user123")
	userID := s.identity(t, cookie).UserID

	rec := s.do(t, http.MethodPost, "/add", url.Values{"name": {"Atlantis"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), escaped("City 'Atlantis' not found."))
	require.Contains(t, rec.Body.String(), "Riga")
	require.NotContains(t, s.cityIDs(t, userID), "Atlantis")
	require.Len(t, s.cityIDs(t, userID), 3)
}

func TestDeleteIsScopedToOwner(t *testing.T) {
	s := newTestServer(t)
	demo := s.login(t, "demo", "user123")
	admin := s.login(t, "admin", "admin123")
	demoID := s.identity(t, demo).UserID
	rigaID := s.cityIDs(t, demoID)["Riga"]

	// another user cannot remove it
	rec := s.do(t, http.MethodGet, "/delete/"+itoa(rigaID), nil, admin)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.Contains(t, s.cityIDs(t, demoID), "Riga")

	rec = s.do(t, http.MethodGet, "/delete/"+itoa(rigaID), nil, demo)
	require.Equal(t, http.StatusFound, rec.Code)
	require.NotContains(t, s.cityIDs(t, demoID), "Riga")

	// deleting again is a no-op
	rec = s.do(t, http.MethodGet, "/delete/"+itoa(rigaID), nil, demo)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Len(t, s.cityIDs(t, demoID), 2)
}

func TestDeleteRejectsNonIntegerID(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "demo", "user123")

	for _, id := range []string{"abc", "-1", "1.5"} {
		rec := s.do(t, http.MethodGet, "/delete/"+id, nil, cookie)
		require.Equal(t, http.StatusNotFound, rec.Code, id)
	}
}

func TestAdmin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/admin", nil, s.login(t, "demo", "user123"))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	rec = s.do(t, http.MethodGet, "/admin", nil, s.login(t, "admin", "admin123"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `<strong id="total-cities">3</strong>`)
	require.Contains(t, body, "<td>demo</td><td>user</td><td>3</td>")
	require.Contains(t, body, "<td>admin</td><td>admin</td><td>0</td>")
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
