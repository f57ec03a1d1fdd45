package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"partsstore/internal/config"
	"partsstore/internal/http/handlers"
	"partsstore/internal/repos"
)

func testConfig() config.Config {
	return config.Config{
		DBDSN:        ":memory:",
		SlotBackend:  config.SlotSQL,
		LoginRateMax: 50,
		APIRateMax:   500,
	}
}

type testServer struct {
	app *fiber.App
	db  *sqlx.DB
}

func newServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &testServer{app: handlers.NewApp(db, cfg), db: db}
}

// client is one browser: it keeps the cookies the server hands out and
// echoes the csrf cookie in the header on every request.
type client struct {
	t       *testing.T
	srv     *testServer
	cookies map[string]string
}

func (s *testServer) client(t *testing.T) *client {
	c := &client{t: t, srv: s, cookies: map[string]string{}}
	resp, _ := c.do(http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, c.cookies["sid"], "sid cookie")
	require.NotEmpty(t, c.cookies[handlers.CSRFCookie], "csrf cookie")
	return c
}

func (c *client) request(method, path string, body any) *http.Request {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	for name, v := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: v})
	}
	if tok := c.cookies[handlers.CSRFCookie]; tok != "" {
		req.Header.Set(handlers.CSRFHeader, tok)
	}
	return req
}

func (c *client) send(req *http.Request) (*http.Response, map[string]any) {
	c.t.Helper()
	resp, err := c.srv.app.Test(req, -1)
	require.NoError(c.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	var out map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func (c *client) do(method, path string, body any) (*http.Response, map[string]any) {
	c.t.Helper()
	return c.send(c.request(method, path, body))
}

func (c *client) login(email string) {
	c.t.Helper()
	resp, body := c.do(http.MethodPost, "/login", map[string]string{"email": email, "password": repos.SeedPassword})
	require.Equal(c.t, http.StatusOK, resp.StatusCode, body)
}

func items(body map[string]any) []map[string]any {
	raw, _ := body["items"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.(map[string]any))
	}
	return out
}
