package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	applog "partsstore/internal/log"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	defer applog.Set(zap.New(core))()
	srv := newServer(t)

	anon := srv.client(t)
	resp, _ := anon.do(http.MethodGet, "/admin/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	retail := srv.client(t)
	retail.login("rita@partsstore.test")
	resp, body := retail.do(http.MethodGet, "/admin/orders", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Access denied", body["error"])
	denied := logs.FilterMessage("access.denied.admin").All()
	require.Len(t, denied, 1)
	assert.Equal(t, "security", denied[0].ContextMap()["kind"])

	admin := srv.client(t)
	admin.login("admin@partsstore.test")
	resp, body = admin.do(http.MethodGet, "/admin/orders", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "orders")
}

func TestAdminSetsStock(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	defer applog.Set(zap.New(core))()
	srv := newServer(t)
	admin := srv.client(t)
	admin.login("admin@partsstore.test")

	resp, _ := admin.do(http.MethodPost, "/admin/products/px6-bat/stock", map[string]int{"qty": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, logs.FilterMessage("admin.inventory.save").All(), 1)

	_, body := admin.do(http.MethodGet, "/api/v1/availability?productId=px6-bat", nil)
	assert.Equal(t, "LOW_STOCK", body["status"])
	assert.Equal(t, float64(3), body["qty"])

	resp, _ = admin.do(http.MethodPost, "/admin/products/px6-bat/stock", map[string]int{"qty": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = admin.do(http.MethodPost, "/admin/products/ghost/stock", map[string]int{"qty": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = admin.do(http.MethodPost, "/admin/products/px6-bat/stock", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = admin.do(http.MethodGet, "/admin/inventory", nil)
	assert.Len(t, body["stock"], 9)
}

func TestAdminOrderStatusAndQuotes(t *testing.T) {
	srv := newServer(t)

	buyer := srv.client(t)
	buyer.login("rita@partsstore.test")
	buyer.do(http.MethodPost, "/api/v1/cart/items", map[string]string{"productId": "ip13-bat"})
	resp, placed := buyer.do(http.MethodPost, "/api/v1/checkout", map[string]string{"fulfillment": "pickup"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := placed["orderId"].(string)

	buyer.do(http.MethodPost, "/api/v1/quote/items", map[string]string{"productId": "kit-pro"})
	resp, submitted := buyer.do(http.MethodPost, "/api/v1/quote/submit", map[string]string{"name": "Rita", "email": "rita@partsstore.test", "company": "Fix-It"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	admin := srv.client(t)
	admin.login("admin@partsstore.test")
	resp, _ = admin.do(http.MethodPost, "/admin/orders/"+orderID+"/status", map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = admin.do(http.MethodPost, "/admin/orders/"+orderID+"/status", map[string]string{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = admin.do(http.MethodPost, "/admin/orders/missing/status", map[string]string{"status": "PAID"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body := buyer.do(http.MethodGet, "/api/v1/orders/"+orderID, nil)
	assert.Equal(t, "SHIPPED", body["order"].(map[string]any)["status"])

	_, body = admin.do(http.MethodGet, "/admin/quotes", nil)
	assert.Len(t, body["quotes"], 1)
	_, body = admin.do(http.MethodGet, "/admin/quotes/"+submitted["quoteId"].(string), nil)
	lines := items(body)
	require.Len(t, lines, 1)
	assert.Equal(t, "kit-pro", lines[0]["productId"])
}
