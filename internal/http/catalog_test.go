package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productIDs(body map[string]any) []string {
	var out []string
	for _, p := range body["products"].([]any) {
		out = append(out, p.(map[string]any)["id"].(string))
	}
	return out
}

func TestListProductsFiltersAndSorts(t *testing.T) {
	srv := newServer(t)
	c := srv.client(t)

	resp, body := c.do(http.MethodGet, "/api/v1/products?brands=Apple&inStock=true&sort=price-asc", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// ip12-lcd is 54.50 less 10%
	assert.Equal(t, []string{"ip13-bat", "ip12-lcd", "ip13-cam", "ip13-oled"}, productIDs(body))

	page := body["page"].(map[string]any)
	assert.Equal(t, float64(4), page["totalItems"])
	facets := body["facets"].(map[string]any)
	assert.Equal(t, float64(9), facets["total"], "facets count the whole catalog")
	assert.Len(t, facets["priceBuckets"], 4)
	assert.Equal(t, "brands=Apple&inStock=true&sort=price-asc", body["query"])
}

func TestListProductsByDeviceAndPartType(t *testing.T) {
	srv := newServer(t)
	c := srv.client(t)

	resp, body := c.do(http.MethodGet, "/api/v1/products?devices=Galaxy", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"s21-oled", "s21-port"}, productIDs(body))

	_, body = c.do(http.MethodGet, "/api/v1/products?partTypes=Battery&brands=Google", nil)
	assert.Equal(t, []string{"px6-bat"}, productIDs(body))

	facets := body["facets"].(map[string]any)
	devices := facets["devices"].([]any)
	require.NotEmpty(t, devices)
	first := devices[0].(map[string]any)
	assert.Equal(t, "iPhone", first["name"])
	assert.Equal(t, float64(4), first["count"])
}

func TestListProductsCarriesRoleQuote(t *testing.T) {
	srv := newServer(t)
	c := srv.client(t)
	c.login("walt@partsstore.test")

	_, body := c.do(http.MethodGet, "/api/v1/products?search=pro+repair", nil)
	require.Equal(t, []string{"kit-pro"}, productIDs(body))
	q := body["products"].([]any)[0].(map[string]any)["quote"].(map[string]any)
	assert.Equal(t, "69.99", q["effective"])
	assert.Equal(t, "62.99", q["display"])
	assert.Equal(t, "Wholesale", q["badge"].(map[string]any)["label"])
}

func TestListProductsPaging(t *testing.T) {
	srv := newServer(t)
	c := srv.client(t)

	_, body := c.do(http.MethodGet, "/api/v1/products?perPage=4&page=3", nil)
	assert.Equal(t, []string{"heat-mat"}, productIDs(body))
	page := body["page"].(map[string]any)
	assert.Equal(t, float64(3), page["totalPages"])
	assert.Equal(t, false, page["hasNextPage"])
	assert.Equal(t, true, page["hasPrevPage"])

	for _, path := range []string{
		"/api/v1/products?page=384307168202282327",
		"/api/v1/categories/screens/products?page=384307168202282327&perPage=100",
	} {
		resp, body := c.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Empty(t, body["products"], path)
	}
	resp, _ := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "server still up")
}

func TestInvalidFiltersAreRejected(t *testing.T) {
	srv := newServer(t)
	c := srv.client(t)

	for _, q := range []string{"sort=cheapest", "minPrice=abc", "minPrice=50&maxPrice=10", "bucket=999", "inStock=maybe", "conditions=broken", "search=%3Cscript%3E"} {
		resp, body := c.do(http.MethodGet, "/api/v1/products?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Contains(t, body["error"], "invalid", q)
	}
}

func TestCategoriesAndProductDetail(t *testing.T) {
	srv := newServer(t)
	c := srv.client(t)

	_, body := c.do(http.MethodGet, "/api/v1/categories", nil)
	assert.Len(t, body["categories"], 5)

	resp, body := c.do(http.MethodGet, "/api/v1/categories/batteries/products?sort=name", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"px6-bat", "ip13-bat"}, productIDs(body), "byte order puts \"P\" before \"i\"")

	resp, _ = c.do(http.MethodGet, "/api/v1/categories/drones/products", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = c.do(http.MethodGet, "/api/v1/products/ip12-lcd", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := body["product"].(map[string]any)
	assert.Equal(t, "iPhone 12 Incell LCD", p["name"])
	assert.Equal(t, "49.05", p["quote"].(map[string]any)["display"])
	assert.Equal(t, "LOW_STOCK", body["availability"].(map[string]any)["status"])

	resp, _ = c.do(http.MethodGet, "/api/v1/products/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = c.do(http.MethodGet, "/api/v1/products/bad%20id", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAvailability(t *testing.T) {
	srv := newServer(t)
	c := srv.client(t)

	_, body := c.do(http.MethodGet, "/api/v1/availability?productId=ip13-bat", nil)
	assert.Equal(t, "IN_STOCK", body["status"])
	assert.Equal(t, "ships today", body["eta"])

	_, body = c.do(http.MethodGet, "/api/v1/availability?productId=ghost", nil)
	assert.Equal(t, "OUT_OF_STOCK", body["status"])

	resp, _ := c.do(http.MethodGet, "/api/v1/availability", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
