package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"materiaux-pro/internal/auth"
	"materiaux-pro/internal/service"
	"materiaux-pro/internal/storage"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.SessionManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemStorage()
	sessions := auth.NewSessionManager(auth.NewMemorySessionStore(), []byte("test-secret"), time.Hour)

	router := NewRouter(Services{
		Sessions:  sessions,
		Accounts:  service.NewAccountService(store, sessions),
		Catalog:   service.NewCatalogService(store),
		Orders:    service.NewOrderService(store),
		Quotes:    service.NewQuoteService(store),
		Favorites: service.NewFavoriteService(store),
		Stats:     service.NewStatsService(store),
	})
	return router, sessions
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerClientHTTP(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/register/client", "", gin.H{
		"username":   username,
		"email":      username + "@example.com",
		"password":   "secret123",
		"first_name": username,
		"last_name":  "Test",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func registerSupplierHTTP(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/register/supplier", "", gin.H{
		"username":     username,
		"email":        username + "@example.com",
		"password":     "secret123",
		"company_name": username + " Materiaux",
		"contact_name": username,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.Token
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedGroupsRequireAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/api/client/orders", "/api/supplier/products", "/api/admin/stats"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRoleGates(t *testing.T) {
	router, _ := newTestRouter(t)
	clientToken := registerClientHTTP(t, router, "alice")
	supplierToken := registerSupplierHTTP(t, router, "bob")

	t.Run("client cannot reach supplier group", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/supplier/orders", clientToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("supplier cannot reach client group", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/client/orders", supplierToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("client cannot reach admin group", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/admin/stats", clientToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAdminPassesEveryRoleGate(t *testing.T) {
	router, sessions := newTestRouter(t)

	token, err := sessions.Create(context.Background(), auth.Identity{UserID: 1000, Role: auth.RoleAdmin})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/admin/stats", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// admin enters client and supplier groups; handlers then 404 on the
	// missing profile rather than 401/403
	rec = doJSON(t, router, http.MethodGet, "/api/client/orders", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/supplier/orders", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestLogoutInvalidatesToken(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerClientHTTP(t, router, "alice")

	rec := doJSON(t, router, http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// logging out again is still a success
	rec = doJSON(t, router, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderFlowOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)
	clientToken := registerClientHTTP(t, router, "alice")
	supplierToken := registerSupplierHTTP(t, router, "bob")

	rec := doJSON(t, router, http.MethodPost, "/api/supplier/products", supplierToken, gin.H{
		"name":  "Cement 25kg",
		"price": "12.50",
		"stock": 40,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var productResp struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &productResp))

	rec = doJSON(t, router, http.MethodPost, "/api/client/orders", clientToken, gin.H{
		"lines": []gin.H{{"product_id": productResp.Data.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var orderResp struct {
		Data struct {
			ID    int64  `json:"id"`
			Total string `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orderResp))
	assert.Equal(t, "25", orderResp.Data.Total)

	rec = doJSON(t, router, http.MethodGet, "/api/supplier/orders", supplierToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	statusPath := "/api/supplier/orders/" + strconv.FormatInt(orderResp.Data.ID, 10) + "/status"

	// a supplier with no product in the order cannot touch its status
	outsiderToken := registerSupplierHTTP(t, router, "carol")
	rec = doJSON(t, router, http.MethodPut, statusPath, outsiderToken, gin.H{"status": "cancelled"})
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet,
		"/api/client/orders/"+strconv.FormatInt(orderResp.Data.ID, 10), clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)

	rec = doJSON(t, router, http.MethodPut, statusPath, supplierToken, gin.H{"status": "shipped"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestPasswordNeverInJSON(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerClientHTTP(t, router, "alice")

	rec := doJSON(t, router, http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "secret123")
}

