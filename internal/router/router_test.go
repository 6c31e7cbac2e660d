package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gameclub_backend/pkg/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*gin.Engine, *utils.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	jm := utils.NewJWTManager("router-secret", time.Minute, time.Hour)
	engine := gin.New()
	Setup(engine, Deps{DB: db, JWT: jm})
	return engine, jm
}

func call(engine *gin.Engine, method, path, token, body string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w.Code
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	engine, _ := newTestEngine(t)

	assert.Equal(t, http.StatusOK, call(engine, http.MethodGet, "/ping", "", ""))
	assert.Equal(t, http.StatusUnauthorized, call(engine, http.MethodGet, "/api/v1/consumables", "", ""))
	assert.Equal(t, http.StatusUnauthorized, call(engine, http.MethodPost, "/api/v1/consumables/sell", "", "{}"))
	assert.Equal(t, http.StatusUnauthorized, call(engine, http.MethodGet, "/api/v1/consumables/report", "", ""))
	assert.Equal(t, http.StatusUnauthorized, call(engine, http.MethodPost, "/api/v1/auth/register", "", "{}"))
}

func TestRoutes_AdminOnlyWrites(t *testing.T) {
	engine, jm := newTestEngine(t)

	staff, err := jm.GenerateAccessToken(2, "cashier", "staff")
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, call(engine, http.MethodPost, "/api/v1/consumables", staff, "{}"))
	assert.Equal(t, http.StatusForbidden, call(engine, http.MethodPut, "/api/v1/consumables/update", staff, "{}"))
	assert.Equal(t, http.StatusForbidden, call(engine, http.MethodPost, "/api/v1/auth/register", staff, "{}"))

	// staff may sell; an empty body fails binding before touching the database
	assert.Equal(t, http.StatusBadRequest, call(engine, http.MethodPost, "/api/v1/consumables/sell", staff, "{}"))
}

func TestRoutes_AdminPassesRoleCheck(t *testing.T) {
	engine, jm := newTestEngine(t)

	admin, err := jm.GenerateAccessToken(1, "owner", "admin")
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, call(engine, http.MethodPost, "/api/v1/consumables", admin, "{}"))
	assert.Equal(t, http.StatusBadRequest, call(engine, http.MethodPut, "/api/v1/consumables/update", admin, "{}"))
}
