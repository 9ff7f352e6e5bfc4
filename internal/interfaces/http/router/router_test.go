package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Register(NewResourceGroup("/boards/:boardId/flows"))

	assert.Len(t, r.registrars, 1)
}

func TestRouterSetupMountsUnderVersionPrefix(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewResourceGroup("/boards/:boardId/flows")
	group.GET("", func(c *gin.Context) {
		c.String(http.StatusOK, c.Param("boardId"))
	})
	r.Register(group)
	r.Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/boards/7/flows", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", w.Body.String())
}

func TestResourceGroupRegistersAllVerbs(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	echo := func(c *gin.Context) {
		c.String(http.StatusOK, c.Request.Method+" "+c.Param("id"))
	}
	r.Register(NewResourceGroup("/boards/:boardId/nodes").
		GET("", echo).
		POST("", echo).
		PATCH("/:id", echo).
		DELETE("/:id", echo))
	r.Setup()

	cases := []struct {
		method string
		path   string
		want   string
	}{
		{"GET", "/api/v1/boards/1/nodes", "GET "},
		{"POST", "/api/v1/boards/1/nodes", "POST "},
		{"PATCH", "/api/v1/boards/1/nodes/5", "PATCH 5"},
		{"DELETE", "/api/v1/boards/1/nodes/5", "DELETE 5"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, tc.method)
		assert.Equal(t, tc.want, w.Body.String())
	}
}

func TestResourceGroupUnknownRouteIs404(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.Register(NewResourceGroup("/boards/:boardId/edges").GET("", func(c *gin.Context) {
		c.Status(http.StatusOK)
	}))
	r.Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/v1/boards/1/edges", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
