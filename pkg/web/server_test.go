package web

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pijn/portmanager/pkg/logger"
	"github.com/pijn/portmanager/pkg/web/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.Mode = gin.TestMode
	cfg.Workers = 2
	cfg.StopTimeout = time.Second
	return cfg
}

func TestServer_StartStop(t *testing.T) {
	srv, err := NewServer(testConfig(), logger.NewNoop())
	require.NoError(t, err)

	srv.Router().GET("/ping", func(c *gin.Context) {
		Success(c, "pong")
	})

	require.NoError(t, srv.Start())
	assert.ErrorIs(t, srv.Start(), ErrServerAlreadyStarted)

	resp, err := http.Get("http://" + srv.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"data":"pong"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	require.NoError(t, srv.Stop())
}

func TestServer_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port

	srv, err := NewServer(cfg, logger.NewNoop())
	require.NoError(t, err)
	assert.Error(t, srv.Start())
	assert.NoError(t, srv.Stop())
}

func TestServer_TLSWithoutCert(t *testing.T) {
	cfg := testConfig()
	cfg.EnableTLS = true

	srv, err := NewServer(cfg, logger.NewNoop())
	require.NoError(t, err)
	defer srv.Stop()
	assert.ErrorIs(t, srv.Start(), ErrTLSConfig)
}

func TestNewServer_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = "turbo"
	_, err := NewServer(cfg, logger.NewNoop())
	assert.Error(t, err)
}

func TestServer_ExtraMiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, name)
			c.Next()
		}
	}

	cfg := testConfig()
	cfg.Workers = 0
	srv, err := NewServer(cfg, logger.NewNoop(), WithMiddleware(mark("first"), mark("second")))
	require.NoError(t, err)
	srv.Router().GET("/", func(c *gin.Context) {
		order = append(order, "handler")
		Success(c, nil)
	})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"first", "second", "handler"}, order)
	assert.JSONEq(t, `{"success":true,"data":null}`, w.Body.String())
}

func TestServer_ClientIPIgnoresForwardedFor(t *testing.T) {
	srv, err := NewServer(testConfig(), logger.NewNoop())
	require.NoError(t, err)
	srv.Router().GET("/ip", func(c *gin.Context) {
		c.String(http.StatusOK, c.ClientIP())
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "203.0.113.5:4000"
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "203.0.113.5", w.Body.String())
	srv.Stop()
}

type bindTarget struct {
	ServiceName string `json:"service_name" binding:"required"`
	IP          string `json:"ip" binding:"required,ip|hostname_rfc1123"`
}

func TestBindJSON(t *testing.T) {
	srv, err := NewServer(testConfig(), logger.NewNoop())
	require.NoError(t, err)
	defer srv.Stop()

	srv.Router().POST("/bind", func(c *gin.Context) {
		var req bindTarget
		if !BindJSON(c, &req) {
			return
		}
		Success(c, req.ServiceName)
	})

	tests := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{"valid ip", `{"service_name":"web","ip":"10.0.0.5"}`, http.StatusOK, ""},
		{"valid hostname", `{"service_name":"web","ip":"node-1.local"}`, http.StatusOK, ""},
		{"missing name", `{"ip":"10.0.0.5"}`, http.StatusBadRequest, "service_name is required"},
		{"bad ip", `{"service_name":"web","ip":"not an ip!"}`, http.StatusBadRequest, "ip must be"},
		{"not json", `{{`, http.StatusBadRequest, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.errMsg != "" {
				var body ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.False(t, body.Success)
				assert.Contains(t, body.Error, tt.errMsg)
			}
		})
	}
}

func TestError_StatusFromCode(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Error(c, errors.CodeNotFound, "service 'ghost' not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"service 'ghost' not found"}`, w.Body.String())
}
