package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"
	"palma-lending/internal/core/ports/mocks"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)

	router := gin.New()
	router.GET("/test", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_WrongScheme(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)

	router := gin.New()
	router.GET("/test", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("bad_token").Return(nil, assert.AnError)

	router := gin.New()
	router.GET("/test", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer bad_token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AUTH_001", resp["error_code"])
}

func TestJWTAuth_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("good_token").Return(&ports.TokenClaims{
		Account: alice,
		Role:    ports.RoleUser,
	}, nil)

	var (
		captured domain.Account
		role     string
	)
	router := gin.New()
	router.GET("/test", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		captured, _ = AccountFrom(c)
		role = c.GetString(CtxRole)
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer good_token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, alice, captured)
	assert.Equal(t, ports.RoleUser, role)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		role string
		want int
	}{
		{"admin passes", ports.RoleAdmin, http.StatusOK},
		{"user rejected", ports.RoleUser, http.StatusForbidden},
		{"no role rejected", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.PUT("/admin", func(c *gin.Context) {
				if tt.role != "" {
					c.Set(CtxRole, tt.role)
				}
				c.Next()
			}, RequireRole(ports.RoleAdmin), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPut, "/admin", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAccountFrom_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := AccountFrom(c)
	assert.False(t, ok)

	c.Set(CtxAccount, "not-an-address")
	_, ok = AccountFrom(c)
	assert.False(t, ok)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxRequestID))
	})

	t.Run("propagates caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(HeaderRequestID, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Body.String())
		assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	})

	t.Run("generates when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Len(t, w.Body.String(), 36)
		assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))
	})
}

func TestRecovery_PanicRecovered(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zerolog.Nop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("something went wrong")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SYS_001", resp["error_code"])
}

type observation struct {
	method, route string
	status        int
}

type fakeObserver struct {
	seen []observation
}

func (f *fakeObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.seen = append(f.seen, observation{method, route, status})
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	obs := &fakeObserver{}
	router := gin.New()
	router.Use(Metrics(obs))
	router.GET("/accounts/:account", func(c *gin.Context) {
		c.Status(http.StatusTeapot)
	})

	for _, path := range []string{"/accounts/0x1", "/accounts/0x2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, obs.seen, 3)
	assert.Equal(t, observation{"GET", "/accounts/:account", http.StatusTeapot}, obs.seen[0])
	assert.Equal(t, observation{"GET", "/accounts/:account", http.StatusTeapot}, obs.seen[1])
	assert.Equal(t, observation{"GET", "", http.StatusNotFound}, obs.seen[2])
}

func TestMaxBodySize_RejectsLargeBody(t *testing.T) {
	router := gin.New()
	router.Use(MaxBodySize(8))
	router.POST("/body", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/body", strings.NewReader(`{"amount":"100000000"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
