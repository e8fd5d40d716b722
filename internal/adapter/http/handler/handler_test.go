package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"palma-lending/internal/adapter/http/middleware"
	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"
	"palma-lending/internal/core/ports/mocks"
	"palma-lending/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	usdc  = common.HexToAddress("0x0000000000000000000000000000000000001001")
	usdt  = common.HexToAddress("0x0000000000000000000000000000000000001002")
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	lending *mocks.MockLendingService
	journal *mocks.MockEventJournal
	tokens  *mocks.MockTokenService
	router  *gin.Engine
}

// newFixture builds the full router. "user-token" authenticates alice and
// "admin-token" authenticates bob as admin.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		lending: mocks.NewMockLendingService(ctrl),
		journal: mocks.NewMockEventJournal(ctrl),
		tokens:  mocks.NewMockTokenService(ctrl),
	}
	f.tokens.EXPECT().Validate("user-token").
		Return(&ports.TokenClaims{Account: alice, Role: ports.RoleUser}, nil).AnyTimes()
	f.tokens.EXPECT().Validate("admin-token").
		Return(&ports.TokenClaims{Account: bob, Role: ports.RoleAdmin}, nil).AnyTimes()

	f.router = SetupRouter(RouterDeps{
		Lending:  f.lending,
		Journal:  f.journal,
		TokenSvc: f.tokens,
		Logger:   zerolog.Nop(),
	})
	gin.SetMode(gin.TestMode)
	return f
}

func (f *fixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func event(typ domain.EventType, account, asset common.Address, amount uint64) *domain.Event {
	e := domain.NewEvent(typ, account, asset, uint256.NewInt(amount))
	e.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return e
}

// --- Ledger Handler Tests ---

func TestDeposit_Success(t *testing.T) {
	f := newFixture(t)

	f.lending.EXPECT().Deposit(gomock.Any(), ports.DepositRequest{
		Account: alice,
		Asset:   usdc,
		Amount:  uint256.NewInt(10_000_000),
	}).Return(event(domain.EventDeposit, alice, usdc, 10_000_000), nil)

	w := f.do(http.MethodPost, "/api/v1/deposits", "user-token", map[string]string{
		"asset":  usdc.Hex(),
		"amount": "10000000",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "DEPOSIT", data["type"])
	assert.Equal(t, alice.Hex(), data["account"])
	assert.Equal(t, "10000000", data["amount"])
	assert.Equal(t, "2026-01-02T03:04:05Z", data["created_at"])
	assert.NotContains(t, data, "target")
}

func TestDeposit_Unauthenticated(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/deposits", "", map[string]string{
		"asset":  usdc.Hex(),
		"amount": "1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeposit_ValidationError(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/deposits", "user-token", map[string]string{
		"asset":  "usdc",
		"amount": "1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_004", decode(t, w)["error_code"])
}

func TestDeposit_AmountAbove256Bits(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/deposits", "user-token", map[string]string{
		"asset":  usdc.Hex(),
		"amount": "115792089237316195423570985008687907853269984665640564039457584007913129639936",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_004", decode(t, w)["error_code"])
}

func TestDeposit_ServiceErrorCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"zero amount", apperror.ErrZeroAmount(), http.StatusBadRequest, "VAL_001"},
		{"not allowed", apperror.ErrTokenNotAllowed(usdc.Hex()), http.StatusBadRequest, "VAL_003"},
		{"transfer failed", apperror.ErrTransferFailed(errors.New("token returned false")), http.StatusBadGateway, "EXT_002"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "SYS_001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.lending.EXPECT().Deposit(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := f.do(http.MethodPost, "/api/v1/deposits", "user-token", map[string]string{
				"asset":  usdc.Hex(),
				"amount": "0",
			})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w)["error_code"])
		})
	}
}

func TestWithdraw_PassesBothAssets(t *testing.T) {
	f := newFixture(t)

	f.lending.EXPECT().Withdraw(gomock.Any(), ports.WithdrawRequest{
		Account:         alice,
		CollateralAsset: usdc,
		DebtAsset:       usdt,
		Amount:          uint256.NewInt(5),
	}).Return(nil, apperror.ErrWithdrawLesserAmount())

	w := f.do(http.MethodPost, "/api/v1/withdrawals", "user-token", map[string]string{
		"collateral_asset": usdc.Hex(),
		"debt_asset":       usdt.Hex(),
		"amount":           "5",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "SOLV_003", decode(t, w)["error_code"])
}

func TestBorrow_Success(t *testing.T) {
	f := newFixture(t)

	f.lending.EXPECT().Borrow(gomock.Any(), ports.BorrowRequest{
		Account:         alice,
		CollateralAsset: usdc,
		DebtAsset:       usdt,
		Amount:          uint256.NewInt(7_000_000),
	}).Return(event(domain.EventBorrow, alice, usdt, 7_000_000), nil)

	w := f.do(http.MethodPost, "/api/v1/borrows", "user-token", map[string]string{
		"collateral_asset": usdc.Hex(),
		"debt_asset":       usdt.Hex(),
		"amount":           "7000000",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "BORROW", decode(t, w)["data"].(map[string]interface{})["type"])
}

func TestRepay_Success(t *testing.T) {
	f := newFixture(t)

	f.lending.EXPECT().Repay(gomock.Any(), ports.RepayRequest{
		Account: alice,
		Asset:   usdt,
		Amount:  uint256.NewInt(3),
	}).Return(event(domain.EventRepay, alice, usdt, 3), nil)

	w := f.do(http.MethodPost, "/api/v1/repayments", "user-token", map[string]string{
		"asset":  usdt.Hex(),
		"amount": "3",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLiquidate_CallerIsLiquidator(t *testing.T) {
	f := newFixture(t)

	e := event(domain.EventLiquidate, alice, usdc, 7_857_142)
	target, debt := bob, usdt
	e.Target = &target
	e.DebtAsset = &debt
	e.DebtRepaid = uint256.NewInt(5_000_000)
	e.ProtocolCut = uint256.NewInt(392_857)

	f.lending.EXPECT().Liquidate(gomock.Any(), ports.LiquidateRequest{
		Liquidator:      alice,
		Target:          bob,
		CollateralAsset: usdc,
		DebtAsset:       usdt,
	}).Return(e, nil)

	w := f.do(http.MethodPost, "/api/v1/liquidations", "user-token", map[string]string{
		"target":           bob.Hex(),
		"collateral_asset": usdc.Hex(),
		"debt_asset":       usdt.Hex(),
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, bob.Hex(), data["target"])
	assert.Equal(t, usdt.Hex(), data["debt_asset"])
	assert.Equal(t, "5000000", data["debt_repaid"])
	assert.Equal(t, "392857", data["protocol_cut"])
}

func TestLiquidate_Rejections(t *testing.T) {
	tests := []struct {
		err    *apperror.AppError
		status int
	}{
		{apperror.ErrAccountCannotBeLiquidated(), http.StatusConflict},
		{apperror.ErrLiquidationForbidden(), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			f := newFixture(t)
			f.lending.EXPECT().Liquidate(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := f.do(http.MethodPost, "/api/v1/liquidations", "user-token", map[string]string{
				"target":           bob.Hex(),
				"collateral_asset": usdc.Hex(),
				"debt_asset":       usdt.Hex(),
			})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.err.Code, decode(t, w)["error_code"])
		})
	}
}

func TestLedgerHandler_NoAccountInContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewLedgerHandler(mocks.NewMockLendingService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/repayments", bytes.NewBufferString(`{}`))

	h.Repay(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Account Handler Tests ---

func TestSummary_InfiniteHealth(t *testing.T) {
	f := newFixture(t)

	positions := domain.NewPositions()
	positions.Deposits[usdc] = uint256.NewInt(10_000_000)
	f.lending.EXPECT().AccountSummary(gomock.Any(), bob).Return(&ports.AccountSummary{
		Account:   bob,
		Positions: positions,
		Health: domain.AccountHealth{
			CollateralUSD: uint256.NewInt(10_000_000_000),
			DebtUSD:       new(uint256.Int),
		},
	}, nil)

	w := f.do(http.MethodGet, "/api/v1/accounts/"+bob.Hex(), "user-token", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "infinite", data["health_factor"])
	assert.Equal(t, "10000000000", data["collateral_usd"])
	positionsOut := data["positions"].([]interface{})
	require.Len(t, positionsOut, 1)
	assert.Equal(t, "10000000", positionsOut[0].(map[string]interface{})["deposit"])
	assert.Equal(t, "0", positionsOut[0].(map[string]interface{})["borrow"])
}

func TestSummary_FiniteHealthAndOrdering(t *testing.T) {
	f := newFixture(t)

	positions := domain.NewPositions()
	positions.Borrows[usdt] = uint256.NewInt(8)
	positions.Deposits[usdc] = uint256.NewInt(20)
	f.lending.EXPECT().AccountSummary(gomock.Any(), alice).Return(&ports.AccountSummary{
		Account:   alice,
		Positions: positions,
		Health: domain.AccountHealth{
			CollateralUSD: uint256.NewInt(200),
			DebtUSD:       uint256.NewInt(80),
			Factor:        uint256.NewInt(2_000_000_000_000_000_000),
		},
	}, nil)

	w := f.do(http.MethodGet, "/api/v1/accounts/"+alice.Hex(), "user-token", nil)

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "2000000000000000000", data["health_factor"])
	out := data["positions"].([]interface{})
	require.Len(t, out, 2)
	assert.Equal(t, usdc.Hex(), out[0].(map[string]interface{})["asset"])
	assert.Equal(t, usdt.Hex(), out[1].(map[string]interface{})["asset"])
}

func TestSummary_OracleUnavailable(t *testing.T) {
	f := newFixture(t)
	f.lending.EXPECT().AccountSummary(gomock.Any(), alice).
		Return(nil, apperror.ErrOracleUnavailable(errors.New("no round")))

	w := f.do(http.MethodGet, "/api/v1/accounts/"+alice.Hex(), "user-token", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSummary_BadAddress(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/accounts/alice", "user-token", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPosition(t *testing.T) {
	f := newFixture(t)
	f.lending.EXPECT().AccountToTokenDeposits(gomock.Any(), alice, usdc).Return(uint256.NewInt(18))
	f.lending.EXPECT().AccountToTokenBorrows(gomock.Any(), alice, usdc).Return(new(uint256.Int))

	w := f.do(http.MethodGet, "/api/v1/accounts/"+alice.Hex()+"/assets/"+usdc.Hex(), "user-token", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "18", data["deposit"])
	assert.Equal(t, "0", data["borrow"])
}

func TestEvents(t *testing.T) {
	f := newFixture(t)
	f.journal.EXPECT().ListByAccount(gomock.Any(), alice, 2).Return([]domain.Event{
		*event(domain.EventBorrow, alice, usdt, 1),
		*event(domain.EventDeposit, alice, usdc, 2),
	}, nil)

	w := f.do(http.MethodGet, "/api/v1/accounts/"+alice.Hex()+"/events?limit=2", "user-token", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "BORROW", data[0].(map[string]interface{})["type"])
}

func TestEvents_DefaultLimit(t *testing.T) {
	f := newFixture(t)
	f.journal.EXPECT().ListByAccount(gomock.Any(), alice, defaultEventLimit).Return(nil, nil)

	w := f.do(http.MethodGet, "/api/v1/accounts/"+alice.Hex()+"/events", "user-token", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decode(t, w)["data"])
}

func TestEvents_InvalidLimit(t *testing.T) {
	for _, limit := range []string{"0", "501", "ten"} {
		t.Run(limit, func(t *testing.T) {
			f := newFixture(t)
			w := f.do(http.MethodGet, "/api/v1/accounts/"+alice.Hex()+"/events?limit="+limit, "user-token", nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestEvents_JournalError(t *testing.T) {
	f := newFixture(t)
	f.journal.EXPECT().ListByAccount(gomock.Any(), alice, defaultEventLimit).Return(nil, errors.New("pg down"))

	w := f.do(http.MethodGet, "/api/v1/accounts/"+alice.Hex()+"/events", "user-token", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// --- Token Handler Tests ---

func TestTokens_List(t *testing.T) {
	f := newFixture(t)
	f.lending.EXPECT().Tokens(gomock.Any()).Return([]ports.TokenStatus{
		{
			TokenInfo:        domain.TokenInfo{Asset: usdc, Symbol: "USDC", Decimals: 6, Allowed: true},
			ProtocolEarnings: uint256.NewInt(3_850_000),
		},
	}, nil)

	w := f.do(http.MethodGet, "/api/v1/tokens", "user-token", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	token := data[0].(map[string]interface{})
	assert.Equal(t, "USDC", token["symbol"])
	assert.Equal(t, float64(6), token["decimals"])
	assert.Equal(t, true, token["allowed"])
	assert.Equal(t, "3850000", token["protocol_earnings"])
}

func TestSetAllowed_RequiresAdmin(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/v1/admin/tokens/"+usdc.Hex(), "user-token", map[string]bool{"allowed": false})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTH_002", decode(t, w)["error_code"])
}

func TestSetAllowed_Admin(t *testing.T) {
	f := newFixture(t)
	f.lending.EXPECT().SetAllowedToken(gomock.Any(), usdc, false).Return(nil)

	w := f.do(http.MethodPut, "/api/v1/admin/tokens/"+usdc.Hex(), "admin-token", map[string]bool{"allowed": false})

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["allowed"])
}

func TestSetAllowed_MissingFlag(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/v1/admin/tokens/"+usdc.Hex(), "admin-token", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Health, Swagger, Metrics ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		checkers []ports.HealthChecker
		status   int
		overall  string
	}{
		{"all healthy", []ports.HealthChecker{stubChecker{name: "postgresql"}, stubChecker{name: "redis"}}, http.StatusOK, "healthy"},
		{"redis down", []ports.HealthChecker{stubChecker{name: "postgresql"}, stubChecker{name: "redis", err: errors.New("refused")}}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", HealthCheck(tt.checkers...))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.Equal(t, tt.overall, resp["status"])
			assert.Len(t, resp["dependencies"], 2)
		})
	}
}

func TestSwaggerSpec_Embedded(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/swagger/spec", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/liquidations:")
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/swagger/spec", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = f.do(http.MethodGet, "/swagger", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "url: '/swagger/spec'")
}

type stubMetrics struct {
	routes []string
}

func (s *stubMetrics) ObserveRequest(_, route string, _ int, _ time.Duration) {
	s.routes = append(s.routes, route)
}

func (s *stubMetrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("palma_up 1\n"))
	})
}

func TestSetupRouter_Metrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := &stubMetrics{}
	router := SetupRouter(RouterDeps{
		Lending:  mocks.NewMockLendingService(ctrl),
		TokenSvc: mocks.NewMockTokenService(ctrl),
		Metrics:  m,
		Logger:   zerolog.Nop(),
	})
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "palma_up 1\n", w.Body.String())
	assert.Equal(t, []string{"/metrics"}, m.routes)
}

func TestSetupRouter_NoJournalHidesEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := mocks.NewMockTokenService(ctrl)
	tokens.EXPECT().Validate("user-token").Return(&ports.TokenClaims{Account: alice, Role: ports.RoleUser}, nil).AnyTimes()

	router := SetupRouter(RouterDeps{
		Lending:  mocks.NewMockLendingService(ctrl),
		TokenSvc: tokens,
		Logger:   zerolog.Nop(),
	})
	gin.SetMode(gin.TestMode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+alice.Hex()+"/events", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupRouter_RequestIDEchoed(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tokens", nil)
	req.Header.Set(middleware.HeaderRequestID, "trace-1")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "trace-1", decode(t, w)["request_id"])
}
