package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taoyao-code/cij-gateway/internal/devicesim"
	"github.com/taoyao-code/cij-gateway/internal/printer"
)

func newTestRouter(t *testing.T, apiKey string) (*gin.Engine, *devicesim.Simulator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sim := devicesim.New(zap.NewNop(), 2)
	require.NoError(t, sim.Listen("127.0.0.1:0"))
	t.Cleanup(func() { _ = sim.Close() })

	tr := printer.NewTCPTransport(sim.Addr(), 0, 0, 0)
	tr.SetLogger(zap.NewNop())
	sess := printer.NewSession(tr, zap.NewNop())

	r := gin.New()
	ph := NewPrinterHandler(sess, zap.NewNop())
	hh := NewHistoryHandler(nil, nil, nil, zap.NewNop())
	RegisterRoutes(r, ph, hh, apiKey, zap.NewNop())
	return r, sim
}

func doJSON(r *gin.Engine, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPingEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := doJSON(r, http.MethodGet, "/api/printer/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"online":true}`, w.Body.String())
}

func TestPowerEndpoint(t *testing.T) {
	r, sim := newTestRouter(t, "")

	w := doJSON(r, http.MethodPost, "/api/printer/power", `{"mode":"startup"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, sim.Running())

	w = doJSON(r, http.MethodPost, "/api/printer/power", `{"mode":"long_shutdown"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, sim.Running())
}

func TestPowerEndpointRejectsBadMode(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := doJSON(r, http.MethodPost, "/api/printer/power", `{"mode":"warp"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDateTimeEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, "")

	body := `{"second":25,"minute":30,"hour":12,"day":28,"month":8,"year":15}`
	w := doJSON(r, http.MethodPut, "/api/printer/datetime", body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/printer/datetime", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Day   int `json:"day"`
		Month int `json:"month"`
		Hour  int `json:"hour"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 28, resp.Day)
	assert.Equal(t, 8, resp.Month)
	assert.Equal(t, 12, resp.Hour)
}

func TestSetDateTimeRejectsInvalid(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := doJSON(r, http.MethodPut, "/api/printer/datetime", `{"month":13,"day":1}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParamsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := doJSON(r, http.MethodGet, "/api/printer/params", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		MotorSpeed int     `json:"motor_speed"`
		Pressure   float64 `json:"pressure"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1500, resp.MotorSpeed)
	assert.InDelta(t, 2.5, resp.Pressure, 1e-9)
}

func TestFaultsEndpoints(t *testing.T) {
	r, sim := newTestRouter(t, "")
	sim.RaiseDeviceFault(0, 1) // pressure_error

	w := doJSON(r, http.MethodGet, "/api/printer/faults", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Active        []string `json:"active"`
		AvailableJets int      `json:"available_jets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Active, "pressure_error")
	assert.Equal(t, 2, resp.AvailableJets)

	w = doJSON(r, http.MethodPost, "/api/printer/faults/reset", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestJetEndpoints(t *testing.T) {
	r, sim := newTestRouter(t, "")
	sim.SetJetCounter(1, 777)

	w := doJSON(r, http.MethodGet, "/api/printer/jets", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"available_jets":2}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/printer/jets/1/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"jet_id":1,"status":"Jet stopped"}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/printer/jets/1/counter", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"jet_id":1,"counter":777}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/printer/jets/1/counter/reset", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodGet, "/api/printer/jets/1/speed", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"jet_id":1,"speed_mps":2.5}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/printer/jets/abc/status", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetVariablesEndpoint(t *testing.T) {
	r, sim := newTestRouter(t, "")

	w := doJSON(r, http.MethodPut, "/api/printer/jets/1/variables", `{"variables":["LOT42","B7"]}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"LOT42", "B7"}, sim.Variables(1))

	w = doJSON(r, http.MethodPut, "/api/printer/jets/1/variables", `{"variables":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// 设备拒绝的命令映射到 409
func TestDeviceRejectionMapsToConflict(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := doJSON(r, http.MethodGet, "/api/printer/jets/9/status", "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	r, _ := newTestRouter(t, "secret-key")

	w := doJSON(r, http.MethodGet, "/api/printer/ping", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/printer/ping", "", map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/printer/ping", "", map[string]string{"X-API-Key": "secret-key"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/printer/ping", "", map[string]string{"Authorization": "Bearer secret-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHistoryDisabledReturns404(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := doJSON(r, http.MethodGet, "/api/history/status", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/snapshot", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
