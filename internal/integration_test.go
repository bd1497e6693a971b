package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smart-inventory-backend/config"
	"smart-inventory-backend/internal/api"
	"smart-inventory-backend/internal/db"
	"smart-inventory-backend/internal/metrics"
	"smart-inventory-backend/internal/model"
	"smart-inventory-backend/internal/realtime"
	"smart-inventory-backend/internal/store"
)

const deviceKey = "integration-key"

var unsafeDSNChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:it_%s?mode=memory&cache=shared", unsafeDSNChars.ReplaceAllString(t.Name(), "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return store.NewGormStore(gormDB)
}

type testServer struct {
	*httptest.Server
	hub *realtime.Hub
}

// startServer wires the full stack the way cmd/stockd does.
func startServer(t *testing.T, s store.Store) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.WebOrigin = "*"
	cfg.Server.DeviceKey = deviceKey
	cfg.Server.BackendTimeout = 2 * time.Second
	cfg.Server.CacheTTL = 30 * time.Second

	m := metrics.New()
	hub := realtime.NewHub(16, m)
	t.Cleanup(hub.Close)

	srv := httptest.NewServer(api.NewRouter(cfg, metrics.InstrumentStore(s, m), hub, m))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, hub: hub}
}

func (ts *testServer) post(t *testing.T, path, body string, header http.Header) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	return ts.do(t, req)
}

func (ts *testServer) get(t *testing.T, path string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	return ts.do(t, req)
}

func (ts *testServer) do(t *testing.T, req *http.Request) (int, string) {
	t.Helper()
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

var backends = map[string]func(t *testing.T) store.Store{
	"memory": func(*testing.T) store.Store { return store.NewMemoryStore() },
	"gorm":   newSQLiteStore,
}

// TestStockLifecycle drives a lot from stock-in to depletion over HTTP.
func TestStockLifecycle(t *testing.T) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			ts := startServer(t, newStore(t))

			code, body := ts.get(t, "/api/stock")
			require.Equal(t, http.StatusOK, code)
			assert.JSONEq(t, `{"ok":true,"data":[]}`, body)

			code, _ = ts.post(t, "/api/add", `{"uid":"A1","ma_lo":"L1","ten":"Widget","so_luong":10,"nguoi":"bob"}`, nil)
			require.Equal(t, http.StatusOK, code)

			code, body = ts.post(t, "/api/out", `{"uid":"A1","qty":15,"nguoi":"carol"}`, nil)
			require.Equal(t, http.StatusOK, code)
			assert.JSONEq(t, `{"ok":true,"remain":0}`, body)

			code, body = ts.get(t, "/api/stock")
			require.Equal(t, http.StatusOK, code)
			var stock struct {
				Data []model.Lot `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &stock))
			require.Len(t, stock.Data, 1)
			lot := stock.Data[0]
			assert.Equal(t, "L1", lot.LotCode)
			assert.Equal(t, 0.0, lot.RemainingQuantity)
			assert.Equal(t, model.LotDepleted, lot.Status)
			assert.Equal(t, "bob", lot.ReceivedBy)
			assert.Equal(t, "carol", lot.LastIssuedBy)

			code, body = ts.post(t, "/api/out", `{"uid":"B9","qty":1}`, nil)
			assert.Equal(t, http.StatusNotFound, code)
			assert.JSONEq(t, `{"ok":false,"message":"Không tìm thấy UID"}`, body)

			// Re-recording the uid restarts the lot.
			code, _ = ts.post(t, "/api/add", `{"uid":"A1","ma_lo":"L2","ten":"Widget","so_luong":3}`, nil)
			require.Equal(t, http.StatusOK, code)
			_, body = ts.get(t, "/api/stock")
			var again struct {
				Data []model.Lot `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &again))
			require.Len(t, again.Data, 1)
			assert.Equal(t, "L2", again.Data[0].LotCode)
			assert.Equal(t, 3.0, again.Data[0].RemainingQuantity)
			assert.Equal(t, model.LotInStock, again.Data[0].Status)
			assert.Equal(t, "unknown", again.Data[0].ReceivedBy)
			assert.Empty(t, again.Data[0].LastIssuedBy)
			assert.NotContains(t, body, "nguoi_xuat_cuoi")
		})
	}
}

// TestHardwareLogBroadcast checks that an ingested reading is both stored
// and pushed to a connected viewer.
func TestHardwareLogBroadcast(t *testing.T) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			ts := startServer(t, newStore(t))

			wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
			conn, err := websocket.Dial(wsURL, "", ts.URL)
			require.NoError(t, err)
			t.Cleanup(func() { _ = conn.Close() })
			require.Eventually(t, func() bool { return ts.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

			code, body := ts.post(t, "/api/hardware/logs", `{"uid":"T1","value":3.2}`, http.Header{"X-Api-Key": {"wrong"}})
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.JSONEq(t, `{"ok":false,"message":"API key invalid"}`, body)

			code, body = ts.post(t, "/api/hardware/logs", `{"uid":"T1","value":"3.2"}`, http.Header{"X-Api-Key": {deviceKey}})
			require.Equal(t, http.StatusOK, code)
			var created struct {
				OK   bool              `json:"ok"`
				Data model.HardwareLog `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &created))
			assert.True(t, created.OK)
			assert.NotZero(t, created.Data.ID)
			assert.Equal(t, 3.2, created.Data.Value)

			require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
			var frame realtime.Frame
			require.NoError(t, websocket.JSON.Receive(conn, &frame))
			assert.Equal(t, "hw_log", frame.Event)
			var pushed model.HardwareLog
			require.NoError(t, json.Unmarshal(frame.Data, &pushed))
			assert.Equal(t, created.Data.ID, pushed.ID)
			assert.Equal(t, "T1", pushed.UID)

			code, body = ts.get(t, "/api/hardware/logs?limit=10")
			require.Equal(t, http.StatusOK, code)
			var logs []model.HardwareLog
			require.NoError(t, json.Unmarshal([]byte(body), &logs))
			require.Len(t, logs, 1)
			assert.Equal(t, created.Data.ID, logs[0].ID)

			_, body = ts.get(t, "/metrics")
			assert.Contains(t, body, `stock_store_operations_total{op="append_hardware_log",result="ok"} 1`)
			assert.Contains(t, body, `stock_realtime_published_total 1`)
		})
	}
}
