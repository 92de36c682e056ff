package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"snack-shop/controllers"
	"snack-shop/models"
	"snack-shop/repositories"
	"snack-shop/routes"
	"snack-shop/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopPrinter struct{}

func (nopPrinter) Print(ctx context.Context, order models.Order) error { return nil }

type server struct {
	router     *gin.Engine
	store      *repositories.MemoryOrderRepository
	projection *services.Projection
	token      string
}

func newServer(t *testing.T) *server {
	t.Helper()
	return newServerWithChecks(t, nil)
}

func newServerWithChecks(t *testing.T, checks map[string]controllers.HealthCheck) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := repositories.NewMemoryOrderRepository()
	menu := repositories.NewMemoryMenuRepository(repositories.DefaultMenu()...)
	notifier := services.NewNotifier(10)
	projection := services.NewProjection(store, nil, log)
	session := services.NewSession(context.Background(), false, services.PrintModeLatest, projection, nopPrinter{}, nil, notifier, log)
	orders := services.NewOrderService(store, menu, projection, notifier, nopPrinter{}, services.OrderServiceConfig{
		Tables:       []string{"1", "5", "外帶"},
		WriteTimeout: time.Second,
		Location:     time.UTC,
	}, log)
	auth, err := services.NewAuthService("8888", "test-secret", time.Hour)
	require.NoError(t, err)

	require.NoError(t, projection.Start(context.Background()))
	t.Cleanup(projection.Stop)

	router := gin.New()
	routes.SetupRoutes(router, routes.Services{
		Orders:  orders,
		Reports: services.NewReportService(orders, nil),
		Auth:    auth,
		Session: session,
		Health:  checks,
	})

	s := &server{router: router, store: store, projection: projection}
	resp := s.do(t, http.MethodPost, "/auth/login", gin.H{"passcode": "8888"}, false)
	require.Equal(t, http.StatusOK, resp.Code)
	var login struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &login))
	s.token = login.Data.Token
	return s
}

func (s *server) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) waitStatus(t *testing.T, id string, status models.OrderStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		o, ok := s.projection.Snapshot().Find(id)
		return ok && o.Status == status
	}, 2*time.Second, 5*time.Millisecond)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) {
	t.Helper()
	envelope := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, data))
}

func (s *server) createOrder(t *testing.T, table string) models.Order {
	t.Helper()
	w := s.do(t, http.MethodPost, "/orders", gin.H{
		"table_number": table,
		"items":        []gin.H{{"menu_item_id": "1", "quantity": 2}},
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var o models.Order
	decode(t, w, &o)
	s.waitStatus(t, o.ID, models.StatusPending)
	return o
}

func (s *server) setStatus(t *testing.T, id string, status models.OrderStatus) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPatch, "/owner/orders/"+id+"/status", gin.H{"status": status}, true)
}

func TestOwnerRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/owner/tables", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/login", gin.H{"passcode": "0000"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/owner/tables", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetMenu(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodGet, "/menu", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Items  []models.MenuItem `json:"items"`
		Tables []string          `json:"tables"`
	}
	decode(t, w, &data)
	assert.Len(t, data.Items, len(repositories.DefaultMenu()))
	assert.Equal(t, []string{"1", "5", "外帶"}, data.Tables)
}

func TestCreateOrderValidation(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/orders", gin.H{"table_number": "5", "items": []gin.H{}}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/orders", gin.H{
		"table_number": "42",
		"items":        []gin.H{{"menu_item_id": "1", "quantity": 1}},
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderFlowOverHTTP(t *testing.T) {
	s := newServer(t)
	o := s.createOrder(t, "5")
	assert.Equal(t, 90.0, o.TotalPrice)

	w := s.setStatus(t, o.ID, models.StatusCompleted)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.setStatus(t, o.ID, models.StatusPaid)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.setStatus(t, o.ID, "served")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, status := range []models.OrderStatus{models.StatusPreparing, models.StatusCompleted} {
		w = s.setStatus(t, o.ID, status)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		s.waitStatus(t, o.ID, status)
	}

	w = s.do(t, http.MethodGet, "/owner/tables", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var tables struct {
		Tables      []models.TableTotal `json:"tables"`
		Outstanding float64             `json:"outstanding_total"`
	}
	decode(t, w, &tables)
	require.Len(t, tables.Tables, 1)
	assert.Equal(t, "5", tables.Tables[0].TableNumber)
	assert.Equal(t, 90.0, tables.Outstanding)

	w = s.do(t, http.MethodPost, "/owner/tables/5/settle", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var settled models.SettlementResult
	decode(t, w, &settled)
	assert.Equal(t, []string{o.ID}, settled.OrderIDs)
	s.waitStatus(t, o.ID, models.StatusPaid)

	today := time.Now().UTC().Format("2006-01-02")
	w = s.do(t, http.MethodGet, "/owner/history?start_date="+today+"&end_date="+today, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var report models.HistoryReport
	decode(t, w, &report)
	require.Len(t, report.Orders, 1)
	assert.Equal(t, 90.0, report.TotalRevenue)

	w = s.do(t, http.MethodDelete, "/owner/orders/"+o.ID, nil, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/owner/history/export?start_date="+today+"&end_date="+today, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sales_")
	assert.Contains(t, w.Body.String(), o.ID)
}

func TestHistoryRejectsBadDates(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodGet, "/owner/history?start_date=15-03-2024", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettlePartialFailureOverHTTP(t *testing.T) {
	s := newServer(t)
	a := s.createOrder(t, "1")
	b := s.createOrder(t, "1")

	s.store.WriteHook = func(op, id string) error {
		if op == "update_status" && id == b.ID {
			return errors.New("network down")
		}
		return nil
	}

	w := s.do(t, http.MethodPost, "/owner/tables/1/settle", nil, true)
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Details struct {
			Settled []string `json:"settled"`
			Failed  []string `json:"failed"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{a.ID}, body.Details.Settled)
	assert.Equal(t, []string{b.ID}, body.Details.Failed)

	w = s.do(t, http.MethodGet, "/owner/notifications", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var notes []services.Notification
	decode(t, w, &notes)
	assert.NotEmpty(t, notes)
}

func TestWriteFailureMapsToBadGateway(t *testing.T) {
	s := newServer(t)
	o := s.createOrder(t, "5")
	s.store.WriteHook = func(op, id string) error { return errors.New("offline") }

	w := s.setStatus(t, o.ID, models.StatusPreparing)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	s.store.WriteHook = nil
	w = s.do(t, http.MethodDelete, "/owner/orders/missing", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettingsAndKitchen(t *testing.T) {
	s := newServer(t)
	s.createOrder(t, "外帶")

	w := s.do(t, http.MethodPatch, "/owner/settings/auto-print", gin.H{"enabled": true}, true)
	require.Equal(t, http.StatusOK, w.Code)
	var settings models.SettingsResponse
	decode(t, w, &settings)
	assert.True(t, settings.AutoPrint)
	assert.Equal(t, "latest", settings.AutoPrintMode)
	assert.True(t, settings.Live)

	w = s.do(t, http.MethodGet, "/owner/kitchen", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var queue models.KitchenQueue
	decode(t, w, &queue)
	assert.Len(t, queue.Pending, 1)

	w = s.do(t, http.MethodGet, "/owner/orders?status=pending,paid", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/owner/orders?status=lost", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthReportsDependencies(t *testing.T) {
	s := newServerWithChecks(t, map[string]controllers.HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	w := s.do(t, http.MethodGet, "/health", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Checks map[string]string `json:"checks"`
	}
	decode(t, w, &data)
	assert.Equal(t, "ok", data.Checks["postgres"])

	s = newServerWithChecks(t, map[string]controllers.HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"rabbitmq": func(context.Context) error { return errors.New("rabbitmq connection is closed") },
	})
	w = s.do(t, http.MethodGet, "/health", nil, false)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Details struct {
			Checks map[string]string `json:"checks"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Details.Checks["postgres"])
	assert.Equal(t, "rabbitmq connection is closed", body.Details.Checks["rabbitmq"])
}
