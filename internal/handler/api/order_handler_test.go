package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lklbridge/internal/models"
	"lklbridge/internal/payment"
	"lklbridge/internal/repository"
)

type stubGateway struct{}

func (stubGateway) Name() string { return "lakala" }

func (stubGateway) CreateOrder(_ context.Context, req payment.CreateOrderRequest) (*payment.CreateOrderResult, error) {
	return &payment.CreateOrderResult{
		InvoiceID:  req.InvoiceID,
		PayURL:     "https://cashier.example.com/pay?payOrderNo=LKL1",
		PayOrderNo: "LKL1",
	}, nil
}

func (stubGateway) QueryOrder(_ context.Context, _ string) (*payment.OrderStatus, error) {
	return &payment.OrderStatus{}, nil
}

func newConfigHandler(t *testing.T) *OrderHandler {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PaymentOrder{}, &models.GatewaySetting{}))

	return NewOrderHandler(
		stubGateway{},
		repository.NewOrderRepository(db),
		repository.NewSettingRepository(db),
		"https://shop.example.com",
		"CNY",
		"https://backend.example.com",
		nil,
	)
}

func getConfig(t *testing.T, h *OrderHandler) map[string]interface{} {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Config(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestConfigShowsEnvBackendURLWhenUnset(t *testing.T) {
	h := newConfigHandler(t)
	data := getConfig(t, h)

	assert.Equal(t, "https://backend.example.com", data["backend_url"])
	assert.Equal(t, "CNY", data["currency"])
	assert.Equal(t, "https://shop.example.com/gateway/lklpay/notify", data["notify_url"])
	assert.Equal(t, false, data["callback_secret_set"])
}

func TestConfigPrefersStoredBackendURL(t *testing.T) {
	h := newConfigHandler(t)
	require.NoError(t, h.settings.Set(models.SettingBackendURL, "https://other.example.com"))
	require.NoError(t, h.settings.Set(models.SettingCallbackSecret, "s3cr3t"))

	data := getConfig(t, h)
	assert.Equal(t, "https://other.example.com", data["backend_url"])
	assert.Equal(t, true, data["callback_secret_set"])
	// Secret values never appear in the display.
	assert.NotContains(t, data, "callback_secret")
}
