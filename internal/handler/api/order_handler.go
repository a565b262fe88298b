package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lklbridge/internal/models"
	"lklbridge/internal/payment"
	"lklbridge/internal/repository"
)

// OrderHandler serves the shop-facing payment API: create a cashier order,
// query its status, and display the (non-secret) gateway configuration.
type OrderHandler struct {
	gateway    payment.Gateway
	orders     *repository.OrderRepository
	settings   *repository.SettingRepository
	domain     string
	currency   string
	backendURL string
	logger     *zap.Logger
}

func NewOrderHandler(
	gateway payment.Gateway,
	orders *repository.OrderRepository,
	settings *repository.SettingRepository,
	domain, currency, backendURL string,
	logger *zap.Logger,
) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{
		gateway:    gateway,
		orders:     orders,
		settings:   settings,
		domain:     strings.TrimRight(domain, "/"),
		currency:   currency,
		backendURL: backendURL,
		logger:     logger,
	}
}

// NotifyURL returns the computed callback address the processor must POST to.
func (h *OrderHandler) NotifyURL() string {
	return h.domain + "/gateway/lklpay/notify"
}

// ReturnURL returns the computed browser-return address.
func (h *OrderHandler) ReturnURL() string {
	return h.domain + "/gateway/lklpay/return"
}

type createOrderRequest struct {
	InvoiceID string `json:"invoice_id"`
	Amount    string `json:"tradeAmount"`
	Remark    string `json:"remark"`
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"code": 400, "msg": "请求体无效"})
	}
	if req.InvoiceID == "" || req.Amount == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"code": 400, "msg": "缺少invoice_id或tradeAmount"})
	}

	result, err := h.gateway.CreateOrder(c.Request().Context(), payment.CreateOrderRequest{
		InvoiceID: req.InvoiceID,
		Amount:    req.Amount,
		Remark:    req.Remark,
		NotifyURL: h.NotifyURL(),
		ReturnURL: h.ReturnURL(),
	})
	if err != nil {
		h.logger.Error("create order failed", zap.Error(err), zap.String("invoice_id", req.InvoiceID))
		return c.JSON(http.StatusBadGateway, map[string]interface{}{"code": 502, "msg": "创建订单失败"})
	}

	order := &models.PaymentOrder{
		InvoiceID:  req.InvoiceID,
		OrderRef:   uuid.NewString(),
		PayOrderNo: result.PayOrderNo,
		Amount:     req.Amount,
		Currency:   h.settings.GetOr(models.SettingCurrency, h.currency),
		Remark:     req.Remark,
		PayURL:     result.PayURL,
	}
	if err := h.orders.Create(order); err != nil {
		h.logger.Error("persist order failed", zap.Error(err), zap.String("invoice_id", req.InvoiceID))
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"code": 500, "msg": "保存订单失败"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"msg":  "success",
		"data": map[string]interface{}{
			"order_ref":  order.OrderRef,
			"payUrl":     result.PayURL,
			"payOrderNo": result.PayOrderNo,
			"invoice_id": req.InvoiceID,
		},
	})
}

// Query handles GET /api/orders/:ref. Pending orders with a known processor
// order number are probed live.
func (h *OrderHandler) Query(c echo.Context) error {
	ref := c.Param("ref")
	order, err := h.orders.FindByOrderRef(ref)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{"code": 404, "msg": "订单不存在"})
	}

	resp := map[string]interface{}{
		"order_ref":    order.OrderRef,
		"invoice_id":   order.InvoiceID,
		"pay_order_no": order.PayOrderNo,
		"amount":       order.Amount,
		"currency":     order.Currency,
		"status":       order.Status,
		"paid_at":      order.PaidAt,
	}

	if order.Status == models.OrderStatusPending && order.PayOrderNo != "" {
		status, err := h.gateway.QueryOrder(c.Request().Context(), order.PayOrderNo)
		if err != nil {
			h.logger.Warn("order status probe failed", zap.Error(err), zap.String("pay_order_no", order.PayOrderNo))
		} else {
			resp["gateway_paid"] = status.Paid
			if status.Amount != "" {
				resp["gateway_amount"] = status.Amount
			}
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"code": 0, "msg": "success", "data": resp})
}

// Config handles GET /api/config: the operator-facing configuration display.
// Secret values are reported as set/unset, never echoed.
func (h *OrderHandler) Config(c echo.Context) error {
	backendURL := h.settings.GetOr(models.SettingBackendURL, h.backendURL)
	secret := h.settings.GetOr(models.SettingCallbackSecret, "")
	apiKey := h.settings.GetOr(models.SettingAPIKey, "")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"msg":  "success",
		"data": map[string]interface{}{
			"backend_url":         backendURL,
			"currency":            h.settings.GetOr(models.SettingCurrency, h.currency),
			"notify_url":          h.NotifyURL(),
			"return_url":          h.ReturnURL(),
			"callback_secret_set": secret != "",
			"api_key_set":         apiKey != "",
		},
	})
}
