package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lklbridge/internal/dedup"
	"lklbridge/internal/fulfillment"
	"lklbridge/internal/models"
	"lklbridge/internal/payment"
	"lklbridge/internal/sign"
)

// Plain-text bodies the cashier's notify sender expects. The contract is the
// remote processor's, not ours: HTTP 200 with `success` stops its retries,
// anything else keeps them coming.
const (
	respSuccess          = "success"
	respMissingParams    = "缺少必要参数"
	respInvalidSignature = "签名验证失败"
	respFulfillFailed    = "订单处理失败"
	respReturnOK         = "ok"
)

// SettingSource supplies operator-editable gateway settings, falling back to
// the given default when a setting is unset.
type SettingSource interface {
	GetOr(name, def string) string
}

// Auditor records one callback outcome. Implemented by repository.AuditRepository.
type Auditor interface {
	Record(invoiceID, transID, ip, outcome, detail string) error
}

// NotifyConfig carries the environment-level defaults that DB settings may
// override at request time.
type NotifyConfig struct {
	CallbackSecret  string
	DefaultCurrency string
	ReturnURL       string
}

// NotifyHandler receives the cashier's asynchronous payment notifications.
type NotifyHandler struct {
	cfg       NotifyConfig
	settings  SettingSource
	verifier  *sign.Verifier
	store     dedup.Store
	fulfiller fulfillment.Fulfiller
	audit     Auditor
	logger    *zap.Logger
}

func NewNotifyHandler(
	cfg NotifyConfig,
	settings SettingSource,
	verifier *sign.Verifier,
	store dedup.Store,
	fulfiller fulfillment.Fulfiller,
	audit Auditor,
	logger *zap.Logger,
) *NotifyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotifyHandler{
		cfg:       cfg,
		settings:  settings,
		verifier:  verifier,
		store:     store,
		fulfiller: fulfiller,
		audit:     audit,
		logger:    logger,
	}
}

// notice is the canonical form of an inbound callback, whichever encoding it
// arrived in.
type notice struct {
	InvoiceID string
	TransID   string
	Amount    string
	Currency  string
	Sign      string
}

// signFields rebuilds the wire-format field map the sender signed. Canonical
// JSON names are used for both encodings; absent values stay empty strings.
func (n notice) signFields() map[string]string {
	return map[string]string{
		"invoice_id":  n.InvoiceID,
		"payOrderNo":  n.TransID,
		"tradeAmount": n.Amount,
		"currency":    n.Currency,
	}
}

// Notify handles POST /gateway/lklpay/notify.
func (h *NotifyHandler) Notify(c echo.Context) error {
	ctx := c.Request().Context()
	ip := c.RealIP()

	n := h.parseNotice(c)

	if n.InvoiceID == "" || n.TransID == "" || n.Amount == "" {
		h.logger.Warn("notify rejected: missing params",
			zap.String("invoice_id", n.InvoiceID),
			zap.String("trans_id", n.TransID),
			zap.String("ip", ip),
		)
		h.record(n, ip, models.OutcomeMissingParams, "")
		return c.String(http.StatusOK, respMissingParams)
	}

	secret := h.setting(models.SettingCallbackSecret, h.cfg.CallbackSecret)
	if !h.verifier.Verify(n.signFields(), n.Sign, secret) {
		h.record(n, ip, models.OutcomeInvalidSignature, "")
		return c.String(http.StatusOK, respInvalidSignature)
	}

	already, err := h.store.Claim(ctx, n.TransID)
	if err != nil {
		// Store failure: nothing was fulfilled, let the processor retry.
		h.logger.Error("notify dedupe store failure", zap.Error(err), zap.String("trans_id", n.TransID))
		return c.String(http.StatusInternalServerError, respFulfillFailed)
	}
	if already {
		h.logger.Info("notify duplicate acknowledged", zap.String("trans_id", n.TransID))
		h.record(n, ip, models.OutcomeDuplicate, "")
		// Success-shaped so the processor stops retrying; no re-fulfillment.
		return c.String(http.StatusOK, respSuccess)
	}

	rec := fulfillment.Record{
		InvoiceID: n.InvoiceID,
		TransID:   n.TransID,
		Currency:  n.Currency,
		Payment:   payment.MethodTag,
		Amount:    n.Amount,
		PaidTime:  time.Now(),
	}
	if err := h.fulfiller.OrderPaid(ctx, rec); err != nil {
		h.logger.Error("notify fulfillment failed", zap.Error(err), zap.String("invoice_id", n.InvoiceID))
		if relErr := h.store.Release(ctx, n.TransID); relErr != nil {
			h.logger.Error("notify claim release failed", zap.Error(relErr), zap.String("trans_id", n.TransID))
		}
		h.record(n, ip, models.OutcomeFulfillFailed, err.Error())
		return c.String(http.StatusInternalServerError, respFulfillFailed)
	}

	h.logger.Info("notify accepted",
		zap.String("invoice_id", n.InvoiceID),
		zap.String("trans_id", n.TransID),
		zap.String("amount", n.Amount),
	)
	h.record(n, ip, models.OutcomeAccepted, "")
	return c.String(http.StatusOK, respSuccess)
}

// Return handles the synchronous browser redirect after hosted checkout.
// Carries no payment authority and never touches the dedupe store.
func (h *NotifyHandler) Return(c echo.Context) error {
	target := h.setting(models.SettingReturnURL, h.cfg.ReturnURL)
	if target != "" {
		return c.Redirect(http.StatusFound, target)
	}
	return c.String(http.StatusOK, respReturnOK)
}

// parseNotice normalizes the two inbound encodings into one canonical
// structure, JSON fields taking precedence per field.
func (h *NotifyHandler) parseNotice(c echo.Context) notice {
	req := c.Request()

	var raw []byte
	if req.Body != nil {
		raw, _ = io.ReadAll(req.Body)
	}

	jsonVals := map[string]string{}
	if len(raw) > 0 {
		dec := json.NewDecoder(strings.NewReader(string(raw)))
		dec.UseNumber()
		var body map[string]interface{}
		if err := dec.Decode(&body); err == nil {
			for k, v := range body {
				jsonVals[k] = stringify(v)
			}
		}
	}

	var formVals url.Values
	ct := req.Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationForm) {
		formVals, _ = url.ParseQuery(string(raw))
	}

	pick := func(jsonKey, formKey string) string {
		if v, ok := jsonVals[jsonKey]; ok && v != "" {
			return v
		}
		return formVals.Get(formKey)
	}

	currency := pick("currency", "currency")
	if currency == "" {
		currency = h.setting(models.SettingCurrency, h.cfg.DefaultCurrency)
	}

	return notice{
		InvoiceID: pick("invoice_id", "invoice_id"),
		TransID:   pick("payOrderNo", "trans_id"),
		Amount:    pick("tradeAmount", "amount_in"),
		Currency:  currency,
		Sign:      pick(sign.SignField, sign.SignField),
	}
}

func (h *NotifyHandler) setting(name, def string) string {
	if h.settings == nil {
		return def
	}
	return h.settings.GetOr(name, def)
}

func (h *NotifyHandler) record(n notice, ip, outcome, detail string) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Record(n.InvoiceID, n.TransID, ip, outcome, detail); err != nil {
		h.logger.Warn("callback audit write failed", zap.Error(err))
	}
}

// stringify renders a decoded JSON value the way the sender serialized it.
// Nulls become empty strings, never the literal "null".
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
