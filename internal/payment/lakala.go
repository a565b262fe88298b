package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lklbridge/internal/pkg/httpclient"
)

// MethodTag identifies this gateway in fulfillment records and order rows.
const MethodTag = "LklPay"

// LakalaGateway implements the Gateway interface for the Lakala aggregated
// cashier, reached through the processor-facing backend.
type LakalaGateway struct {
	baseURL   string
	channelID string
	client    *httpclient.Client
}

func NewLakalaGateway(baseURL, apiKey string) *LakalaGateway {
	client := httpclient.New().WithTimeout(30 * time.Second)
	if apiKey != "" {
		client = client.WithHeader("X-API-Key", apiKey)
	}
	return &LakalaGateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		channelID: "15",
		client:    client,
	}
}

func (g *LakalaGateway) Name() string {
	return "lakala"
}

func (g *LakalaGateway) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if g.baseURL == "" {
		return nil, fmt.Errorf("lakala backend URL not configured")
	}

	resp, err := g.client.Post(ctx, g.baseURL+"/lakala/create_order", req)
	if err != nil {
		return nil, fmt.Errorf("lakala create order failed: %w", err)
	}

	var result struct {
		Code json.RawMessage `json:"code"`
		Msg  string          `json:"msg"`
		Data struct {
			PayURL     string `json:"payUrl"`
			PayOrderNo string `json:"payOrderNo"`
			InvoiceID  string `json:"invoice_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("lakala parse error: %w", err)
	}

	// The backend emits the code as a number or a string.
	code := strings.Trim(string(result.Code), `"`)
	if code != "0" && code != "000000" && code != "200" {
		msg := result.Msg
		if msg == "" {
			msg = "create order rejected"
		}
		return nil, fmt.Errorf("lakala business error: code=%s msg=%s", code, msg)
	}
	if result.Data.PayURL == "" {
		return nil, fmt.Errorf("lakala response missing payUrl")
	}

	payOrderNo := result.Data.PayOrderNo
	if payOrderNo == "" {
		payOrderNo = extractPayOrderNo(result.Data.PayURL)
	}

	return &CreateOrderResult{
		InvoiceID:  req.InvoiceID,
		PayURL:     result.Data.PayURL,
		PayOrderNo: payOrderNo,
	}, nil
}

func (g *LakalaGateway) QueryOrder(ctx context.Context, payOrderNo string) (*OrderStatus, error) {
	if g.baseURL == "" {
		return nil, fmt.Errorf("lakala backend URL not configured")
	}

	body := map[string]string{
		"payOrderNo": payOrderNo,
		"channelId":  g.channelID,
	}
	resp, err := g.client.Post(ctx, g.baseURL+"/lakala/query_order", body)
	if err != nil {
		return nil, fmt.Errorf("lakala query order failed: %w", err)
	}

	var result struct {
		RespData struct {
			OrderStatus     json.RawMessage `json:"orderStatus"`
			PayStatus       string          `json:"payStatus"`
			ActualPayAmount json.RawMessage `json:"actualPayAmount"`
		} `json:"respData"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("lakala query parse error: %w", err)
	}

	// Statuses arrive as numbers or strings depending on the channel.
	orderStatus := strings.Trim(string(result.RespData.OrderStatus), `"`)
	payStatus := strings.ToUpper(result.RespData.PayStatus)
	paid := orderStatus == "2" || payStatus == "S"

	return &OrderStatus{
		Paid:       paid,
		Amount:     fenToYuan(strings.Trim(string(result.RespData.ActualPayAmount), `"`)),
		PayStatus:  payStatus,
		OrderState: orderStatus,
	}, nil
}

// extractPayOrderNo digs the order number out of the pay URL query when the
// backend omits it from the response body.
func extractPayOrderNo(payURL string) string {
	decoded, err := url.QueryUnescape(payURL)
	if err != nil {
		decoded = payURL
	}
	parsed, err := url.Parse(decoded)
	if err != nil {
		return ""
	}
	q := parsed.Query()
	for _, key := range []string{"payOrderNo", "payorderno", "pay_order_no"} {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	return ""
}

// fenToYuan converts a cashier amount in fen to a yuan string with two
// decimal places. Returns "" when the input is absent or unparsable.
func fenToYuan(fen string) string {
	if fen == "" {
		return ""
	}
	n, err := strconv.ParseFloat(fen, 64)
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(n/100, 'f', 2, 64)
}
