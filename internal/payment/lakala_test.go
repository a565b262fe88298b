package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderSuccess(t *testing.T) {
	var gotBody CreateOrderRequest
	var gotAPIKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/lakala/create_order", r.URL.Path)
		gotAPIKey = r.Header.Get("X-API-Key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"msg":"success","data":{"payUrl":"https://cashier.example.com/pay?payOrderNo=LKL123","payOrderNo":"LKL123","invoice_id":"INV1"}}`))
	}))
	defer srv.Close()

	gw := NewLakalaGateway(srv.URL, "k3y")
	result, err := gw.CreateOrder(context.Background(), CreateOrderRequest{
		InvoiceID: "INV1",
		Amount:    "9.99",
		Remark:    "test order",
		NotifyURL: "https://shop.example.com/gateway/lklpay/notify",
		ReturnURL: "https://shop.example.com/gateway/lklpay/return",
	})
	require.NoError(t, err)

	assert.Equal(t, "k3y", gotAPIKey)
	assert.Equal(t, "INV1", gotBody.InvoiceID)
	assert.Equal(t, "9.99", gotBody.Amount)
	assert.Equal(t, "LKL123", result.PayOrderNo)
	assert.Equal(t, "https://cashier.example.com/pay?payOrderNo=LKL123", result.PayURL)
}

func TestCreateOrderExtractsOrderNoFromPayURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"000000","data":{"payUrl":"https://cashier.example.com/pay?payOrderNo=LKL456&x=1"}}`))
	}))
	defer srv.Close()

	gw := NewLakalaGateway(srv.URL, "")
	result, err := gw.CreateOrder(context.Background(), CreateOrderRequest{InvoiceID: "INV2", Amount: "1.00"})
	require.NoError(t, err)
	assert.Equal(t, "LKL456", result.PayOrderNo)
}

func TestCreateOrderBusinessError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":400,"msg":"金额无效"}`))
	}))
	defer srv.Close()

	gw := NewLakalaGateway(srv.URL, "")
	_, err := gw.CreateOrder(context.Background(), CreateOrderRequest{InvoiceID: "INV3", Amount: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "business error")
}

func TestCreateOrderMissingPayURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"data":{}}`))
	}))
	defer srv.Close()

	gw := NewLakalaGateway(srv.URL, "")
	_, err := gw.CreateOrder(context.Background(), CreateOrderRequest{InvoiceID: "INV4", Amount: "1.00"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing payUrl")
}

func TestCreateOrderUnconfigured(t *testing.T) {
	gw := NewLakalaGateway("", "")
	_, err := gw.CreateOrder(context.Background(), CreateOrderRequest{InvoiceID: "INV5", Amount: "1.00"})
	assert.Error(t, err)
}

func TestQueryOrderPaid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/lakala/query_order", r.URL.Path)
		_, _ = w.Write([]byte(`{"respData":{"orderStatus":2,"payStatus":"S","actualPayAmount":999}}`))
	}))
	defer srv.Close()

	gw := NewLakalaGateway(srv.URL, "")
	status, err := gw.QueryOrder(context.Background(), "LKL123")
	require.NoError(t, err)

	assert.True(t, status.Paid)
	// Cashier amounts arrive in fen.
	assert.Equal(t, "9.99", status.Amount)
}

func TestQueryOrderUnpaid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"respData":{"orderStatus":0,"payStatus":""}}`))
	}))
	defer srv.Close()

	gw := NewLakalaGateway(srv.URL, "")
	status, err := gw.QueryOrder(context.Background(), "LKL123")
	require.NoError(t, err)
	assert.False(t, status.Paid)
}

func TestFenToYuan(t *testing.T) {
	assert.Equal(t, "9.99", fenToYuan("999"))
	assert.Equal(t, "0.01", fenToYuan("1"))
	assert.Equal(t, "120.50", fenToYuan("12050"))
	assert.Equal(t, "", fenToYuan(""))
	assert.Equal(t, "", fenToYuan("abc"))
}
