package vnpay

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	c := New(Config{
		TmnCode:    "GYMCORE1",
		HashSecret: "test_secret",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "http://localhost:8080/api/v1/payments/vnpay/return",
	})
	c.now = func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) }
	return c
}

func TestBuildPaymentURL(t *testing.T) {
	client := newTestClient()

	raw, err := client.BuildPaymentURL(PaymentRequest{
		TxnRef:    "pay-123",
		Amount:    1500000,
		OrderInfo: "Goi tap 3 thang",
		ClientIP:  "127.0.0.1",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	values := parsed.Query()

	assert.Equal(t, "150000000", values.Get("vnp_Amount"))
	assert.Equal(t, "VND", values.Get("vnp_CurrCode"))
	assert.Equal(t, "pay-123", values.Get("vnp_TxnRef"))
	assert.Equal(t, "20240315103000", values.Get("vnp_CreateDate"))
	assert.NotEmpty(t, values.Get("vnp_SecureHash"))

	// The query must be sorted by parameter name with the hash appended last.
	rawQuery := parsed.RawQuery
	hashIdx := strings.Index(rawQuery, "vnp_SecureHash=")
	require.Positive(t, hashIdx)
	assert.True(t, strings.HasPrefix(rawQuery, "vnp_Amount="))
}

func TestBuildPaymentURLRejectsBadInput(t *testing.T) {
	client := newTestClient()

	_, err := client.BuildPaymentURL(PaymentRequest{Amount: 1000})
	assert.Error(t, err)

	_, err = client.BuildPaymentURL(PaymentRequest{TxnRef: "x", Amount: 0})
	assert.Error(t, err)
}

func TestVerifyReturnRoundTrip(t *testing.T) {
	client := newTestClient()

	params := map[string]string{
		"vnp_TmnCode":      "GYMCORE1",
		"vnp_Amount":       "150000000",
		"vnp_TxnRef":       "pay-123",
		"vnp_ResponseCode": "00",
		"vnp_BankCode":     "NCB",
		"vnp_PayDate":      "20240315103500",
	}
	signature := client.sign(canonicalQuery(params))

	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	values.Set("vnp_SecureHash", signature)

	ret, err := client.VerifyReturn(values)
	require.NoError(t, err)
	assert.Equal(t, "pay-123", ret.TxnRef)
	assert.Equal(t, int64(1500000), ret.Amount)
	assert.True(t, ret.Success())
}

func TestVerifyReturnRejectsTamperedAmount(t *testing.T) {
	client := newTestClient()

	params := map[string]string{
		"vnp_Amount":       "150000000",
		"vnp_TxnRef":       "pay-123",
		"vnp_ResponseCode": "00",
	}
	signature := client.sign(canonicalQuery(params))

	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	values.Set("vnp_SecureHash", signature)
	values.Set("vnp_Amount", "999")

	_, err := client.VerifyReturn(values)
	assert.Error(t, err)
}

func TestVerifyReturnMissingSignature(t *testing.T) {
	client := newTestClient()

	_, err := client.VerifyReturn(url.Values{"vnp_TxnRef": {"x"}})
	assert.Error(t, err)
}
