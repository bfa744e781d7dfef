package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	version = "2.1.0"
	command = "pay"

	// ResponseCodeSuccess is the gateway code for an approved transaction.
	ResponseCodeSuccess = "00"
)

// Client builds signed redirect URLs and verifies gateway callbacks.
type Client struct {
	tmnCode    string
	hashSecret []byte
	payURL     string
	returnURL  string
	locale     string
	now        func() time.Time
}

// Config carries merchant credentials and endpoints.
type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	Locale     string
}

// New constructs a gateway client.
func New(cfg Config) *Client {
	locale := cfg.Locale
	if locale == "" {
		locale = "vn"
	}
	return &Client{
		tmnCode:    cfg.TmnCode,
		hashSecret: []byte(cfg.HashSecret),
		payURL:     cfg.PayURL,
		returnURL:  cfg.ReturnURL,
		locale:     locale,
		now:        time.Now,
	}
}

// PaymentRequest describes a redirect to be built.
type PaymentRequest struct {
	TxnRef    string
	Amount    int64 // whole VND; the wire format carries minor units (x100)
	OrderInfo string
	ClientIP  string
}

// BuildPaymentURL returns the full signed redirect URL for the request.
func (c *Client) BuildPaymentURL(req PaymentRequest) (string, error) {
	if req.TxnRef == "" {
		return "", fmt.Errorf("txn ref required")
	}
	if req.Amount <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}
	if len(c.hashSecret) == 0 {
		return "", fmt.Errorf("hash secret missing")
	}

	params := map[string]string{
		"vnp_Version":    version,
		"vnp_Command":    command,
		"vnp_TmnCode":    c.tmnCode,
		"vnp_Amount":     strconv.FormatInt(req.Amount*100, 10),
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     req.TxnRef,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  "other",
		"vnp_Locale":     c.locale,
		"vnp_ReturnUrl":  c.returnURL,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_CreateDate": c.now().Format("20060102150405"),
	}

	query := canonicalQuery(params)
	signature := c.sign(query)
	return fmt.Sprintf("%s?%s&vnp_SecureHash=%s", c.payURL, query, signature), nil
}

// Return carries the verified fields of a gateway callback.
type Return struct {
	TxnRef        string
	Amount        int64 // whole VND
	ResponseCode  string
	TransactionNo string
	BankCode      string
	PayDate       string
}

// Success reports whether the gateway approved the transaction.
func (r Return) Success() bool {
	return r.ResponseCode == ResponseCodeSuccess
}

// VerifyReturn checks the callback signature and extracts the payment fields.
// The signature covers every vnp_ parameter except the hash itself, sorted
// and URL-encoded the same way the redirect was.
func (c *Client) VerifyReturn(values url.Values) (*Return, error) {
	received := values.Get("vnp_SecureHash")
	if received == "" {
		return nil, fmt.Errorf("missing signature")
	}

	params := make(map[string]string)
	for key := range values {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		if strings.HasPrefix(key, "vnp_") {
			params[key] = values.Get(key)
		}
	}

	expected := c.sign(canonicalQuery(params))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(received))) {
		return nil, fmt.Errorf("signature mismatch")
	}

	rawAmount, err := strconv.ParseInt(values.Get("vnp_Amount"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	return &Return{
		TxnRef:        values.Get("vnp_TxnRef"),
		Amount:        rawAmount / 100,
		ResponseCode:  values.Get("vnp_ResponseCode"),
		TransactionNo: values.Get("vnp_TransactionNo"),
		BankCode:      values.Get("vnp_BankCode"),
		PayDate:       values.Get("vnp_PayDate"),
	}, nil
}

func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key, value := range params {
		if value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+url.QueryEscape(params[key]))
	}
	return strings.Join(pairs, "&")
}

func (c *Client) sign(query string) string {
	mac := hmac.New(sha512.New, c.hashSecret)
	_, _ = mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}
