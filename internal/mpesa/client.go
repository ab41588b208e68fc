package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/baharkarakas/servicehub-backend/internal/config"
)

const (
	tokenPath       = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath     = "/mpesa/stkpush/v1/processrequest"
	transactionType = "CustomerPayBillOnline"

	maxDescLen      = 13
	maxReferenceLen = 12
)

var nairobi = loadNairobi()

func loadNairobi() *time.Location {
	if loc, err := time.LoadLocation("Africa/Nairobi"); err == nil {
		return loc
	}
	return time.FixedZone("EAT", 3*60*60)
}

// UpstreamError carries whatever Daraja sent back so callers can pass it through.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mpesa %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("mpesa %s: status %d: %s", e.Op, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type PushRequest struct {
	Amount           int64
	Phone            string // already normalized
	AccountReference string
	Description      string
}

type PushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type stkPushBody struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// Client talks to the Daraja API. It holds no token state.
type Client struct {
	cfg  config.MpesaConfig
	http *http.Client
	now  func() time.Time
}

func NewClient(cfg config.MpesaConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		now:  time.Now,
	}
}

// Timestamp formats t as YYYYMMDDHHmmss in Nairobi time.
func Timestamp(t time.Time) string {
	return t.In(nairobi).Format("20060102150405")
}

func Password(shortCode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
}

// SanitizeDescription replaces & and cuts to Daraja's TransactionDesc limit.
func SanitizeDescription(s string) string {
	return truncate(strings.ReplaceAll(s, "&", "and"), maxDescLen)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

// Token fetches a fresh OAuth access token.
func (c *Client) Token(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	body, err := c.do(req, "token")
	if err != nil {
		return "", err
	}
	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.AccessToken == "" {
		return "", &UpstreamError{Op: "token", Status: http.StatusOK, Body: string(body), Err: err}
	}
	return out.AccessToken, nil
}

// STKPush authenticates and sends one Lipa Na M-Pesa Online request.
func (c *Client) STKPush(ctx context.Context, in PushRequest) (PushResponse, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return PushResponse{}, err
	}

	ts := Timestamp(c.now())
	payload, err := json.Marshal(stkPushBody{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          Password(c.cfg.ShortCode, c.cfg.Passkey, ts),
		Timestamp:         ts,
		TransactionType:   transactionType,
		Amount:            in.Amount,
		PartyA:            in.Phone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       in.Phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  truncate(in.AccountReference, maxReferenceLen),
		TransactionDesc:   SanitizeDescription(in.Description),
	})
	if err != nil {
		return PushResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+stkPushPath, bytes.NewReader(payload))
	if err != nil {
		return PushResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, "stkpush")
	if err != nil {
		return PushResponse{}, err
	}
	var out PushResponse
	if err := json.Unmarshal(body, &out); err != nil || out.CheckoutRequestID == "" {
		return PushResponse{}, &UpstreamError{Op: "stkpush", Status: http.StatusOK, Body: string(body), Err: err}
	}
	return out, nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &UpstreamError{Op: op, Status: res.StatusCode, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &UpstreamError{Op: op, Status: res.StatusCode, Body: string(body)}
	}
	return body, nil
}
