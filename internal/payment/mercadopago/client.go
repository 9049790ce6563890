package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/mjsport/photostore/internal/payment"
)

const defaultBaseURL = "https://api.mercadopago.com"

// Client talks to the Mercado Pago checkout-preference and payments APIs.
type Client struct {
	accessToken string
	baseURL     string
	backURLBase string
	notifyURL   string
	http        *http.Client
}

type Config struct {
	AccessToken string
	BaseURL     string // override for tests
	BackURLBase string // e.g. https://shop.example.com/checkout
	NotifyURL   string
	HTTP        *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	hc := cfg.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		accessToken: cfg.AccessToken,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		backURLBase: strings.TrimSuffix(cfg.BackURLBase, "/"),
		notifyURL:   cfg.NotifyURL,
		http:        hc,
	}
}

func (c *Client) Name() string {
	return "mercadopago"
}

type preferenceItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type preferencePayer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type preferenceBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceReq struct {
	Items             []preferenceItem   `json:"items"`
	Payer             preferencePayer    `json:"payer"`
	ExternalReference string             `json:"external_reference"`
	BackURLs          preferenceBackURLs `json:"back_urls"`
	AutoReturn        string             `json:"auto_return"`
	NotificationURL   string             `json:"notification_url,omitempty"`
}

type preferenceResp struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

func (c *Client) CreateSession(ctx context.Context, req *payment.SessionRequest) (*payment.Session, error) {
	items := make([]preferenceItem, 0, len(req.Items))
	var sum float64
	for _, it := range req.Items {
		sum += it.UnitPrice
		items = append(items, preferenceItem{
			ID:        it.PhotoID,
			Title:     it.Title,
			Quantity:  1,
			UnitPrice: it.UnitPrice,
		})
	}

	// When a quantity discount applies, itemized prices would overcharge.
	// Collapse to a single line carrying the discounted total. The item sum
	// accumulates float noise, so compare at cent precision.
	if req.Total > 0 && math.Abs(req.Total-sum) >= 0.005 {
		items = []preferenceItem{{
			ID:        req.OrderID,
			Title:     fmt.Sprintf("Fotos (%d) - orden %s", len(req.Items), req.OrderID),
			Quantity:  1,
			UnitPrice: req.Total,
		}}
	}

	body := preferenceReq{
		Items:             items,
		Payer:             preferencePayer{Name: req.CustomerName, Email: req.CustomerEmail},
		ExternalReference: req.OrderID,
		BackURLs: preferenceBackURLs{
			Success: c.backURLBase + "/success",
			Failure: c.backURLBase + "/failure",
			Pending: c.backURLBase + "/pending",
		},
		AutoReturn:      "approved",
		NotificationURL: c.notifyURL,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preference: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, "/checkout/preferences", raw)
	if err != nil {
		return nil, err
	}

	var out preferenceResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode preference response: %w", err)
	}
	if out.ID == "" || out.InitPoint == "" {
		return nil, fmt.Errorf("incomplete preference response")
	}

	return &payment.Session{ID: out.ID, RedirectURL: out.InitPoint}, nil
}

type paymentResp struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	ExternalReference string      `json:"external_reference"`
}

func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*payment.Payment, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}

	var out paymentResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode payment response: %w", err)
	}

	return &payment.Payment{
		ID:                out.ID.String(),
		Status:            out.Status,
		ExternalReference: out.ExternalReference,
		Detail:            respBody,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, payment.ErrPaymentNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mercadopago error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return respBody, nil
}
