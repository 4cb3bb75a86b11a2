package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clinicore/booking-platform/pkg/logging"
)

type razorpayClient struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewRazorpayClient builds an orders-API client authenticated with the
// key id / key secret pair.
func NewRazorpayClient(keyID, keySecret, baseURL string, logger *logging.Logger) *razorpayClient {
	if logger == nil {
		logger = logging.Default()
	}
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &razorpayClient{
		keyID:      keyID,
		keySecret:  keySecret,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (o razorpayOrder) toOrder() *Order {
	return &Order{
		ID:          o.ID,
		AmountCents: o.Amount,
		Currency:    o.Currency,
		Receipt:     o.Receipt,
		Status:      o.Status,
	}
}

func (c *razorpayClient) CreateOrder(ctx context.Context, amountCents int64, currency, receipt string) (*Order, error) {
	if c == nil || c.keyID == "" || c.keySecret == "" {
		return nil, fmt.Errorf("razorpay: missing key pair: %w", ErrProviderUnavailable)
	}

	payload, err := json.Marshal(map[string]any{
		"amount":   amountCents,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay: encode order: %w", err)
	}

	order, err := c.do(ctx, http.MethodPost, "/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (c *razorpayClient) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, fmt.Errorf("razorpay: missing order id")
	}
	return c.do(ctx, http.MethodGet, "/v1/orders/"+orderID, nil)
}

func (c *razorpayClient) do(ctx context.Context, method, path string, body *bytes.Reader) (*Order, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = body
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("razorpay: request build: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("razorpay request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("razorpay: http: %v: %w", err, ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		var errBody struct {
			Error struct {
				Description string `json:"description"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		c.logger.Error("razorpay error response", "status", resp.StatusCode, "description", errBody.Error.Description)
		return nil, fmt.Errorf("razorpay: status %d: %s: %w", resp.StatusCode, errBody.Error.Description, ErrProviderUnavailable)
	}

	var order razorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("razorpay: decode: %w", err)
	}
	return order.toOrder(), nil
}
