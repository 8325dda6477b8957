package external

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"gatepass/internal/models"

	"github.com/google/uuid"
)

// PaymentClient moves funds through the payment gateway. It backs the
// engine's refund, resale payout and escrow withdrawal transfers.
type PaymentClient struct {
	baseURL    string
	merchantID string
	password   string
	currency   string
	httpClient *http.Client
}

type PaymentConfig struct {
	BaseURL    string
	MerchantID string
	Password   string
	Currency   string
	Timeout    time.Duration
}

type transferRequest struct {
	MerchantID string `json:"merchantId"`
	Token      string `json:"token"`
	OrderID    string `json:"orderId"`
	Account    string `json:"account"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

type transferResponse struct {
	Success    bool   `json:"success"`
	TransferID string `json:"transferId"`
	OrderID    string `json:"orderId"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
}

func NewPaymentClient(cfg PaymentConfig) *PaymentClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "KZT"
	}

	return &PaymentClient{
		baseURL:    cfg.BaseURL,
		merchantID: cfg.MerchantID,
		password:   cfg.Password,
		currency:   cfg.Currency,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// generateToken signs a request: parameters sorted alphabetically,
// values concatenated, SHA-256 over the result.
func (pc *PaymentClient) generateToken(params map[string]string) string {
	params["MerchantId"] = pc.merchantID
	params["Password"] = pc.password

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tokenString string
	for _, key := range keys {
		tokenString += params[key]
	}

	hash := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(hash[:])
}

// Transfer pays amount to the given account. Implements
// engine.FundMover. Failures are terminal; the engine rolls the
// triggering operation back and never retries.
func (pc *PaymentClient) Transfer(ctx context.Context, to models.AccountID, amount uint64) error {
	orderID := uuid.New().String()

	token := pc.generateToken(map[string]string{
		"Account":  string(to),
		"Amount":   strconv.FormatUint(amount, 10),
		"Currency": pc.currency,
		"OrderId":  orderID,
	})

	req := transferRequest{
		MerchantID: pc.merchantID,
		Token:      token,
		OrderID:    orderID,
		Account:    string(to),
		Amount:     int64(amount),
		Currency:   pc.currency,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.baseURL+"/transfers", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build transfer request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := pc.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("transfer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transfer request returned status %d", resp.StatusCode)
	}

	var result transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode transfer response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("transfer rejected by gateway: %s", result.Message)
	}

	return nil
}
