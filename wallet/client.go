// Package wallet talks to the platform wallet service that custodies
// entry fees and prize funds. Every call carries an idempotency memo, so
// a retried transfer can never move money twice.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

var (
	ErrInsufficientFunds = errors.New("wallet: insufficient funds")
	ErrWalletUnavailable = errors.New("wallet: service unavailable")
)

// Client is the wallet surface the tournament engine needs: collecting an
// entry fee and paying out a prize or refund. Implementations must treat
// the memo as an idempotency key.
type Client interface {
	// Debit withdraws amount (a decimal wei string) from the player's
	// wallet into the tournament escrow.
	Debit(ctx context.Context, address, amount, memo string) error
	// Pay transfers amount from escrow to the player's wallet and
	// returns the transaction id.
	Pay(ctx context.Context, address, amount, memo string) (string, error)
}

// HTTPClient implements Client against the wallet service's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type transferRequest struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
	Memo    string `json:"memo"`
}

type transferResponse struct {
	TxID  string `json:"tx_id"`
	Error string `json:"error,omitempty"`
}

func (c *HTTPClient) Debit(ctx context.Context, address, amount, memo string) error {
	_, err := c.post(ctx, "/v1/debit", transferRequest{Address: address, Amount: amount, Memo: memo})
	return err
}

func (c *HTTPClient) Pay(ctx context.Context, address, amount, memo string) (string, error) {
	resp, err := c.post(ctx, "/v1/pay", transferRequest{Address: address, Amount: amount, Memo: memo})
	if err != nil {
		return "", err
	}
	return resp.TxID, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload transferRequest) (*transferResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wallet: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("wallet: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	// The memo doubles as the idempotency key on the wire.
	req.Header.Set("Idempotency-Key", payload.Memo)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("wallet request failed", "path", path, "memo", payload.Memo, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrWalletUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrWalletUnavailable, err)
	}

	var decoded transferResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("%w: decode response: %v", ErrWalletUnavailable, err)
		}
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return &decoded, nil
	case resp.StatusCode == http.StatusPaymentRequired:
		return nil, fmt.Errorf("%w: %s", ErrInsufficientFunds, decoded.Error)
	default:
		c.logger.Error("wallet rejected transfer",
			"path", path, "memo", payload.Memo, "status", resp.StatusCode, "body", decoded.Error)
		return nil, fmt.Errorf("%w: status %d: %s", ErrWalletUnavailable, resp.StatusCode, decoded.Error)
	}
}
