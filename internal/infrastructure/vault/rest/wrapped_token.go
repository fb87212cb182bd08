package restvault

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
)

// wrappedTokenClient talks to the sidecar endpoint fronting the wrapped BTC
// token contract. The sidecar signs with the router's key, so the router is
// implicitly the sender on Transfer and Burn and the spender on TransferFrom.
type wrappedTokenClient struct {
	url        string
	httpClient *http.Client
}

func NewWrappedTokenService(baseURL string) ports.WrappedTokenService {
	return &wrappedTokenClient{
		url:        strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (w *wrappedTokenClient) post(ctx context.Context, endpoint string, body interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, w.url+endpoint, strings.NewReader(string(buf)),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Message string `json:"message"`
		}
		// nolint:errcheck
		json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, errResp.Message)
	}
	return nil
}

func (w *wrappedTokenClient) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.url+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (w *wrappedTokenClient) TransferFrom(
	ctx context.Context, from, to string, amount uint64,
) error {
	return w.post(ctx, "/v1/transfers", struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Amount uint64 `json:"amount"`
	}{from, to, amount})
}

func (w *wrappedTokenClient) Transfer(ctx context.Context, to string, amount uint64) error {
	return w.post(ctx, "/v1/transfers", struct {
		To     string `json:"to"`
		Amount uint64 `json:"amount"`
	}{to, amount})
}

func (w *wrappedTokenClient) Mint(ctx context.Context, recipient string, amount uint64) error {
	return w.post(ctx, "/v1/mints", struct {
		Recipient string `json:"recipient"`
		Amount    uint64 `json:"amount"`
	}{recipient, amount})
}

func (w *wrappedTokenClient) Burn(ctx context.Context, amount uint64) error {
	return w.post(ctx, "/v1/burns", struct {
		Amount uint64 `json:"amount"`
	}{amount})
}

func (w *wrappedTokenClient) BalanceOf(ctx context.Context, account string) (uint64, error) {
	var resp struct {
		Balance uint64 `json:"balance"`
	}
	endpoint := fmt.Sprintf("/v1/balances/%s", url.PathEscape(account))
	if err := w.get(ctx, endpoint, &resp); err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return resp.Balance, nil
}

func (w *wrappedTokenClient) Allowance(ctx context.Context, owner, spender string) (uint64, error) {
	var resp struct {
		Allowance uint64 `json:"allowance"`
	}
	endpoint := fmt.Sprintf(
		"/v1/allowances/%s/%s", url.PathEscape(owner), url.PathEscape(spender),
	)
	if err := w.get(ctx, endpoint, &resp); err != nil {
		return 0, fmt.Errorf("failed to get allowance: %w", err)
	}
	return resp.Allowance, nil
}
