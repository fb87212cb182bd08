package restvault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
)

// vaultClient talks to the bridge sidecar exposing the vault contract over
// a JSON HTTP API.
type vaultClient struct {
	url        string
	httpClient *http.Client
}

func NewVaultService(baseURL string) ports.VaultService {
	return &vaultClient{
		url:        strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (v *vaultClient) makeRequest(
	ctx context.Context, method, endpoint string, body interface{},
) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, v.url+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return bodyBytes, nil
}

type payoutRequest struct {
	Token     string `json:"token"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

func (v *vaultClient) PayUnderlying(
	ctx context.Context, token, recipient string, amount *big.Int,
) error {
	body := payoutRequest{Token: token, Recipient: recipient, Amount: amount.String()}
	if _, err := v.makeRequest(ctx, http.MethodPost, "/v1/payouts", body); err != nil {
		return fmt.Errorf("failed to pay underlying: %w", err)
	}
	return nil
}

func (v *vaultClient) BalanceOf(ctx context.Context, token string) (*big.Int, error) {
	data, err := v.makeRequest(
		ctx, http.MethodGet, fmt.Sprintf("/v1/reserves/%s", url.PathEscape(token)), nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get reserve: %w", err)
	}

	var resp struct {
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reserve: %w", err)
	}
	balance, ok := new(big.Int).SetString(resp.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid reserve balance %q", resp.Balance)
	}
	return balance, nil
}

func (v *vaultClient) DecimalsOf(ctx context.Context, token string) (uint8, error) {
	data, err := v.makeRequest(
		ctx, http.MethodGet, fmt.Sprintf("/v1/tokens/%s", url.PathEscape(token)), nil,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to get token info: %w", err)
	}

	var resp struct {
		Decimals uint8 `json:"decimals"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("failed to unmarshal token info: %w", err)
	}
	return resp.Decimals, nil
}
