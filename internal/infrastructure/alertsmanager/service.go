package alertsmanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
)

const (
	serviceName = "unibtcd"
	severity    = "info"

	maxRetries = 5
)

type Alert struct {
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
	StartsAt    time.Time         `json:"startsAt"`
}

type service struct {
	baseUrl    string
	httpClient *http.Client
}

func NewService(alertManagerURL string) ports.Alerts {
	return &service{
		baseUrl: alertManagerURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *service) Publish(ctx context.Context, topic ports.Topic, message any) error {
	labels := map[string]string{
		"alertname": string(topic),
		"service":   serviceName,
		"severity":  severity,
	}

	desc := ""
	annotations := map[string]string{}
	switch topic {
	case ports.RedeemsMatured:
		annotations["firing_title"] = "⏰ Redeems Matured"
		m, ok := message.(ports.RedeemsMaturedAlert)
		if !ok {
			return fmt.Errorf("invalid message type: %T", message)
		}
		desc = formatRedeemsMaturedAlert(m)
		labels["recipient"] = m.Recipient
		labels["token"] = m.Token
	case ports.LiquidityShortfall:
		annotations["firing_title"] = "🚨 Liquidity Shortfall"
		labels["severity"] = "critical"
		m, ok := message.(ports.LiquidityShortfallAlert)
		if !ok {
			return fmt.Errorf("invalid message type: %T", message)
		}
		desc = formatLiquidityShortfallAlert(m)
		labels["token"] = m.Token
	case ports.LargeRedemption:
		annotations["firing_title"] = "💰 Large Redemption"
		m, ok := message.(ports.LargeRedemptionAlert)
		if !ok {
			return fmt.Errorf("invalid message type: %T", message)
		}
		desc = formatLargeRedemptionAlert(m)
		labels["recipient"] = m.Recipient
		labels["token"] = m.Token
	default:
		annotations["firing_title"] = fmt.Sprintf("🔔 %s", topic)
		desc = formatGenericAlert(map[string]any{"event": message})
	}

	annotations["description"] = desc
	alert := Alert{
		Labels:      labels,
		Annotations: annotations,
		StartsAt:    time.Now(),
	}

	if err := s.sendAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to send alert to AlertManager: %w", err)
	}

	return nil
}

func (s *service) sendAlert(ctx context.Context, alerts Alert) error {
	payload, err := json.Marshal([]Alert{alerts})
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	baseDelay := 100 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", s.baseUrl, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			// Network error - retry with backoff
			if attempt < maxRetries-1 {
				// exponential: 100ms, 200ms, 400ms, 800ms, 1600ms
				delay := baseDelay * time.Duration(1<<uint(attempt))

				select {
				case <-time.After(delay):
					continue
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return fmt.Errorf("failed to send alert after %d attempts: %w", maxRetries, err)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_ = resp.Body.Close()
			return nil
		}

		_ = resp.Body.Close()

		// Retry on 5xx (server errors), but not on 4xx (client errors)
		if resp.StatusCode >= 500 {
			if attempt < maxRetries-1 {
				delay := baseDelay * time.Duration(1<<uint(attempt))

				select {
				case <-time.After(delay):
					continue
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}

		// 4xx error or final 5xx error
		return fmt.Errorf(
			"failed to send alert to AlertManager with status %d after %d attempts",
			resp.StatusCode, attempt+1,
		)
	}

	return fmt.Errorf("failed to send alert after %d attempts", maxRetries)
}

func formatRedeemsMaturedAlert(data ports.RedeemsMaturedAlert) string {
	lines := make([]string, 0)
	lines = append(lines, fmt.Sprintf("*Recipient:* `%s`", data.Recipient))
	lines = append(lines, fmt.Sprintf("*Token:* `%s`", data.Token))
	lines = append(lines, fmt.Sprintf("• Queue index: %d", data.Index))
	lines = append(lines, fmt.Sprintf("• Amount owed: %s", formatBTC(data.Amount)))
	return strings.Join(lines, "\n")
}

func formatLiquidityShortfallAlert(data ports.LiquidityShortfallAlert) string {
	lines := make([]string, 0)
	lines = append(lines, fmt.Sprintf("*Token:* `%s`", data.Token))
	lines = append(lines, fmt.Sprintf("• Claimable owed: %s", formatBTC(data.Owed)))
	lines = append(lines, fmt.Sprintf("• Vault reserve: %s (native units)", data.Reserve))
	return strings.Join(lines, "\n")
}

func formatLargeRedemptionAlert(data ports.LargeRedemptionAlert) string {
	lines := make([]string, 0)
	lines = append(lines, fmt.Sprintf("*Recipient:* `%s`", data.Recipient))
	lines = append(lines, fmt.Sprintf("*Token:* `%s`", data.Token))
	lines = append(lines, fmt.Sprintf("• Amount: %s", formatBTC(data.Amount)))
	return strings.Join(lines, "\n")
}

func formatGenericAlert(data map[string]any) string {
	lines := make([]string, 0)
	for key, value := range data {
		lines = append(lines, fmt.Sprintf("• %s: %v", key, value))
	}
	return strings.Join(lines, "\n")
}

func formatBTC(sats uint64) string {
	const satsPerBTC = 100_000_000

	whole := sats / satsPerBTC
	frac := sats % satsPerBTC

	if frac == 0 {
		return fmt.Sprintf("%d BTC", whole)
	}

	// Format fractional part as 8-digit zero-padded
	f := fmt.Sprintf("%08d", frac)

	// Trim trailing zeros
	f = strings.TrimRight(f, "0")

	return fmt.Sprintf("%d.%s BTC", whole, f)
}
