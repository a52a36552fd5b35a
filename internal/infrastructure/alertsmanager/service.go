package alertsmanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/syscoin/sysasset/internal/core/ports"
)

const (
	serviceName = "sysasset"
	severity    = "info"

	maxRetries = 5
)

type Alert struct {
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
	StartsAt    time.Time         `json:"startsAt"`
}

type service struct {
	baseUrl     string
	explorerUrl string
	httpClient  *http.Client
}

// NewService returns an AlertManager publisher. The explorer url, if any, is
// used to link the txs in the alerts.
func NewService(alertManagerURL, explorerURL string) ports.Alerts {
	return &service{
		baseUrl:     alertManagerURL,
		explorerUrl: strings.TrimSuffix(explorerURL, "/"),
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
	case ports.TxBroadcast, ports.TxVerified:
		if topic == ports.TxBroadcast {
			annotations["firing_title"] = "📡 Asset Tx Broadcast"
		} else {
			annotations["firing_title"] = "✅ Asset Tx Verified"
		}
		m, ok := message.(ports.TxAlert)
		if !ok {
			return fmt.Errorf("invalid message type: %T", message)
		}
		desc = formatTxAlert(s.explorerUrl, m)
		labels["txid"] = m.Txid
		labels["kind"] = m.Kind
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

	for attempt := range maxRetries {
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

func formatTxAlert(explorerUrl string, data ports.TxAlert) string {
	lines := make([]string, 0)
	if explorerUrl != "" {
		lines = append(lines, fmt.Sprintf("%s/tx/%s", explorerUrl, data.Txid))
	}
	lines = append(lines, fmt.Sprintf("\n*Txid:* `%s`", data.Txid))
	lines = append(lines, fmt.Sprintf("*Kind:* %s", data.Kind))
	lines = append(lines, fmt.Sprintf("*Fee:* %s", formatSYS(data.Fee)))

	if len(data.Assets) > 0 {
		guids := make([]uint64, 0, len(data.Assets))
		for guid := range data.Assets {
			guids = append(guids, guid)
		}
		slices.Sort(guids)

		lines = append(lines, "\n*Assets:*")
		for _, guid := range guids {
			lines = append(lines, fmt.Sprintf("• %d: %d", guid, data.Assets[guid]))
		}
	}
	return strings.Join(lines, "\n")
}

func formatGenericAlert(data map[string]any) string {
	lines := make([]string, 0)
	for key, value := range data {
		lines = append(lines, fmt.Sprintf("• %s: %v", key, value))
	}
	return strings.Join(lines, "\n")
}

func formatSYS(sats int64) string {
	const satsPerSYS = 100_000_000

	sign := ""
	if sats < 0 {
		sign = "-"
		sats = -sats
	}
	whole := sats / satsPerSYS
	frac := sats % satsPerSYS

	if frac == 0 {
		return fmt.Sprintf("%s%d SYS", sign, whole)
	}

	// Format fractional part as 8-digit zero-padded
	f := fmt.Sprintf("%08d", frac)

	// Trim trailing zeros
	f = strings.TrimRight(f, "0")

	return fmt.Sprintf("%s%d.%s SYS", sign, whole, f)
}
