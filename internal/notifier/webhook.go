package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anshulm/replrun/internal/replicate"
)

// Ensure WebhookNotifier implements Notifier.
var _ Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier posts the finished outcome to a configured URL as a small
// JSON payload. One POST per run, no retries.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebhookNotifier returns a notifier that posts each outcome to url.
func NewWebhookNotifier(url string, httpClient *http.Client, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: httpClient,
		logger:     logger,
	}
}

// webhookPayload is the wire format delivered to the webhook.
type webhookPayload struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Text     string `json:"text,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Notify posts the outcome. A non-2xx response is an error; the caller
// decides whether that is fatal (the CLI only logs it).
func (n *WebhookNotifier) Notify(outcome replicate.Outcome) error {
	payload := webhookPayload{
		Kind:     outcome.Kind.String(),
		Severity: severityLabel(outcome.Severity()),
	}
	if outcome.OK() {
		payload.Text = outcome.Text
	} else {
		payload.Reason = outcome.Message()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	resp, err := n.httpClient.Post(n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post outcome webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("outcome webhook returned %d", resp.StatusCode)
	}

	n.logger.Info("outcome webhook sent", "kind", payload.Kind)
	return nil
}

func severityLabel(s replicate.Severity) string {
	switch s {
	case replicate.SeverityOK:
		return "success"
	case replicate.SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}
