// Package replicate drives one prediction through the Replicate HTTP API:
// create it, poll it to a terminal state within a wall-clock budget, and
// reduce the result to a single classified Outcome.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anshulm/replrun/internal/extract"
)

const (
	// DefaultBaseURL is the public Replicate API root.
	DefaultBaseURL = "https://api.replicate.com/v1"

	// DefaultRequestTimeout bounds each individual HTTP call, independently
	// of the overall prediction budget.
	DefaultRequestTimeout = 15 * time.Second
)

const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// Job is one prediction request: a model version UUID and a prompt.
// The prompt may be empty; the version may not.
type Job struct {
	Version string
	Prompt  string
}

// Client runs predictions against one Replicate-compatible endpoint.
// A Client is good for exactly one Run at a time; nothing is shared or
// cached across runs.
type Client struct {
	baseURL        string
	token          string
	requestTimeout time.Duration
	httpClient     *http.Client
	logger         *slog.Logger

	// OnStatus, when set, is called after every successful poll with the
	// last-known status and the elapsed time since polling began. Hook for
	// live progress views; must not block for long.
	OnStatus func(status string, elapsed time.Duration)
}

// New creates a Client. Empty baseURL, zero requestTimeout, and nil
// httpClient/logger all fall back to sensible defaults.
func New(baseURL, token string, requestTimeout time.Duration, httpClient *http.Client, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		token:          strings.TrimSpace(token),
		requestTimeout: requestTimeout,
		httpClient:     httpClient,
		logger:         logger,
	}
}

// createRequest mirrors the Replicate prediction creation body.
type createRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type predictionInput struct {
	Prompt string `json:"prompt"`
}

// prediction mirrors the fields of a prediction resource this client reads.
// Output is kept raw so the extractor can decode it order-preserving.
type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  json.RawMessage `json:"error"`
	Logs   string          `json:"logs"`
}

// Run executes one prediction end to end and always returns an Outcome,
// never an error: every expected failure path is a classified value.
//
// timeout is the wall-clock budget for the poll loop, measured from loop
// entry; pollInterval is the pause between status fetches. Each individual
// HTTP call is additionally bounded by the client's request timeout.
// Cancelling ctx ends the poll loop early with a PredictionFailed outcome.
func (c *Client) Run(ctx context.Context, job Job, timeout, pollInterval time.Duration) Outcome {
	if c.token == "" {
		return failure(InputError, "no API token provided")
	}
	version := strings.TrimSpace(job.Version)
	if version == "" {
		return failure(InputError, "no model version provided")
	}

	pred, fail := c.create(ctx, version, job.Prompt)
	if fail != nil {
		return *fail
	}
	c.logger.Info("prediction created", "id", pred.ID, "status", pred.Status)

	pred, pollDetail := c.poll(ctx, pred, timeout, pollInterval)

	if pred.Status == statusSucceeded {
		return c.finalizeSucceeded(pred)
	}

	// Reason priority: loop failure detail, then the remote error field,
	// then remote logs, then the bare last-known status.
	reason := pollDetail
	if reason == "" {
		reason = rawText(pred.Error)
	}
	if reason == "" {
		reason = strings.TrimSpace(pred.Logs)
	}
	if reason == "" {
		reason = "status=" + pred.Status
	}
	c.logger.Warn("prediction failed", "id", pred.ID, "status", pred.Status, "reason", reason)
	return failure(PredictionFailed, "prediction failed: %s", reason)
}

// create issues the single creation request and parses the new prediction.
// On failure it returns a terminal Outcome instead.
func (c *Client) create(ctx context.Context, version, prompt string) (prediction, *Outcome) {
	body, err := json.Marshal(createRequest{
		Version: version,
		Input:   predictionInput{Prompt: prompt},
	})
	if err != nil {
		fail := failure(CreationTransportError, "marshal creation request: %v", err)
		return prediction{}, &fail
	}

	callCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(body))
	if err != nil {
		fail := failure(CreationTransportError, "build creation request: %v", err)
		return prediction{}, &fail
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fail := failure(CreationTransportError, "creating prediction: %v", err)
		return prediction{}, &fail
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		fail := failure(CreationTransportError, "reading creation response: %v", err)
		return prediction{}, &fail
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		fail := Outcome{
			Kind:       CreationRejected,
			Reason:     fmt.Sprintf("creating prediction: HTTP %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBytes)),
		}
		return prediction{}, &fail
	}

	var pred prediction
	if err := json.Unmarshal(respBytes, &pred); err != nil {
		fail := Outcome{
			Kind:   CreationResponseMalformed,
			Reason: fmt.Sprintf("prediction created but response unparseable: %v", err),
			Body:   strings.TrimSpace(string(respBytes)),
		}
		return prediction{}, &fail
	}
	if pred.ID == "" {
		fail := Outcome{
			Kind:   CreationResponseMalformed,
			Reason: "prediction response missing id",
			Body:   strings.TrimSpace(string(respBytes)),
		}
		return prediction{}, &fail
	}

	return pred, nil
}

// poll drives the status loop. It returns the last-known prediction and, if
// the loop ended on a poll failure, a non-empty detail string. A transport,
// status, or parse failure ends the loop immediately; there are no retries.
func (c *Client) poll(ctx context.Context, pred prediction, timeout, pollInterval time.Duration) (prediction, string) {
	start := time.Now()

	for !isTerminal(pred.Status) && time.Since(start) < timeout {
		select {
		case <-ctx.Done():
			return pred, fmt.Sprintf("cancelled while polling: %v", ctx.Err())
		case <-time.After(pollInterval):
		}

		latest, detail := c.fetch(ctx, pred.ID)
		if detail != "" {
			return pred, detail
		}
		pred = latest

		elapsed := time.Since(start)
		c.logger.Debug("polled prediction", "id", pred.ID, "status", pred.Status, "elapsed", elapsed.Round(time.Millisecond).String())
		if c.OnStatus != nil {
			c.OnStatus(pred.Status, elapsed)
		}
	}

	return pred, ""
}

// fetch performs one status request. A non-empty detail string means the
// poll loop must stop.
func (c *Client) fetch(ctx context.Context, id string) (prediction, string) {
	callCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+"/predictions/"+id, nil)
	if err != nil {
		return prediction{}, fmt.Sprintf("build poll request: %v", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return prediction{}, fmt.Sprintf("polling prediction: %v", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return prediction{}, fmt.Sprintf("reading poll response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return prediction{}, fmt.Sprintf("polling error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBytes)))
	}

	var pred prediction
	if err := json.Unmarshal(respBytes, &pred); err != nil {
		return prediction{}, fmt.Sprintf("poll response unparseable: %v, raw: %s", err, strings.TrimSpace(string(respBytes)))
	}

	return pred, ""
}

// finalizeSucceeded extracts text from a succeeded prediction's output.
func (c *Client) finalizeSucceeded(pred prediction) Outcome {
	raw := pred.Output
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}

	value, err := extract.Decode(raw)
	if err != nil {
		return Outcome{
			Kind:   NoTextExtracted,
			Reason: fmt.Sprintf("prediction succeeded but output undecodable: %v", err),
			Body:   string(raw),
		}
	}

	if text, ok := extract.Text(value); ok && text != "" {
		c.logger.Info("prediction succeeded", "id", pred.ID, "chars", len(text))
		return successOutcome(text)
	}

	return Outcome{
		Kind:   NoTextExtracted,
		Reason: "prediction succeeded but no text extracted",
		Body:   string(raw),
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func isTerminal(status string) bool {
	return status == statusSucceeded || status == statusFailed
}

// rawText flattens the remote error field, which may be a JSON string, an
// object, or null, into plain text.
func rawText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return trimmed
}
