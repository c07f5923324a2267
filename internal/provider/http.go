// internal/provider/http.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPAdapter talks to an HTTP-API messaging gateway ("api" family).
// The gateway is expected to be already authenticated for the tenant.
type HTTPAdapter struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPAdapter(baseURL, token string) *HTTPAdapter {
	return &HTTPAdapter{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *HTTPAdapter) Family() string { return "api" }

type gatewaySendRequest struct {
	To       string `json:"to"`
	Body     string `json:"body"`
	MediaURL string `json:"media_url,omitempty"`
}

type gatewaySendResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

func (a *HTTPAdapter) Send(ctx context.Context, to string, msg Message) (string, error) {
	payload, err := json.Marshal(gatewaySendRequest{To: to, Body: msg.Body, MediaURL: msg.MediaURL})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.Token)

	resp, err := a.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out gatewaySendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gateway response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return out.MessageID, nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		// The gateway rejected the recipient itself; retrying cannot help.
		return "", Permanent("gateway rejected recipient %s: %s", to, out.Error)
	default:
		return "", fmt.Errorf("gateway returned %d: %s", resp.StatusCode, out.Error)
	}
}

var _ Adapter = (*HTTPAdapter)(nil)
