package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPParaphraser calls the external paraphrase collaborator over JSON.
type HTTPParaphraser struct {
	URL    string
	Client *http.Client
}

func NewHTTPParaphraser(url string, timeout time.Duration) *HTTPParaphraser {
	return &HTTPParaphraser{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

type rewriteRequest struct {
	Body        string `json:"body"`
	ContactName string `json:"contact_name"`
	ProfileID   int    `json:"profile_id"`
}

type rewriteResponse struct {
	Body string `json:"body"`
}

func (p *HTTPParaphraser) Rewrite(ctx context.Context, body, contactName string, profileID int) (string, error) {
	payload, err := json.Marshal(rewriteRequest{Body: body, ContactName: contactName, ProfileID: profileID})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paraphrase service returned %d", resp.StatusCode)
	}

	var out rewriteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Body, nil
}
