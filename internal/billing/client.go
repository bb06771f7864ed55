// Package billing integrates the two purchase paths: the web-commerce
// payment service (checkout session + customer portal redirects) and the
// app-store subscription webhook.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const defaultTimeout = 15 * time.Second

// PaymentClient talks to the upstream payment service. Both operations
// return a redirect URL for the client to open.
type PaymentClient struct {
	baseURL string
	client  *http.Client
}

// NewPaymentClient creates a client authenticated with the service token.
func NewPaymentClient(baseURL, serviceToken string) *PaymentClient {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: serviceToken})
	client := oauth2.NewClient(context.Background(), src)
	client.Timeout = defaultTimeout

	return &PaymentClient{
		baseURL: baseURL,
		client:  client,
	}
}

type redirectResponse struct {
	URL string `json:"url"`
}

// CreateCheckout opens a checkout session for the user and returns the
// redirect URL.
func (c *PaymentClient) CreateCheckout(ctx context.Context, userID, email string) (string, error) {
	return c.post(ctx, "/create-checkout", map[string]string{
		"user_id": userID,
		"email":   email,
	})
}

// CustomerPortal returns the subscription-management portal URL for the
// user.
func (c *PaymentClient) CustomerPortal(ctx context.Context, userID, email string) (string, error) {
	return c.post(ctx, "/customer-portal", map[string]string{
		"user_id": userID,
		"email":   email,
	})
}

func (c *PaymentClient) post(ctx context.Context, path string, payload map[string]string) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("payment service returned status %d", resp.StatusCode)
	}

	var out redirectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode payment response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("payment service returned no url")
	}
	return out.URL, nil
}
