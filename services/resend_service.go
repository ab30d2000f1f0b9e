package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/printcraft-studio/printcraft-api/config"
)

// OutboundEmail is a request to send one email through the provider.
type OutboundEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	ReplyTo string   `json:"reply_to,omitempty"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// InboundEmail is the provider's stored representation of a received email.
// Webhook events carry only the email's identifier; the body has to be
// fetched separately through this type.
type InboundEmail struct {
	ID      string   `json:"id"`
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

// EmailService defines the email provider operations the application needs:
// sending notifications and retrieving the body of a received email.
type EmailService interface {
	SendEmail(ctx context.Context, email *OutboundEmail) (string, error)
	GetReceivedEmail(ctx context.Context, emailID string) (*InboundEmail, error)
}

// ResendService talks to the Resend HTTP API.
type ResendService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewResendService creates a Resend client from the application config.
func NewResendService(cfg *config.Config) *ResendService {
	return &ResendService{
		apiKey:  cfg.ResendAPIKey,
		baseURL: "https://api.resend.com",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewResendServiceWithBaseURL creates a Resend client pointed at a custom
// API base URL (used by tests to target an httptest server).
func NewResendServiceWithBaseURL(apiKey, baseURL string) *ResendService {
	return &ResendService{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendEmail sends an email and returns the provider-assigned identifier.
func (s *ResendService) SendEmail(ctx context.Context, email *OutboundEmail) (string, error) {
	payload, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("failed to encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call send endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("send endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode send response: %w", err)
	}

	return result.ID, nil
}

// GetReceivedEmail fetches the full stored email for a webhook event's
// email identifier. The webhook payload itself omits the body.
func (s *ResendService) GetReceivedEmail(ctx context.Context, emailID string) (*InboundEmail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/emails/"+emailID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call email retrieval endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("email retrieval returned status %d: %s", resp.StatusCode, string(body))
	}

	var email InboundEmail
	if err := json.NewDecoder(resp.Body).Decode(&email); err != nil {
		return nil, fmt.Errorf("failed to decode email: %w", err)
	}

	return &email, nil
}
