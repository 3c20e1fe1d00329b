// Package notify sends emails through GOV.UK Notify and reminds suppliers
// with incomplete framework applications.
package notify

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultBaseURL is the Notify API endpoint.
const DefaultBaseURL = "https://api.notifications.service.gov.uk"

const (
	uuidLength = 36
	// An API key ends with "<service id>-<secret>", both uuids.
	minKeyLength = 2*uuidLength + 1
)

// Client is a minimal GOV.UK Notify API client.
type Client struct {
	baseURL    string
	serviceID  string
	secret     string
	httpClient *http.Client
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Notify endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient parses the service id and secret out of an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if len(apiKey) < minKeyLength {
		return nil, &KeyError{Message: "key is too short"}
	}
	serviceID := apiKey[len(apiKey)-minKeyLength : len(apiKey)-uuidLength-1]
	if err := uuid.Validate(serviceID); err != nil {
		return nil, &KeyError{Message: "service id is not a uuid"}
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		serviceID:  serviceID,
		secret:     apiKey[len(apiKey)-uuidLength:],
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ServiceID returns the Notify service the key belongs to.
func (c *Client) ServiceID() string {
	return c.serviceID
}

type emailRequest struct {
	EmailAddress    string            `json:"email_address"`
	TemplateID      string            `json:"template_id"`
	Personalisation map[string]string `json:"personalisation,omitempty"`
	Reference       string            `json:"reference,omitempty"`
}

type emailResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Errors []struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) token() (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Issuer:   c.serviceID,
		IssuedAt: jwt.NewNumericDate(c.now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// SendEmail sends one templated email and returns the Notify notification id.
func (c *Client) SendEmail(ctx context.Context, to, templateID string, personalisation map[string]string, reference string) (string, error) {
	body, err := json.Marshal(emailRequest{
		EmailAddress:    to,
		TemplateID:      templateID,
		Personalisation: personalisation,
		Reference:       reference,
	})
	if err != nil {
		return "", &SendError{Message: "failed to encode request", Cause: err}
	}

	token, err := c.token()
	if err != nil {
		return "", &SendError{Message: "failed to create token", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/notifications/email", bytes.NewReader(body))
	if err != nil {
		return "", &SendError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &SendError{Message: "request failed", Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &SendError{StatusCode: resp.StatusCode, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode == http.StatusBadRequest {
		return "", &TemplateError{TemplateID: templateID, Message: errorMessage(respBody)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &SendError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	var out emailResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &SendError{StatusCode: resp.StatusCode, Message: "failed to decode response", Cause: err}
	}
	return out.ID, nil
}

func errorMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && len(er.Errors) > 0 {
		msgs := make([]string, 0, len(er.Errors))
		for _, e := range er.Errors {
			msgs = append(msgs, e.Message)
		}
		return strings.Join(msgs, "; ")
	}
	return strings.TrimSpace(string(body))
}

// HashString returns a URL-safe base64 SHA-256 digest, used to log email
// addresses without exposing them.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.URLEncoding.EncodeToString(sum[:])
}

// Reference identifies one email to one address with one set of
// personalisation, so a resend can be detected.
func Reference(to, templateID string, personalisation map[string]string) string {
	p, _ := json.Marshal(personalisation)
	return HashString(to + "\x00" + templateID + "\x00" + string(p))
}
