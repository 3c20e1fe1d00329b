package pdfscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Scan outcomes written to the report.
const (
	MessageClean   = "No unusual content types"
	MessageUnusual = "Unusual content types detected"
	MessageError   = "Error"
)

// VeraPDFResult is the part of a veraPDF validation response we inspect.
type VeraPDFResult struct {
	TestAssertions []TestAssertion `json:"testAssertions"`
}

// TestAssertion is one rule check in a validation report.
type TestAssertion struct {
	Status string `json:"status"`
	RuleID struct {
		Specification string `json:"specification"`
		Clause        string `json:"clause"`
	} `json:"ruleId"`
}

// ContainsUnusualContent reports whether the PDF has Launch, Sound, Movie,
// ResetForm, ImportData or JavaScript actions, which PDF/A-1 forbids in
// clause 6.6.1.
func ContainsUnusualContent(r VeraPDFResult) bool {
	for _, a := range r.TestAssertions {
		if a.Status == "FAILED" && a.RuleID.Specification == "ISO_19005_1" && a.RuleID.Clause == "6.6.1" {
			return true
		}
	}
	return false
}

// Scanner checks documents against the veraPDF REST service.
type Scanner interface {
	Scan(ctx context.Context, name string, pdf []byte) (statusCode int, message string, err error)
}

// VeraPDFClient posts documents to a veraPDF-rest instance.
type VeraPDFClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewVeraPDFClient creates a client for the service at baseURL.
func NewVeraPDFClient(baseURL string, httpClient *http.Client) *VeraPDFClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &VeraPDFClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Scan validates the document against profile 1B, which carries the
// content-type rules. A non-200 response is reported as MessageError with a
// nil error.
func (c *VeraPDFClient) Scan(ctx context.Context, name string, pdf []byte) (int, string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return 0, MessageError, err
	}
	if _, err := part.Write(pdf); err != nil {
		return 0, MessageError, err
	}
	if err := mw.Close(); err != nil {
		return 0, MessageError, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/validate/1b", &body)
	if err != nil {
		return 0, MessageError, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, MessageError, fmt.Errorf("verapdf request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, MessageError, nil
	}

	var result VeraPDFResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return resp.StatusCode, MessageError, fmt.Errorf("failed to decode verapdf response: %w", err)
	}
	if ContainsUnusualContent(result) {
		return resp.StatusCode, MessageUnusual, nil
	}
	return resp.StatusCode, MessageClean, nil
}
