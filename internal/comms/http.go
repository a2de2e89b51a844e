package comms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

type (
	// HTTPCommunicator delivers messages through the communication
	// service's HTTP API
	HTTPCommunicator struct {
		httpClient *http.Client
		baseURL    string
	}

	// HTTPComplianceChecker screens content through the compliance
	// service's HTTP API
	HTTPComplianceChecker struct {
		httpClient *http.Client
		baseURL    string
	}

	sendRequest struct {
		Channel   Channel       `json:"channel"`
		Recipient api.SubjectID `json:"recipient_ref"`
		Content   string        `json:"rendered_content"`
		Priority  api.Priority  `json:"priority"`
	}

	checkRequest struct {
		Content string `json:"content"`
	}
)

var (
	ErrSendFailed  = errors.New("communication service error")
	ErrCheckFailed = errors.New("compliance service error")
)

var (
	_ Communicator      = (*HTTPCommunicator)(nil)
	_ ComplianceChecker = (*HTTPComplianceChecker)(nil)
)

// NewHTTPCommunicator creates a communication service client
func NewHTTPCommunicator(baseURL string, timeout time.Duration) *HTTPCommunicator {
	return &HTTPCommunicator{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Send transmits rendered content to the recipient
func (c *HTTPCommunicator) Send(
	ctx context.Context, channel Channel, recipient api.SubjectID,
	content string, priority api.Priority,
) (*DeliveryResult, error) {
	var res DeliveryResult
	err := postJSON(ctx, c.httpClient, c.baseURL+"/send", sendRequest{
		Channel:   channel,
		Recipient: recipient,
		Content:   content,
		Priority:  priority,
	}, &res)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return &res, nil
}

// NewHTTPComplianceChecker creates a compliance service client
func NewHTTPComplianceChecker(
	baseURL string, timeout time.Duration,
) *HTTPComplianceChecker {
	return &HTTPComplianceChecker{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Check screens content for compliance-relevant material
func (c *HTTPComplianceChecker) Check(
	ctx context.Context, content string,
) (*ComplianceResult, error) {
	var res ComplianceResult
	err := postJSON(ctx, c.httpClient, c.baseURL+"/check", checkRequest{
		Content: content,
	}, &res)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCheckFailed, err)
	}
	return &res, nil
}

func postJSON(
	ctx context.Context, client *http.Client, url string, in, out any,
) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, url, bytes.NewBuffer(body),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, respBody)
	}
	return json.Unmarshal(respBody, out)
}
