package casemgmt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/goliatone/go-reclaim/core"
)

// CorrelationHeader carries the request's correlation id to the
// case-management API so it can de-duplicate retried submissions.
const CorrelationHeader = "x-correlation-id"

type submitPayload struct {
	CaseID         string   `json:"caseId"`
	Description    string   `json:"description"`
	AmendmentTypes []string `json:"amendmentTypes"`
	EntryDate      string   `json:"entryDate,omitempty"`
}

type submitResponse struct {
	CaseID string `json:"caseId"`
}

type upstreamFailure struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// Client submits claims to the upstream case-management API. Failures
// come back as *core.SubmissionError carrying the upstream error code
// and message verbatim when the upstream supplied them.
type Client struct {
	Adapter core.TransportAdapter
	Config  core.CaseAPIConfig
}

func NewClient(adapter core.TransportAdapter, cfg core.CaseAPIConfig) *Client {
	return &Client{Adapter: adapter, Config: cfg}
}

func (c *Client) Submit(ctx context.Context, content core.ClaimContent, correlationID string) (string, error) {
	if c == nil || c.Adapter == nil {
		return "", fmt.Errorf("casemgmt: transport adapter is required")
	}
	endpoint, err := c.endpoint()
	if err != nil {
		return "", err
	}

	amendmentTypes := make([]string, 0, len(content.AmendmentTypes))
	for _, amendment := range content.AmendmentTypes {
		amendmentTypes = append(amendmentTypes, string(amendment))
	}
	payload, err := json.Marshal(submitPayload{
		CaseID:         strings.TrimSpace(content.CaseID),
		Description:    content.Description,
		AmendmentTypes: amendmentTypes,
		EntryDate:      strings.TrimSpace(content.EntryDate),
	})
	if err != nil {
		return "", fmt.Errorf("casemgmt: encode submission payload: %w", err)
	}

	response, err := c.Adapter.Do(ctx, core.TransportRequest{
		Method: http.MethodPost,
		URL:    endpoint,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			"Accept":          "application/json",
			CorrelationHeader: strings.TrimSpace(correlationID),
		},
		Body:        payload,
		Timeout:     c.Config.Timeout(),
		Idempotency: strings.TrimSpace(correlationID),
	})
	if err != nil {
		if isTimeout(err) {
			return "", &core.SubmissionError{
				StatusCode:   http.StatusGatewayTimeout,
				ErrorCode:    core.ClaimErrorSubmissionFailed,
				ErrorMessage: "case submission timed out",
				Cause:        err,
			}
		}
		return "", &core.SubmissionError{
			StatusCode:   http.StatusBadGateway,
			ErrorCode:    core.ClaimErrorSubmissionFailed,
			ErrorMessage: "case-management service is unreachable",
			Cause:        err,
		}
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		var accepted submitResponse
		if decodeErr := json.Unmarshal(response.Body, &accepted); decodeErr != nil || strings.TrimSpace(accepted.CaseID) == "" {
			return "", &core.SubmissionError{
				StatusCode:   http.StatusBadGateway,
				ErrorCode:    core.ClaimErrorSubmissionFailed,
				ErrorMessage: "case-management response is missing caseId",
				Cause:        decodeErr,
			}
		}
		return strings.TrimSpace(accepted.CaseID), nil
	}

	failure := upstreamFailure{}
	_ = json.Unmarshal(response.Body, &failure)
	code := strings.TrimSpace(failure.ErrorCode)
	if code == "" {
		code = core.ClaimErrorSubmissionFailed
	}
	message := strings.TrimSpace(failure.ErrorMessage)
	if message == "" {
		message = fmt.Sprintf("case-management returned status %d", response.StatusCode)
	}
	return "", &core.SubmissionError{
		StatusCode:   response.StatusCode,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

func (c *Client) endpoint() (string, error) {
	base := strings.TrimSpace(c.Config.BaseURL)
	if base == "" {
		return "", fmt.Errorf("casemgmt: case_api.base_url is required")
	}
	path := strings.TrimSpace(c.Config.SubmitPath)
	if path == "" {
		path = "/create-case"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + path, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var _ core.CaseSubmitter = (*Client)(nil)
