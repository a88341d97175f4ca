package filetransfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-reclaim/core"
)

const (
	CorrelationHeader  = "x-correlation-id"
	ConversationHeader = "x-conversation-id"
)

// Sender issues one transfer call and returns the upstream HTTP status
// verbatim. A returned error means no status was obtained at all.
type Sender interface {
	Send(ctx context.Context, req core.FileTransferRequest) (int, error)
}

type transferPayload struct {
	CaseID          string    `json:"caseId"`
	CorrelationID   string    `json:"correlationId"`
	ConversationID  string    `json:"conversationId"`
	SourceSystem    string    `json:"sourceSystem"`
	BatchPosition   int       `json:"batchPosition"`
	BatchCount      int       `json:"batchCount"`
	Reference       string    `json:"reference"`
	DownloadURL     string    `json:"downloadUrl"`
	UploadTimestamp time.Time `json:"uploadTimestamp"`
	Checksum        string    `json:"checksum"`
	FileName        string    `json:"fileName"`
	FileMimeType    string    `json:"fileMimeType"`
}

// Client posts one file-transfer request to the file-transfer service.
type Client struct {
	Adapter core.TransportAdapter
	Config  core.FileTransferConfig
}

func NewClient(adapter core.TransportAdapter, cfg core.FileTransferConfig) *Client {
	return &Client{Adapter: adapter, Config: cfg}
}

func (c *Client) Send(ctx context.Context, req core.FileTransferRequest) (int, error) {
	if c == nil || c.Adapter == nil {
		return 0, fmt.Errorf("filetransfer: transport adapter is required")
	}
	endpoint, err := c.endpoint()
	if err != nil {
		return 0, err
	}

	payload, err := json.Marshal(transferPayload{
		CaseID:          req.CaseID,
		CorrelationID:   req.CorrelationID,
		ConversationID:  req.ConversationID,
		SourceSystem:    req.SourceSystem,
		BatchPosition:   req.BatchPosition,
		BatchCount:      req.BatchCount,
		Reference:       req.File.Reference,
		DownloadURL:     req.File.DownloadURL,
		UploadTimestamp: req.File.UploadTimestamp,
		Checksum:        req.File.Checksum,
		FileName:        req.File.FileName,
		FileMimeType:    req.File.FileMimeType,
	})
	if err != nil {
		return 0, fmt.Errorf("filetransfer: encode transfer payload: %w", err)
	}

	response, err := c.Adapter.Do(ctx, core.TransportRequest{
		Method: http.MethodPost,
		URL:    endpoint,
		Headers: map[string]string{
			"Content-Type":     "application/json",
			CorrelationHeader:  strings.TrimSpace(req.CorrelationID),
			ConversationHeader: strings.TrimSpace(req.ConversationID),
		},
		Body:    payload,
		Timeout: c.Config.Timeout(),
	})
	if err != nil {
		return 0, err
	}
	return response.StatusCode, nil
}

func (c *Client) endpoint() (string, error) {
	base := strings.TrimSpace(c.Config.BaseURL)
	if base == "" {
		return "", fmt.Errorf("filetransfer: file_transfer.base_url is required")
	}
	path := strings.TrimSpace(c.Config.TransferPath)
	if path == "" {
		path = "/transfer-file"
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

var _ Sender = (*Client)(nil)
