package inbound

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-reclaim/core"
)

// CorrelationHeader is read case-insensitively from inbound requests.
const CorrelationHeader = "x-correlation-id"

type contentEnvelope struct {
	CaseID         string   `json:"caseId"`
	Description    string   `json:"description"`
	AmendmentTypes []string `json:"amendmentTypes"`
	EntryDate      string   `json:"entryDate"`
}

type fileEnvelope struct {
	Reference       string    `json:"reference"`
	DownloadURL     string    `json:"downloadUrl"`
	UploadTimestamp time.Time `json:"uploadTimestamp"`
	Checksum        string    `json:"checksum"`
	FileName        string    `json:"fileName"`
	FileMimeType    string    `json:"fileMimeType"`
}

type claimEnvelope struct {
	Content       *contentEnvelope `json:"content"`
	UploadedFiles []fileEnvelope   `json:"uploadedFiles"`
}

type transferResultBody struct {
	Reference     string    `json:"reference"`
	HTTPStatus    int       `json:"httpStatus"`
	TransferredAt time.Time `json:"transferredAt"`
	Success       bool      `json:"success"`
}

type caseResultBody struct {
	CaseID              string               `json:"caseId"`
	FileTransferResults []transferResultBody `json:"fileTransferResults"`
}

type acceptedBody struct {
	CorrelationID string         `json:"correlationId"`
	Result        caseResultBody `json:"result"`
}

type failureBody struct {
	CorrelationID string `json:"correlationId"`
	ErrorCode     string `json:"errorCode"`
	ErrorMessage  string `json:"errorMessage"`
}

// DecodeClaimRequest parses the claim-submission envelope. A body that
// cannot be decoded at all is a structural failure, distinct from
// business-rule validation downstream.
func DecodeClaimRequest(body []byte) (core.ClaimContent, []core.UploadedFile, error) {
	if strings.TrimSpace(string(body)) == "" {
		return core.ClaimContent{}, nil, fmt.Errorf("inbound: request body cannot be parsed: empty payload")
	}
	var envelope claimEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return core.ClaimContent{}, nil, fmt.Errorf("inbound: request body cannot be parsed: %w", err)
	}
	if envelope.Content == nil {
		return core.ClaimContent{}, nil, fmt.Errorf("inbound: request body cannot be parsed: missing content")
	}

	amendments := make([]core.AmendmentType, 0, len(envelope.Content.AmendmentTypes))
	for _, raw := range envelope.Content.AmendmentTypes {
		// Normalized even when unknown so validation can report the value.
		amendment, _ := core.ParseAmendmentType(raw)
		amendments = append(amendments, amendment)
	}
	content := core.ClaimContent{
		CaseID:         strings.TrimSpace(envelope.Content.CaseID),
		Description:    envelope.Content.Description,
		AmendmentTypes: amendments,
		EntryDate:      strings.TrimSpace(envelope.Content.EntryDate),
	}

	files := make([]core.UploadedFile, 0, len(envelope.UploadedFiles))
	for _, file := range envelope.UploadedFiles {
		files = append(files, core.UploadedFile{
			Reference:       strings.TrimSpace(file.Reference),
			DownloadURL:     strings.TrimSpace(file.DownloadURL),
			UploadTimestamp: file.UploadTimestamp,
			Checksum:        file.Checksum,
			FileName:        strings.TrimSpace(file.FileName),
			FileMimeType:    file.FileMimeType,
		})
	}
	return content, files, nil
}

// EncodeClaimResponse renders the wire body for either outcome. The
// correlation id is present in both shapes.
func EncodeClaimResponse(response core.CaseResponse) ([]byte, error) {
	if response.Failure != nil || response.Result == nil {
		body := failureBody{
			CorrelationID: response.CorrelationID,
			ErrorCode:     core.ClaimErrorInternal,
			ErrorMessage:  "An unexpected error occurred",
		}
		if response.Failure != nil {
			body.ErrorCode = response.Failure.ErrorCode
			body.ErrorMessage = response.Failure.ErrorMessage
		}
		return json.Marshal(body)
	}

	results := make([]transferResultBody, 0, len(response.Result.FileTransferResults))
	for _, result := range response.Result.FileTransferResults {
		results = append(results, transferResultBody{
			Reference:     result.Reference,
			HTTPStatus:    result.HTTPStatus,
			TransferredAt: result.TransferredAt,
			Success:       result.Success,
		})
	}
	return json.Marshal(acceptedBody{
		CorrelationID: response.CorrelationID,
		Result: caseResultBody{
			CaseID:              response.Result.CaseID,
			FileTransferResults: results,
		},
	})
}
