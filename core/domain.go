package core

import (
	"net/http"
	"strings"
	"time"
)

// AuditActionSubmit tags audit records produced by the create-or-amend
// case operation.
const AuditActionSubmit = "case.submit"

type AmendmentType string

const (
	AmendmentFurtherInformation  AmendmentType = "further_information"
	AmendmentSupportingDocuments AmendmentType = "supporting_documents"
)

func AmendmentTypes() []AmendmentType {
	return []AmendmentType{
		AmendmentFurtherInformation,
		AmendmentSupportingDocuments,
	}
}

func (t AmendmentType) Valid() bool {
	switch t {
	case AmendmentFurtherInformation, AmendmentSupportingDocuments:
		return true
	default:
		return false
	}
}

func ParseAmendmentType(value string) (AmendmentType, bool) {
	t := AmendmentType(strings.TrimSpace(strings.ToLower(value)))
	return t, t.Valid()
}

// ClaimContent is the business payload of a create-or-amend case
// request. Immutable once built from the inbound request.
type ClaimContent struct {
	CaseID         string
	Description    string
	AmendmentTypes []AmendmentType
	EntryDate      string
}

// UploadedFile describes one evidence file already held in temporary
// storage. Request ordering is significant and must survive into the
// response.
type UploadedFile struct {
	Reference       string
	DownloadURL     string
	UploadTimestamp time.Time
	Checksum        string
	FileName        string
	FileMimeType    string
}

// FileTransferRequest is built once per file immediately before
// dispatch. BatchPosition is 1-based.
type FileTransferRequest struct {
	CaseID         string
	CorrelationID  string
	ConversationID string
	SourceSystem   string
	BatchPosition  int
	BatchCount     int
	File           UploadedFile
}

type FileTransferResult struct {
	Reference     string
	HTTPStatus    int
	TransferredAt time.Time
	Success       bool
}

// NewFileTransferResult derives the success flag from the status code.
func NewFileTransferResult(reference string, status int, transferredAt time.Time) FileTransferResult {
	return FileTransferResult{
		Reference:     strings.TrimSpace(reference),
		HTTPStatus:    status,
		TransferredAt: transferredAt.UTC(),
		Success:       status >= 200 && status < 300,
	}
}

type TransferBatch struct {
	CaseID         string
	CorrelationID  string
	ConversationID string
	Files          []UploadedFile
}

type CaseResult struct {
	CaseID              string
	FileTransferResults []FileTransferResult
}

type FailureKind string

const (
	FailureKindStructural FailureKind = "structural"
	FailureKindValidation FailureKind = "validation"
	FailureKindSubmission FailureKind = "submission"
)

// SubmissionFailure describes why a request was not accepted. ErrorCode
// and ErrorMessage are upstream-provided verbatim when available.
type SubmissionFailure struct {
	Kind         FailureKind
	ErrorCode    string
	ErrorMessage string
	StatusCode   int
}

// CaseResponse is the single caller-visible outcome of one request.
// CorrelationID is always present. Result is nil when submission
// failed; Failure is nil when it succeeded.
type CaseResponse struct {
	CorrelationID string
	StatusCode    int
	Result        *CaseResult
	Failure       *SubmissionFailure
}

func (r CaseResponse) Accepted() bool {
	return r.Failure == nil && r.Result != nil && r.StatusCode == http.StatusAccepted
}

type SubmitRequest struct {
	CorrelationID string
	Content       ClaimContent
	Files         []UploadedFile
}

type AuditFileEntry struct {
	Reference       string
	FileName        string
	Checksum        string
	FileMimeType    string
	UploadTimestamp time.Time
	DownloadURL     string
	TransferSuccess bool
	TransferStatus  *int
	TransferredAt   *time.Time
}

// AuditRecord captures what one request attempted and what happened.
// Success mirrors the case-submission outcome only, never per-file
// transfer outcomes.
type AuditRecord struct {
	ID            string
	CorrelationID string
	CaseID        string
	Description   string
	Action        string
	Files         []AuditFileEntry
	FileCount     int
	Success       bool
	ErrorCode     string
	ErrorMessage  string
	CreatedAt     time.Time
}

type ClaimAcceptedEvent struct {
	CorrelationID string
	CaseID        string
	Content       ClaimContent
	Files         []UploadedFile
	Results       []FileTransferResult
}

type ClaimRejectedEvent struct {
	CorrelationID string
	Content       ClaimContent
	Failure       SubmissionFailure
}

type AuditFilter struct {
	CaseID        string
	CorrelationID string
	Action        string
	Success       *bool
	From          *time.Time
	To            *time.Time
	Page          int
	PerPage       int
}

type AuditPage struct {
	Items   []AuditRecord
	Page    int
	PerPage int
	Total   int
	HasNext bool
}

// AuditRetentionPolicy bounds the audit trail: records older than TTL
// are pruned, and MaxRows caps total retained rows when positive.
type AuditRetentionPolicy struct {
	TTL     time.Duration
	MaxRows int
}
