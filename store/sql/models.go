package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type auditFileRow struct {
	Reference       string     `json:"reference"`
	FileName        string     `json:"fileName"`
	Checksum        string     `json:"checksum"`
	FileMimeType    string     `json:"fileMimeType"`
	UploadTimestamp time.Time  `json:"uploadTimestamp"`
	DownloadURL     string     `json:"downloadUrl"`
	TransferSuccess bool       `json:"transferSuccess"`
	TransferStatus  *int       `json:"transferStatus,omitempty"`
	TransferredAt   *time.Time `json:"transferredAt,omitempty"`
}

type auditRecordRow struct {
	bun.BaseModel `bun:"table:claim_audit_records,alias:car"`

	ID            string         `bun:"id,pk"`
	CorrelationID string         `bun:"correlation_id,notnull"`
	CaseID        string         `bun:"case_id,notnull"`
	Description   string         `bun:"description"`
	Action        string         `bun:"action,notnull"`
	Files         []auditFileRow `bun:"files,type:jsonb,notnull"`
	FileCount     int            `bun:"file_count,notnull"`
	Success       bool           `bun:"success,notnull"`
	ErrorCode     string         `bun:"error_code"`
	ErrorMessage  string         `bun:"error_message"`
	CreatedAt     time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
