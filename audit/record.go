// Package audit builds and emits the per-request audit trail.
//
// Exactly one record is produced per inbound request, after the response
// has been aggregated. The record's top-level success flag mirrors the
// case-submission outcome only; per-file transfer outcomes live in the
// file entries and never change it.
package audit

import (
	"strings"

	"github.com/goliatone/go-reclaim/core"
)

// AcceptedRecord builds the record for an accepted claim: one entry per
// uploaded file carrying that file's transfer outcome, index-aligned
// with the request's file order.
func AcceptedRecord(event core.ClaimAcceptedEvent) core.AuditRecord {
	files := make([]core.AuditFileEntry, 0, len(event.Files))
	for i, file := range event.Files {
		entry := core.AuditFileEntry{
			Reference:       file.Reference,
			FileName:        file.FileName,
			Checksum:        file.Checksum,
			FileMimeType:    file.FileMimeType,
			UploadTimestamp: file.UploadTimestamp,
			DownloadURL:     file.DownloadURL,
		}
		if i < len(event.Results) {
			result := event.Results[i]
			status := result.HTTPStatus
			transferredAt := result.TransferredAt
			entry.TransferSuccess = result.Success
			entry.TransferStatus = &status
			entry.TransferredAt = &transferredAt
		}
		files = append(files, entry)
	}
	return core.AuditRecord{
		CorrelationID: event.CorrelationID,
		CaseID:        strings.TrimSpace(event.CaseID),
		Description:   event.Content.Description,
		Action:        core.AuditActionSubmit,
		Files:         files,
		FileCount:     len(event.Files),
		Success:       true,
	}
}

// RejectedRecord builds the record for a request that never reached the
// transfer stage: empty file list, success=false, failure code and
// message preserved verbatim.
func RejectedRecord(event core.ClaimRejectedEvent) core.AuditRecord {
	return core.AuditRecord{
		CorrelationID: event.CorrelationID,
		CaseID:        strings.TrimSpace(event.Content.CaseID),
		Description:   event.Content.Description,
		Action:        core.AuditActionSubmit,
		Files:         []core.AuditFileEntry{},
		FileCount:     0,
		Success:       false,
		ErrorCode:     event.Failure.ErrorCode,
		ErrorMessage:  event.Failure.ErrorMessage,
	}
}
