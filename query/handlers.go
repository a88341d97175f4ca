package query

import (
	"context"

	"github.com/goliatone/go-reclaim/core"
)

// AuditReader is the read surface the query handlers need from the
// claim service.
type AuditReader interface {
	AuditTrail(ctx context.Context, caseID string) ([]core.AuditRecord, error)
	ListAuditRecords(ctx context.Context, filter core.AuditFilter) (core.AuditPage, error)
}

// CaseAuditTrailQuery returns the audit records for one case,
// newest first.
type CaseAuditTrailQuery struct {
	reader AuditReader
}

func NewCaseAuditTrailQuery(reader AuditReader) *CaseAuditTrailQuery {
	return &CaseAuditTrailQuery{reader: reader}
}

func (q *CaseAuditTrailQuery) Query(ctx context.Context, msg CaseAuditTrailMessage) ([]core.AuditRecord, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: audit reader is required")
	}
	return q.reader.AuditTrail(ctx, msg.CaseID)
}

// ListAuditRecordsQuery pages through audit records across cases.
type ListAuditRecordsQuery struct {
	reader AuditReader
}

func NewListAuditRecordsQuery(reader AuditReader) *ListAuditRecordsQuery {
	return &ListAuditRecordsQuery{reader: reader}
}

func (q *ListAuditRecordsQuery) Query(ctx context.Context, msg ListAuditRecordsMessage) (core.AuditPage, error) {
	if q == nil || q.reader == nil {
		return core.AuditPage{}, queryDependencyError("query: audit reader is required")
	}
	return q.reader.ListAuditRecords(ctx, msg.Filter)
}
