package query

import (
	"strings"

	"github.com/goliatone/go-reclaim/core"
)

const (
	TypeCaseAuditTrail   = "reclaim.query.audit.trail"
	TypeListAuditRecords = "reclaim.query.audit.list"
)

type CaseAuditTrailMessage struct {
	CaseID string
}

func (CaseAuditTrailMessage) Type() string { return TypeCaseAuditTrail }

func (m CaseAuditTrailMessage) Validate() error {
	if strings.TrimSpace(m.CaseID) == "" {
		return queryValidationError("case_id", "case id is required")
	}
	return nil
}

type ListAuditRecordsMessage struct {
	Filter core.AuditFilter
}

func (ListAuditRecordsMessage) Type() string { return TypeListAuditRecords }

func (m ListAuditRecordsMessage) Validate() error {
	if m.Filter.Page < 0 {
		return queryValidationError("page", "page must be >= 0")
	}
	if m.Filter.PerPage < 0 {
		return queryValidationError("per_page", "per_page must be >= 0")
	}
	return nil
}
