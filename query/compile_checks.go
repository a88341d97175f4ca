package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-reclaim/core"
)

var (
	_ gocmd.Querier[CaseAuditTrailMessage, []core.AuditRecord] = (*CaseAuditTrailQuery)(nil)
	_ gocmd.Querier[ListAuditRecordsMessage, core.AuditPage]   = (*ListAuditRecordsQuery)(nil)
)
