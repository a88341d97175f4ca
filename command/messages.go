package command

import (
	"strings"

	"github.com/goliatone/go-reclaim/core"
)

const (
	TypeSubmitClaim       = "reclaim.command.claim.submit"
	TypePruneAuditRecords = "reclaim.command.audit.prune"
)

// SubmitClaimMessage carries one inbound claim through the dispatcher.
// Claim-level validation runs inside the service pipeline so a rejected
// claim still produces its audit record; Validate only rejects messages
// with no claim content at all.
type SubmitClaimMessage struct {
	Request core.SubmitRequest
}

func (SubmitClaimMessage) Type() string { return TypeSubmitClaim }

func (m SubmitClaimMessage) Validate() error {
	if strings.TrimSpace(m.Request.Content.CaseID) == "" &&
		strings.TrimSpace(m.Request.Content.Description) == "" &&
		len(m.Request.Content.AmendmentTypes) == 0 &&
		len(m.Request.Files) == 0 {
		return commandValidationError("request", "claim content is required")
	}
	return nil
}

// PruneAuditRecordsMessage asks the service to apply its configured
// audit retention policy.
type PruneAuditRecordsMessage struct{}

func (PruneAuditRecordsMessage) Type() string { return TypePruneAuditRecords }

func (PruneAuditRecordsMessage) Validate() error { return nil }
