package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-reclaim/core"
)

// ClaimMutatingService is the mutation surface the command handlers
// need from the claim service.
type ClaimMutatingService interface {
	Submit(ctx context.Context, req core.SubmitRequest) (core.CaseResponse, error)
	PruneAuditRecords(ctx context.Context) (int64, error)
}

// SubmitClaimCommand runs the full submission pipeline for one claim
// and stores the aggregated case response on the result collector.
type SubmitClaimCommand struct {
	service ClaimMutatingService
}

func NewSubmitClaimCommand(service ClaimMutatingService) *SubmitClaimCommand {
	return &SubmitClaimCommand{service: service}
}

func (c *SubmitClaimCommand) Execute(ctx context.Context, msg SubmitClaimMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: claim service is required")
	}
	out, err := c.service.Submit(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

// PruneAuditRecordsCommand applies the retention policy and stores the
// deleted row count on the result collector.
type PruneAuditRecordsCommand struct {
	service ClaimMutatingService
}

func NewPruneAuditRecordsCommand(service ClaimMutatingService) *PruneAuditRecordsCommand {
	return &PruneAuditRecordsCommand{service: service}
}

func (c *PruneAuditRecordsCommand) Execute(ctx context.Context, _ PruneAuditRecordsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: audit prune service is required")
	}
	deleted, err := c.service.PruneAuditRecords(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, deleted)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
