package devkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-reclaim/core"
)

// ValidateTransportAdapterConformance checks the adapter contract every
// upstream client relies on.
func ValidateTransportAdapterConformance(
	ctx context.Context,
	adapter core.TransportAdapter,
	request core.TransportRequest,
) error {
	if adapter == nil {
		return fmt.Errorf("devkit: transport adapter is required")
	}
	if strings.TrimSpace(adapter.Kind()) == "" {
		return fmt.Errorf("devkit: transport adapter kind is required")
	}
	_, err := adapter.Do(ctx, request)
	return err
}

// ValidateAuditTrailStoreConformance runs the record/trail/list/prune
// contract against a store implementation using throwaway records.
func ValidateAuditTrailStoreConformance(ctx context.Context, store core.AuditTrailStore) error {
	if store == nil {
		return fmt.Errorf("devkit: audit trail store is required")
	}

	caseID := FixtureCaseID
	first := core.AuditRecord{
		ID:            "conformance-1",
		CorrelationID: "conformance-corr-1",
		CaseID:        caseID,
		Action:        core.AuditActionSubmit,
		Success:       true,
	}
	second := core.AuditRecord{
		ID:            "conformance-2",
		CorrelationID: "conformance-corr-2",
		CaseID:        caseID,
		Action:        core.AuditActionSubmit,
		Success:       false,
		ErrorCode:     core.ClaimErrorSubmissionFailed,
	}
	if err := store.Record(ctx, first); err != nil {
		return fmt.Errorf("devkit: record first: %w", err)
	}
	if err := store.Record(ctx, second); err != nil {
		return fmt.Errorf("devkit: record second: %w", err)
	}

	trail, err := store.Trail(ctx, caseID)
	if err != nil {
		return fmt.Errorf("devkit: trail: %w", err)
	}
	if len(trail) < 2 {
		return fmt.Errorf("devkit: expected at least two trail records, got %d", len(trail))
	}

	if _, err := store.Trail(ctx, ""); err == nil {
		return fmt.Errorf("devkit: expected empty case id to be rejected")
	}

	page, err := store.List(ctx, core.AuditFilter{CaseID: caseID, PerPage: 1})
	if err != nil {
		return fmt.Errorf("devkit: list: %w", err)
	}
	if page.Total < 2 || len(page.Items) != 1 || !page.HasNext {
		return fmt.Errorf("devkit: expected paged audit list, got total=%d items=%d", page.Total, len(page.Items))
	}

	if _, err := store.Prune(ctx, core.AuditRetentionPolicy{}); err != nil {
		return fmt.Errorf("devkit: zero-policy prune: %w", err)
	}
	return nil
}
