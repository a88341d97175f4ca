package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-reclaim/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const auditTrailCacheKeyPrefix = "go-reclaim::audit_trail::v1"

// CachedAuditStore layers a read-through cache over audit trail reads.
// Record writes invalidate the trail entry for the affected case so a
// follow-up read observes the new row.
type CachedAuditStore struct {
	base  core.AuditTrailStore
	cache repositorycache.CacheService
}

func NewCachedAuditStore(
	base core.AuditTrailStore,
	cacheService repositorycache.CacheService,
) (*CachedAuditStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base audit store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: audit cache service is required")
	}
	return &CachedAuditStore{base: base, cache: cacheService}, nil
}

// AuditTrailCacheKey returns the deterministic cache key contract for
// audit trail reads: go-reclaim::audit_trail::v1::<case_id> with the
// case id URL-path escaped after trimming.
func AuditTrailCacheKey(caseID string) (string, error) {
	normalized := strings.TrimSpace(caseID)
	if normalized == "" {
		return "", fmt.Errorf("sqlstore: case id is required")
	}
	return auditTrailCacheKeyPrefix + "::" + url.PathEscape(normalized), nil
}

func (s *CachedAuditStore) Record(ctx context.Context, record core.AuditRecord) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached audit store is not configured")
	}
	if err := s.base.Record(ctx, record); err != nil {
		return err
	}

	caseID := strings.TrimSpace(record.CaseID)
	if caseID == "" {
		return nil
	}
	cacheKey, err := AuditTrailCacheKey(caseID)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return err
	}
	return nil
}

func (s *CachedAuditStore) Trail(ctx context.Context, caseID string) ([]core.AuditRecord, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached audit store is not configured")
	}
	normalized := strings.TrimSpace(caseID)
	cacheKey, err := AuditTrailCacheKey(normalized)
	if err != nil {
		return nil, err
	}

	records, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) ([]core.AuditRecord, error) {
		fetched, fetchErr := s.base.Trail(ctx, normalized)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return cloneAuditRecords(fetched), nil
	})
	if err != nil {
		return nil, err
	}
	return cloneAuditRecords(records), nil
}

// List reads are not cached; they go straight to the base store.
func (s *CachedAuditStore) List(ctx context.Context, filter core.AuditFilter) (core.AuditPage, error) {
	if s == nil || s.base == nil {
		return core.AuditPage{}, fmt.Errorf("sqlstore: cached audit store is not configured")
	}
	return s.base.List(ctx, filter)
}

func (s *CachedAuditStore) Prune(ctx context.Context, policy core.AuditRetentionPolicy) (int64, error) {
	if s == nil || s.base == nil {
		return 0, fmt.Errorf("sqlstore: cached audit store is not configured")
	}
	return s.base.Prune(ctx, policy)
}

func cloneAuditRecords(records []core.AuditRecord) []core.AuditRecord {
	if records == nil {
		return nil
	}
	cloned := make([]core.AuditRecord, len(records))
	for i, record := range records {
		cloned[i] = cloneAuditRecord(record)
	}
	return cloned
}

func cloneAuditRecord(record core.AuditRecord) core.AuditRecord {
	cloned := record
	if record.Files != nil {
		files := make([]core.AuditFileEntry, len(record.Files))
		for i, file := range record.Files {
			entry := file
			entry.TransferStatus = cloneIntPointer(file.TransferStatus)
			entry.TransferredAt = cloneTimePointer(file.TransferredAt)
			files[i] = entry
		}
		cloned.Files = files
	}
	return cloned
}

func cloneIntPointer(input *int) *int {
	if input == nil {
		return nil
	}
	value := *input
	return &value
}

func cloneTimePointer(input *time.Time) *time.Time {
	if input == nil {
		return nil
	}
	value := input.UTC()
	return &value
}
