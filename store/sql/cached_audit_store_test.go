package sqlstore

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-reclaim/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type stubAuditTrailStore struct {
	mu          sync.Mutex
	records     map[string][]core.AuditRecord
	trailCalls  int
	recordCalls int
	trailErr    error
	recordErr   error
}

func newStubAuditTrailStore() *stubAuditTrailStore {
	return &stubAuditTrailStore{records: map[string][]core.AuditRecord{}}
}

func (s *stubAuditTrailStore) Record(_ context.Context, record core.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordCalls++
	if s.recordErr != nil {
		return s.recordErr
	}
	s.records[record.CaseID] = append([]core.AuditRecord{record}, s.records[record.CaseID]...)
	return nil
}

func (s *stubAuditTrailStore) Trail(_ context.Context, caseID string) ([]core.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trailCalls++
	if s.trailErr != nil {
		return nil, s.trailErr
	}
	return cloneAuditRecords(s.records[caseID]), nil
}

func (s *stubAuditTrailStore) List(_ context.Context, _ core.AuditFilter) (core.AuditPage, error) {
	return core.AuditPage{}, nil
}

func (s *stubAuditTrailStore) Prune(_ context.Context, _ core.AuditRetentionPolicy) (int64, error) {
	return 0, nil
}

func newTestAuditCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}

func submittedRecord(caseID string) core.AuditRecord {
	status := http.StatusOK
	at := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
	return core.AuditRecord{
		ID:            "rec-1",
		CorrelationID: "corr-1",
		CaseID:        caseID,
		Action:        core.AuditActionSubmit,
		Files: []core.AuditFileEntry{
			{
				Reference:       "ref-1",
				FileName:        "test1.jpeg",
				TransferSuccess: true,
				TransferStatus:  &status,
				TransferredAt:   &at,
			},
		},
		FileCount: 1,
		Success:   true,
		CreatedAt: at,
	}
}

func TestCachedAuditStore_Trail_MissFetchThenHit(t *testing.T) {
	base := newStubAuditTrailStore()
	base.records["NDRC1"] = []core.AuditRecord{submittedRecord("NDRC1")}

	store, err := NewCachedAuditStore(base, newTestAuditCacheService(t))
	if err != nil {
		t.Fatalf("new cached audit store: %v", err)
	}

	first, err := store.Trail(context.Background(), "NDRC1")
	if err != nil {
		t.Fatalf("first trail: %v", err)
	}
	if len(first) != 1 || first[0].CaseID != "NDRC1" {
		t.Fatalf("unexpected first trail %v", first)
	}
	if base.trailCalls != 1 {
		t.Fatalf("expected first trail to fetch base store once, got %d", base.trailCalls)
	}

	if _, err := store.Trail(context.Background(), "NDRC1"); err != nil {
		t.Fatalf("second trail: %v", err)
	}
	if base.trailCalls != 1 {
		t.Fatalf("expected second trail to be cache hit, base trail calls=%d", base.trailCalls)
	}
}

func TestCachedAuditStore_Record_InvalidatesTrailKey(t *testing.T) {
	base := newStubAuditTrailStore()
	base.records["NDRC2"] = []core.AuditRecord{submittedRecord("NDRC2")}

	store, err := NewCachedAuditStore(base, newTestAuditCacheService(t))
	if err != nil {
		t.Fatalf("new cached audit store: %v", err)
	}

	if _, err := store.Trail(context.Background(), "NDRC2"); err != nil {
		t.Fatalf("prime cache with trail: %v", err)
	}
	if base.trailCalls != 1 {
		t.Fatalf("expected one base read after cache prime, got %d", base.trailCalls)
	}

	next := submittedRecord("NDRC2")
	next.ID = "rec-2"
	next.Success = false
	next.ErrorCode = "400"
	next.ErrorMessage = "Something went wrong"
	if err := store.Record(context.Background(), next); err != nil {
		t.Fatalf("record through cached store: %v", err)
	}
	if base.recordCalls != 1 {
		t.Fatalf("expected base record call count=1, got %d", base.recordCalls)
	}

	trail, err := store.Trail(context.Background(), "NDRC2")
	if err != nil {
		t.Fatalf("trail after record invalidation: %v", err)
	}
	if base.trailCalls != 2 {
		t.Fatalf("expected invalidated key to force second base read, got %d", base.trailCalls)
	}
	if len(trail) != 2 || trail[0].ID != "rec-2" {
		t.Fatalf("expected refreshed trail with new record first, got %v", trail)
	}
}

func TestCachedAuditStore_TrimmedCaseIDSharesCacheEntry(t *testing.T) {
	base := newStubAuditTrailStore()
	base.records["NDRC3"] = []core.AuditRecord{submittedRecord("NDRC3")}

	store, err := NewCachedAuditStore(base, newTestAuditCacheService(t))
	if err != nil {
		t.Fatalf("new cached audit store: %v", err)
	}

	if _, err := store.Trail(context.Background(), " NDRC3 "); err != nil {
		t.Fatalf("first trail: %v", err)
	}
	if _, err := store.Trail(context.Background(), "NDRC3"); err != nil {
		t.Fatalf("second trail: %v", err)
	}
	if base.trailCalls != 1 {
		t.Fatalf("expected trimmed case ids to share cache entry, base trail calls=%d", base.trailCalls)
	}

	firstKey, err := AuditTrailCacheKey(" NDRC3 ")
	if err != nil {
		t.Fatalf("cache key for padded input: %v", err)
	}
	secondKey, err := AuditTrailCacheKey("NDRC3")
	if err != nil {
		t.Fatalf("cache key for trimmed input: %v", err)
	}
	if firstKey != secondKey {
		t.Fatalf("expected normalized cache keys to match, got %q != %q", firstKey, secondKey)
	}
}

func TestAuditTrailCacheKey_Contract(t *testing.T) {
	key, err := AuditTrailCacheKey(" NDRC/One Two ")
	if err != nil {
		t.Fatalf("build cache key: %v", err)
	}

	const expected = "go-reclaim::audit_trail::v1::NDRC%2FOne%20Two"
	if key != expected {
		t.Fatalf("unexpected cache key contract: got %q want %q", key, expected)
	}

	if _, err := AuditTrailCacheKey("   "); err == nil {
		t.Fatalf("expected empty case id to be rejected")
	}
}

func TestCachedAuditStore_PropagatesBaseErrors(t *testing.T) {
	base := newStubAuditTrailStore()
	base.trailErr = errors.New("audit backend offline")

	store, err := NewCachedAuditStore(base, newTestAuditCacheService(t))
	if err != nil {
		t.Fatalf("new cached audit store: %v", err)
	}

	if _, err := store.Trail(context.Background(), "NDRC404"); !errors.Is(err, base.trailErr) {
		t.Fatalf("expected base error propagation, got %v", err)
	}
}

func TestCachedAuditStore_TrailReturnsDefensiveCopies(t *testing.T) {
	base := newStubAuditTrailStore()
	base.records["NDRC5"] = []core.AuditRecord{submittedRecord("NDRC5")}

	store, err := NewCachedAuditStore(base, newTestAuditCacheService(t))
	if err != nil {
		t.Fatalf("new cached audit store: %v", err)
	}

	first, err := store.Trail(context.Background(), "NDRC5")
	if err != nil {
		t.Fatalf("first trail: %v", err)
	}
	first[0].Files[0].Reference = "mutated"
	*first[0].Files[0].TransferStatus = 500

	second, err := store.Trail(context.Background(), "NDRC5")
	if err != nil {
		t.Fatalf("second trail: %v", err)
	}
	if second[0].Files[0].Reference != "ref-1" {
		t.Fatalf("expected cached entry to be isolated from caller mutation, got %q", second[0].Files[0].Reference)
	}
	if *second[0].Files[0].TransferStatus != http.StatusOK {
		t.Fatalf("expected cached transfer status to be isolated, got %d", *second[0].Files[0].TransferStatus)
	}
}
