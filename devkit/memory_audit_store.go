package devkit

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-reclaim/core"
)

// MemoryAuditStore is an in-process audit trail store for tests and
// local composition. Reads return copies; trail order is newest-first
// like the SQL store.
type MemoryAuditStore struct {
	mu      sync.Mutex
	records []core.AuditRecord
	seq     int
	Now     func() time.Time
}

func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *MemoryAuditStore) Record(_ context.Context, record core.AuditRecord) error {
	if s == nil {
		return fmt.Errorf("devkit: audit store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if strings.TrimSpace(record.ID) == "" {
		record.ID = fmt.Sprintf("audit-%d", s.seq)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.currentTime()
	}
	if strings.TrimSpace(record.Action) == "" {
		record.Action = core.AuditActionSubmit
	}
	if record.FileCount == 0 {
		record.FileCount = len(record.Files)
	}
	s.records = append(s.records, cloneAuditRecord(record))
	return nil
}

func (s *MemoryAuditStore) Trail(_ context.Context, caseID string) ([]core.AuditRecord, error) {
	if s == nil {
		return nil, fmt.Errorf("devkit: audit store is nil")
	}
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, fmt.Errorf("devkit: case id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]core.AuditRecord, 0, len(s.records))
	for _, record := range s.records {
		if record.CaseID == caseID {
			matches = append(matches, cloneAuditRecord(record))
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func (s *MemoryAuditStore) List(_ context.Context, filter core.AuditFilter) (core.AuditPage, error) {
	if s == nil {
		return core.AuditPage{}, fmt.Errorf("devkit: audit store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]core.AuditRecord, 0, len(s.records))
	for _, record := range s.records {
		if !matchesFilter(record, filter) {
			continue
		}
		matches = append(matches, cloneAuditRecord(record))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 25
	}
	offset := (page - 1) * perPage

	total := len(matches)
	items := []core.AuditRecord{}
	if offset < total {
		end := offset + perPage
		if end > total {
			end = total
		}
		items = matches[offset:end]
	}
	return core.AuditPage{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: offset+len(items) < total,
	}, nil
}

func (s *MemoryAuditStore) Prune(_ context.Context, policy core.AuditRetentionPolicy) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("devkit: audit store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	if policy.TTL > 0 {
		cutoff := s.currentTime().Add(-policy.TTL)
		kept := s.records[:0]
		for _, record := range s.records {
			if record.CreatedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, record)
		}
		s.records = kept
	}
	if policy.MaxRows > 0 && len(s.records) > policy.MaxRows {
		ordered := append([]core.AuditRecord(nil), s.records...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		})
		excess := len(ordered) - policy.MaxRows
		drop := make(map[string]struct{}, excess)
		for _, record := range ordered[:excess] {
			drop[record.ID] = struct{}{}
		}
		kept := s.records[:0]
		for _, record := range s.records {
			if _, gone := drop[record.ID]; gone {
				removed++
				continue
			}
			kept = append(kept, record)
		}
		s.records = kept
	}
	return removed, nil
}

func (s *MemoryAuditStore) currentTime() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func matchesFilter(record core.AuditRecord, filter core.AuditFilter) bool {
	if caseID := strings.TrimSpace(filter.CaseID); caseID != "" && record.CaseID != caseID {
		return false
	}
	if correlationID := strings.TrimSpace(filter.CorrelationID); correlationID != "" && record.CorrelationID != correlationID {
		return false
	}
	if action := strings.TrimSpace(filter.Action); action != "" && record.Action != action {
		return false
	}
	if filter.Success != nil && record.Success != *filter.Success {
		return false
	}
	if filter.From != nil && record.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && record.CreatedAt.After(*filter.To) {
		return false
	}
	return true
}

func cloneAuditRecord(in core.AuditRecord) core.AuditRecord {
	out := in
	if len(in.Files) > 0 {
		out.Files = make([]core.AuditFileEntry, len(in.Files))
		for i, entry := range in.Files {
			cloned := entry
			if entry.TransferStatus != nil {
				status := *entry.TransferStatus
				cloned.TransferStatus = &status
			}
			if entry.TransferredAt != nil {
				at := entry.TransferredAt.UTC()
				cloned.TransferredAt = &at
			}
			out.Files[i] = cloned
		}
	}
	return out
}

var _ core.AuditTrailStore = (*MemoryAuditStore)(nil)
