package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-reclaim/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuditStore persists claim audit records through bun. Trail reads are
// newest-first so the most recent submission attempt for a case comes
// back first.
type AuditStore struct {
	db   *bun.DB
	repo repository.Repository[*auditRecordRow]
}

func NewAuditStore(db *bun.DB) (*AuditStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*auditRecordRow](db, auditHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid audit repository wiring: %w", err)
		}
	}
	return &AuditStore{db: db, repo: repo}, nil
}

func (s *AuditStore) Record(ctx context.Context, record core.AuditRecord) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: audit store is not configured")
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := record.CreatedAt.UTC()
	if record.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	action := strings.TrimSpace(record.Action)
	if action == "" {
		action = core.AuditActionSubmit
	}

	row := &auditRecordRow{
		ID:            id,
		CorrelationID: strings.TrimSpace(record.CorrelationID),
		CaseID:        strings.TrimSpace(record.CaseID),
		Description:   record.Description,
		Action:        action,
		Files:         auditFilesToRows(record.Files),
		FileCount:     record.FileCount,
		Success:       record.Success,
		ErrorCode:     record.ErrorCode,
		ErrorMessage:  record.ErrorMessage,
		CreatedAt:     createdAt,
	}
	if row.FileCount == 0 {
		row.FileCount = len(row.Files)
	}

	_, err := s.repo.Create(ctx, row)
	return err
}

func (s *AuditStore) Trail(ctx context.Context, caseID string) ([]core.AuditRecord, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: audit store is not configured")
	}
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, fmt.Errorf("sqlstore: case id is required")
	}

	rows, _, err := s.repo.List(ctx,
		repository.SelectBy("case_id", "=", caseID),
		repository.OrderBy("created_at DESC"),
	)
	if err != nil {
		return nil, err
	}
	records := make([]core.AuditRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, auditRowToDomain(row))
	}
	return records, nil
}

func (s *AuditStore) List(ctx context.Context, filter core.AuditFilter) (core.AuditPage, error) {
	if s == nil || s.repo == nil {
		return core.AuditPage{}, fmt.Errorf("sqlstore: audit store is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 25
	}
	offset := (page - 1) * perPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(perPage, offset),
	}
	if caseID := strings.TrimSpace(filter.CaseID); caseID != "" {
		selectors = append(selectors, repository.SelectBy("case_id", "=", caseID))
	}
	if correlationID := strings.TrimSpace(filter.CorrelationID); correlationID != "" {
		selectors = append(selectors, repository.SelectBy("correlation_id", "=", correlationID))
	}
	if action := strings.TrimSpace(filter.Action); action != "" {
		selectors = append(selectors, repository.SelectBy("action", "=", action))
	}
	if filter.Success != nil {
		// "1"/"0" compare cleanly on both the postgres boolean and the
		// sqlite integer representation.
		value := "0"
		if *filter.Success {
			value = "1"
		}
		selectors = append(selectors, repository.SelectBy("success", "=", value))
	}
	if filter.From != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", ">=", filter.From.UTC()))
	}
	if filter.To != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", "<=", filter.To.UTC()))
	}

	rows, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.AuditPage{}, err
	}
	items := make([]core.AuditRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, auditRowToDomain(row))
	}
	return core.AuditPage{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: offset+len(items) < total,
	}, nil
}

func (s *AuditStore) Prune(ctx context.Context, policy core.AuditRetentionPolicy) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: audit store is not configured")
	}
	var deleted int64
	now := time.Now().UTC()

	if policy.TTL > 0 {
		cutoff := now.Add(-policy.TTL)
		res, err := s.db.NewDelete().
			Model((*auditRecordRow)(nil)).
			Where("created_at < ?", cutoff).
			Exec(ctx)
		if err != nil {
			return deleted, err
		}
		affected, _ := res.RowsAffected()
		deleted += affected
	}

	if policy.MaxRows > 0 {
		total, err := s.db.NewSelect().Model((*auditRecordRow)(nil)).Count(ctx)
		if err != nil {
			return deleted, err
		}
		excess := total - policy.MaxRows
		if excess > 0 {
			res, err := s.db.NewRaw(
				"DELETE FROM claim_audit_records WHERE id IN (SELECT id FROM claim_audit_records ORDER BY created_at ASC LIMIT ?)",
				excess,
			).Exec(ctx)
			if err != nil {
				return deleted, err
			}
			affected, _ := res.RowsAffected()
			deleted += affected
		}
	}

	return deleted, nil
}

func auditFilesToRows(entries []core.AuditFileEntry) []auditFileRow {
	rows := make([]auditFileRow, 0, len(entries))
	for _, entry := range entries {
		row := auditFileRow{
			Reference:       entry.Reference,
			FileName:        entry.FileName,
			Checksum:        entry.Checksum,
			FileMimeType:    entry.FileMimeType,
			UploadTimestamp: entry.UploadTimestamp.UTC(),
			DownloadURL:     entry.DownloadURL,
			TransferSuccess: entry.TransferSuccess,
		}
		row.TransferStatus = cloneIntPointer(entry.TransferStatus)
		row.TransferredAt = cloneTimePointer(entry.TransferredAt)
		rows = append(rows, row)
	}
	return rows
}

func auditRowToDomain(row *auditRecordRow) core.AuditRecord {
	if row == nil {
		return core.AuditRecord{}
	}
	files := make([]core.AuditFileEntry, 0, len(row.Files))
	for _, file := range row.Files {
		entry := core.AuditFileEntry{
			Reference:       file.Reference,
			FileName:        file.FileName,
			Checksum:        file.Checksum,
			FileMimeType:    file.FileMimeType,
			UploadTimestamp: file.UploadTimestamp,
			DownloadURL:     file.DownloadURL,
			TransferSuccess: file.TransferSuccess,
		}
		entry.TransferStatus = cloneIntPointer(file.TransferStatus)
		entry.TransferredAt = cloneTimePointer(file.TransferredAt)
		files = append(files, entry)
	}
	return core.AuditRecord{
		ID:            row.ID,
		CorrelationID: row.CorrelationID,
		CaseID:        row.CaseID,
		Description:   row.Description,
		Action:        row.Action,
		Files:         files,
		FileCount:     row.FileCount,
		Success:       row.Success,
		ErrorCode:     row.ErrorCode,
		ErrorMessage:  row.ErrorMessage,
		CreatedAt:     row.CreatedAt,
	}
}

var (
	_ core.AuditSink       = (*AuditStore)(nil)
	_ core.AuditTrailStore = (*AuditStore)(nil)
)
