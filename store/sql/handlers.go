package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func auditHandlers() repository.ModelHandlers[*auditRecordRow] {
	return repository.ModelHandlers[*auditRecordRow]{
		NewRecord: func() *auditRecordRow {
			return &auditRecordRow{}
		},
		GetID: func(row *auditRecordRow) uuid.UUID {
			if row == nil {
				return uuid.Nil
			}
			return parseUUID(row.ID)
		},
		SetID: func(row *auditRecordRow, id uuid.UUID) {
			if row == nil {
				return
			}
			row.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(row *auditRecordRow) string {
			if row == nil {
				return ""
			}
			return strings.TrimSpace(row.ID)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
