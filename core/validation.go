package core

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const maxDescriptionLength = 1024

const entryDateLayout = "20060102"

// ValidateClaim applies every business rule and accumulates all
// violations into one validation error. It never stops at the first
// failure.
func ValidateClaim(content ClaimContent, files []UploadedFile) error {
	violations := []goerrors.FieldError{}

	if strings.TrimSpace(content.CaseID) == "" {
		violations = append(violations, goerrors.FieldError{
			Field:   "caseId",
			Message: "case id is required",
		})
	}
	if strings.TrimSpace(content.Description) == "" {
		violations = append(violations, goerrors.FieldError{
			Field:   "description",
			Message: "description is required",
		})
	} else if len(content.Description) > maxDescriptionLength {
		violations = append(violations, goerrors.FieldError{
			Field:   "description",
			Message: fmt.Sprintf("description exceeds %d characters", maxDescriptionLength),
		})
	}

	if len(content.AmendmentTypes) == 0 {
		violations = append(violations, goerrors.FieldError{
			Field:   "amendmentTypes",
			Message: "at least one amendment type is required",
		})
	}
	for i, amendment := range content.AmendmentTypes {
		if !amendment.Valid() {
			violations = append(violations, goerrors.FieldError{
				Field:   fmt.Sprintf("amendmentTypes[%d]", i),
				Message: fmt.Sprintf("unknown amendment type %q", string(amendment)),
			})
		}
	}

	if violation, ok := validateEntryDate(content.EntryDate); !ok {
		violations = append(violations, violation)
	}

	for i, file := range files {
		if strings.TrimSpace(file.Reference) == "" {
			violations = append(violations, goerrors.FieldError{
				Field:   fmt.Sprintf("uploadedFiles[%d].reference", i),
				Message: "file reference is required",
			})
		}
		if strings.TrimSpace(file.DownloadURL) == "" {
			violations = append(violations, goerrors.FieldError{
				Field:   fmt.Sprintf("uploadedFiles[%d].downloadUrl", i),
				Message: "file download url is required",
			})
		}
		if strings.TrimSpace(file.FileName) == "" {
			violations = append(violations, goerrors.FieldError{
				Field:   fmt.Sprintf("uploadedFiles[%d].fileName", i),
				Message: "file name is required",
			})
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return goerrors.NewValidation("core: claim validation failed", violations...).
		WithCode(http.StatusBadRequest).
		WithTextCode(ClaimErrorValidationFailed)
}

func validateEntryDate(value string) (goerrors.FieldError, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return goerrors.FieldError{
			Field:   "entryDate",
			Message: "entry date is required",
		}, false
	}
	if len(trimmed) != 8 || !digitsOnly(trimmed) {
		return goerrors.FieldError{
			Field:   "entryDate",
			Message: "entry date must use the 8 digit yyyymmdd form",
		}, false
	}
	if _, err := time.Parse(entryDateLayout, trimmed); err != nil {
		return goerrors.FieldError{
			Field:   "entryDate",
			Message: fmt.Sprintf("entry date %q is not a calendar date", trimmed),
		}, false
	}
	return goerrors.FieldError{}, true
}

func digitsOnly(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
