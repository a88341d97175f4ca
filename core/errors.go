package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ClaimErrorBadPayload        = "CASE_BAD_PAYLOAD"
	ClaimErrorValidationFailed  = "CASE_VALIDATION_FAILED"
	ClaimErrorSubmissionFailed  = "CASE_SUBMISSION_FAILED"
	ClaimErrorTransferFailed    = "CASE_TRANSFER_FAILED"
	ClaimErrorAuditUnavailable  = "CASE_AUDIT_UNAVAILABLE"
	ClaimErrorDependencyMissing = "CASE_DEPENDENCY_MISSING"
	ClaimErrorInternal          = "CASE_INTERNAL_ERROR"
)

func claimErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureClaimErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "cannot be parsed"), strings.Contains(msg, "malformed payload"):
		return newClaimError(err.Error(), goerrors.CategoryBadInput, ClaimErrorBadPayload)
	case strings.Contains(msg, "case submission"), strings.Contains(msg, "case-management"):
		return newClaimError(err.Error(), goerrors.CategoryExternal, ClaimErrorSubmissionFailed)
	case strings.Contains(msg, "file transfer"), strings.Contains(msg, "file-transfer"):
		return newClaimError(err.Error(), goerrors.CategoryExternal, ClaimErrorTransferFailed)
	case strings.Contains(msg, "audit"):
		return newClaimError(err.Error(), goerrors.CategoryExternal, ClaimErrorAuditUnavailable)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newClaimError(err.Error(), goerrors.CategoryBadInput, ClaimErrorValidationFailed)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureClaimErrorEnvelope(mapped)
}

func newClaimError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureClaimErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureClaimErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = claimHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultClaimTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultClaimTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput:
		return ClaimErrorBadPayload
	case goerrors.CategoryValidation:
		return ClaimErrorValidationFailed
	case goerrors.CategoryExternal:
		return ClaimErrorSubmissionFailed
	default:
		return ClaimErrorInternal
	}
}

func claimHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ValidationMessage flattens an accumulated validation error into the
// single errorMessage string the failure body carries. Field order is
// preserved from validation order.
func ValidationMessage(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return err.Error()
	}
	violations := richErr.AllValidationErrors()
	if len(violations) == 0 {
		return richErr.Message
	}
	parts := make([]string, 0, len(violations))
	for _, violation := range violations {
		field := strings.TrimSpace(violation.Field)
		message := strings.TrimSpace(violation.Message)
		if field == "" {
			parts = append(parts, message)
			continue
		}
		parts = append(parts, field+": "+message)
	}
	return strings.Join(parts, "; ")
}

// ValidationFailure converts an accumulated validation error into the
// failure shape carried by the response and the audit record.
func ValidationFailure(err error) SubmissionFailure {
	return SubmissionFailure{
		Kind:         FailureKindValidation,
		ErrorCode:    ClaimErrorValidationFailed,
		ErrorMessage: ValidationMessage(err),
		StatusCode:   http.StatusBadRequest,
	}
}

// StructuralFailure is the failure shape for payloads that cannot be
// decoded at all, distinct from business-rule validation.
func StructuralFailure(message string) SubmissionFailure {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "request payload cannot be parsed"
	}
	return SubmissionFailure{
		Kind:         FailureKindStructural,
		ErrorCode:    ClaimErrorBadPayload,
		ErrorMessage: message,
		StatusCode:   http.StatusBadRequest,
	}
}
