package query

import (
	"context"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-reclaim/core"
)

func TestCaseAuditTrailMessage_ValidateReturnsRichError(t *testing.T) {
	err := (CaseAuditTrailMessage{CaseID: "   "}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.ClaimErrorBadPayload {
		t.Fatalf("expected %q text code, got %q", core.ClaimErrorBadPayload, rich.TextCode)
	}
	if rich.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 code, got %d", rich.Code)
	}
	fields := rich.AllValidationErrors()
	if len(fields) != 1 || fields[0].Field != "case_id" {
		t.Fatalf("expected case_id field error, got %#v", fields)
	}
}

func TestListAuditRecordsMessage_ValidateRejectsNegativePaging(t *testing.T) {
	err := (ListAuditRecordsMessage{Filter: core.AuditFilter{Page: -1}}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	fields := rich.AllValidationErrors()
	if len(fields) != 1 || fields[0].Field != "page" {
		t.Fatalf("expected page field error, got %#v", fields)
	}

	err = (ListAuditRecordsMessage{Filter: core.AuditFilter{PerPage: -5}}).Validate()
	if err == nil {
		t.Fatalf("expected per_page validation error")
	}
}

func TestListAuditRecordsMessage_ValidateAcceptsZeroPaging(t *testing.T) {
	if err := (ListAuditRecordsMessage{}).Validate(); err != nil {
		t.Fatalf("expected zero paging to pass validation: %v", err)
	}
}

func TestCaseAuditTrailQuery_NilReaderReturnsRichError(t *testing.T) {
	var qry *CaseAuditTrailQuery
	_, err := qry.Query(context.Background(), CaseAuditTrailMessage{CaseID: "NDRC1"})
	if err == nil {
		t.Fatalf("expected query dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryOperation {
		t.Fatalf("expected operation category, got %q", rich.Category)
	}
	if rich.TextCode != core.ClaimErrorDependencyMissing {
		t.Fatalf("expected %q text code, got %q", core.ClaimErrorDependencyMissing, rich.TextCode)
	}
}

func TestListAuditRecordsQuery_NilReaderReturnsRichError(t *testing.T) {
	var qry *ListAuditRecordsQuery
	_, err := qry.Query(context.Background(), ListAuditRecordsMessage{})
	if err == nil {
		t.Fatalf("expected query dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryOperation {
		t.Fatalf("expected operation category, got %q", rich.Category)
	}
}
