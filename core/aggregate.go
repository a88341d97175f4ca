package core

import (
	"net/http"
	"strconv"
	"strings"
)

// AggregateAccepted merges the submission outcome and the full transfer
// result sequence into the accepted response. Per-file failures never
// change the transport status on this path.
func AggregateAccepted(correlationID, caseID string, results []FileTransferResult) CaseResponse {
	ordered := make([]FileTransferResult, len(results))
	copy(ordered, results)
	return CaseResponse{
		CorrelationID: strings.TrimSpace(correlationID),
		StatusCode:    http.StatusAccepted,
		Result: &CaseResult{
			CaseID:              strings.TrimSpace(caseID),
			FileTransferResults: ordered,
		},
	}
}

// AggregateRejected builds the failure response. The correlation id is
// always present even though the request was not accepted.
func AggregateRejected(correlationID string, failure SubmissionFailure) CaseResponse {
	failure.StatusCode = deriveFailureStatus(failure)
	return CaseResponse{
		CorrelationID: strings.TrimSpace(correlationID),
		StatusCode:    failure.StatusCode,
		Failure:       &failure,
	}
}

// deriveFailureStatus keeps upstream-provided statuses when usable,
// parses numeric error codes as a fallback, and lands on 502 for
// unreachable or unclassifiable upstream failures.
func deriveFailureStatus(failure SubmissionFailure) int {
	if usableStatus(failure.StatusCode) {
		return failure.StatusCode
	}
	if code, err := strconv.Atoi(strings.TrimSpace(failure.ErrorCode)); err == nil && usableStatus(code) {
		return code
	}
	if failure.Kind == FailureKindStructural || failure.Kind == FailureKindValidation {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func usableStatus(status int) bool {
	return status >= 400 && status <= 599
}
