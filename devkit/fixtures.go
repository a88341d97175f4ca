package devkit

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goliatone/go-reclaim/core"
)

// FixtureCaseID is a well-formed duty-repayment case reference shared
// by the fixtures.
const FixtureCaseID = "NDRC000A00AB0ABCABC0AB00"

// FixtureUploadTime keeps file fixtures deterministic.
var FixtureUploadTime = time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC)

// RecordingAuditSink captures persisted audit records; Err injects a
// sink failure to exercise the logged-and-swallowed path.
type RecordingAuditSink struct {
	mu      sync.Mutex
	records []core.AuditRecord
	Err     error
}

func NewRecordingAuditSink() *RecordingAuditSink {
	return &RecordingAuditSink{}
}

func (s *RecordingAuditSink) Record(_ context.Context, record core.AuditRecord) error {
	if s == nil {
		return fmt.Errorf("devkit: audit sink is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.records = append(s.records, cloneAuditRecord(record))
	return nil
}

func (s *RecordingAuditSink) Records() []core.AuditRecord {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.AuditRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, cloneAuditRecord(record))
	}
	return out
}

// RecordingAuditEmitter captures emitted claim events in order.
type RecordingAuditEmitter struct {
	mu       sync.Mutex
	accepted []core.ClaimAcceptedEvent
	rejected []core.ClaimRejectedEvent
}

func NewRecordingAuditEmitter() *RecordingAuditEmitter {
	return &RecordingAuditEmitter{}
}

func (e *RecordingAuditEmitter) ClaimAccepted(_ context.Context, event core.ClaimAcceptedEvent) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.accepted = append(e.accepted, event)
}

func (e *RecordingAuditEmitter) ClaimRejected(_ context.Context, event core.ClaimRejectedEvent) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rejected = append(e.rejected, event)
}

func (e *RecordingAuditEmitter) Accepted() []core.ClaimAcceptedEvent {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.ClaimAcceptedEvent(nil), e.accepted...)
}

func (e *RecordingAuditEmitter) Rejected() []core.ClaimRejectedEvent {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.ClaimRejectedEvent(nil), e.rejected...)
}

// CaseAcceptedScript scripts the case-management API accepting a
// submission and assigning caseID.
func CaseAcceptedScript(caseID string) TransportScript {
	return TransportScript{
		Response: core.TransportResponse{
			StatusCode: http.StatusCreated,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       []byte(fmt.Sprintf(`{"caseId":%q}`, caseID)),
		},
	}
}

// CaseRejectedScript scripts an upstream submission failure with the
// verbatim error code and message the aggregator must pass through.
func CaseRejectedScript(status int, errorCode string, errorMessage string) TransportScript {
	return TransportScript{
		Response: core.TransportResponse{
			StatusCode: status,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       []byte(fmt.Sprintf(`{"errorCode":%q,"errorMessage":%q}`, errorCode, errorMessage)),
		},
	}
}

// TransferScript scripts one file-transfer call; the status is used
// verbatim as the per-file result status.
func TransferScript(status int) TransportScript {
	return TransportScript{
		Response: core.TransportResponse{StatusCode: status},
	}
}

// ClaimContentFixture builds a content payload that passes validation.
func ClaimContentFixture() core.ClaimContent {
	return core.ClaimContent{
		CaseID:         FixtureCaseID,
		Description:    "further information for the duty repayment case",
		AmendmentTypes: []core.AmendmentType{core.AmendmentFurtherInformation},
		EntryDate:      "20250311",
	}
}

// UploadedFilesFixture builds count files referenced ref-1..ref-count.
func UploadedFilesFixture(count int) []core.UploadedFile {
	files := make([]core.UploadedFile, 0, count)
	for i := 1; i <= count; i++ {
		files = append(files, core.UploadedFile{
			Reference:       fmt.Sprintf("ref-%d", i),
			DownloadURL:     fmt.Sprintf("https://files.example.test/downloads/ref-%d", i),
			UploadTimestamp: FixtureUploadTime,
			Checksum:        fmt.Sprintf("checksum-%d", i),
			FileName:        fmt.Sprintf("test%d.jpeg", i),
			FileMimeType:    "image/jpeg",
		})
	}
	return files
}

// SubmitRequestFixture builds a complete valid submission request.
func SubmitRequestFixture(correlationID string, fileCount int) core.SubmitRequest {
	return core.SubmitRequest{
		CorrelationID: correlationID,
		Content:       ClaimContentFixture(),
		Files:         UploadedFilesFixture(fileCount),
	}
}

var (
	_ core.AuditSink    = (*RecordingAuditSink)(nil)
	_ core.AuditEmitter = (*RecordingAuditEmitter)(nil)
)
