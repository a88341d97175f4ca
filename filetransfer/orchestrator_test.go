package filetransfer

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-reclaim/core"
)

type scriptedSender struct {
	mu       sync.Mutex
	requests []core.FileTransferRequest
	statuses map[string]int
	errs     map[string]error
	delays   map[string]time.Duration

	inFlight int32
	maxSeen  int32
}

func (s *scriptedSender) Send(_ context.Context, req core.FileTransferRequest) (int, error) {
	current := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&s.maxSeen)
		if current <= seen || atomic.CompareAndSwapInt32(&s.maxSeen, seen, current) {
			break
		}
	}

	if delay, ok := s.delays[req.File.Reference]; ok {
		time.Sleep(delay)
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if err, ok := s.errs[req.File.Reference]; ok {
		return 0, err
	}
	if status, ok := s.statuses[req.File.Reference]; ok {
		return status, nil
	}
	return http.StatusOK, nil
}

func batchOf(references ...string) core.TransferBatch {
	files := make([]core.UploadedFile, 0, len(references))
	for _, reference := range references {
		files = append(files, core.UploadedFile{
			Reference:   reference,
			DownloadURL: "https://upscan.example/" + reference,
			FileName:    reference + ".pdf",
		})
	}
	return core.TransferBatch{
		CaseID:         "NDRC000A00AB0ABCABC0AB00",
		CorrelationID:  "corr-1",
		ConversationID: "conv-1",
		Files:          files,
	}
}

func newTestOrchestrator(sender Sender) *Orchestrator {
	orchestrator := NewOrchestrator(sender, core.FileTransferConfig{MaxConcurrent: 4}, "Digital")
	orchestrator.Now = func() time.Time { return time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC) }
	return orchestrator
}

func TestOrchestrator_TransferAll_KeepsInputOrderDespiteCompletionOrder(t *testing.T) {
	// The first file finishes last; slot order must still match input order.
	sender := &scriptedSender{delays: map[string]time.Duration{"ref-1": 30 * time.Millisecond}}
	orchestrator := newTestOrchestrator(sender)

	results := orchestrator.TransferAll(context.Background(), batchOf("ref-1", "ref-2", "ref-3"))
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"ref-1", "ref-2", "ref-3"} {
		if results[i].Reference != want {
			t.Fatalf("slot %d out of order: expected %q, got %q", i, want, results[i].Reference)
		}
		if !results[i].Success || results[i].HTTPStatus != http.StatusOK {
			t.Fatalf("expected success in slot %d, got %+v", i, results[i])
		}
	}
}

func TestOrchestrator_TransferAll_OneFailureNeverAbortsOthers(t *testing.T) {
	sender := &scriptedSender{errs: map[string]error{"ref-2": fmt.Errorf("connection reset")}}
	orchestrator := newTestOrchestrator(sender)

	results := orchestrator.TransferAll(context.Background(), batchOf("ref-1", "ref-2", "ref-3"))
	if len(sender.requests) != 3 {
		t.Fatalf("expected all 3 transfers dispatched, got %d", len(sender.requests))
	}
	if results[1].Success || results[1].HTTPStatus != http.StatusBadGateway {
		t.Fatalf("expected synthesized 502 in slot 1, got %+v", results[1])
	}
	if !results[0].Success || !results[2].Success {
		t.Fatalf("expected surrounding slots to succeed, got %+v and %+v", results[0], results[2])
	}
}

func TestOrchestrator_TransferAll_TimeoutSynthesizes504(t *testing.T) {
	sender := &scriptedSender{errs: map[string]error{
		"ref-1": fmt.Errorf("send: %w", context.DeadlineExceeded),
	}}
	orchestrator := newTestOrchestrator(sender)

	results := orchestrator.TransferAll(context.Background(), batchOf("ref-1"))
	if results[0].Success || results[0].HTTPStatus != http.StatusGatewayTimeout {
		t.Fatalf("expected synthesized 504, got %+v", results[0])
	}
	if results[0].TransferredAt.IsZero() {
		t.Fatalf("expected completion timestamp on synthesized failure")
	}
}

func TestOrchestrator_TransferAll_NonSuccessStatusRecordedVerbatim(t *testing.T) {
	sender := &scriptedSender{statuses: map[string]int{"ref-1": http.StatusConflict}}
	orchestrator := newTestOrchestrator(sender)

	results := orchestrator.TransferAll(context.Background(), batchOf("ref-1"))
	if results[0].Success || results[0].HTTPStatus != http.StatusConflict {
		t.Fatalf("expected 409 recorded verbatim, got %+v", results[0])
	}
}

func TestOrchestrator_TransferAll_StampsBatchContext(t *testing.T) {
	sender := &scriptedSender{}
	orchestrator := newTestOrchestrator(sender)

	orchestrator.TransferAll(context.Background(), batchOf("ref-1", "ref-2"))

	if len(sender.requests) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(sender.requests))
	}
	positions := map[int]bool{}
	for _, req := range sender.requests {
		if req.CaseID != "NDRC000A00AB0ABCABC0AB00" {
			t.Fatalf("expected case id on request, got %q", req.CaseID)
		}
		if req.CorrelationID != "corr-1" || req.ConversationID != "conv-1" {
			t.Fatalf("expected correlation context, got %+v", req)
		}
		if req.SourceSystem != "Digital" {
			t.Fatalf("expected source system stamp, got %q", req.SourceSystem)
		}
		if req.BatchCount != 2 {
			t.Fatalf("expected batch count 2, got %d", req.BatchCount)
		}
		positions[req.BatchPosition] = true
	}
	if !positions[1] || !positions[2] {
		t.Fatalf("expected 1-based positions 1 and 2, got %v", positions)
	}
}

func TestOrchestrator_TransferAll_RespectsConcurrencyBound(t *testing.T) {
	sender := &scriptedSender{delays: map[string]time.Duration{
		"ref-1": 20 * time.Millisecond,
		"ref-2": 20 * time.Millisecond,
		"ref-3": 20 * time.Millisecond,
		"ref-4": 20 * time.Millisecond,
		"ref-5": 20 * time.Millisecond,
		"ref-6": 20 * time.Millisecond,
	}}
	orchestrator := NewOrchestrator(sender, core.FileTransferConfig{MaxConcurrent: 2}, "Digital")

	results := orchestrator.TransferAll(context.Background(), batchOf("ref-1", "ref-2", "ref-3", "ref-4", "ref-5", "ref-6"))
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	if max := atomic.LoadInt32(&sender.maxSeen); max > 2 {
		t.Fatalf("expected at most 2 concurrent transfers, saw %d", max)
	}
}

func TestOrchestrator_TransferAll_EmptyBatchYieldsEmptyResults(t *testing.T) {
	orchestrator := newTestOrchestrator(&scriptedSender{})
	results := orchestrator.TransferAll(context.Background(), core.TransferBatch{})
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
}

func TestOrchestrator_TransferAll_NilSenderFailsEverySlot(t *testing.T) {
	orchestrator := &Orchestrator{}
	results := orchestrator.TransferAll(context.Background(), batchOf("ref-1", "ref-2"))
	if len(results) != 2 {
		t.Fatalf("expected slot per file, got %d", len(results))
	}
	for i, result := range results {
		if result.Success || result.HTTPStatus != http.StatusBadGateway {
			t.Fatalf("expected synthesized 502 in slot %d, got %+v", i, result)
		}
	}
}
