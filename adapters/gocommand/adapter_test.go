package gocommand

import (
	"context"
	"net/http"
	"testing"

	"github.com/goliatone/go-command"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	reclaimcommand "github.com/goliatone/go-reclaim/command"
	"github.com/goliatone/go-reclaim/core"
	reclaimquery "github.com/goliatone/go-reclaim/query"
)

type retentionProbeMessage struct{}

func (retentionProbeMessage) Type() string { return "reclaim.adapter.retention.probe" }

type queueProbeMessage struct{}

func (queueProbeMessage) Type() string { return "reclaim.adapter.queue.probe" }

type surfaceClaimService struct {
	submitCalls int
	lastSubmit  core.SubmitRequest
	pruneCalls  int
	trailCalls  int
	listCalls   int
}

func (s *surfaceClaimService) Submit(_ context.Context, req core.SubmitRequest) (core.CaseResponse, error) {
	s.submitCalls++
	s.lastSubmit = req
	return core.CaseResponse{
		CorrelationID: req.CorrelationID,
		StatusCode:    http.StatusAccepted,
		Result:        &core.CaseResult{CaseID: req.Content.CaseID},
	}, nil
}

func (s *surfaceClaimService) PruneAuditRecords(context.Context) (int64, error) {
	s.pruneCalls++
	return 3, nil
}

func (s *surfaceClaimService) AuditTrail(_ context.Context, caseID string) ([]core.AuditRecord, error) {
	s.trailCalls++
	return []core.AuditRecord{
		{ID: "rec-1", CaseID: caseID, Action: core.AuditActionSubmit, Success: true},
	}, nil
}

func (s *surfaceClaimService) ListAuditRecords(context.Context, core.AuditFilter) (core.AuditPage, error) {
	s.listCalls++
	return core.AuditPage{Page: 1, PerPage: 25}, nil
}

var _ ClaimService = (*surfaceClaimService)(nil)

func TestRegistryAndDispatchWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	executed := 0
	resolverRuns := 0

	cmd := command.CommandFunc[retentionProbeMessage](func(context.Context, retentionProbeMessage) error {
		executed++
		return nil
	})
	subscription, err := RegisterAndSubscribe(adapter, cmd)
	if err != nil {
		t.Fatalf("register and subscribe: %v", err)
	}
	defer subscription.Unsubscribe()

	if err := adapter.AddResolver("audit", func(any, command.CommandMeta, *command.Registry) error {
		resolverRuns++
		return nil
	}); err != nil {
		t.Fatalf("add resolver: %v", err)
	}
	if !adapter.HasResolver("audit") {
		t.Fatalf("expected audit resolver to be registered")
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}
	if resolverRuns == 0 {
		t.Fatalf("expected resolver hook to run during initialization")
	}

	if err := Dispatch(context.Background(), retentionProbeMessage{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected command execution count=1, got %d", executed)
	}
}

func TestQueueResolverHookWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	queueRegistry := jobqueuecommand.NewRegistry()

	cmd := command.CommandFunc[queueProbeMessage](func(context.Context, queueProbeMessage) error { return nil })

	if err := adapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	if err := adapter.RegisterCommand(cmd); err != nil {
		t.Fatalf("register command: %v", err)
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if _, ok := queueRegistry.Get("reclaim.adapter.queue.probe"); !ok {
		t.Fatalf("expected command to be mirrored into queue registry")
	}
}

func TestRegisterClaimSurface_SubscribesAllHandlers(t *testing.T) {
	svc := &surfaceClaimService{}
	adapter := NewRegistryAdapter(command.NewRegistry())

	surface, err := RegisterClaimSurface(adapter, NewClaimHandlerSet(svc))
	if err != nil {
		t.Fatalf("register claim surface: %v", err)
	}
	defer surface.Close()
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	collector := command.NewResult[core.CaseResponse]()
	ctx := command.ContextWithResult(context.Background(), collector)
	if err := Dispatch(ctx, reclaimcommand.SubmitClaimMessage{
		Request: core.SubmitRequest{
			CorrelationID: "corr-surface-1",
			Content: core.ClaimContent{
				CaseID:      "NDRC000A00AB0ABCABC0AB00",
				Description: "further information",
			},
		},
	}); err != nil {
		t.Fatalf("dispatch submit: %v", err)
	}
	if svc.submitCalls != 1 || svc.lastSubmit.CorrelationID != "corr-surface-1" {
		t.Fatalf("expected submit handler invocation, calls=%d", svc.submitCalls)
	}
	response, ok := collector.Load()
	if !ok || response.StatusCode != http.StatusAccepted {
		t.Fatalf("expected accepted case response on collector, got %+v ok=%v", response, ok)
	}

	pruneCollector := command.NewResult[int64]()
	pruneCtx := command.ContextWithResult(context.Background(), pruneCollector)
	if err := Dispatch(pruneCtx, reclaimcommand.PruneAuditRecordsMessage{}); err != nil {
		t.Fatalf("dispatch prune: %v", err)
	}
	if svc.pruneCalls != 1 {
		t.Fatalf("expected prune handler invocation, calls=%d", svc.pruneCalls)
	}
	deleted, ok := pruneCollector.Load()
	if !ok || deleted != 3 {
		t.Fatalf("expected deleted count on collector, got %d ok=%v", deleted, ok)
	}

	trail, err := Query[reclaimquery.CaseAuditTrailMessage, []core.AuditRecord](
		context.Background(),
		reclaimquery.CaseAuditTrailMessage{CaseID: "NDRC000A00AB0ABCABC0AB00"},
	)
	if err != nil {
		t.Fatalf("query trail: %v", err)
	}
	if len(trail) != 1 || svc.trailCalls != 1 {
		t.Fatalf("expected trail query through surface, records=%d calls=%d", len(trail), svc.trailCalls)
	}

	page, err := Query[reclaimquery.ListAuditRecordsMessage, core.AuditPage](
		context.Background(),
		reclaimquery.ListAuditRecordsMessage{},
	)
	if err != nil {
		t.Fatalf("query list: %v", err)
	}
	if page.Page != 1 || svc.listCalls != 1 {
		t.Fatalf("expected list query through surface, page=%d calls=%d", page.Page, svc.listCalls)
	}
}

func TestRegisterClaimSurface_RequiresCompleteHandlerSet(t *testing.T) {
	svc := &surfaceClaimService{}

	handlers := NewClaimHandlerSet(svc)
	handlers.CaseAuditTrail = nil
	if _, err := RegisterClaimSurface(NewRegistryAdapter(nil), handlers); err == nil {
		t.Fatalf("expected incomplete handler set to be rejected")
	}

	handlers = NewClaimHandlerSet(svc)
	handlers.PruneAuditRecords = nil
	if _, err := RegisterClaimSurface(NewRegistryAdapter(nil), handlers); err == nil {
		t.Fatalf("expected missing prune handler to be rejected")
	}

	if _, err := RegisterClaimSurface(nil, NewClaimHandlerSet(svc)); err == nil {
		t.Fatalf("expected nil adapter to be rejected")
	}
}

func TestClaimSurface_CloseIsIdempotent(t *testing.T) {
	svc := &surfaceClaimService{}
	surface, err := RegisterClaimSurface(NewRegistryAdapter(nil), NewClaimHandlerSet(svc))
	if err != nil {
		t.Fatalf("register claim surface: %v", err)
	}
	surface.Close()
	surface.Close()

	var nilSurface *ClaimSurface
	nilSurface.Close()
}
