package gojob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-reclaim/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

func TestMessageMappingRoundTrip(t *testing.T) {
	original := &core.JobExecutionMessage{
		JobID:          core.AuditPruneJobID,
		ScriptPath:     "reclaim/audit/prune",
		Parameters:     map[string]any{"retention_days": 30, "max_rows": 10000},
		IdempotencyKey: core.AuditPruneJobID + ":2025-03-11",
		DedupPolicy:    "drop",
	}

	converted := ToExecutionMessage(original)
	if converted == nil {
		t.Fatalf("expected converted message")
	}
	roundTrip := FromExecutionMessage(converted)
	if roundTrip.JobID != original.JobID {
		t.Fatalf("expected job id %q, got %q", original.JobID, roundTrip.JobID)
	}
	if roundTrip.ScriptPath != original.ScriptPath {
		t.Fatalf("expected script path %q, got %q", original.ScriptPath, roundTrip.ScriptPath)
	}
	if roundTrip.IdempotencyKey != original.IdempotencyKey {
		t.Fatalf("expected idempotency key %q, got %q", original.IdempotencyKey, roundTrip.IdempotencyKey)
	}
	if roundTrip.DedupPolicy != original.DedupPolicy {
		t.Fatalf("expected dedup policy %q, got %q", original.DedupPolicy, roundTrip.DedupPolicy)
	}
	if roundTrip.Parameters["retention_days"] != 30 {
		t.Fatalf("expected parameters to survive mapping")
	}
}

func TestEnqueueAndDequeueAdapters(t *testing.T) {
	ctx := context.Background()
	enqueuer := &stubQueueEnqueuer{}
	enqueueAdapter := NewEnqueuerAdapter(enqueuer)

	msg := &core.JobExecutionMessage{
		JobID:          core.AuditPruneJobID,
		Parameters:     map[string]any{"max_rows": 5000},
		IdempotencyKey: core.AuditPruneJobID + ":2025-03-11",
		DedupPolicy:    "merge",
	}
	if err := enqueueAdapter.Enqueue(ctx, msg); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if enqueuer.last == nil || enqueuer.last.JobID != core.AuditPruneJobID {
		t.Fatalf("expected mapped go-job message")
	}

	dequeuer := &stubQueueDequeuer{delivery: &stubQueueDelivery{msg: enqueuer.last}}
	dequeueAdapter := NewDequeuerAdapter(dequeuer, RetryPolicy{})
	delivery, err := dequeueAdapter.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	got := delivery.Message()
	if got == nil || got.JobID != core.AuditPruneJobID {
		t.Fatalf("expected mapped core message")
	}
	if err := delivery.Ack(ctx); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if !dequeuer.delivery.(*stubQueueDelivery).acked {
		t.Fatalf("expected ack on underlying delivery")
	}
}

func TestNackRetryPolicyBoundaries(t *testing.T) {
	ctx := context.Background()
	rawDelivery := &stubQueueDelivery{
		msg: &job.ExecutionMessage{JobID: core.AuditPruneJobID},
	}
	adapter := NewDeliveryAdapter(rawDelivery, RetryPolicy{
		MaxAttempts:     3,
		MaxDelay:        10 * time.Second,
		DeadLetterOnMax: true,
	})

	if err := adapter.NackForAttempt(ctx, core.JobNackOptions{
		Delay:   30 * time.Second,
		Requeue: true,
		Reason:  "transient",
	}, 1); err != nil {
		t.Fatalf("nack attempt 1: %v", err)
	}
	if rawDelivery.nackOpts.Delay != 10*time.Second {
		t.Fatalf("expected delay to be bounded, got %s", rawDelivery.nackOpts.Delay)
	}
	if !rawDelivery.nackOpts.Requeue {
		t.Fatalf("expected message to be requeued before max attempts")
	}

	if err := adapter.NackForAttempt(ctx, core.JobNackOptions{
		Delay:   time.Second,
		Requeue: true,
		Reason:  "still failing",
	}, 3); err != nil {
		t.Fatalf("nack max attempt: %v", err)
	}
	if rawDelivery.nackOpts.Requeue {
		t.Fatalf("expected no requeue once max attempts is reached")
	}
	if !rawDelivery.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter on max attempts")
	}
}

func TestAuditPruneConsumer_AcksOnSuccess(t *testing.T) {
	ctx := context.Background()
	rawDelivery := &stubQueueDelivery{
		msg: &job.ExecutionMessage{JobID: core.AuditPruneJobID},
	}
	delivery := NewDeliveryAdapter(rawDelivery, RetryPolicy{})

	pruner := &stubAuditPruner{removed: 17}
	consumer := NewAuditPruneConsumer(pruner, time.Second)

	if err := consumer.Handle(ctx, delivery); err != nil {
		t.Fatalf("handle prune delivery: %v", err)
	}
	if pruner.calls != 1 {
		t.Fatalf("expected one prune invocation, got %d", pruner.calls)
	}
	if !rawDelivery.acked {
		t.Fatalf("expected delivery ack after successful prune")
	}
}

func TestAuditPruneConsumer_NacksWithRequeueOnPruneFailure(t *testing.T) {
	ctx := context.Background()
	rawDelivery := &stubQueueDelivery{
		msg: &job.ExecutionMessage{JobID: core.AuditPruneJobID},
	}
	delivery := NewDeliveryAdapter(rawDelivery, RetryPolicy{MaxDelay: time.Minute})

	boom := errors.New("store offline")
	pruner := &stubAuditPruner{err: boom}
	consumer := NewAuditPruneConsumer(pruner, 5*time.Second)

	err := consumer.Handle(ctx, delivery)
	if !errors.Is(err, boom) {
		t.Fatalf("expected prune error, got %v", err)
	}
	if rawDelivery.acked {
		t.Fatalf("expected no ack on prune failure")
	}
	if !rawDelivery.nackOpts.Requeue {
		t.Fatalf("expected requeue on prune failure")
	}
	if rawDelivery.nackOpts.Delay != 5*time.Second {
		t.Fatalf("expected retry delay, got %s", rawDelivery.nackOpts.Delay)
	}
	if rawDelivery.nackOpts.Reason != "store offline" {
		t.Fatalf("expected failure reason, got %q", rawDelivery.nackOpts.Reason)
	}
}

func TestAuditPruneConsumer_DeadLettersUnexpectedJob(t *testing.T) {
	ctx := context.Background()
	rawDelivery := &stubQueueDelivery{
		msg: &job.ExecutionMessage{JobID: "reclaim.unknown"},
	}
	delivery := NewDeliveryAdapter(rawDelivery, RetryPolicy{})

	pruner := &stubAuditPruner{}
	consumer := NewAuditPruneConsumer(pruner, 0)

	if err := consumer.Handle(ctx, delivery); err != nil {
		t.Fatalf("handle unexpected delivery: %v", err)
	}
	if pruner.calls != 0 {
		t.Fatalf("expected no prune invocation for unexpected job")
	}
	if !rawDelivery.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter for unexpected job id")
	}
	if rawDelivery.nackOpts.Requeue {
		t.Fatalf("expected no requeue for unexpected job id")
	}
}

func TestWorkerHookAdapterEventMapping(t *testing.T) {
	now := time.Now().UTC().Add(-time.Second)
	coreHook := &capturingHook{}
	adapter := NewWorkerHookAdapter(coreHook)

	evt := worker.Event{
		Message: &job.ExecutionMessage{
			JobID:          core.AuditPruneJobID,
			IdempotencyKey: core.AuditPruneJobID + ":2025-03-11",
		},
		Attempt:   2,
		Delay:     5 * time.Second,
		Err:       errors.New("retry"),
		StartedAt: now,
		Duration:  250 * time.Millisecond,
	}

	adapter.OnRetry(context.Background(), evt)
	if coreHook.last.Message == nil {
		t.Fatalf("expected worker message mapping")
	}
	if coreHook.last.Message.JobID != core.AuditPruneJobID {
		t.Fatalf("expected job id mapping, got %q", coreHook.last.Message.JobID)
	}
	if coreHook.last.Attempt != 2 {
		t.Fatalf("expected attempt 2, got %d", coreHook.last.Attempt)
	}
	if coreHook.last.Delay != 5*time.Second {
		t.Fatalf("expected delay 5s, got %s", coreHook.last.Delay)
	}
	if coreHook.last.Duration != 250*time.Millisecond {
		t.Fatalf("expected duration mapping")
	}
	if coreHook.last.StartedAt.IsZero() {
		t.Fatalf("expected started_at mapping")
	}
	if coreHook.last.Err == nil || coreHook.last.Err.Error() != "retry" {
		t.Fatalf("expected error mapping")
	}
}

type stubQueueEnqueuer struct {
	last *job.ExecutionMessage
}

func (s *stubQueueEnqueuer) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	s.last = msg
	return nil
}

type stubQueueDequeuer struct {
	delivery queue.Delivery
}

func (s *stubQueueDequeuer) Dequeue(context.Context) (queue.Delivery, error) {
	return s.delivery, nil
}

type stubQueueDelivery struct {
	msg      *job.ExecutionMessage
	acked    bool
	nackOpts queue.NackOptions
}

func (s *stubQueueDelivery) Message() *job.ExecutionMessage {
	return s.msg
}

func (s *stubQueueDelivery) Ack(context.Context) error {
	s.acked = true
	return nil
}

func (s *stubQueueDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	s.nackOpts = opts
	return nil
}

type stubAuditPruner struct {
	removed int64
	err     error
	calls   int
}

func (s *stubAuditPruner) PruneAuditRecords(context.Context) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.removed, nil
}

type capturingHook struct {
	last core.JobWorkerEvent
}

func (h *capturingHook) OnStart(context.Context, core.JobWorkerEvent)   {}
func (h *capturingHook) OnSuccess(context.Context, core.JobWorkerEvent) {}
func (h *capturingHook) OnFailure(context.Context, core.JobWorkerEvent) {}
func (h *capturingHook) OnRetry(_ context.Context, event core.JobWorkerEvent) {
	h.last = event
}
