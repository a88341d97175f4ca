package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type TransportRequest struct {
	Method      string
	URL         string
	Headers     map[string]string
	Query       map[string]string
	Body        []byte
	Metadata    map[string]any
	Timeout     time.Duration
	Idempotency string
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// TransportAdapter performs one outbound call against an upstream
// service. Implementations must be safe for concurrent use.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// CaseSubmitter sends a claim to the upstream case-management API and
// returns the caseId it assigned. Failures carry the upstream error
// code and message.
type CaseSubmitter interface {
	Submit(ctx context.Context, content ClaimContent, correlationID string) (string, error)
}

// FileTransferRunner issues one transfer call per file in the batch and
// returns one result per file, index-aligned with batch.Files. It never
// returns an error: per-file failures are recorded in their slot.
type FileTransferRunner interface {
	TransferAll(ctx context.Context, batch TransferBatch) []FileTransferResult
}

// AuditEmitter receives exactly one event per request, after the
// response has been aggregated. Emission must never fail the caller.
type AuditEmitter interface {
	ClaimAccepted(ctx context.Context, event ClaimAcceptedEvent)
	ClaimRejected(ctx context.Context, event ClaimRejectedEvent)
}

// AuditSink persists one audit record.
type AuditSink interface {
	Record(ctx context.Context, record AuditRecord) error
}

type AuditTrailReader interface {
	Trail(ctx context.Context, caseID string) ([]AuditRecord, error)
	List(ctx context.Context, filter AuditFilter) (AuditPage, error)
}

type AuditPruner interface {
	Prune(ctx context.Context, policy AuditRetentionPolicy) (int64, error)
}

type AuditTrailStore interface {
	AuditSink
	AuditTrailReader
	AuditPruner
}

type StoreProvider interface {
	AuditStore() AuditTrailStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type InboundRequest struct {
	Surface  string
	Headers  map[string]string
	Body     []byte
	Metadata map[string]any
}

type InboundResult struct {
	StatusCode int
	Body       []byte
	Metadata   map[string]any
}

type InboundHandler interface {
	Surface() string
	Handle(ctx context.Context, req InboundRequest) (InboundResult, error)
}

// ClaimService is the surface the command/query layer and inbound
// handlers program against.
type ClaimService interface {
	Submit(ctx context.Context, req SubmitRequest) (CaseResponse, error)
	AuditTrail(ctx context.Context, caseID string) ([]AuditRecord, error)
	ListAuditRecords(ctx context.Context, filter AuditFilter) (AuditPage, error)
	PruneAuditRecords(ctx context.Context) (int64, error)
	ScheduleAuditPrune(ctx context.Context, enqueuer JobEnqueuer) error
	Config() Config
}

type CommandMessage interface {
	Type() string
}

type CommandDispatcher interface {
	Dispatch(ctx context.Context, msg any) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}
