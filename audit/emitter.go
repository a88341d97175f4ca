package audit

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-reclaim/core"
)

// Emitter assigns each record an id and created-at stamp and hands it to
// the sink. Emission never fails the caller: sink errors are logged and
// swallowed.
type Emitter struct {
	Sink   core.AuditSink
	Logger core.Logger
	Now    func() time.Time
	NewID  func() string
}

func NewEmitter(sink core.AuditSink, logger core.Logger) *Emitter {
	return &Emitter{
		Sink:   sink,
		Logger: glog.Ensure(logger),
		Now: func() time.Time {
			return time.Now().UTC()
		},
		NewID: uuid.NewString,
	}
}

func (e *Emitter) ClaimAccepted(ctx context.Context, event core.ClaimAcceptedEvent) {
	e.emit(ctx, AcceptedRecord(event))
}

func (e *Emitter) ClaimRejected(ctx context.Context, event core.ClaimRejectedEvent) {
	e.emit(ctx, RejectedRecord(event))
}

func (e *Emitter) emit(ctx context.Context, record core.AuditRecord) {
	if e == nil {
		return
	}
	record.ID = e.recordID()
	record.CreatedAt = e.now()

	if e.Sink == nil {
		e.logger().Warn("audit: no sink configured, record dropped",
			"correlation_id", record.CorrelationID,
			"case_id", record.CaseID,
		)
		return
	}
	if err := e.Sink.Record(ctx, record); err != nil {
		e.logger().Error("audit: record emission failed",
			"error", err.Error(),
			"correlation_id", record.CorrelationID,
			"case_id", record.CaseID,
			"success", record.Success,
		)
	}
}

func (e *Emitter) logger() core.Logger {
	if e != nil && e.Logger != nil {
		return e.Logger
	}
	return glog.Nop()
}

func (e *Emitter) now() time.Time {
	if e != nil && e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *Emitter) recordID() string {
	if e != nil && e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

var _ core.AuditEmitter = (*Emitter)(nil)
