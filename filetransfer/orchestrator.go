package filetransfer

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-reclaim/core"
)

// Orchestrator fans one transfer call out per file and waits for every
// slot to resolve. No fail-fast: one file's failure or timeout never
// blocks or aborts another, and the result slice is always index-aligned
// with the input files.
type Orchestrator struct {
	Sender       Sender
	SourceSystem string
	Concurrency  int
	Now          func() time.Time
}

func NewOrchestrator(sender Sender, cfg core.FileTransferConfig, sourceSystem string) *Orchestrator {
	return &Orchestrator{
		Sender:       sender,
		SourceSystem: sourceSystem,
		Concurrency:  cfg.Concurrency(),
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (o *Orchestrator) TransferAll(ctx context.Context, batch core.TransferBatch) []core.FileTransferResult {
	results := make([]core.FileTransferResult, len(batch.Files))
	if o == nil || o.Sender == nil || len(batch.Files) == 0 {
		for i, file := range batch.Files {
			results[i] = core.NewFileTransferResult(file.Reference, http.StatusBadGateway, o.now())
		}
		return results
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var group errgroup.Group
	group.SetLimit(o.concurrency())
	total := len(batch.Files)
	for i, file := range batch.Files {
		group.Go(func() error {
			// Each task writes only its own slot.
			results[i] = o.transferOne(ctx, core.FileTransferRequest{
				CaseID:         batch.CaseID,
				CorrelationID:  batch.CorrelationID,
				ConversationID: batch.ConversationID,
				SourceSystem:   o.SourceSystem,
				BatchPosition:  i + 1,
				BatchCount:     total,
				File:           file,
			})
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func (o *Orchestrator) transferOne(ctx context.Context, req core.FileTransferRequest) core.FileTransferResult {
	status, err := o.Sender.Send(ctx, req)
	if err != nil {
		status = http.StatusBadGateway
		if isTimeout(err) {
			status = http.StatusGatewayTimeout
		}
	}
	return core.NewFileTransferResult(req.File.Reference, status, o.now())
}

func (o *Orchestrator) concurrency() int {
	if o != nil && o.Concurrency > 0 {
		return o.Concurrency
	}
	return 4
}

func (o *Orchestrator) now() time.Time {
	if o != nil && o.Now != nil {
		return o.Now().UTC()
	}
	return time.Now().UTC()
}

var _ core.FileTransferRunner = (*Orchestrator)(nil)
