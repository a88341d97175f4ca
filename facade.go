package reclaim

import (
	"fmt"

	reclaimcommand "github.com/goliatone/go-reclaim/command"
	reclaimquery "github.com/goliatone/go-reclaim/query"
)

// CommandQueryService is the service surface the command and query
// handlers depend on. *core.Service satisfies it directly.
type CommandQueryService interface {
	reclaimcommand.ClaimMutatingService
	reclaimquery.AuditReader
}

type Commands struct {
	SubmitClaim       *reclaimcommand.SubmitClaimCommand
	PruneAuditRecords *reclaimcommand.PruneAuditRecordsCommand
}

type Queries struct {
	CaseAuditTrail   *reclaimquery.CaseAuditTrailQuery
	ListAuditRecords *reclaimquery.ListAuditRecordsQuery
}

// Facade bundles the command and query handlers for a single service
// instance so hosts wire one value into their dispatcher.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	auditReader reclaimquery.AuditReader
}

// WithAuditReader routes the facade's queries through a dedicated
// reader instead of the mutating service, e.g. a cached store handle.
func WithAuditReader(reader reclaimquery.AuditReader) FacadeOption {
	return func(o *facadeOptions) {
		o.auditReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("reclaim: command/query service is required")
	}

	options := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	reader := options.auditReader
	if reader == nil {
		reader = service
	}

	return &Facade{
		service: service,
		commands: Commands{
			SubmitClaim:       reclaimcommand.NewSubmitClaimCommand(service),
			PruneAuditRecords: reclaimcommand.NewPruneAuditRecordsCommand(service),
		},
		queries: Queries{
			CaseAuditTrail:   reclaimquery.NewCaseAuditTrailQuery(reader),
			ListAuditRecords: reclaimquery.NewListAuditRecordsQuery(reader),
		},
	}, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
