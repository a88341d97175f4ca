package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	reclaimcommand "github.com/goliatone/go-reclaim/command"
	reclaimquery "github.com/goliatone/go-reclaim/query"
)

// RegistryAdapter wraps the go-command registry so claim handlers and
// queue resolvers register through one seam.
type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) ready() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return nil
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.registry.RegisterCommand(cmd)
}

// RegisterQuery registers a query handler. The registry keeps queries
// and commands in the same table, keyed by message type.
func (a *RegistryAdapter) RegisterQuery(qry any) error {
	return a.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors registered commands into a go-job queue
// registry so queued deliveries resolve the same handlers the
// dispatcher does.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return a.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a.ready() != nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

// RegisterAndSubscribe keeps registry state and dispatcher subscription
// consistent; a failed registration unsubscribes before returning.
func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if err := adapter.ready(); err != nil {
		return nil, err
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if err := adapter.ready(); err != nil {
		return nil, err
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// ClaimService is the combined mutation and read surface behind the
// dispatchable claim handlers.
type ClaimService interface {
	reclaimcommand.ClaimMutatingService
	reclaimquery.AuditReader
}

// ClaimHandlerSet bundles the handlers that make up the claim dispatch
// surface: submission, retention prune, and the two audit reads.
type ClaimHandlerSet struct {
	SubmitClaim       *reclaimcommand.SubmitClaimCommand
	PruneAuditRecords *reclaimcommand.PruneAuditRecordsCommand
	CaseAuditTrail    *reclaimquery.CaseAuditTrailQuery
	ListAuditRecords  *reclaimquery.ListAuditRecordsQuery
}

func NewClaimHandlerSet(service ClaimService) ClaimHandlerSet {
	return ClaimHandlerSet{
		SubmitClaim:       reclaimcommand.NewSubmitClaimCommand(service),
		PruneAuditRecords: reclaimcommand.NewPruneAuditRecordsCommand(service),
		CaseAuditTrail:    reclaimquery.NewCaseAuditTrailQuery(service),
		ListAuditRecords:  reclaimquery.NewListAuditRecordsQuery(service),
	}
}

func (s ClaimHandlerSet) validate() error {
	if s.SubmitClaim == nil || s.PruneAuditRecords == nil {
		return fmt.Errorf("gocommand: claim command handlers are required")
	}
	if s.CaseAuditTrail == nil || s.ListAuditRecords == nil {
		return fmt.Errorf("gocommand: audit query handlers are required")
	}
	return nil
}

// ClaimSurface owns the live dispatcher subscriptions for one claim
// handler set.
type ClaimSurface struct {
	subscriptions []commanddispatcher.Subscription
}

// Close unsubscribes every handler in the surface. Safe to call more
// than once.
func (s *ClaimSurface) Close() {
	if s == nil {
		return
	}
	for _, subscription := range s.subscriptions {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
	s.subscriptions = nil
}

// RegisterClaimSurface registers and subscribes the full claim surface
// in one shot. A failure part way through unwinds the subscriptions
// already made so the dispatcher never holds a partial surface.
func RegisterClaimSurface(
	adapter *RegistryAdapter,
	handlers ClaimHandlerSet,
	runnerOpts ...runner.Option,
) (*ClaimSurface, error) {
	if err := adapter.ready(); err != nil {
		return nil, err
	}
	if err := handlers.validate(); err != nil {
		return nil, err
	}

	surface := &ClaimSurface{}
	track := func(subscription commanddispatcher.Subscription, err error) error {
		if err != nil {
			surface.Close()
			return err
		}
		surface.subscriptions = append(surface.subscriptions, subscription)
		return nil
	}

	if err := track(RegisterAndSubscribe(adapter, handlers.SubmitClaim, runnerOpts...)); err != nil {
		return nil, err
	}
	if err := track(RegisterAndSubscribe(adapter, handlers.PruneAuditRecords, runnerOpts...)); err != nil {
		return nil, err
	}
	if err := track(RegisterAndSubscribeQuery(adapter, handlers.CaseAuditTrail, runnerOpts...)); err != nil {
		return nil, err
	}
	if err := track(RegisterAndSubscribeQuery(adapter, handlers.ListAuditRecords, runnerOpts...)); err != nil {
		return nil, err
	}
	return surface, nil
}
