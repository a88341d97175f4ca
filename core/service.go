package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

const (
	OperationSubmitClaim = "claim.submit"
	OperationAuditTrail  = "audit.trail"
	OperationAuditList   = "audit.list"
	OperationAuditPrune  = "audit.prune"
)

// AuditPruneJobID identifies queue-dispatched retention runs.
const AuditPruneJobID = "reclaim.audit.prune"

// SubmissionError is returned by case-submission clients so the
// pipeline can surface upstream failure detail verbatim.
type SubmissionError struct {
	StatusCode   int
	ErrorCode    string
	ErrorMessage string
	Cause        error
}

func (e *SubmissionError) Error() string {
	if e == nil {
		return "core: case submission failed"
	}
	message := strings.TrimSpace(e.ErrorMessage)
	if message == "" {
		message = "case submission failed"
	}
	if code := strings.TrimSpace(e.ErrorCode); code != "" {
		return fmt.Sprintf("core: case submission rejected (%s): %s", code, message)
	}
	return "core: " + message
}

func (e *SubmissionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *SubmissionError) Failure() SubmissionFailure {
	if e == nil {
		return SubmissionFailure{
			Kind:         FailureKindSubmission,
			ErrorCode:    ClaimErrorSubmissionFailed,
			ErrorMessage: "case submission failed",
			StatusCode:   http.StatusBadGateway,
		}
	}
	code := strings.TrimSpace(e.ErrorCode)
	if code == "" {
		code = ClaimErrorSubmissionFailed
	}
	message := strings.TrimSpace(e.ErrorMessage)
	if message == "" {
		message = "case submission failed"
	}
	return SubmissionFailure{
		Kind:         FailureKindSubmission,
		ErrorCode:    code,
		ErrorMessage: message,
		StatusCode:   e.StatusCode,
	}
}

// Service orchestrates the create-or-amend claim pipeline: validate,
// resolve correlation, submit the case, fan out file transfers,
// aggregate, audit.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	persistenceClient any
	repositoryFactory any
	submitter         CaseSubmitter
	transfers         FileTransferRunner
	audit             AuditEmitter
	auditStore        AuditTrailStore
	now               func() time.Time
	newID             func() string
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorFactory      ErrorFactory
	ErrorMapper       ErrorMapper
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	PersistenceClient any
	RepositoryFactory any
	CaseSubmitter     CaseSubmitter
	FileTransfers     FileTransferRunner
	AuditEmitter      AuditEmitter
	AuditStore        AuditTrailStore
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("reclaim", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("reclaim"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}
	if builder.newID == nil {
		builder.newID = uuid.NewString
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.auditStore == nil && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			stores, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if stores != nil {
				builder.auditStore = stores.AuditStore()
			}
		} else if stores, ok := builder.repositoryFactory.(StoreProvider); ok {
			builder.auditStore = stores.AuditStore()
		}
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		submitter:         builder.submitter,
		transfers:         builder.transfers,
		audit:             builder.audit,
		auditStore:        builder.auditStore,
		now:               builder.now,
		newID:             builder.newID,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

// Submit runs the whole pipeline for one inbound request. Validation
// and submission failures come back inside the CaseResponse, not as an
// error; the error return is reserved for a misconfigured service.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (CaseResponse, error) {
	if s == nil {
		return CaseResponse{}, errors.New("core: service is not configured")
	}
	if s.submitter == nil {
		return CaseResponse{}, s.dependencyError("case submitter")
	}
	if s.transfers == nil {
		return CaseResponse{}, s.dependencyError("file transfer runner")
	}
	if s.audit == nil {
		return CaseResponse{}, s.dependencyError("audit emitter")
	}

	startedAt := s.clock()
	correlationID := ResolveCorrelationID(req.CorrelationID, s.newID)
	fields := map[string]any{
		"correlation_id": correlationID,
		"case_id":        strings.TrimSpace(req.Content.CaseID),
		"file_count":     len(req.Files),
	}

	if err := ValidateClaim(req.Content, req.Files); err != nil {
		response := AggregateRejected(correlationID, ValidationFailure(err))
		s.audit.ClaimRejected(ctx, ClaimRejectedEvent{
			CorrelationID: correlationID,
			Content:       req.Content,
			Failure:       *response.Failure,
		})
		s.observeOperation(ctx, startedAt, OperationSubmitClaim, err, fields)
		return response, nil
	}

	caseID, err := s.submitter.Submit(ctx, req.Content, correlationID)
	if err != nil {
		response := AggregateRejected(correlationID, submissionFailureFrom(err))
		s.audit.ClaimRejected(ctx, ClaimRejectedEvent{
			CorrelationID: correlationID,
			Content:       req.Content,
			Failure:       *response.Failure,
		})
		s.observeOperation(ctx, startedAt, OperationSubmitClaim, err, fields)
		return response, nil
	}

	fields["case_id"] = caseID
	results := s.transfers.TransferAll(ctx, TransferBatch{
		CaseID:         caseID,
		CorrelationID:  correlationID,
		ConversationID: ConversationID(correlationID),
		Files:          req.Files,
	})
	fields["transfer_failures"] = countTransferFailures(results)

	response := AggregateAccepted(correlationID, caseID, results)
	s.audit.ClaimAccepted(ctx, ClaimAcceptedEvent{
		CorrelationID: correlationID,
		CaseID:        caseID,
		Content:       req.Content,
		Files:         req.Files,
		Results:       response.Result.FileTransferResults,
	})
	s.observeOperation(ctx, startedAt, OperationSubmitClaim, nil, fields)
	return response, nil
}

// AuditTrail returns a case's audit records, newest first.
func (s *Service) AuditTrail(ctx context.Context, caseID string) ([]AuditRecord, error) {
	if s == nil || s.auditStore == nil {
		return nil, s.dependencyError("audit store")
	}
	startedAt := s.clock()
	records, err := s.auditStore.Trail(ctx, strings.TrimSpace(caseID))
	s.observeOperation(ctx, startedAt, OperationAuditTrail, err, map[string]any{
		"case_id": strings.TrimSpace(caseID),
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return records, nil
}

func (s *Service) ListAuditRecords(ctx context.Context, filter AuditFilter) (AuditPage, error) {
	if s == nil || s.auditStore == nil {
		return AuditPage{}, s.dependencyError("audit store")
	}
	startedAt := s.clock()
	page, err := s.auditStore.List(ctx, filter)
	s.observeOperation(ctx, startedAt, OperationAuditList, err, map[string]any{
		"case_id": strings.TrimSpace(filter.CaseID),
	})
	if err != nil {
		return AuditPage{}, s.mapError(err)
	}
	return page, nil
}

// PruneAuditRecords applies the configured retention policy and
// returns the number of removed records.
func (s *Service) PruneAuditRecords(ctx context.Context) (int64, error) {
	if s == nil || s.auditStore == nil {
		return 0, s.dependencyError("audit store")
	}
	startedAt := s.clock()
	policy := s.config.Audit.RetentionPolicy()
	removed, err := s.auditStore.Prune(ctx, policy)
	s.observeOperation(ctx, startedAt, OperationAuditPrune, err, map[string]any{
		"removed":        removed,
		"retention_days": int(policy.TTL / (24 * time.Hour)),
	})
	if err != nil {
		return 0, s.mapError(err)
	}
	return removed, nil
}

// AuditPruneJob builds the queue message for a retention run. The
// idempotency key collapses repeat enqueues within one UTC day.
func (s *Service) AuditPruneJob() *JobExecutionMessage {
	policy := s.config.Audit.RetentionPolicy()
	return &JobExecutionMessage{
		JobID: AuditPruneJobID,
		Parameters: map[string]any{
			"retention_days": int(policy.TTL / (24 * time.Hour)),
			"max_rows":       policy.MaxRows,
		},
		IdempotencyKey: AuditPruneJobID + ":" + s.clock().Format("2006-01-02"),
		DedupPolicy:    "drop",
	}
}

func (s *Service) ScheduleAuditPrune(ctx context.Context, enqueuer JobEnqueuer) error {
	if s == nil {
		return errors.New("core: service is not configured")
	}
	if enqueuer == nil {
		return s.dependencyError("job enqueuer")
	}
	if err := enqueuer.Enqueue(ctx, s.AuditPruneJob()); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		MetricsRecorder:   s.metricsRecorder,
		ErrorFactory:      s.errorFactory,
		ErrorMapper:       s.errorMapper,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		PersistenceClient: s.persistenceClient,
		RepositoryFactory: s.repositoryFactory,
		CaseSubmitter:     s.submitter,
		FileTransfers:     s.transfers,
		AuditEmitter:      s.audit,
		AuditStore:        s.auditStore,
	}
}

func (s *Service) clock() time.Time {
	if s != nil && s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) dependencyError(name string) error {
	message := fmt.Sprintf("core: %s is not configured", name)
	factory := goerrors.New
	if s != nil && s.errorFactory != nil {
		factory = s.errorFactory
	}
	return ensureClaimErrorEnvelope(
		factory(message, goerrors.CategoryOperation).
			WithTextCode(ClaimErrorDependencyMissing),
	)
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return claimErrorMapper(err)
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func submissionFailureFrom(err error) SubmissionFailure {
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return subErr.Failure()
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		richErr = ensureClaimErrorEnvelope(richErr)
		return SubmissionFailure{
			Kind:         FailureKindSubmission,
			ErrorCode:    richErr.TextCode,
			ErrorMessage: richErr.Message,
			StatusCode:   richErr.Code,
		}
	}
	return SubmissionFailure{
		Kind:         FailureKindSubmission,
		ErrorCode:    ClaimErrorSubmissionFailed,
		ErrorMessage: err.Error(),
		StatusCode:   http.StatusBadGateway,
	}
}

func countTransferFailures(results []FileTransferResult) int {
	failures := 0
	for _, result := range results {
		if !result.Success {
			failures++
		}
	}
	return failures
}
