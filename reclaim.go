package reclaim

import "github.com/goliatone/go-reclaim/core"

type Config = core.Config

type CaseAPIConfig = core.CaseAPIConfig

type FileTransferConfig = core.FileTransferConfig

type AuditConfig = core.AuditConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type CaseSubmitter = core.CaseSubmitter
type FileTransferRunner = core.FileTransferRunner
type AuditEmitter = core.AuditEmitter
type AuditSink = core.AuditSink
type AuditTrailStore = core.AuditTrailStore
type TransportAdapter = core.TransportAdapter
type JobEnqueuer = core.JobEnqueuer

type SubmitRequest = core.SubmitRequest
type ClaimContent = core.ClaimContent
type UploadedFile = core.UploadedFile

type CaseResponse = core.CaseResponse

type AuditRecord = core.AuditRecord
type AuditFilter = core.AuditFilter
type AuditPage = core.AuditPage
type AuditRetentionPolicy = core.AuditRetentionPolicy

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorFactory       = core.WithErrorFactory
	WithErrorMapper        = core.WithErrorMapper
	WithPersistenceClient  = core.WithPersistenceClient
	WithRepositoryFactory  = core.WithRepositoryFactory
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithCaseSubmitter      = core.WithCaseSubmitter
	WithFileTransferRunner = core.WithFileTransferRunner
	WithAuditEmitter       = core.WithAuditEmitter
	WithAuditStore         = core.WithAuditStore
	WithClock              = core.WithClock
	WithIDGenerator        = core.WithIDGenerator
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
