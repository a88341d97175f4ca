package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig     Config
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

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *serviceBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *serviceBuilder) {
		b.persistenceClient = client
	}
}

func WithRepositoryFactory(factory any) Option {
	return func(b *serviceBuilder) {
		b.repositoryFactory = factory
	}
}

func WithCaseSubmitter(submitter CaseSubmitter) Option {
	return func(b *serviceBuilder) {
		b.submitter = submitter
	}
}

func WithFileTransferRunner(runner FileTransferRunner) Option {
	return func(b *serviceBuilder) {
		b.transfers = runner
	}
}

func WithAuditEmitter(emitter AuditEmitter) Option {
	return func(b *serviceBuilder) {
		b.audit = emitter
	}
}

func WithAuditStore(store AuditTrailStore) Option {
	return func(b *serviceBuilder) {
		b.auditStore = store
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *serviceBuilder) {
		b.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(b *serviceBuilder) {
		b.newID = newID
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("reclaim", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return claimErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || strings.TrimSpace(cfg.SourceSystem) != "" {
		layer["source_system"] = cfg.SourceSystem
	}

	caseAPI := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.CaseAPI.BaseURL) != "" {
		caseAPI["base_url"] = cfg.CaseAPI.BaseURL
	}
	if includeZero || strings.TrimSpace(cfg.CaseAPI.SubmitPath) != "" {
		caseAPI["submit_path"] = cfg.CaseAPI.SubmitPath
	}
	if includeZero || cfg.CaseAPI.TimeoutSeconds != 0 {
		caseAPI["timeout_seconds"] = cfg.CaseAPI.TimeoutSeconds
	}
	if len(caseAPI) > 0 {
		layer["case_api"] = caseAPI
	}

	transfer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.FileTransfer.BaseURL) != "" {
		transfer["base_url"] = cfg.FileTransfer.BaseURL
	}
	if includeZero || strings.TrimSpace(cfg.FileTransfer.TransferPath) != "" {
		transfer["transfer_path"] = cfg.FileTransfer.TransferPath
	}
	if includeZero || cfg.FileTransfer.TimeoutSeconds != 0 {
		transfer["timeout_seconds"] = cfg.FileTransfer.TimeoutSeconds
	}
	if includeZero || cfg.FileTransfer.MaxConcurrent != 0 {
		transfer["max_concurrent"] = cfg.FileTransfer.MaxConcurrent
	}
	if len(transfer) > 0 {
		layer["file_transfer"] = transfer
	}

	audit := map[string]any{}
	if includeZero || cfg.Audit.RetentionDays != 0 {
		audit["retention_days"] = cfg.Audit.RetentionDays
	}
	if includeZero || cfg.Audit.MaxRows != 0 {
		audit["max_rows"] = cfg.Audit.MaxRows
	}
	if len(audit) > 0 {
		layer["audit"] = audit
	}
	return layer
}
