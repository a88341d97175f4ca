package core

import (
	"fmt"
	"strings"
	"time"
)

type CaseAPIConfig struct {
	BaseURL        string `koanf:"base_url" mapstructure:"base_url"`
	SubmitPath     string `koanf:"submit_path" mapstructure:"submit_path"`
	TimeoutSeconds int    `koanf:"timeout_seconds" mapstructure:"timeout_seconds"`
}

func (c CaseAPIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type FileTransferConfig struct {
	BaseURL        string `koanf:"base_url" mapstructure:"base_url"`
	TransferPath   string `koanf:"transfer_path" mapstructure:"transfer_path"`
	TimeoutSeconds int    `koanf:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxConcurrent  int    `koanf:"max_concurrent" mapstructure:"max_concurrent"`
}

func (c FileTransferConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c FileTransferConfig) Concurrency() int {
	if c.MaxConcurrent <= 0 {
		return 4
	}
	return c.MaxConcurrent
}

type AuditConfig struct {
	RetentionDays int `koanf:"retention_days" mapstructure:"retention_days"`
	MaxRows       int `koanf:"max_rows" mapstructure:"max_rows"`
}

func (c AuditConfig) RetentionPolicy() AuditRetentionPolicy {
	days := c.RetentionDays
	if days <= 0 {
		days = 90
	}
	return AuditRetentionPolicy{
		TTL:     time.Duration(days) * 24 * time.Hour,
		MaxRows: c.MaxRows,
	}
}

type Config struct {
	ServiceName  string             `koanf:"service_name" mapstructure:"service_name"`
	SourceSystem string             `koanf:"source_system" mapstructure:"source_system"`
	CaseAPI      CaseAPIConfig      `koanf:"case_api" mapstructure:"case_api"`
	FileTransfer FileTransferConfig `koanf:"file_transfer" mapstructure:"file_transfer"`
	Audit        AuditConfig        `koanf:"audit" mapstructure:"audit"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:  "reclaim",
		SourceSystem: "Digital",
		CaseAPI: CaseAPIConfig{
			SubmitPath:     "/create-case",
			TimeoutSeconds: 30,
		},
		FileTransfer: FileTransferConfig{
			TransferPath:   "/transfer-file",
			TimeoutSeconds: 30,
			MaxConcurrent:  4,
		},
		Audit: AuditConfig{
			RetentionDays: 90,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.CaseAPI.TimeoutSeconds < 0 {
		return fmt.Errorf("core: case_api.timeout_seconds cannot be negative")
	}
	if c.FileTransfer.TimeoutSeconds < 0 {
		return fmt.Errorf("core: file_transfer.timeout_seconds cannot be negative")
	}
	if c.FileTransfer.MaxConcurrent < 0 {
		return fmt.Errorf("core: file_transfer.max_concurrent cannot be negative")
	}
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("core: audit.retention_days cannot be negative")
	}
	return nil
}
