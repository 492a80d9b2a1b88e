package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Type)
	require.Equal(t, time.Hour, cfg.Database.PartitionCacheTTL)
	require.Equal(t, 1000, cfg.Query.PageSize)
	require.Equal(t, 0, cfg.Query.TimeboxMaxDays)
	require.True(t, cfg.Query.Usernames)
	require.Equal(t, "reject", cfg.Ingestion.OverflowPolicy)
	require.Equal(t, 10*time.Second, cfg.Ingestion.WriteTimeout)
	require.False(t, cfg.Queue.Enabled)
	require.Equal(t, 300*time.Second, cfg.Queue.PullFrequency)
	require.True(t, cfg.Authz.Enabled)
	require.Equal(t, 30*time.Second, cfg.Authz.CacheTTL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  mode: debug
database:
  type: memory
query:
  page_size: 50
  timebox_max_days: 30
  usernames: false
queue:
  enabled: true
  sqs_url: https://sqs.us-east-1.amazonaws.com/123/audit
  region: us-east-1
  pull_frequency: 1m
`)
	t.Setenv("AUDIT_QUERY__PAGE_SIZE", "25")
	t.Setenv("AUDIT_AUTHZ__ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.Mode)
	require.Equal(t, "memory", cfg.Database.Type)
	require.Equal(t, 25, cfg.Query.PageSize)
	require.Equal(t, 30, cfg.Query.TimeboxMaxDays)
	require.False(t, cfg.Query.Usernames)
	require.True(t, cfg.Queue.Enabled)
	require.Equal(t, time.Minute, cfg.Queue.PullFrequency)
	require.False(t, cfg.Authz.Enabled)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "failed to load config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "invalid server.port"},
		{name: "bad mode", mutate: func(c *Config) { c.Server.Mode = "test" }, wantErr: "invalid server.mode"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "invalid logging.format"},
		{name: "unknown database", mutate: func(c *Config) { c.Database.Type = "sqlite" }, wantErr: "unsupported database.type"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Database.DSN = " " }, wantErr: "database.dsn is required"},
		{name: "memory ignores dsn", mutate: func(c *Config) { c.Database.Type = "memory"; c.Database.DSN = "" }},
		{name: "zero page size", mutate: func(c *Config) { c.Query.PageSize = 0 }, wantErr: "query.page_size"},
		{name: "negative timebox", mutate: func(c *Config) { c.Query.TimeboxMaxDays = -1 }, wantErr: "query.timebox_max_days"},
		{name: "unknown overflow policy", mutate: func(c *Config) { c.Ingestion.OverflowPolicy = "spill" }, wantErr: "ingestion.overflow_policy"},
		{
			name: "queue needs url",
			mutate: func(c *Config) {
				c.Queue.Enabled = true
				c.Queue.Region = "us-east-1"
			},
			wantErr: "queue.sqs_url is required",
		},
		{
			name: "queue needs region",
			mutate: func(c *Config) {
				c.Queue.Enabled = true
				c.Queue.SQSURL = "https://sqs"
			},
			wantErr: "queue.region is required",
		},
		{
			name: "queue type",
			mutate: func(c *Config) {
				c.Queue.Enabled = true
				c.Queue.Type = "kafka"
			},
			wantErr: "unsupported queue.type",
		},
		{
			name: "half a credential pair",
			mutate: func(c *Config) {
				c.Queue.Enabled = true
				c.Queue.SQSURL = "https://sqs"
				c.Queue.Region = "us-east-1"
				c.Queue.AWSAccessKeyID = "AKIA"
			},
			wantErr: "must be set together",
		},
		{name: "disabled queue is not checked", mutate: func(c *Config) { c.Queue.Type = "kafka" }},
		{name: "authz needs url", mutate: func(c *Config) { c.Authz.ArboristURL = "" }, wantErr: "authz.arborist_url"},
		{name: "disabled authz is not checked", mutate: func(c *Config) { c.Authz.Enabled = false; c.Authz.ArboristURL = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)

			tc.mutate(cfg)
			err = cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestConfig_YAMLRedactsSecrets(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Database.DSN = "postgres://audit:hunter2@db:5432/audit?sslmode=disable"
	cfg.Queue.AWSAccessKeyID = "AKIAEXAMPLE"
	cfg.Queue.AWSSecretAccessKey = "s3cr3t"

	out, err := cfg.YAML()
	require.NoError(t, err)

	text := string(out)
	require.NotContains(t, text, "hunter2")
	require.NotContains(t, text, "AKIAEXAMPLE")
	require.NotContains(t, text, "s3cr3t")
	require.Contains(t, text, "postgres://audit:xxxxx@db:5432/audit")
	require.Contains(t, text, "page_size: 1000")

	// Redaction works on a copy.
	require.Equal(t, "s3cr3t", cfg.Queue.AWSSecretAccessKey)
}
