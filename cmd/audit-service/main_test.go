package main

import (
	"context"
	"errors"
	"testing"

	corecfg "github.com/audit-lab/audit-service/internal/core/config"
	"github.com/audit-lab/audit-service/internal/core/storage"
	"github.com/audit-lab/audit-service/internal/core/storage/memory"
	"github.com/audit-lab/audit-service/internal/queue"
	"github.com/audit-lab/audit-service/internal/schema"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *corecfg.Config {
	t.Helper()
	cfg, err := corecfg.Load("")
	require.NoError(t, err)
	cfg.Database.Type = "memory"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Authz.Enabled = false
	return cfg
}

// trackStore swaps openStoreFunc for a memory store and reports whether it was released.
func trackStore(t *testing.T) *bool {
	t.Helper()
	closed := false
	prev := openStoreFunc
	openStoreFunc = func(ctx context.Context, cfg corecfg.DatabaseConfig, registry *schema.Registry) (storage.LogStore, func(), error) {
		return memory.NewStore(registry), func() { closed = true }, nil
	}
	t.Cleanup(func() { openStoreFunc = prev })
	return &closed
}

func TestRun_QueueClientFailureReleasesStore(t *testing.T) {
	closed := trackStore(t)

	clientErr := errors.New("no credentials")
	prev := newQueueClient
	newQueueClient = func(ctx context.Context, opts queue.ClientOptions) (queue.Client, error) {
		return nil, clientErr
	}
	t.Cleanup(func() { newQueueClient = prev })

	cfg := testConfig(t)
	cfg.Queue.Enabled = true
	cfg.Queue.SQSURL = "https://sqs.us-east-1.amazonaws.com/000000000000/audit"
	cfg.Queue.Region = "us-east-1"

	err := run(context.Background(), cfg)
	require.ErrorIs(t, err, clientErr)
	require.True(t, *closed)
}

func TestRun_StopsOnCancel(t *testing.T) {
	closed := trackStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, run(ctx, testConfig(t)))
	require.True(t, *closed)
}

func TestRun_InvalidOverflowPolicy(t *testing.T) {
	closed := trackStore(t)

	cfg := testConfig(t)
	cfg.Ingestion.OverflowPolicy = "spill"

	err := run(context.Background(), cfg)
	require.Error(t, err)
	require.True(t, *closed)
}
