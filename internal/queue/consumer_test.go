package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	"github.com/audit-lab/audit-service/internal/core/storage"
	"github.com/audit-lab/audit-service/internal/core/storage/memory"
	storagemocks "github.com/audit-lab/audit-service/internal/mocks/storage"
	"github.com/audit-lab/audit-service/internal/schema"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	batches    [][]types.Message
	receiveErr error
	deleteErr  error
	deleted    []string
	receives   atomic.Int32
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.receives.Add(1)
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	if in.MaxNumberOfMessages != maxMessages {
		return nil, errors.New("unexpected batch size")
	}
	if len(f.batches) == 0 {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func message(id, body string) types.Message {
	return types.Message{
		MessageId:     aws.String(id),
		ReceiptHandle: aws.String("rh-" + id),
		Body:          aws.String(body),
	}
}

const (
	loginBody     = `{"category":"login","request_url":"/login","status_code":200,"username":"alice","idp":"google","timestamp":1704067200}`
	presignedBody = `{"category":"presigned_url","request_url":"/data","status_code":200,"username":"bob","guid":"dg/1","action":"download"}`
)

func TestConsumer_PullOnce(t *testing.T) {
	tests := []struct {
		name        string
		client      *fakeSQS
		wantSleep   bool
		wantDeleted []string
		wantStored  int64
	}{
		{
			name:      "empty queue sleeps",
			client:    &fakeSQS{},
			wantSleep: true,
		},
		{
			name: "all processed keeps pulling",
			client: &fakeSQS{batches: [][]types.Message{{
				message("1", loginBody),
				message("2", presignedBody),
			}}},
			wantSleep:   false,
			wantDeleted: []string{"rh-1", "rh-2"},
			wantStored:  1,
		},
		{
			name: "failed message is kept and loop sleeps",
			client: &fakeSQS{batches: [][]types.Message{{
				message("1", `{"category":"login","request_url":"/login"}`),
				message("2", `{"category":"unknown"}`),
				message("3", `not json`),
				message("4", loginBody),
			}}},
			wantSleep:   true,
			wantDeleted: []string{"rh-4"},
			wantStored:  1,
		},
		{
			name:       "receive error sleeps",
			client:     &fakeSQS{receiveErr: errors.New("throttled")},
			wantSleep:  true,
			wantStored: 0,
		},
		{
			name: "delete failure counts as failed",
			client: &fakeSQS{
				batches:   [][]types.Message{{message("1", loginBody)}},
				deleteErr: errors.New("access denied"),
			},
			wantSleep:  true,
			wantStored: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.NewStore(schema.NewRegistry())
			c := NewConsumer(tc.client, store, ConsumerOptions{QueueURL: "https://sqs.example/q"})

			require.Equal(t, tc.wantSleep, c.PullOnce(context.Background()))
			require.Equal(t, tc.wantDeleted, tc.client.deleted)

			n, err := store.Count(context.Background(), storage.Predicate{Category: v1.CategoryLogin})
			require.NoError(t, err)
			require.Equal(t, tc.wantStored, n)
		})
	}
}

func TestConsumer_ProcessErrors(t *testing.T) {
	store := storagemocks.NewLogStore(t)
	store.EXPECT().
		Insert(mock.Anything, mock.Anything).
		Return(int64(0), errors.New("db down")).
		Once()

	client := &fakeSQS{}
	c := NewConsumer(client, store, ConsumerOptions{QueueURL: "q"})

	err := c.process(context.Background(), message("m-1", loginBody))

	var procErr *ProcessingError
	require.ErrorAs(t, err, &procErr)
	require.Equal(t, "m-1", procErr.MessageID)
	require.ErrorContains(t, err, "db down")
	require.Empty(t, client.deleted)

	err = c.process(context.Background(), message("m-2",
		`{"category":"presigned_url","request_url":"/x","status_code":200,"username":"a","guid":"g","action":"move"}`))
	require.ErrorIs(t, err, v1.ErrInvalidAction)
}

func TestConsumer_RunStopsOnCancel(t *testing.T) {
	client := &fakeSQS{}
	c := NewConsumer(client, memory.NewStore(schema.NewRegistry()), ConsumerOptions{
		QueueURL:      "q",
		PullFrequency: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return client.receives.Load() > 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
