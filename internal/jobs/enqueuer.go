package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// TaskTypeMerge は結合ジョブのタスク種別です。
	TaskTypeMerge = "merge:process"
	// QueueMerge は結合ジョブ用のキュー名です。
	QueueMerge = "merge"
)

// Enqueuer はAPIサーバー側でジョブをタスクキューに投入します。
type Enqueuer struct {
	client *asynq.Client
	store  *Store
}

// NewEnqueuer は Enqueuer を初期化します。
func NewEnqueuer(redisOpt asynq.RedisConnOpt, store *Store) (*Enqueuer, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return &Enqueuer{
		client: asynq.NewClient(redisOpt),
		store:  store,
	}, nil
}

// Enqueue はジョブをキューに投入し、タスクIDを返します。
// ワーカーがタスクを取り出した時点でレコードを必ず参照できるよう、
// ジョブレコードの保存はキュー投入より先に行います。
func (e *Enqueuer) Enqueue(ctx context.Context, payload *TaskPayload) (string, error) {
	if payload == nil {
		return "", fmt.Errorf("payload is nil")
	}
	if payload.JobID == "" {
		return "", fmt.Errorf("payload.JobID is required")
	}
	if len(payload.Files) == 0 {
		return "", fmt.Errorf("payload.Files is empty")
	}

	record := &Record{
		JobID:  payload.JobID,
		Tier:   payload.Tier,
		Status: StatusPending,
	}
	if err := e.store.Create(ctx, record); err != nil {
		return "", fmt.Errorf("failed to create job record: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	task := asynq.NewTask(TaskTypeMerge, body, asynq.Queue(QueueMerge))
	info, err := e.client.EnqueueContext(ctx, task, asynq.MaxRetry(1))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// Close はAsynqクライアントを閉じます。
func (e *Enqueuer) Close() error {
	return e.client.Close()
}
