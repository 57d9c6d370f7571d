package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
)

// JobResult はワーカー処理の成果（成果物URLと総ページ数）です。
type JobResult struct {
	URL   string
	Pages int
}

// JobRunner は結合ジョブを実行できるサービスが実装します。
type JobRunner interface {
	RunJob(ctx context.Context, payload *TaskPayload) (*JobResult, error)
	DiscardStaging(jobID string) error
}

// StatusRecorder はジョブ状態の遷移を記録します。*Store が実装します。
type StatusRecorder interface {
	MarkProcessing(ctx context.Context, jobID string) error
	MarkCompleted(ctx context.Context, jobID string, url string, pages int) error
	MarkFailed(ctx context.Context, jobID string, errInfo *ErrorInfo) error
}

// FailureClassifier は処理エラーからエラーコードを取り出せるエラー型が実装します。
type FailureClassifier interface {
	FailureCode() string
	FailureMessage() string
}

// Worker はタスクキューから結合ジョブを取り出して処理するワーカープロセス本体です。
// 複数プロセスで起動でき、同一ジョブの再配送は冪等に処理されます。
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	store  StatusRecorder
	runner JobRunner
	logger *log.Logger
}

// NewWorker は Worker を初期化します。
func NewWorker(redisOpt asynq.RedisConnOpt, concurrency int, store StatusRecorder, runner JobRunner, logger *log.Logger) (*Worker, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if runner == nil {
		return nil, errors.New("runner is nil")
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueMerge: 1,
			},
		},
	)

	worker := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		store:  store,
		runner: runner,
		logger: logger,
	}
	worker.mux.HandleFunc(TaskTypeMerge, worker.handleMergeTask)
	return worker, nil
}

// Run はワーカーを起動し、停止されるまでブロックします。
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown はワーカーを停止します。処理中のジョブはリースに従い再配送されます。
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

// handleMergeTask は結合タスク1件を処理します。
// 処理中のエラーは failed 終端状態に変換して nil を返します（ワーカー自身は再試行しない）。
// エラーを返すのはジョブストアへ到達できない場合のみで、その際はキューの再配送に委ねます。
func (w *Worker) handleMergeTask(ctx context.Context, task *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode task payload: %w", err)
	}
	if payload.JobID == "" {
		return fmt.Errorf("missing jobId in payload")
	}

	if err := w.store.MarkProcessing(ctx, payload.JobID); err != nil {
		return fmt.Errorf("failed to mark job processing: %w", err)
	}

	result, runErr := w.runner.RunJob(ctx, &payload)

	var markErr error
	if runErr != nil {
		w.logf("job %s failed: %v", payload.JobID, runErr)
		markErr = w.store.MarkFailed(ctx, payload.JobID, failureInfo(runErr))
	} else {
		markErr = w.store.MarkCompleted(ctx, payload.JobID, result.URL, result.Pages)
	}

	// 成功・失敗どちらでもステージング入力を削除する。
	// 既に削除済みの場合もエラーにはならない（再配送を無害化するため）。
	if cleanupErr := w.runner.DiscardStaging(payload.JobID); cleanupErr != nil {
		w.logf("failed to discard staging for job %s: %v", payload.JobID, cleanupErr)
	}

	if markErr != nil {
		return fmt.Errorf("failed to record job outcome: %w", markErr)
	}
	return nil
}

func failureInfo(err error) *ErrorInfo {
	var classified FailureClassifier
	if errors.As(err, &classified) {
		return &ErrorInfo{
			Code:    classified.FailureCode(),
			Message: classified.FailureMessage(),
		}
	}
	return &ErrorInfo{
		Code:    "INTERNAL_ERROR",
		Message: err.Error(),
	}
}

func (w *Worker) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
