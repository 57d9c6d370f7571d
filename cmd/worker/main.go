// Package main はPDF結合ワーカープロセスのエントリーポイントです。
// APIサーバーとは別プロセスで起動し、タスクキューからジョブを取り出して処理します。
package main

import (
	"log"
	"time"

	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/pdf-booker/internal/config"
	"github.com/yourusername/pdf-booker/internal/jobs"
	"github.com/yourusername/pdf-booker/internal/merge"
	"github.com/yourusername/pdf-booker/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	stateOpt, err := redis.ParseURL(cfg.StateRedisURL)
	if err != nil {
		log.Fatalf("Failed to parse STATE_REDIS_URL: %v", err)
	}
	stateClient := redis.NewClient(stateOpt)
	defer stateClient.Close()

	ttlMinutes := cfg.JobExpireMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	store := jobs.NewStore(stateClient, time.Duration(ttlMinutes)*time.Minute)

	artifacts, err := storage.NewArtifactStore(cfg.OutputDir, cfg.PublicURLBase)
	if err != nil {
		log.Fatalf("Failed to set up artifact store: %v", err)
	}
	service := merge.NewService(cfg.OutputDir, artifacts)

	queueOpt, err := asynq.ParseRedisURI(cfg.QueueRedisURL)
	if err != nil {
		log.Fatalf("Failed to parse QUEUE_REDIS_URL: %v", err)
	}

	worker, err := jobs.NewWorker(queueOpt, cfg.WorkerConcurrency, store, service, log.Default())
	if err != nil {
		log.Fatalf("Failed to set up worker: %v", err)
	}

	log.Printf("Starting merge worker (concurrency: %d)", cfg.WorkerConcurrency)
	// Run はSIGINT/SIGTERMを自前で処理し、停止までブロックします。
	if err := worker.Run(); err != nil {
		log.Fatalf("Worker stopped with error: %v", err)
	}
}
