package main

import (
	"time"

	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/pdf-booker/internal/config"
	"github.com/yourusername/pdf-booker/internal/entitlement"
	"github.com/yourusername/pdf-booker/internal/jobs"
	"github.com/yourusername/pdf-booker/internal/merge"
	"github.com/yourusername/pdf-booker/internal/storage"
)

// apiDeps はAPIサーバーが使う依存一式です。
type apiDeps struct {
	store        *jobs.Store
	enqueuer     *jobs.Enqueuer
	entitlements entitlement.Checker
	mergeService *merge.Service

	stateClient *redis.Client
}

// setupDeps はRedis・タスクキュー・受付サービスを構築します。
func setupDeps(cfg *config.Config) (*apiDeps, error) {
	stateOpt, err := redis.ParseURL(cfg.StateRedisURL)
	if err != nil {
		return nil, err
	}
	stateClient := redis.NewClient(stateOpt)

	ttlMinutes := cfg.JobExpireMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	store := jobs.NewStore(stateClient, time.Duration(ttlMinutes)*time.Minute)

	queueOpt, err := asynq.ParseRedisURI(cfg.QueueRedisURL)
	if err != nil {
		stateClient.Close()
		return nil, err
	}
	enqueuer, err := jobs.NewEnqueuer(queueOpt, store)
	if err != nil {
		stateClient.Close()
		return nil, err
	}

	artifacts, err := storage.NewArtifactStore(cfg.OutputDir, cfg.PublicURLBase)
	if err != nil {
		stateClient.Close()
		_ = enqueuer.Close()
		return nil, err
	}

	return &apiDeps{
		store:        store,
		enqueuer:     enqueuer,
		entitlements: entitlement.NewRedisChecker(stateClient, cfg.ProMembersKey),
		mergeService: merge.NewService(cfg.OutputDir, artifacts),
		stateClient:  stateClient,
	}, nil
}

// Close は保持しているコネクションを閉じます。
func (d *apiDeps) Close() {
	_ = d.enqueuer.Close()
	_ = d.stateClient.Close()
}
