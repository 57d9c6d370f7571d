// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/pdf-booker/internal/config"
	"github.com/yourusername/pdf-booker/internal/merge"
	"github.com/yourusername/pdf-booker/internal/middleware"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
	}
	router.Use(cors.New(corsConfig))

	// 受付・状態参照まわりの依存を構築
	deps, err := setupDeps(cfg)
	if err != nil {
		log.Fatalf("Failed to set up dependencies: %v", err)
	}
	defer deps.Close()

	setupRoutes(router, cfg, deps)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。副作用はありません。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "pdf-booker-api",
		"version": "0.1.0",
	})
}

// setupRoutes はエンドポイントの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, deps *apiDeps) {
	router.GET("/health", handleHealth)

	// ジョブ投入のみレート制限をかける
	router.POST("/merge",
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		merge.MergeHandler(deps.mergeService, deps.enqueuer, deps.entitlements),
	)
	router.GET("/status/:jobId", merge.StatusHandler(deps.store))

	// 完成した成果物は共有ディレクトリから静的配信する
	router.Static("/files", cfg.OutputDir)
}
