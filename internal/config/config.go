// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
// APIサーバーとワーカープロセスの両方が同じ設定を読み込みます。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// 成果物・ステージング設定
	OutputDir     string // 結合結果とステージング入力を保存する共有ディレクトリ
	PublicURLBase string // 成果物ダウンロードURLのベース（例: http://localhost:8080/files）

	// ジョブ/キュー設定
	QueueRedisURL     string // タスクキュー（Asynqブローカー）用Redis接続URL
	StateRedisURL     string // ジョブ状態ストア用Redis接続URL（未指定時はブローカーと同じ）
	JobExpireMinutes  int    // ジョブレコードの有効期限（分）
	WorkerConcurrency int    // ワーカープロセスの同時実行数

	// エンタイトルメント設定
	ProMembersKey string // Proユーザー判定に使うRedisセットのキー

	// レート制限設定
	RateLimitRPS   float64 // /merge のIP別リクエストレート
	RateLimitBurst int     // /merge のバースト許容数
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		// 成果物・ステージング設定
		OutputDir:     getEnv("OUTPUT_DIR", "/app/output"),
		PublicURLBase: getEnv("PUBLIC_URL_BASE", "http://localhost:8080/files"),

		// ジョブ/キュー設定
		QueueRedisURL:     getEnv("QUEUE_REDIS_URL", "redis://127.0.0.1:6379/0"),
		StateRedisURL:     getEnv("STATE_REDIS_URL", ""),
		JobExpireMinutes:  getEnvAsInt("JOB_EXPIRE_MINUTES", 60),
		WorkerConcurrency: getEnvAsInt("WORKER_CONCURRENCY", 4),

		// エンタイトルメント設定
		ProMembersKey: getEnv("PRO_MEMBERS_KEY", "entitlements:pro"),

		// レート制限設定
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
	}

	// StateRedisURL が未指定の場合はブローカーのRedisを共用する
	if config.StateRedisURL == "" {
		config.StateRedisURL = config.QueueRedisURL
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if c.QueueRedisURL == "" {
		return fmt.Errorf("QUEUE_REDIS_URL is required")
	}

	// ローカル開発では既定値で動作し、本番環境では厳格にチェックする想定
	if c.GinMode == "release" {
		if c.PublicURLBase == "" {
			return fmt.Errorf("PUBLIC_URL_BASE is required in release mode")
		}
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat は環境変数を浮動小数点数として取得します。
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
