// Package jobs はPDF結合ジョブの投入・状態管理・ワーカー処理を提供します。
package jobs

import "time"

// Tier は投入者のプラン区分を表します。受付時に確定し、以後変更されません。
type Tier string

const (
	TierAnonymous Tier = "anonymous"
	TierFree      Tier = "free"
	TierPro       Tier = "pro"
)

// Pro はProプランかどうかを返します。
func (t Tier) Pro() bool {
	return t == TierPro
}

// Status はジョブの実行状態を表します。
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal は終端状態（completed / failed）かどうかを返します。
// 終端状態に達したレコードは以後書き換えられません。
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StagedInput はステージング済み入力ファイルへの参照です。
// Path は受付時に解決済みの絶対パスで、ワーカー側でのパス推測は行いません。
type StagedInput struct {
	Path         string `json:"path"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}

// TaskPayload は結合ジョブのキュー投入ペイロードです。
// Files の並び順が結合順であり、各コンポーネントはこれを並べ替えません。
type TaskPayload struct {
	JobID string        `json:"jobId"`
	Tier  Tier          `json:"tier"`
	Files []StagedInput `json:"files"`
}

// ErrorInfo はジョブ失敗時のエラー情報を保持します。
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Record はジョブの現在状態を表します。
type Record struct {
	JobID     string     `json:"jobId"`
	Tier      Tier       `json:"tier"`
	Status    Status     `json:"status"`
	URL       string     `json:"url,omitempty"`
	Pages     int        `json:"pages,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}
