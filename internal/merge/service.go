// Package merge はPDF結合ジョブの受付（クォータ判定・ステージング）と
// ワーカー側の結合・注釈処理を提供します。
package merge

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/yourusername/pdf-booker/internal/storage"
)

const stagingDirName = "staging"

// Service は結合ジョブの受付と実行を担います。
type Service struct {
	stagingRoot string
	artifacts   *storage.ArtifactStore

	newID func() string
}

// NewService は Service を初期化します。
// outputDir はAPIサーバーとワーカーが共有するディレクトリで、
// ステージング入力は outputDir/staging/<jobID>/ に置かれます。
func NewService(outputDir string, artifacts *storage.ArtifactStore) *Service {
	return &Service{
		stagingRoot: filepath.Join(outputDir, stagingDirName),
		artifacts:   artifacts,
		newID:       uuid.NewString,
	}
}

// stagingDir はジョブ専用のステージングディレクトリパスを返します。
// ジョブIDで名前空間が分かれるため、ジョブ間でパスが衝突することはありません。
func (s *Service) stagingDir(jobID string) string {
	return filepath.Join(s.stagingRoot, jobID)
}

// DiscardStaging はジョブのステージング入力一式を削除します。
// 既に削除されている場合はエラーになりません。
func (s *Service) DiscardStaging(jobID string) error {
	if jobID == "" {
		return nil
	}
	return os.RemoveAll(s.stagingDir(jobID))
}
