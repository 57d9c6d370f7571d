// Package storage は成果物ストレージの抽象化レイヤーを提供します。
// 現状はAPIサーバーとワーカーが共有するローカルディレクトリへの保存のみを実装しています。
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactStore は完成した結合PDFを公開ディレクトリへ配置し、
// ダウンロードURLを組み立てます。
// 成果物名はジョブIDから決定的に導出されるため、同一ジョブの再処理は
// 重複ファイルを作らず上書きになります。
type ArtifactStore struct {
	dir     string
	baseURL string
}

// NewArtifactStore は ArtifactStore を作成し、保存先ディレクトリを用意します。
func NewArtifactStore(dir, baseURL string) (*ArtifactStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact dir is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create artifact dir: %w", err)
	}
	return &ArtifactStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// ArtifactName はジョブIDに対応する成果物ファイル名を返します。
func (s *ArtifactStore) ArtifactName(jobID string) string {
	return jobID + ".pdf"
}

// ArtifactPath はジョブIDに対応する成果物の保存先パスを返します。
func (s *ArtifactStore) ArtifactPath(jobID string) string {
	return filepath.Join(s.dir, s.ArtifactName(jobID))
}

// URL はジョブIDに対応する公開ダウンロードURLを返します。
func (s *ArtifactStore) URL(jobID string) string {
	return s.baseURL + "/" + s.ArtifactName(jobID)
}

// Publish は処理済みファイルを成果物ディレクトリへ移動し、公開URLを返します。
// 既存の成果物があれば上書きします。
func (s *ArtifactStore) Publish(jobID, srcPath string) (string, error) {
	dst := s.ArtifactPath(jobID)
	if err := os.Rename(srcPath, dst); err != nil {
		// ステージングと成果物ディレクトリが別ファイルシステムの場合はコピーで代替
		if copyErr := copyFile(srcPath, dst); copyErr != nil {
			return "", fmt.Errorf("failed to publish artifact: %w", copyErr)
		}
		_ = os.Remove(srcPath)
	}
	return s.URL(jobID), nil
}

// Remove は成果物を削除します。存在しない場合はエラーになりません。
func (s *ArtifactStore) Remove(jobID string) error {
	err := os.Remove(s.ArtifactPath(jobID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
