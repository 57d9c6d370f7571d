package merge

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/yourusername/pdf-booker/internal/jobs"
)

// StagedJob は受付が完了したジョブを表します。
// Files の並び順はアップロード順そのままで、これが結合順になります。
type StagedJob struct {
	JobID string
	Tier  jobs.Tier
	Files []jobs.StagedInput
}

// PrepareMergeJob はアップロードされたファイル群を検証し、ステージングします。
// 各ストリームは一度だけ消費し、読み取りながらステージング先へ書き込みます
// （合計サイズはその過程で計測し、プランの上限を超えた時点で打ち切ります）。
// 受付に失敗した場合、ステージングディレクトリは残りません。
func (s *Service) PrepareMergeJob(ctx context.Context, files []*multipart.FileHeader, tier jobs.Tier) (_ *StagedJob, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(files) == 0 {
		return nil, newError("INVALID_INPUT", "アップロードされたPDFファイルが見つかりません。", nil)
	}

	jobID := s.newID()
	dir := s.stagingDir(jobID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	defer func() {
		if err != nil {
			_ = s.DiscardStaging(jobID)
		}
	}()

	limit := totalByteLimit(tier)
	staged := make([]jobs.StagedInput, 0, len(files))
	var totalBytes int64

	for i, fh := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// 上限超過を検知できるよう、残量+1バイトまでで読み取りを打ち切る
		path := filepath.Join(dir, fmt.Sprintf("in-%03d.pdf", i))
		written, copyErr := s.storeUpload(fh, path, limit-totalBytes+1)
		if copyErr != nil {
			return nil, copyErr
		}
		totalBytes += written
		if totalBytes > limit {
			return nil, CheckQuota(tier, len(files), totalBytes)
		}

		staged = append(staged, jobs.StagedInput{
			Path:         path,
			OriginalName: fh.Filename,
			Size:         written,
		})
	}

	if err := CheckQuota(tier, len(files), totalBytes); err != nil {
		return nil, err
	}

	for _, input := range staged {
		if err := validatePDF(input); err != nil {
			return nil, err
		}
	}

	return &StagedJob{
		JobID: jobID,
		Tier:  tier,
		Files: staged,
	}, nil
}

// storeUpload はアップロードストリームをステージング先へ書き込みます。
// maxBytes を超えた分は読み取らず、書き込んだバイト数を返します。
func (s *Service) storeUpload(fh *multipart.FileHeader, path string, maxBytes int64) (int64, error) {
	src, err := fh.Open()
	if err != nil {
		return 0, newError("INVALID_INPUT",
			fmt.Sprintf("ファイル %s を読み取れませんでした。", fh.Filename), err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("failed to create staged file: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(src, maxBytes))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return written, fmt.Errorf("failed to stage upload %s: %w", fh.Filename, err)
	}
	return written, nil
}

func validatePDF(input jobs.StagedInput) error {
	if input.Size == 0 {
		return newError("INVALID_INPUT",
			fmt.Sprintf("ファイル %s が空です。", input.OriginalName), nil)
	}
	kind, err := mimetype.DetectFile(input.Path)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}
	if !kind.Is("application/pdf") {
		return newError("INVALID_INPUT",
			fmt.Sprintf("ファイル %s はPDFではありません。", input.OriginalName), nil)
	}
	return nil
}
