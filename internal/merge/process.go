package merge

import (
	"context"
	"fmt"
	"path/filepath"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/yourusername/pdf-booker/internal/jobs"
)

const mergedFilename = "merged.pdf"

// RunJob はワーカー側でキューから受け取ったペイロードを処理します。
// 入力をペイロードの並び順どおりに結合し、ページ番号と透かしを重ね、
// 成果物をジョブIDから決まる名前で公開ストレージへ配置します。
// 成果物名が決定的なため、同一ジョブの再処理は上書きになり冪等です。
func (s *Service) RunJob(ctx context.Context, payload *jobs.TaskPayload) (*jobs.JobResult, error) {
	if payload == nil {
		return nil, fmt.Errorf("payload is nil")
	}
	if payload.JobID == "" {
		return nil, fmt.Errorf("payload.JobID is required")
	}
	if len(payload.Files) == 0 {
		return nil, newError("INVALID_INPUT", "結合対象のファイルがありません。", nil)
	}

	// 1. 入力を順番どおりに開き、総ページ数を数える。
	// 1つでも開けない入力があればジョブ全体を中止する（部分的な結合は作らない）。
	totalPages := 0
	inPaths := make([]string, 0, len(payload.Files))
	for _, input := range payload.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages, err := pdfapi.PageCountFile(input.Path)
		if err != nil {
			return nil, newError("INPUT_UNREADABLE",
				fmt.Sprintf("入力ファイル %s を開けませんでした。", input.OriginalName), err)
		}
		totalPages += pages
		inPaths = append(inPaths, input.Path)
	}

	// 2. ステージング内で結合する。ページ順は入力の並び順を維持する。
	outPath := filepath.Join(s.stagingDir(payload.JobID), mergedFilename)
	if err := pdfapi.MergeCreateFile(inPaths, outPath, false, nil); err != nil {
		return nil, newError("UNSUPPORTED_PDF", "PDFの結合に失敗しました。", err)
	}

	// 3. ページ番号と（非Proの場合）透かしを重ねる。
	if err := s.annotate(outPath, totalPages, payload.Tier); err != nil {
		return nil, err
	}

	// 4. 成果物を公開ストレージへ配置する。
	url, err := s.artifacts.Publish(payload.JobID, outPath)
	if err != nil {
		return nil, err
	}

	return &jobs.JobResult{
		URL:   url,
		Pages: totalPages,
	}, nil
}
