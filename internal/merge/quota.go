package merge

import (
	"github.com/yourusername/pdf-booker/internal/jobs"
)

// プランごとの受付上限。境界値ちょうどは許可し、1バイト/1ファイル超過で拒否します。
const (
	freeMaxTotalBytes int64 = 20 << 20  // 20 MiB（anonymous / free 共通）
	freeMaxFileCount        = 3
	proMaxTotalBytes  int64 = 100 << 20 // 100 MiB
)

// totalByteLimit はプランの合計サイズ上限を返します。
func totalByteLimit(tier jobs.Tier) int64 {
	if tier.Pro() {
		return proMaxTotalBytes
	}
	return freeMaxTotalBytes
}

// CheckQuota はプラン・ファイル数・合計サイズの組が受付可能かを判定する純関数です。
// サイズ判定をファイル数判定より先に評価します。
func CheckQuota(tier jobs.Tier, fileCount int, totalBytes int64) error {
	if tier.Pro() {
		if totalBytes > proMaxTotalBytes {
			return newError("SIZE_LIMIT_EXCEEDED",
				"合計サイズがProプランの上限100MBを超えています。", nil)
		}
		return nil
	}

	if totalBytes > freeMaxTotalBytes {
		return newError("SIZE_LIMIT_EXCEEDED",
			"合計サイズが無料プランの上限20MBを超えています。Proへのアップグレードをご検討ください。", nil)
	}
	if fileCount > freeMaxFileCount {
		return newError("FILE_COUNT_LIMIT_EXCEEDED",
			"無料プランで一度に結合できるのは3ファイルまでです。Proへのアップグレードをご検討ください。", nil)
	}
	return nil
}
