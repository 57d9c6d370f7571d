package merge

import (
	"strconv"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/yourusername/pdf-booker/internal/jobs"
)

// 無料プラン向けの透かし文言。偶数インデックスのページ（0始まり）にのみ入ります。
const watermarkText = "PDFBooker Free - Upgrade to Pro to remove"

// 透かしは斜めに薄く重ねます。
const watermarkDesc = "font:Helvetica, points:12, scale:0.9 abs, rot:30, op:.4, fillc:#9e9e9e"

// pageNumberDesc はページ番号スタンプの描画指定を返します。
// 配置とサイズはプランごとに決定的です（Pro: 端寄せ小オフセット・大きめフォント）。
func pageNumberDesc(tier jobs.Tier) string {
	if tier.Pro() {
		return "font:Helvetica, points:10, scale:1 abs, pos:bc, off:0 15, rot:0, fillc:#404040"
	}
	return "font:Helvetica, points:8, scale:1 abs, pos:bc, off:0 20, rot:0, fillc:#404040"
}

// ページ番号スタンプの文字列。%p と %P はpdfcpuがページごとに
// 現在ページ番号・総ページ数へ展開するマクロで、1回の呼び出しで全ページに入ります。
const pageNumberStampText = "%p / %P"

// watermarkPageSelection は透かし対象ページの選択リストを返します。
// 0始まりで偶数インデックスのページ、つまり1始まりの奇数ページです。
func watermarkPageSelection(totalPages int) []string {
	pages := make([]string, 0, (totalPages+1)/2)
	for p := 1; p <= totalPages; p += 2 {
		pages = append(pages, strconv.Itoa(p))
	}
	return pages
}

// annotate は結合済みPDFへページ番号と（非Proの場合）透かしを重ねます。
func (s *Service) annotate(path string, totalPages int, tier jobs.Tier) error {
	// ページ選択をnilにすると全ページが対象。番号はマクロで展開されるため1回で済む。
	if err := pdfapi.AddTextWatermarksFile(path, path, nil, true, pageNumberStampText, pageNumberDesc(tier), nil); err != nil {
		return newError("ANNOTATION_FAILED", "ページ番号の書き込みに失敗しました。", err)
	}

	if tier.Pro() {
		return nil
	}

	selection := watermarkPageSelection(totalPages)
	if len(selection) == 0 {
		return nil
	}
	if err := pdfapi.AddTextWatermarksFile(path, path, selection, true, watermarkText, watermarkDesc, nil); err != nil {
		return newError("ANNOTATION_FAILED", "透かしの書き込みに失敗しました。", err)
	}
	return nil
}
