package merge

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/pdf-booker/internal/entitlement"
	"github.com/yourusername/pdf-booker/internal/jobs"
)

// AdmissionService は結合ジョブの受付を提供します。
type AdmissionService interface {
	PrepareMergeJob(ctx context.Context, files []*multipart.FileHeader, tier jobs.Tier) (*StagedJob, error)
	DiscardStaging(jobID string) error
}

// Submitter はジョブをタスクキューへ投入します。*jobs.Enqueuer が実装します。
type Submitter interface {
	Enqueue(ctx context.Context, payload *jobs.TaskPayload) (string, error)
}

// RecordGetter はジョブレコードの点参照を提供します。*jobs.Store が実装します。
type RecordGetter interface {
	Get(ctx context.Context, jobID string) (*jobs.Record, error)
}

// MergeHandler は POST /merge のハンドラーを返します。
// 受付が成功した時点でジョブIDを返し、処理の完了は待ちません。
func MergeHandler(svc AdmissionService, submitter Submitter, checker entitlement.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "multipart/form-data でPDFファイルを送信してください。",
			})
			return
		}
		defer form.RemoveAll()

		files := form.File["files[]"]
		if len(files) == 0 {
			files = form.File["files"]
		}
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "アップロードされたPDFファイルが見つかりません。",
			})
			return
		}

		tier, err := resolveTier(c.Request.Context(), checker, c.PostForm("userId"))
		if err != nil {
			// エンタイトルメント基盤へ到達できない場合は受け付けず明示的に失敗させる
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"code":    "ENTITLEMENT_UNAVAILABLE",
				"message": "プラン情報の確認に失敗しました。時間をおいて再度お試しください。",
			})
			return
		}

		staged, err := svc.PrepareMergeJob(c.Request.Context(), files, tier)
		if err != nil {
			respondWithError(c, err)
			return
		}

		taskID, err := submitter.Enqueue(c.Request.Context(), &jobs.TaskPayload{
			JobID: staged.JobID,
			Tier:  staged.Tier,
			Files: staged.Files,
		})
		if err != nil {
			if cleanupErr := svc.DiscardStaging(staged.JobID); cleanupErr != nil {
				err = errors.Join(err, cleanupErr)
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"code":    "QUEUE_UNAVAILABLE",
				"message": "ジョブの投入に失敗しました。時間をおいて再度お試しください。",
			})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"jobId":  staged.JobID,
			"taskId": taskID,
			"status": "processing",
		})
	}
}

// StatusHandler は GET /status/:jobId のハンドラーを返します。
// 未知のジョブIDは pending として返します。タスクキュー基盤はIDの存在を
// 安価に答えられないため、存在しないIDと未着手を区別しない保守的な既定です。
func StatusHandler(store RecordGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := strings.TrimSpace(c.Param("jobId"))
		if jobID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "jobId を指定してください。",
			})
			return
		}

		record, err := store.Get(c.Request.Context(), jobID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ジョブ情報の取得に失敗しました。",
			})
			return
		}
		if record == nil {
			c.JSON(http.StatusOK, gin.H{
				"status": string(jobs.StatusPending),
				"jobId":  jobID,
			})
			return
		}

		payload := gin.H{
			"status": string(record.Status),
			"jobId":  record.JobID,
		}
		switch record.Status {
		case jobs.StatusCompleted:
			payload["url"] = record.URL
			payload["pages"] = record.Pages
		case jobs.StatusFailed:
			message := "ジョブの処理中にエラーが発生しました。"
			if record.Error != nil && record.Error.Message != "" {
				message = record.Error.Message
			}
			payload["error"] = message
		}

		c.JSON(http.StatusOK, payload)
	}
}

// resolveTier は投入者のプランを確定します。userId が無ければ anonymous、
// あればエンタイトルメント照会の結果で pro / free になります。
func resolveTier(ctx context.Context, checker entitlement.Checker, userID string) (jobs.Tier, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return jobs.TierAnonymous, nil
	}
	pro, err := checker.IsPro(ctx, userID)
	if err != nil {
		return "", err
	}
	if pro {
		return jobs.TierPro, nil
	}
	return jobs.TierFree, nil
}

func respondWithError(c *gin.Context, err error) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		status := http.StatusBadRequest
		switch apiErr.Code {
		case "SIZE_LIMIT_EXCEEDED", "FILE_COUNT_LIMIT_EXCEEDED":
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		})
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusRequestTimeout, gin.H{
			"code":    "REQUEST_CANCELED",
			"message": "リクエストがキャンセルされました。",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "サーバー内部でエラーが発生しました。",
		})
	}
}
