package merge

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"testing"

	"github.com/yourusername/pdf-booker/internal/jobs"
	"github.com/yourusername/pdf-booker/internal/storage"
)

type upload struct {
	name string
	data []byte
}

func pdfBytes(padding int) []byte {
	data := []byte("%PDF-1.4\n% test pdf\n")
	if padding > 0 {
		data = append(data, bytes.Repeat([]byte{' '}, padding)...)
	}
	return data
}

func buildFileHeaders(t *testing.T, uploads []upload) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, u := range uploads {
		fw, err := writer.CreateFormFile("files[]", u.name)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := fw.Write(u.data); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(8 << 20)
	if err != nil {
		t.Fatalf("failed to parse multipart form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files[]"]
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	artifacts, err := storage.NewArtifactStore(dir, "http://localhost:8080/files")
	if err != nil {
		t.Fatalf("failed to create artifact store: %v", err)
	}
	return NewService(dir, artifacts), dir
}

func assertStagingEmpty(t *testing.T, svc *Service) {
	t.Helper()
	entries, err := os.ReadDir(svc.stagingRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		t.Fatalf("failed to read staging root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty staging root, found %d entries", len(entries))
	}
}

func TestPrepareMergeJobPreservesOrder(t *testing.T) {
	svc, _ := newTestService(t)

	uploads := []upload{
		{"first.pdf", pdfBytes(10)},
		{"second.pdf", pdfBytes(200)},
		{"third.pdf", pdfBytes(3000)},
	}
	files := buildFileHeaders(t, uploads)

	staged, err := svc.PrepareMergeJob(context.Background(), files, jobs.TierAnonymous)
	if err != nil {
		t.Fatalf("PrepareMergeJob returned error: %v", err)
	}
	if staged.JobID == "" {
		t.Fatal("expected a job ID")
	}
	if staged.Tier != jobs.TierAnonymous {
		t.Fatalf("tier = %s", staged.Tier)
	}
	if len(staged.Files) != len(uploads) {
		t.Fatalf("staged %d files, want %d", len(staged.Files), len(uploads))
	}

	for i, input := range staged.Files {
		if input.OriginalName != uploads[i].name {
			t.Fatalf("file %d original name = %q, want %q", i, input.OriginalName, uploads[i].name)
		}
		if input.Size != int64(len(uploads[i].data)) {
			t.Fatalf("file %d size = %d, want %d", i, input.Size, len(uploads[i].data))
		}
		data, err := os.ReadFile(input.Path)
		if err != nil {
			t.Fatalf("failed to read staged file %d: %v", i, err)
		}
		if !bytes.Equal(data, uploads[i].data) {
			t.Fatalf("staged file %d content mismatch", i)
		}
	}
}

func TestPrepareMergeJobRejectsOversize(t *testing.T) {
	svc, _ := newTestService(t)

	// 20MiB上限を本文で1バイト以上超えるファイル
	files := buildFileHeaders(t, []upload{{"big.pdf", pdfBytes(20 << 20)}})

	_, err := svc.PrepareMergeJob(context.Background(), files, jobs.TierAnonymous)
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != "SIZE_LIMIT_EXCEEDED" {
		t.Fatalf("expected SIZE_LIMIT_EXCEEDED, got %v", err)
	}
	assertStagingEmpty(t, svc)
}

func TestPrepareMergeJobRejectsTooManyFiles(t *testing.T) {
	svc, _ := newTestService(t)

	files := buildFileHeaders(t, []upload{
		{"a.pdf", pdfBytes(0)},
		{"b.pdf", pdfBytes(0)},
		{"c.pdf", pdfBytes(0)},
		{"d.pdf", pdfBytes(0)},
	})

	_, err := svc.PrepareMergeJob(context.Background(), files, jobs.TierAnonymous)
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != "FILE_COUNT_LIMIT_EXCEEDED" {
		t.Fatalf("expected FILE_COUNT_LIMIT_EXCEEDED, got %v", err)
	}
	assertStagingEmpty(t, svc)
}

func TestPrepareMergeJobProAllowsLargeUpload(t *testing.T) {
	svc, _ := newTestService(t)

	// 無料プランの上限は超えるがProの100MiBには収まるサイズ
	files := buildFileHeaders(t, []upload{{"report.pdf", pdfBytes(25 << 20)}})

	staged, err := svc.PrepareMergeJob(context.Background(), files, jobs.TierPro)
	if err != nil {
		t.Fatalf("PrepareMergeJob returned error: %v", err)
	}
	if staged.Tier != jobs.TierPro {
		t.Fatalf("tier = %s", staged.Tier)
	}
	if err := svc.DiscardStaging(staged.JobID); err != nil {
		t.Fatalf("DiscardStaging returned error: %v", err)
	}
}

func TestPrepareMergeJobRejectsNonPDF(t *testing.T) {
	svc, _ := newTestService(t)

	files := buildFileHeaders(t, []upload{{"notes.txt", []byte("plain text, not a pdf")}})

	_, err := svc.PrepareMergeJob(context.Background(), files, jobs.TierAnonymous)
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	assertStagingEmpty(t, svc)
}

func TestPrepareMergeJobRejectsEmptySet(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PrepareMergeJob(context.Background(), nil, jobs.TierAnonymous)
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestDiscardStagingMissingIsNoError(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.DiscardStaging("no-such-job"); err != nil {
		t.Fatalf("DiscardStaging returned error: %v", err)
	}
}
