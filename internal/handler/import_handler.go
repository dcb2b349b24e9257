// Package handler はHTTP APIのハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/katalog/internal/feed"
	"github.com/hitoshi/katalog/internal/importer"
	"github.com/hitoshi/katalog/internal/model"
	"github.com/hitoshi/katalog/internal/repository"
)

// ImportServiceInterface はインポートハンドラーが必要とするサービスインターフェース。
type ImportServiceInterface interface {
	// RunImport はフィード内容を指定プログラムへ同期的に取り込む。
	RunImport(ctx context.Context, content []byte, fileName, programID string, format model.FeedFormat) (*importer.ImportSummary, error)
}

// FeedFetcherInterface はURL指定インポートのためのフィード取得インターフェース。
type FeedFetcherInterface interface {
	// FetchFeed は指定URLからフィード内容をダウンロードする。
	FetchFeed(ctx context.Context, feedURL string) ([]byte, error)
}

// ImportLedgerInterface はインポート履歴の参照・削除インターフェース。
// repository.ImportRunRepositoryを直接変更せず、最小限のインターフェースとして定義する。
type ImportLedgerInterface interface {
	// ListAll は全インポート実行をプログラム名付き・開始時刻降順で返す。
	ListAll(ctx context.Context) ([]repository.ImportRunWithProgram, error)
	// Delete は指定IDの実行レコードを削除する。存在した場合trueを返す。
	Delete(ctx context.Context, id string) (bool, error)
}

// StaleSweeperInterface は滞留インポートの強制失敗処理のインターフェース。
type StaleSweeperInterface interface {
	// Run はPROCESSINGのまま滞留した実行をFAILEDへ遷移させ、件数を返す。
	Run(ctx context.Context) (int64, error)
}

// ImportHandler はフィードインポートのHTTPハンドラー。
type ImportHandler struct {
	service ImportServiceInterface
	fetcher FeedFetcherInterface
	ledger  ImportLedgerInterface
	sweeper StaleSweeperInterface

	// maxUploadSize はmultipartアップロードのサイズ上限。
	maxUploadSize int64
}

// NewImportHandler はImportHandlerを生成する。
func NewImportHandler(service ImportServiceInterface, fetcher FeedFetcherInterface, ledger ImportLedgerInterface, sweeper StaleSweeperInterface, maxUploadSize int64) *ImportHandler {
	return &ImportHandler{
		service:       service,
		fetcher:       fetcher,
		ledger:        ledger,
		sweeper:       sweeper,
		maxUploadSize: maxUploadSize,
	}
}

// importURLRequest はURL指定インポートリクエストのボディ。
// xmlFormatを省略した場合は内容から形式を自動判定する。
type importURLRequest struct {
	FeedURL            string `json:"feedUrl"`
	AffiliateProgramID string `json:"affiliateProgramId"`
	XMLFormat          string `json:"xmlFormat"`
}

// importSummaryResponse はインポート結果サマリーのAPIレスポンス。
type importSummaryResponse struct {
	TotalRecords      int      `json:"totalRecords"`
	SuccessfulImports int      `json:"successfulImports"`
	Errors            int      `json:"errors"`
	ErrorDetails      []string `json:"errorDetails"`
}

// importResponse はインポート実行のAPIレスポンス。
type importResponse struct {
	ImportID string                `json:"importId"`
	Summary  importSummaryResponse `json:"summary"`
}

// importRunResponse はインポート履歴1件のAPIレスポンス。
type importRunResponse struct {
	ID                 string    `json:"id"`
	AffiliateProgramID string    `json:"affiliateProgramId"`
	ProgramName        string    `json:"programName"`
	Format             string    `json:"format"`
	FileName           string    `json:"fileName"`
	Status             string    `json:"status"`
	RecordsProcessed   int       `json:"recordsProcessed"`
	RecordsSuccess     int       `json:"recordsSuccess"`
	RecordsError       int       `json:"recordsError"`
	ErrorLog           string    `json:"errorLog,omitempty"`
	StartedAt          time.Time `json:"startedAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// RunImport はフィードのインポートを実行する。
// POST /api/affiliate/import
//
// multipart/form-data（xmlFile, affiliateProgramId, xmlFormat）と
// JSON（feedUrl, affiliateProgramId, xmlFormat省略可）の2形式を受け付ける。
func (h *ImportHandler) RunImport(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")

	var (
		content   []byte
		fileName  string
		programID string
		format    model.FeedFormat
		err       error
	)

	if strings.HasPrefix(contentType, "multipart/form-data") {
		content, fileName, programID, format, err = h.parseMultipartImport(r)
	} else {
		content, fileName, programID, format, err = h.parseURLImport(r)
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	summary, err := h.service.RunImport(r.Context(), content, fileName, programID, format)
	if err != nil {
		// 実行レコード作成後の失敗は、クライアントが台帳と突き合わせられるよう
		// importIdを含めて返す
		var importErr *importer.ImportError
		if errors.As(err, &importErr) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"code":     model.ErrCodeImportFailed,
				"message":  importErr.Error(),
				"importId": importErr.ImportID,
			})
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		ImportID: summary.ImportID,
		Summary: importSummaryResponse{
			TotalRecords:      summary.TotalRecords,
			SuccessfulImports: summary.SuccessCount,
			Errors:            summary.ErrorCount,
			ErrorDetails:      summary.ErrorDetails,
		},
	})
}

// parseMultipartImport はmultipartフォームからインポート入力を取り出す。
func (h *ImportHandler) parseMultipartImport(r *http.Request) ([]byte, string, string, model.FeedFormat, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, "", "", "", model.NewInvalidRequestError("multipartフォームの解析に失敗しました")
	}

	var missing []string

	file, header, err := r.FormFile("xmlFile")
	if err != nil {
		missing = append(missing, "xmlFile")
	}

	programID := r.FormValue("affiliateProgramId")
	if programID == "" {
		missing = append(missing, "affiliateProgramId")
	}

	formatValue := r.FormValue("xmlFormat")
	if formatValue == "" {
		missing = append(missing, "xmlFormat")
	}

	if len(missing) > 0 {
		return nil, "", "", "", model.NewMissingFieldsError(missing...)
	}
	defer file.Close()

	format := model.FeedFormat(formatValue)
	if !format.IsValid() {
		return nil, "", "", "", model.NewUnsupportedFormatError(formatValue)
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize))
	if err != nil {
		return nil, "", "", "", model.NewInvalidRequestError("アップロードファイルの読み込みに失敗しました")
	}

	return content, header.Filename, programID, format, nil
}

// parseURLImport はJSONボディからインポート入力を取り出し、フィードを取得する。
// xmlFormatが省略された場合は取得した内容から形式を判定する。
func (h *ImportHandler) parseURLImport(r *http.Request) ([]byte, string, string, model.FeedFormat, error) {
	var req importURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "", "", "", model.NewInvalidRequestError("リクエストボディの解析に失敗しました")
	}

	var missing []string
	if req.FeedURL == "" {
		missing = append(missing, "feedUrl")
	}
	if req.AffiliateProgramID == "" {
		missing = append(missing, "affiliateProgramId")
	}
	if len(missing) > 0 {
		return nil, "", "", "", model.NewMissingFieldsError(missing...)
	}

	if req.XMLFormat != "" && !model.FeedFormat(req.XMLFormat).IsValid() {
		return nil, "", "", "", model.NewUnsupportedFormatError(req.XMLFormat)
	}

	content, err := h.fetcher.FetchFeed(r.Context(), req.FeedURL)
	if err != nil {
		return nil, "", "", "", err
	}

	format := model.FeedFormat(req.XMLFormat)
	if format == "" {
		detected, ok := feed.DetectFormat(string(content))
		if !ok {
			return nil, "", "", "", model.NewUnsupportedFormatError("unknown")
		}
		format = detected
	}

	return content, req.FeedURL, req.AffiliateProgramID, format, nil
}

// ListImports はインポート履歴を開始時刻降順で返す。
// GET /api/affiliate/imports
func (h *ImportHandler) ListImports(w http.ResponseWriter, r *http.Request) {
	runs, err := h.ledger.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]importRunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, importRunResponse{
			ID:                 run.ID,
			AffiliateProgramID: run.AffiliateProgramID,
			ProgramName:        run.ProgramName,
			Format:             string(run.Format),
			FileName:           run.FileName,
			Status:             string(run.Status),
			RecordsProcessed:   run.RecordsProcessed,
			RecordsSuccess:     run.RecordsSuccess,
			RecordsError:       run.RecordsError,
			ErrorLog:           run.ErrorLog,
			StartedAt:          run.StartedAt,
			UpdatedAt:          run.UpdatedAt,
		})
	}

	writeJSON(w, http.StatusOK, responses)
}

// DeleteImport はインポート履歴の削除または滞留実行の強制失敗を行う。
// DELETE /api/affiliate/imports?importId=…
//
// importIdを指定した場合は該当レコードを削除する。省略した場合は
// PROCESSINGのまま滞留した実行をFAILEDへ遷移させ、件数を返す。
func (h *ImportHandler) DeleteImport(w http.ResponseWriter, r *http.Request) {
	importID := r.URL.Query().Get("importId")

	if importID == "" {
		marked, err := h.sweeper.Run(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"markedAsFailed": marked})
		return
	}

	deleted, err := h.ledger.Delete(r.Context(), importID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !deleted {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewImportNotFoundError(importID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
