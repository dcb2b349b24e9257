// Package importer はフィードのインポートオーケストレーションを提供する。
//
// 1回のインポートは台帳レコードの作成、フィード解析、レコード単位の
// カテゴリ解決とUPSERT、台帳の終端化で構成される。レコード単位の失敗は
// 完全に隔離され、実行全体を中断させない。台帳作成以降に発生した失敗は
// 必ず終端状態（FAILED）への書き込みに集約される。
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/katalog/internal/category"
	"github.com/hitoshi/katalog/internal/feed"
	"github.com/hitoshi/katalog/internal/metrics"
	"github.com/hitoshi/katalog/internal/model"
	"github.com/hitoshi/katalog/internal/repository"
)

// maxErrorDetails はAPI応答に含めるレコード単位エラーの上限。
// 全文は台帳のerror_logに保持される。
const maxErrorDetails = 10

// ImportSummary は1回のインポート実行の結果サマリー。
type ImportSummary struct {
	ImportID     string
	TotalRecords int
	SuccessCount int
	ErrorCount   int
	ErrorDetails []string // 先頭maxErrorDetails件のみ
}

// ImportError は実行レコード作成後に発生した失敗を表す。
// 呼び出し側がHTTP応答と永続化された実行レコードを突き合わせられるよう、
// インポートIDを保持する。
type ImportError struct {
	ImportID string
	Err      error
}

// Error はerrorインターフェースを実装する。
func (e *ImportError) Error() string {
	return e.Err.Error()
}

// Unwrap はラップされたエラーを返す。
func (e *ImportError) Unwrap() error {
	return e.Err
}

// CategoryResolver はカテゴリ階層解決のインターフェース。
// category.Resolverを抽象化してテスタビリティを向上させる。
type CategoryResolver interface {
	ResolveHierarchy(ctx context.Context, segments []string) (*string, error)
}

// Service はインポート実行のオーケストレーター。
// 実行台帳のライフサイクル（PROCESSING → COMPLETED | FAILED）を所有する。
type Service struct {
	programRepo repository.AffiliateProgramRepository
	productRepo repository.ProductRepository
	importRepo  repository.ImportRunRepository
	resolver    CategoryResolver
	collector   metrics.MetricsCollector
	logger      *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	programRepo repository.AffiliateProgramRepository,
	productRepo repository.ProductRepository,
	importRepo repository.ImportRunRepository,
	resolver CategoryResolver,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	return &Service{
		programRepo: programRepo,
		productRepo: productRepo,
		importRepo:  importRepo,
		resolver:    resolver,
		collector:   collector,
		logger:      logger,
	}
}

// RunImport は1回のインポートを同期実行する。
//
// 入力検証とプログラム存在確認は実行レコード作成前に行われ、失敗しても
// 副作用を残さない。実行レコード作成以降の失敗はすべて台帳のFAILED遷移に
// 集約され、ImportErrorとして返る。レコード単位の失敗はカウントと
// エラーログに記録されるだけで、実行はCOMPLETEDで終端する。
func (s *Service) RunImport(ctx context.Context, content []byte, fileName, programID string, format model.FeedFormat) (*ImportSummary, error) {
	// 1. 入力検証（実行レコード作成前、副作用なし）
	var missing []string
	if len(content) == 0 {
		missing = append(missing, "file")
	}
	if programID == "" {
		missing = append(missing, "affiliateProgramId")
	}
	if format == "" {
		missing = append(missing, "xmlFormat")
	}
	if len(missing) > 0 {
		return nil, model.NewMissingFieldsError(missing...)
	}

	// 2. プログラム存在確認（実行レコード作成前、副作用なし）
	program, err := s.programRepo.FindByID(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("アフィリエイトプログラムの確認に失敗しました: %w", err)
	}
	if program == nil {
		return nil, model.NewProgramNotFoundError(programID)
	}

	// 3. 実行レコードをPROCESSINGで作成。
	// ここから先はいかなる失敗でも台帳を終端状態に到達させる。
	now := time.Now()
	run := &model.ImportRun{
		ID:                 uuid.New().String(),
		AffiliateProgramID: programID,
		Format:             format,
		FileName:           fileName,
		Status:             model.ImportStatusProcessing,
		StartedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.importRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("インポート実行レコードの作成に失敗しました: %w", err)
	}

	s.logger.Info("インポートを開始します",
		slog.String("import_id", run.ID),
		slog.String("program", program.Name),
		slog.String("file_name", fileName),
		slog.String("format", string(format)),
		slog.Int("content_bytes", len(content)),
	)

	summary, err := s.processRun(ctx, run, string(content))
	if err != nil {
		// 3の続き: 失敗の終端化。台帳への書き込み自体の失敗はログに残して飲み込み、
		// 呼び出し側には元の失敗を返す。
		run.Status = model.ImportStatusFailed
		run.ErrorLog = err.Error()
		run.UpdatedAt = time.Now()
		if updateErr := s.importRepo.Update(ctx, run); updateErr != nil {
			s.logger.Error("失敗状態の永続化に失敗しました",
				slog.String("import_id", run.ID),
				slog.String("error", updateErr.Error()),
			)
		}
		s.collector.RecordImportCompleted(string(model.ImportStatusFailed), time.Since(now))

		s.logger.Error("インポートが失敗しました",
			slog.String("import_id", run.ID),
			slog.String("error", err.Error()),
		)
		return nil, &ImportError{ImportID: run.ID, Err: err}
	}

	s.collector.RecordImportCompleted(string(model.ImportStatusCompleted), time.Since(now))
	s.collector.RecordImportRecords(summary.TotalRecords, summary.SuccessCount, summary.ErrorCount)

	s.logger.Info("インポートが完了しました",
		slog.String("import_id", run.ID),
		slog.Int("records_processed", summary.TotalRecords),
		slog.Int("records_success", summary.SuccessCount),
		slog.Int("records_error", summary.ErrorCount),
	)

	return summary, nil
}

// processRun は解析以降の処理を実行する。
// エラーを返した場合、呼び出し元が台帳をFAILEDに終端化する。
// panicも失敗として回復し、同じ経路に集約する。
func (s *Service) processRun(ctx context.Context, run *model.ImportRun, content string) (summary *ImportSummary, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			summary = nil
			err = fmt.Errorf("インポート処理中にpanicが発生しました: %v", rec)
		}
	}()

	// 4. フィード解析。サポート外形式などの解析レベルの失敗は
	// カウンタ未設定のままFAILEDになる。
	products, err := feed.Parse(content, run.Format)
	if err != nil {
		return nil, err
	}

	s.logger.Info("フィードを解析しました",
		slog.String("import_id", run.ID),
		slog.Int("parsed_count", len(products)),
	)

	// 5. レコード単位の処理。1件の失敗は記録するだけで続行する。
	successCount := 0
	var recordErrors []string

	for _, parsed := range products {
		if err := s.importRecord(ctx, run.AffiliateProgramID, parsed); err != nil {
			recordErrors = append(recordErrors,
				fmt.Sprintf("Product %s: %s", parsed.ExternalID, err.Error()))
			s.logger.Error("商品のインポートに失敗しました",
				slog.String("import_id", run.ID),
				slog.String("external_id", parsed.ExternalID),
				slog.String("error", err.Error()),
			)
			continue
		}
		successCount++
	}

	// 6. レコード単位のエラー数に関わらずCOMPLETEDで終端化する。
	run.Status = model.ImportStatusCompleted
	run.RecordsProcessed = len(products)
	run.RecordsSuccess = successCount
	run.RecordsError = len(recordErrors)
	run.ErrorLog = strings.Join(recordErrors, "\n")
	run.UpdatedAt = time.Now()
	if err := s.importRepo.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("インポート実行レコードの終端化に失敗しました: %w", err)
	}

	// 7. サマリーにはエラーメッセージの先頭10件のみを含める。
	details := recordErrors
	if len(details) > maxErrorDetails {
		details = details[:maxErrorDetails]
	}

	return &ImportSummary{
		ImportID:     run.ID,
		TotalRecords: len(products),
		SuccessCount: successCount,
		ErrorCount:   len(recordErrors),
		ErrorDetails: details,
	}, nil
}

// importRecord は1レコードを独立に処理する。
// カテゴリパスが存在する場合は階層を解決し、その葉ノードIDを紐付けて
// 商品をUPSERTする。処理中のpanicはこのレコードのエラーとして回復する。
func (s *Service) importRecord(ctx context.Context, programID string, parsed model.ParsedProduct) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	var categoryID *string
	if parsed.CategoryPath != "" {
		segments := category.ParsePath(parsed.CategoryPath)
		categoryID, err = s.resolver.ResolveHierarchy(ctx, segments)
		if err != nil {
			return err
		}
	}

	product := &model.Product{
		AffiliateProgramID: programID,
		ExternalID:         parsed.ExternalID,
		Name:               parsed.Name,
		Description:        parsed.Description,
		Price:              parsed.Price,
		SalePrice:          parsed.SalePrice,
		OriginalURL:        parsed.OriginalURL,
		ImageURL:           parsed.ImageURL,
		Brand:              parsed.Brand,
		Model:              parsed.Model,
		SKU:                parsed.SKU,
		EAN:                parsed.EAN,
		Availability:       parsed.Availability,
		Condition:          parsed.Condition,
		ShippingWeight:     parsed.ShippingWeight,
		CategoryID:         categoryID,
	}
	for _, attr := range parsed.Attributes {
		product.Attributes = append(product.Attributes, model.ProductAttribute{
			Name:  attr.Name,
			Value: attr.Value,
		})
	}

	if _, err := s.productRepo.Upsert(ctx, product); err != nil {
		return err
	}
	return nil
}
