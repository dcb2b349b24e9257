// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, import, catalog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingFields      = "MISSING_FIELDS"
	ErrCodeProgramNotFound    = "PROGRAM_NOT_FOUND"
	ErrCodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	ErrCodeImportFailed       = "IMPORT_FAILED"
	ErrCodeImportNotFound     = "IMPORT_NOT_FOUND"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidPagination  = "INVALID_PAGINATION"
	ErrCodeInvalidPriceRange  = "INVALID_PRICE_RANGE"
	ErrCodeSSRFBlocked        = "SSRF_BLOCKED"
	ErrCodeFetchFailed        = "FETCH_FAILED"
)

// NewMissingFieldsError は必須入力欠落エラーを生成する。
// インポート実行レコードの作成前に検出されるため、副作用は発生しない。
func NewMissingFieldsError(fields ...string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingFields,
		Message:  fmt.Sprintf("必須項目が不足しています: %v", fields),
		Category: "validation",
		Action:   "ファイル、アフィリエイトプログラムID、XML形式をすべて指定してください。",
	}
}

// NewInvalidRequestError は不正なリクエストのエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewProgramNotFoundError はアフィリエイトプログラム未検出エラーを生成する。
func NewProgramNotFoundError(programID string) *APIError {
	return &APIError{
		Code:     ErrCodeProgramNotFound,
		Message:  fmt.Sprintf("指定されたアフィリエイトプログラムが見つかりません: %s", programID),
		Category: "import",
		Action:   "アフィリエイトプログラムIDを確認してください。",
	}
}

// NewUnsupportedFormatError はサポート外フィード形式エラーを生成する。
func NewUnsupportedFormatError(format string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedFormat,
		Message:  fmt.Sprintf("サポートされていないXML形式です: %s", format),
		Category: "import",
		Action:   "google_rss または shoptet のいずれかを指定してください。",
	}
}

// NewImportNotFoundError はインポート実行未検出エラーを生成する。
func NewImportNotFoundError(importID string) *APIError {
	return &APIError{
		Code:     ErrCodeImportNotFound,
		Message:  fmt.Sprintf("指定されたインポートが見つかりません: %s", importID),
		Category: "import",
		Action:   "インポートIDを確認してください。",
	}
}

// NewProductNotFoundError は商品未検出エラーを生成する。
func NewProductNotFoundError(productID string) *APIError {
	return &APIError{
		Code:     ErrCodeProductNotFound,
		Message:  fmt.Sprintf("指定された商品が見つかりません: %s", productID),
		Category: "catalog",
		Action:   "商品IDを確認してください。",
	}
}

// NewInvalidPaginationError は無効なページネーション指定のエラーを生成する。
func NewInvalidPaginationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPagination,
		Message:  fmt.Sprintf("無効なページネーション指定です: %s", reason),
		Category: "validation",
		Action:   "pageは1以上、limitは1から100の範囲で指定してください。",
	}
}

// NewInvalidPriceRangeError は無効な価格範囲指定のエラーを生成する。
func NewInvalidPriceRangeError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPriceRange,
		Message:  fmt.Sprintf("無効な価格範囲です: %s", reason),
		Category: "validation",
		Action:   "minPriceとmaxPriceは非負の数値で、minPrice <= maxPriceとなるよう指定してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたフィードURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているフィードURLを入力してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewFetchFailedError はフィード取得失敗エラーを生成する。
func NewFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("フィードURLの取得に失敗しました: %s", reason),
		Category: "import",
		Action:   "URLが正しいか確認し、しばらく待ってから再度お試しください。",
	}
}
