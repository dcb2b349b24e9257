// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/katalog/internal/model"
)

// AffiliateProgramRepository はアフィリエイトプログラムの永続化インターフェース。
type AffiliateProgramRepository interface {
	// FindByID は指定IDのプログラムを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.AffiliateProgram, error)

	// ListActive は有効なプログラムの一覧を名前昇順で返す。
	ListActive(ctx context.Context) ([]*model.AffiliateProgram, error)

	// Create はプログラムを作成する。
	Create(ctx context.Context, program *model.AffiliateProgram) error

	// Update はプログラムの全フィールドを上書き更新する。
	Update(ctx context.Context, program *model.AffiliateProgram) error
}

// CategoryRepository はカテゴリデータの永続化インターフェース。
type CategoryRepository interface {
	// FindOrCreateBySlug はスラグをキーにカテゴリをfind-or-createする。
	// 既存スラグの場合は既存行を変更せずそのまま返す（nameやparentIdは上書きしない）。
	// スラグの一意性はストレージ側の制約で担保され、並行する同一スラグの
	// create競合は単一ノードに収束する。
	FindOrCreateBySlug(ctx context.Context, name, slug string, parentID *string) (*model.Category, error)

	// ListActive は有効なカテゴリの一覧を名前昇順で返す。
	ListActive(ctx context.Context) ([]*model.Category, error)
}

// ProductFilter は商品一覧の検索条件を表す。
type ProductFilter struct {
	Search     string   // name/description/brandに対する部分一致（大文字小文字を区別しない）
	CategoryID string   // カテゴリIDによる絞り込み
	Brand      string   // ブランド名の部分一致
	MinPrice   *float64 // 価格下限
	MaxPrice   *float64 // 価格上限
	Offset     int
	Limit      int
}

// ProductWithProgram は商品と所属プログラムの情報を結合した構造体。
// 一覧APIでアフィリエイトリンクを組み立てるために使用する。
type ProductWithProgram struct {
	model.Product
	ProgramName    string
	ProgramBaseURL string
}

// ProductRepository は商品データの永続化インターフェース。
type ProductRepository interface {
	// Upsert は(affiliate_program_id, external_id)をキーに商品をUPSERTする。
	// 既存行は全フィールドを上書きし、属性集合は全削除後に再挿入で完全置換する。
	// ストレージ側の一意制約によりUPSERTは原子的で、並行インポートの競合は
	// 後勝ちで収束する。保存された商品のIDを返す。
	Upsert(ctx context.Context, product *model.Product) (string, error)

	// FindByID は指定IDの商品を属性付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*ProductWithProgram, error)

	// List は検索条件に合致する有効な商品一覧と総件数を返す。
	// created_at降順で並べる。
	List(ctx context.Context, filter ProductFilter) ([]ProductWithProgram, int, error)

	// CountByExternalID は指定プログラム・外部IDの商品数を返す。テスト用の補助操作。
	CountByExternalID(ctx context.Context, programID, externalID string) (int, error)
}

// ImportRunWithProgram はインポート実行とプログラム名を結合した構造体。
type ImportRunWithProgram struct {
	model.ImportRun
	ProgramName string
}

// ImportRunRepository はインポート実行台帳の永続化インターフェース。
type ImportRunRepository interface {
	// Create はインポート実行レコードを作成する。
	Create(ctx context.Context, run *model.ImportRun) error

	// Update は実行レコードの状態・カウンタ・エラーログを更新する。
	Update(ctx context.Context, run *model.ImportRun) error

	// FindByID は指定IDの実行レコードを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.ImportRun, error)

	// ListByProgram は指定プログラムの実行履歴を開始日時降順で返す。
	ListByProgram(ctx context.Context, programID string) ([]*model.ImportRun, error)

	// ListAll は全プログラムの実行履歴をプログラム名付き・開始日時降順で返す。
	ListAll(ctx context.Context) ([]ImportRunWithProgram, error)

	// Delete は指定IDの実行レコードを削除する。
	// 対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id string) (bool, error)

	// MarkStaleAsFailed は閾値より古いPROCESSING状態の実行を一括でFAILEDに遷移させ、
	// 固定の説明メッセージをエラーログに記録する。遷移させた件数を返す。
	// クラッシュしたオーケストレーターが実行をPROCESSINGのまま残した場合の
	// 唯一の回復手段。
	MarkStaleAsFailed(ctx context.Context, olderThan time.Duration) (int64, error)
}
