// Package model はドメインモデルを定義する。
package model

import "time"

// ImportStatus はインポート実行の状態を表す。
type ImportStatus string

const (
	// ImportStatusPending は未着手のインポート。
	ImportStatusPending ImportStatus = "PENDING"
	// ImportStatusProcessing は処理中のインポート。
	ImportStatusProcessing ImportStatus = "PROCESSING"
	// ImportStatusCompleted は完了したインポート。レコード単位のエラーがあっても完了扱いとなる。
	ImportStatusCompleted ImportStatus = "COMPLETED"
	// ImportStatusFailed は失敗したインポート。
	ImportStatusFailed ImportStatus = "FAILED"
)

// StaleImportMessage は滞留インポートを強制失敗させる際に記録する固定メッセージ。
const StaleImportMessage = "Import timed out - automatically marked as failed"

// ImportRun は1つのフィードファイルを1つのアフィリエイトプログラムへ
// 取り込む1回の実行を表す台帳レコード。
// 作成時はPROCESSINGで、COMPLETEDまたはFAILEDの終端状態へちょうど1回遷移する。
// 終端状態以降の変更は滞留スイープによるFAILEDへの強制遷移のみ。
type ImportRun struct {
	ID                 string
	AffiliateProgramID string
	Format             FeedFormat
	FileName           string
	Status             ImportStatus
	RecordsProcessed   int
	RecordsSuccess     int
	RecordsError       int
	ErrorLog           string
	StartedAt          time.Time
	UpdatedAt          time.Time
}
