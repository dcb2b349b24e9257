package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/katalog/internal/model"
)

// PostgresImportRepo はPostgreSQLを使用したインポート実行台帳リポジトリ。
type PostgresImportRepo struct {
	db *sql.DB
}

// NewPostgresImportRepo はPostgresImportRepoを生成する。
func NewPostgresImportRepo(db *sql.DB) *PostgresImportRepo {
	return &PostgresImportRepo{db: db}
}

// Create はインポート実行レコードを作成する。
func (r *PostgresImportRepo) Create(ctx context.Context, run *model.ImportRun) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO product_imports
		   (id, affiliate_program_id, xml_format, file_name, status,
		    records_processed, records_success, records_error, error_log,
		    started_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11)`,
		run.ID, run.AffiliateProgramID, string(run.Format), run.FileName,
		string(run.Status), run.RecordsProcessed, run.RecordsSuccess,
		run.RecordsError, run.ErrorLog, run.StartedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("インポート実行レコードの作成に失敗しました: %w", err)
	}
	return nil
}

// Update は実行レコードの状態・カウンタ・エラーログを更新する。
func (r *PostgresImportRepo) Update(ctx context.Context, run *model.ImportRun) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE product_imports
		 SET status = $2, records_processed = $3, records_success = $4,
		     records_error = $5, error_log = NULLIF($6, ''), updated_at = $7
		 WHERE id = $1`,
		run.ID, string(run.Status), run.RecordsProcessed, run.RecordsSuccess,
		run.RecordsError, run.ErrorLog, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("インポート実行レコードの更新に失敗しました: %w", err)
	}
	return nil
}

// importRunColumns はインポート実行選択クエリの共通カラムリスト。
const importRunColumns = `id, affiliate_program_id, xml_format, file_name, status,
	       records_processed, records_success, records_error, error_log,
	       started_at, updated_at`

// scanImportRun はインポート実行行をスキャンする。
func scanImportRun(scanner interface{ Scan(...any) error }, run *model.ImportRun) error {
	var errorLog sql.NullString
	var format, status string

	err := scanner.Scan(
		&run.ID, &run.AffiliateProgramID, &format, &run.FileName, &status,
		&run.RecordsProcessed, &run.RecordsSuccess, &run.RecordsError, &errorLog,
		&run.StartedAt, &run.UpdatedAt,
	)
	if err != nil {
		return err
	}

	run.Format = model.FeedFormat(format)
	run.Status = model.ImportStatus(status)
	run.ErrorLog = errorLog.String
	return nil
}

// FindByID は指定IDの実行レコードを取得する。見つからない場合はnilを返す。
func (r *PostgresImportRepo) FindByID(ctx context.Context, id string) (*model.ImportRun, error) {
	run := &model.ImportRun{}
	err := scanImportRun(r.db.QueryRowContext(ctx,
		`SELECT `+importRunColumns+` FROM product_imports WHERE id = $1`,
		id,
	), run)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("インポート実行レコードの取得に失敗しました: %w", err)
	}

	return run, nil
}

// ListByProgram は指定プログラムの実行履歴を開始日時降順で返す。
func (r *PostgresImportRepo) ListByProgram(ctx context.Context, programID string) ([]*model.ImportRun, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+importRunColumns+`
		 FROM product_imports
		 WHERE affiliate_program_id = $1
		 ORDER BY started_at DESC`,
		programID,
	)
	if err != nil {
		return nil, fmt.Errorf("インポート履歴の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var runs []*model.ImportRun
	for rows.Next() {
		run := &model.ImportRun{}
		if err := scanImportRun(rows, run); err != nil {
			return nil, fmt.Errorf("インポート実行行の読み取りに失敗しました: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("インポート履歴の走査に失敗しました: %w", err)
	}

	return runs, nil
}

// ListAll は全プログラムの実行履歴をプログラム名付き・開始日時降順で返す。
func (r *PostgresImportRepo) ListAll(ctx context.Context) ([]ImportRunWithProgram, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT pi.id, pi.affiliate_program_id, pi.xml_format, pi.file_name, pi.status,
		        pi.records_processed, pi.records_success, pi.records_error, pi.error_log,
		        pi.started_at, pi.updated_at, ap.name
		 FROM product_imports pi
		 JOIN affiliate_programs ap ON ap.id = pi.affiliate_program_id
		 ORDER BY pi.started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("インポート履歴の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var runs []ImportRunWithProgram
	for rows.Next() {
		var row ImportRunWithProgram
		var errorLog sql.NullString
		var format, status string
		if err := rows.Scan(
			&row.ID, &row.AffiliateProgramID, &format, &row.FileName, &status,
			&row.RecordsProcessed, &row.RecordsSuccess, &row.RecordsError, &errorLog,
			&row.StartedAt, &row.UpdatedAt, &row.ProgramName,
		); err != nil {
			return nil, fmt.Errorf("インポート実行行の読み取りに失敗しました: %w", err)
		}
		row.Format = model.FeedFormat(format)
		row.Status = model.ImportStatus(status)
		row.ErrorLog = errorLog.String
		runs = append(runs, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("インポート履歴の走査に失敗しました: %w", err)
	}

	return runs, nil
}

// Delete は指定IDの実行レコードを削除する。対象が存在しない場合はfalseを返す。
func (r *PostgresImportRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM product_imports WHERE id = $1`, id,
	)
	if err != nil {
		return false, fmt.Errorf("インポート実行レコードの削除に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}

	return affected > 0, nil
}

// MarkStaleAsFailed は閾値より古いPROCESSING状態の実行を一括でFAILEDに遷移させる。
// 終端状態に到達済みの実行には影響しない。遷移させた件数を返す。
func (r *PostgresImportRepo) MarkStaleAsFailed(ctx context.Context, olderThan time.Duration) (int64, error) {
	interval := fmt.Sprintf("%d seconds", int64(olderThan.Seconds()))

	result, err := r.db.ExecContext(ctx,
		`UPDATE product_imports
		 SET status = $1, error_log = $2, updated_at = now()
		 WHERE status = $3 AND started_at < now() - $4::interval`,
		string(model.ImportStatusFailed), model.StaleImportMessage,
		string(model.ImportStatusProcessing), interval,
	)
	if err != nil {
		return 0, fmt.Errorf("滞留インポートの一括更新に失敗しました: %w", err)
	}

	marked, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("更新件数の取得に失敗しました: %w", err)
	}

	return marked, nil
}
