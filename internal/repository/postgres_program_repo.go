package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/katalog/internal/model"
)

// PostgresProgramRepo はPostgreSQLを使用したアフィリエイトプログラムリポジトリ。
type PostgresProgramRepo struct {
	db *sql.DB
}

// NewPostgresProgramRepo はPostgresProgramRepoを生成する。
func NewPostgresProgramRepo(db *sql.DB) *PostgresProgramRepo {
	return &PostgresProgramRepo{db: db}
}

// FindByID は指定IDのプログラムを取得する。見つからない場合はnilを返す。
func (r *PostgresProgramRepo) FindByID(ctx context.Context, id string) (*model.AffiliateProgram, error) {
	program := &model.AffiliateProgram{}
	var restrictions sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, base_url, commission_rate, cookie_days, restrictions,
		        is_active, created_at, updated_at
		 FROM affiliate_programs WHERE id = $1`,
		id,
	).Scan(
		&program.ID, &program.Name, &program.BaseURL, &program.CommissionRate,
		&program.CookieDays, &restrictions, &program.IsActive,
		&program.CreatedAt, &program.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("アフィリエイトプログラムの取得に失敗しました: %w", err)
	}

	program.Restrictions = restrictions.String
	return program, nil
}

// ListActive は有効なプログラムの一覧を名前昇順で返す。
func (r *PostgresProgramRepo) ListActive(ctx context.Context) ([]*model.AffiliateProgram, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, base_url, commission_rate, cookie_days, restrictions,
		        is_active, created_at, updated_at
		 FROM affiliate_programs
		 WHERE is_active = TRUE
		 ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("アフィリエイトプログラム一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var programs []*model.AffiliateProgram
	for rows.Next() {
		program := &model.AffiliateProgram{}
		var restrictions sql.NullString
		if err := rows.Scan(
			&program.ID, &program.Name, &program.BaseURL, &program.CommissionRate,
			&program.CookieDays, &restrictions, &program.IsActive,
			&program.CreatedAt, &program.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("アフィリエイトプログラム行の読み取りに失敗しました: %w", err)
		}
		program.Restrictions = restrictions.String
		programs = append(programs, program)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("アフィリエイトプログラム一覧の走査に失敗しました: %w", err)
	}

	return programs, nil
}

// Create はプログラムを作成する。
func (r *PostgresProgramRepo) Create(ctx context.Context, program *model.AffiliateProgram) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO affiliate_programs
		   (id, name, base_url, commission_rate, cookie_days, restrictions,
		    is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)`,
		program.ID, program.Name, program.BaseURL, program.CommissionRate,
		program.CookieDays, program.Restrictions, program.IsActive,
		program.CreatedAt, program.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("アフィリエイトプログラムの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はプログラムの全フィールドを上書き更新する。
func (r *PostgresProgramRepo) Update(ctx context.Context, program *model.AffiliateProgram) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE affiliate_programs
		 SET name = $2, base_url = $3, commission_rate = $4, cookie_days = $5,
		     restrictions = NULLIF($6, ''), is_active = $7, updated_at = $8
		 WHERE id = $1`,
		program.ID, program.Name, program.BaseURL, program.CommissionRate,
		program.CookieDays, program.Restrictions, program.IsActive, program.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("アフィリエイトプログラムの更新に失敗しました: %w", err)
	}
	return nil
}
