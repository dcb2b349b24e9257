package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/katalog/internal/model"
)

// PostgresCategoryRepo はPostgreSQLを使用したカテゴリリポジトリ。
type PostgresCategoryRepo struct {
	db *sql.DB
}

// NewPostgresCategoryRepo はPostgresCategoryRepoを生成する。
func NewPostgresCategoryRepo(db *sql.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{db: db}
}

// FindOrCreateBySlug はスラグをキーにカテゴリをfind-or-createする。
// INSERT ... ON CONFLICT の無変更更新でRETURNINGを効かせ、新規・既存の
// どちらでも1クエリで行を返す。既存行のnameとparent_idは上書きしない。
// 並行する同一スラグのcreate競合はスラグの一意インデックスで単一行に収束する。
func (r *PostgresCategoryRepo) FindOrCreateBySlug(ctx context.Context, name, slug string, parentID *string) (*model.Category, error) {
	now := time.Now()
	cat := &model.Category{}
	var parent sql.NullString

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (id, name, slug, parent_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, TRUE, $5, $5)
		 ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		 RETURNING id, name, slug, parent_id, is_active, created_at, updated_at`,
		uuid.New().String(), name, slug, parentID, now,
	).Scan(
		&cat.ID, &cat.Name, &cat.Slug, &parent, &cat.IsActive,
		&cat.CreatedAt, &cat.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("カテゴリのfind-or-createに失敗しました: %w", err)
	}

	if parent.Valid {
		pid := parent.String
		cat.ParentID = &pid
	}
	return cat, nil
}

// ListActive は有効なカテゴリの一覧を名前昇順で返す。
func (r *PostgresCategoryRepo) ListActive(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, slug, parent_id, is_active, created_at, updated_at
		 FROM categories
		 WHERE is_active = TRUE
		 ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		cat := &model.Category{}
		var parent sql.NullString
		if err := rows.Scan(
			&cat.ID, &cat.Name, &cat.Slug, &parent, &cat.IsActive,
			&cat.CreatedAt, &cat.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("カテゴリ行の読み取りに失敗しました: %w", err)
		}
		if parent.Valid {
			parentID := parent.String
			cat.ParentID = &parentID
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の走査に失敗しました: %w", err)
	}

	return categories, nil
}
