// Package model はドメインモデルを定義する。
package model

import "time"

// Category はスラグを同一性キーとする階層カテゴリを表す。
// ParentIDがnilの場合はルートカテゴリ。parent_idの自己参照によりフォレストを構成する。
// 異なるパンくず文字列でもスラグが一致すれば同一ノードに収束する（重複排除の仕組み）。
type Category struct {
	ID        string
	Name      string
	Slug      string
	ParentID  *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategoryTree はカテゴリ階層のツリー表現。API応答の構築に使用する。
type CategoryTree struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Children []*CategoryTree `json:"children"`
}
