// Package category はベンダーのパンくずカテゴリの正規化と階層解決を提供する。
package category

import (
	"regexp"
	"strings"

	"github.com/hitoshi/katalog/internal/model"
)

// PathSeparator はパンくず文字列の階層区切り文字。
// （例: "VŠE PRO KONĚ A PONÍKY > ČIŠTĚNÍ KONĚ > Kosmetika pro koně"）
const PathSeparator = ">"

// ParsePath はベンダーのパンくず文字列を階層順のセグメント列に分解する。
// 各セグメントの前後空白を除去し、空のセグメントは破棄する。
func ParsePath(raw string) []string {
	var segments []string
	for _, segment := range strings.Split(raw, PathSeparator) {
		trimmed := strings.TrimSpace(segment)
		if trimmed == "" {
			continue
		}
		segments = append(segments, trimmed)
	}
	return segments
}

// slugDisallowed はスラグに残さない文字のパターン。
var slugDisallowed = regexp.MustCompile(`[^a-z0-9\s-]`)

// whitespaceRun は連続する空白文字のパターン。
var whitespaceRun = regexp.MustCompile(`\s+`)

// Slugify は表示名からURLセーフな識別子を導出する。
// 小文字化し、[a-z0-9\s-]以外を除去し、空白の連続を単一のハイフンに置換する。
// スラグはカテゴリの同一性キーであり、表記揺れ（大文字小文字・記号）の違う
// パンくずはここで同一スラグに収束する。
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = slugDisallowed.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = whitespaceRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// BuildTree はフラットなカテゴリ一覧から階層ツリー（フォレスト）を構築する。
// 親が一覧に存在しないカテゴリはルートとして扱う。
func BuildTree(categories []*model.Category) []*model.CategoryTree {
	nodes := make(map[string]*model.CategoryTree, len(categories))
	for _, cat := range categories {
		nodes[cat.ID] = &model.CategoryTree{
			ID:       cat.ID,
			Name:     cat.Name,
			Slug:     cat.Slug,
			Children: []*model.CategoryTree{},
		}
	}

	var roots []*model.CategoryTree
	for _, cat := range categories {
		node := nodes[cat.ID]
		if cat.ParentID != nil {
			if parent, ok := nodes[*cat.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}
