package category

import (
	"context"
	"fmt"

	"github.com/hitoshi/katalog/internal/repository"
)

// Resolver はパンくずセグメント列を永続カテゴリ階層に解決する。
type Resolver struct {
	categoryRepo repository.CategoryRepository
}

// NewResolver はResolverの新しいインスタンスを生成する。
func NewResolver(categoryRepo repository.CategoryRepository) *Resolver {
	return &Resolver{
		categoryRepo: categoryRepo,
	}
}

// ResolveHierarchy はセグメント列を階層順に辿り、各セグメントのスラグで
// find-or-createを行いながら直前のノードIDをparentIdとして引き継ぐ。
// 末端（最深）ノードのIDを返す。セグメント列が空の場合はnilを返す。
//
// この畳み込みはセグメント間でトランザクションを張らない。途中で失敗した場合、
// 先頭N個のノードだけが永続化された部分チェーンが残るが、処理は冪等であり
// 再実行で同じスラグに収束してチェーンが自己修復される。
func (r *Resolver) ResolveHierarchy(ctx context.Context, segments []string) (*string, error) {
	var parentID *string

	for _, name := range segments {
		slug := Slugify(name)

		cat, err := r.categoryRepo.FindOrCreateBySlug(ctx, name, slug, parentID)
		if err != nil {
			return nil, fmt.Errorf("カテゴリの解決に失敗しました (%s): %w", name, err)
		}

		id := cat.ID
		parentID = &id
	}

	return parentID, nil
}
