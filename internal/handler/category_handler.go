package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/katalog/internal/category"
	"github.com/hitoshi/katalog/internal/model"
)

// CategoryListerInterface はカテゴリハンドラーが必要とする参照インターフェース。
type CategoryListerInterface interface {
	// ListActive は有効なカテゴリの一覧を返す。
	ListActive(ctx context.Context) ([]*model.Category, error)
}

// CategoryHandler はカテゴリのHTTPハンドラー。
type CategoryHandler struct {
	lister CategoryListerInterface
}

// NewCategoryHandler はCategoryHandlerを生成する。
func NewCategoryHandler(lister CategoryListerInterface) *CategoryHandler {
	return &CategoryHandler{lister: lister}
}

// categoryResponse はカテゴリ1件のAPIレスポンス。
type categoryResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parentId"`
}

// ListCategories はカテゴリ一覧を取得する。
// GET /api/categories
//
// tree=trueを指定すると、フラットな一覧の代わりにparent_idから
// メモリ上で組み立てた階層ツリーを返す。
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.lister.ListActive(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if r.URL.Query().Get("tree") == "true" {
		writeJSON(w, http.StatusOK, category.BuildTree(categories))
		return
	}

	responses := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		responses = append(responses, categoryResponse{
			ID:       cat.ID,
			Name:     cat.Name,
			Slug:     cat.Slug,
			ParentID: cat.ParentID,
		})
	}

	writeJSON(w, http.StatusOK, responses)
}
