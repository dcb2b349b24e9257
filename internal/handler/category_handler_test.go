package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/katalog/internal/model"
)

// mockCategoryLister はテスト用のCategoryListerInterfaceモック。
type mockCategoryLister struct {
	categories []*model.Category
}

func (m *mockCategoryLister) ListActive(_ context.Context) ([]*model.Category, error) {
	return m.categories, nil
}

func categoryFixtures() []*model.Category {
	rootID := "cat-root"
	return []*model.Category{
		{ID: rootID, Name: "Zahrada", Slug: "zahrada"},
		{ID: "cat-child", Name: "Hadice", Slug: "hadice", ParentID: &rootID},
	}
}

// TestListCategories_Flat はフラット一覧の取得をテストする。
func TestListCategories_Flat(t *testing.T) {
	h := NewCategoryHandler(&mockCategoryLister{categories: categoryFixtures()})

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()

	h.ListCategories(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response decode failed: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len(resp) = %d, want 2", len(resp))
	}
	if resp[0]["slug"] != "zahrada" {
		t.Errorf("slug = %v, want zahrada", resp[0]["slug"])
	}
	if resp[1]["parentId"] != "cat-root" {
		t.Errorf("parentId = %v, want cat-root", resp[1]["parentId"])
	}
}

// TestListCategories_Tree はtree=true指定時の階層ツリー応答をテストする。
func TestListCategories_Tree(t *testing.T) {
	h := NewCategoryHandler(&mockCategoryLister{categories: categoryFixtures()})

	req := httptest.NewRequest(http.MethodGet, "/api/categories?tree=true", nil)
	rec := httptest.NewRecorder()

	h.ListCategories(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp []struct {
		Slug     string `json:"slug"`
		Children []struct {
			Slug string `json:"slug"`
		} `json:"children"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response decode failed: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("len(roots) = %d, want 1", len(resp))
	}
	if resp[0].Slug != "zahrada" {
		t.Errorf("root slug = %q, want zahrada", resp[0].Slug)
	}
	if len(resp[0].Children) != 1 || resp[0].Children[0].Slug != "hadice" {
		t.Errorf("children = %+v", resp[0].Children)
	}
}
