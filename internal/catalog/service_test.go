package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/katalog/internal/model"
	"github.com/hitoshi/katalog/internal/repository"
)

// --- テスト用モック ---

// mockProductRepo はテスト用のProductRepositoryモック。
type mockProductRepo struct {
	products   []repository.ProductWithProgram
	total      int
	lastFilter repository.ProductFilter
	listErr    error
	byID       map[string]*repository.ProductWithProgram
}

func (m *mockProductRepo) Upsert(_ context.Context, _ *model.Product) (string, error) {
	return "", nil
}

func (m *mockProductRepo) FindByID(_ context.Context, id string) (*repository.ProductWithProgram, error) {
	product, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return product, nil
}

func (m *mockProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]repository.ProductWithProgram, int, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.products, m.total, nil
}

func (m *mockProductRepo) CountByExternalID(_ context.Context, _, _ string) (int, error) {
	return 0, nil
}

// mockSanitizer はテスト用のContentSanitizerServiceモック。
type mockSanitizer struct {
	sanitizeCalls int
}

func (m *mockSanitizer) Sanitize(rawHTML string) string {
	m.sanitizeCalls++
	if rawHTML == "" {
		return ""
	}
	return "[sanitized]" + rawHTML
}

func sampleProduct() repository.ProductWithProgram {
	return repository.ProductWithProgram{
		Product: model.Product{
			ID:          "prod-1",
			ExternalID:  "GH-111",
			Name:        "Zahradní hadice",
			Description: "<script>alert(1)</script><p>popis</p>",
			Price:       581,
			OriginalURL: "https://shop.example.com/p/gh-111",
		},
		ProgramName:    "Example Partner",
		ProgramBaseURL: "https://partner.example.com/track?aff=42",
	}
}

// --- 一覧テスト ---

// TestListProducts はページネーションとビュー変換をテストする。
func TestListProducts(t *testing.T) {
	repo := &mockProductRepo{
		products: []repository.ProductWithProgram{sampleProduct()},
		total:    45,
	}
	sanitizer := &mockSanitizer{}
	svc := NewService(repo, sanitizer)

	page, err := svc.ListProducts(context.Background(), ListParams{Page: 2, Limit: 20})
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}

	if page.Total != 45 {
		t.Errorf("Total = %d, want 45", page.Total)
	}
	if page.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", page.TotalPages)
	}
	// オフセットは (page-1)*limit で計算される
	if repo.lastFilter.Offset != 20 {
		t.Errorf("Offset = %d, want 20", repo.lastFilter.Offset)
	}

	if len(page.Products) != 1 {
		t.Fatalf("len(Products) = %d, want 1", len(page.Products))
	}
	view := page.Products[0]

	// 説明は読み出し時にサニタイズされる
	if sanitizer.sanitizeCalls != 1 {
		t.Errorf("sanitizeCalls = %d, want 1", sanitizer.sanitizeCalls)
	}
	if view.Description != "[sanitized]<script>alert(1)</script><p>popis</p>" {
		t.Errorf("Description = %q", view.Description)
	}

	// アフィリエイトリンクが組み立てられる
	want := "https://partner.example.com/track?aff=42&desturl=https%3A%2F%2Fshop.example.com%2Fp%2Fgh-111"
	if view.AffiliateLink != want {
		t.Errorf("AffiliateLink = %q, want %q", view.AffiliateLink, want)
	}
}

// TestListProducts_Validation は検索条件の値域検証をテストする。
func TestListProducts_Validation(t *testing.T) {
	negative := -1.0
	low := 10.0
	high := 100.0

	tests := []struct {
		name     string
		params   ListParams
		wantCode string
	}{
		{"page0", ListParams{Page: 0, Limit: 20}, model.ErrCodeInvalidPagination},
		{"limit0", ListParams{Page: 1, Limit: 0}, model.ErrCodeInvalidPagination},
		{"limit超過", ListParams{Page: 1, Limit: 101}, model.ErrCodeInvalidPagination},
		{"負のminPrice", ListParams{Page: 1, Limit: 20, MinPrice: &negative}, model.ErrCodeInvalidPriceRange},
		{"負のmaxPrice", ListParams{Page: 1, Limit: 20, MaxPrice: &negative}, model.ErrCodeInvalidPriceRange},
		{"min>max", ListParams{Page: 1, Limit: 20, MinPrice: &high, MaxPrice: &low}, model.ErrCodeInvalidPriceRange},
	}

	svc := NewService(&mockProductRepo{}, &mockSanitizer{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListProducts(context.Background(), tt.params)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != tt.wantCode {
				t.Errorf("error = %v, want code %q", err, tt.wantCode)
			}
		})
	}
}

// TestListProducts_RepoError はストレージ層の失敗が伝播することをテストする。
func TestListProducts_RepoError(t *testing.T) {
	repo := &mockProductRepo{listErr: errors.New("db down")}
	svc := NewService(repo, &mockSanitizer{})

	if _, err := svc.ListProducts(context.Background(), ListParams{Page: 1, Limit: 20}); err == nil {
		t.Fatal("ListProducts returned nil error, want failure")
	}
}

// --- 詳細テスト ---

// TestGetProduct は商品詳細の取得とビュー変換をテストする。
func TestGetProduct(t *testing.T) {
	product := sampleProduct()
	repo := &mockProductRepo{
		byID: map[string]*repository.ProductWithProgram{"prod-1": &product},
	}
	sanitizer := &mockSanitizer{}
	svc := NewService(repo, sanitizer)

	view, err := svc.GetProduct(context.Background(), "prod-1")
	if err != nil {
		t.Fatalf("GetProduct returned error: %v", err)
	}
	if view.ID != "prod-1" {
		t.Errorf("ID = %q, want %q", view.ID, "prod-1")
	}
	if sanitizer.sanitizeCalls != 1 {
		t.Errorf("sanitizeCalls = %d, want 1", sanitizer.sanitizeCalls)
	}
	if view.AffiliateLink == "" {
		t.Error("AffiliateLink is empty")
	}
}

// TestGetProduct_NotFound は未知のIDでPRODUCT_NOT_FOUNDが返ることをテストする。
func TestGetProduct_NotFound(t *testing.T) {
	svc := NewService(&mockProductRepo{}, &mockSanitizer{})

	_, err := svc.GetProduct(context.Background(), "prod-missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProductNotFound {
		t.Errorf("error = %v, want PRODUCT_NOT_FOUND", err)
	}
}
