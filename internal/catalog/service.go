package catalog

import (
	"context"
	"fmt"

	"github.com/hitoshi/katalog/internal/model"
	"github.com/hitoshi/katalog/internal/repository"
	"github.com/hitoshi/katalog/internal/security"
)

// ListParams は商品一覧の検索・ページネーション条件。
type ListParams struct {
	Page       int
	Limit      int
	Search     string
	CategoryID string
	Brand      string
	MinPrice   *float64
	MaxPrice   *float64
}

// ProductView はAPI応答用の商品ビュー。
// 説明はサニタイズ済み、アフィリエイトリンクは組み立て済み。
type ProductView struct {
	repository.ProductWithProgram
	AffiliateLink string
}

// ProductPage は商品一覧とページネーション情報。
type ProductPage struct {
	Products   []ProductView
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// Service は商品カタログの読み取りサービス。
type Service struct {
	productRepo repository.ProductRepository
	sanitizer   security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(productRepo repository.ProductRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		productRepo: productRepo,
		sanitizer:   sanitizer,
	}
}

// ListProducts は検索条件に合致する商品のページを返す。
// 条件の値域検証に失敗した場合はAPIErrorを返す。
func (s *Service) ListProducts(ctx context.Context, params ListParams) (*ProductPage, error) {
	if params.Page < 1 {
		return nil, model.NewInvalidPaginationError("pageは1以上で指定してください")
	}
	if params.Limit < 1 || params.Limit > 100 {
		return nil, model.NewInvalidPaginationError("limitは1から100の範囲で指定してください")
	}
	if params.MinPrice != nil && *params.MinPrice < 0 {
		return nil, model.NewInvalidPriceRangeError("minPriceは非負の数値で指定してください")
	}
	if params.MaxPrice != nil && *params.MaxPrice < 0 {
		return nil, model.NewInvalidPriceRangeError("maxPriceは非負の数値で指定してください")
	}
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MinPrice > *params.MaxPrice {
		return nil, model.NewInvalidPriceRangeError("minPriceはmaxPrice以下で指定してください")
	}

	filter := repository.ProductFilter{
		Search:     params.Search,
		CategoryID: params.CategoryID,
		Brand:      params.Brand,
		MinPrice:   params.MinPrice,
		MaxPrice:   params.MaxPrice,
		Offset:     (params.Page - 1) * params.Limit,
		Limit:      params.Limit,
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("商品一覧の取得に失敗しました: %w", err)
	}

	views := make([]ProductView, 0, len(products))
	for _, product := range products {
		views = append(views, s.toView(product))
	}

	totalPages := (total + params.Limit - 1) / params.Limit

	return &ProductPage{
		Products:   views,
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// GetProduct は指定IDの商品ビューを属性付きで返す。
func (s *Service) GetProduct(ctx context.Context, id string) (*ProductView, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFoundError(id)
	}

	view := s.toView(*product)
	return &view, nil
}

// toView は商品行をAPI応答用ビューに変換する。
// 説明はDBに原文のまま保存されているため、ここでサニタイズする。
func (s *Service) toView(product repository.ProductWithProgram) ProductView {
	product.Description = s.sanitizer.Sanitize(product.Description)
	return ProductView{
		ProductWithProgram: product,
		AffiliateLink:      GenerateAffiliateLink(product.ProgramBaseURL, product.OriginalURL),
	}
}
