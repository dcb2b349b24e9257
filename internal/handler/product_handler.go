package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/katalog/internal/catalog"
	"github.com/hitoshi/katalog/internal/model"
)

// CatalogServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	// ListProducts は検索条件に合致する商品のページを返す。
	ListProducts(ctx context.Context, params catalog.ListParams) (*catalog.ProductPage, error)
	// GetProduct は指定IDの商品を属性付きで返す。
	GetProduct(ctx context.Context, id string) (*catalog.ProductView, error)
}

// ProductHandler は商品カタログのHTTPハンドラー。
type ProductHandler struct {
	service CatalogServiceInterface
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service CatalogServiceInterface) *ProductHandler {
	return &ProductHandler{service: service}
}

// productAttributeResponse は商品属性のAPIレスポンス。
type productAttributeResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// productResponse は商品情報のAPIレスポンス。
type productResponse struct {
	ID                 string                     `json:"id"`
	AffiliateProgramID string                     `json:"affiliateProgramId"`
	ProgramName        string                     `json:"programName"`
	ExternalID         string                     `json:"externalId"`
	Name               string                     `json:"name"`
	Description        string                     `json:"description"`
	Price              float64                    `json:"price"`
	SalePrice          *float64                   `json:"salePrice,omitempty"`
	AffiliateLink      string                     `json:"affiliateLink"`
	ImageURL           string                     `json:"imageUrl"`
	Brand              string                     `json:"brand"`
	Model              string                     `json:"model"`
	SKU                string                     `json:"sku"`
	EAN                string                     `json:"ean"`
	Availability       string                     `json:"availability"`
	Condition          string                     `json:"condition"`
	ShippingWeight     *float64                   `json:"shippingWeight,omitempty"`
	CategoryID         *string                    `json:"categoryId"`
	UpdatedAt          time.Time                  `json:"updatedAt"`
	Attributes         []productAttributeResponse `json:"attributes,omitempty"`
}

// paginationResponse はページネーション情報のAPIレスポンス。
type paginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// productListResponse は商品一覧のAPIレスポンス。
type productListResponse struct {
	Products   []productResponse  `json:"products"`
	Pagination paginationResponse `json:"pagination"`
}

// ListProducts は商品一覧を検索条件付きで取得する。
// GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := catalog.ListParams{
		Page:       1,
		Limit:      20,
		Search:     query.Get("search"),
		CategoryID: query.Get("categoryId"),
		Brand:      query.Get("brand"),
	}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidPaginationError("pageは整数で指定してください"))
			return
		}
		params.Page = page
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidPaginationError("limitは整数で指定してください"))
			return
		}
		params.Limit = limit
	}

	if raw := query.Get("minPrice"); raw != "" {
		minPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidPriceRangeError("minPriceは数値で指定してください"))
			return
		}
		params.MinPrice = &minPrice
	}

	if raw := query.Get("maxPrice"); raw != "" {
		maxPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidPriceRangeError("maxPriceは数値で指定してください"))
			return
		}
		params.MaxPrice = &maxPrice
	}

	page, err := h.service.ListProducts(r.Context(), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	products := make([]productResponse, 0, len(page.Products))
	for _, view := range page.Products {
		products = append(products, toProductResponse(view))
	}

	writeJSON(w, http.StatusOK, productListResponse{
		Products: products,
		Pagination: paginationResponse{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	})
}

// GetProduct は商品詳細を属性付きで取得する。
// GET /api/products/:id
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	view, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(*view))
}

// toProductResponse はcatalog.ProductViewからAPIレスポンスに変換する。
func toProductResponse(view catalog.ProductView) productResponse {
	attrs := make([]productAttributeResponse, 0, len(view.Attributes))
	for _, attr := range view.Attributes {
		attrs = append(attrs, productAttributeResponse{
			Name:  attr.Name,
			Value: attr.Value,
		})
	}

	return productResponse{
		ID:                 view.ID,
		AffiliateProgramID: view.AffiliateProgramID,
		ProgramName:        view.ProgramName,
		ExternalID:         view.ExternalID,
		Name:               view.Name,
		Description:        view.Description,
		Price:              view.Price,
		SalePrice:          view.SalePrice,
		AffiliateLink:      view.AffiliateLink,
		ImageURL:           view.ImageURL,
		Brand:              view.Brand,
		Model:              view.Model,
		SKU:                view.SKU,
		EAN:                view.EAN,
		Availability:       view.Availability,
		Condition:          view.Condition,
		ShippingWeight:     view.ShippingWeight,
		CategoryID:         view.CategoryID,
		UpdatedAt:          view.UpdatedAt,
		Attributes:         attrs,
	}
}
