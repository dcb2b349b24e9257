package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/katalog/internal/model"
	"github.com/hitoshi/katalog/internal/program"
)

// ProgramServiceInterface はプログラムハンドラーが必要とするサービスインターフェース。
type ProgramServiceInterface interface {
	// ListPrograms は有効なプログラムの一覧を返す。
	ListPrograms(ctx context.Context) ([]*model.AffiliateProgram, error)
	// CreateProgram は新しいプログラムを作成する。
	CreateProgram(ctx context.Context, params program.Params) (*model.AffiliateProgram, error)
	// UpdateProgram は既存プログラムを更新する。
	UpdateProgram(ctx context.Context, id string, params program.Params) (*model.AffiliateProgram, error)
}

// ProgramHandler はアフィリエイトプログラム管理のHTTPハンドラー。
type ProgramHandler struct {
	service ProgramServiceInterface
}

// NewProgramHandler はProgramHandlerを生成する。
func NewProgramHandler(service ProgramServiceInterface) *ProgramHandler {
	return &ProgramHandler{service: service}
}

// programRequest はプログラム作成・更新リクエストのボディ。
// 0が正当な値になり得る数値項目はポインタで未指定と区別する。
type programRequest struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	BaseURL        string   `json:"baseUrl"`
	CommissionRate *float64 `json:"commissionRate"`
	CookieDays     *int     `json:"cookieDays"`
	Restrictions   string   `json:"restrictions"`
}

// programResponse はプログラム情報のAPIレスポンス。
type programResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BaseURL        string    `json:"baseUrl"`
	CommissionRate float64   `json:"commissionRate"`
	CookieDays     int       `json:"cookieDays"`
	Restrictions   string    `json:"restrictions,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ListPrograms はプログラム一覧を取得する。
// GET /api/affiliate-programs
func (h *ProgramHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.service.ListPrograms(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]programResponse, 0, len(programs))
	for _, p := range programs {
		responses = append(responses, toProgramResponse(p))
	}

	writeJSON(w, http.StatusOK, responses)
}

// CreateProgram は新しいプログラムを作成する。
// POST /api/affiliate-programs
func (h *ProgramHandler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	var req programRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	created, err := h.service.CreateProgram(r.Context(), toProgramParams(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProgramResponse(created))
}

// UpdateProgram は既存プログラムを更新する。
// PUT /api/affiliate-programs
func (h *ProgramHandler) UpdateProgram(w http.ResponseWriter, r *http.Request) {
	var req programRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	updated, err := h.service.UpdateProgram(r.Context(), req.ID, toProgramParams(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgramResponse(updated))
}

// toProgramParams はリクエストボディからサービス入力に変換する。
func toProgramParams(req programRequest) program.Params {
	return program.Params{
		Name:           req.Name,
		BaseURL:        req.BaseURL,
		CommissionRate: req.CommissionRate,
		CookieDays:     req.CookieDays,
		Restrictions:   req.Restrictions,
	}
}

// toProgramResponse はmodel.AffiliateProgramからAPIレスポンスに変換する。
func toProgramResponse(p *model.AffiliateProgram) programResponse {
	return programResponse{
		ID:             p.ID,
		Name:           p.Name,
		BaseURL:        p.BaseURL,
		CommissionRate: p.CommissionRate,
		CookieDays:     p.CookieDays,
		Restrictions:   p.Restrictions,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
