// Package program はアフィリエイトプログラムの管理機能を提供する。
package program

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/katalog/internal/model"
	"github.com/hitoshi/katalog/internal/repository"
)

// Params はプログラム作成・更新の入力。
// CommissionRateとCookieDaysは0が正当な値になり得るため、
// 未指定との区別にポインタを使用する。
type Params struct {
	Name           string
	BaseURL        string
	CommissionRate *float64
	CookieDays     *int
	Restrictions   string
}

// Service はアフィリエイトプログラムの管理サービス。
type Service struct {
	programRepo repository.AffiliateProgramRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(programRepo repository.AffiliateProgramRepository) *Service {
	return &Service{programRepo: programRepo}
}

// ListPrograms は有効なプログラムの一覧を返す。
func (s *Service) ListPrograms(ctx context.Context) ([]*model.AffiliateProgram, error) {
	programs, err := s.programRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("アフィリエイトプログラム一覧の取得に失敗しました: %w", err)
	}
	return programs, nil
}

// CreateProgram は新しいプログラムを作成して返す。
func (s *Service) CreateProgram(ctx context.Context, params Params) (*model.AffiliateProgram, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	now := time.Now()
	program := &model.AffiliateProgram{
		ID:             uuid.New().String(),
		Name:           params.Name,
		BaseURL:        params.BaseURL,
		CommissionRate: *params.CommissionRate,
		CookieDays:     *params.CookieDays,
		Restrictions:   params.Restrictions,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.programRepo.Create(ctx, program); err != nil {
		return nil, fmt.Errorf("アフィリエイトプログラムの作成に失敗しました: %w", err)
	}

	return program, nil
}

// UpdateProgram は既存プログラムを上書き更新して返す。
func (s *Service) UpdateProgram(ctx context.Context, id string, params Params) (*model.AffiliateProgram, error) {
	if id == "" {
		return nil, model.NewInvalidRequestError("idが指定されていません")
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}

	program, err := s.programRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("アフィリエイトプログラムの取得に失敗しました: %w", err)
	}
	if program == nil {
		return nil, model.NewProgramNotFoundError(id)
	}

	program.Name = params.Name
	program.BaseURL = params.BaseURL
	program.CommissionRate = *params.CommissionRate
	program.CookieDays = *params.CookieDays
	program.Restrictions = params.Restrictions
	program.UpdatedAt = time.Now()

	if err := s.programRepo.Update(ctx, program); err != nil {
		return nil, fmt.Errorf("アフィリエイトプログラムの更新に失敗しました: %w", err)
	}

	return program, nil
}

// validateParams は必須項目の存在を検証する。
func validateParams(params Params) error {
	var missing []string
	if params.Name == "" {
		missing = append(missing, "name")
	}
	if params.BaseURL == "" {
		missing = append(missing, "baseUrl")
	}
	if params.CommissionRate == nil {
		missing = append(missing, "commissionRate")
	}
	if params.CookieDays == nil {
		missing = append(missing, "cookieDays")
	}
	if len(missing) > 0 {
		return model.NewInvalidRequestError(fmt.Sprintf("必須項目が不足しています: %v", missing))
	}
	return nil
}
