// Package model はドメインモデルを定義する。
package model

import "time"

// AffiliateProgram は提携先マーチャントとの契約を表す。
// 商品とインポート実行はいずれかのプログラムに属する。
type AffiliateProgram struct {
	ID             string
	Name           string
	BaseURL        string
	CommissionRate float64
	CookieDays     int
	Restrictions   string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
