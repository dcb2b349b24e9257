// Package model はドメインモデルを定義する。
package model

import "time"

// Product はアフィリエイトプログラムから取り込んだ商品を表す。
// (AffiliateProgramID, ExternalID) の組が商品の同一性キーとなる。
type Product struct {
	ID                 string
	AffiliateProgramID string
	ExternalID         string
	Name               string
	Description        string
	Price              float64
	SalePrice          *float64
	OriginalURL        string
	ImageURL           string
	Brand              string
	Model              string
	SKU                string
	EAN                string
	Availability       string
	Condition          string
	ShippingWeight     *float64
	CategoryID         *string
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Attributes []ProductAttribute
}

// ProductAttribute は商品に付随する追加属性（名前と値のペア）を表す。
// インポートのたびに全件入れ替えされる。
type ProductAttribute struct {
	ID        string
	ProductID string
	Name      string
	Value     string
}

// ParsedProduct はフィードパーサーが出力する未保存の正規化済み商品データを表す。
// ExternalIDまたはNameが空のレコードはパーサー内で破棄され、ここには到達しない。
type ParsedProduct struct {
	ExternalID     string
	Name           string
	Description    string
	Price          float64
	SalePrice      *float64
	OriginalURL    string
	ImageURL       string
	Brand          string
	Model          string
	SKU            string
	EAN            string
	Availability   string
	Condition      string
	ShippingWeight *float64
	CategoryPath   string
	Attributes     []ParsedAttribute
}

// ParsedAttribute はフィード由来の追加属性（名前と値のペア）を表す。
// 順序はフィード内の出現順を保持する。
type ParsedAttribute struct {
	Name  string
	Value string
}
