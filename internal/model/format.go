// Package model はドメインモデルを定義する。
package model

// FeedFormat はベンダーフィードのXML形式を表す。
type FeedFormat string

const (
	// FormatGoogleRSS はGoogle Merchant RSS形式（<item>コンテナ、g:名前空間タグ）。
	FormatGoogleRSS FeedFormat = "google_rss"
	// FormatShoptet はShoptetエクスポート形式（<SHOPITEM>コンテナ）。
	FormatShoptet FeedFormat = "shoptet"
)

// IsValid はサポート対象のフィード形式かどうかを返す。
func (f FeedFormat) IsValid() bool {
	switch f {
	case FormatGoogleRSS, FormatShoptet:
		return true
	}
	return false
}
