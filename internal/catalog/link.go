// Package catalog は商品カタログの読み取りドメインロジックを提供する。
package catalog

import (
	"net/url"
	"strings"
)

// GenerateAffiliateLink はプログラムのベースURLと商品の元URLから
// アフィリエイトリンクを組み立てる。
// ベースURLにクエリがなければ"?"を補い、desturlパラメータに
// URLエンコードした元URLを付加する。ベースURLが不正な場合は元URLを返す。
func GenerateAffiliateLink(baseURL, originalURL string) string {
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return originalURL
	}

	cleanBase := baseURL
	if !strings.Contains(baseURL, "?") {
		cleanBase = baseURL + "?"
	}

	return cleanBase + "&desturl=" + url.QueryEscape(originalURL)
}
