package feed

import (
	"strings"

	"github.com/hitoshi/katalog/internal/model"
)

// DetectFormat はフィード本文からXML形式を推定する。
// URLインポートのように形式が明示されない経路で使用する。
// 形式ごとの繰り返しコンテナタグの有無を判定に用いる:
//   - <SHOPITEM> が存在すればShoptet形式
//   - <item> が存在すればGoogle RSS形式
//
// どちらのコンテナも見つからない場合はokにfalseを返す。
func DetectFormat(content string) (model.FeedFormat, bool) {
	if strings.Contains(content, "<SHOPITEM>") {
		return model.FormatShoptet, true
	}
	if strings.Contains(content, "<item>") {
		return model.FormatGoogleRSS, true
	}
	return "", false
}
