// Package feed はベンダーフィードの解析と正規化を提供する。
//
// パーサーはXMLドキュメントツリーを構築せず、形式ごとの繰り返しコンテナタグ
// （<item> / <SHOPITEM>）を不透明なテキストブロックとして切り出し、
// ブロック内からタグ名ごとに最初の一致をフィールド単位で抽出する。
// この方式はエンコーディング差異や任意タグの欠落、未宣言のg:名前空間に寛容である一方、
// 同名タグの入れ子は正しく扱えない（既知の制限）。
package feed

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/hitoshi/katalog/internal/model"
)

// Parse は生のフィードテキストを指定形式で解析し、正規化済み商品列を返す。
// サポート外の形式の場合は走査を行わずにエラーを返す。
// ExternalIDまたはNameを欠くレコードは黙って破棄される（エラーには数えない）。
// 1ブロックの解析中に発生したpanicはそのレコードのみをスキップし、解析を続行する。
func Parse(content string, format model.FeedFormat) ([]model.ParsedProduct, error) {
	switch format {
	case model.FormatGoogleRSS:
		return parseGoogleRSS(content), nil
	case model.FormatShoptet:
		return parseShoptet(content), nil
	default:
		return nil, model.NewUnsupportedFormatError(string(format))
	}
}

// googleItemPattern はGoogle RSS形式の商品コンテナを切り出すパターン。
// コンテナタグの照合は大文字小文字を区別する。
var googleItemPattern = regexp.MustCompile(`(?s)<item>.*?</item>`)

// parseGoogleRSS はGoogle Merchant RSS形式のフィードを解析する。
// g:名前空間のタグを含む<item>ブロックごとに1商品を抽出する。
func parseGoogleRSS(content string) []model.ParsedProduct {
	var products []model.ParsedProduct

	for _, block := range googleItemPattern.FindAllString(content, -1) {
		product, ok := parseGoogleItem(block)
		if !ok {
			continue
		}
		products = append(products, product)
	}

	return products
}

// googleAttributeTags はGoogle RSS形式で属性として取り込むタグの固定リスト。
// タグが存在する場合のみ、g:プレフィックスを除いた名前で属性に追加する。
var googleAttributeTags = []string{"g:custom_label_2", "g:adult", "g:item_group_id"}

// parseGoogleItem は1つの<item>ブロックから商品を抽出する。
// 抽出中のpanicは回復してレコードを破棄し、okにfalseを返す。
func parseGoogleItem(block string) (product model.ParsedProduct, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("商品ブロックの解析に失敗しました",
				slog.String("format", string(model.FormatGoogleRSS)),
				slog.Any("panic", rec),
			)
			ok = false
		}
	}()

	product = model.ParsedProduct{
		ExternalID:   extractValue(block, "g:id"),
		Name:         extractValue(block, "title"),
		Description:  extractCData(block, "description"),
		Price:        parsePrice(extractValue(block, "g:price")),
		OriginalURL:  extractValue(block, "link"),
		ImageURL:     extractValue(block, "g:image_link"),
		Brand:        extractValue(block, "g:brand"),
		SKU:          extractValue(block, "g:id"),
		EAN:          extractValue(block, "g:gtin"),
		Availability: extractValue(block, "g:availability"),
		Condition:    extractValue(block, "g:condition"),
		CategoryPath: extractValue(block, "g:product_type"),
	}

	if raw := extractValue(block, "g:sale_price"); raw != "" {
		sale := parsePrice(raw)
		product.SalePrice = &sale
	}
	if raw := extractValue(block, "g:shipping_weight"); raw != "" {
		weight := parsePrice(raw)
		product.ShippingWeight = &weight
	}

	for _, tag := range googleAttributeTags {
		if value := extractValue(block, tag); value != "" {
			product.Attributes = append(product.Attributes, model.ParsedAttribute{
				Name:  strings.TrimPrefix(tag, "g:"),
				Value: value,
			})
		}
	}

	if product.ExternalID == "" || product.Name == "" {
		return model.ParsedProduct{}, false
	}
	return product, true
}

// shoptetItemPattern はShoptet形式の商品コンテナを切り出すパターン。
var shoptetItemPattern = regexp.MustCompile(`(?s)<SHOPITEM>.*?</SHOPITEM>`)

// shoptetParamPattern は<PARAM>サブブロックを切り出すパターン。
var shoptetParamPattern = regexp.MustCompile(`(?s)<PARAM>.*?</PARAM>`)

// parseShoptet はShoptetエクスポート形式のフィードを解析する。
// <SHOPITEM>ブロックごとに1商品を抽出する。
func parseShoptet(content string) []model.ParsedProduct {
	var products []model.ParsedProduct

	for _, block := range shoptetItemPattern.FindAllString(content, -1) {
		product, ok := parseShoptetItem(block)
		if !ok {
			continue
		}
		products = append(products, product)
	}

	return products
}

// parseShoptetItem は1つの<SHOPITEM>ブロックから商品を抽出する。
// 全ての<PARAM>ブロックをPARAM_NAME/VALの属性ペアとして出現順に取り込む。
// PARAM_NAMEまたはVALを欠く<PARAM>ブロックはスキップする。
func parseShoptetItem(block string) (product model.ParsedProduct, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("商品ブロックの解析に失敗しました",
				slog.String("format", string(model.FormatShoptet)),
				slog.Any("panic", rec),
			)
			ok = false
		}
	}()

	product = model.ParsedProduct{
		ExternalID:   extractValue(block, "ITEM_ID"),
		Name:         extractValue(block, "PRODUCTNAME"),
		Description:  extractCData(block, "DESCRIPTION"),
		Price:        parseCzechPrice(extractValue(block, "PRICE_VAT")),
		OriginalURL:  extractValue(block, "URL"),
		ImageURL:     extractValue(block, "IMGURL"),
		Brand:        extractValue(block, "MANUFACTURER"),
		EAN:          extractValue(block, "EAN"),
		CategoryPath: extractValue(block, "CATEGORYTEXT"),
	}

	for _, paramBlock := range shoptetParamPattern.FindAllString(block, -1) {
		name := extractValue(paramBlock, "PARAM_NAME")
		value := extractValue(paramBlock, "VAL")
		if name == "" || value == "" {
			continue
		}
		product.Attributes = append(product.Attributes, model.ParsedAttribute{
			Name:  name,
			Value: value,
		})
	}

	if product.ExternalID == "" || product.Name == "" {
		return model.ParsedProduct{}, false
	}
	return product, true
}

// nonPriceChars は小数点と数字以外を価格文字列から取り除くパターン。
var nonPriceChars = regexp.MustCompile(`[^\d.]`)

// parsePrice は通貨記号等を除去してから価格を数値として解析する。
// 解析できない場合は0を返す（正確性より表示の継続を優先する既知の劣化仕様）。
func parsePrice(raw string) float64 {
	cleaned := nonPriceChars.ReplaceAllString(raw, "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// nonCzechPriceChars は小数点・桁区切りコンマ・数字以外を取り除くパターン。
var nonCzechPriceChars = regexp.MustCompile(`[^\d.,]`)

// parseCzechPrice はチェコ式表記（"1 234,50 Kč"）の価格を解析する。
// 数字・コンマ・ピリオド以外を除去し、コンマを小数点に変換してから解析する。
// 解析できない場合は0を返す。
func parseCzechPrice(raw string) float64 {
	cleaned := nonCzechPriceChars.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}
