package feed

import (
	"regexp"
	"strings"
	"sync"
)

// tagPatternCache はタグ名ごとにコンパイル済みパターンをキャッシュする。
// フィールドタグの集合は形式ごとに固定のため、キャッシュは有界に収まる。
var tagPatternCache sync.Map // tag -> *regexp.Regexp

// cdataPatternCache はCDATA抽出用パターンのキャッシュ。
var cdataPatternCache sync.Map // tag -> *regexp.Regexp

// extractValue はブロック内から指定タグの最初の一致を抽出し、前後の空白を除いて返す。
// タグ名の照合は大文字小文字を区別しない。タグが存在しない場合は空文字列を返す。
// 値は次のタグ開始（<）までの平文に限られるため、同名タグの入れ子は扱えない。
func extractValue(block, tag string) string {
	pattern := tagPattern(tag)
	match := pattern.FindStringSubmatch(block)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// extractCData はCDATAセクションを優先して値を抽出する。
// CDATAが見つからない場合は通常の抽出にフォールバックする。
// リッチテキストやエスケープ済みHTMLを含むタグ（description等）に使用する。
func extractCData(block, tag string) string {
	pattern := cdataPattern(tag)
	match := pattern.FindStringSubmatch(block)
	if match != nil {
		return strings.TrimSpace(match[1])
	}
	return extractValue(block, tag)
}

// tagPattern は指定タグの値抽出パターンを返す。
func tagPattern(tag string) *regexp.Regexp {
	if cached, ok := tagPatternCache.Load(tag); ok {
		return cached.(*regexp.Regexp)
	}
	pattern := regexp.MustCompile(`(?i)<` + regexp.QuoteMeta(tag) + `[^>]*>([^<]*)</` + regexp.QuoteMeta(tag) + `>`)
	tagPatternCache.Store(tag, pattern)
	return pattern
}

// cdataPattern は指定タグのCDATA抽出パターンを返す。
func cdataPattern(tag string) *regexp.Regexp {
	if cached, ok := cdataPatternCache.Load(tag); ok {
		return cached.(*regexp.Regexp)
	}
	pattern := regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(tag) + `[^>]*><!\[CDATA\[(.*?)\]\]></` + regexp.QuoteMeta(tag) + `>`)
	cdataPatternCache.Store(tag, pattern)
	return pattern
}
