package feed

import (
	"testing"

	"github.com/hitoshi/katalog/internal/model"
)

// TestDetectFormat はコンテナタグによる形式判定をテストする。
func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    model.FeedFormat
		wantOK  bool
	}{
		{
			name:    "Shoptet形式",
			content: `<SHOP><SHOPITEM><ITEM_ID>1</ITEM_ID></SHOPITEM></SHOP>`,
			want:    model.FormatShoptet,
			wantOK:  true,
		},
		{
			name:    "Google RSS形式",
			content: `<rss><channel><item><g:id>1</g:id></item></channel></rss>`,
			want:    model.FormatGoogleRSS,
			wantOK:  true,
		},
		{
			// SHOPITEMと<item>が両方含まれる場合はShoptetを優先する
			name:    "両形式混在はShoptet優先",
			content: `<SHOPITEM></SHOPITEM><item></item>`,
			want:    model.FormatShoptet,
			wantOK:  true,
		},
		{
			name:    "判定不能",
			content: `<html><body>not a feed</body></html>`,
			wantOK:  false,
		},
		{
			name:    "空文字列",
			content: "",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectFormat(tt.content)
			if ok != tt.wantOK {
				t.Fatalf("DetectFormat ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("DetectFormat = %q, want %q", got, tt.want)
			}
		})
	}
}
