package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/katalog/internal/model"
	"github.com/hitoshi/katalog/internal/security"
)

// Fetcher はフィードURLの単発ダウンロードを行う。
// 定期的なポーリングは行わず、インポートAPIから1回限りで呼び出される。
// SSRF検証付きのHTTPクライアントを使用し、レスポンスサイズを上限で打ち切る。
type Fetcher struct {
	ssrfGuard   security.SSRFGuardService
	logger      *slog.Logger
	timeout     time.Duration
	maxBodySize int64
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
func NewFetcher(ssrfGuard security.SSRFGuardService, logger *slog.Logger, timeout time.Duration, maxBodySize int64) *Fetcher {
	return &Fetcher{
		ssrfGuard:   ssrfGuard,
		logger:      logger,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// FetchFeed は指定URLからフィード本文を取得する。
// 事前のSSRF静的検証に失敗した場合はSSRFBlockedエラーを、
// HTTPレベルの失敗やサイズ超過の場合はFetchFailedエラーを返す。
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) ([]byte, error) {
	if err := f.ssrfGuard.ValidateURL(feedURL); err != nil {
		f.logger.Warn("フィードURLのSSRF検証に失敗しました",
			slog.String("feed_url", feedURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewSSRFBlockedError()
	}

	client := f.ssrfGuard.NewSafeClient(f.timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, model.NewFetchFailedError(err.Error())
	}
	req.Header.Set("Accept", "application/xml, text/xml, application/rss+xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, model.NewFetchFailedError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, model.NewFetchFailedError(fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	// サイズ上限+1バイトまで読み、超過を検出する
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, model.NewFetchFailedError(err.Error())
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, model.NewFetchFailedError(
			fmt.Sprintf("response exceeds %d bytes", f.maxBodySize))
	}

	f.logger.Info("フィードを取得しました",
		slog.String("feed_url", feedURL),
		slog.Int("content_bytes", len(body)),
	)

	return body, nil
}
