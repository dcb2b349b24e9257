package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/katalog/internal/repository"
)

// DefaultStaleAfter は滞留インポートとみなすまでの既定時間。
const DefaultStaleAfter = time.Hour

// SweepJob はPROCESSINGのまま滞留したインポート実行を強制失敗させるジョブ。
// オーケストレーターのクラッシュで終端化されなかった実行に対する唯一の回復手段。
// 冪等であり、対象がない場合でもエラーにならない。
type SweepJob struct {
	importRepo repository.ImportRunRepository
	logger     *slog.Logger
	StaleAfter time.Duration // この時間を超えてPROCESSINGの実行をFAILEDにする
}

// NewSweepJob は新しいSweepJobを生成する。
// 既定の滞留閾値は1時間。
func NewSweepJob(importRepo repository.ImportRunRepository, logger *slog.Logger) *SweepJob {
	return &SweepJob{
		importRepo: importRepo,
		logger:     logger,
		StaleAfter: DefaultStaleAfter,
	}
}

// Run は滞留インポートを一括でFAILEDに遷移させ、遷移させた件数を返す。
func (j *SweepJob) Run(ctx context.Context) (int64, error) {
	start := time.Now()

	marked, err := j.importRepo.MarkStaleAsFailed(ctx, j.StaleAfter)
	if err != nil {
		j.logger.Error("滞留インポートのスイープに失敗しました",
			slog.String("error", err.Error()),
			slog.Duration("stale_after", j.StaleAfter),
		)
		return 0, fmt.Errorf("滞留インポートのスイープに失敗: %w", err)
	}

	j.logger.Info("滞留インポートのスイープが完了しました",
		slog.Int64("marked_failed", marked),
		slog.Duration("stale_after", j.StaleAfter),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return marked, nil
}
