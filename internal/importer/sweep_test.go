package importer

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockSweepRepo はMarkStaleAsFailedの呼び出しを記録するモック。
// その他のメソッドはmockImportRepoを埋め込んで流用する。
type mockSweepRepo struct {
	mockImportRepo
	marked    int64
	markErr   error
	olderThan time.Duration
}

func (m *mockSweepRepo) MarkStaleAsFailed(_ context.Context, olderThan time.Duration) (int64, error) {
	m.olderThan = olderThan
	if m.markErr != nil {
		return 0, m.markErr
	}
	return m.marked, nil
}

// TestSweepJob_Run は滞留インポートのスイープが設定した閾値で
// 実行されることをテストする。
func TestSweepJob_Run(t *testing.T) {
	repo := &mockSweepRepo{marked: 3}
	job := NewSweepJob(repo, testLogger())

	marked, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if marked != 3 {
		t.Errorf("marked = %d, want 3", marked)
	}
	// 既定の閾値は1時間
	if repo.olderThan != time.Hour {
		t.Errorf("olderThan = %v, want 1h", repo.olderThan)
	}
}

// TestSweepJob_Run_CustomStaleAfter は閾値の上書きが反映されることをテストする。
func TestSweepJob_Run_CustomStaleAfter(t *testing.T) {
	repo := &mockSweepRepo{}
	job := NewSweepJob(repo, testLogger())
	job.StaleAfter = 30 * time.Minute

	if _, err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if repo.olderThan != 30*time.Minute {
		t.Errorf("olderThan = %v, want 30m", repo.olderThan)
	}
}

// TestSweepJob_Run_Error はストレージ層の失敗が伝播することをテストする。
func TestSweepJob_Run_Error(t *testing.T) {
	repo := &mockSweepRepo{markErr: errors.New("db down")}
	job := NewSweepJob(repo, testLogger())

	if _, err := job.Run(context.Background()); err == nil {
		t.Fatal("Run returned nil error, want failure")
	}
}
