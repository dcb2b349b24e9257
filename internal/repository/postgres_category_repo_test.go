package repository

import (
	"testing"
)

// TestPostgresCategoryRepo_ImplementsInterface はPostgresCategoryRepoがCategoryRepositoryを実装することを検証する。
func TestPostgresCategoryRepo_ImplementsInterface(t *testing.T) {
	// コンパイル時チェック：PostgresCategoryRepoがCategoryRepositoryを満たすことを検証
	var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
}
