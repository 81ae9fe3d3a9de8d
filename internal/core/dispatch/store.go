// Package dispatch 執行解讀出來的結構化動作：
// 驗證資料、換算列表示、對記錄儲存做讀寫，並組出使用者可見的確認訊息。
package dispatch

import "context"

// RecordStore 列導向記錄儲存的最小介面，由 sheets adapter 實作
type RecordStore interface {
	ReadRows(ctx context.Context, sheet string) ([][]string, error)
	CountRows(ctx context.Context, sheet string) (int, error)
	Append(ctx context.Context, sheet string, rows [][]string) error
	UpdateRow(ctx context.Context, sheet string, rowIndex int, row []string) error
	DeleteRow(ctx context.Context, sheet string, rowIndex int) error
	WithSheetLock(sheet string, fn func() error) error
}
