// Package sheets 以 Google 試算表充當列導向的記錄儲存。
// 列是字串序列，列位置兼作偽識別碼：實體刪除一列之後，
// 後續所有列的識別碼會前移。這是沿用下來的資料格式，
// 呼叫端不可假設識別碼在刪除後仍然穩定。
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"home-chef-ai/internal/infrastructure/config"
	"home-chef-ai/internal/pkg/common"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// 兩張表的欄位寬度（A..G）
const lastColumn = "G"

// IngredientHeaders 食材表的表頭列
var IngredientHeaders = []string{"id", "name", "quantity", "unit", "expiry_date", "updated_at", "category"}

// RecipeHeaders 食譜表的表頭列
var RecipeHeaders = []string{"id", "name", "ingredients", "servings", "url", "category", "last_cooked"}

// Client 試算表記錄儲存 adapter
type Client struct {
	svc           *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64 // 表名 → 數字 sheetId（刪列請求需要）
	locks    map[string]*sync.Mutex
}

// NewClient 創建試算表客戶端
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.Sheets.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.Sheets.SpreadsheetID,
		sheetIDs:      make(map[string]int64),
		locks:         make(map[string]*sync.Mutex),
	}, nil
}

// EnsureHeaders 啟動時確保兩張表存在且表頭正確。
// 失敗只記錄，不可拖垮其他路由的請求處理。
func (c *Client) EnsureHeaders(ctx context.Context, ingredientsSheet, recipesSheet string) error {
	if err := c.resolveSheetIDs(ctx); err != nil {
		return err
	}

	for sheet, headers := range map[string][]string{
		ingredientsSheet: IngredientHeaders,
		recipesSheet:     RecipeHeaders,
	} {
		if _, ok := c.sheetIDs[sheet]; !ok {
			if err := c.addSheet(ctx, sheet); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
			}
		}
		vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaceRow(headers)}}
		err := c.withRetry(func() error {
			_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, sheet+"!A1", vr).
				ValueInputOption("RAW").Context(ctx).Do()
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to write headers for %s: %w", sheet, err)
		}
	}

	common.LogInfo("試算表表頭初始化完成",
		zap.String("ingredients_sheet", ingredientsSheet),
		zap.String("recipes_sheet", recipesSheet),
	)
	return nil
}

// ReadRows 讀取表頭以下的所有資料列
func (c *Client) ReadRows(ctx context.Context, sheet string) ([][]string, error) {
	var resp *sheets.ValueRange
	err := c.withRetry(func() error {
		var err error
		resp, err = c.svc.Spreadsheets.Values.Get(c.spreadsheetID,
			fmt.Sprintf("%s!A2:%s", sheet, lastColumn)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, c.wrapErr(err)
	}
	return toStringRows(resp.Values), nil
}

// ReadRange 讀取任意 A1 範圍（例如 "Ingredients!A2:C10"）
func (c *Client) ReadRange(ctx context.Context, a1Range string) ([][]string, error) {
	var resp *sheets.ValueRange
	err := c.withRetry(func() error {
		var err error
		resp, err = c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1Range).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, c.wrapErr(err)
	}
	return toStringRows(resp.Values), nil
}

// CountRows 計算資料列數（id 欄）。新識別碼 = 列數 + 1。
func (c *Client) CountRows(ctx context.Context, sheet string) (int, error) {
	var resp *sheets.ValueRange
	err := c.withRetry(func() error {
		var err error
		resp, err = c.svc.Spreadsheets.Values.Get(c.spreadsheetID,
			fmt.Sprintf("%s!A2:A", sheet)).Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, c.wrapErr(err)
	}
	return len(resp.Values), nil
}

// Append 以單次寫入附加一批列
func (c *Client) Append(ctx context.Context, sheet string, rows [][]string) error {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = toInterfaceRow(row)
	}
	vr := &sheets.ValueRange{Values: values}

	err := c.withRetry(func() error {
		_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, sheet+"!A2", vr).
			ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		return err
	})
	return c.wrapErr(err)
}

// UpdateRow 覆寫指定列（rowIndex 為 1-based 的試算表列號，表頭為 1）
func (c *Client) UpdateRow(ctx context.Context, sheet string, rowIndex int, row []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaceRow(row)}}

	err := c.withRetry(func() error {
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID,
			fmt.Sprintf("%s!A%d", sheet, rowIndex), vr).
			ValueInputOption("RAW").Context(ctx).Do()
		return err
	})
	return c.wrapErr(err)
}

// DeleteRow 實體移除指定列（後續列的識別碼隨之前移）
func (c *Client) DeleteRow(ctx context.Context, sheet string, rowIndex int) error {
	sheetID, err := c.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: int64(rowIndex - 1), // 0-based，含
						EndIndex:   int64(rowIndex),     // 0-based，不含
					},
				},
			},
		},
	}

	err = c.withRetry(func() error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	return c.wrapErr(err)
}

// WithSheetLock 在同一張表上序列化「讀列數再附加」之類的複合寫入。
// 只保護同一個行程內的寫入；跨行程仍可能競爭，Sheets 沒有 CAS。
func (c *Client) WithSheetLock(sheet string, fn func() error) error {
	c.mu.Lock()
	lock, ok := c.locks[sheet]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[sheet] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// resolveSheetIDs 解析表名對應的數字 sheetId
func (c *Client) resolveSheetIDs(ctx context.Context) error {
	var ss *sheets.Spreadsheet
	err := c.withRetry(func() error {
		var err error
		ss, err = c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return c.wrapErr(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return nil
}

func (c *Client) sheetID(ctx context.Context, sheet string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[sheet]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	if err := c.resolveSheetIDs(ctx); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok = c.sheetIDs[sheet]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found in spreadsheet", sheet)
	}
	return id, nil
}

func (c *Client) addSheet(ctx context.Context, title string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: title},
				},
			},
		},
	}

	var resp *sheets.BatchUpdateSpreadsheetResponse
	err := c.withRetry(func() error {
		var err error
		resp, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return c.wrapErr(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range resp.Replies {
		if r.AddSheet != nil && r.AddSheet.Properties != nil {
			c.sheetIDs[r.AddSheet.Properties.Title] = r.AddSheet.Properties.SheetId
		}
	}
	return nil
}

// withRetry 瞬時失敗（5xx 或網路層錯誤）重試一次，應用層 4xx 不重試
func (c *Client) withRetry(fn func() error) error {
	err := fn()
	if err == nil || !isTransient(err) {
		return err
	}

	common.LogWarn("試算表請求瞬時失敗，重試一次", zap.Error(err))
	time.Sleep(200 * time.Millisecond)
	return fn()
}

func isTransient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code >= 500
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}

func (c *Client) wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code < 500 {
		// 應用層錯誤原樣浮出
		return err
	}
	return common.NewTransportError("record store", err)
}

// toStringRows 將 API 回傳的動態型別列轉為字串列。
// Sheets 會省略列尾的空儲存格，由 codec 端補齊。
func toStringRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprint(cell)
		}
		rows[i] = cells
	}
	return rows
}

func toInterfaceRow(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, c := range row {
		cells[i] = c
	}
	return cells
}
