// Package codec 負責領域記錄與試算表列表示之間的雙向轉換。
// 列是定寬的字串序列，日期用 ISO-8601，缺席的日期以空字串表示。
package codec

import (
	"fmt"
	"strconv"
	"time"

	"home-chef-ai/internal/pkg/common"
)

// 食材表欄位位置：id | name | quantity | unit | expiry_date | updated_at | category
const ingredientColumns = 7

const (
	dateLayout = "2006-01-02"
)

// datetimeLayouts 依序嘗試的時間戳格式。
// 舊資料是 Python isoformat（無時區、可能帶小數秒），新資料是 RFC3339。
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	dateLayout,
}

// DecodeIngredient 將一列解碼為食材。
// 數值欄位解析失敗或日期非 ISO-8601 時返回 MalformedRecord。
func DecodeIngredient(row []string) (common.Ingredient, error) {
	cells := padRow(row, ingredientColumns)

	id, err := strconv.Atoi(cells[0])
	if err != nil {
		return common.Ingredient{}, common.NewMalformedRecordError(row, fmt.Errorf("invalid id %q: %w", cells[0], err))
	}

	quantity, err := strconv.ParseFloat(cells[2], 64)
	if err != nil {
		return common.Ingredient{}, common.NewMalformedRecordError(row, fmt.Errorf("invalid quantity %q: %w", cells[2], err))
	}

	expiry, err := parseOptionalDate(cells[4])
	if err != nil {
		return common.Ingredient{}, common.NewMalformedRecordError(row, fmt.Errorf("invalid expiry_date %q: %w", cells[4], err))
	}

	updatedAt, err := parseDatetime(cells[5])
	if err != nil {
		return common.Ingredient{}, common.NewMalformedRecordError(row, fmt.Errorf("invalid updated_at %q: %w", cells[5], err))
	}

	return common.Ingredient{
		ID:         id,
		Name:       cells[1],
		Quantity:   quantity,
		Unit:       cells[3],
		ExpiryDate: expiry,
		UpdatedAt:  *updatedAt,
		Category:   cells[6],
	}, nil
}

// EncodeIngredient 將食材編碼為一列。總是成功。
func EncodeIngredient(ing common.Ingredient) []string {
	expiry := ""
	if ing.ExpiryDate != nil {
		expiry = ing.ExpiryDate.Format(dateLayout)
	}
	return []string{
		strconv.Itoa(ing.ID),
		ing.Name,
		common.FormatQuantity(ing.Quantity),
		ing.Unit,
		expiry,
		ing.UpdatedAt.Format(time.RFC3339),
		ing.Category,
	}
}

// parseOptionalDate 空字串視為缺席
func parseOptionalDate(cell string) (*time.Time, error) {
	if cell == "" {
		return nil, nil
	}
	t, err := parseDatetime(cell)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func parseDatetime(cell string) (*time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized timestamp %q", cell)
}

// padRow Sheets 會省略列尾的空儲存格，補齊到定寬
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
