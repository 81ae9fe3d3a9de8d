package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"home-chef-ai/internal/core/category"
	"home-chef-ai/internal/core/codec"
	"home-chef-ai/internal/core/intent"
	"home-chef-ai/internal/pkg/common"

	"go.uber.org/zap"
)

// 資料列 i（0-based）對應的試算表列號：表頭佔第 1 列
func sheetRow(i int) int { return i + 2 }

// Result 動作執行的結果。Message 是使用者可見的確認或答覆，
// 清單欄位只在對應動作時非 nil；過濾後沒有命中是明確的空切片，
// 與「沒有清單操作」的 nil 不同，序列化時不可抹掉這個區別。
type Result struct {
	Message     string              `json:"message"`
	Ingredients []common.Ingredient `json:"ingredients"`
	Recipes     []common.Recipe     `json:"recipes"`
	Category    string              `json:"category,omitempty"` // 過濾用的正規化分類
}

// Dispatcher 動作分派器
type Dispatcher struct {
	store            RecordStore
	ingredientsSheet string
	recipesSheet     string

	now func() time.Time // 測試時可注入
}

// NewDispatcher 創建動作分派器
func NewDispatcher(store RecordStore, ingredientsSheet, recipesSheet string) *Dispatcher {
	return &Dispatcher{
		store:            store,
		ingredientsSheet: ingredientsSheet,
		recipesSheet:     recipesSheet,
		now:              time.Now,
	}
}

// Dispatch 依動作類型分派執行。
// 資料驗證一律在任何寫入之前完成：驗證失敗時儲存不會被碰到。
func (d *Dispatcher) Dispatch(ctx context.Context, action *intent.Action) (*Result, error) {
	common.LogInfo("分派動作", zap.String("type", string(action.Type)))

	switch action.Type {
	case intent.ActionAddIngredient:
		return d.addIngredient(ctx, action.Data)
	case intent.ActionAddMultipleIngredients:
		return d.addMultipleIngredients(ctx, action.Data)
	case intent.ActionUpdateIngredient:
		return d.updateIngredient(ctx, action.Data)
	case intent.ActionDeleteIngredient:
		return d.deleteIngredient(ctx, action.Data)
	case intent.ActionListIngredients:
		return d.listIngredients(ctx, action.Data)
	case intent.ActionSearchRecipes:
		return d.searchRecipes(ctx, action.Data)
	case intent.ActionAddRecipe:
		return d.addRecipe(ctx, action.Data)
	case intent.ActionError:
		return d.errorAction(action.Data)
	default:
		return nil, common.NewValidationError("未知的動作類型: %s", action.Type)
	}
}

// addIngredient 新增單一食材：識別碼 = 現有列數 + 1
func (d *Dispatcher) addIngredient(ctx context.Context, data []byte) (*Result, error) {
	var p intent.AddIngredientPayload
	if err := common.ParseJSONBytes(data, &p); err != nil {
		return nil, common.NewValidationError("add_ingredient 資料格式錯誤: %v", err)
	}

	ing, err := d.buildIngredient(p)
	if err != nil {
		return nil, err
	}

	err = d.store.WithSheetLock(d.ingredientsSheet, func() error {
		count, err := d.store.CountRows(ctx, d.ingredientsSheet)
		if err != nil {
			return err
		}
		ing.ID = count + 1
		return d.store.Append(ctx, d.ingredientsSheet, [][]string{codec.EncodeIngredient(ing)})
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("已新增 %s %s%s。", ing.Name, common.FormatQuantity(ing.Quantity), ing.Unit)
	if ing.ExpiryDate != nil {
		msg += fmt.Sprintf("（期限 %s）", ing.ExpiryDate.Format("2006-01-02"))
	}
	return &Result{Message: msg}, nil
}

// addMultipleIngredients 一次新增多項：連號識別碼、單次寫入
func (d *Dispatcher) addMultipleIngredients(ctx context.Context, data []byte) (*Result, error) {
	var payloads []intent.AddIngredientPayload
	if err := common.ParseJSONBytes(data, &payloads); err != nil {
		return nil, common.NewValidationError("add_multiple_ingredients 資料格式錯誤: %v", err)
	}
	if len(payloads) == 0 {
		return nil, common.NewValidationError("食材清單是空的")
	}

	// 全部先驗證，任何一項失敗就整批不寫
	ingredients := make([]common.Ingredient, 0, len(payloads))
	for _, p := range payloads {
		ing, err := d.buildIngredient(p)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}

	err := d.store.WithSheetLock(d.ingredientsSheet, func() error {
		count, err := d.store.CountRows(ctx, d.ingredientsSheet)
		if err != nil {
			return err
		}
		rows := make([][]string, len(ingredients))
		for i := range ingredients {
			ingredients[i].ID = count + 1 + i
			rows[i] = codec.EncodeIngredient(ingredients[i])
		}
		return d.store.Append(ctx, d.ingredientsSheet, rows)
	})
	if err != nil {
		return nil, err
	}

	var names []string
	for _, ing := range ingredients {
		names = append(names, fmt.Sprintf("%s %s%s", ing.Name, common.FormatQuantity(ing.Quantity), ing.Unit))
	}
	return &Result{Message: fmt.Sprintf("已新增 %d 項食材：%s。", len(ingredients), strings.Join(names, "、"))}, nil
}

// updateIngredient 以名稱找到第一筆相符的食材並覆寫提供的欄位
func (d *Dispatcher) updateIngredient(ctx context.Context, data []byte) (*Result, error) {
	var p intent.UpdateIngredientPayload
	if err := common.ParseJSONBytes(data, &p); err != nil {
		return nil, common.NewValidationError("update_ingredient 資料格式錯誤: %v", err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, common.NewValidationError("食材名稱不可為空")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return nil, common.NewValidationError("數量不可為負數: %s", common.FormatQuantity(*p.Quantity))
	}

	var expiry *time.Time
	if p.ExpiryDate != nil && *p.ExpiryDate != "" {
		t, err := time.Parse("2006-01-02", *p.ExpiryDate)
		if err != nil {
			return nil, common.NewValidationError("日期格式錯誤（應為 YYYY-MM-DD）: %s", *p.ExpiryDate)
		}
		expiry = &t
	}

	var result *Result
	err := d.store.WithSheetLock(d.ingredientsSheet, func() error {
		idx, ing, err := d.findIngredient(ctx, p.Name)
		if err != nil {
			return err
		}
		if idx < 0 {
			// 找不到是軟性結果，不是錯誤
			result = &Result{Message: fmt.Sprintf("找不到「%s」這項食材。", p.Name)}
			return nil
		}

		if p.Quantity != nil {
			ing.Quantity = *p.Quantity
		}
		if p.Unit != nil {
			ing.Unit = *p.Unit
		}
		if expiry != nil {
			ing.ExpiryDate = expiry
		}
		ing.UpdatedAt = d.now()

		if err := d.store.UpdateRow(ctx, d.ingredientsSheet, sheetRow(idx), codec.EncodeIngredient(ing)); err != nil {
			return err
		}
		result = &Result{Message: fmt.Sprintf("已更新 %s：%s%s。", ing.Name, common.FormatQuantity(ing.Quantity), ing.Unit)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// deleteIngredient 以名稱找到第一筆相符的食材並實體刪除該列
func (d *Dispatcher) deleteIngredient(ctx context.Context, data []byte) (*Result, error) {
	var p intent.DeleteIngredientPayload
	if err := common.ParseJSONBytes(data, &p); err != nil {
		return nil, common.NewValidationError("delete_ingredient 資料格式錯誤: %v", err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, common.NewValidationError("食材名稱不可為空")
	}

	var result *Result
	err := d.store.WithSheetLock(d.ingredientsSheet, func() error {
		idx, ing, err := d.findIngredient(ctx, p.Name)
		if err != nil {
			return err
		}
		if idx < 0 {
			result = &Result{Message: fmt.Sprintf("找不到「%s」這項食材。", p.Name)}
			return nil
		}

		if err := d.store.DeleteRow(ctx, d.ingredientsSheet, sheetRow(idx)); err != nil {
			return err
		}
		result = &Result{Message: fmt.Sprintf("已刪除 %s。", ing.Name)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// listIngredients 列出庫存，可依分類過濾。
// 過濾時兩邊都先正規化，儲存裡的同義分類也找得到。
func (d *Dispatcher) listIngredients(ctx context.Context, data []byte) (*Result, error) {
	var p intent.ListIngredientsPayload
	if len(data) > 0 {
		if err := common.ParseJSONBytes(data, &p); err != nil {
			return nil, common.NewValidationError("list_ingredients 資料格式錯誤: %v", err)
		}
	}

	ingredients, err := d.readIngredients(ctx)
	if err != nil {
		return nil, err
	}

	filterCategory := ""
	if p.Category != "" {
		want := category.Normalize(p.Category)
		filtered := make([]common.Ingredient, 0)
		for _, ing := range ingredients {
			if category.Normalize(ing.Category) == want {
				filtered = append(filtered, ing)
			}
		}
		ingredients = filtered
		filterCategory = want
	}

	return &Result{
		Message:     common.FormatIngredientList(ingredients),
		Ingredients: ingredients,
		Category:    filterCategory,
	}, nil
}

// searchRecipes 搜尋食譜：關鍵字比對名稱或材料名稱，分類與人數為額外條件
func (d *Dispatcher) searchRecipes(ctx context.Context, data []byte) (*Result, error) {
	var p intent.SearchRecipesPayload
	if len(data) > 0 {
		if err := common.ParseJSONBytes(data, &p); err != nil {
			return nil, common.NewValidationError("search_recipes 資料格式錯誤: %v", err)
		}
	}

	recipes, err := d.readRecipes(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]common.Recipe, 0)
	for _, r := range recipes {
		if RecipeMatches(r, p.Query, p.Category, p.MinServings) {
			matched = append(matched, r)
		}
	}

	result := &Result{
		Message: common.FormatRecipeList(matched),
		Recipes: matched,
	}
	if p.Category != "" {
		result.Category = category.Normalize(p.Category)
	}
	return result, nil
}

// addRecipe 新增食譜：識別碼 = 現有列數 + 1，材料序列化為 JSON 儲存格
func (d *Dispatcher) addRecipe(ctx context.Context, data []byte) (*Result, error) {
	var p intent.AddRecipePayload
	if err := common.ParseJSONBytes(data, &p); err != nil {
		return nil, common.NewValidationError("add_recipe 資料格式錯誤: %v", err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, common.NewValidationError("食譜名稱不可為空")
	}
	if p.Servings <= 0 {
		return nil, common.NewValidationError("人數必須是正整數: %d", p.Servings)
	}
	if len(p.Ingredients) == 0 {
		return nil, common.NewValidationError("食譜至少要有一項材料")
	}

	recipe := common.Recipe{
		Name:     p.Name,
		Servings: p.Servings,
		URL:      p.URL,
		Category: category.Normalize(p.Category),
	}
	for _, ing := range p.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return nil, common.NewValidationError("材料名稱不可為空")
		}
		recipe.Ingredients = append(recipe.Ingredients, common.RecipeIngredient{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}

	err := d.store.WithSheetLock(d.recipesSheet, func() error {
		count, err := d.store.CountRows(ctx, d.recipesSheet)
		if err != nil {
			return err
		}
		recipe.ID = count + 1
		return d.store.Append(ctx, d.recipesSheet, [][]string{codec.EncodeRecipe(recipe)})
	})
	if err != nil {
		return nil, err
	}

	return &Result{Message: fmt.Sprintf("已新增食譜「%s」（%d人份）。", recipe.Name, recipe.Servings)}, nil
}

// errorAction 模型標記為無法處理：把說明轉述給使用者，不碰儲存
func (d *Dispatcher) errorAction(data []byte) (*Result, error) {
	var p intent.ErrorPayload
	if len(data) > 0 {
		if err := common.ParseJSONBytes(data, &p); err != nil {
			return nil, common.NewValidationError("error 資料格式錯誤: %v", err)
		}
	}
	if p.Message == "" {
		p.Message = "無法處理這個請求。"
	}
	return &Result{Message: p.Message}, nil
}

// buildIngredient 驗證 payload 並組出食材（識別碼由呼叫端補上）
func (d *Dispatcher) buildIngredient(p intent.AddIngredientPayload) (common.Ingredient, error) {
	if strings.TrimSpace(p.Name) == "" {
		return common.Ingredient{}, common.NewValidationError("食材名稱不可為空")
	}
	if p.Quantity < 0 {
		return common.Ingredient{}, common.NewValidationError("數量不可為負數: %s", common.FormatQuantity(p.Quantity))
	}

	var expiry *time.Time
	if p.ExpiryDate != "" {
		t, err := time.Parse("2006-01-02", p.ExpiryDate)
		if err != nil {
			return common.Ingredient{}, common.NewValidationError("日期格式錯誤（應為 YYYY-MM-DD）: %s", p.ExpiryDate)
		}
		expiry = &t
	}

	return common.Ingredient{
		Name:       p.Name,
		Quantity:   p.Quantity,
		Unit:       p.Unit,
		Category:   category.Normalize(p.Category),
		ExpiryDate: expiry,
		UpdatedAt:  d.now(),
	}, nil
}

// findIngredient 以名稱找第一筆相符的食材（不分大小寫的完全比對）。
// 返回 0-based 資料列索引；找不到時索引為 -1。
func (d *Dispatcher) findIngredient(ctx context.Context, name string) (int, common.Ingredient, error) {
	rows, err := d.store.ReadRows(ctx, d.ingredientsSheet)
	if err != nil {
		return -1, common.Ingredient{}, err
	}

	want := strings.ToLower(strings.TrimSpace(name))
	for i, row := range rows {
		ing, err := codec.DecodeIngredient(row)
		if err != nil {
			common.LogWarn("略過無法解碼的食材列",
				zap.Int("row", sheetRow(i)),
				zap.Error(err),
			)
			continue
		}
		if strings.ToLower(strings.TrimSpace(ing.Name)) == want {
			return i, ing, nil
		}
	}
	return -1, common.Ingredient{}, nil
}

// readIngredients 讀取全部食材，無法解碼的列記錄後略過
func (d *Dispatcher) readIngredients(ctx context.Context) ([]common.Ingredient, error) {
	rows, err := d.store.ReadRows(ctx, d.ingredientsSheet)
	if err != nil {
		return nil, err
	}

	ingredients := make([]common.Ingredient, 0, len(rows))
	for i, row := range rows {
		ing, err := codec.DecodeIngredient(row)
		if err != nil {
			common.LogWarn("略過無法解碼的食材列",
				zap.Int("row", sheetRow(i)),
				zap.Error(err),
			)
			continue
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}

// readRecipes 讀取全部食譜，無法解碼的列記錄後略過
func (d *Dispatcher) readRecipes(ctx context.Context) ([]common.Recipe, error) {
	rows, err := d.store.ReadRows(ctx, d.recipesSheet)
	if err != nil {
		return nil, err
	}

	recipes := make([]common.Recipe, 0, len(rows))
	for i, row := range rows {
		r, err := codec.DecodeRecipe(row)
		if err != nil {
			common.LogWarn("略過無法解碼的食譜列",
				zap.Int("row", sheetRow(i)),
				zap.Error(err),
			)
			continue
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// RecipeMatches 判斷食譜是否符合搜尋條件。
// query 以不分大小寫的子字串比對名稱或任一材料名稱；
// category 兩邊正規化後完全比對；minServings 為人數下限。
func RecipeMatches(r common.Recipe, query, cat string, minServings int) bool {
	if query != "" {
		q := strings.ToLower(query)
		hit := strings.Contains(strings.ToLower(r.Name), q)
		if !hit {
			for _, ing := range r.Ingredients {
				if strings.Contains(strings.ToLower(ing.Name), q) {
					hit = true
					break
				}
			}
		}
		if !hit {
			return false
		}
	}

	if cat != "" && category.Normalize(r.Category) != category.Normalize(cat) {
		return false
	}

	if minServings > 0 && r.Servings < minServings {
		return false
	}
	return true
}
