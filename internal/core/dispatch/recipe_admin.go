package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"home-chef-ai/internal/core/category"
	"home-chef-ai/internal/core/codec"
	"home-chef-ai/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeUpdate REST 更新食譜時可變更的欄位。
// 指標欄位區分「未提供」與「提供了零值」。
type RecipeUpdate struct {
	Ingredients *[]common.RecipeIngredient `json:"ingredients,omitempty"`
	Servings    *int                       `json:"servings,omitempty"`
	URL         *string                    `json:"url,omitempty"`
	Category    *string                    `json:"category,omitempty"`
	LastCooked  *string                    `json:"last_cooked,omitempty"` // YYYY-MM-DD
}

// UpdateRecipe 以名稱找到第一筆相符的食譜並覆寫提供的欄位。
// 聊天動作文法沒有這個操作，只有 REST 端點用。
func (d *Dispatcher) UpdateRecipe(ctx context.Context, name string, upd RecipeUpdate) (*Result, error) {
	if strings.TrimSpace(name) == "" {
		return nil, common.NewValidationError("食譜名稱不可為空")
	}
	if upd.Servings != nil && *upd.Servings <= 0 {
		return nil, common.NewValidationError("人數必須是正整數: %d", *upd.Servings)
	}
	if upd.Ingredients != nil && len(*upd.Ingredients) == 0 {
		return nil, common.NewValidationError("食譜至少要有一項材料")
	}

	var lastCooked *time.Time
	if upd.LastCooked != nil && *upd.LastCooked != "" {
		t, err := time.Parse("2006-01-02", *upd.LastCooked)
		if err != nil {
			return nil, common.NewValidationError("日期格式錯誤（應為 YYYY-MM-DD）: %s", *upd.LastCooked)
		}
		lastCooked = &t
	}

	var result *Result
	err := d.store.WithSheetLock(d.recipesSheet, func() error {
		idx, recipe, err := d.findRecipe(ctx, name)
		if err != nil {
			return err
		}
		if idx < 0 {
			result = &Result{Message: fmt.Sprintf("找不到「%s」這個食譜。", name)}
			return nil
		}

		if upd.Ingredients != nil {
			recipe.Ingredients = *upd.Ingredients
		}
		if upd.Servings != nil {
			recipe.Servings = *upd.Servings
		}
		if upd.URL != nil {
			recipe.URL = *upd.URL
		}
		if upd.Category != nil {
			recipe.Category = category.Normalize(*upd.Category)
		}
		if lastCooked != nil {
			recipe.LastCooked = lastCooked
		}

		if err := d.store.UpdateRow(ctx, d.recipesSheet, sheetRow(idx), codec.EncodeRecipe(recipe)); err != nil {
			return err
		}
		result = &Result{Message: fmt.Sprintf("已更新食譜「%s」。", recipe.Name)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteRecipe 以名稱找到第一筆相符的食譜並實體刪除該列
func (d *Dispatcher) DeleteRecipe(ctx context.Context, name string) (*Result, error) {
	if strings.TrimSpace(name) == "" {
		return nil, common.NewValidationError("食譜名稱不可為空")
	}

	var result *Result
	err := d.store.WithSheetLock(d.recipesSheet, func() error {
		idx, recipe, err := d.findRecipe(ctx, name)
		if err != nil {
			return err
		}
		if idx < 0 {
			result = &Result{Message: fmt.Sprintf("找不到「%s」這個食譜。", name)}
			return nil
		}

		if err := d.store.DeleteRow(ctx, d.recipesSheet, sheetRow(idx)); err != nil {
			return err
		}
		result = &Result{Message: fmt.Sprintf("已刪除食譜「%s」。", recipe.Name)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// findRecipe 以名稱找第一筆相符的食譜（不分大小寫的完全比對）
func (d *Dispatcher) findRecipe(ctx context.Context, name string) (int, common.Recipe, error) {
	rows, err := d.store.ReadRows(ctx, d.recipesSheet)
	if err != nil {
		return -1, common.Recipe{}, err
	}

	want := strings.ToLower(strings.TrimSpace(name))
	for i, row := range rows {
		recipe, err := codec.DecodeRecipe(row)
		if err != nil {
			common.LogWarn("略過無法解碼的食譜列",
				zap.Int("row", sheetRow(i)),
				zap.Error(err),
			)
			continue
		}
		if strings.ToLower(strings.TrimSpace(recipe.Name)) == want {
			return i, recipe, nil
		}
	}
	return -1, common.Recipe{}, nil
}
