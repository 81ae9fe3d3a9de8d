package codec

import (
	"fmt"
	"strconv"

	"home-chef-ai/internal/pkg/common"
)

// 食譜表欄位位置：id | name | ingredients | servings | url | category | last_cooked
const recipeColumns = 7

// DecodeRecipe 將一列解碼為食譜。
// 材料欄是嚴格 JSON（[]RecipeIngredient）；任何其他形式——包括舊版
// 以 Python 字面量寫入的資料——都視為 MalformedRecord，絕不求值。
func DecodeRecipe(row []string) (common.Recipe, error) {
	cells := padRow(row, recipeColumns)

	id, err := strconv.Atoi(cells[0])
	if err != nil {
		return common.Recipe{}, common.NewMalformedRecordError(row, fmt.Errorf("invalid id %q: %w", cells[0], err))
	}

	var ingredients []common.RecipeIngredient
	if err := common.ParseJSONStrict(cells[2], &ingredients); err != nil {
		return common.Recipe{}, common.NewMalformedRecordError(row, fmt.Errorf("invalid ingredients cell: %w", err))
	}

	servings, err := strconv.Atoi(cells[3])
	if err != nil {
		return common.Recipe{}, common.NewMalformedRecordError(row, fmt.Errorf("invalid servings %q: %w", cells[3], err))
	}

	lastCooked, err := parseOptionalDate(cells[6])
	if err != nil {
		return common.Recipe{}, common.NewMalformedRecordError(row, fmt.Errorf("invalid last_cooked %q: %w", cells[6], err))
	}

	return common.Recipe{
		ID:          id,
		Name:        cells[1],
		Ingredients: ingredients,
		Servings:    servings,
		URL:         cells[4],
		Category:    cells[5],
		LastCooked:  lastCooked,
	}, nil
}

// EncodeRecipe 將食譜編碼為一列。材料清單序列化為 JSON。
func EncodeRecipe(r common.Recipe) []string {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []common.RecipeIngredient{}
	}
	// []RecipeIngredient 序列化不會失敗
	cell, _ := common.ToJSON(ingredients)

	lastCooked := ""
	if r.LastCooked != nil {
		lastCooked = r.LastCooked.Format(dateLayout)
	}

	return []string{
		strconv.Itoa(r.ID),
		r.Name,
		cell,
		strconv.Itoa(r.Servings),
		r.URL,
		r.Category,
		lastCooked,
	}
}
