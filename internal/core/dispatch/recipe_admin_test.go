package dispatch

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"home-chef-ai/internal/pkg/common"
)

func TestUpdateRecipePartialFields(t *testing.T) {
	store := newFakeStore()
	store.sheets["Recipes"] = [][]string{
		recipeRow("1", "咖哩飯", `[{"name":"洋蔥","quantity":1,"unit":"個"}]`, "4", "其他"),
	}
	d := newTestDispatcher(store)

	servings := 6
	cat := "肉"
	res, err := d.UpdateRecipe(context.Background(), "咖哩飯", RecipeUpdate{
		Servings: &servings,
		Category: &cat,
	})
	if err != nil {
		t.Fatalf("UpdateRecipe: %v", err)
	}
	if !strings.Contains(res.Message, "咖哩飯") {
		t.Errorf("Message = %q", res.Message)
	}

	row := store.sheets["Recipes"][0]
	if row[3] != "6" {
		t.Errorf("servings = %q, want 6", row[3])
	}
	// 分類寫入前正規化
	if row[5] != "肉類" {
		t.Errorf("category = %q, want 肉類", row[5])
	}
	// 未提供的欄位保持原值
	var ings []common.RecipeIngredient
	if err := json.Unmarshal([]byte(row[2]), &ings); err != nil || len(ings) != 1 {
		t.Errorf("ingredients cell = %q", row[2])
	}
}

func TestUpdateRecipeNotFoundIsSoft(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	servings := 2
	res, err := d.UpdateRecipe(context.Background(), "不存在", RecipeUpdate{Servings: &servings})
	if err != nil {
		t.Fatalf("not-found must be a soft result, got %v", err)
	}
	if !strings.Contains(res.Message, "找不到") {
		t.Errorf("Message = %q", res.Message)
	}
	if store.writes != 0 {
		t.Errorf("writes = %d, want 0", store.writes)
	}
}

func TestUpdateRecipeValidation(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	zero := 0
	if _, err := d.UpdateRecipe(context.Background(), "x", RecipeUpdate{Servings: &zero}); !common.IsValidationError(err) {
		t.Errorf("zero servings: expected ValidationError, got %v", err)
	}
	bad := "下週三"
	if _, err := d.UpdateRecipe(context.Background(), "x", RecipeUpdate{LastCooked: &bad}); !common.IsValidationError(err) {
		t.Errorf("bad date: expected ValidationError, got %v", err)
	}
	if store.writes != 0 {
		t.Errorf("writes = %d, want 0", store.writes)
	}
}

func TestDeleteRecipeFirstMatch(t *testing.T) {
	store := newFakeStore()
	store.sheets["Recipes"] = [][]string{
		recipeRow("1", "味噌湯", `[{"name":"豆腐","quantity":1,"unit":"塊"}]`, "2", "其他"),
		recipeRow("2", "味噌湯", `[{"name":"海帶芽","quantity":5,"unit":"g"}]`, "4", "其他"),
	}
	d := newTestDispatcher(store)

	_, err := d.DeleteRecipe(context.Background(), "味噌湯")
	if err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}

	rows := store.sheets["Recipes"]
	if len(rows) != 1 || rows[0][3] != "4" {
		t.Errorf("rows = %v, want only the second recipe left", rows)
	}
}

func TestDeleteRecipeNotFoundIsSoft(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	res, err := d.DeleteRecipe(context.Background(), "不存在")
	if err != nil {
		t.Fatalf("not-found must be a soft result, got %v", err)
	}
	if !strings.Contains(res.Message, "找不到") {
		t.Errorf("Message = %q", res.Message)
	}
}
