package dispatch

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"home-chef-ai/internal/core/intent"
	"home-chef-ai/internal/pkg/common"
)

// fakeStore 記憶體中的列儲存，模擬試算表的定位行為
type fakeStore struct {
	sheets map[string][][]string
	writes int // 寫入操作次數（Append/Update/Delete）
}

func newFakeStore() *fakeStore {
	return &fakeStore{sheets: map[string][][]string{
		"Ingredients": {},
		"Recipes":     {},
	}}
}

func (s *fakeStore) ReadRows(_ context.Context, sheet string) ([][]string, error) {
	return s.sheets[sheet], nil
}

func (s *fakeStore) CountRows(_ context.Context, sheet string) (int, error) {
	return len(s.sheets[sheet]), nil
}

func (s *fakeStore) Append(_ context.Context, sheet string, rows [][]string) error {
	s.writes++
	s.sheets[sheet] = append(s.sheets[sheet], rows...)
	return nil
}

func (s *fakeStore) UpdateRow(_ context.Context, sheet string, rowIndex int, row []string) error {
	s.writes++
	s.sheets[sheet][rowIndex-2] = row
	return nil
}

func (s *fakeStore) DeleteRow(_ context.Context, sheet string, rowIndex int) error {
	s.writes++
	rows := s.sheets[sheet]
	i := rowIndex - 2
	s.sheets[sheet] = append(rows[:i], rows[i+1:]...)
	return nil
}

func (s *fakeStore) WithSheetLock(_ string, fn func() error) error {
	return fn()
}

func newTestDispatcher(store *fakeStore) *Dispatcher {
	d := NewDispatcher(store, "Ingredients", "Recipes")
	d.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	return d
}

func action(t *testing.T, typ intent.ActionType, data string) *intent.Action {
	t.Helper()
	return &intent.Action{Type: typ, Data: json.RawMessage(data)}
}

func TestAddIngredient(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	res, err := d.Dispatch(context.Background(),
		action(t, intent.ActionAddIngredient, `{"name": "豬肉", "quantity": 300, "unit": "g", "category": "肉"}`))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	// 確認訊息包含名稱、數量、單位
	for _, want := range []string{"豬肉", "300", "g"} {
		if !strings.Contains(res.Message, want) {
			t.Errorf("Message = %q, missing %q", res.Message, want)
		}
	}

	rows := store.sheets["Ingredients"]
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0][0] != "1" {
		t.Errorf("id = %q, want 1", rows[0][0])
	}
	// 同義分類寫入前正規化
	if rows[0][6] != "肉類" {
		t.Errorf("category = %q, want 肉類", rows[0][6])
	}
}

func TestAddMultipleIngredientsConsecutiveIDs(t *testing.T) {
	store := newFakeStore()
	store.sheets["Ingredients"] = [][]string{
		{"1", "牛奶", "1", "L", "", "2026-08-01T00:00:00Z", "乳製品"},
	}
	d := newTestDispatcher(store)

	_, err := d.Dispatch(context.Background(),
		action(t, intent.ActionAddMultipleIngredients,
			`[{"name": "洋蔥", "quantity": 3, "unit": "個", "category": "蔬菜"},
			  {"name": "紅蘿蔔", "quantity": 2, "unit": "根", "category": "蔬菜"},
			  {"name": "馬鈴薯", "quantity": 4, "unit": "個", "category": "蔬菜"}]`))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	rows := store.sheets["Ingredients"]
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	// 連號識別碼接在現有列之後
	for i, wantID := range []string{"2", "3", "4"} {
		if rows[i+1][0] != wantID {
			t.Errorf("row %d id = %q, want %q", i+1, rows[i+1][0], wantID)
		}
	}
	if store.writes != 1 {
		t.Errorf("writes = %d, want single batch append", store.writes)
	}
}

func TestAddMultipleIngredientsValidationBeforeWrite(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	_, err := d.Dispatch(context.Background(),
		action(t, intent.ActionAddMultipleIngredients,
			`[{"name": "洋蔥", "quantity": 3, "unit": "個", "category": "蔬菜"},
			  {"name": "", "quantity": 1, "unit": "個", "category": "蔬菜"}]`))
	if !common.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.writes != 0 {
		t.Errorf("writes = %d, validation failure must not touch the store", store.writes)
	}
}

func TestUpdateIngredientPartialFields(t *testing.T) {
	store := newFakeStore()
	store.sheets["Ingredients"] = [][]string{
		{"1", "Milk", "1", "L", "2026-09-01", "2026-08-01T00:00:00Z", "乳製品"},
	}
	d := newTestDispatcher(store)

	res, err := d.Dispatch(context.Background(),
		action(t, intent.ActionUpdateIngredient, `{"name": "milk", "quantity": 2}`))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !strings.Contains(res.Message, "Milk") {
		t.Errorf("Message = %q", res.Message)
	}

	row := store.sheets["Ingredients"][0]
	if row[2] != "2" {
		t.Errorf("quantity = %q, want 2", row[2])
	}
	// 未提供的欄位保持原值
	if row[3] != "L" || row[4] != "2026-09-01" {
		t.Errorf("row = %v, untouched fields must survive", row)
	}
	// updated_at 必須刷新
	if row[5] != "2026-08-29T12:00:00Z" {
		t.Errorf("updated_at = %q", row[5])
	}
}

func TestUpdateIngredientNotFoundIsSoft(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	res, err := d.Dispatch(context.Background(),
		action(t, intent.ActionUpdateIngredient, `{"name": "幽靈食材", "quantity": 1}`))
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

func TestDeleteIngredientFirstMatch(t *testing.T) {
	store := newFakeStore()
	store.sheets["Ingredients"] = [][]string{
		{"1", "蛋", "10", "個", "", "2026-08-01T00:00:00Z", "其他"},
		{"2", "蛋", "6", "個", "", "2026-08-10T00:00:00Z", "其他"},
	}
	d := newTestDispatcher(store)

	_, err := d.Dispatch(context.Background(),
		action(t, intent.ActionDeleteIngredient, `{"name": "蛋"}`))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	rows := store.sheets["Ingredients"]
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	// 同名多筆時刪除第一筆
	if rows[0][2] != "6" {
		t.Errorf("surviving row = %v, want the second one", rows[0])
	}
}

func TestDeleteIngredientNotFoundIsSoft(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	res, err := d.Dispatch(context.Background(),
		action(t, intent.ActionDeleteIngredient, `{"name": "不存在"}`))
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

func TestListIngredientsCategoryFilterNormalizesBothSides(t *testing.T) {
	store := newFakeStore()
	store.sheets["Ingredients"] = [][]string{
		{"1", "豬肉", "300", "g", "", "2026-08-01T00:00:00Z", "肉"}, // 儲存的是同義詞
		{"2", "洋蔥", "3", "個", "", "2026-08-01T00:00:00Z", "蔬菜"},
	}
	d := newTestDispatcher(store)

	res, err := d.Dispatch(context.Background(),
		action(t, intent.ActionListIngredients, `{"category": "肉類"}`))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(res.Ingredients) != 1 || res.Ingredients[0].Name != "豬肉" {
		t.Errorf("Ingredients = %+v", res.Ingredients)
	}
	if res.Category != "肉類" {
		t.Errorf("Category = %q, want normalized 肉類", res.Category)
	}
}

func TestListIngredientsSkipsMalformedRows(t *testing.T) {
	store := newFakeStore()
	store.sheets["Ingredients"] = [][]string{
		{"1", "豬肉", "300", "g", "", "2026-08-01T00:00:00Z", "肉類"},
		{"abc", "壞掉的列", "x", "", "", "", ""},
		{"3", "洋蔥", "3", "個", "", "2026-08-01T00:00:00Z", "蔬菜"},
	}
	d := newTestDispatcher(store)

	res, err := d.Dispatch(context.Background(),
		action(t, intent.ActionListIngredients, ``))
	if err != nil {
		t.Fatalf("malformed rows must be skipped, not fatal: %v", err)
	}
	if len(res.Ingredients) != 2 {
		t.Errorf("Ingredients = %d, want 2", len(res.Ingredients))
	}
}

func TestListIngredientsEmptyFilterResultIsNotNil(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	res, err := d.Dispatch(context.Background(),
		action(t, intent.ActionListIngredients, `{"category": "海鮮"}`))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.Ingredients == nil {
		t.Error("Ingredients must be an empty slice, not nil")
	}
}

func recipeRow(id, name, ingredients, servings, cat string) []string {
	return []string{id, name, ingredients, servings, "", cat, ""}
}

func TestSearchRecipesByNameOrIngredient(t *testing.T) {
	store := newFakeStore()
	store.sheets["Recipes"] = [][]string{
		recipeRow("1", "咖哩飯", `[{"name":"洋蔥","quantity":1,"unit":"個"}]`, "4", "其他"),
		recipeRow("2", "烤雞", `[{"name":"雞腿","quantity":2,"unit":"支"}]`, "2", "肉類"),
		recipeRow("3", "炒麵", `[{"name":"咖哩粉","quantity":10,"unit":"g"}]`, "2", "其他"),
	}
	d := newTestDispatcher(store)

	res, err := d.Dispatch(context.Background(),
		action(t, intent.ActionSearchRecipes, `{"query": "咖哩"}`))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	// 名稱命中 1、材料名稱命中 3
	if len(res.Recipes) != 2 {
		t.Fatalf("Recipes = %+v, want 2 matches", res.Recipes)
	}
	if res.Recipes[0].ID != 1 || res.Recipes[1].ID != 3 {
		t.Errorf("Recipes = %+v", res.Recipes)
	}
}

func TestSearchRecipesCaseInsensitive(t *testing.T) {
	store := newFakeStore()
	store.sheets["Recipes"] = [][]string{
		recipeRow("1", "Curry Rice", `[{"name":"onion","quantity":1,"unit":"pc"}]`, "4", "其他"),
		recipeRow("2", "Fried Noodles", `[{"name":"curry powder","quantity":10,"unit":"g"}]`, "2", "其他"),
		recipeRow("3", "Salad", `[{"name":"lettuce","quantity":1,"unit":"pc"}]`, "2", "蔬菜"),
	}
	d := newTestDispatcher(store)

	res, err := d.Dispatch(context.Background(),
		action(t, intent.ActionSearchRecipes, `{"query": "curry"}`))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(res.Recipes) != 2 {
		t.Fatalf("Recipes = %+v, want name and ingredient matches", res.Recipes)
	}
}

func TestSearchRecipesCombinedFilters(t *testing.T) {
	store := newFakeStore()
	store.sheets["Recipes"] = [][]string{
		recipeRow("1", "烤雞", `[{"name":"雞腿","quantity":2,"unit":"支"}]`, "2", "肉類"),
		recipeRow("2", "雞湯", `[{"name":"雞骨","quantity":1,"unit":"副"}]`, "6", "肉"),
	}
	d := newTestDispatcher(store)

	res, err := d.Dispatch(context.Background(),
		action(t, intent.ActionSearchRecipes, `{"query": "雞", "category": "肉類", "min_servings": 4}`))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	// 分類兩邊正規化後比對，人數下限刷掉 1
	if len(res.Recipes) != 1 || res.Recipes[0].Name != "雞湯" {
		t.Errorf("Recipes = %+v", res.Recipes)
	}
}

func TestAddRecipe(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	res, err := d.Dispatch(context.Background(),
		action(t, intent.ActionAddRecipe,
			`{"name": "咖哩飯", "ingredients": [{"name": "洋蔥", "quantity": 1, "unit": "個"}], "servings": 4, "category": "其他"}`))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !strings.Contains(res.Message, "咖哩飯") {
		t.Errorf("Message = %q", res.Message)
	}

	rows := store.sheets["Recipes"]
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	// 材料儲存格是 JSON 陣列
	var ings []common.RecipeIngredient
	if err := json.Unmarshal([]byte(rows[0][2]), &ings); err != nil {
		t.Fatalf("ingredients cell is not JSON: %q", rows[0][2])
	}
	if len(ings) != 1 || ings[0].Name != "洋蔥" {
		t.Errorf("ingredients = %+v", ings)
	}
}

func TestAddRecipeValidation(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	cases := []struct {
		name string
		data string
	}{
		{"NoServings", `{"name": "x", "ingredients": [{"name": "a", "quantity": 1, "unit": "g"}], "servings": 0, "category": "其他"}`},
		{"NoIngredients", `{"name": "x", "ingredients": [], "servings": 2, "category": "其他"}`},
		{"EmptyName", `{"name": "", "ingredients": [{"name": "a", "quantity": 1, "unit": "g"}], "servings": 2, "category": "其他"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := d.Dispatch(context.Background(), action(t, intent.ActionAddRecipe, tc.data))
			if !common.IsValidationError(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
	if store.writes != 0 {
		t.Errorf("writes = %d, want 0", store.writes)
	}
}

func TestErrorActionIsSoft(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	res, err := d.Dispatch(context.Background(),
		action(t, intent.ActionError, `{"message": "無法理解這個請求。"}`))
	if err != nil {
		t.Fatalf("error action must not be an error: %v", err)
	}
	if res.Message != "無法理解這個請求。" {
		t.Errorf("Message = %q", res.Message)
	}
	if store.writes != 0 {
		t.Errorf("writes = %d, want 0", store.writes)
	}
}

func TestUnknownActionType(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	_, err := d.Dispatch(context.Background(), action(t, "fly_to_moon", `{}`))
	if !common.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestAddIngredientBadDate(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store)

	_, err := d.Dispatch(context.Background(),
		action(t, intent.ActionAddIngredient, `{"name": "豬肉", "quantity": 300, "unit": "g", "category": "肉", "expiry_date": "明天"}`))
	if !common.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.writes != 0 {
		t.Errorf("writes = %d, want 0", store.writes)
	}
}
