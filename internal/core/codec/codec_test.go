package codec

import (
	"testing"
	"time"

	"home-chef-ai/internal/pkg/common"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestIngredientRoundTrip(t *testing.T) {
	updated := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   common.Ingredient
	}{
		{
			"WithExpiry",
			common.Ingredient{
				ID: 3, Name: "豚肉", Quantity: 300, Unit: "g",
				Category: "肉類", ExpiryDate: date(2026, 9, 1), UpdatedAt: updated,
			},
		},
		{
			"WithoutExpiry",
			common.Ingredient{
				ID: 1, Name: "salt", Quantity: 0.5, Unit: "kg",
				Category: "調味料", UpdatedAt: updated,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := EncodeIngredient(tc.in)
			got, err := DecodeIngredient(row)
			if err != nil {
				t.Fatalf("DecodeIngredient: %v", err)
			}
			if got.ID != tc.in.ID || got.Name != tc.in.Name ||
				got.Quantity != tc.in.Quantity || got.Unit != tc.in.Unit ||
				got.Category != tc.in.Category {
				t.Errorf("round trip mismatch: got %+v, want %+v", got, tc.in)
			}
			if !got.UpdatedAt.Equal(tc.in.UpdatedAt) {
				t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, tc.in.UpdatedAt)
			}
			if (got.ExpiryDate == nil) != (tc.in.ExpiryDate == nil) {
				t.Fatalf("ExpiryDate presence mismatch")
			}
			if got.ExpiryDate != nil && !got.ExpiryDate.Equal(*tc.in.ExpiryDate) {
				t.Errorf("ExpiryDate = %v, want %v", got.ExpiryDate, tc.in.ExpiryDate)
			}
		})
	}
}

func TestDecodeIngredientLegacyTimestamps(t *testing.T) {
	// Python isoformat 寫入的舊資料（無時區、帶小數秒）
	row := []string{"2", "牛乳", "1", "L", "2026-09-10", "2026-08-01T09:15:30.123456", "乳製品"}
	ing, err := DecodeIngredient(row)
	if err != nil {
		t.Fatalf("DecodeIngredient: %v", err)
	}
	if ing.ExpiryDate == nil || ing.ExpiryDate.Format("2006-01-02") != "2026-09-10" {
		t.Errorf("ExpiryDate = %v", ing.ExpiryDate)
	}
	if ing.UpdatedAt.Hour() != 9 {
		t.Errorf("UpdatedAt = %v", ing.UpdatedAt)
	}
}

func TestDecodeIngredientShortRow(t *testing.T) {
	// Sheets 省略列尾空儲存格：沒有 category 的列只有 6 格
	row := []string{"1", "卵", "10", "個", "", "2026-08-01T00:00:00"}
	ing, err := DecodeIngredient(row)
	if err != nil {
		t.Fatalf("DecodeIngredient: %v", err)
	}
	if ing.Category != "" {
		t.Errorf("Category = %q, want empty", ing.Category)
	}
}

func TestDecodeIngredientMalformed(t *testing.T) {
	cases := []struct {
		name string
		row  []string
	}{
		{"BadID", []string{"x", "卵", "10", "個", "", "2026-08-01T00:00:00", "其他"}},
		{"BadQuantity", []string{"1", "卵", "many", "個", "", "2026-08-01T00:00:00", "其他"}},
		{"BadExpiry", []string{"1", "卵", "10", "個", "notadate", "2026-08-01T00:00:00", "其他"}},
		{"MissingUpdatedAt", []string{"1", "卵", "10", "個", ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeIngredient(tc.row)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !common.IsMalformedRecord(err) {
				t.Errorf("expected MalformedRecord, got %T: %v", err, err)
			}
		})
	}
}

func TestRecipeRoundTrip(t *testing.T) {
	in := common.Recipe{
		ID:   1,
		Name: "Curry Rice",
		Ingredients: []common.RecipeIngredient{
			{Name: "curry powder", Quantity: 30, Unit: "g"},
			{Name: "rice", Quantity: 2, Unit: "合"},
		},
		Servings:   4,
		URL:        "https://cookpad.com/recipe/123",
		Category:   "其他",
		LastCooked: date(2026, 8, 20),
	}

	row := EncodeRecipe(in)
	got, err := DecodeRecipe(row)
	if err != nil {
		t.Fatalf("DecodeRecipe: %v", err)
	}
	if got.Name != in.Name || got.Servings != in.Servings || got.URL != in.URL || got.Category != in.Category {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, in)
	}
	if len(got.Ingredients) != 2 || got.Ingredients[0].Name != "curry powder" || got.Ingredients[1].Quantity != 2 {
		t.Errorf("Ingredients = %+v", got.Ingredients)
	}
}

func TestDecodeRecipeRejectsPythonLiteral(t *testing.T) {
	// 舊版以 str() 寫入的 Python 字面量不可被求值，必須視為損壞列
	row := []string{"1", "肉じゃが", "[{'name': 'じゃがいも', 'quantity': 3, 'unit': '個'}]", "2", "", "其他", ""}
	_, err := DecodeRecipe(row)
	if err == nil {
		t.Fatal("expected error for python-literal ingredients cell")
	}
	if !common.IsMalformedRecord(err) {
		t.Errorf("expected MalformedRecord, got %T: %v", err, err)
	}
}

func TestDecodeRecipeRejectsUnknownFields(t *testing.T) {
	row := []string{"1", "test", `[{"name":"a","quantity":1,"unit":"g","__evil":"x"}]`, "2", "", "其他", ""}
	if _, err := DecodeRecipe(row); err == nil {
		t.Fatal("expected error for unknown field in ingredients cell")
	}
}
