// Package intent 將自由文字的對話訊息解讀為結構化動作。
// 模型回覆可能是純文字、裸 JSON、或夾在說明文字裡的 JSON 區塊，
// 這裡負責從中抽出動作並驗證形狀。
package intent

import "encoding/json"

// ActionType 結構化動作的標籤
type ActionType string

const (
	ActionAddIngredient          ActionType = "add_ingredient"
	ActionAddMultipleIngredients ActionType = "add_multiple_ingredients"
	ActionUpdateIngredient       ActionType = "update_ingredient"
	ActionDeleteIngredient       ActionType = "delete_ingredient"
	ActionListIngredients        ActionType = "list_ingredients"
	ActionSearchRecipes          ActionType = "search_recipes"
	ActionAddRecipe              ActionType = "add_recipe"
	ActionError                  ActionType = "error"
)

// Action 模型輸出的結構化動作。Data 的形狀依 Type 而異，
// 由 dispatcher 在執行前解碼並驗證。
type Action struct {
	Type ActionType      `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// AddIngredientPayload add_ingredient 的資料
type AddIngredientPayload struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Category   string  `json:"category"`
	ExpiryDate string  `json:"expiry_date,omitempty"`
}

// UpdateIngredientPayload update_ingredient 的資料。
// 指標欄位區分「未提供」與「提供了零值」。
type UpdateIngredientPayload struct {
	Name       string   `json:"name"`
	Quantity   *float64 `json:"quantity,omitempty"`
	Unit       *string  `json:"unit,omitempty"`
	ExpiryDate *string  `json:"expiry_date,omitempty"`
}

// DeleteIngredientPayload delete_ingredient 的資料
type DeleteIngredientPayload struct {
	Name string `json:"name"`
}

// ListIngredientsPayload list_ingredients 的資料（可省略）
type ListIngredientsPayload struct {
	Category string `json:"category,omitempty"`
}

// SearchRecipesPayload search_recipes 的資料
type SearchRecipesPayload struct {
	Query       string `json:"query"`
	Category    string `json:"category,omitempty"`
	MinServings int    `json:"min_servings,omitempty"`
}

// AddRecipePayload add_recipe 的資料
type AddRecipePayload struct {
	Name        string              `json:"name"`
	Ingredients []RecipeIngredient  `json:"ingredients"`
	Servings    int                 `json:"servings"`
	URL         string              `json:"url,omitempty"`
	Category    string              `json:"category"`
}

// RecipeIngredient 動作資料中的食譜材料
type RecipeIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// ErrorPayload error 動作的資料
type ErrorPayload struct {
	Message string `json:"message"`
}

// Reply 模型回覆的信封：使用者可見訊息加上可選的動作
type Reply struct {
	Message string  `json:"message"`
	Action  *Action `json:"action,omitempty"`
}
