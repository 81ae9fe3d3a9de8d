package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Ingredient 庫存中的一項食材
// ID 來自試算表的列位置（刪除列之後後續的 ID 會前移，見 sheets adapter 說明）
type Ingredient struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Quantity   float64    `json:"quantity"`
	Unit       string     `json:"unit"`
	Category   string     `json:"category"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RecipeIngredient 食譜中的一項材料
type RecipeIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Recipe 食譜
type Recipe struct {
	ID          int                `json:"id"`
	Name        string             `json:"name"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Servings    int                `json:"servings"`
	URL         string             `json:"url,omitempty"`
	Category    string             `json:"category"`
	LastCooked  *time.Time         `json:"last_cooked,omitempty"`
}

// ChatMessage 對話中的一則訊息
type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// FormatQuantity 將數量轉為最短的十進位表示（300 而非 300.000000）
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// FormatIngredientList 將食材清單轉為回覆用的條列文字
func FormatIngredientList(ingredients []Ingredient) string {
	if len(ingredients) == 0 {
		return "目前庫存是空的。"
	}

	var lines []string
	for _, ing := range ingredients {
		line := fmt.Sprintf("- %s: %s%s (%s)", ing.Name, FormatQuantity(ing.Quantity), ing.Unit, ing.Category)
		if ing.ExpiryDate != nil {
			line += fmt.Sprintf(" 期限: %s", ing.ExpiryDate.Format("2006-01-02"))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatRecipeList 將食譜清單轉為回覆用的條列文字
func FormatRecipeList(recipes []Recipe) string {
	if len(recipes) == 0 {
		return "找不到符合條件的食譜。"
	}

	var lines []string
	for _, r := range recipes {
		var names []string
		for _, ing := range r.Ingredients {
			names = append(names, ing.Name)
		}
		line := fmt.Sprintf("- %s（%d人份）：%s", r.Name, r.Servings, strings.Join(names, "、"))
		if r.URL != "" {
			line += fmt.Sprintf("\n  %s", r.URL)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
