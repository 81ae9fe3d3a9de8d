// Package category 將自由文字的分類標籤解析為固定的正規分類。
package category

import "strings"

// 正規分類
const (
	Meat      = "肉類"
	Seafood   = "海鮮"
	Vegetable = "蔬菜"
	Fruit     = "水果"
	Dairy     = "乳製品"
	Seasoning = "調味料"
	Other     = "其他"
)

// synonyms 多對一的同義詞表。鍵一律為 trim + 小寫後的形式。
// 歷史資料同時存在中日英三種寫法，表中都要涵蓋。
var synonyms = map[string]string{
	// 肉類
	"肉類": Meat, "肉类": Meat, "肉": Meat, "お肉": Meat, "ミート": Meat,
	"meat": Meat, "pork": Meat, "beef": Meat, "chicken": Meat,

	// 海鮮
	"海鮮": Seafood, "海鲜": Seafood, "魚介類": Seafood, "魚介": Seafood,
	"シーフード": Seafood, "魚": Seafood, "水產": Seafood,
	"seafood": Seafood, "fish": Seafood,

	// 蔬菜
	"蔬菜": Vegetable, "野菜": Vegetable, "やさい": Vegetable, "青菜": Vegetable,
	"vegetable": Vegetable, "vegetables": Vegetable, "veggie": Vegetable,

	// 水果
	"水果": Fruit, "果物": Fruit, "フルーツ": Fruit,
	"fruit": Fruit, "fruits": Fruit,

	// 乳製品
	"乳製品": Dairy, "乳制品": Dairy, "奶製品": Dairy, "牛乳": Dairy,
	"dairy": Dairy, "milk": Dairy,

	// 調味料
	"調味料": Seasoning, "调味料": Seasoning, "佐料": Seasoning,
	"香辛料": Seasoning, "スパイス": Seasoning,
	"seasoning": Seasoning, "spice": Seasoning, "spices": Seasoning,
	"condiment": Seasoning,

	// 其他
	"其他": Other, "その他": Other, "雜項": Other,
	"other": Other, "others": Other, "misc": Other,
}

// Normalize 將原始標籤解析為正規分類。
// 查表前先 trim 並小寫；查不到時原樣返回輸入（不是 trim 後的形式），
// 呼叫端不可假設結果一定是正規分類。空輸入返回空字串。
func Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	if canonical, ok := synonyms[key]; ok {
		return canonical
	}
	return raw
}

// IsCanonical 檢查標籤是否為正規分類之一
func IsCanonical(label string) bool {
	switch label {
	case Meat, Seafood, Vegetable, Fruit, Dairy, Seasoning, Other:
		return true
	}
	return false
}
