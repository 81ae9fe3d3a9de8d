package category

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"CanonicalPassthrough", "肉類", Meat},
		{"JapaneseSynonym", "肉", Meat},
		{"JapaneseVegetable", "野菜", Vegetable},
		{"EnglishLowercase", "meat", Meat},
		{"EnglishMixedCase", "MeAt", Meat},
		{"Whitespace", "  seafood \t", Seafood},
		{"Katakana", "フルーツ", Fruit},
		{"Empty", "", ""},
		{"WhitespaceOnly", "   ", ""},
		{"UnknownKeepsOriginal", "謎の食材", "謎の食材"},
		// 查不到時必須返回原始輸入，而不是 trim/小寫後的形式
		{"UnknownKeepsUntrimmed", " Mystery ", " Mystery "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"肉", "肉類", "meat", "野菜", "seafood", "謎の食材", "", " Mystery "}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestIsCanonical(t *testing.T) {
	for _, c := range []string{Meat, Seafood, Vegetable, Fruit, Dairy, Seasoning, Other} {
		if !IsCanonical(c) {
			t.Errorf("IsCanonical(%q) = false, want true", c)
		}
	}
	if IsCanonical("肉") {
		t.Error("IsCanonical(\"肉\") = true, want false")
	}
}
