// Package scraper 從食譜網站頁面擷取結構化食譜。
// 流程：抓取 HTML、裁掉雜訊節點、擷取主要文字，再交給模型抽出嚴格 JSON。
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"home-chef-ai/internal/core/ai/cache"
	"home-chef-ai/internal/pkg/common"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// maxContentChars 送給模型的頁面文字上限
const maxContentChars = 12000

// Generator 單輪提示的模型介面
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClippedRecipe 從頁面抽出的食譜
type ClippedRecipe struct {
	Name        string                    `json:"name"`
	Ingredients []common.RecipeIngredient `json:"ingredients"`
	Servings    int                       `json:"servings"`
	Category    string                    `json:"category"`
}

// Scraper 食譜擷取器
type Scraper struct {
	client *resty.Client
	model  Generator
	store  cache.Store
	ttl    time.Duration
}

// NewScraper 創建擷取器。store 可為 nil（不快取）。
func NewScraper(model Generator, store cache.Store, ttl time.Duration) *Scraper {
	client := resty.New().
		SetTimeout(20 * time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; HomeChefBot/1.0)")

	return &Scraper{
		client: client,
		model:  model,
		store:  store,
		ttl:    ttl,
	}
}

// Clip 抓取指定網址的頁面並抽出食譜。同一個網址的結果會快取。
func (s *Scraper) Clip(ctx context.Context, url string) (*ClippedRecipe, error) {
	if s.store != nil {
		if cached, ok := s.store.Get(ctx, "clip:"+url); ok {
			common.LogDebug("食譜擷取快取命中", zap.String("url", url))
			var recipe ClippedRecipe
			if err := common.ParseJSON(cached, &recipe); err == nil {
				return &recipe, nil
			}
		}
	}

	content, err := s.fetchContent(ctx, url)
	if err != nil {
		return nil, err
	}

	recipe, err := s.extract(ctx, url, content)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if raw, err := common.ToJSON(recipe); err == nil {
			s.store.Set(ctx, "clip:"+url, raw, s.ttl)
		}
	}
	return recipe, nil
}

// fetchContent 抓取頁面並擷取主要文字
func (s *Scraper) fetchContent(ctx context.Context, url string) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", common.NewTransportError("scraper", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", common.NewTransportError("scraper",
			fmt.Errorf("fetch %s: status %d", url, resp.StatusCode()))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	// 去掉與內容無關的節點
	doc.Find("script, style, nav, header, footer, iframe, noscript").Remove()

	content := selectContent(doc, url)
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("no readable content at %s", url)
	}

	content = collapseWhitespace(content)
	if len(content) > maxContentChars {
		content = truncateAtRune(content, maxContentChars)
	}
	return content, nil
}

// truncateAtRune 在不超過 max 位元組的前提下於字元邊界截斷，
// 避免把多位元組字元切成無效的 UTF-8
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// selectContent 已知站點用專屬選擇器，其他站點退回整個 body
func selectContent(doc *goquery.Document, url string) string {
	var selectors []string
	switch {
	case strings.Contains(url, "cookpad.com"):
		selectors = []string{"#recipe", ".recipe-show", "main"}
	case strings.Contains(url, "kurashiru.com"):
		selectors = []string{".recipe-detail", "main"}
	case strings.Contains(url, "delishkitchen.tv"):
		selectors = []string{".recipe-detail-container", "main"}
	default:
		selectors = []string{"article", "main"}
	}

	for _, sel := range selectors {
		if node := doc.Find(sel); node.Length() > 0 {
			return node.Text()
		}
	}
	return doc.Find("body").Text()
}

// extract 把頁面文字交給模型抽出嚴格 JSON 的食譜
func (s *Scraper) extract(ctx context.Context, url, content string) (*ClippedRecipe, error) {
	prompt := fmt.Sprintf(`以下是一個食譜網頁的文字內容。請抽出食譜並只輸出一個 JSON 物件，不要任何其他文字：
{"name": "食譜名", "ingredients": [{"name": "材料名", "quantity": 數量, "unit": "單位"}], "servings": 人數, "category": "分類"}
分類請使用：肉類、海鮮、蔬菜、水果、乳製品、調味料、其他。
數量無法判斷時填 0，人數無法判斷時填 2。

頁面內容：
%s`, content)

	raw, err := s.model.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var recipe ClippedRecipe
	if err := common.ParseJSON(stripFence(raw), &recipe); err != nil {
		return nil, common.NewInterpretationError(raw, fmt.Errorf("invalid recipe JSON: %w", err))
	}
	if strings.TrimSpace(recipe.Name) == "" || len(recipe.Ingredients) == 0 {
		return nil, common.NewInterpretationError(raw, fmt.Errorf("recipe missing name or ingredients"))
	}
	if recipe.Servings <= 0 {
		recipe.Servings = 2
	}

	common.LogInfo("食譜擷取完成",
		zap.String("url", url),
		zap.String("name", recipe.Name),
		zap.Int("ingredients", len(recipe.Ingredients)),
	)
	return &recipe, nil
}

// stripFence 容忍模型把 JSON 包在圍欄裡
func stripFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
