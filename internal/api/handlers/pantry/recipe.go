package pantry

import (
	"net/http"
	"strconv"
	"strings"

	"home-chef-ai/internal/core/dispatch"
	"home-chef-ai/internal/core/intent"
	"home-chef-ai/internal/core/scraper"
	"home-chef-ai/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecipeHandler 食譜處理器
type RecipeHandler struct {
	dispatcher *dispatch.Dispatcher
	scraper    *scraper.Scraper
}

// NewRecipeHandler 創建食譜處理器。scraper 可為 nil（停用擷取端點）。
func NewRecipeHandler(dispatcher *dispatch.Dispatcher, s *scraper.Scraper) *RecipeHandler {
	return &RecipeHandler{dispatcher: dispatcher, scraper: s}
}

func (h *RecipeHandler) dispatch(c *gin.Context, typ intent.ActionType, payload interface{}) (*dispatch.Result, bool) {
	var data []byte
	if payload != nil {
		raw, err := common.ToJSON(payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.ErrorResponse{
				Code:    common.ErrCodeInternalError,
				Message: "序列化動作資料失敗",
			})
			return nil, false
		}
		data = []byte(raw)
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), &intent.Action{Type: typ, Data: data})
	if err != nil {
		status, code := common.HTTPStatus(err)
		common.LogError("REST 動作失敗",
			zap.Error(err),
			zap.String("type", string(typ)),
		)
		msg := "處理請求時發生錯誤"
		if status == http.StatusBadRequest {
			msg = err.Error()
		}
		c.JSON(status, common.ErrorResponse{Code: code, Message: msg})
		return nil, false
	}
	return result, true
}

// ListRecipes 處理 GET /api/v1/recipes
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	result, ok := h.dispatch(c, intent.ActionSearchRecipes, intent.SearchRecipesPayload{})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": result.Recipes})
}

// AddRecipe 處理 POST /api/v1/recipes
func (h *RecipeHandler) AddRecipe(c *gin.Context) {
	var payload intent.AddRecipePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "請求格式錯誤",
			Details: err.Error(),
		})
		return
	}

	result, ok := h.dispatch(c, intent.ActionAddRecipe, payload)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": result.Message})
}

// SearchRecipes 處理 GET /api/v1/recipes/search?query=&category=&min_servings=&ingredients=
// ingredients 是逗號分隔的材料名稱，任一命中即符合。
func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	payload := intent.SearchRecipesPayload{
		Query:    c.Query("query"),
		Category: c.Query("category"),
	}
	if raw := c.Query("min_servings"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "min_servings 必須是非負整數",
			})
			return
		}
		payload.MinServings = n
	}

	result, ok := h.dispatch(c, intent.ActionSearchRecipes, payload)
	if !ok {
		return
	}

	recipes := result.Recipes
	if raw := c.Query("ingredients"); raw != "" {
		var terms []string
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				terms = append(terms, t)
			}
		}
		filtered := make([]common.Recipe, 0, len(recipes))
		for _, r := range recipes {
			for _, term := range terms {
				if dispatch.RecipeMatches(r, term, "", 0) {
					filtered = append(filtered, r)
					break
				}
			}
		}
		recipes = filtered
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// UpdateRecipe 處理 PUT /api/v1/recipes/:name
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var upd dispatch.RecipeUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "請求格式錯誤",
			Details: err.Error(),
		})
		return
	}

	result, err := h.dispatcher.UpdateRecipe(c.Request.Context(), c.Param("name"), upd)
	if err != nil {
		status, code := common.HTTPStatus(err)
		msg := "處理請求時發生錯誤"
		if status == http.StatusBadRequest {
			msg = err.Error()
		}
		c.JSON(status, common.ErrorResponse{Code: code, Message: msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": result.Message})
}

// DeleteRecipe 處理 DELETE /api/v1/recipes/:name
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	result, err := h.dispatcher.DeleteRecipe(c.Request.Context(), c.Param("name"))
	if err != nil {
		status, code := common.HTTPStatus(err)
		msg := "處理請求時發生錯誤"
		if status == http.StatusBadRequest {
			msg = err.Error()
		}
		c.JSON(status, common.ErrorResponse{Code: code, Message: msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": result.Message})
}

// ClipRequest 食譜擷取請求
type ClipRequest struct {
	URL string `json:"url" binding:"required"`
}

// ClipRecipe 處理 POST /api/v1/recipes/clip：
// 抓取網址、抽出食譜、存進食譜表
func (h *RecipeHandler) ClipRecipe(c *gin.Context) {
	if h.scraper == nil {
		c.JSON(http.StatusServiceUnavailable, common.ErrorResponse{
			Code:    common.ErrCodeServiceUnavailable,
			Message: "食譜擷取功能未啟用",
		})
		return
	}

	var req ClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "請求格式錯誤",
			Details: err.Error(),
		})
		return
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "url 必須是 http(s) 網址",
		})
		return
	}

	clipped, err := h.scraper.Clip(c.Request.Context(), req.URL)
	if err != nil {
		status, code := common.HTTPStatus(err)
		common.LogError("食譜擷取失敗",
			zap.Error(err),
			zap.String("url", req.URL),
		)
		c.JSON(status, common.ErrorResponse{Code: code, Message: "擷取食譜失敗"})
		return
	}

	payload := intent.AddRecipePayload{
		Name:     clipped.Name,
		Servings: clipped.Servings,
		URL:      req.URL,
		Category: clipped.Category,
	}
	for _, ing := range clipped.Ingredients {
		payload.Ingredients = append(payload.Ingredients, intent.RecipeIngredient{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}

	result, ok := h.dispatch(c, intent.ActionAddRecipe, payload)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": result.Message,
		"recipe":  clipped,
	})
}
