// Package pantry 提供庫存與食譜的 REST 端點。
// 與聊天端點共用同一個分派器，兩邊的寫入行為保證一致。
package pantry

import (
	"net/http"

	"home-chef-ai/internal/core/dispatch"
	"home-chef-ai/internal/core/intent"
	"home-chef-ai/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 庫存處理器
type Handler struct {
	dispatcher *dispatch.Dispatcher
}

// NewHandler 創建庫存處理器
func NewHandler(dispatcher *dispatch.Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

// dispatch 組出動作交給分派器，統一做錯誤轉換
func (h *Handler) dispatch(c *gin.Context, typ intent.ActionType, payload interface{}) (*dispatch.Result, bool) {
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

// ListIngredients 處理 GET /api/v1/ingredients?category=
func (h *Handler) ListIngredients(c *gin.Context) {
	payload := intent.ListIngredientsPayload{Category: c.Query("category")}

	result, ok := h.dispatch(c, intent.ActionListIngredients, payload)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": result.Ingredients})
}

// AddIngredient 處理 POST /api/v1/ingredients
func (h *Handler) AddIngredient(c *gin.Context) {
	var payload intent.AddIngredientPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "請求格式錯誤",
			Details: err.Error(),
		})
		return
	}

	result, ok := h.dispatch(c, intent.ActionAddIngredient, payload)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": result.Message})
}

// UpdateIngredient 處理 PUT /api/v1/ingredients/:name
func (h *Handler) UpdateIngredient(c *gin.Context) {
	var payload intent.UpdateIngredientPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "請求格式錯誤",
			Details: err.Error(),
		})
		return
	}
	payload.Name = c.Param("name")

	result, ok := h.dispatch(c, intent.ActionUpdateIngredient, payload)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": result.Message})
}

// DeleteIngredient 處理 DELETE /api/v1/ingredients/:name
func (h *Handler) DeleteIngredient(c *gin.Context) {
	payload := intent.DeleteIngredientPayload{Name: c.Param("name")}

	result, ok := h.dispatch(c, intent.ActionDeleteIngredient, payload)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": result.Message})
}
