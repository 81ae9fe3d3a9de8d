// Package chat 串起解讀與分派：一則對話進來，一則回覆出去。
package chat

import (
	"context"

	"home-chef-ai/internal/core/dispatch"
	"home-chef-ai/internal/core/intent"
	"home-chef-ai/internal/pkg/common"

	"go.uber.org/zap"
)

// Response 聊天回合的結果。
// 清單欄位是切片指標：沒有清單操作時整個鍵省略，
// 過濾後沒有命中時輸出明確的空陣列，兩者在 JSON 上可區分
// （omitempty 會把非 nil 的空切片也省掉，不能直接用）。
type Response struct {
	Message     string               `json:"message"`
	Action      *intent.Action       `json:"action,omitempty"`
	Ingredients *[]common.Ingredient `json:"ingredients,omitempty"`
	Recipes     *[]common.Recipe     `json:"recipes,omitempty"`
	Category    string               `json:"category,omitempty"`
}

// Service 聊天服務
type Service struct {
	interpreter *intent.Interpreter
	dispatcher  *dispatch.Dispatcher
}

// NewService 創建聊天服務
func NewService(interpreter *intent.Interpreter, dispatcher *dispatch.Dispatcher) *Service {
	return &Service{
		interpreter: interpreter,
		dispatcher:  dispatcher,
	}
}

// Handle 處理一個聊天回合：解讀對話歷史，有動作就執行。
// 純文字回覆（沒有動作）直接轉述，不碰記錄儲存。
func (s *Service) Handle(ctx context.Context, history []common.ChatMessage) (*Response, error) {
	reply, err := s.interpreter.Interpret(ctx, history)
	if err != nil {
		return nil, err
	}

	if reply.Action == nil {
		return &Response{Message: reply.Message}, nil
	}

	result, err := s.dispatcher.Dispatch(ctx, reply.Action)
	if err != nil {
		return nil, err
	}

	// 動作有自己的確認訊息時優先採用
	msg := result.Message
	if msg == "" {
		msg = reply.Message
	}

	common.LogInfo("聊天回合完成",
		zap.String("action_type", string(reply.Action.Type)),
	)

	resp := &Response{
		Message:  msg,
		Action:   reply.Action,
		Category: result.Category,
	}
	if result.Ingredients != nil {
		resp.Ingredients = &result.Ingredients
	}
	if result.Recipes != nil {
		resp.Recipes = &result.Recipes
	}
	return resp, nil
}
