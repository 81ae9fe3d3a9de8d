package intent

import (
	"context"

	"home-chef-ai/internal/pkg/common"

	"go.uber.org/zap"
)

// fallbackMessage 模型不可達時的降級回覆；傳輸錯誤不外洩給聊天呼叫端
const fallbackMessage = "抱歉，發生錯誤了，請再試一次。"

// ModelClient 外部語言模型的最小介面
type ModelClient interface {
	Chat(ctx context.Context, messages []common.ChatMessage) (string, error)
}

// Interpreter 意圖解讀器
type Interpreter struct {
	model ModelClient
}

// NewInterpreter 創建意圖解讀器
func NewInterpreter(model ModelClient) *Interpreter {
	return &Interpreter{model: model}
}

// Interpret 把固定指令接在對話歷史前面送給模型，再從原始回覆抽出動作。
// 模型不可達時返回降級回覆（沒有動作、沒有錯誤）；
// 模型承諾了 JSON 卻交付無效 JSON 時返回 InterpretationError。
func (i *Interpreter) Interpret(ctx context.Context, history []common.ChatMessage) (*Reply, error) {
	messages := make([]common.ChatMessage, 0, len(history)+1)
	messages = append(messages, common.ChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)

	raw, err := i.model.Chat(ctx, messages)
	if err != nil {
		common.LogError("模型呼叫失敗，返回降級回覆", zap.Error(err))
		return &Reply{Message: fallbackMessage}, nil
	}

	reply, err := ExtractReply(raw)
	if err != nil {
		common.LogError("模型回覆中的 JSON 區塊無效",
			zap.Error(err),
			zap.Int("raw_length", len(raw)),
		)
		return nil, err
	}

	if reply.Action != nil {
		common.LogInfo("解讀出結構化動作",
			zap.String("action_type", string(reply.Action.Type)),
		)
	} else {
		common.LogDebug("模型回覆為純文字，沒有動作")
	}

	return reply, nil
}
