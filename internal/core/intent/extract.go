package intent

import (
	"strings"

	"home-chef-ai/internal/pkg/common"
)

// ExtractReply 從模型的原始文字抽出回覆信封。
// 抽取策略依序為：
//  1. 找出 ```json 圍欄區塊並解析其內容——模型既然宣告了結構，
//     區塊內的無效 JSON 就是硬錯誤（InterpretationError）；
//  2. 沒有圍欄時，嘗試把整段文字當 JSON 解析；
//  3. 仍失敗則整段視為純文字回覆，沒有動作。
//
// 純函數，方便獨立測試。
func ExtractReply(raw string) (*Reply, error) {
	trimmed := strings.TrimSpace(raw)

	if block, ok := fencedBlock(trimmed); ok {
		var reply Reply
		if err := common.ParseJSON(block, &reply); err != nil {
			return nil, common.NewInterpretationError(raw, err)
		}
		return normalizeReply(&reply, raw), nil
	}

	var reply Reply
	if err := common.ParseJSON(trimmed, &reply); err == nil {
		return normalizeReply(&reply, raw), nil
	}

	// 沒有承諾過結構，整段當作助理的純文字回覆
	return &Reply{Message: raw}, nil
}

// fencedBlock 取出第一個 ``` 圍欄區塊的內容。
// 接受 ```json 與未標記語言的 ```，語言標籤不分大小寫；
// 標籤與內容同一行（沒有換行）也要剝掉標籤。
// 標了其他語言的區塊不算 JSON 承諾。
func fencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start == -1 {
		return "", false
	}

	rest := s[start+3:]
	if end := strings.Index(rest, "```"); end != -1 {
		rest = rest[:end]
	}
	// 圍欄沒有閉合時整段保留，模型仍承諾了結構

	trimmed := strings.TrimLeft(rest, " \t")
	switch {
	case strings.HasPrefix(strings.ToLower(trimmed), "json"):
		after := trimmed[len("json"):]
		// 標籤後必須接內容或空白，jsonc 之類的其他標籤不算
		if after != "" && !strings.ContainsAny(after[:1], " \t\r\n{[") {
			return "", false
		}
		trimmed = after
	case trimmed == "", strings.HasPrefix(trimmed, "\n"),
		strings.HasPrefix(trimmed, "{"), strings.HasPrefix(trimmed, "["):
		// 未標記語言的圍欄
	default:
		return "", false
	}

	return strings.TrimSpace(trimmed), true
}

// normalizeReply 解析成功但缺 message 時，以原始文字墊底，
// 避免使用者收到空白回覆
func normalizeReply(reply *Reply, raw string) *Reply {
	if reply.Message == "" && reply.Action == nil {
		reply.Message = raw
	}
	return reply
}
