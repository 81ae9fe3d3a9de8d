package chat

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"home-chef-ai/internal/core/dispatch"
	"home-chef-ai/internal/core/intent"
	"home-chef-ai/internal/pkg/common"
)

type stubModel struct {
	response string
}

func (m *stubModel) Chat(_ context.Context, _ []common.ChatMessage) (string, error) {
	return m.response, nil
}

// trackingStore 記錄儲存是否被碰到
type trackingStore struct {
	reads  int
	writes int
	rows   [][]string
}

func (s *trackingStore) ReadRows(_ context.Context, _ string) ([][]string, error) {
	s.reads++
	return s.rows, nil
}

func (s *trackingStore) CountRows(_ context.Context, _ string) (int, error) {
	s.reads++
	return len(s.rows), nil
}

func (s *trackingStore) Append(_ context.Context, _ string, rows [][]string) error {
	s.writes++
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *trackingStore) UpdateRow(_ context.Context, _ string, _ int, _ []string) error {
	s.writes++
	return nil
}

func (s *trackingStore) DeleteRow(_ context.Context, _ string, _ int) error {
	s.writes++
	return nil
}

func (s *trackingStore) WithSheetLock(_ string, fn func() error) error {
	return fn()
}

func newTestService(model *stubModel, store *trackingStore) *Service {
	interp := intent.NewInterpreter(model)
	disp := dispatch.NewDispatcher(store, "Ingredients", "Recipes")
	return NewService(interp, disp)
}

func TestHandleProseShortCircuitsDispatch(t *testing.T) {
	store := &trackingStore{}
	svc := newTestService(&stubModel{response: "今晚可以做咖哩飯喔。"}, store)

	resp, err := svc.Handle(context.Background(), []common.ChatMessage{
		{Role: "user", Content: "晚餐吃什麼好？"},
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Message != "今晚可以做咖哩飯喔。" || resp.Action != nil {
		t.Errorf("resp = %+v", resp)
	}
	// 純文字回覆不碰記錄儲存
	if store.reads != 0 || store.writes != 0 {
		t.Errorf("store touched: reads=%d writes=%d", store.reads, store.writes)
	}
}

func TestHandleEmptyFilteredListKeepsEmptyArray(t *testing.T) {
	// 庫存只有肉類，過濾海鮮後是空清單
	store := &trackingStore{rows: [][]string{
		{"1", "豬肉", "300", "g", "", "2026-08-01T00:00:00Z", "肉類"},
	}}
	svc := newTestService(&stubModel{
		response: `{"message": "清單如下。", "action": {"type": "list_ingredients", "data": {"category": "海鮮"}}}`,
	}, store)

	resp, err := svc.Handle(context.Background(), []common.ChatMessage{
		{Role: "user", Content: "海鮮有哪些？"},
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// 有過濾但沒有命中：ingredients 鍵必須存在且是空陣列，
	// 不可與「沒有清單操作」混同
	if !strings.Contains(string(raw), `"ingredients":[]`) {
		t.Errorf("marshaled = %s, want explicit empty ingredients array", raw)
	}
}

func TestHandleProseOmitsListKeys(t *testing.T) {
	store := &trackingStore{}
	svc := newTestService(&stubModel{response: "好的，我知道了。"}, store)

	resp, err := svc.Handle(context.Background(), []common.ChatMessage{
		{Role: "user", Content: "謝謝"},
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "ingredients") || strings.Contains(string(raw), "recipes") {
		t.Errorf("marshaled = %s, list keys must be omitted when no list was requested", raw)
	}
}

func TestHandleActionExecutes(t *testing.T) {
	store := &trackingStore{}
	svc := newTestService(&stubModel{
		response: `{"message": "好的。", "action": {"type": "add_ingredient", "data": {"name": "豬肉", "quantity": 300, "unit": "g", "category": "肉"}}}`,
	}, store)

	resp, err := svc.Handle(context.Background(), []common.ChatMessage{
		{Role: "user", Content: "買了300克豬肉"},
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if store.writes != 1 {
		t.Errorf("writes = %d, want 1", store.writes)
	}
	// 分派器的確認訊息優先於模型的 message
	for _, want := range []string{"豬肉", "300", "g"} {
		if !strings.Contains(resp.Message, want) {
			t.Errorf("Message = %q, missing %q", resp.Message, want)
		}
	}
	if resp.Action == nil || resp.Action.Type != intent.ActionAddIngredient {
		t.Errorf("Action = %+v", resp.Action)
	}
}
