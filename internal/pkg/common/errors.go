package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 動作資料缺少必要欄位等驗證錯誤
// 在任何試算表寫入之前就會被擋下
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{message: fmt.Sprintf(format, args...)}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// MalformedRecordError 試算表列無法解碼（數值或日期欄位損壞）
// 列表操作逐列跳過並記錄，不會整批失敗
type MalformedRecordError struct {
	Row    []string
	Reason error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %v: %v", e.Row, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Reason
}

// NewMalformedRecordError 創建列解碼錯誤
func NewMalformedRecordError(row []string, reason error) error {
	return &MalformedRecordError{Row: row, Reason: reason}
}

// IsMalformedRecord 檢查是否為列解碼錯誤
func IsMalformedRecord(err error) bool {
	var me *MalformedRecordError
	return errors.As(err, &me)
}

// InterpretationError 模型宣告了 JSON 結構卻交付無效 JSON
// 與單純的純文字回覆不同，這是請求層級的失敗
type InterpretationError struct {
	Raw    string
	Reason error
}

func (e *InterpretationError) Error() string {
	return fmt.Sprintf("model committed to JSON but delivered invalid JSON: %v", e.Reason)
}

func (e *InterpretationError) Unwrap() error {
	return e.Reason
}

// NewInterpretationError 創建解讀錯誤
func NewInterpretationError(raw string, reason error) error {
	return &InterpretationError{Raw: raw, Reason: reason}
}

// IsInterpretationError 檢查是否為解讀錯誤
func IsInterpretationError(err error) bool {
	var ie *InterpretationError
	return errors.As(err, &ie)
}

// TransportError 外部服務（模型或試算表）不可達或逾時
// 重試一次之後才會浮出到外層
type TransportError struct {
	Service string
	Reason  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Service, e.Reason)
}

func (e *TransportError) Unwrap() error {
	return e.Reason
}

// NewTransportError 創建傳輸層錯誤
func NewTransportError(service string, reason error) error {
	return &TransportError{Service: service, Reason: reason}
}

// IsTransportError 檢查是否為傳輸層錯誤
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeUnauthorized    = "UNAUTHORIZED"      // 401
	ErrCodeForbidden       = "FORBIDDEN"         // 403
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"   // 408
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429
	ErrCodeValidationFault = "VALIDATION_FAULT"  // 400

	// 服務器錯誤 (5xx)
	ErrCodeInternalError       = "INTERNAL_ERROR"       // 500
	ErrCodeInterpretationFault = "INTERPRETATION_FAULT" // 500
	ErrCodeMalformedRecord     = "MALFORMED_RECORD"     // 500
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"  // 503
	ErrCodeGatewayTimeout      = "GATEWAY_TIMEOUT"      // 504
)

// 預定義錯誤
var (
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrUnauthorized    = NewError(ErrCodeUnauthorized, "未授權的訪問", http.StatusUnauthorized, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrRequestTimeout  = NewError(ErrCodeRequestTimeout, "請求超時", http.StatusRequestTimeout, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrCacheFull     = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
	ErrCacheDisabled = NewError("CACHE_DISABLED", "緩存已禁用", http.StatusServiceUnavailable, nil)
	ErrCacheMiss     = NewError("CACHE_MISS", "緩存未命中", http.StatusNotFound, nil)
	ErrAIService     = NewError("AI_SERVICE_ERROR", "AI 服務錯誤", http.StatusServiceUnavailable, nil)
)
