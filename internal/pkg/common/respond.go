package common

import (
	"errors"
	"net/http"
)

// HTTPStatus 依錯誤類型決定 HTTP 狀態碼與錯誤代碼。
// 驗證錯誤是用戶端問題；解讀錯誤與列損壞是伺服器端問題；
// 外部服務不可達回 503。
func HTTPStatus(err error) (int, string) {
	switch {
	case IsValidationError(err):
		return http.StatusBadRequest, ErrCodeValidationFault
	case IsInterpretationError(err):
		return http.StatusInternalServerError, ErrCodeInterpretationFault
	case IsMalformedRecord(err):
		return http.StatusInternalServerError, ErrCodeMalformedRecord
	case IsTransportError(err):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	}

	var ce *CustomError
	if errors.As(err, &ce) && ce.Status != 0 {
		return ce.Status, ce.Code
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}
