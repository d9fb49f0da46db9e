package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 注文ワークフローのエラー。呼び出し側がerrors.Isで区別できるよう名前付きで持つ
var (
	//対象の注文が存在しない
	ErrOrderNotFound = NewHTTPError(http.StatusNotFound, "order not found")
	//現在のステータスから到達できない遷移
	ErrInvalidTransition = NewHTTPError(http.StatusBadRequest, "invalid status transition")
	//すでにキャンセル済み
	ErrAlreadyCancelled = NewHTTPError(http.StatusBadRequest, "order is already cancelled")
	//発送後はキャンセル申請できない
	ErrTooLateToCancel = NewHTTPError(http.StatusBadRequest, "order cannot be cancelled at this stage")
	//pendingの申請がすでにある
	ErrDuplicateRequest = NewHTTPError(http.StatusBadRequest, "cancellation request already submitted")
	//処理対象のキャンセル申請が無い
	ErrNoRequestFound = NewHTTPError(http.StatusBadRequest, "no cancellation request found")
	//返金対象の支払いが無い（代引きなど）
	ErrNoPaymentToRefund = NewHTTPError(http.StatusBadRequest, "no successful payment found to refund")
	//authorizedの支払いの確定に失敗した。注文には何も書かない
	ErrCaptureFailed = NewHTTPError(http.StatusBadRequest, "payment capture failed")
	//支払いがcapturedでもauthorizedでもない
	ErrPaymentNotCaptured = NewHTTPError(http.StatusBadRequest, "payment is not captured")
	//pendingのキャンセル申請がある間はステータスを進めない
	ErrCancellationPending = NewHTTPError(http.StatusConflict, "cancellation request is pending")
	//ゲートウェイのキーが未設定
	ErrGatewayNotConfigured = NewHTTPError(http.StatusBadRequest, "payment gateway not configured")
	//同じ注文への操作と競合した
	ErrConflict = NewHTTPError(http.StatusConflict, "conflict")
	//500
	ErrInternalDB = NewHTTPError(http.StatusInternalServerError, "db error")
)
