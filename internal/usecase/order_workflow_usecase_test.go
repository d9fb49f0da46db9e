package usecase

import (
	"context"
	"errors"
	"testing"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newWorkflowForTest(orders *orderRepoMock, settings *settingsRepoMock, gw *gatewayMock, audit *auditRepoMock) *OrderWorkflowUsecase {
	return NewOrderWorkflowUsecase(orders, settings, fixedGateway(gw), audit, zap.NewNop().Sugar())
}

func placedOrder() model.Order {
	return model.Order{
		ID:            1,
		OrderID:       "ORD-1",
		Status:        model.OrderStatusPlaced,
		PaymentStatus: model.PaymentStatusPending,
		TotalAmount:   500,
	}
}

func paidOrder(status model.OrderStatus) model.Order {
	o := placedOrder()
	o.Status = status
	o.PaymentStatus = model.PaymentStatusSuccess
	o.PaymentID = "pay_123"
	return o
}

// =====================
// AdvanceStatus
// =====================

func TestAdvanceStatus_PlacedToConfirmed(t *testing.T) {
	orders := new(orderRepoMock)
	audit := new(auditRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), audit)

	o := placedOrder()
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)

	var gotPred repo.OrderPredicate
	var gotPatch repo.OrderPatch
	updated := o
	updated.Status = model.OrderStatusConfirmed
	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotPred = args.Get(2).(repo.OrderPredicate)
			gotPatch = args.Get(3).(repo.OrderPatch)
		}).
		Return(updated, nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.AdvanceStatus(context.Background(), "admin-1", "ORD-1", model.OrderStatusConfirmed)
	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, out.Status)

	//述語は読み取った時点のステータス、かつpending申請なし
	assert.Equal(t, []model.OrderStatus{model.OrderStatusPlaced}, gotPred.StatusIn)
	assert.True(t, gotPred.NoPendingCancellation)

	//マイルストーン時刻は同じ更新に含まれる
	assert.NotNil(t, gotPatch.ConfirmedDate)
	assert.Nil(t, gotPatch.ShippedDate)

	audit.AssertExpectations(t)
}

func TestAdvanceStatus_UnknownTarget(t *testing.T) {
	uc := newWorkflowForTest(new(orderRepoMock), new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	_, err := uc.AdvanceStatus(context.Background(), "admin-1", "ORD-1", model.OrderStatus("processing"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdvanceStatus_SkippingStageIsRejected(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(placedOrder(), nil)

	_, err := uc.AdvanceStatus(context.Background(), "admin-1", "ORD-1", model.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	orders.AssertNotCalled(t, "UpdateIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdvanceStatus_NoRegressionFromDelivered(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	o := placedOrder()
	o.Status = model.OrderStatusDelivered
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)

	for _, target := range []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusPacked,
		model.OrderStatusShipped,
		model.OrderStatusCancelled,
	} {
		_, err := uc.AdvanceStatus(context.Background(), "admin-1", "ORD-1", target)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
	orders.AssertNotCalled(t, "UpdateIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdvanceStatus_BlockedWhilePendingCancellation(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	o := placedOrder()
	o.CancellationRequest.Status = model.CancellationStatusPending
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)

	_, err := uc.AdvanceStatus(context.Background(), "admin-1", "ORD-1", model.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrCancellationPending)
	orders.AssertNotCalled(t, "UpdateIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdvanceStatus_DirectCancelResolvesPendingRequest(t *testing.T) {
	orders := new(orderRepoMock)
	audit := new(auditRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), audit)

	o := placedOrder()
	o.Status = model.OrderStatusConfirmed
	o.CancellationRequest.Status = model.CancellationStatusPending
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)

	var gotPred repo.OrderPredicate
	var gotPatch repo.OrderPatch
	updated := o
	updated.Status = model.OrderStatusCancelled
	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotPred = args.Get(2).(repo.OrderPredicate)
			gotPatch = args.Get(3).(repo.OrderPatch)
		}).
		Return(updated, nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.AdvanceStatus(context.Background(), "admin-1", "ORD-1", model.OrderStatusCancelled)
	assert.NoError(t, err)

	//pendingの申請は同じ1回の更新で閉じる。残すと承認も却下もできない注文になる
	assert.Equal(t, model.CancellationStatusPending, *gotPred.CancellationStatusIs)
	assert.Equal(t, model.OrderStatusCancelled, *gotPatch.Status)
	assert.Equal(t, model.CancellationStatusApproved, *gotPatch.CancellationStatus)
	assert.NotNil(t, gotPatch.CancellationProcessedAt)
}

func TestAdvanceStatus_CancelWithoutRequestGuardsAgainstLateRequest(t *testing.T) {
	orders := new(orderRepoMock)
	audit := new(auditRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), audit)

	o := placedOrder()
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)

	var gotPred repo.OrderPredicate
	updated := o
	updated.Status = model.OrderStatusCancelled
	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotPred = args.Get(2).(repo.OrderPredicate)
		}).
		Return(updated, nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.AdvanceStatus(context.Background(), "admin-1", "ORD-1", model.OrderStatusCancelled)
	assert.NoError(t, err)

	//読み取りと書き込みの間に申請が入ったら条件不成立にする
	assert.True(t, gotPred.NoPendingCancellation)
}

func TestAdvanceStatus_ConflictWhenPredicateFails(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(placedOrder(), nil)
	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).
		Return(model.Order{}, repo.ErrConditionFailed)

	_, err := uc.AdvanceStatus(context.Background(), "admin-1", "ORD-1", model.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAdvanceStatus_NotFound(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	orders.On("FindByOrderID", mock.Anything, "ORD-404").Return(model.Order{}, repo.ErrNotFound)

	_, err := uc.AdvanceStatus(context.Background(), "admin-1", "ORD-404", model.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// =====================
// RequestCancellation
// =====================

func TestRequestCancellation_Success(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(placedOrder(), nil)

	var gotPatch repo.OrderPatch
	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotPatch = args.Get(3).(repo.OrderPatch)
		}).
		Return(model.Order{}, nil)

	err := uc.RequestCancellation(context.Background(), "ORD-1", "ordered by mistake")
	assert.NoError(t, err)

	//配送ステータスは触らない
	assert.Nil(t, gotPatch.Status)
	assert.Equal(t, model.CancellationStatusPending, *gotPatch.CancellationStatus)
	assert.Equal(t, "ordered by mistake", *gotPatch.CancellationReason)
	assert.NotNil(t, gotPatch.CancellationRequestedAt)
}

func TestRequestCancellation_BlankReasonGetsDefault(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(placedOrder(), nil)

	var gotPatch repo.OrderPatch
	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotPatch = args.Get(3).(repo.OrderPatch)
		}).
		Return(model.Order{}, nil)

	err := uc.RequestCancellation(context.Background(), "ORD-1", "   ")
	assert.NoError(t, err)
	assert.Equal(t, "No reason provided", *gotPatch.CancellationReason)
}

func TestRequestCancellation_DuplicateRequest(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	o := placedOrder()
	o.CancellationRequest.Status = model.CancellationStatusPending
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)

	err := uc.RequestCancellation(context.Background(), "ORD-1", "again")
	assert.ErrorIs(t, err, ErrDuplicateRequest)
	orders.AssertNotCalled(t, "UpdateIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestCancellation_TooLateAfterShipping(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	o := placedOrder()
	o.Status = model.OrderStatusShipped
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)

	err := uc.RequestCancellation(context.Background(), "ORD-1", "too late")
	assert.ErrorIs(t, err, ErrTooLateToCancel)
}

func TestRequestCancellation_AlreadyCancelled(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	o := placedOrder()
	o.Status = model.OrderStatusCancelled
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)

	err := uc.RequestCancellation(context.Background(), "ORD-1", "")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestRequestCancellation_RaceRereadsForExactError(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	//事前チェックは通るが、書き込み時点では出荷済みに変わっていた
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(placedOrder(), nil).Once()
	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).
		Return(model.Order{}, repo.ErrConditionFailed)

	shipped := placedOrder()
	shipped.Status = model.OrderStatusShipped
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(shipped, nil).Once()

	err := uc.RequestCancellation(context.Background(), "ORD-1", "late")
	assert.ErrorIs(t, err, ErrTooLateToCancel)
}

// =====================
// RejectCancellation
// =====================

func TestRejectCancellation_ResumesFulfillment(t *testing.T) {
	orders := new(orderRepoMock)
	audit := new(auditRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), audit)

	o := placedOrder()
	o.Status = model.OrderStatusPacked
	o.CancellationRequest.Status = model.CancellationStatusPending
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)

	var gotPred repo.OrderPredicate
	var gotPatch repo.OrderPatch
	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotPred = args.Get(2).(repo.OrderPredicate)
			gotPatch = args.Get(3).(repo.OrderPatch)
		}).
		Return(model.Order{}, nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.RejectCancellation(context.Background(), "admin-1", "ORD-1")
	assert.NoError(t, err)

	//pendingの申請がある発送前の注文だけ書き換える
	assert.Equal(t, model.CancellationStatusPending, *gotPred.CancellationStatusIs)
	assert.Equal(t, []model.OrderStatus{
		model.OrderStatusPlaced, model.OrderStatusConfirmed, model.OrderStatusPacked,
	}, gotPred.StatusIn)

	//却下で配送を再開できるようステータスをconfirmedへ戻す
	assert.Equal(t, model.OrderStatusConfirmed, *gotPatch.Status)
	assert.Equal(t, model.CancellationStatusRejected, *gotPatch.CancellationStatus)
	assert.NotNil(t, gotPatch.CancellationProcessedAt)

	audit.AssertExpectations(t)
}

func TestRejectCancellation_NoPendingRequest(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(placedOrder(), nil)

	err := uc.RejectCancellation(context.Background(), "admin-1", "ORD-1")
	assert.ErrorIs(t, err, ErrNoRequestFound)
}

func TestRejectCancellation_CancelledOrderStaysCancelled(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	//pendingの申請が残ったcancelled注文を却下してもconfirmedに戻してはいけない
	o := placedOrder()
	o.Status = model.OrderStatusCancelled
	o.CancellationRequest.Status = model.CancellationStatusPending
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)

	err := uc.RejectCancellation(context.Background(), "admin-1", "ORD-1")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	orders.AssertNotCalled(t, "UpdateIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectCancellation_RaceWithDirectCancel(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	//事前チェックは通るが、書き込み時点ではcancelledに変わっていた
	o := placedOrder()
	o.Status = model.OrderStatusConfirmed
	o.CancellationRequest.Status = model.CancellationStatusPending
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil).Once()
	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).
		Return(model.Order{}, repo.ErrConditionFailed)

	cancelled := o
	cancelled.Status = model.OrderStatusCancelled
	cancelled.CancellationRequest.Status = model.CancellationStatusApproved
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(cancelled, nil).Once()

	err := uc.RejectCancellation(context.Background(), "admin-1", "ORD-1")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

// =====================
// ApproveCancellationAndRefund
// =====================

func TestApproveCancellation_RefundSuccess(t *testing.T) {
	orders := new(orderRepoMock)
	settings := new(settingsRepoMock)
	gw := new(gatewayMock)
	audit := new(auditRepoMock)
	uc := newWorkflowForTest(orders, settings, gw, audit)

	o := paidOrder(model.OrderStatusConfirmed)
	o.CancellationRequest = model.CancellationRequest{
		Reason: "changed my mind",
		Status: model.CancellationStatusPending,
	}
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)
	settings.On("Get", mock.Anything).Return(configuredSettings(), nil)

	gw.On("FetchPayment", mock.Anything, "pay_123").
		Return(payment.Payment{Status: payment.PaymentStateCaptured, Captured: true}, nil)
	gw.On("RefundPayment", mock.Anything, "pay_123", int64(500),
		map[string]string{"orderId": "ORD-1", "reason": "changed my mind"}).
		Return(payment.RefundResult{RefundID: "rfnd_1"}, nil)

	var gotPatch repo.OrderPatch
	updated := o
	updated.Status = model.OrderStatusCancelled
	updated.PaymentStatus = model.PaymentStatusRefunded
	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotPatch = args.Get(3).(repo.OrderPatch)
		}).
		Return(updated, nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.ApproveCancellationAndRefund(context.Background(), "admin-1", "ORD-1")
	assert.NoError(t, err)
	assert.True(t, out.Cancelled)
	assert.False(t, out.ManualRefundRequired)

	assert.Equal(t, model.OrderStatusCancelled, *gotPatch.Status)
	assert.Equal(t, model.PaymentStatusRefunded, *gotPatch.PaymentStatus)
	assert.Equal(t, model.CancellationStatusApproved, *gotPatch.CancellationStatus)

	gw.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestApproveCancellation_RefundFailureStillCancels(t *testing.T) {
	orders := new(orderRepoMock)
	settings := new(settingsRepoMock)
	gw := new(gatewayMock)
	audit := new(auditRepoMock)
	uc := newWorkflowForTest(orders, settings, gw, audit)

	o := paidOrder(model.OrderStatusConfirmed)
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)
	settings.On("Get", mock.Anything).Return(configuredSettings(), nil)

	gw.On("FetchPayment", mock.Anything, "pay_123").
		Return(payment.Payment{Status: payment.PaymentStateCaptured, Captured: true}, nil)
	gw.On("RefundPayment", mock.Anything, "pay_123", int64(500), mock.Anything).
		Return(payment.RefundResult{}, errors.New("gateway down"))

	var gotPatch repo.OrderPatch
	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotPatch = args.Get(3).(repo.OrderPatch)
		}).
		Return(o, nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.ApproveCancellationAndRefund(context.Background(), "admin-1", "ORD-1")
	assert.NoError(t, err)
	assert.True(t, out.Cancelled)
	assert.True(t, out.ManualRefundRequired)

	//返金失敗でもキャンセルは確定、支払いは手動返金待ちへ
	assert.Equal(t, model.OrderStatusCancelled, *gotPatch.Status)
	assert.Equal(t, model.PaymentStatusRefundPending, *gotPatch.PaymentStatus)
}

func TestApproveCancellation_CaptureFailureAbortsUntouched(t *testing.T) {
	orders := new(orderRepoMock)
	settings := new(settingsRepoMock)
	gw := new(gatewayMock)
	uc := newWorkflowForTest(orders, settings, gw, new(auditRepoMock))

	o := paidOrder(model.OrderStatusConfirmed)
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)
	settings.On("Get", mock.Anything).Return(configuredSettings(), nil)

	gw.On("FetchPayment", mock.Anything, "pay_123").
		Return(payment.Payment{Status: payment.PaymentStateAuthorized}, nil)
	gw.On("CapturePayment", mock.Anything, "pay_123", int64(500), "INR").
		Return(errors.New("capture rejected"))

	_, err := uc.ApproveCancellationAndRefund(context.Background(), "admin-1", "ORD-1")
	assert.ErrorIs(t, err, ErrCaptureFailed)

	//注文には何も書かない
	orders.AssertNotCalled(t, "UpdateIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	gw.AssertNotCalled(t, "RefundPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApproveCancellation_AuthorizedIsCapturedThenRefunded(t *testing.T) {
	orders := new(orderRepoMock)
	settings := new(settingsRepoMock)
	gw := new(gatewayMock)
	audit := new(auditRepoMock)
	uc := newWorkflowForTest(orders, settings, gw, audit)

	o := paidOrder(model.OrderStatusPacked)
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)
	settings.On("Get", mock.Anything).Return(configuredSettings(), nil)

	gw.On("FetchPayment", mock.Anything, "pay_123").
		Return(payment.Payment{Status: payment.PaymentStateAuthorized}, nil)
	gw.On("CapturePayment", mock.Anything, "pay_123", int64(500), "INR").Return(nil)
	gw.On("RefundPayment", mock.Anything, "pay_123", int64(500), mock.Anything).
		Return(payment.RefundResult{RefundID: "rfnd_2"}, nil)

	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).Return(o, nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.ApproveCancellationAndRefund(context.Background(), "admin-1", "ORD-1")
	assert.NoError(t, err)
	assert.True(t, out.Cancelled)
	gw.AssertExpectations(t)
}

func TestApproveCancellation_FetchFailureStillRefunds(t *testing.T) {
	orders := new(orderRepoMock)
	settings := new(settingsRepoMock)
	gw := new(gatewayMock)
	audit := new(auditRepoMock)
	uc := newWorkflowForTest(orders, settings, gw, audit)

	o := paidOrder(model.OrderStatusConfirmed)
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)
	settings.On("Get", mock.Anything).Return(configuredSettings(), nil)

	//照会失敗は返金を止めない
	gw.On("FetchPayment", mock.Anything, "pay_123").
		Return(payment.Payment{}, errors.New("timeout"))
	gw.On("RefundPayment", mock.Anything, "pay_123", int64(500), mock.Anything).
		Return(payment.RefundResult{RefundID: "rfnd_3"}, nil)

	orders.On("UpdateIf", mock.Anything, "ORD-1", mock.Anything, mock.Anything).Return(o, nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.ApproveCancellationAndRefund(context.Background(), "admin-1", "ORD-1")
	assert.NoError(t, err)
	assert.False(t, out.ManualRefundRequired)
	gw.AssertNotCalled(t, "CapturePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApproveCancellation_PaymentNeitherCapturedNorAuthorized(t *testing.T) {
	orders := new(orderRepoMock)
	settings := new(settingsRepoMock)
	gw := new(gatewayMock)
	uc := newWorkflowForTest(orders, settings, gw, new(auditRepoMock))

	o := paidOrder(model.OrderStatusConfirmed)
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(o, nil)
	settings.On("Get", mock.Anything).Return(configuredSettings(), nil)

	gw.On("FetchPayment", mock.Anything, "pay_123").
		Return(payment.Payment{Status: payment.PaymentStateCreated}, nil)

	_, err := uc.ApproveCancellationAndRefund(context.Background(), "admin-1", "ORD-1")
	assert.ErrorIs(t, err, ErrPaymentNotCaptured)
	orders.AssertNotCalled(t, "UpdateIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApproveCancellation_NoPaymentToRefund(t *testing.T) {
	orders := new(orderRepoMock)
	settings := new(settingsRepoMock)
	gw := new(gatewayMock)
	uc := newWorkflowForTest(orders, settings, gw, new(auditRepoMock))

	//代引き注文（支払い記録なし）
	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(placedOrder(), nil)

	_, err := uc.ApproveCancellationAndRefund(context.Background(), "admin-1", "ORD-1")
	assert.ErrorIs(t, err, ErrNoPaymentToRefund)

	//ゲートウェイには一切触らない
	settings.AssertNotCalled(t, "Get", mock.Anything)
	gw.AssertNotCalled(t, "RefundPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApproveCancellation_GatewayNotConfigured(t *testing.T) {
	orders := new(orderRepoMock)
	settings := new(settingsRepoMock)
	uc := newWorkflowForTest(orders, settings, new(gatewayMock), new(auditRepoMock))

	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(paidOrder(model.OrderStatusConfirmed), nil)
	settings.On("Get", mock.Anything).Return(model.CompanyDetails{}, nil)

	_, err := uc.ApproveCancellationAndRefund(context.Background(), "admin-1", "ORD-1")
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}

func TestApproveCancellation_TooLateAfterShipping(t *testing.T) {
	orders := new(orderRepoMock)
	uc := newWorkflowForTest(orders, new(settingsRepoMock), new(gatewayMock), new(auditRepoMock))

	orders.On("FindByOrderID", mock.Anything, "ORD-1").Return(paidOrder(model.OrderStatusShipped), nil)

	_, err := uc.ApproveCancellationAndRefund(context.Background(), "admin-1", "ORD-1")
	assert.ErrorIs(t, err, ErrTooLateToCancel)
}
